package dialogue

import "strings"

type sectorCues struct {
	sector Sector
	cues   keywords
}

// Ordered by specificity: restaurant terms win over the generic clinic ones.
var sectorTable = []sectorCues{
	{SectorRestaurant, newKeywords(
		"reservar mesa", "mesa", "personas", "comensales", "restaurante", "cenar", "cena",
		"comer", "menu del dia", "menu", "table", "dinner", "restaurant", "people", "guests",
	)},
	{SectorAutoShop, newKeywords(
		"taller", "coche", "carro", "vehiculo", "moto", "itv", "aceite", "neumatico", "neumaticos",
		"ruedas", "frenos", "mecanico", "garage", "car", "tires", "tyres", "oil change", "brakes",
	)},
	{SectorBakery, newKeywords(
		"panaderia", "pasteleria", "obrador", "tarta", "tartas", "pastel", "pasteles", "pan",
		"croissant", "croissants", "bolleria", "roscon", "galletas", "bakery", "cake", "bread",
	)},
	{SectorSalonClinic, newKeywords(
		"peluqueria", "salon", "estetica", "clinica", "corte", "cortar", "tinte", "mechas",
		"peinado", "manicura", "pedicura", "depilacion", "masaje", "fisio", "fisioterapia",
		"dentista", "dental", "barberia", "haircut", "clinic", "massage", "consulta", "cita",
	)},
}

var sectorAliases = map[string]Sector{
	"bakery":       SectorBakery,
	"panaderia":    SectorBakery,
	"pasteleria":   SectorBakery,
	"salon_clinic": SectorSalonClinic,
	"salon":        SectorSalonClinic,
	"clinic":       SectorSalonClinic,
	"clinica":      SectorSalonClinic,
	"peluqueria":   SectorSalonClinic,
	"estetica":     SectorSalonClinic,
	"auto_shop":    SectorAutoShop,
	"auto":         SectorAutoShop,
	"taller":       SectorAutoShop,
	"garage":       SectorAutoShop,
	"restaurant":   SectorRestaurant,
	"restaurante":  SectorRestaurant,
	"unknown":      SectorUnknown,
}

// ParseSector maps an explicit sector string (or a common alias of it) to a
// Sector. Unrecognized values map to SectorUnknown.
func ParseSector(s string) Sector {
	key := strings.ReplaceAll(Fold(s), " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	if sec, ok := sectorAliases[key]; ok {
		return sec
	}
	return SectorUnknown
}

// ClassifySector resolves the sector of a turn. A non-blank override always
// wins. Otherwise the message is scanned, then recent user turns from newest
// to oldest. No match is a valid result: SectorUnknown.
func ClassifySector(override, message string, recentUser ...string) Sector {
	if strings.TrimSpace(override) != "" {
		return ParseSector(override)
	}
	if sec := sectorFromText(message); sec != SectorUnknown {
		return sec
	}
	for i := len(recentUser) - 1; i >= 0; i-- {
		if sec := sectorFromText(recentUser[i]); sec != SectorUnknown {
			return sec
		}
	}
	return SectorUnknown
}

func sectorFromText(text string) Sector {
	folded := Fold(text)
	for _, sc := range sectorTable {
		if sc.cues.any(folded) {
			return sc.sector
		}
	}
	return SectorUnknown
}
