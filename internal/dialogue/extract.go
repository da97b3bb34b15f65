package dialogue

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ---------- service vocabulary ----------

type serviceHints struct {
	sector Sector
	hints  keywords
}

// Longer phrases come first: the first hint present in the text wins.
var serviceTable = []serviceHints{
	{SectorBakery, newKeywords(
		"tarta", "pastel", "roscon", "croissants", "croissant", "bolleria", "empanada",
		"galletas", "barra de pan", "pan", "cake", "bread",
	)},
	{SectorSalonClinic, newKeywords(
		"corte", "tinte", "mechas", "peinado", "alisado", "manicura", "pedicura", "depilacion",
		"limpieza facial", "limpieza dental", "masaje", "fisioterapia", "consulta",
		"haircut", "manicure", "massage",
	)},
	{SectorAutoShop, newKeywords(
		"cambio de aceite", "itv", "revision", "neumaticos", "frenos", "diagnosis", "bateria",
		"alineacion", "oil change", "tires", "brakes",
	)},
	{SectorRestaurant, newKeywords(
		"menu del dia", "menu degustacion", "desayuno", "almuerzo", "comida", "cena", "brunch",
		"breakfast", "lunch", "dinner",
	)},
}

var allServiceHints = func() keywords {
	var all keywords
	for _, st := range serviceTable {
		all = append(all, st.hints...)
	}
	return all
}()

// TableService is the literal service value for a plain table booking.
const TableService = "reserva de mesa"

var tableRE = regexp.MustCompile(`\b(?:mesa|table)\b`)

func hintsFor(sector Sector) keywords {
	for _, st := range serviceTable {
		if st.sector == sector {
			return st.hints
		}
	}
	return nil
}

// ---------- compiled patterns (applied to folded text) ----------

var (
	clockRE = regexp.MustCompile(`\b([01]?\d|2[0-3])[:.h]([0-5]\d)\b`)

	cueHourRE = regexp.MustCompile(
		`\b(?:a\s+las?|sobre\s+las?|hacia\s+las?|las|at)\s+([01]?\d|2[0-3])` +
			`(?:\s*(am|pm|h|hs|hrs|horas))?\b(?:\s+de\s+la\s+(manana|tarde|noche))?`)

	suffixHourRE = regexp.MustCompile(`\b([01]?\d|2[0-3])\s*(am|pm|h|hs|hrs|horas)\b`)

	isoDateRE     = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	numericDateRE = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{4}|\d{2}))?\b`)
	textDateRE    = regexp.MustCompile(`\b(\d{1,2}) de (enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre)\b`)
	dayWordRE     = regexp.MustCompile(`\b(pasado manana|lunes|martes|miercoles|jueves|viernes|sabado|domingo|hoy|manana|monday|tuesday|wednesday|thursday|friday|saturday|sunday|today|tomorrow)\b`)

	phoneRE = regexp.MustCompile(`(\+\d{1,3}[\s.-]?)?(\d(?:[\s.-]?\d){6,11})`)

	nameRE     = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:me llamo|mi nombre es|soy|a nombre de|my name is|i am|i'm|i’m|under the name(?: of)?)\s+(\p{L}+)(?:[ \t]+(\p{L}+))?`)
	bareNameRE = regexp.MustCompile(`^\p{L}{2,20}$`)

	partyNounRE   = regexp.MustCompile(`\b(\d{1,2}|uno|una|dos|tres|cuatro|cinco|seis|siete|ocho|nueve|diez|one|two|three|four|five|six|seven|eight|nine|ten)\s+(?:personas|persona|comensales|pax|adultos|people|persons|person|guests)\b`)
	partyPrefixRE = regexp.MustCompile(`\b(?:somos|seremos|mesa de|mesa para|party of|we are|para|for)\s+(\d{1,2}|dos|tres|cuatro|cinco|seis|siete|ocho|nueve|diez|two|three|four|five|six|seven|eight|nine|ten)\b`)
	partyTailRE   = regexp.MustCompile(`^\s*(?:personas|persona|comensales|pax|adultos|people|persons|person|guests)\b`)
	bareNumberRE  = regexp.MustCompile(`^\d{1,2}$`)
)

var monthNumbers = map[string]int{
	"enero": 1, "febrero": 2, "marzo": 3, "abril": 4, "mayo": 5, "junio": 6, "julio": 7,
	"agosto": 8, "septiembre": 9, "setiembre": 9, "octubre": 10, "noviembre": 11, "diciembre": 12,
}

var numberWords = map[string]int{
	"uno": 1, "una": 1, "dos": 2, "tres": 3, "cuatro": 4, "cinco": 5, "seis": 6, "siete": 7,
	"ocho": 8, "nueve": 9, "diez": 10, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

const maxPartySize = 20

// Words that a self-identification pattern may capture but that are never names.
var nonNameWords = wordSet(
	"lunes", "martes", "miercoles", "jueves", "viernes", "sabado", "domingo", "hoy", "manana",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday", "today", "tomorrow",
	"libre", "free", "disponible", "available", "nuevo", "nueva", "new", "cliente", "client",
	"customer", "interesado", "interesada", "interested", "de", "del", "from", "el", "la", "los",
	"las", "un", "una", "a", "an", "the", "aqui", "here", "yo", "muy", "bien", "fine", "good",
	"looking", "buscando", "para", "for", "not", "no", "si", "yes", "ok", "vale", "hola", "hello",
	"hi", "gracias", "thanks", "perfecto", "genial", "claro", "buenas", "adios", "bye", "sure",
	"con", "with", "en", "in", "on", "que", "what", "y", "and",
	"confirmar", "confirmo", "confirmado", "confirmada", "correcto", "correcta", "exacto", "exacta",
	"listo", "lista", "estupendo", "estupenda", "acuerdo", "cambiar", "cambio", "okay", "dale",
	"venga", "entendido", "bueno", "mejor", "nada", "eso", "igual", "seguro", "great", "perfect",
	"correct", "right", "done", "agreed", "confirm", "change",
)

// Words allowed after a name only when they are not connectors.
var nameConnectors = wordSet(
	"y", "e", "o", "de", "del", "para", "por", "con", "que", "a", "al", "el", "la", "en",
	"quiero", "queria", "necesito", "me", "mi", "tengo", "and", "or", "for", "with", "from",
	"the", "to", "in", "on", "at", "want", "would", "need", "my", "have",
)

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Extract runs the lexical pass over one utterance. Every field is matched
// independently; unmatched fields stay empty. Extract never fails.
func Extract(text string, sector Sector) Entities {
	folded := Fold(text)
	e := Entities{
		Service:   extractService(folded, sector),
		Date:      extractDate(folded),
		Time:      extractTime(folded),
		Name:      extractName(text),
		Phone:     extractPhone(folded),
		PartySize: extractPartySize(folded, sector),
	}
	// Outside restaurants a lone number answers "¿a qué hora?".
	if n, ok := bareNumber(folded); ok && sector != SectorRestaurant {
		e.Time = hourClock(n)
	}
	return e
}

// bareNumber reports a whole utterance that is just a one or two digit number.
func bareNumber(folded string) (int, bool) {
	s := strings.Trim(folded, " .,;:!?¡¿")
	if !bareNumberRE.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// hourClock reads a bare hour as business time: 1 to 7 mean the afternoon.
func hourClock(h int) string {
	if h < 0 || h > 23 {
		return ""
	}
	if h >= 1 && h <= 7 {
		h += 12
	}
	return fmt.Sprintf("%02d:00", h)
}

func extractTime(folded string) string {
	if m := clockRE.FindStringSubmatch(folded); m != nil {
		return formatClock(m[1], m[2], "")
	}
	for _, loc := range cueHourRE.FindAllStringSubmatchIndex(folded, -1) {
		// "para las 4 personas" counts people.
		if partyTailRE.MatchString(folded[loc[1]:]) {
			continue
		}
		hour, suffix := folded[loc[2]:loc[3]], group(folded, loc, 2)
		switch group(folded, loc, 3) {
		case "tarde", "noche":
			suffix = "pm"
		case "manana":
			return formatClock(hour, "00", suffix)
		}
		return formatClock(hour, "00", businessSuffix(hour, suffix))
	}
	if m := suffixHourRE.FindStringSubmatch(folded); m != nil {
		return formatClock(m[1], "00", businessSuffix(m[1], m[2]))
	}
	return ""
}

func group(s string, loc []int, i int) string {
	if loc[2*i] < 0 {
		return ""
	}
	return s[loc[2*i]:loc[2*i+1]]
}

// businessSuffix turns an hour from 1 to 7 with no am/pm into pm: "a las 5"
// at a shop means five in the afternoon.
func businessSuffix(hour, suffix string) string {
	if suffix == "am" || suffix == "pm" {
		return suffix
	}
	if h, err := strconv.Atoi(hour); err == nil && h >= 1 && h <= 7 {
		return "pm"
	}
	return suffix
}

func formatClock(hour, minute, suffix string) string {
	h, err := strconv.Atoi(hour)
	if err != nil {
		return ""
	}
	m, err := strconv.Atoi(minute)
	if err != nil {
		return ""
	}
	switch suffix {
	case "pm":
		if h < 12 {
			h += 12
		}
	case "am":
		if h == 12 {
			h = 0
		}
	}
	if h > 23 || m > 59 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

func extractDate(folded string) string {
	if m := isoDateRE.FindString(folded); m != "" {
		return m
	}
	for _, m := range numericDateRE.FindAllStringSubmatch(folded, -1) {
		if validDayMonth(m[1], m[2]) {
			return m[0]
		}
	}
	if m := textDateRE.FindStringSubmatch(folded); m != nil {
		day, _ := strconv.Atoi(m[1])
		if day >= 1 && day <= 31 {
			return fmt.Sprintf("%d/%d", day, monthNumbers[m[2]])
		}
	}
	for _, loc := range dayWordRE.FindAllStringIndex(folded, -1) {
		word := folded[loc[0]:loc[1]]
		if word == "manana" && morningContext(folded[:loc[0]]) {
			continue
		}
		return word
	}
	return ""
}

// "por la manana" / "esta manana" mean morning, not tomorrow.
func morningContext(before string) bool {
	return strings.HasSuffix(before, "la ") || strings.HasSuffix(before, "esta ")
}

func validDayMonth(day, month string) bool {
	d, err1 := strconv.Atoi(day)
	m, err2 := strconv.Atoi(month)
	return err1 == nil && err2 == nil && d >= 1 && d <= 31 && m >= 1 && m <= 12
}

func extractService(folded string, sector Sector) string {
	if hint, ok := hintsFor(sector).first(folded); ok {
		return hint
	}
	if hint, ok := allServiceHints.first(folded); ok {
		return hint
	}
	if sector == SectorRestaurant && tableRE.MatchString(folded) {
		return TableService
	}
	return ""
}

func extractName(text string) string {
	if name := explicitName(text); name != "" {
		return name
	}
	return bareName(text)
}

// explicitName finds a self-identification such as "soy Carlos".
func explicitName(text string) string {
	for _, m := range nameRE.FindAllStringSubmatch(text, -1) {
		first := m[1]
		if nonNameWords[Fold(first)] {
			continue
		}
		name := first
		if second := m[2]; second != "" && acceptableSecondName(second) {
			name += " " + second
		}
		return titleCase(name)
	}
	return ""
}

func acceptableSecondName(word string) bool {
	f := Fold(word)
	return !nameConnectors[f] && !nonNameWords[f] && !allServiceHints.has(f)
}

// A one-word utterance is taken as a name: it is the usual reply to "¿a
// nombre de quién?".
func bareName(text string) string {
	word := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text), ".!¡?¿,;"))
	if !bareNameRE.MatchString(word) {
		return ""
	}
	f := Fold(word)
	if nonNameWords[f] || isChipLabel(f) || smallTalk.any(f) || allServiceHints.any(f) ||
		dayWordRE.MatchString(f) || offTopicTerms.any(f) || sectorFromText(f) != SectorUnknown {
		return ""
	}
	return titleCase(word)
}

func extractPhone(folded string) string {
	masked := isoDateRE.ReplaceAllString(folded, " ")
	masked = numericDateRE.ReplaceAllString(masked, " ")
	masked = clockRE.ReplaceAllString(masked, " ")
	m := phoneRE.FindStringSubmatch(masked)
	if m == nil {
		return ""
	}
	return normalizePhone(m[0])
}

func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	plus := strings.HasPrefix(raw, "+")
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	limit := 12
	if plus {
		limit = 15
	}
	if len(digits) < 7 || len(digits) > limit {
		return ""
	}
	if plus {
		return "+" + digits
	}
	return digits
}

func extractPartySize(folded string, sector Sector) string {
	if sector != SectorRestaurant {
		return ""
	}
	if m := partyNounRE.FindStringSubmatch(folded); m != nil {
		return partySize(m[1])
	}
	for _, loc := range partyPrefixRE.FindAllStringSubmatchIndex(folded, -1) {
		// "para 20:00" is a time, not twenty people.
		if end := loc[1]; end < len(folded) && strings.ContainsRune(":.h/-", rune(folded[end])) {
			continue
		}
		if n := partySize(folded[loc[2]:loc[3]]); n != "" {
			return n
		}
	}
	if n, ok := bareNumber(folded); ok {
		return partySize(strconv.Itoa(n))
	}
	return ""
}

func partySize(token string) string {
	n, ok := numberWords[token]
	if !ok {
		var err error
		if n, err = strconv.Atoi(token); err != nil {
			return ""
		}
	}
	if n < 1 || n > maxPartySize {
		return ""
	}
	return strconv.Itoa(n)
}
