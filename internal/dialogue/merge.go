package dialogue

import (
	"math"
	"strconv"
	"strings"
)

// Merge overlays sources left to right: a non-empty field in a later source
// replaces the same field from an earlier one. The engine merges the model
// and history sources this way and folds the current message in with Absorb.
func Merge(sources ...Entities) Entities {
	var out Entities
	for _, s := range sources {
		out.Service = override(out.Service, s.Service)
		out.Date = override(out.Date, s.Date)
		out.Time = override(out.Time, s.Time)
		out.Name = override(out.Name, s.Name)
		out.Phone = override(out.Phone, s.Phone)
		out.PartySize = override(out.PartySize, s.PartySize)
	}
	return out
}

func override(prev, next string) string {
	if next != "" {
		return next
	}
	return prev
}

// FromHistory extracts each user turn on its own and folds the results
// oldest to newest through Absorb, so a newer statement replaces an older one.
func FromHistory(userTurns []string, sector Sector, required []Slot) Entities {
	var out Entities
	for _, t := range userTurns {
		out = Absorb(out, t, sector, required)
	}
	return out
}

// Absorb folds one user utterance over what is already known.
//
// Explicit statements ("soy Carlos", "a las 17:00", "para 4 personas")
// replace earlier values. A lone word or a lone number is weak evidence and
// only fills a gap: the word is a name only while the name is missing, and
// the number answers the first of time or party size still missing. With
// neither missing the number is ignored.
func Absorb(known Entities, text string, sector Sector, required []Slot) Entities {
	cur := Extract(text, sector)
	if known.Name != "" && explicitName(text) == "" {
		cur.Name = ""
	}
	if n, ok := bareNumber(Fold(text)); ok {
		cur.Time, cur.PartySize = answerNumber(known, n, sector, required)
	}
	return Merge(known, cur)
}

func answerNumber(known Entities, n int, sector Sector, required []Slot) (clock, party string) {
	missing, _ := Evaluate(known, required)
	for _, slot := range missing {
		switch slot {
		case SlotTime:
			if t := hourClock(n); t != "" {
				return t, ""
			}
		case SlotPartySize:
			if sector != SectorRestaurant {
				continue
			}
			if p := partySize(strconv.Itoa(n)); p != "" {
				return "", p
			}
		}
	}
	return "", ""
}

const maxServiceRunes = 60

// NormalizeModelEntities canonicalizes the loosely typed entity object a
// model returns. Values that cannot be brought into canonical form are
// dropped rather than trusted.
func NormalizeModelEntities(raw map[string]any, sector Sector) Entities {
	if len(raw) == 0 {
		return Entities{}
	}
	get := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := raw[k]; ok {
				if s := scalarString(v); s != "" {
					return s
				}
			}
		}
		return ""
	}

	var e Entities
	if svc := Fold(get("service", "servicio", "product", "producto")); svc != "" {
		if hint, ok := allServiceHints.first(svc); ok {
			svc = hint
		} else if r := []rune(svc); len(r) > maxServiceRunes {
			svc = string(r[:maxServiceRunes])
		}
		e.Service = svc
	}
	if d := get("date", "fecha", "day", "dia"); d != "" {
		e.Date = extractDate(Fold(d))
	}
	if t := get("time", "hora", "hour"); t != "" {
		e.Time = canonicalTime(Fold(t))
	}
	if n := get("name", "nombre", "customer_name"); n != "" {
		e.Name = canonicalName(n)
	}
	if p := get("phone", "telefono", "teléfono", "tel"); p != "" {
		e.Phone = normalizePhone(p)
	}
	if ps := get("partySize", "party_size", "people", "personas", "guests"); ps != "" {
		e.PartySize = partySize(Fold(ps))
	}
	if sector != SectorRestaurant {
		e.PartySize = ""
	}
	return e
}

// canonicalTime accepts a bare hour in addition to the utterance forms,
// since a model often reports "17" for 17:00.
func canonicalTime(folded string) string {
	if t := extractTime(folded); t != "" {
		return t
	}
	if h, err := strconv.Atoi(folded); err == nil {
		return hourClock(h)
	}
	return ""
}

func canonicalName(raw string) string {
	words := strings.Fields(raw)
	if len(words) == 0 || nonNameWords[Fold(words[0])] {
		return ""
	}
	if len(words) > 2 {
		words = words[:2]
	}
	for _, w := range words {
		if !bareNameRE.MatchString(w) {
			return ""
		}
	}
	return titleCase(strings.Join(words, " "))
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		if x == math.Trunc(x) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return ""
}
