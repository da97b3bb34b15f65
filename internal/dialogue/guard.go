package dialogue

import (
	"regexp"
	"strings"
)

// OutOfScopeMessage is the fixed reply for anything outside the business domain.
const OutOfScopeMessage = "Esta es una demo. Para verlo aplicado a tu negocio, agenda una llamada."

var offTopicTerms = newKeywords(
	"futbol", "champions", "liga", "partido", "real madrid", "barca", "baloncesto", "nba",
	"politica", "elecciones", "gobierno", "presidente", "congreso", "bolsa", "ibex", "acciones",
	"bitcoin", "criptomonedas", "cripto", "inversion", "invertir", "ciencia", "fisica", "quimica",
	"astronomia", "clima", "meteorologia", "lluvia", "llover",
	"football", "soccer", "politics", "election", "president", "stock market", "stocks",
	"crypto", "science", "physics", "weather",
)

// IsOffTopic reports whether the current message names a clearly unrelated topic.
func IsOffTopic(message string) bool {
	return offTopicTerms.any(Fold(message))
}

var outOfScopeFolded = Fold("Esta es una demo")

// ModelSignalsOffTopic reports whether a model reply echoes the out-of-scope
// phrase it was instructed to use.
func ModelSignalsOffTopic(reply string) bool {
	return strings.Contains(Fold(reply), outOfScopeFolded)
}

// ---------- greetings and small talk ----------

var smallTalk = newKeywords(
	"hola", "buenas", "buenos dias", "gracias", "vale", "ok", "okay", "si", "no", "perfecto",
	"genial", "claro", "adios", "venga", "bien", "hello", "hi", "hey", "thanks", "yes", "bye",
	"saludos",
)

var (
	greetingOpeners = wordSet("hola", "buenas", "buenos", "hey", "hi", "hello", "saludos", "ey")
	greetingFillers = wordSet("dias", "tardes", "noches", "que", "tal", "there", "muy", "y")
	nonLetterRE     = regexp.MustCompile(`[^\p{L}\s]+`)
)

// IsGreeting reports whether message is nothing but a greeting.
func IsGreeting(message string) bool {
	words := strings.Fields(nonLetterRE.ReplaceAllString(Fold(message), " "))
	if len(words) == 0 || !greetingOpeners[words[0]] {
		return false
	}
	for _, w := range words[1:] {
		if !greetingOpeners[w] && !greetingFillers[w] {
			return false
		}
	}
	return true
}

// ---------- intent ----------

var (
	hoursRE       = regexp.MustCompile(`\b(horarios?|a que horas?|abris|abren|abre|cerrais|cierran|cierra|abrir|cerrar|abierto|opening hours|open)\b`)
	appointmentRE = regexp.MustCompile(`\b(cuando puedo|disponibilidad|reserva|reservar|cita|turno|dia y hora|agenda|huecos|book|booking|appointment)\b`)
	orderRE       = regexp.MustCompile(`\b(pedido|encargo|encargar|hacer un pedido|order)\b`)
	priceRE       = regexp.MustCompile(`\b(precio|precios|presupuesto|cuanto cuesta|cuanto vale|tarifa|price|cost)\b`)
)

// ParseIntent accepts a model-reported intent only if it is one of the known values.
func ParseIntent(s string) (Intent, bool) {
	switch in := Intent(strings.ToLower(strings.TrimSpace(s))); in {
	case IntentFAQ, IntentOrder, IntentAppointment, IntentPrice, IntentHours, IntentOther:
		return in, true
	}
	return "", false
}

// DetectIntent classifies the message lexically. hasSlots marks a turn that
// carries booking data even when no intent cue is present.
func DetectIntent(message string, sector Sector, hasSlots bool) Intent {
	folded := Fold(message)
	switch {
	case hoursRE.MatchString(folded):
		return IntentHours
	case appointmentRE.MatchString(folded):
		return IntentAppointment
	case orderRE.MatchString(folded):
		return IntentOrder
	case priceRE.MatchString(folded):
		return IntentPrice
	case hasSlots && sector == SectorBakery:
		return IntentOrder
	case hasSlots:
		return IntentAppointment
	case strings.Contains(message, "?"):
		return IntentFAQ
	}
	return IntentOther
}
