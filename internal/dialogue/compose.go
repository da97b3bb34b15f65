package dialogue

import (
	"fmt"
	"strings"
)

const (
	GreetingReply = "¡Hola! Soy el asistente de demo. Te ayudo con horarios, reservas, citas y pedidos. ¿Qué necesitas?"
	FallbackReply = "Gracias por escribir. Cuéntame qué necesitas y te ayudo con horarios, reservas o pedidos."
	HoursReply    = "Horario orientativo: Lun–Vie 9:30–13:30 y 16:00–20:00; Sáb 10:00–14:00; Dom cerrado."
)

// DefaultQuestions holds the single question asked for each missing slot.
var DefaultQuestions = map[Slot]string{
	SlotService:   "¿Qué servicio o producto necesitas?",
	SlotDate:      "¿Para qué día lo quieres?",
	SlotTime:      "¿A qué hora te viene bien?",
	SlotName:      "¿A nombre de quién lo apunto?",
	SlotPhone:     "¿Me dejas un teléfono de contacto?",
	SlotPartySize: "¿Para cuántas personas?",
}

var (
	greetingChips = []string{"Ver horarios", "Reservar cita", "Hacer un pedido"}
	closingChips  = []string{"Confirmar", "Cambiar algo", "Gracias"}
	offTopicChips = []string{"Agendar llamada"}

	serviceChips = map[Sector][]string{
		SectorBakery:      {"Tarta", "Pan", "Croissants"},
		SectorSalonClinic: {"Corte", "Tinte", "Manicura"},
		SectorAutoShop:    {"Cambio de aceite", "ITV", "Revisión"},
		SectorRestaurant:  {"Reserva de mesa", "Menú del día", "Cena"},
		SectorUnknown:     {"Reservar cita", "Hacer un pedido", "Ver horarios"},
	}
	dateChips       = []string{"Hoy", "Mañana", "Viernes"}
	timeChips       = []string{"10:00", "13:00", "17:00"}
	dinnerTimeChips = []string{"14:00", "21:00", "21:30"}
	partySizeChips  = []string{"2", "4", "6"}
)

// chipLabels holds every chip text in folded form. A tapped chip comes back
// as the next message and must never be read as a name.
var chipLabels = func() map[string]bool {
	labels := map[string]bool{}
	add := func(chips []string) {
		for _, c := range chips {
			labels[Fold(c)] = true
		}
	}
	add(greetingChips)
	add(closingChips)
	add(offTopicChips)
	add(dateChips)
	for _, chips := range serviceChips {
		add(chips)
	}
	return labels
}()

func isChipLabel(folded string) bool {
	return chipLabels[folded]
}

// Accented display forms of canonical (folded) values.
var displayForms = map[string]string{
	"roscon":           "roscón",
	"bolleria":         "bollería",
	"depilacion":       "depilación",
	"revision":         "revisión",
	"neumaticos":       "neumáticos",
	"bateria":          "batería",
	"alineacion":       "alineación",
	"menu del dia":     "menú del día",
	"menu degustacion": "menú degustación",
	"miercoles":        "miércoles",
	"sabado":           "sábado",
	"manana":           "mañana",
	"pasado manana":    "pasado mañana",
}

func display(v string) string {
	if d, ok := displayForms[v]; ok {
		return d
	}
	return v
}

// Composer renders the deterministic replies.
type Composer struct {
	Questions map[Slot]string
	CTAURL    string
}

func NewComposer(ctaURL string) Composer {
	return Composer{Questions: DefaultQuestions, CTAURL: ctaURL}
}

func (c Composer) greeting() (string, UIActions) {
	return GreetingReply, UIActions{Chips: greetingChips}
}

func (c Composer) offTopic() (string, UIActions) {
	return OutOfScopeMessage, UIActions{
		Chips: offTopicChips,
		CTA:   &CTA{Type: "book_call", Label: "Agenda una llamada", URL: c.CTAURL},
	}
}

// question returns the fixed question for slot, if one is defined.
func (c Composer) question(slot Slot, sector Sector) (string, UIActions, bool) {
	q, ok := c.Questions[slot]
	if !ok || q == "" {
		return "", UIActions{Chips: []string{}}, false
	}
	return q, UIActions{Chips: chipsFor(slot, sector)}, true
}

func chipsFor(slot Slot, sector Sector) []string {
	switch slot {
	case SlotService:
		if chips, ok := serviceChips[sector]; ok {
			return chips
		}
		return serviceChips[SectorUnknown]
	case SlotDate:
		return dateChips
	case SlotTime:
		if sector == SectorRestaurant {
			return dinnerTimeChips
		}
		return timeChips
	case SlotPartySize:
		return partySizeChips
	}
	return []string{}
}

// Confirmation renders the closing sentence from the merged entities.
func (c Composer) Confirmation(e Entities, sector Sector) (string, UIActions) {
	var b strings.Builder
	b.WriteString("Perfecto")
	if e.Name != "" {
		b.WriteString(", " + e.Name)
	}
	b.WriteString(": te confirmo " + display(e.Service))
	if sector == SectorRestaurant && e.PartySize != "" {
		if e.PartySize == "1" {
			b.WriteString(" para 1 persona")
		} else {
			b.WriteString(" para " + e.PartySize + " personas")
		}
	}
	if e.Date != "" {
		b.WriteString(" " + datePhrase(e.Date))
	}
	if e.Time != "" {
		b.WriteString(" " + timePhrase(e.Time))
	}
	b.WriteString(".")
	return b.String(), UIActions{Chips: closingChips}
}

func datePhrase(date string) string {
	switch date {
	case "hoy", "manana", "pasado manana", "today", "tomorrow":
		return display(date)
	}
	return "el " + display(date)
}

func timePhrase(t string) string {
	if strings.HasPrefix(t, "01:") {
		return "a la " + t
	}
	return fmt.Sprintf("a las %s", t)
}

// hoursAnswer prefers the business's own opening hours when supplied.
func hoursAnswer(businessContext map[string]any) string {
	for _, k := range []string{"hours", "horario", "horarios"} {
		if s, ok := businessContext[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return HoursReply
}
