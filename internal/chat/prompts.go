package chat

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/Vovarama1992/autoengine-chat/internal/dialogue"
)

const SystemPrompt = `Eres el asistente DEMO de AutoEngine en la web de un negocio local.
Solo atiendes: horarios de apertura, disponibilidad para reservas o citas, pedidos básicos y precios aproximados no vinculantes.
Si la pregunta no trata de eso, responde exactamente: "Esta es una demo. Para verlo aplicado a tu negocio, agenda una llamada."
Máximo 2-3 líneas, tono directo. Si no conoces un dato exacto, da un ejemplo realista y di que es orientativo.
Haz como mucho una pregunta por respuesta y nunca pidas un dato que el cliente ya dio.`

const outputContract = `Devuelve SOLO un objeto JSON con esta forma:
{
  "reply": "texto para el cliente",
  "ui_actions": {"chips": ["..."], "cta": null, "handoff": false},
  "data": {
    "intent": "faq|order|appointment|price|hours|other",
    "missing_fields": ["..."],
    "entities": {"service": "", "date": "", "time": "", "name": "", "phone": "", "partySize": ""},
    "closed": false
  }
}`

// BuildSystemPrompt assembles the instruction for one turn. businessContext
// is serialized and cut to budget bytes; budget 0 omits it.
func BuildSystemPrompt(sector dialogue.Sector, businessContext map[string]any, budget int) string {
	var b strings.Builder
	b.WriteString(SystemPrompt)

	b.WriteString("\n\nSector: ")
	b.WriteString(string(sector))

	if len(businessContext) > 0 && budget > 0 {
		raw, err := json.Marshal(businessContext)
		if err == nil {
			b.WriteString("\nContexto del negocio (JSON): ")
			b.WriteString(truncateBytes(string(raw), budget))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(outputContract)
	return b.String()
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
