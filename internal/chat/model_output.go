package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Vovarama1992/autoengine-chat/internal/dialogue"
)

var ErrMalformedOutput = errors.New("malformed model output")

// Only reply is mandatory. Everything else is optional and read tolerantly,
// so a wrong type on an optional field drops that field, not the turn.
const modelOutputSchema = `{
  "type": "object",
  "required": ["reply"],
  "properties": {
    "reply": {"type": "string", "pattern": "\\S"}
  }
}`

var modelSchema = mustSchema(modelOutputSchema)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("model output schema: %v", err))
	}
	return s
}

const maxModelChips = 4

// ParseModelOutput is the boundary between untrusted model text and the
// engine. Any failure yields ErrMalformedOutput and a zero Draft.
func ParseModelOutput(raw string) (dialogue.Draft, error) {
	body, ok := jsonObject(raw)
	if !ok {
		return dialogue.Draft{}, fmt.Errorf("%w: no JSON object", ErrMalformedOutput)
	}

	result, err := modelSchema.Validate(gojsonschema.NewStringLoader(body))
	if err != nil {
		return dialogue.Draft{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if !result.Valid() {
		return dialogue.Draft{}, fmt.Errorf("%w: %s", ErrMalformedOutput, result.Errors()[0])
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return dialogue.Draft{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	d := dialogue.Draft{Valid: true}
	d.Reply = strings.TrimSpace(doc["reply"].(string))

	if ui, ok := doc["ui_actions"].(map[string]any); ok {
		d.Chips = stringList(ui["chips"], maxModelChips)
		d.Handoff, _ = ui["handoff"].(bool)
	}

	data, _ := doc["data"].(map[string]any)
	if data == nil {
		data = doc
	}
	d.Intent, _ = data["intent"].(string)
	d.Entities, _ = data["entities"].(map[string]any)

	return d, nil
}

// jsonObject strips code fences and chatter around the outermost {...}.
func jsonObject(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func stringList(v any, limit int) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
		if len(out) == limit {
			break
		}
	}
	return out
}
