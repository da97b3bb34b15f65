package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/Vovarama1992/autoengine-chat/internal/dialogue"
)

// ErrEmptyMessage rejects a turn before any extraction runs.
var ErrEmptyMessage = errors.New("message is required")

// Request is the body of POST /api/chat. The message may arrive under any of
// the four aliases; the first non-blank one wins.
type Request struct {
	Message         string                    `json:"message"`
	Text            string                    `json:"text"`
	Prompt          string                    `json:"prompt"`
	Input           string                    `json:"input"`
	History         []dialogue.HistoryMessage `json:"history"`
	Sector          string                    `json:"sector"`
	BusinessContext map[string]any            `json:"businessContext"`
	Structured      bool                      `json:"structured"`
}

func (r Request) UserMessage() string {
	for _, m := range []string{r.Message, r.Text, r.Prompt, r.Input} {
		if m = strings.TrimSpace(m); m != "" {
			return m
		}
	}
	return ""
}

type Response struct {
	Reply     string              `json:"reply"`
	UIActions *dialogue.UIActions `json:"ui_actions,omitempty"`
	Data      *Data               `json:"data,omitempty"`
	Error     string              `json:"error,omitempty"`
}

type Data struct {
	dialogue.State
	TurnID string `json:"turn_id"`
}

// TurnRecord is one composed turn as written to the audit log.
type TurnRecord struct {
	ID       string
	Sector   dialogue.Sector
	Intent   dialogue.Intent
	Outcome  dialogue.Outcome
	Closed   bool
	Missing  []dialogue.Slot
	Entities dialogue.Entities
	Message  string
	Reply    string
	ModelOK  bool
}

// Repo persists composed turns. It is write-only: turns are never read
// back, the caller owns the history.
type Repo interface {
	SaveTurn(ctx context.Context, t *TurnRecord) error
}

type Service interface {
	HandleTurn(ctx context.Context, req Request) (*Response, error)
}
