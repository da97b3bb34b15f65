package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vovarama1992/autoengine-chat/internal/ai"
	"github.com/Vovarama1992/autoengine-chat/internal/dialogue"
	"github.com/Vovarama1992/autoengine-chat/internal/logger"
	"github.com/Vovarama1992/autoengine-chat/internal/metrics"
)

type Options struct {
	Provider          string
	ModelTimeout      time.Duration
	ContextByteBudget int
}

type service struct {
	engine *dialogue.Engine
	ai     ai.AI
	repo   Repo
	opts   Options
	log    *zap.Logger
}

func NewService(engine *dialogue.Engine, aiClient ai.AI, repo Repo, opts Options, log *zap.Logger) Service {
	if repo == nil {
		repo = NopRepo{}
	}
	return &service{
		engine: engine,
		ai:     aiClient,
		repo:   repo,
		opts:   opts,
		log:    log.Named("chat"),
	}
}

func (s *service) HandleTurn(ctx context.Context, req Request) (resp *Response, err error) {
	msg := req.UserMessage()
	if msg == "" {
		return nil, ErrEmptyMessage
	}

	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("turn panicked: %v", r)
		}
	}()

	turnID := uuid.NewString()
	turn := dialogue.Turn{
		Message:         msg,
		History:         req.History,
		Sector:          req.Sector,
		BusinessContext: req.BusinessContext,
	}

	a := s.engine.Analyze(turn)

	var draft dialogue.Draft
	if !a.SkipModel() {
		draft = s.draft(ctx, turn, a)
	}

	res := s.engine.Decide(turn, a, draft)

	metrics.TurnsTotal.WithLabelValues(string(res.State.Sector), string(res.Outcome)).Inc()
	s.log.Info("turn",
		zap.String("turn_id", turnID),
		zap.String("sector", string(res.State.Sector)),
		zap.String("intent", string(res.State.Intent)),
		zap.Bool("closed", res.State.Closed),
		zap.Any("missing", res.State.Missing),
		zap.Bool("model_ok", draft.Valid),
		zap.String("outcome", string(res.Outcome)),
	)

	if err := s.repo.SaveTurn(ctx, &TurnRecord{
		ID:       turnID,
		Sector:   res.State.Sector,
		Intent:   res.State.Intent,
		Outcome:  res.Outcome,
		Closed:   res.State.Closed,
		Missing:  res.State.Missing,
		Entities: res.State.Entities,
		Message:  msg,
		Reply:    res.Reply,
		ModelOK:  draft.Valid,
	}); err != nil {
		s.log.Warn("audit save failed", zap.String("turn_id", turnID), zap.Error(err))
	}

	return buildResponse(res, turnID, req.Structured), nil
}

// draft calls the model under the turn timeout. Every failure collapses to
// an invalid Draft so the engine runs on extraction alone.
func (s *service) draft(ctx context.Context, turn dialogue.Turn, a dialogue.Analysis) dialogue.Draft {
	if s.opts.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ModelTimeout)
		defer cancel()
	}

	history := make([]ai.Message, 0, len(a.History))
	for _, m := range a.History {
		history = append(history, ai.Message{Role: m.Role, Text: m.Content})
	}
	prompt := BuildSystemPrompt(a.Sector, turn.BusinessContext, s.opts.ContextByteBudget)

	start := time.Now()
	raw, err := s.ai.GetReply(ctx, prompt, history, turn.Message)
	metrics.ModelDuration.WithLabelValues(s.opts.Provider).Observe(time.Since(start).Seconds())

	if err != nil {
		reason := "error"
		switch {
		case errors.Is(err, ai.ErrUnavailable):
			reason = "unavailable"
		case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
			reason = "timeout"
		}
		metrics.ModelFailures.WithLabelValues(reason).Inc()
		if reason != "unavailable" {
			s.log.Warn("model call failed", zap.String("reason", reason), zap.Error(err))
		}
		return dialogue.Draft{}
	}

	d, err := ParseModelOutput(raw)
	if err != nil {
		metrics.ModelFailures.WithLabelValues("parse").Inc()
		s.log.Warn("model output rejected", zap.Error(err), zap.String("raw", logger.Short(raw)))
		return dialogue.Draft{}
	}
	return d
}

func buildResponse(res dialogue.Result, turnID string, structured bool) *Response {
	resp := &Response{Reply: res.Reply}
	if !structured {
		return resp
	}

	ui := res.UIActions
	if ui.Chips == nil {
		ui.Chips = []string{}
	}
	resp.UIActions = &ui
	resp.Data = &Data{State: res.State, TurnID: turnID}
	return resp
}

// FallbackResponse answers a turn that failed after validation.
func FallbackResponse() *Response {
	return &Response{Reply: dialogue.ClampReply(dialogue.FallbackReply), Error: "handled"}
}
