package dialogue

import "strings"

const (
	DefaultHistoryWindow = 8
	DefaultUserTurns     = 3
)

// Turn is one request as resent by the caller, history included.
type Turn struct {
	Message         string
	History         []HistoryMessage
	Sector          string
	BusinessContext map[string]any
}

// Draft is the model's proposal after the parse boundary. Valid is false
// when the model failed or returned something unusable; the other fields are
// then ignored.
type Draft struct {
	Valid    bool
	Reply    string
	Chips    []string
	Handoff  bool
	Intent   string
	Entities map[string]any
}

// Analysis is everything about a turn that does not depend on the model.
type Analysis struct {
	Sector    Sector
	Greeting  bool
	OffTopic  bool
	Hours     bool
	History   []HistoryMessage
	UserTurns []string
}

// SkipModel reports whether the reply is fully determined without a model call.
func (a Analysis) SkipModel() bool {
	return a.Greeting || a.Hours
}

// Engine is the stateless slot engine. The zero value is not usable; build
// it with NewEngine.
type Engine struct {
	Policy        Policy
	Composer      Composer
	HistoryWindow int
	UserTurns     int
}

func NewEngine(policy Policy, composer Composer) *Engine {
	return &Engine{
		Policy:        policy,
		Composer:      composer,
		HistoryWindow: DefaultHistoryWindow,
		UserTurns:     DefaultUserTurns,
	}
}

// Analyze runs the model-independent checks of a turn.
func (e *Engine) Analyze(t Turn) Analysis {
	history := Window(t.History, e.HistoryWindow)
	users := lastUserTurns(history, e.UserTurns)
	return Analysis{
		Sector:    ClassifySector(t.Sector, t.Message, users...),
		Greeting:  len(history) == 0 && IsGreeting(t.Message),
		OffTopic:  IsOffTopic(t.Message),
		Hours:     hoursRE.MatchString(Fold(t.Message)),
		History:   history,
		UserTurns: users,
	}
}

// Decide merges entities from the three sources (model, then history, then
// the current message), evaluates closure and composes the reply. It never
// fails.
func (e *Engine) Decide(t Turn, a Analysis, d Draft) Result {
	var fromModel Entities
	if d.Valid {
		fromModel = NormalizeModelEntities(d.Entities, a.Sector)
	}
	required := e.Policy.RequiredSlots(a.Sector)
	fromHistory := FromHistory(a.UserTurns, a.Sector, required)
	fromUser := Extract(t.Message, a.Sector)
	merged := Absorb(Merge(fromModel, fromHistory), t.Message, a.Sector, required)

	missing, closed := Evaluate(merged, required)

	state := State{
		Entities: merged,
		Missing:  missing,
		Closed:   closed,
		Intent:   e.intent(t.Message, a.Sector, fromUser, d),
		Sector:   a.Sector,
	}
	res := Result{State: state}

	switch {
	case a.Greeting:
		res.Reply, res.UIActions = e.Composer.greeting()
		res.Outcome = OutcomeGreeting
	case closed:
		res.Reply, res.UIActions = e.Composer.Confirmation(merged, a.Sector)
		res.Outcome = OutcomeClosed
	default:
		res.Reply, res.UIActions, res.Outcome = e.ask(t, a, d, missing[0])
	}

	if !closed && (a.OffTopic || (d.Valid && ModelSignalsOffTopic(d.Reply))) {
		res.Reply, res.UIActions = e.Composer.offTopic()
		res.Outcome = OutcomeOffTopic
		res.State.Intent = IntentOther
	}

	res.Reply = ClampReply(res.Reply)
	return res
}

func (e *Engine) ask(t Turn, a Analysis, d Draft, slot Slot) (string, UIActions, Outcome) {
	q, ui, ok := e.Composer.question(slot, a.Sector)
	if a.Hours {
		reply := hoursAnswer(t.BusinessContext)
		if ok {
			reply += " " + q
		}
		return reply, ui, OutcomeHours
	}
	if ok {
		return q, ui, OutcomeAsk
	}
	if d.Valid && strings.TrimSpace(d.Reply) != "" {
		chips := d.Chips
		if chips == nil {
			chips = []string{}
		}
		return d.Reply, UIActions{Chips: chips, Handoff: d.Handoff}, OutcomeModel
	}
	return FallbackReply, ui, OutcomeModel
}

// A lexical cue in the message beats the model's claim; the model's intent
// is used only when the message carries none.
func (e *Engine) intent(message string, sector Sector, fromUser Entities, d Draft) Intent {
	lexical := DetectIntent(message, sector, !fromUser.IsEmpty())
	switch lexical {
	case IntentHours, IntentAppointment, IntentOrder, IntentPrice:
		return lexical
	}
	if d.Valid {
		if in, ok := ParseIntent(d.Intent); ok {
			return in
		}
	}
	return lexical
}

// Window keeps the trailing n messages of history, dropping roles other than
// user and assistant.
func Window(history []HistoryMessage, n int) []HistoryMessage {
	out := make([]HistoryMessage, 0, len(history))
	for _, m := range history {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != RoleUser && role != RoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, HistoryMessage{Role: role, Content: m.Content})
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

func lastUserTurns(history []HistoryMessage, n int) []string {
	var users []string
	for _, m := range history {
		if m.Role == RoleUser {
			users = append(users, m.Content)
		}
	}
	if n > 0 && len(users) > n {
		users = users[len(users)-n:]
	}
	return users
}
