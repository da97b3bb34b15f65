package dialogue

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(Policy{RequireName: true}, NewComposer("https://example.com/call"))
}

func decide(e *Engine, t Turn, d Draft) Result {
	return e.Decide(t, e.Analyze(t), d)
}

func TestDecideHoursQuestion(t *testing.T) {
	e := newTestEngine()
	turn := Turn{Message: "¿Qué horario tenéis?"}

	a := e.Analyze(turn)
	require.True(t, a.SkipModel())

	res := e.Decide(turn, a, Draft{})

	assert.False(t, res.State.Closed)
	assert.Equal(t, []Slot{SlotService, SlotDate, SlotTime, SlotName}, res.State.Missing)
	assert.Equal(t, IntentHours, res.State.Intent)
	assert.Equal(t, OutcomeHours, res.Outcome)
	assert.True(t, strings.HasPrefix(res.Reply, "Horario orientativo"))
	assert.True(t, strings.HasSuffix(res.Reply, DefaultQuestions[SlotService]))
}

func TestDecideHoursFromBusinessContext(t *testing.T) {
	e := newTestEngine()
	turn := Turn{
		Message:         "¿a qué hora abrís?",
		BusinessContext: map[string]any{"hours": "L-S 8:00-15:00"},
	}

	res := decide(e, turn, Draft{})

	assert.True(t, strings.HasPrefix(res.Reply, "L-S 8:00-15:00 "))
}

func TestDecideClosesWithHistory(t *testing.T) {
	e := newTestEngine()
	turn := Turn{
		Message: "corte de pelo, soy Carlos",
		History: []HistoryMessage{
			{Role: "user", Content: "Hola, ¿tenéis hueco el viernes?"},
			{Role: "assistant", Content: "Sí, ¿a qué hora?"},
			{Role: "user", Content: "a las 17:00"},
			{Role: "assistant", Content: "¿Qué servicio necesitas?"},
		},
	}

	res := decide(e, turn, Draft{})

	assert.Equal(t, Entities{Service: "corte", Date: "viernes", Time: "17:00", Name: "Carlos"}, res.State.Entities)
	assert.True(t, res.State.Closed)
	assert.Empty(t, res.State.Missing)
	assert.Equal(t, OutcomeClosed, res.Outcome)
	assert.Equal(t, "Perfecto, Carlos: te confirmo corte el viernes a las 17:00.", res.Reply)
	assert.Nil(t, res.UIActions.CTA)
	assert.False(t, res.UIActions.Handoff)
}

func TestDecideOffTopic(t *testing.T) {
	e := newTestEngine()

	for _, msg := range []string{"¿Quién gana la champions?", "¿cómo está la bolsa?"} {
		res := decide(e, Turn{Message: msg}, Draft{})

		assert.Equal(t, OutOfScopeMessage, res.Reply)
		assert.False(t, res.State.Closed)
		assert.Equal(t, OutcomeOffTopic, res.Outcome)
		require.NotNil(t, res.UIActions.CTA)
		assert.Equal(t, "https://example.com/call", res.UIActions.CTA.URL)
	}
}

func TestDecideConfirmChipKeepsConfirmedName(t *testing.T) {
	e := newTestEngine()
	history := []HistoryMessage{
		{Role: "user", Content: "corte el viernes a las 17:00, soy Carlos"},
		{Role: "assistant", Content: "Perfecto, Carlos: te confirmo corte el viernes a las 17:00."},
	}

	for _, msg := range []string{"Confirmar", "Correcto", "Pedro"} {
		res := decide(e, Turn{Message: msg, History: history}, Draft{})

		assert.Equal(t, "Carlos", res.State.Entities.Name, msg)
		assert.True(t, res.State.Closed, msg)
		assert.Equal(t, "Perfecto, Carlos: te confirmo corte el viernes a las 17:00.", res.Reply, msg)
	}
}

func TestDecideLoneHourAnswersTimeQuestion(t *testing.T) {
	e := newTestEngine()
	turn := Turn{
		Message: "17",
		History: []HistoryMessage{
			{Role: "user", Content: "corte el viernes, soy Carlos"},
			{Role: "assistant", Content: DefaultQuestions[SlotTime]},
		},
	}

	res := decide(e, turn, Draft{})

	assert.Equal(t, "17:00", res.State.Entities.Time)
	assert.True(t, res.State.Closed)
	assert.Equal(t, "Perfecto, Carlos: te confirmo corte el viernes a las 17:00.", res.Reply)
}

func TestDecideLoneNumberDoesNotOverwritePartySize(t *testing.T) {
	e := newTestEngine()
	turn := Turn{
		Message: "20",
		Sector:  "restaurant",
		History: []HistoryMessage{
			{Role: "user", Content: "mesa para 4 el sábado, a nombre de Ana"},
			{Role: "assistant", Content: DefaultQuestions[SlotTime]},
		},
	}

	res := decide(e, turn, Draft{})

	assert.Equal(t, "4", res.State.Entities.PartySize)
	assert.Equal(t, "20:00", res.State.Entities.Time)
	assert.True(t, res.State.Closed)
	assert.Equal(t, "Perfecto, Ana: te confirmo reserva de mesa para 4 personas el sábado a las 20:00.", res.Reply)

	turn.History = append(turn.History,
		HistoryMessage{Role: "user", Content: "20"},
		HistoryMessage{Role: "assistant", Content: res.Reply},
	)
	turn.Message = "6"
	res = decide(e, turn, Draft{})

	assert.Equal(t, "4", res.State.Entities.PartySize)
	assert.Equal(t, "20:00", res.State.Entities.Time)
}

func TestDecideOffTopicNeverFiresWhenClosed(t *testing.T) {
	e := newTestEngine()
	turn := Turn{
		Message: "gracias, ¿y quién ganó la champions?",
		History: []HistoryMessage{
			{Role: "user", Content: "corte el viernes a las 17:00, soy Carlos"},
		},
	}

	res := decide(e, turn, Draft{Valid: true, Reply: "Esta es una demo."})

	assert.True(t, res.State.Closed)
	assert.Equal(t, OutcomeClosed, res.Outcome)
	assert.NotEqual(t, OutOfScopeMessage, res.Reply)
}

func TestDecideModelOffTopicSignal(t *testing.T) {
	e := newTestEngine()

	res := decide(e, Turn{Message: "¿me cuentas un chiste?", History: []HistoryMessage{{Role: "user", Content: "hola"}}},
		Draft{Valid: true, Reply: "Esta es una demo. Para verlo aplicado a tu negocio, agenda una llamada."})

	assert.Equal(t, OutcomeOffTopic, res.Outcome)
	assert.Equal(t, IntentOther, res.State.Intent)
}

func TestDecideRestaurantNeedsPartySize(t *testing.T) {
	e := newTestEngine()
	turn := Turn{Message: "una cena el sábado a las 21:00, a nombre de Ana", Sector: "restaurant"}

	res := decide(e, turn, Draft{})

	assert.False(t, res.State.Closed)
	assert.Equal(t, []Slot{SlotPartySize}, res.State.Missing)
	assert.Equal(t, DefaultQuestions[SlotPartySize], res.Reply)
	assert.Equal(t, []string{"2", "4", "6"}, res.UIActions.Chips)
}

func TestDecideRestaurantConfirmation(t *testing.T) {
	e := newTestEngine()
	turn := Turn{
		Message: "somos 4",
		Sector:  "restaurant",
		History: []HistoryMessage{
			{Role: "user", Content: "mesa el sábado a las 21:00, a nombre de Ana"},
			{Role: "assistant", Content: "¿Para cuántas personas?"},
		},
	}

	res := decide(e, turn, Draft{})

	assert.True(t, res.State.Closed)
	assert.Equal(t, "Perfecto, Ana: te confirmo reserva de mesa para 4 personas el sábado a las 21:00.", res.Reply)
}

func TestDecideAsksOneQuestion(t *testing.T) {
	e := newTestEngine()
	turn := Turn{
		Message: "quiero una tarta",
		History: []HistoryMessage{{Role: "user", Content: "buenas"}},
	}

	res := decide(e, turn, Draft{Valid: true, Reply: "¿Para cuándo la quieres y a qué hora? ¿Y a nombre de quién?"})

	assert.Equal(t, SectorBakery, res.State.Sector)
	assert.Equal(t, []Slot{SlotDate, SlotTime, SlotName}, res.State.Missing)
	assert.Equal(t, DefaultQuestions[SlotDate], res.Reply)
	assert.Equal(t, 1, strings.Count(res.Reply, "?"))
	assert.Equal(t, IntentOrder, res.State.Intent)
}

func TestDecideUsesModelReplyWhenNoQuestionDefined(t *testing.T) {
	e := newTestEngine()
	e.Composer.Questions = map[Slot]string{SlotDate: "¿Qué día?"}
	turn := Turn{Message: "quiero una tarta", History: []HistoryMessage{{Role: "user", Content: "hola"}}}

	res := decide(e, turn, Draft{Valid: true, Reply: "¿Para qué día la quieres?", Handoff: true})
	assert.Equal(t, "¿Qué día?", res.Reply)

	turn.Message = "una tarta el viernes a las 10"
	res = decide(e, turn, Draft{Valid: true, Reply: "¿A nombre de quién?", Chips: []string{"Ana"}, Handoff: true})
	assert.Equal(t, OutcomeModel, res.Outcome)
	assert.Equal(t, "¿A nombre de quién?", res.Reply)
	assert.Equal(t, []string{"Ana"}, res.UIActions.Chips)
	assert.True(t, res.UIActions.Handoff)

	res = decide(e, turn, Draft{})
	assert.Equal(t, FallbackReply, res.Reply)
}

func TestDecideGreeting(t *testing.T) {
	e := newTestEngine()
	turn := Turn{Message: "¡Hola!"}

	a := e.Analyze(turn)
	require.True(t, a.Greeting)

	res := e.Decide(turn, a, Draft{})

	assert.Equal(t, GreetingReply, res.Reply)
	assert.Equal(t, OutcomeGreeting, res.Outcome)
	assert.False(t, res.State.Closed)
}

func TestDecideGreetingOnlyOnFirstTurn(t *testing.T) {
	e := newTestEngine()
	turn := Turn{Message: "hola", History: []HistoryMessage{{Role: "assistant", Content: "¿Qué necesitas?"}}}

	res := decide(e, turn, Draft{})

	assert.Equal(t, OutcomeAsk, res.Outcome)
}

func TestDecideModelEntitiesAreOneSource(t *testing.T) {
	e := newTestEngine()
	turn := Turn{
		Message: "mejor a las 18:00",
		History: []HistoryMessage{{Role: "user", Content: "corte el viernes"}},
	}
	draft := Draft{Valid: true, Reply: "ok", Entities: map[string]any{
		"service": "tinte", "date": "lunes", "time": "10:00", "name": "Carlos",
	}}

	res := decide(e, turn, draft)

	assert.Equal(t, Entities{Service: "corte", Date: "viernes", Time: "18:00", Name: "Carlos"}, res.State.Entities)
	assert.True(t, res.State.Closed)
}

func TestDecideIgnoresInvalidDraft(t *testing.T) {
	e := newTestEngine()
	draft := Draft{Valid: false, Reply: "Esta es una demo.", Entities: map[string]any{"service": "corte"}}

	res := decide(e, Turn{Message: "quiero cita", History: []HistoryMessage{{Role: "user", Content: "hola"}}}, draft)

	assert.Empty(t, res.State.Entities.Service)
	assert.Equal(t, OutcomeAsk, res.Outcome)
}

func TestWindow(t *testing.T) {
	var history []HistoryMessage
	for i := 0; i < 12; i++ {
		history = append(history, HistoryMessage{Role: "user", Content: string(rune('a' + i))})
	}
	history = append(history, HistoryMessage{Role: "system", Content: "ignore"}, HistoryMessage{Role: "user", Content: " "})

	got := Window(history, 8)

	require.Len(t, got, 8)
	assert.Equal(t, "e", got[0].Content)
	assert.Equal(t, "l", got[7].Content)
}
