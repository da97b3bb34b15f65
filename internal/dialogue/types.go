package dialogue

type Sector string

const (
	SectorBakery      Sector = "bakery"
	SectorSalonClinic Sector = "salon_clinic"
	SectorAutoShop    Sector = "auto_shop"
	SectorRestaurant  Sector = "restaurant"
	SectorUnknown     Sector = "unknown"
)

type Slot string

const (
	SlotService   Slot = "service"
	SlotDate      Slot = "date"
	SlotTime      Slot = "time"
	SlotName      Slot = "name"
	SlotPhone     Slot = "phone"
	SlotPartySize Slot = "partySize"
)

type Intent string

const (
	IntentFAQ         Intent = "faq"
	IntentOrder       Intent = "order"
	IntentAppointment Intent = "appointment"
	IntentPrice       Intent = "price"
	IntentHours       Intent = "hours"
	IntentOther       Intent = "other"
)

// Entities holds canonical slot values. An empty string means absent.
type Entities struct {
	Service   string `json:"service,omitempty"`
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	PartySize string `json:"partySize,omitempty"`
}

func (e Entities) Get(s Slot) string {
	switch s {
	case SlotService:
		return e.Service
	case SlotDate:
		return e.Date
	case SlotTime:
		return e.Time
	case SlotName:
		return e.Name
	case SlotPhone:
		return e.Phone
	case SlotPartySize:
		return e.PartySize
	}
	return ""
}

func (e Entities) IsEmpty() bool {
	return e == Entities{}
}

// HistoryMessage is one prior turn as resent by the caller.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// State is the machine-readable block recomputed on every turn.
type State struct {
	Entities Entities `json:"entities"`
	Missing  []Slot   `json:"missing_fields"`
	Closed   bool     `json:"closed"`
	Intent   Intent   `json:"intent"`
	Sector   Sector   `json:"sector"`
}

type CTA struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

type UIActions struct {
	Chips   []string `json:"chips"`
	CTA     *CTA     `json:"cta"`
	Handoff bool     `json:"handoff"`
}

// Outcome names the composer branch that produced the reply.
type Outcome string

const (
	OutcomeGreeting Outcome = "greeting"
	OutcomeClosed   Outcome = "closed"
	OutcomeAsk      Outcome = "ask"
	OutcomeHours    Outcome = "hours"
	OutcomeModel    Outcome = "model"
	OutcomeOffTopic Outcome = "off_topic"
)

type Result struct {
	Reply     string
	UIActions UIActions
	State     State
	Outcome   Outcome
}
