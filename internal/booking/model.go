package booking

// Role identifies who authored a conversation message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is a single entry of the conversation history sent by the client.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Service is a bookable barbershop service.
type Service string

const (
	ServiceHaircut Service = "haircut"
	ServiceColor   Service = "color"
	ServiceStyling Service = "styling"
)

// State holds the booking fields known so far. Empty strings mean "not yet known".
type State struct {
	Service   Service `json:"service,omitempty"`
	Date      string  `json:"date,omitempty"`
	Time      string  `json:"time,omitempty"`
	Name      string  `json:"name,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Completed bool    `json:"completed"`
}

// Stage is the dialogue variant computed from a State.
type Stage string

const (
	StageNeedService Stage = "need_service"
	StageNeedDate    Stage = "need_date"
	StageNeedTime    Stage = "need_time"
	StageNeedName    Stage = "need_name"
	StageNeedPhone   Stage = "need_phone"
	StageDone        Stage = "done"
)

// StageOf returns the first unmet stage for s. A known time without a date
// skips the date question.
func StageOf(s State) Stage {
	switch {
	case s.Service == "":
		return StageNeedService
	case s.Date == "" && s.Time == "":
		return StageNeedDate
	case s.Time == "":
		return StageNeedTime
	case s.Name == "":
		return StageNeedName
	case s.Phone == "":
		return StageNeedPhone
	default:
		return StageDone
	}
}

// Reply is the outcome of one dialogue turn.
type Reply struct {
	Content string
	State   State
	// Stage is the variant that handled the turn.
	Stage Stage
}

// Advanced reports whether the turn captured the field its stage was asking for.
func (r Reply) Advanced() bool {
	return StageOf(r.State) != r.Stage
}

// Greeting opens a new booking conversation.
const Greeting = "👋 Hi! I'm BookingBot for Main Street Barbershop in downtown Johnstown. I can help you book an appointment. What service are you interested in?"
