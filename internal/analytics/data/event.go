package data

const (
	DefaultEventCategory = "email"
	DefaultEventAction   = "open"
	DefaultEventHitType  = "event"
)

// Event describes a trackable action for the measurement protocol.
type Event struct {
	Category string `json:"category,omitempty"`
	Action   string `json:"action,omitempty"`
	Label    string `json:"label,omitempty"`
	HitType  string `json:"hit_type,omitempty"`
}

// NewEvent returns an email-open event, the common case for newsletter pixels.
func NewEvent() Event {
	return Event{
		Category: DefaultEventCategory,
		Action:   DefaultEventAction,
		HitType:  DefaultEventHitType,
	}
}
