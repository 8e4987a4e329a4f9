package leads

import (
	"strings"
	"time"
)

// Stage is a lead's position in the qualification sequence.
type Stage string

const (
	StageGreeting           Stage = "greeting"
	StageAskName            Stage = "ask_name"
	StageAskAge             Stage = "ask_age"
	StageAskState           Stage = "ask_state"
	StageAskHealthConfirm   Stage = "ask_health_confirm"
	StageAskHealthDetails   Stage = "ask_health_details"
	StageAskBudget          Stage = "ask_budget"
	StageAskContactTime     Stage = "ask_contact_time"
	StageAskTimeSlotConfirm Stage = "ask_time_slot_confirmation"
	StageConfirmBooking     Stage = "confirm_booking"
	StageCompleted          Stage = "completed"
)

// Status is a lead's lifecycle state.
type Status string

const (
	StatusActive Status = "Active"
	StatusBooked Status = "Booked"
	StatusOptOut Status = "Opt-Out"
)

// Lead tracks one prospect's qualification progress, keyed by phone number.
type Lead struct {
	Phone         string    `json:"phone"`
	Name          string    `json:"name,omitempty"`
	Stage         Stage     `json:"stage"`
	Age           int       `json:"age,omitempty"`
	State         string    `json:"state,omitempty"`
	HealthFlag    string    `json:"health_flag,omitempty"`
	HealthDetails string    `json:"health_details,omitempty"`
	Budget        string    `json:"budget,omitempty"`
	ContactTime   string    `json:"contact_time,omitempty"`
	SlotOptions   []string  `json:"slot_options,omitempty"`
	Slot          string    `json:"slot,omitempty"`
	Ticket        string    `json:"ticket,omitempty"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewLead returns a fresh lead at the start of the qualification flow.
func NewLead(phone string) *Lead {
	now := time.Now().UTC()
	return &Lead{
		Phone:     phone,
		Stage:     StageGreeting,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FirstName returns the first token of the lead's name, or empty.
func (l *Lead) FirstName() string {
	fields := strings.Fields(l.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// slotOptionsSeparator joins slot options into the single text column the
// store persists. The separator never occurs in rendered slot strings.
const slotOptionsSeparator = "|"

// EncodeSlotOptions serializes slot options for storage.
func EncodeSlotOptions(options []string) string {
	return strings.Join(options, slotOptionsSeparator)
}

// DecodeSlotOptions deserializes slot options from storage.
func DecodeSlotOptions(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, slotOptionsSeparator)
}
