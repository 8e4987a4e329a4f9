package training

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
)

// TriggerSetAppointment marks records that should pull the lead into the
// qualification flow when matched.
const TriggerSetAppointment = "set_appointment"

// Record is one curated question/answer pair used for fuzzy matching.
type Record struct {
	UserInput   string   `json:"user_input"`
	BotResponse string   `json:"bot_response"`
	Intent      string   `json:"intent"`
	Trigger     []string `json:"trigger,omitempty"`
}

// HasTrigger reports whether the record carries the named trigger.
func (r Record) HasTrigger(name string) bool {
	for _, t := range r.Trigger {
		if t == name {
			return true
		}
	}
	return false
}

// Dataset is an immutable snapshot of curated records. Swapped atomically
// via Holder on admin uploads.
type Dataset struct {
	records []Record
}

// NewDataset validates records and freezes them into a Dataset.
func NewDataset(records []Record) (*Dataset, error) {
	if err := ValidateRecords(records); err != nil {
		return nil, err
	}
	frozen := make([]Record, len(records))
	copy(frozen, records)
	return &Dataset{records: frozen}, nil
}

// ValidateRecords rejects records missing any required field.
func ValidateRecords(records []Record) error {
	if len(records) == 0 {
		return errors.New("training: dataset has no records")
	}
	for i, r := range records {
		if r.UserInput == "" || r.BotResponse == "" || r.Intent == "" {
			return fmt.Errorf("training: record %d missing user_input, bot_response or intent", i)
		}
	}
	return nil
}

// Records returns the underlying records. Callers must not mutate them.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return d.records
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Intents counts records per intent label.
func (d *Dataset) Intents() map[string]int {
	out := make(map[string]int)
	if d == nil {
		return out
	}
	for _, r := range d.records {
		out[r.Intent]++
	}
	return out
}

// Holder publishes the active dataset to concurrent readers. A nil current
// dataset means nothing has been loaded yet.
type Holder struct {
	current atomic.Pointer[Dataset]
}

// Load returns the active dataset, which may be nil.
func (h *Holder) Load() *Dataset {
	return h.current.Load()
}

// Replace swaps in a new dataset for all future matches.
func (h *Holder) Replace(d *Dataset) {
	h.current.Store(d)
}

// LoadFile reads a JSON array of records from disk.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("training: read dataset file: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("training: parse dataset file: %w", err)
	}
	return NewDataset(records)
}
