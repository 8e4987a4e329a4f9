package conversation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const slotCount = 4

// Checked in order; a preference naming several periods always resolves to
// the same one.
var preferencePeriods = []struct {
	keyword string
	hour    int
}{
	{"morning", 9},
	{"afternoon", 14},
	{"evening", 18},
}

const defaultStartHour = 14

// MakeSlots builds the callback slots offered to a lead: hourly slots for
// the day after now, starting at the hour implied by the stated preference.
// Slots are numbered for reply-by-number selection, e.g. "1. Monday 09:00 AM".
func MakeSlots(preference string, now time.Time) (period string, slots []string) {
	pref := strings.TrimSpace(preference)

	start := defaultStartHour
	lower := strings.ToLower(pref)
	for _, period := range preferencePeriods {
		if strings.Contains(lower, period.keyword) {
			start = period.hour
			break
		}
	}

	day := now.AddDate(0, 0, 1)
	base := time.Date(day.Year(), day.Month(), day.Day(), start, 0, 0, 0, now.Location())

	slots = make([]string, 0, slotCount)
	for i := 0; i < slotCount; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		slots = append(slots, fmt.Sprintf("%d. %s", i+1, at.Format("Monday 03:04 PM")))
	}

	period = "tomorrow"
	if pref != "" {
		period = "tomorrow " + pref
	}
	return period, slots
}

// ChooseSlot resolves the lead's reply against the offered slots, either by
// number ("2") or by words overlapping the slot text ("monday please").
// The returned slot has the ordinal prefix stripped.
func ChooseSlot(text string, slots []string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(slots) == 0 {
		return "", false
	}

	if idx, err := strconv.Atoi(trimmed); err == nil {
		if idx >= 1 && idx <= len(slots) {
			return stripOrdinal(slots[idx-1]), true
		}
		return "", false
	}

	tokens := strings.Fields(strings.ToLower(trimmed))
	for _, slot := range slots {
		lowerSlot := strings.ToLower(slot)
		for _, tok := range tokens {
			if strings.Contains(lowerSlot, tok) {
				return stripOrdinal(slot), true
			}
		}
	}
	return "", false
}

func stripOrdinal(slot string) string {
	if _, rest, ok := strings.Cut(slot, ". "); ok {
		return rest
	}
	return slot
}
