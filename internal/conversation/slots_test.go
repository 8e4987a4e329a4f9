package conversation

import (
	"strings"
	"testing"
	"time"
)

var slotsNow = time.Date(2026, time.January, 7, 10, 30, 0, 0, time.UTC) // a Wednesday

func TestMakeSlots(t *testing.T) {
	tests := []struct {
		pref       string
		wantPeriod string
		wantFirst  string
	}{
		{"morning", "tomorrow morning", "1. Thursday 09:00 AM"},
		{"afternoon works", "tomorrow afternoon works", "1. Thursday 02:00 PM"},
		{"evening", "tomorrow evening", "1. Thursday 06:00 PM"},
		{"whenever", "tomorrow whenever", "1. Thursday 02:00 PM"},
		{"", "tomorrow", "1. Thursday 02:00 PM"},
	}
	for _, tt := range tests {
		period, slots := MakeSlots(tt.pref, slotsNow)
		if period != tt.wantPeriod {
			t.Errorf("MakeSlots(%q) period = %q, want %q", tt.pref, period, tt.wantPeriod)
		}
		if len(slots) != 4 {
			t.Fatalf("MakeSlots(%q) returned %d slots, want 4", tt.pref, len(slots))
		}
		if slots[0] != tt.wantFirst {
			t.Errorf("MakeSlots(%q) first slot = %q, want %q", tt.pref, slots[0], tt.wantFirst)
		}
	}
}

func TestMakeSlotsHourly(t *testing.T) {
	_, slots := MakeSlots("morning", slotsNow)

	want := []string{
		"1. Thursday 09:00 AM",
		"2. Thursday 10:00 AM",
		"3. Thursday 11:00 AM",
		"4. Thursday 12:00 PM",
	}
	for i, s := range want {
		if slots[i] != s {
			t.Errorf("slot %d = %q, want %q", i, slots[i], s)
		}
	}
}

func TestMakeSlotsDeterministic(t *testing.T) {
	// Preferences naming several periods must still resolve the same way
	// on every call, or regenerated offers drift from what the lead saw.
	prefs := []string{"morning or evening", "evening, maybe afternoon", "afternoon/morning"}
	for _, pref := range prefs {
		firstPeriod, firstSlots := MakeSlots(pref, slotsNow)
		for i := 0; i < 200; i++ {
			period, slots := MakeSlots(pref, slotsNow)
			if period != firstPeriod {
				t.Fatalf("MakeSlots(%q) period changed between calls: %q vs %q", pref, period, firstPeriod)
			}
			for j := range slots {
				if slots[j] != firstSlots[j] {
					t.Fatalf("MakeSlots(%q) slot %d changed between calls: %q vs %q", pref, j, slots[j], firstSlots[j])
				}
			}
		}
	}

	// Earlier keyword in the fixed order wins regardless of position.
	_, slots := MakeSlots("evening or morning", slotsNow)
	if slots[0] != "1. Thursday 09:00 AM" {
		t.Errorf("multi-period preference resolved to %q, want morning start", slots[0])
	}
}

func TestChooseSlot(t *testing.T) {
	_, slots := MakeSlots("morning", slotsNow)

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1", "Thursday 09:00 AM", true},
		{"4", "Thursday 12:00 PM", true},
		{" 2 ", "Thursday 10:00 AM", true},
		{"thursday please", "Thursday 09:00 AM", true},
		{"10:00", "Thursday 10:00 AM", true},
		{"5", "", false},
		{"0", "", false},
		{"friday", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ChooseSlot(tt.in, slots)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ChooseSlot(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}

	if _, ok := ChooseSlot("1", nil); ok {
		t.Error("ChooseSlot with no slots should not match")
	}
}

func TestChooseSlotStripsOrdinal(t *testing.T) {
	slot, ok := ChooseSlot("3", []string{"1. Monday 09:00 AM", "2. Monday 10:00 AM", "3. Monday 11:00 AM"})
	if !ok || strings.HasPrefix(slot, "3.") {
		t.Errorf("ChooseSlot(3) = (%q, %v), want ordinal stripped", slot, ok)
	}
}
