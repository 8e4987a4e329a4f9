package conversation

import "strings"

// YesNo is the outcome of interpreting a message as a yes/no answer.
type YesNo int

const (
	YesNoUnclear YesNo = iota
	YesNoYes
	YesNoNo
)

// Detector classifies short inbound messages against fixed keyword sets.
// Multi-word keywords match as substrings, single words match whole tokens
// so that "nonstop" never reads as an opt-out.
type Detector struct {
	affirmative []string
	negative    []string
	optOut      []string
	start       []string
	requote     []string
}

// NewDetector builds a Detector with the default keyword sets.
func NewDetector() *Detector {
	return &Detector{
		affirmative: []string{"yes", "y", "yeah", "yep", "sure", "ok", "okay", "confirm", "book"},
		negative:    []string{"no", "n", "nah", "nope", "not interested", "change"},
		optOut:      []string{"stop", "quit", "unsubscribe", "opt out"},
		start:       []string{"start", "restart", "begin", "hello", "hi"},
		requote:     []string{"new", "another", "quote", "restart"},
	}
}

// Classify reads msg as a yes/no answer. Messages matching both sets
// ("yes and no") come back unclear.
func (d *Detector) Classify(msg string) YesNo {
	yes := matchesAny(msg, d.affirmative)
	no := matchesAny(msg, d.negative)
	switch {
	case yes && !no:
		return YesNoYes
	case no && !yes:
		return YesNoNo
	default:
		return YesNoUnclear
	}
}

// IsOptOut reports whether msg is an unsubscribe request.
func (d *Detector) IsOptOut(msg string) bool { return matchesAny(msg, d.optOut) }

// IsStart reports whether msg is a greeting or restart request.
func (d *Detector) IsStart(msg string) bool { return matchesAny(msg, d.start) }

// IsRequote reports whether a finished lead is asking for another quote.
func (d *Detector) IsRequote(msg string) bool { return matchesAny(msg, d.requote) }

func matchesAny(msg string, keywords []string) bool {
	lower := strings.ToLower(strings.TrimSpace(msg))
	if lower == "" {
		return false
	}
	var tokens []string
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(lower, kw) {
				return true
			}
			continue
		}
		if tokens == nil {
			tokens = splitTokens(lower)
		}
		for _, tok := range tokens {
			if tok == kw {
				return true
			}
		}
	}
	return false
}

func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
}
