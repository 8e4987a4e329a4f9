package training

import "strings"

// MaxSMSLength is the hard cap applied to any outbound reply body.
const MaxSMSLength = 1500

var punctReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
	"–", "-", "—", "-",
	"…", "...",
)

// SanitizeForSMS strips chat-style formatting markers, normalizes
// typographic punctuation to ASCII and caps the body at MaxSMSLength runes.
func SanitizeForSMS(text string) string {
	out := strings.ReplaceAll(text, "**", "")
	out = strings.ReplaceAll(out, "*", "")
	out = punctReplacer.Replace(out)
	out = strings.TrimSpace(out)

	runes := []rune(out)
	if len(runes) > MaxSMSLength {
		out = string(runes[:MaxSMSLength-3]) + "..."
	}
	return out
}
