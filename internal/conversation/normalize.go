package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ageRe    = regexp.MustCompile(`\b(\d{1,3})\b`)
	budgetRe = regexp.MustCompile(`\$?\s*(\d{1,4})`)
	digitRe  = regexp.MustCompile(`\d`)
)

// ParseAge extracts the first number in text and accepts it when it falls
// in the insurable range. "I'm 45 years old" yields 45.
func ParseAge(text string) (int, bool) {
	m := ageRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	age, err := strconv.Atoi(m[1])
	if err != nil || age < 18 || age > 120 {
		return 0, false
	}
	return age, true
}

// ParseBudget extracts a dollar amount from free text and returns it in the
// canonical "$N" form. "around $100 a month" yields "$100".
func ParseBudget(text string) (string, bool) {
	m := budgetRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("$%s", m[1]), true
}

// ValidateName accepts full names only: at least two tokens, no digits.
func ValidateName(text string) bool {
	trimmed := strings.TrimSpace(text)
	if digitRe.MatchString(trimmed) {
		return false
	}
	return len(strings.Fields(trimmed)) >= 2
}
