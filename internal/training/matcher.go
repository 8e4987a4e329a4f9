package training

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultThreshold is the minimum score a fuzzy candidate needs to win.
const DefaultThreshold = 72

// Words that signal the lead is talking about our domain; candidates sharing
// one with the input get a small score boost.
var domainKeywords = []string{
	"insurance", "premium", "coverage", "policy", "quote",
	"expense", "beneficiary", "diabetes", "funeral", "burial",
}

const keywordBonus = 5

// Matcher scores inbound messages against the active dataset using partial
// ratio similarity. It reads the dataset through a Holder so admin uploads
// take effect without restarts.
type Matcher struct {
	holder    *Holder
	threshold int
}

// NewMatcher builds a Matcher. A non-positive threshold falls back to
// DefaultThreshold.
func NewMatcher(holder *Holder, threshold int) *Matcher {
	if holder == nil {
		panic("training: holder required")
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{holder: holder, threshold: threshold}
}

// Match returns the best-scoring record for input, if any candidate clears
// the threshold. An exact (case-insensitive) user_input match wins outright.
func (m *Matcher) Match(input string) (Record, bool) {
	ds := m.holder.Load()
	if ds.Len() == 0 {
		return Record{}, false
	}

	lower := strings.ToLower(strings.TrimSpace(input))
	if lower == "" {
		return Record{}, false
	}

	for _, rec := range ds.Records() {
		if strings.ToLower(rec.UserInput) == lower {
			return rec, true
		}
	}

	var (
		best      Record
		bestScore = -1
	)
	for _, rec := range ds.Records() {
		score := scoreCandidate(lower, rec)
		if score > bestScore {
			bestScore = score
			best = rec
		}
	}
	if bestScore < m.threshold {
		return Record{}, false
	}
	return best, true
}

// Score exposes the raw score for a single candidate, used by the admin
// test-match endpoint.
func (m *Matcher) Score(input string, rec Record) int {
	return scoreCandidate(strings.ToLower(strings.TrimSpace(input)), rec)
}

func scoreCandidate(lowerInput string, rec Record) int {
	candidate := strings.ToLower(rec.UserInput)
	score := fuzzy.PartialRatio(lowerInput, candidate)
	for _, kw := range domainKeywords {
		if strings.Contains(lowerInput, kw) && strings.Contains(candidate, kw) {
			score += keywordBonus
			break
		}
	}
	return score
}
