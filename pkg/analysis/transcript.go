// Package analysis inspects finished call transcripts offline: it flags
// agent turns that violate the synthesizer contract and recovers numeric
// prices from spoken Hindi number words, so quoted amounts can be checked
// against the catalog.
package analysis

import (
	"regexp"
	"strings"

	"github.com/harunnryd/vaani/pkg/hindi"
)

type Turn struct {
	Role string
	Text string
}

// Violation names for ConstraintChecker results.
const (
	ViolationDevanagari       = "devanagari"
	ViolationActionMarker     = "action_marker"
	ViolationNewline          = "newline"
	ViolationTooLong          = "too_long"
	ViolationStackedQuestions = "stacked_questions"
	ViolationToolLeak         = "tool_leak"
)

var actionMarkerRe = regexp.MustCompile(`[\*\(\[][a-zA-Z\s]+[\*\)\]]`)

// ConstraintChecker validates one agent turn against the rules the
// prompt imposes on the model. Violations here mean the runtime pipeline
// had to repair the turn, or worse, let it through.
type ConstraintChecker struct {
	// MaxChars bounds a spoken turn; phone callers talk over anything
	// longer.
	MaxChars int
	// MaxQuestions bounds questions per turn; stacked questions confuse
	// callers who can only answer one.
	MaxQuestions int
}

func NewConstraintChecker() *ConstraintChecker {
	return &ConstraintChecker{MaxChars: 320, MaxQuestions: 1}
}

func (c *ConstraintChecker) Check(text string) []string {
	var violations []string
	if hindi.ContainsDevanagari(text) {
		violations = append(violations, ViolationDevanagari)
	}
	if actionMarkerRe.MatchString(text) {
		violations = append(violations, ViolationActionMarker)
	}
	if strings.Contains(text, "\n") {
		violations = append(violations, ViolationNewline)
	}
	if c.MaxChars > 0 && len([]rune(text)) > c.MaxChars {
		violations = append(violations, ViolationTooLong)
	}
	if c.MaxQuestions > 0 && strings.Count(text, "?") > c.MaxQuestions {
		violations = append(violations, ViolationStackedQuestions)
	}
	if strings.Contains(text, "end_call") {
		violations = append(violations, ViolationToolLeak)
	}
	return violations
}

// Report summarizes a conversation check.
type Report struct {
	AgentTurns int
	Violations map[string]int
	// Score is 1 minus the share of agent turns with any violation.
	Score float64
}

func (c *ConstraintChecker) CheckConversation(turns []Turn) Report {
	rep := Report{Violations: make(map[string]int), Score: 1}
	bad := 0
	for _, t := range turns {
		if t.Role != "assistant" {
			continue
		}
		rep.AgentTurns++
		v := c.Check(t.Text)
		if len(v) > 0 {
			bad++
		}
		for _, name := range v {
			rep.Violations[name]++
		}
	}
	if rep.AgentTurns > 0 {
		rep.Score = 1 - float64(bad)/float64(rep.AgentTurns)
	}
	return rep
}

var units = map[string]int{
	"sau":    100,
	"hazaar": 1_000,
	"lakh":   100_000,
	"crore":  10_000_000,
}

// PriceFromWords reverses the spoken form back to an integer:
// "bayaalees hazaar" is 42000, "saadhe saintees hazaar" is 37500. The
// bool is false when the text contains no recognizable number words or
// the result is not a whole number.
func PriceFromWords(text string) (int64, bool) {
	var total, cur float64
	seen := false
	pendingHalf := false
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?;:")
		switch tok {
		case "saadhe":
			pendingHalf = true
			continue
		case "dedh":
			cur += 1.5
			seen = true
			continue
		case "dhaai":
			cur += 2.5
			seen = true
			continue
		}
		if v, ok := hindi.Value(tok); ok {
			cur += float64(v)
			if pendingHalf {
				cur += 0.5
				pendingHalf = false
			}
			seen = true
			continue
		}
		if unit, ok := units[tok]; ok {
			if cur == 0 {
				cur = 1
			}
			total += cur * float64(unit)
			cur = 0
			seen = true
		}
	}
	total += cur
	if !seen || total != float64(int64(total)) {
		return 0, false
	}
	return int64(total), true
}

// FirstPrice scans a turn and returns the first price-like amount found
// after a currency cue ("rupaye", "price", "rate").
func FirstPrice(text string) (int64, bool) {
	lower := strings.ToLower(text)
	cued := false
	for _, cue := range []string{"rupaye", "price", "rate", "lagega", "milega"} {
		if strings.Contains(lower, cue) {
			cued = true
			break
		}
	}
	if !cued {
		return 0, false
	}
	v, ok := PriceFromWords(lower)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}
