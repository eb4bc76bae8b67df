// Package normalizer rewrites LLM output text into a form the Hindi
// speech synthesizer pronounces correctly. It strips reasoning artifacts,
// transliterates stray Devanagari, converts digit tokens to spoken Hindi
// words, and applies configured pronunciation replacements, in a fixed
// order that later steps depend on.
package normalizer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/harunnryd/vaani/pkg/hindi"
)

// Tables carries the configurable replacement vocabulary.
type Tables struct {
	// Abbreviations are matched case-sensitively on word boundaries:
	// "AC" rewrites, "ac" inside "space" does not.
	Abbreviations map[string]string
	// Terms are matched case-insensitively as substrings, for brand and
	// loanword pronunciations that appear in arbitrary casing.
	Terms map[string]string
}

// DefaultTables is the built-in vocabulary for the appliance-sales domain.
// Deployments extend or replace it from config.
func DefaultTables() Tables {
	return Tables{
		Abbreviations: map[string]string{
			"AC":  "ay see",
			"EMI": "ee em aai",
			"GST": "jee es tee",
			"Rs":  "rupaye",
			"OK":  "okay",
		},
		Terms: map[string]string{
			"₹":            "rupaye ",
			"tonne":        "tan",
			"warranty":     "vaaranti",
			"installation": "installeshan",
		},
	}
}

var (
	thinkTagRe     = regexp.MustCompile(`(?s)<think>.*?</think>`)
	thinkOpenRe    = regexp.MustCompile(`(?s)<think>.*$`)
	actionMarkerRe = regexp.MustCompile(`[\*\(\[][a-zA-Z\s]+[\*\)\]]`)
	numeralRe      = regexp.MustCompile(`\b\d+(?:,\d+)*(?:\.\d+)?\b`)
	lowerUpperRe   = regexp.MustCompile(`([a-z])([A-Z])`)
	letterDigitRe  = regexp.MustCompile(`([a-zA-Z])([0-9])`)
	digitLetterRe  = regexp.MustCompile(`([0-9])([a-zA-Z])`)
	multiSpaceRe   = regexp.MustCompile(` {2,}`)
)

type replacement struct {
	re *regexp.Regexp
	to string
}

// Normalizer applies the full rewrite sequence. It is safe for
// concurrent use once configured.
type Normalizer struct {
	abbrevs    []replacement
	terms      []replacement
	onFallback func(token string)
}

func New(tables Tables) *Normalizer {
	return &Normalizer{
		abbrevs: compile(tables.Abbreviations, false),
		terms:   compile(tables.Terms, true),
	}
}

// SetFallbackHook registers fn to be called with every digit token the
// numeral converter rejected and Normalize kept verbatim. Set it before
// the normalizer is shared across goroutines.
func (n *Normalizer) SetFallbackHook(fn func(token string)) {
	n.onFallback = fn
}

// compile turns a replacement map into an ordered rule list. Longer keys
// apply first so "ACs" style overlaps resolve deterministically; map
// iteration order must never influence output.
func compile(m map[string]string, fold bool) []replacement {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	out := make([]replacement, 0, len(keys))
	for _, k := range keys {
		pat := regexp.QuoteMeta(k)
		if isWordly(k) {
			pat = `\b` + pat + `\b`
		}
		if fold {
			pat = `(?i)` + pat
		}
		out = append(out, replacement{re: regexp.MustCompile(pat), to: m[k]})
	}
	return out
}

// isWordly reports whether \b anchors are meaningful for the key: symbols
// like "₹" sit next to digits with no word boundary.
func isWordly(k string) bool {
	for _, r := range k {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return k != ""
}

// Normalize rewrites one piece of text. It never fails: a token the
// numeral converter rejects is kept as digits, which the synthesizer
// renders worse than words but still renders.
//
// The step order is load-bearing. Transliteration runs before numeral
// conversion so Devanagari digits become ASCII first; replacements run
// after transliteration so their keys only need Latin forms; spacing and
// collapsing run last over the fully rewritten text. Leading and trailing
// whitespace is preserved exactly, because callers stream chunks whose
// edge spaces are word boundaries.
func (n *Normalizer) Normalize(text string) string {
	text = thinkTagRe.ReplaceAllString(text, "")
	text = thinkOpenRe.ReplaceAllString(text, "")
	text = actionMarkerRe.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = hindi.Transliterate(text)
	text = numeralRe.ReplaceAllStringFunc(text, func(tok string) string {
		words, err := hindi.Numeral(tok)
		if err != nil {
			if n.onFallback != nil {
				n.onFallback(tok)
			}
			return tok
		}
		return words
	})
	for _, r := range n.abbrevs {
		text = r.re.ReplaceAllString(text, r.to)
	}
	for _, r := range n.terms {
		text = r.re.ReplaceAllString(text, r.to)
	}
	text = lowerUpperRe.ReplaceAllString(text, "$1 $2")
	text = letterDigitRe.ReplaceAllString(text, "$1 $2")
	text = digitLetterRe.ReplaceAllString(text, "$1 $2")
	return multiSpaceRe.ReplaceAllString(text, " ")
}
