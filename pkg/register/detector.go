// Package register classifies whether an utterance conforms to the
// required output register: Romanized Hindi. The LLM occasionally breaks
// character and answers in English or raw Devanagari; the synthesizer then
// either mispronounces the turn or rejects it outright, so the pipeline
// needs a cheap end-of-turn check to drive its recovery policy.
package register

import "strings"

// Classification is the detector verdict for one utterance. Evidence
// carries the signals that fired; it is recomputed per utterance and
// never persisted.
type Classification struct {
	InRegister bool
	Evidence   []string
}

type Config struct {
	// Markers are Romanized Hindi words whose presence counts as
	// counter-evidence against a break. Loaded from config so the list
	// can grow without code changes.
	Markers []string
	// MinLength is the minimum rune count below which classification is
	// skipped: short utterances ("Achha.") carry too little signal.
	MinLength int
}

type Detector struct {
	markers map[string]struct{}
	minLen  int
}

// DefaultMarkers covers the high-frequency Hindi function words and the
// domain's own vocabulary; any one of them marks the text as Hinglish.
var DefaultMarkers = []string{
	"hai", "hain", "ka", "ki", "ke", "ko", "se", "mein", "pe", "par",
	"kya", "kitna", "kitne", "kaun", "kab",
	"haan", "nahi", "nahin", "ji", "achha", "theek", "bhai",
	"aap", "tum", "main", "hum", "woh", "yeh",
	"hazaar", "lakh", "rupaye", "paisa",
	"milega", "chahiye", "karo", "bata", "bolo", "lagega",
}

func NewDetector(cfg Config) *Detector {
	if len(cfg.Markers) == 0 {
		cfg.Markers = DefaultMarkers
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = 12
	}
	markers := make(map[string]struct{}, len(cfg.Markers))
	for _, m := range cfg.Markers {
		markers[strings.ToLower(m)] = struct{}{}
	}
	return &Detector{markers: markers, minLen: cfg.MinLength}
}

// Classify evaluates a complete utterance. It is a heuristic, not a
// language-ID model: the recovery action downstream is disruptive, so
// ambiguous or mixed text defaults to in-register and only unambiguous
// foreign signal flips the verdict.
func (d *Detector) Classify(utterance string) Classification {
	trimmed := strings.TrimSpace(utterance)
	if len([]rune(trimmed)) < d.minLen {
		return Classification{InRegister: true, Evidence: []string{"too_short"}}
	}

	var evidence []string
	if containsDevanagari(trimmed) {
		// The safety net has already run by the time this executes, so
		// any surviving Devanagari means its table missed a symbol.
		evidence = append(evidence, "residual_devanagari")
	}

	if d.hasMarker(trimmed) {
		return Classification{InRegister: true, Evidence: append(evidence, "marker_words")}
	}
	evidence = append(evidence, "no_marker_words")

	if len(evidence) < 2 && !hasLatinWords(trimmed, 3) {
		// Neither foreign script nor enough Latin prose to judge.
		return Classification{InRegister: true, Evidence: evidence}
	}
	return Classification{InRegister: false, Evidence: evidence}
}

func (d *Detector) hasMarker(text string) bool {
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:\"'()-")
		if _, ok := d.markers[w]; ok {
			return true
		}
	}
	return false
}

// hasLatinWords reports whether text has at least n words made of Latin
// letters, enough to call it prose rather than stray tokens.
func hasLatinWords(text string, n int) bool {
	count := 0
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,!?;:\"'()-")
		if w == "" {
			continue
		}
		latin := true
		for _, r := range w {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
				latin = false
				break
			}
		}
		if latin {
			count++
			if count >= n {
				return true
			}
		}
	}
	return false
}

func containsDevanagari(s string) bool {
	for _, r := range s {
		if r >= 0x0900 && r <= 0x097F {
			return true
		}
	}
	return false
}
