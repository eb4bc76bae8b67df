package hindi

import "strings"

// Transliterate maps any residual Devanagari in s to a best-effort Latin
// phonetic rendering. The LLM is prompted to answer in Romanized Hindi but
// occasionally leaks Devanagari; sending that to the synthesizer untouched
// produces wrong or missing audio, so this runs as a safety net on every
// utterance. Unmapped symbols pass through unchanged.
func Transliterate(s string) string {
	if !ContainsDevanagari(s) {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if stem, ok := consonants[r]; ok {
			// A consonant and its dependent vowel sign resolve as one
			// unit; looking them up independently doubles the vowel
			// ("kaa" would come out "kaaa").
			if i+1 < len(runes) {
				if m, ok := matras[runes[i+1]]; ok {
					b.WriteString(stem + m)
					i++
					continue
				}
			}
			b.WriteString(stem + "a")
			continue
		}
		if v, ok := symbols[r]; ok {
			b.WriteString(v)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ContainsDevanagari reports whether s has any code point in the
// Devanagari block.
func ContainsDevanagari(s string) bool {
	for _, r := range s {
		if r >= 0x0900 && r <= 0x097F {
			return true
		}
	}
	return false
}

// Consonant stems carry no vowel; the inherent "a" (or a following matra)
// is appended during the scan.
var consonants = map[rune]string{
	'क': "k", 'ख': "kh", 'ग': "g", 'घ': "gh", 'ङ': "ng",
	'च': "ch", 'छ': "chh", 'ज': "j", 'झ': "jh", 'ञ': "ny",
	'ट': "t", 'ठ': "th", 'ड': "d", 'ढ': "dh", 'ण': "n",
	'त': "t", 'थ': "th", 'द': "d", 'ध': "dh", 'न': "n",
	'प': "p", 'फ': "ph", 'ब': "b", 'भ': "bh", 'म': "m",
	'य': "y", 'र': "r", 'ल': "l", 'व': "v", 'श': "sh",
	'ष': "sh", 'स': "s", 'ह': "h",
	'क़': "q", 'ख़': "kh", 'ग़': "g", 'ज़': "z",
	'ड़': "d", 'ढ़': "dh", 'फ़': "f",
}

// Dependent vowel signs. The halant (virama) suppresses the inherent
// vowel entirely, so it maps to the empty string.
var matras = map[rune]string{
	'ा': "aa", 'ि': "i", 'ी': "ee", 'ु': "u", 'ू': "oo",
	'ृ': "ri", 'े': "e", 'ै': "ai", 'ो': "o", 'ौ': "au",
	'ं': "n", 'ँ': "n", 'ः': "h", '्': "",
}

// Single-symbol lookups: independent vowels, Devanagari digits, and
// punctuation.
var symbols = map[rune]string{
	'अ': "a", 'आ': "aa", 'इ': "i", 'ई': "ee", 'उ': "u",
	'ऊ': "oo", 'ऋ': "ri", 'ए': "e", 'ऐ': "ai", 'ओ': "o",
	'औ': "au", 'ऑ': "o", 'ऍ': "e",
	'०': "0", '१': "1", '२': "2", '३': "3", '४': "4",
	'५': "5", '६': "6", '७': "7", '८': "8", '९': "9",
	'।': ".", '॥': ".",
}
