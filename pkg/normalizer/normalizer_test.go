package normalizer

import "testing"

func newTestNormalizer() *Normalizer {
	return New(DefaultTables())
}

func TestNormalizeNumberWithCommas(t *testing.T) {
	n := newTestNormalizer()
	got := n.Normalize("Price is 36,000 rupees")
	want := "Price is chhatees hazaar rupees"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeHalfThousand(t *testing.T) {
	n := newTestNormalizer()
	got := n.Normalize("37500 tak milega")
	want := "saadhe saintees hazaar tak milega"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeFallbackHookSeesRejectedToken(t *testing.T) {
	// A number past the converter's range stays digits, and the hook gets
	// told so the drop in synthesis quality shows up in metrics.
	n := newTestNormalizer()
	var rejected []string
	n.SetFallbackHook(func(tok string) { rejected = append(rejected, tok) })
	out := n.Normalize("rate 20000000 hai")
	if out != "rate 20000000 hai" {
		t.Fatalf("got %q", out)
	}
	if len(rejected) != 1 || rejected[0] != "20000000" {
		t.Fatalf("hook calls = %v", rejected)
	}
	rejected = nil
	_ = n.Normalize("sirf 500 ka")
	if len(rejected) != 0 {
		t.Fatalf("hook fired on convertible token: %v", rejected)
	}
}

func TestNormalizeStripsThinkTags(t *testing.T) {
	n := newTestNormalizer()
	got := n.Normalize("<think>user wants price</think>Haan ji, bilkul")
	if got != "Haan ji, bilkul" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeStripsUnterminatedThinkTag(t *testing.T) {
	// The tag can be cut off by stream cancellation; everything after the
	// open tag is reasoning, not speech.
	n := newTestNormalizer()
	got := n.Normalize("Haan <think>the user is asking")
	if got != "Haan " {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeStripsActionMarkers(t *testing.T) {
	n := newTestNormalizer()
	cases := map[string]string{
		"*laughs* theek hai": " theek hai",
		"(smiles) haan ji":   " haan ji",
		"[pauses] ek minute": " ek minute",
	}
	for in, want := range cases {
		if got := n.Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeNewlinesBecomeSpaces(t *testing.T) {
	n := newTestNormalizer()
	if got := n.Normalize("ek\ndo\nteen"); got != "ek do teen" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeTransliteratesBeforeNumerals(t *testing.T) {
	n := newTestNormalizer()
	got := n.Normalize("usका rate 500 hai")
	want := "uskaa rate paanch sau hai"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeDevanagariDigitsConvert(t *testing.T) {
	// Devanagari digits become ASCII in the transliteration step, then
	// flow through numeral conversion like any other token.
	n := newTestNormalizer()
	got := n.Normalize("bas ५०० rupaye")
	want := "bas paanch sau rupaye"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeOversizedNumberKeptAsDigits(t *testing.T) {
	n := newTestNormalizer()
	got := n.Normalize("costs 20000000 total")
	if got != "costs 20000000 total" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeLexicalizedDecimal(t *testing.T) {
	n := newTestNormalizer()
	got := n.Normalize("1.5 ton AC chahiye")
	want := "dedh ton ay see chahiye"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeAbbreviationsCaseSensitive(t *testing.T) {
	n := newTestNormalizer()
	if got := n.Normalize("EMI pe lena hai"); got != "ee em aai pe lena hai" {
		t.Fatalf("got %q", got)
	}
	// Lowercase "ac" is a different token and must not rewrite.
	if got := n.Normalize("ac band karo"); got != "ac band karo" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeTermsCaseInsensitive(t *testing.T) {
	n := newTestNormalizer()
	if got := n.Normalize("Warranty kitni hai"); got != "vaaranti kitni hai" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeRupeeSymbol(t *testing.T) {
	n := newTestNormalizer()
	got := n.Normalize("sirf ₹500 extra")
	want := "sirf rupaye paanch sau extra"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeScriptBoundarySpacing(t *testing.T) {
	n := newTestNormalizer()
	// "5star" is not a standalone numeral, so it keeps its digits and
	// only gains a space for the synthesizer.
	if got := n.Normalize("5star rating hai"); got != "5 star rating hai" {
		t.Fatalf("got %q", got)
	}
	if got := n.Normalize("camelCase token"); got != "camel Case token" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeCollapsesSpacesWithoutTrimming(t *testing.T) {
	n := newTestNormalizer()
	got := n.Normalize("  haan  ji ")
	if got != " haan ji " {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	n := newTestNormalizer()
	if got := n.Normalize(""); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeDeterministicOverTables(t *testing.T) {
	// Replacement maps must not leak iteration order into output.
	n1 := New(DefaultTables())
	n2 := New(DefaultTables())
	in := "AC ka EMI aur GST milake ₹42,000"
	if a, b := n1.Normalize(in), n2.Normalize(in); a != b {
		t.Fatalf("non-deterministic: %q vs %q", a, b)
	}
}
