package analysis

import "testing"

func TestCheckFlagsViolations(t *testing.T) {
	c := NewConstraintChecker()
	cases := map[string]string{
		"theek hai, ठीक":               ViolationDevanagari,
		"*laughs* haan ji":             ViolationActionMarker,
		"pehli line\ndoosri line":      ViolationNewline,
		"kya chahiye? kab chahiye?":    ViolationStackedQuestions,
		"ab main end_call karti hoon":  ViolationToolLeak,
	}
	for text, want := range cases {
		got := c.Check(text)
		if len(got) != 1 || got[0] != want {
			t.Fatalf("Check(%q) = %v, want [%s]", text, got, want)
		}
	}
}

func TestCheckCleanTurn(t *testing.T) {
	c := NewConstraintChecker()
	if got := c.Check("Haan ji, attaaees hazaar ka rate hai. Aur kuch?"); len(got) != 0 {
		t.Fatalf("clean turn flagged: %v", got)
	}
}

func TestCheckTooLong(t *testing.T) {
	c := NewConstraintChecker()
	long := make([]byte, 0, 400)
	for len(long) < 400 {
		long = append(long, "haan ji "...)
	}
	got := c.Check(string(long))
	if len(got) != 1 || got[0] != ViolationTooLong {
		t.Fatalf("got %v", got)
	}
}

func TestCheckConversationScore(t *testing.T) {
	c := NewConstraintChecker()
	turns := []Turn{
		{Role: "user", Text: "price batao\nabhi"},
		{Role: "assistant", Text: "Haan ji, bayaalees hazaar lagega."},
		{Role: "assistant", Text: "*smiles* theek hai"},
	}
	rep := c.CheckConversation(turns)
	if rep.AgentTurns != 2 {
		t.Fatalf("agent turns = %d", rep.AgentTurns)
	}
	if rep.Violations[ViolationActionMarker] != 1 {
		t.Fatalf("violations = %v", rep.Violations)
	}
	// user turns never count, even with violations
	if rep.Violations[ViolationNewline] != 0 {
		t.Fatalf("user turn counted: %v", rep.Violations)
	}
	if rep.Score != 0.5 {
		t.Fatalf("score = %v", rep.Score)
	}
}

func TestPriceFromWords(t *testing.T) {
	cases := []struct {
		text string
		want int64
	}{
		{"bayaalees hazaar", 42_000},
		{"saadhe saintees hazaar", 37_500},
		{"dedh hazaar", 1_500},
		{"dhaai lakh", 250_000},
		{"paanch sau", 500},
		{"ek lakh bees hazaar", 120_000},
		{"attaaees hazaar rupaye lagega", 28_000},
	}
	for _, c := range cases {
		got, ok := PriceFromWords(c.text)
		if !ok || got != c.want {
			t.Fatalf("PriceFromWords(%q) = %d,%v want %d", c.text, got, ok, c.want)
		}
	}
}

func TestPriceFromWordsRejects(t *testing.T) {
	for _, text := range []string{"theek hai bhai", "", "saadhe"} {
		if v, ok := PriceFromWords(text); ok {
			t.Fatalf("PriceFromWords(%q) = %d, want no price", text, v)
		}
	}
}

func TestFirstPrice(t *testing.T) {
	v, ok := FirstPrice("Iska rate bayaalees hazaar hai ji")
	if !ok || v != 42_000 {
		t.Fatalf("got %d %v", v, ok)
	}
	if _, ok := FirstPrice("bayaalees hazaar log aaye"); ok {
		t.Fatalf("price without cue accepted")
	}
}
