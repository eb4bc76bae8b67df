package normalizer

import "testing"

func TestDigitBufferHoldsSplitNumber(t *testing.T) {
	b := NewDigitBuffer(newTestNormalizer())
	out := b.Receive("Achha, 28")
	if out != "Achha, " {
		t.Fatalf("first emit = %q", out)
	}
	if b.Holding() != "28" {
		t.Fatalf("holding = %q", b.Holding())
	}
	out += b.Receive("000. Theek hai?")
	want := "Achha, attaaees hazaar. Theek hai?"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
	if b.Holding() != "" {
		t.Fatalf("still holding %q", b.Holding())
	}
}

func TestDigitBufferFlushReleasesHeldRun(t *testing.T) {
	b := NewDigitBuffer(newTestNormalizer())
	if out := b.Receive("price "); out != "price " {
		t.Fatalf("got %q", out)
	}
	if out := b.Receive("500"); out != "" {
		t.Fatalf("digit-only chunk emitted %q", out)
	}
	if out := b.Flush(); out != "paanch sau" {
		t.Fatalf("flush = %q", out)
	}
	if b.Holding() != "" {
		t.Fatalf("flush did not reset state")
	}
}

func TestDigitBufferMultipleNumbersOneChunk(t *testing.T) {
	b := NewDigitBuffer(newTestNormalizer())
	out := b.Receive("36,000 se 42")
	if out != "chhatees hazaar se " {
		t.Fatalf("got %q", out)
	}
	out = b.Receive("000 tak")
	if out != "bayaalees hazaar tak" {
		t.Fatalf("got %q", out)
	}
}

func TestDigitBufferCommaGroupedNumberHeld(t *testing.T) {
	// A comma-grouped number ending a chunk is held whole; splitting it at
	// the comma would speak "chhatees, zero" instead of one number.
	b := NewDigitBuffer(newTestNormalizer())
	if out := b.Receive("price 36,000"); out != "price " {
		t.Fatalf("got %q", out)
	}
	if b.Holding() != "36,000" {
		t.Fatalf("holding = %q", b.Holding())
	}
	if out := b.Receive(" ka rate"); out != "chhatees hazaar ka rate" {
		t.Fatalf("got %q", out)
	}
}

func TestDigitBufferStreamingMatchesWholeString(t *testing.T) {
	n := newTestNormalizer()
	b := NewDigitBuffer(n)
	got := b.Receive("price 36,000") + b.Receive(" ka rate hai") + b.Flush()
	want := n.Normalize("price 36,000 ka rate hai")
	if got != want {
		t.Fatalf("streamed %q, whole %q", got, want)
	}
}

func TestDigitBufferTrailingCommaNotHeld(t *testing.T) {
	// A comma with nothing after it ends the number, same as a dot.
	b := NewDigitBuffer(newTestNormalizer())
	if out := b.Receive("haan 42,"); out != "haan bayaalees," {
		t.Fatalf("got %q", out)
	}
	if b.Holding() != "" {
		t.Fatalf("holding = %q", b.Holding())
	}
}

func TestDigitBufferNonDigitContinuationReleases(t *testing.T) {
	b := NewDigitBuffer(newTestNormalizer())
	_ = b.Receive("sirf 1500")
	out := b.Receive(" lagega")
	if out != "dedh hazaar lagega" {
		t.Fatalf("got %q", out)
	}
}

func TestDigitBufferEmptyChunkKeepsHold(t *testing.T) {
	b := NewDigitBuffer(newTestNormalizer())
	_ = b.Receive("42")
	if out := b.Receive(""); out != "" {
		t.Fatalf("got %q", out)
	}
	if b.Holding() != "42" {
		t.Fatalf("holding = %q", b.Holding())
	}
}

func TestDigitBufferTrailingDotNotHeld(t *testing.T) {
	// A number followed by a period is complete; holding it back would
	// stall speech for the rest of the turn.
	b := NewDigitBuffer(newTestNormalizer())
	out := b.Receive("bas 1.")
	if out != "bas ek." {
		t.Fatalf("got %q", out)
	}
	if b.Holding() != "" {
		t.Fatalf("holding = %q", b.Holding())
	}
}

func TestDigitBufferDecimalHeldAcrossDot(t *testing.T) {
	b := NewDigitBuffer(newTestNormalizer())
	if out := b.Receive("1.5"); out != "" {
		t.Fatalf("got %q", out)
	}
	if out := b.Receive(" ton"); out != "dedh ton" {
		t.Fatalf("got %q", out)
	}
}

func TestDigitBufferFlushEmpty(t *testing.T) {
	b := NewDigitBuffer(newTestNormalizer())
	if out := b.Flush(); out != "" {
		t.Fatalf("got %q", out)
	}
}

func TestAdvanceIsPure(t *testing.T) {
	n := newTestNormalizer()
	st := DigitState{Held: "28"}
	st1, out1 := n.Advance(st, "000 tak")
	st2, out2 := n.Advance(st, "000 tak")
	if st1 != st2 || out1 != out2 {
		t.Fatalf("Advance not deterministic: (%v,%q) vs (%v,%q)", st1, out1, st2, out2)
	}
	if st.Held != "28" {
		t.Fatalf("input state mutated: %v", st)
	}
	if out1 != "attaaees hazaar tak" {
		t.Fatalf("got %q", out1)
	}
}
