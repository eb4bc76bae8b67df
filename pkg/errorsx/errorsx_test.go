package errorsx

import "testing"

func TestWrapAndReason(t *testing.T) {
	err := Wrap(assertErr{}, ReasonLLMStream)
	if Reason(err) != ReasonLLMStream {
		t.Fatalf("expected reason %s, got %s", ReasonLLMStream, Reason(err))
	}
	if !HasReason(err, ReasonLLMStream) {
		t.Fatalf("expected HasReason true")
	}
}

func TestWrapPreservesExistingReason(t *testing.T) {
	first := Wrap(assertErr{}, ReasonNumeralMagnitude)
	second := Wrap(first, ReasonLLMStream)
	if Reason(second) != ReasonNumeralMagnitude {
		t.Fatalf("expected reason preserved, got %s", Reason(second))
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, ReasonRegisterDrift) != nil {
		t.Fatalf("wrapping nil should stay nil")
	}
	if Reason(nil) != ReasonUnknown {
		t.Fatalf("nil error should have unknown reason")
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
