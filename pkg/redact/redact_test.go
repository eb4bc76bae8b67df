package redact

import (
	"strings"
	"testing"
)

func TestDisabledPassthrough(t *testing.T) {
	SetEnabled(false)
	in := "call +91 98765 43210"
	if got := Text(in); got != in {
		t.Fatalf("disabled redaction changed text: %q", got)
	}
}

func TestRedactsPhoneAndEmail(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)
	got := Text("shop +91 98765 43210, mail sharma@example.com")
	if !strings.Contains(got, "[REDACTED_PHONE]") {
		t.Fatalf("phone not redacted: %q", got)
	}
	if !strings.Contains(got, "[REDACTED_EMAIL]") {
		t.Fatalf("email not redacted: %q", got)
	}
}

func TestPricesSurviveRedaction(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)
	got := Text("rate 42000 hai")
	if !strings.Contains(got, "42000") {
		t.Fatalf("price was redacted: %q", got)
	}
}
