package chatctx

import (
	"reflect"
	"testing"
)

func roles(h History) []Role {
	out := make([]Role, 0, len(h))
	for _, m := range h {
		out = append(out, m.Role)
	}
	return out
}

func TestSanitizeAlreadyValid(t *testing.T) {
	h := History{
		{Role: RoleSystem, Content: "You are..."},
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: "Hi"},
	}
	got := Sanitize(h)
	want := []Role{RoleSystem, RoleUser, RoleAssistant}
	if !reflect.DeepEqual(roles(got), want) {
		t.Fatalf("roles = %v, want %v", roles(got), want)
	}
}

func TestSanitizeDropsStaleAssistant(t *testing.T) {
	h := History{
		{Role: RoleSystem, Content: "You are..."},
		{Role: RoleAssistant, Content: "stale greeting"},
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: "Hi"},
	}
	got := Sanitize(h)
	want := []Role{RoleSystem, RoleUser, RoleAssistant}
	if !reflect.DeepEqual(roles(got), want) {
		t.Fatalf("roles = %v, want %v", roles(got), want)
	}
}

func TestSanitizeSystemOnly(t *testing.T) {
	h := History{{Role: RoleSystem, Content: "A"}}
	got := Sanitize(h)
	if len(got) != 1 || got[0].Role != RoleSystem {
		t.Fatalf("got %v", got)
	}
}

func TestSanitizeNoUserAfterPrefix(t *testing.T) {
	h := History{
		{Role: RoleSystem, Content: "A"},
		{Role: RoleAssistant, Content: "stale"},
		{Role: RoleAssistant, Content: "more stale"},
	}
	got := Sanitize(h)
	want := []Role{RoleSystem}
	if !reflect.DeepEqual(roles(got), want) {
		t.Fatalf("roles = %v, want %v", roles(got), want)
	}
}

func TestSanitizeEmpty(t *testing.T) {
	if got := Sanitize(nil); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestSanitizeMultipleSystemThenAssistant(t *testing.T) {
	h := History{
		{Role: RoleSystem, Content: "A"},
		{Role: RoleSystem, Content: "B"},
		{Role: RoleAssistant, Content: "stale"},
		{Role: RoleUser, Content: "Hi"},
	}
	got := Sanitize(h)
	want := []Role{RoleSystem, RoleSystem, RoleUser}
	if !reflect.DeepEqual(roles(got), want) {
		t.Fatalf("roles = %v, want %v", roles(got), want)
	}
}

func TestSanitizeAssistantFirstNoSystem(t *testing.T) {
	h := History{
		{Role: RoleAssistant, Content: "stale"},
		{Role: RoleUser, Content: "Hi"},
	}
	got := Sanitize(h)
	want := []Role{RoleUser}
	if !reflect.DeepEqual(roles(got), want) {
		t.Fatalf("roles = %v, want %v", roles(got), want)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	histories := []History{
		nil,
		{{Role: RoleSystem, Content: "A"}},
		{{Role: RoleAssistant, Content: "x"}, {Role: RoleUser, Content: "y"}},
		{{Role: RoleSystem, Content: "A"}, {Role: RoleAssistant, Content: "x"}, {Role: RoleUser, Content: "y"}, {Role: RoleAssistant, Content: "z"}},
		{{Role: RoleUser, Content: "y"}},
	}
	for i, h := range histories {
		once := Sanitize(h)
		twice := Sanitize(once)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("case %d not idempotent: %v vs %v", i, once, twice)
		}
	}
}

func TestSanitizeDoesNotMutateOriginal(t *testing.T) {
	h := History{
		{Role: RoleSystem, Content: "A"},
		{Role: RoleAssistant, Content: "stale"},
		{Role: RoleUser, Content: "Hi"},
	}
	_ = Sanitize(h)
	if len(h) != 3 || h[1].Role != RoleAssistant {
		t.Fatalf("original mutated: %v", h)
	}
}

func TestSystemPrepend(t *testing.T) {
	h := History{{Role: RoleUser, Content: "Hi"}}
	got := h.System("prompt")
	if len(got) != 2 || got[0].Role != RoleSystem {
		t.Fatalf("got %v", got)
	}
	again := got.System("prompt")
	if len(again) != 2 {
		t.Fatalf("system duplicated: %v", again)
	}
}
