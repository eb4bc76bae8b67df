// Package chatctx holds the conversation history exchanged with the
// language model and enforces the ordering the model's API requires.
package chatctx

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// History is an ordered conversation. It is owned and mutated by the
// calling session; functions here never modify it in place.
type History []Message

// System prepends a system message when prompt is non-empty and the
// history does not already start with one.
func (h History) System(prompt string) History {
	if prompt == "" {
		return h
	}
	if len(h) > 0 && h[0].Role == RoleSystem {
		return h
	}
	out := make(History, 0, len(h)+1)
	out = append(out, Message{Role: RoleSystem, Content: prompt})
	return append(out, h...)
}

// Sanitize returns a filtered copy in which the first non-system message
// is a user message. The serving stack rejects a history whose first
// non-system message is an assistant turn with a hard 400, so this runs
// before every request; upstream session code is free to leave stale
// assistant messages (greetings that bypassed the LLM) at the front.
//
// Leading system messages are kept; then everything is dropped until the
// first user message; from there the history is kept unchanged. Applying
// Sanitize twice yields the same result as applying it once.
func Sanitize(h History) History {
	out := make(History, 0, len(h))
	i := 0
	for ; i < len(h); i++ {
		if h[i].Role != RoleSystem {
			break
		}
		out = append(out, h[i])
	}
	for ; i < len(h); i++ {
		if h[i].Role == RoleUser {
			return append(out, h[i:]...)
		}
	}
	return out
}
