package normalizer

import "regexp"

// A number split across stream chunks must not be converted piecewise:
// "28" + "000" spoken as separate tokens reads as "attaaees zero" instead
// of "attaaees hazaar". The buffer holds a trailing digit run back until
// the next chunk proves the number is complete.

// trailingDigitsRe matches a numeral token at the very end of the text:
// a digit run with optional grouping commas and one optional decimal
// part. Grouping commas must be held with their digits ("36,000" split
// at the comma would speak as two numbers); a trailing dot or comma
// terminates the number and is never held.
var trailingDigitsRe = regexp.MustCompile(`((?:\d+(?:,\d+)*)(?:\.\d+)?)$`)

// DigitState is the carry between chunks: the digit run withheld from the
// previous emit. The zero value is the initial state.
type DigitState struct {
	Held string
}

// Advance consumes one chunk and returns the next state plus the text
// safe to emit now. The held run is prepended to the chunk before
// normalizing, so a number that continues across the boundary is
// converted whole. Advance is pure; callers own the state threading.
func (n *Normalizer) Advance(st DigitState, chunk string) (DigitState, string) {
	if chunk == "" {
		return st, ""
	}
	combined := st.Held + chunk
	if loc := trailingDigitsRe.FindStringIndex(combined); loc != nil {
		return DigitState{Held: combined[loc[0]:]}, n.Normalize(combined[:loc[0]])
	}
	return DigitState{}, n.Normalize(combined)
}

// FlushHeld converts whatever run is still held at end of turn. The
// stream ending is the proof that the number is complete.
func (n *Normalizer) FlushHeld(st DigitState) string {
	if st.Held == "" {
		return ""
	}
	return n.Normalize(st.Held)
}

// DigitBuffer binds a Normalizer and a DigitState for callers that want a
// stateful per-stream object rather than threading state themselves.
// Not safe for concurrent use; each stream owns one.
type DigitBuffer struct {
	n  *Normalizer
	st DigitState
}

func NewDigitBuffer(n *Normalizer) *DigitBuffer {
	return &DigitBuffer{n: n}
}

// Receive feeds one chunk and returns the emittable text, possibly empty.
func (b *DigitBuffer) Receive(chunk string) string {
	st, out := b.n.Advance(b.st, chunk)
	b.st = st
	return out
}

// Flush releases the held run and resets the buffer for the next turn.
func (b *DigitBuffer) Flush() string {
	out := b.n.FlushHeld(b.st)
	b.st = DigitState{}
	return out
}

// Holding reports the currently withheld run, for logging.
func (b *DigitBuffer) Holding() string { return b.st.Held }
