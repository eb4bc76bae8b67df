package aggregators

import (
	"testing"

	"github.com/harunnryd/vaani/pkg/frames"
)

func ttsFrame(streamID string, pts int64, text string) frames.TextFrame {
	return frames.NewTextFrame(streamID, pts, text, map[string]string{frames.MetaSource: "tts"})
}

func collect(t *testing.T, out []frames.Frame) []string {
	t.Helper()
	var texts []string
	for _, f := range out {
		if tf, ok := f.(frames.TextFrame); ok {
			texts = append(texts, tf.Text())
		}
	}
	return texts
}

func TestSegmentAggregatorEmitsCompleteSentences(t *testing.T) {
	a := NewSegmentAggregator(SegmentConfig{})

	out, err := a.Process(ttsFrame("s1", 1, "Haan ji, attaaees hazaar. Aur kuch"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	got := collect(t, out)
	if len(got) != 1 || got[0] != "Haan ji, attaaees hazaar." {
		t.Fatalf("segments = %q", got)
	}

	flush := frames.NewControlFrame("s1", 2, frames.ControlFlush, nil)
	out, _ = a.Process(flush)
	got = collect(t, out)
	if len(got) != 1 || got[0] != " Aur kuch" {
		t.Fatalf("flush released %q", got)
	}
}

func TestSegmentAggregatorHoldsShortSentences(t *testing.T) {
	a := NewSegmentAggregator(SegmentConfig{MinLen: 12})
	out, _ := a.Process(ttsFrame("s1", 1, "Ji. Bilkul sahi baat hai. Aur"))
	got := collect(t, out)
	if len(got) != 1 || got[0] != "Ji. Bilkul sahi baat hai." {
		t.Fatalf("segments = %q", got)
	}
}

func TestSegmentAggregatorFlushEmpty(t *testing.T) {
	a := NewSegmentAggregator(SegmentConfig{})
	flush := frames.NewControlFrame("s1", 1, frames.ControlFlush, nil)
	out, err := a.Process(flush)
	if err != nil || len(out) != 1 {
		t.Fatalf("got %v %v", out, err)
	}
}

func TestSegmentAggregatorCancelDiscards(t *testing.T) {
	a := NewSegmentAggregator(SegmentConfig{})
	_, _ = a.Process(ttsFrame("s1", 1, "kuch adhura"))
	cancel := frames.NewControlFrame("s1", 2, frames.ControlCancel, nil)
	_, _ = a.Process(cancel)
	flush := frames.NewControlFrame("s1", 3, frames.ControlFlush, nil)
	out, _ := a.Process(flush)
	if got := collect(t, out); len(got) != 0 {
		t.Fatalf("cancelled text released: %q", got)
	}
}

func TestSegmentAggregatorPassesUserFrames(t *testing.T) {
	a := NewSegmentAggregator(SegmentConfig{})
	in := frames.NewTextFrame("s1", 1, "hello. there.", map[string]string{frames.MetaSource: "user"})
	out, _ := a.Process(in)
	if len(out) != 1 {
		t.Fatalf("user frame aggregated: %v", out)
	}
}
