package processors

import (
	"log/slog"
	"sync"
	"time"

	"github.com/harunnryd/vaani/pkg/frames"
	"github.com/harunnryd/vaani/pkg/metrics"
	"github.com/harunnryd/vaani/pkg/normalizer"
	"github.com/harunnryd/vaani/pkg/pipeline"
)

// TTSNormalizer rewrites LLM token frames into synthesizer-ready text.
// Each stream gets its own digit buffer so a number split across token
// boundaries is spoken whole; the flush control releases anything still
// held at end of turn.
type TTSNormalizer struct {
	norm *normalizer.Normalizer

	mu      sync.Mutex
	buffers map[string]*normalizer.DigitBuffer

	obs metrics.Observer
}

var _ pipeline.FrameProcessor = (*TTSNormalizer)(nil)

func NewTTSNormalizer(norm *normalizer.Normalizer) *TTSNormalizer {
	return &TTSNormalizer{
		norm:    norm,
		buffers: make(map[string]*normalizer.DigitBuffer),
	}
}

func (t *TTSNormalizer) Name() string { return "tts_normalizer" }

func (t *TTSNormalizer) SetObserver(obs metrics.Observer) { t.obs = obs }

func (t *TTSNormalizer) Process(f frames.Frame) ([]frames.Frame, error) {
	switch f.Kind() {
	case frames.KindText:
		tf := f.(frames.TextFrame)
		meta := tf.Meta()
		if meta[frames.MetaSource] != "llm" {
			return []frames.Frame{f}, nil
		}
		return t.processText(tf, meta), nil
	case frames.KindControl:
		cf := f.(frames.ControlFrame)
		switch cf.Code() {
		case frames.ControlFlush:
			return t.processFlush(cf), nil
		case frames.ControlCancel:
			// A cancelled turn must not speak its held digits.
			t.dropBuffer(cf.Meta()[frames.MetaStreamID])
		}
		return []frames.Frame{f}, nil
	case frames.KindSystem:
		sf := f.(frames.SystemFrame)
		if sf.Name() == "call_end" {
			t.dropBuffer(sf.Meta()[frames.MetaStreamID])
		}
		return []frames.Frame{f}, nil
	default:
		return []frames.Frame{f}, nil
	}
}

func (t *TTSNormalizer) processText(tf frames.TextFrame, meta map[string]string) []frames.Frame {
	streamID := meta[frames.MetaStreamID]
	buf := t.buffer(streamID)
	out := buf.Receive(tf.Text())
	if held := buf.Holding(); held != "" {
		slog.Debug("digits_held",
			slog.String("stream_id", streamID),
			slog.String("held", held))
		t.record(metrics.EventDigitsHeld, streamID)
	}
	if out == "" {
		return nil
	}
	meta[frames.MetaSource] = "tts"
	meta[frames.MetaNormalized] = "true"
	return []frames.Frame{frames.NewTextFrame(streamID, tf.PTS(), out, meta)}
}

func (t *TTSNormalizer) processFlush(cf frames.ControlFrame) []frames.Frame {
	streamID := cf.Meta()[frames.MetaStreamID]
	released := t.buffer(streamID).Flush()
	if released == "" {
		return []frames.Frame{cf}
	}
	out := frames.NewTextFrame(streamID, cf.PTS(), released, map[string]string{
		frames.MetaSource:     "tts",
		frames.MetaNormalized: "true",
	})
	return []frames.Frame{out, cf}
}

func (t *TTSNormalizer) buffer(streamID string) *normalizer.DigitBuffer {
	t.mu.Lock()
	defer t.mu.Unlock()
	buf, ok := t.buffers[streamID]
	if !ok {
		buf = normalizer.NewDigitBuffer(t.norm)
		t.buffers[streamID] = buf
	}
	return buf
}

func (t *TTSNormalizer) dropBuffer(streamID string) {
	t.mu.Lock()
	delete(t.buffers, streamID)
	t.mu.Unlock()
}

func (t *TTSNormalizer) record(name, streamID string) {
	if t.obs == nil {
		return
	}
	t.obs.RecordEvent(metrics.MetricsEvent{
		Name: name,
		Time: time.Now(),
		Tags: map[string]string{"stream_id": streamID},
	})
}
