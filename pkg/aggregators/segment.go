// Package aggregators batches normalized token text into segments the
// speech synthesizer can render as natural phrases.
package aggregators

import (
	"strings"
	"sync"

	"github.com/harunnryd/vaani/pkg/frames"
	"github.com/harunnryd/vaani/pkg/pipeline"
)

type SegmentConfig struct {
	// MinLen is the minimum rune count before a completed sentence is
	// released; tiny segments make the synthesizer sound choppy.
	MinLen int
}

// SegmentAggregator accumulates synthesizer-ready text and emits it one
// sentence at a time. The trailing partial sentence stays buffered until
// a sentence boundary arrives or the turn flushes.
type SegmentAggregator struct {
	cfg SegmentConfig

	mu      sync.Mutex
	pending map[string]string
}

var _ pipeline.FrameProcessor = (*SegmentAggregator)(nil)

func NewSegmentAggregator(cfg SegmentConfig) *SegmentAggregator {
	if cfg.MinLen <= 0 {
		cfg.MinLen = 8
	}
	return &SegmentAggregator{cfg: cfg, pending: make(map[string]string)}
}

func (a *SegmentAggregator) Name() string { return "segment_aggregator" }

func (a *SegmentAggregator) Process(f frames.Frame) ([]frames.Frame, error) {
	switch f.Kind() {
	case frames.KindText:
		tf := f.(frames.TextFrame)
		meta := tf.Meta()
		if meta[frames.MetaSource] != "tts" {
			return []frames.Frame{f}, nil
		}
		return a.append(tf, meta), nil
	case frames.KindControl:
		cf := f.(frames.ControlFrame)
		switch cf.Code() {
		case frames.ControlFlush:
			return a.flush(cf), nil
		case frames.ControlCancel:
			a.reset(cf.Meta()[frames.MetaStreamID])
		}
		return []frames.Frame{f}, nil
	case frames.KindSystem:
		sf := f.(frames.SystemFrame)
		if sf.Name() == "call_end" {
			a.reset(sf.Meta()[frames.MetaStreamID])
		}
		return []frames.Frame{f}, nil
	default:
		return []frames.Frame{f}, nil
	}
}

func (a *SegmentAggregator) append(tf frames.TextFrame, meta map[string]string) []frames.Frame {
	streamID := meta[frames.MetaStreamID]

	a.mu.Lock()
	buf := a.pending[streamID] + tf.Text()
	segments, rest := splitSentences(buf, a.cfg.MinLen)
	a.pending[streamID] = rest
	a.mu.Unlock()

	var out []frames.Frame
	for _, seg := range segments {
		out = append(out, frames.NewTextFrame(streamID, tf.PTS(), seg, map[string]string{
			frames.MetaSource:  "tts",
			frames.MetaIsFinal: "true",
		}))
	}
	return out
}

func (a *SegmentAggregator) flush(cf frames.ControlFrame) []frames.Frame {
	streamID := cf.Meta()[frames.MetaStreamID]

	a.mu.Lock()
	rest := a.pending[streamID]
	delete(a.pending, streamID)
	a.mu.Unlock()

	if strings.TrimSpace(rest) == "" {
		return []frames.Frame{cf}
	}
	seg := frames.NewTextFrame(streamID, cf.PTS(), rest, map[string]string{
		frames.MetaSource:  "tts",
		frames.MetaIsFinal: "true",
	})
	return []frames.Frame{seg, cf}
}

func (a *SegmentAggregator) reset(streamID string) {
	a.mu.Lock()
	delete(a.pending, streamID)
	a.mu.Unlock()
}

// splitSentences cuts buf after sentence-final punctuation followed by a
// space. Sentences shorter than minLen merge with the next one.
func splitSentences(buf string, minLen int) ([]string, string) {
	var segments []string
	runes := []rune(buf)
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if runes[i+1] != ' ' {
				continue
			}
			if i+1-start < minLen {
				continue
			}
			// the boundary space stays with the remainder; edge
			// whitespace is meaningful and never dropped
			segments = append(segments, string(runes[start:i+1]))
			start = i + 1
		}
	}
	return segments, string(runes[start:])
}
