package processors

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/harunnryd/vaani/pkg/frames"
	"github.com/harunnryd/vaani/pkg/metrics"
	"github.com/harunnryd/vaani/pkg/pipeline"
	"github.com/harunnryd/vaani/pkg/register"
)

// RegisterGuard holds each synthesizer turn until the register check has
// seen it whole, then either releases it or substitutes a fallback
// phrase. Classification needs the complete utterance, and speech that
// has started in the wrong register cannot be unsaid, so the hold is the
// price of the guarantee.
//
// The first drift on a call substitutes a fallback phrase; a repeat
// drift escalates to a handoff, since a model that broke character twice
// is unlikely to recover within the call.
type RegisterGuard struct {
	detector  *register.Detector
	fallbacks []string
	maxDrifts int
	pts       *frames.PTSGen

	mu     sync.Mutex
	turns  map[string][]frames.TextFrame
	drifts map[string]int
	nextFB map[string]int

	obs metrics.Observer
}

var _ pipeline.FrameProcessor = (*RegisterGuard)(nil)

type RegisterGuardConfig struct {
	Detector        *register.Detector
	FallbackPhrases []string
	MaxDrifts       int
}

var defaultFallbacks = []string{
	"Maaf kijiye, ek baar phir se bata sakte hain?",
	"Ji, main samajh gayi. Aap apna sawaal dobara poochhiye.",
}

func NewRegisterGuard(cfg RegisterGuardConfig) *RegisterGuard {
	if cfg.Detector == nil {
		cfg.Detector = register.NewDetector(register.Config{})
	}
	if len(cfg.FallbackPhrases) == 0 {
		cfg.FallbackPhrases = defaultFallbacks
	}
	if cfg.MaxDrifts <= 0 {
		cfg.MaxDrifts = 2
	}
	return &RegisterGuard{
		detector:  cfg.Detector,
		fallbacks: cfg.FallbackPhrases,
		maxDrifts: cfg.MaxDrifts,
		pts:       frames.NewPTSGen(),
		turns:     make(map[string][]frames.TextFrame),
		drifts:    make(map[string]int),
		nextFB:    make(map[string]int),
	}
}

func (g *RegisterGuard) Name() string { return "register_guard" }

func (g *RegisterGuard) SetObserver(obs metrics.Observer) { g.obs = obs }

func (g *RegisterGuard) Process(f frames.Frame) ([]frames.Frame, error) {
	switch f.Kind() {
	case frames.KindText:
		tf := f.(frames.TextFrame)
		meta := tf.Meta()
		if meta[frames.MetaSource] != "tts" {
			return []frames.Frame{f}, nil
		}
		g.mu.Lock()
		streamID := meta[frames.MetaStreamID]
		g.turns[streamID] = append(g.turns[streamID], tf)
		g.mu.Unlock()
		return nil, nil
	case frames.KindControl:
		cf := f.(frames.ControlFrame)
		switch cf.Code() {
		case frames.ControlFlush:
			return g.releaseTurn(cf), nil
		case frames.ControlCancel:
			g.discardTurn(cf.Meta()[frames.MetaStreamID])
		}
		return []frames.Frame{f}, nil
	case frames.KindSystem:
		sf := f.(frames.SystemFrame)
		if sf.Name() == "call_end" {
			streamID := sf.Meta()[frames.MetaStreamID]
			g.discardTurn(streamID)
			g.mu.Lock()
			delete(g.drifts, streamID)
			delete(g.nextFB, streamID)
			g.mu.Unlock()
		}
		return []frames.Frame{f}, nil
	default:
		return []frames.Frame{f}, nil
	}
}

func (g *RegisterGuard) releaseTurn(cf frames.ControlFrame) []frames.Frame {
	streamID := cf.Meta()[frames.MetaStreamID]

	g.mu.Lock()
	held := g.turns[streamID]
	delete(g.turns, streamID)
	g.mu.Unlock()

	if len(held) == 0 {
		return []frames.Frame{cf}
	}

	var b strings.Builder
	for _, tf := range held {
		b.WriteString(tf.Text())
	}
	c := g.detector.Classify(b.String())
	if c.InRegister {
		out := make([]frames.Frame, 0, len(held)+1)
		for _, tf := range held {
			out = append(out, tf)
		}
		return append(out, cf)
	}

	g.mu.Lock()
	g.drifts[streamID]++
	count := g.drifts[streamID]
	g.mu.Unlock()

	slog.Warn("register_drift",
		slog.String("stream_id", streamID),
		slog.Int("count", count),
		slog.Any("evidence", c.Evidence))
	g.record(metrics.EventRegisterDrift, streamID)

	if count >= g.maxDrifts {
		g.record(metrics.EventRegisterHandoff, streamID)
		handoff := frames.NewControlFrame(streamID, g.pts.Next(streamID), frames.ControlHandoff, map[string]string{
			frames.MetaReason:   "register_drift",
			frames.MetaEvidence: strings.Join(c.Evidence, ","),
		})
		return []frames.Frame{handoff, cf}
	}

	fb := frames.NewTextFrame(streamID, g.pts.Next(streamID), g.nextFallback(streamID), map[string]string{
		frames.MetaSource:     "tts",
		frames.MetaNormalized: "true",
		frames.MetaReason:     "register_drift",
	})
	return []frames.Frame{fb, cf}
}

func (g *RegisterGuard) discardTurn(streamID string) {
	g.mu.Lock()
	delete(g.turns, streamID)
	g.mu.Unlock()
}

func (g *RegisterGuard) nextFallback(streamID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.nextFB[streamID]
	g.nextFB[streamID] = i + 1
	return g.fallbacks[i%len(g.fallbacks)]
}

func (g *RegisterGuard) record(name, streamID string) {
	if g.obs == nil {
		return
	}
	g.obs.RecordEvent(metrics.MetricsEvent{
		Name: name,
		Time: time.Now(),
		Tags: map[string]string{"stream_id": streamID},
	})
}
