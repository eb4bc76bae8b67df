// Package processors contains the frame processors that make up the
// voice pipeline: LLM turn generation, synthesizer text normalization,
// register guarding, and transcript gating.
package processors

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/harunnryd/vaani/pkg/chatctx"
	"github.com/harunnryd/vaani/pkg/errorsx"
	"github.com/harunnryd/vaani/pkg/frames"
	"github.com/harunnryd/vaani/pkg/llm"
	"github.com/harunnryd/vaani/pkg/metrics"
	"github.com/harunnryd/vaani/pkg/pipeline"
)

// LLMProcessor turns final user transcripts into streamed assistant
// tokens. It owns the per-stream conversation history and always passes
// a sanitized copy to the adapter, so greeting shortcuts that leave a
// stale assistant message at the front never reach the provider.
type LLMProcessor struct {
	adapter llm.Adapter
	system  string
	pts     *frames.PTSGen

	mu        sync.Mutex
	histories map[string]chatctx.History

	ctx context.Context
	obs metrics.Observer
}

var _ pipeline.FrameProcessor = (*LLMProcessor)(nil)

func NewLLMProcessor(adapter llm.Adapter, system string) *LLMProcessor {
	return &LLMProcessor{
		adapter:   adapter,
		system:    system,
		pts:       frames.NewPTSGen(),
		histories: make(map[string]chatctx.History),
		ctx:       context.Background(),
	}
}

func (p *LLMProcessor) Name() string { return "llm" }

func (p *LLMProcessor) SetObserver(obs metrics.Observer) {
	p.obs = obs
	if setter, ok := p.adapter.(interface{ SetObserver(metrics.Observer) }); ok {
		setter.SetObserver(obs)
	}
}

func (p *LLMProcessor) SetContext(ctx context.Context) {
	if ctx != nil {
		p.ctx = ctx
	}
}

func (p *LLMProcessor) Process(f frames.Frame) ([]frames.Frame, error) {
	switch f.Kind() {
	case frames.KindSystem:
		return p.processSystem(f.(frames.SystemFrame))
	case frames.KindText:
		tf := f.(frames.TextFrame)
		meta := tf.Meta()
		if meta[frames.MetaSource] != "user" || meta[frames.MetaIsFinal] != "true" {
			return []frames.Frame{f}, nil
		}
		return p.generateTurn(tf)
	default:
		return []frames.Frame{f}, nil
	}
}

func (p *LLMProcessor) processSystem(sf frames.SystemFrame) ([]frames.Frame, error) {
	meta := sf.Meta()
	streamID := meta[frames.MetaStreamID]
	switch sf.Name() {
	case "greeting":
		// Canned greetings bypass the model but still belong to the
		// conversation, otherwise the model re-greets on the first real
		// turn. This is what leaves an assistant message ahead of any
		// user message; Sanitize trims it before the next request.
		text := meta["text"]
		if text == "" {
			return []frames.Frame{sf}, nil
		}
		p.appendMessage(streamID, chatctx.Message{Role: chatctx.RoleAssistant, Content: text})
		out := frames.NewTextFrame(streamID, p.pts.Next(streamID), text, map[string]string{
			frames.MetaSource: "llm",
		})
		flush := frames.NewControlFrame(streamID, p.pts.Next(streamID), frames.ControlFlush, nil)
		return []frames.Frame{out, flush, sf}, nil
	case "call_end":
		p.mu.Lock()
		delete(p.histories, streamID)
		p.mu.Unlock()
	}
	return []frames.Frame{sf}, nil
}

func (p *LLMProcessor) generateTurn(tf frames.TextFrame) ([]frames.Frame, error) {
	meta := tf.Meta()
	streamID := meta[frames.MetaStreamID]
	p.appendMessage(streamID, chatctx.Message{Role: chatctx.RoleUser, Content: tf.Text()})

	request := chatctx.Sanitize(p.snapshot(streamID).System(p.system))
	start := time.Now()
	tokens, err := p.adapter.Stream(p.ctx, request)
	if err != nil {
		slog.Error("llm_stream_failed",
			slog.String("stream_id", streamID),
			slog.String("reason", string(errorsx.Reason(err))),
			slog.String("error", err.Error()))
		fb := frames.NewControlFrame(streamID, p.pts.Next(streamID), frames.ControlFallback, map[string]string{
			frames.MetaReason: string(errorsx.Reason(err)),
		})
		return []frames.Frame{fb}, nil
	}

	var out []frames.Frame
	var full strings.Builder
	for tok := range tokens {
		full.WriteString(tok)
		out = append(out, frames.NewTextFrame(streamID, p.pts.Next(streamID), tok, map[string]string{
			frames.MetaSource: "llm",
		}))
	}
	p.appendMessage(streamID, chatctx.Message{Role: chatctx.RoleAssistant, Content: full.String()})
	p.recordTurn(streamID, time.Since(start))

	out = append(out, frames.NewControlFrame(streamID, p.pts.Next(streamID), frames.ControlFlush, nil))
	return out, nil
}

func (p *LLMProcessor) appendMessage(streamID string, m chatctx.Message) {
	p.mu.Lock()
	p.histories[streamID] = append(p.histories[streamID], m)
	p.mu.Unlock()
}

func (p *LLMProcessor) snapshot(streamID string) chatctx.History {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := p.histories[streamID]
	cp := make(chatctx.History, len(h))
	copy(cp, h)
	return cp
}

// History exposes the live history for a stream; used by tests.
func (p *LLMProcessor) History(streamID string) chatctx.History {
	return p.snapshot(streamID)
}

func (p *LLMProcessor) recordTurn(streamID string, d time.Duration) {
	if p.obs == nil {
		return
	}
	p.obs.RecordEvent(metrics.MetricsEvent{
		Name:  "llm_turn",
		Time:  time.Now(),
		Value: d.Seconds(),
		Tags:  map[string]string{"stream_id": streamID},
	})
}
