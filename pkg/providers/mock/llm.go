// Package mock provides scripted providers for tests and examples.
package mock

import (
	"context"
	"sync"

	"github.com/harunnryd/vaani/pkg/chatctx"
	"github.com/harunnryd/vaani/pkg/llm"
)

type LLMConfig struct {
	ResponseText string
	StreamChunks []string
	Err          error
}

// LLMAdapter replays a scripted response and records the histories it was
// called with, so tests can assert on what actually reached the provider.
type LLMAdapter struct {
	cfg LLMConfig

	mu        sync.Mutex
	histories []chatctx.History
}

var _ llm.Adapter = (*LLMAdapter)(nil)

func NewLLMAdapter(cfg LLMConfig) *LLMAdapter {
	if cfg.ResponseText == "" && len(cfg.StreamChunks) == 0 {
		cfg.ResponseText = "mock response"
	}
	return &LLMAdapter{cfg: cfg}
}

func (a *LLMAdapter) Name() string { return "mock_llm" }

func (a *LLMAdapter) Generate(ctx context.Context, history chatctx.History) (llm.Response, error) {
	a.recordHistory(history)
	if a.cfg.Err != nil {
		return llm.Response{}, a.cfg.Err
	}
	text := a.cfg.ResponseText
	if text == "" {
		for _, c := range a.cfg.StreamChunks {
			text += c
		}
	}
	return llm.Response{Text: text, FinishReason: "stop"}, nil
}

func (a *LLMAdapter) Stream(ctx context.Context, history chatctx.History) (<-chan string, error) {
	a.recordHistory(history)
	if a.cfg.Err != nil {
		return nil, a.cfg.Err
	}
	chunks := a.cfg.StreamChunks
	if len(chunks) == 0 {
		chunks = []string{a.cfg.ResponseText}
	}
	out := make(chan string, len(chunks))
	for _, c := range chunks {
		out <- c
	}
	close(out)
	return out, nil
}

func (a *LLMAdapter) recordHistory(h chatctx.History) {
	cp := make(chatctx.History, len(h))
	copy(cp, h)
	a.mu.Lock()
	a.histories = append(a.histories, cp)
	a.mu.Unlock()
}

// LastHistory returns the most recent history passed to Generate or
// Stream, or nil when the adapter was never called.
func (a *LLMAdapter) LastHistory() chatctx.History {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.histories) == 0 {
		return nil
	}
	return a.histories[len(a.histories)-1]
}

// Calls returns how many times the adapter was invoked.
func (a *LLMAdapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.histories)
}
