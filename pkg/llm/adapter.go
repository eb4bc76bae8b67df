// Package llm defines the adapter boundary between the pipeline and a
// language-model provider, plus resilience wrappers shared by all
// providers.
package llm

import (
	"context"

	"github.com/harunnryd/vaani/pkg/chatctx"
)

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Response struct {
	Text         string
	Usage        Usage
	FinishReason string
}

// Adapter is implemented per provider. The history passed in is already
// sanitized by the caller; adapters serialize it as-is.
type Adapter interface {
	Generate(ctx context.Context, history chatctx.History) (Response, error)
	Stream(ctx context.Context, history chatctx.History) (<-chan string, error)
	Name() string
}
