package llm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/harunnryd/vaani/pkg/chatctx"
	"github.com/harunnryd/vaani/pkg/errorsx"
	"github.com/harunnryd/vaani/pkg/resilience"
)

// WSConfig configures a websocket token source. The serving stack exposes
// a bidirectional socket: one JSON request in, a stream of token messages
// out, terminated by a done message.
type WSConfig struct {
	URL         string
	APIKey      string
	Model       string
	Temperature float64
	DialTimeout time.Duration
}

// WSAdapter speaks the token-streaming socket protocol. Each Stream call
// opens its own connection; voice turns are short-lived and reconnect
// cost is dominated by model latency anyway.
type WSAdapter struct {
	cfg   WSConfig
	retry resilience.RetryPolicy
}

type wsRequest struct {
	Model       string      `json:"model"`
	Messages    []wsMessage `json:"messages"`
	Temperature float64     `json:"temperature,omitempty"`
	Stream      bool        `json:"stream"`
}

type wsMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wsEvent struct {
	Type         string `json:"type"`
	Text         string `json:"text,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
	Message      string `json:"message,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}

var _ Adapter = (*WSAdapter)(nil)

func NewWSAdapter(cfg WSConfig) *WSAdapter {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	return &WSAdapter{
		cfg:   cfg,
		retry: resilience.NewRetryPolicy(2, 200*time.Millisecond),
	}
}

func (a *WSAdapter) Name() string { return "ws_llm" }

func (a *WSAdapter) dial(ctx context.Context) (*websocket.Conn, error) {
	if a.cfg.URL == "" {
		return nil, errorsx.Wrap(errors.New("missing websocket url"), errorsx.ReasonConfigLoad)
	}
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: a.cfg.DialTimeout,
	}
	header := http.Header{}
	if a.cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}
	var conn *websocket.Conn
	var rlErr error
	err := a.retry.Do(func() error {
		c, resp, err := dialer.DialContext(ctx, a.cfg.URL, header)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
				// not transient; retrying makes the limit worse
				rlErr = resilience.RateLimitError{Provider: a.Name(), Message: resp.Status}
				return nil
			}
			if ctx.Err() != nil {
				rlErr = ctx.Err()
				return nil
			}
			return err
		}
		conn = c
		return nil
	})
	if rlErr != nil {
		return nil, rlErr
	}
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonLLMConnect)
	}
	return conn, nil
}

func (a *WSAdapter) request(history chatctx.History) wsRequest {
	msgs := make([]wsMessage, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, wsMessage{Role: string(m.Role), Content: m.Content})
	}
	return wsRequest{
		Model:       a.cfg.Model,
		Messages:    msgs,
		Temperature: a.cfg.Temperature,
		Stream:      true,
	}
}

func (a *WSAdapter) Stream(ctx context.Context, history chatctx.History) (<-chan string, error) {
	conn, err := a.dial(ctx)
	if err != nil {
		return nil, err
	}
	if err := conn.WriteJSON(a.request(history)); err != nil {
		_ = conn.Close()
		return nil, errorsx.Wrap(err, errorsx.ReasonLLMStream)
	}

	out := make(chan string, 64)
	go func() {
		defer close(out)
		defer conn.Close()
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-done:
			}
		}()
		for {
			var ev wsEvent
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					slog.Warn("llm socket closed mid-stream", slog.String("error", err.Error()))
				}
				return
			}
			switch ev.Type {
			case "token":
				select {
				case out <- ev.Text:
				case <-ctx.Done():
					return
				}
			case "done":
				return
			case "error":
				slog.Error("llm stream error event", slog.String("message", ev.Message))
				return
			}
		}
	}()
	return out, nil
}

// Generate runs a stream to completion and concatenates the tokens. The
// socket protocol has no separate non-streaming mode.
func (a *WSAdapter) Generate(ctx context.Context, history chatctx.History) (Response, error) {
	conn, err := a.dial(ctx)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()
	if err := conn.WriteJSON(a.request(history)); err != nil {
		return Response{}, errorsx.Wrap(err, errorsx.ReasonLLMGenerate)
	}

	var b strings.Builder
	var resp Response
	for {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		var ev wsEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return Response{}, errorsx.Wrap(err, errorsx.ReasonLLMGenerate)
		}
		switch ev.Type {
		case "token":
			b.WriteString(ev.Text)
		case "done":
			resp.Text = b.String()
			resp.FinishReason = ev.FinishReason
			if ev.Usage != nil {
				resp.Usage = *ev.Usage
			}
			return resp, nil
		case "error":
			return Response{}, errorsx.Wrap(errors.New(ev.Message), errorsx.ReasonLLMGenerate)
		}
	}
}
