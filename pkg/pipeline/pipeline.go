// Package pipeline runs ordered frame processors over a per-call stream
// and tracks live call sessions.
package pipeline

import (
	"context"

	"github.com/harunnryd/vaani/pkg/frames"
	"github.com/harunnryd/vaani/pkg/metrics"
)

// FrameProcessor transforms one frame into zero or more frames. Returning
// nil output consumes the frame; returning an error consumes it and is
// logged by the orchestrator.
type FrameProcessor interface {
	Process(frames.Frame) ([]frames.Frame, error)
	Name() string
}

type Config struct {
	// ControlCapacity bounds the high-priority queue; control frames
	// beyond it are dropped and counted.
	ControlCapacity int
	// TextCapacity bounds the low-priority queue; text sends block when
	// full, because dropped speech is worse than latency.
	TextCapacity int
}

func (c *Config) defaults() {
	if c.ControlCapacity <= 0 {
		c.ControlCapacity = 16
	}
	if c.TextCapacity <= 0 {
		c.TextCapacity = 256
	}
}

type Orchestrator interface {
	Start() error
	Stop() error
	In() chan<- frames.Frame
	Out() <-chan frames.Frame
	AddProcessor(p FrameProcessor) error
	SetContext(ctx context.Context)
	SetObserver(obs metrics.Observer)
}
