package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/harunnryd/vaani/pkg/frames"
	"github.com/harunnryd/vaani/pkg/metrics"
)

type orchestrator struct {
	in      chan frames.Frame
	out     chan frames.Frame
	control chan frames.Frame
	text    chan frames.Frame
	procs   []FrameProcessor
	cfg     Config
	ctx     context.Context
	cancel  context.CancelFunc
	obs     metrics.Observer

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func New(cfg Config) Orchestrator {
	cfg.defaults()
	o := &orchestrator{
		in:      make(chan frames.Frame, cfg.ControlCapacity+cfg.TextCapacity),
		out:     make(chan frames.Frame, cfg.ControlCapacity+cfg.TextCapacity),
		control: make(chan frames.Frame, cfg.ControlCapacity),
		text:    make(chan frames.Frame, cfg.TextCapacity),
		cfg:     cfg,
	}
	o.ctx, o.cancel = context.WithCancel(context.Background())
	return o
}

func NewWithProcessors(cfg Config, procs ...FrameProcessor) Orchestrator {
	o := New(cfg)
	for _, p := range procs {
		if p != nil {
			_ = o.AddProcessor(p)
		}
	}
	return o
}

func (o *orchestrator) SetContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	o.ctx, o.cancel = context.WithCancel(ctx)
}

func (o *orchestrator) In() chan<- frames.Frame          { return o.in }
func (o *orchestrator) Out() <-chan frames.Frame         { return o.out }
func (o *orchestrator) SetObserver(obs metrics.Observer) { o.obs = obs }

func (o *orchestrator) AddProcessor(p FrameProcessor) error {
	o.procs = append(o.procs, p)
	return nil
}

func (o *orchestrator) Start() error {
	names := make([]string, 0, len(o.procs))
	for _, p := range o.procs {
		names = append(names, p.Name())
	}
	slog.Info("pipeline_start", slog.Any("processors", names))
	o.wg.Add(2)
	go o.routeLoop()
	go o.processLoop()
	return nil
}

// Stop cancels the loops and waits for any in-flight frame to finish
// before closing the out channel; run's sends select on ctx.Done, so a
// frame mid-chain unblocks instead of hitting a closed channel.
func (o *orchestrator) Stop() error {
	o.stopOnce.Do(func() {
		o.cancel()
		o.wg.Wait()
		close(o.out)
	})
	return nil
}

// routeLoop splits inbound frames into the two priority queues. Control
// frames never wait behind text; a full control queue drops and counts.
func (o *orchestrator) routeLoop() {
	defer o.wg.Done()
	for {
		select {
		case <-o.ctx.Done():
			return
		case f := <-o.in:
			if f.Kind() == frames.KindControl {
				select {
				case o.control <- f:
				default:
					o.recordDrop(f)
				}
				continue
			}
			select {
			case o.text <- f:
			case <-o.ctx.Done():
				return
			}
		}
	}
}

func (o *orchestrator) processLoop() {
	defer o.wg.Done()
	for {
		var f frames.Frame
		select {
		case <-o.ctx.Done():
			return
		case f = <-o.control:
		default:
			select {
			case <-o.ctx.Done():
				return
			case f = <-o.control:
			case f = <-o.text:
			}
		}
		o.run(f)
	}
}

func (o *orchestrator) run(f frames.Frame) {
	batch := []frames.Frame{f}
	for _, p := range o.procs {
		var next []frames.Frame
		for _, cur := range batch {
			start := time.Now()
			r, err := p.Process(cur)
			if err != nil {
				slog.Error("processor_error",
					slog.String("processor", p.Name()),
					slog.String("error", err.Error()))
				continue
			}
			o.recordStage(p.Name(), start)
			next = append(next, r...)
		}
		batch = next
		if batch == nil {
			return
		}
	}
	for _, e := range batch {
		select {
		case o.out <- e:
		case <-o.ctx.Done():
			return
		}
	}
}

func (o *orchestrator) recordDrop(f frames.Frame) {
	slog.Warn("control_frame_dropped", slog.Int64("pts", f.PTS()))
	if o.obs == nil {
		return
	}
	o.obs.RecordEvent(metrics.MetricsEvent{
		Name: "pipeline_drop",
		Time: time.Now(),
		Tags: map[string]string{"kind": string(f.Kind())},
	})
}

func (o *orchestrator) recordStage(name string, start time.Time) {
	if o.obs == nil {
		return
	}
	o.obs.RecordEvent(metrics.MetricsEvent{
		Name:  "pipeline_stage",
		Time:  time.Now(),
		Value: float64(time.Since(start).Microseconds()),
		Tags:  map[string]string{"processor": name},
	})
}
