package vaani

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/harunnryd/vaani/pkg/aggregators"
	"github.com/harunnryd/vaani/pkg/configutil"
	"github.com/harunnryd/vaani/pkg/errorsx"
	"github.com/harunnryd/vaani/pkg/llm"
	"github.com/harunnryd/vaani/pkg/logging"
	"github.com/harunnryd/vaani/pkg/metrics"
	"github.com/harunnryd/vaani/pkg/normalizer"
	"github.com/harunnryd/vaani/pkg/pipeline"
	"github.com/harunnryd/vaani/pkg/processors"
	"github.com/harunnryd/vaani/pkg/providers/mock"
	"github.com/harunnryd/vaani/pkg/redact"
	"github.com/harunnryd/vaani/pkg/register"
)

type Engine struct {
	cfg      Config
	adapter  llm.Adapter
	norm     *normalizer.Normalizer
	registry *pipeline.SessionRegistry
	obs      metrics.Observer
	log      *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

type EngineOptions struct {
	Config Config
	// Adapter overrides the vendor-configured LLM provider; tests and
	// examples inject mocks here.
	Adapter  llm.Adapter
	Observer metrics.Observer
}

func NewEngine(opts EngineOptions) (*Engine, error) {
	cfg := opts.Config
	slog.SetDefault(logging.InitLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat))
	redact.SetEnabled(cfg.Privacy.RedactPII)

	adapter := opts.Adapter
	if adapter == nil {
		built, err := buildAdapter(cfg.Vendors.LLM)
		if err != nil {
			return nil, err
		}
		adapter = built
	}
	adapter = llm.NewCircuitBreakerAdapter(llm.NewRetryAdapter(adapter, llm.RetryConfig{}), nil)

	obs := opts.Observer
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	log := logging.NewComponentLogger(slog.Default(), "engine")

	norm := normalizer.New(mergeTables(cfg.Replacements))
	norm.SetFallbackHook(func(tok string) {
		log.Warn("numeral_fallback", "token", tok)
		obs.RecordEvent(metrics.MetricsEvent{
			Name: metrics.EventNumeralFallback,
			Time: time.Now(),
			Tags: map[string]string{"token": tok},
		})
	})

	e := &Engine{
		cfg:     cfg,
		adapter: adapter,
		norm:    norm,
		obs:     obs,
		log:     log,
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.registry = pipeline.NewSessionRegistry(e.newPipeline)

	log.Info("vaani_init",
		"environment", cfg.Environment,
		"llm_provider", cfg.Vendors.LLM.Provider,
	)
	return e, nil
}

func buildAdapter(cfg VendorConfig) (llm.Adapter, error) {
	switch cfg.Provider {
	case "ws":
		var ws llm.WSConfig
		if err := configutil.DecodeSettings(cfg.Settings, &ws); err != nil {
			return nil, errorsx.Wrap(err, errorsx.ReasonConfigLoad)
		}
		if err := configutil.RequireString(ws.URL, "vendors.llm.settings.url"); err != nil {
			return nil, errorsx.Wrap(err, errorsx.ReasonConfigLoad)
		}
		return llm.NewWSAdapter(ws), nil
	case "mock":
		var mc mock.LLMConfig
		if err := configutil.DecodeSettings(cfg.Settings, &mc); err != nil {
			return nil, errorsx.Wrap(err, errorsx.ReasonConfigLoad)
		}
		return mock.NewLLMAdapter(mc), nil
	default:
		return nil, errorsx.Wrap(fmt.Errorf("unknown llm provider %q", cfg.Provider), errorsx.ReasonConfigLoad)
	}
}

func mergeTables(cfg ReplacementsConfig) normalizer.Tables {
	tables := normalizer.DefaultTables()
	for k, v := range cfg.Abbreviations {
		tables.Abbreviations[k] = v
	}
	for k, v := range cfg.Terms {
		tables.Terms[k] = v
	}
	return tables
}

// newPipeline is the session factory: each call gets a fresh processor
// chain so per-stream state (histories, digit buffers, drift counts)
// never leaks across calls.
func (e *Engine) newPipeline(ctx context.Context, callSID, streamID, traceID string) (pipeline.Orchestrator, error) {
	gate := processors.NewTranscriptGate(e.cfg.Gate.SuspicionThreshold)
	gate.SetObserver(e.obs)

	llmProc := processors.NewLLMProcessor(e.adapter, e.cfg.BasePrompt)
	llmProc.SetObserver(e.obs)
	llmProc.SetContext(ctx)

	tts := processors.NewTTSNormalizer(e.norm)
	tts.SetObserver(e.obs)

	guard := processors.NewRegisterGuard(processors.RegisterGuardConfig{
		Detector: register.NewDetector(register.Config{
			Markers:   e.cfg.Register.Markers,
			MinLength: e.cfg.Register.MinLength,
		}),
		FallbackPhrases: e.cfg.Register.FallbackPhrases,
		MaxDrifts:       e.cfg.Register.MaxDrifts,
	})
	guard.SetObserver(e.obs)

	segments := aggregators.NewSegmentAggregator(aggregators.SegmentConfig{
		MinLen: e.cfg.Segment.MinLen,
	})

	orch := pipeline.NewWithProcessors(e.cfg.Pipeline, gate, llmProc, tts, guard, segments)
	orch.SetContext(ctx)
	orch.SetObserver(e.obs)
	return orch, nil
}

// Registry exposes session management to the caller's transport layer.
func (e *Engine) Registry() *pipeline.SessionRegistry { return e.registry }

// Normalizer exposes the shared text normalizer, for offline use of the
// same tables the pipeline runs with.
func (e *Engine) Normalizer() *normalizer.Normalizer { return e.norm }

// Shutdown drains live sessions and stops the engine.
func (e *Engine) Shutdown(ctx context.Context) {
	e.registry.SetDraining(true)
	if !e.registry.WaitForEmpty(ctx, 200*time.Millisecond) {
		e.log.Warn("shutdown_timeout", "sessions", e.registry.Count())
	}
	e.registry.CloseAll()
	e.cancel()
}
