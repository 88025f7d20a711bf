package pipeline

import (
	"log/slog"
	"time"

	"github.com/dojosearch/dojosearch/internal/metrics"
)

// Step names emitted to observers, in invocation order.
const (
	StepNormalize   = "normalize"
	StepCacheGet    = "cache_get"
	StepEmbed       = "embed"
	StepRetrieve    = "retrieve"
	StepGenerate    = "generate"
	StepAttachMedia = "attach_media"
	StepCacheSet    = "cache_set"
)

// Observer receives one event per pipeline step. Implementations bridge to
// tracing or metrics backends; they must not block.
type Observer interface {
	OnStep(step string, duration time.Duration, err error)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(step string, duration time.Duration, err error)

func (f ObserverFunc) OnStep(step string, duration time.Duration, err error) {
	f(step, duration, err)
}

// SlogObserver logs each step at debug level, errors at warn.
type SlogObserver struct {
	Logger *slog.Logger
}

func (o SlogObserver) OnStep(step string, duration time.Duration, err error) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err != nil {
		logger.Warn("pipeline step failed", "step", step, "duration_ms", duration.Milliseconds(), "error", err)
		return
	}
	logger.Debug("pipeline step", "step", step, "duration_ms", duration.Milliseconds())
}

// MetricsObserver records step timings into the metrics collector.
type MetricsObserver struct {
	Collector *metrics.Collector
}

var stepOps = map[string]string{
	StepEmbed:       metrics.OpEmbedding,
	StepRetrieve:    metrics.OpVectorSearch,
	StepCacheGet:    metrics.OpCacheGet,
	StepCacheSet:    metrics.OpCacheSet,
	StepAttachMedia: metrics.OpMediaResolve,
}

func (o MetricsObserver) OnStep(step string, duration time.Duration, err error) {
	if o.Collector == nil {
		return
	}
	if op, ok := stepOps[step]; ok {
		o.Collector.RecordTiming(op, duration, err != nil)
	}
}
