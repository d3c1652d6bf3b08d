package alert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// SourceFunc computes the current value of a rule's metric. ok=false means
// the metric is unavailable: unknown name, or no in-window data where
// absence is meaningful. Errors are reserved for transient store failures.
type SourceFunc func(ctx context.Context, rule *AlertRule) (value float64, ok bool, err error)

// Resolver dispatches metric resolution on a rule's source. Handlers are
// registered per MetricSource so the evaluation engine never branches on
// source types.
type Resolver struct {
	handlers map[MetricSource]SourceFunc
	mu       sync.RWMutex
}

func NewResolver() *Resolver {
	return &Resolver{handlers: make(map[MetricSource]SourceFunc)}
}

func (r *Resolver) Register(source MetricSource, fn SourceFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[source] = fn
}

// Resolve computes the rule's metric value. An unregistered source resolves
// to unavailable, not an error.
func (r *Resolver) Resolve(ctx context.Context, rule *AlertRule) (float64, bool, error) {
	r.mu.RLock()
	fn, exists := r.handlers[rule.MetricSource]
	r.mu.RUnlock()

	if !exists {
		return 0, false, nil
	}
	return fn(ctx, rule)
}

// PipelineSource aggregates pipeline events over the rule's window into
// success/error percentages. An empty window yields success_rate=100 and
// error_rate=0: absence of work is healthy, and must not read as failure.
// Rules without a team aggregate across all teams.
func PipelineSource(store MetricStore) SourceFunc {
	return func(ctx context.Context, rule *AlertRule) (float64, bool, error) {
		since := currentTime().Add(-rule.Window())

		total, failed, err := store.CountPipelineEvents(ctx, rule.TeamID, since)
		if err != nil {
			return 0, false, fmt.Errorf("count pipeline events: %w", err)
		}

		switch rule.MetricName {
		case MetricSuccessRate:
			if total == 0 {
				return 100, true, nil
			}
			return float64(total-failed) / float64(total) * 100, true, nil
		case MetricErrorRate:
			if total == 0 {
				return 0, true, nil
			}
			return float64(failed) / float64(total) * 100, true, nil
		default:
			return 0, false, nil
		}
	}
}

// PerformanceSource fetches the single most recent in-window sample of the
// rule's metric. No in-window sample means unavailable.
func PerformanceSource(store MetricStore) SourceFunc {
	return func(ctx context.Context, rule *AlertRule) (float64, bool, error) {
		since := currentTime().Add(-rule.Window())

		sample, err := store.LatestSample(ctx, rule.MetricName, rule.TeamID, since)
		if errors.Is(err, ErrNoSample) {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, fmt.Errorf("latest sample: %w", err)
		}
		return sample.Value, true, nil
	}
}

// Prober is anything whose round-trip latency can serve as a health metric.
// The sqlite store satisfies it with a database ping.
type Prober interface {
	Ping(ctx context.Context) error
}

// SystemCollector reports host-level usage percentages for the health
// source's memory and disk metrics.
type SystemCollector interface {
	MemoryUsedPercent(ctx context.Context) (float64, error)
	DiskUsedPercent(ctx context.Context) (float64, error)
}

// defaultProbeTimeout bounds the health probe so a wedged store cannot
// stall a whole evaluation run. Overridable via evaluation.probe_timeout.
const defaultProbeTimeout = 5 * time.Second

// HealthSource computes system-health metrics on demand instead of
// aggregating history. db_latency_ms times a trivial probe against the
// store; memory and disk come from the host collector; uptime_pct is a
// constant placeholder kept as an extension point. A nil prober or
// collector makes the corresponding metrics unavailable.
func HealthSource(prober Prober, collector SystemCollector) SourceFunc {
	return HealthSourceWithTimeout(prober, collector, defaultProbeTimeout)
}

// HealthSourceWithTimeout is HealthSource with an explicit bound on the
// db_latency_ms probe. A non-positive timeout falls back to the default.
func HealthSourceWithTimeout(prober Prober, collector SystemCollector, probeTimeout time.Duration) SourceFunc {
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	return func(ctx context.Context, rule *AlertRule) (float64, bool, error) {
		switch rule.MetricName {
		case MetricDBLatencyMs:
			if prober == nil {
				return 0, false, nil
			}
			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()

			start := time.Now()
			if err := prober.Ping(probeCtx); err != nil {
				return 0, false, fmt.Errorf("health probe: %w", err)
			}
			return float64(time.Since(start).Microseconds()) / 1000, true, nil

		case MetricMemoryUsed:
			if collector == nil {
				return 0, false, nil
			}
			pct, err := collector.MemoryUsedPercent(ctx)
			if err != nil {
				return 0, false, fmt.Errorf("collect memory: %w", err)
			}
			return pct, true, nil

		case MetricDiskUsed:
			if collector == nil {
				return 0, false, nil
			}
			pct, err := collector.DiskUsedPercent(ctx)
			if err != nil {
				return 0, false, fmt.Errorf("collect disk: %w", err)
			}
			return pct, true, nil

		case MetricUptime:
			return 100, true, nil

		default:
			return 0, false, nil
		}
	}
}
