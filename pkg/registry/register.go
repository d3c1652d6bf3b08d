// Package registry wires the alert domain units into a unit.Registry.
package registry

import (
	"fmt"
	"time"

	"github.com/noa10/mataresit-app-sub017/pkg/unit"
	"github.com/noa10/mataresit-app-sub017/pkg/unit/alert"
)

type Stores struct {
	AlertStore  alert.Store
	MetricStore alert.MetricStore
}

// Health carries the probes backing the system_health metric source. Nil
// members leave the corresponding metrics unavailable.
type Health struct {
	Prober    alert.Prober
	Collector alert.SystemCollector
}

type Options struct {
	Stores Stores
	Health Health
	Events unit.EventPublisher
	// Workers sizes the evaluation worker pool. Zero keeps the engine default.
	Workers int
	// ProbeTimeout bounds the health probe. Zero keeps the resolver default.
	ProbeTimeout time.Duration
	// DefaultWindowMinutes backfills window_minutes on rule creation. Zero
	// keeps the command default.
	DefaultWindowMinutes int
}

type Option func(*Options)

func WithStores(stores Stores) Option {
	return func(o *Options) {
		o.Stores = stores
	}
}

func WithAlertStore(s alert.Store) Option {
	return func(o *Options) {
		o.Stores.AlertStore = s
	}
}

func WithMetricStore(s alert.MetricStore) Option {
	return func(o *Options) {
		o.Stores.MetricStore = s
	}
}

func WithProber(p alert.Prober) Option {
	return func(o *Options) {
		o.Health.Prober = p
	}
}

func WithCollector(c alert.SystemCollector) Option {
	return func(o *Options) {
		o.Health.Collector = c
	}
}

func WithEventPublisher(events unit.EventPublisher) Option {
	return func(o *Options) {
		o.Events = events
	}
}

func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

func WithProbeTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ProbeTimeout = d
	}
}

func WithDefaultWindow(minutes int) Option {
	return func(o *Options) {
		o.DefaultWindowMinutes = minutes
	}
}

func RegisterAll(registry *unit.Registry, opts ...Option) error {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	if err := registerAlertDomain(registry, options); err != nil {
		return fmt.Errorf("register alert domain: %w", err)
	}

	return nil
}

func registerAlertDomain(registry *unit.Registry, options *Options) error {
	store := options.Stores.AlertStore
	metricStore := options.Stores.MetricStore

	if store == nil {
		store = alert.NewMemoryStore()
	}
	if metricStore == nil {
		metricStore = alert.NewMemoryMetricStore()
	}

	resolver := alert.NewResolver()
	resolver.Register(alert.MetricSourcePipeline, alert.PipelineSource(metricStore))
	resolver.Register(alert.MetricSourcePerformance, alert.PerformanceSource(metricStore))
	resolver.Register(alert.MetricSourceHealth, alert.HealthSourceWithTimeout(options.Health.Prober, options.Health.Collector, options.ProbeTimeout))

	engineOpts := []alert.EngineOption{}
	if options.Workers > 0 {
		engineOpts = append(engineOpts, alert.WithWorkers(options.Workers))
	}
	if options.Events != nil {
		engineOpts = append(engineOpts, alert.WithEventPublisher(options.Events))
	}
	engine := alert.NewEngine(store, resolver, engineOpts...)

	events := options.Events

	if err := registry.RegisterCommand(alert.NewCreateRuleCommandWithDefaults(store, events, options.DefaultWindowMinutes)); err != nil {
		return err
	}
	if err := registry.RegisterCommand(alert.NewUpdateRuleCommandWithEvents(store, events)); err != nil {
		return err
	}
	if err := registry.RegisterCommand(alert.NewDeleteRuleCommandWithEvents(store, events)); err != nil {
		return err
	}
	if err := registry.RegisterCommand(alert.NewAcknowledgeCommandWithEvents(store, events)); err != nil {
		return err
	}
	if err := registry.RegisterCommand(alert.NewResolveCommandWithEvents(store, events)); err != nil {
		return err
	}
	if err := registry.RegisterCommand(alert.NewEvaluateCommandWithEvents(engine, events)); err != nil {
		return err
	}
	if err := registry.RegisterCommand(alert.NewRecordEventCommandWithEvents(metricStore, events)); err != nil {
		return err
	}
	if err := registry.RegisterCommand(alert.NewRecordSampleCommandWithEvents(metricStore, events)); err != nil {
		return err
	}

	if err := registry.RegisterQuery(alert.NewListRulesQueryWithEvents(store, events)); err != nil {
		return err
	}
	if err := registry.RegisterQuery(alert.NewHistoryQueryWithEvents(store, events)); err != nil {
		return err
	}
	if err := registry.RegisterQuery(alert.NewActiveQueryWithEvents(store, events)); err != nil {
		return err
	}

	if err := registry.RegisterResource(alert.NewRulesResource(store)); err != nil {
		return err
	}
	if err := registry.RegisterResource(alert.NewActiveResource(store)); err != nil {
		return err
	}

	return nil
}

func RegisterAllWithDefaults(registry *unit.Registry) error {
	return RegisterAll(registry)
}
