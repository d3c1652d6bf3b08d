package alert

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/noa10/mataresit-app-sub017/pkg/infra/metrics"
	"github.com/noa10/mataresit-app-sub017/pkg/unit"
)

// currentTime is swapped out by tests that need to move the clock.
var currentTime = func() time.Time {
	return time.Now()
}

const defaultWorkers = 4

// Engine runs one evaluation pass over a resolved rule set. Rules have no
// ordering dependency on each other and are evaluated concurrently by a
// worker pool sized to the store's connection budget. Each rule is an
// isolated unit of work: a failing rule is recorded and never halts its
// siblings.
type Engine struct {
	store    Store
	resolver *Resolver
	gate     *CooldownGate
	trigger  *Trigger
	workers  int
	events   unit.EventPublisher
}

type EngineOption func(*Engine)

func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithEventPublisher(events unit.EventPublisher) EngineOption {
	return func(e *Engine) {
		e.events = events
		e.trigger = NewTriggerWithEvents(e.store, events)
	}
}

func NewEngine(store Store, resolver *Resolver, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		resolver: resolver,
		gate:     NewCooldownGate(store),
		trigger:  NewTrigger(store),
		workers:  defaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run evaluates the rule set selected by req and returns the aggregated
// response. Success is false only when the rule set itself cannot be
// fetched; per-rule failures are reported inside Results.
func (e *Engine) Run(ctx context.Context, req EvaluateRequest) *EvaluateResponse {
	start := time.Now()
	runID := unit.GenerateRunID()
	ctx = unit.WithRunID(ctx, runID)

	log := slog.Default().With("run_id", runID)
	if req.Source != "" {
		log = log.With("source", req.Source)
	}
	if req.Force {
		log = log.With("force", true)
	}

	rules, err := e.resolveRules(ctx, req)
	if err != nil {
		log.Error("failed to fetch rule set", "error", err)
		metrics.EvaluationRunsTotal.WithLabelValues("error").Inc()
		return &EvaluateResponse{
			Success:   false,
			Message:   fmt.Sprintf("fetch rules: %v", err),
			Results:   []EvaluationResult{},
			Summary:   EvaluationSummary{EvaluationTimeMs: time.Since(start).Milliseconds()},
			Timestamp: time.Now(),
		}
	}

	log.Info("evaluation run started", "rules", len(rules))

	results := make([]EvaluationResult, len(rules))

	workers := e.workers
	if workers > len(rules) {
		workers = len(rules)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.evaluateRule(ctx, &rules[i])
			}
		}()
	}
	for i := range rules {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	triggered := 0
	for _, r := range results {
		if r.Triggered {
			triggered++
		}
	}

	elapsed := time.Since(start)
	metrics.EvaluationRunsTotal.WithLabelValues("ok").Inc()
	metrics.EvaluationDuration.Observe(elapsed.Seconds())

	log.Info("evaluation run finished",
		"rules", len(rules),
		"triggered", triggered,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return &EvaluateResponse{
		Success: true,
		Message: fmt.Sprintf("evaluated %d rules, %d triggered", len(rules), triggered),
		Results: results,
		Summary: EvaluationSummary{
			TotalRules:       len(rules),
			TriggeredAlerts:  triggered,
			EvaluationTimeMs: elapsed.Milliseconds(),
		},
		Timestamp: time.Now(),
	}
}

// resolveRules selects the target rule set: a specific enabled rule, all
// enabled rules for a team, or all enabled rules system-wide. A missing or
// disabled rule id yields zero rules, not an error; deletion races with
// external rule authoring are expected.
func (e *Engine) resolveRules(ctx context.Context, req EvaluateRequest) ([]AlertRule, error) {
	filter := RuleFilter{EnabledOnly: true}
	switch {
	case req.RuleID != "":
		filter.ID = req.RuleID
	case req.TeamID != "":
		filter.TeamID = req.TeamID
	}

	rules, err := e.store.ListRules(ctx, filter)
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// evaluateRule runs one rule through resolve → cooldown → condition →
// trigger. Every failure mode, panics included, is absorbed into the
// result so the batch always completes.
func (e *Engine) evaluateRule(ctx context.Context, rule *AlertRule) (res EvaluationResult) {
	start := time.Now()
	res = EvaluationResult{
		RuleID:    rule.ID,
		RuleName:  rule.Name,
		Threshold: rule.Threshold,
		Operator:  rule.Operator,
		Severity:  rule.Severity,
	}

	log := slog.Default().With("run_id", unit.GetRunID(ctx), "rule_id", rule.ID, "rule", rule.Name)

	defer func() {
		if r := recover(); r != nil {
			log.Error("rule evaluation panicked", "panic", r, "stack", string(debug.Stack()))
			res.Success = false
			res.Triggered = false
			res.Reason = fmt.Sprintf("panic: %v", r)
			metrics.RulesEvaluatedTotal.WithLabelValues("failed").Inc()
		}
		res.ElapsedMs = time.Since(start).Milliseconds()
		metrics.RuleEvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	value, ok, err := e.resolver.Resolve(ctx, rule)
	if err != nil {
		log.Warn("metric resolution failed", "error", err)
		res.Reason = err.Error()
		metrics.RulesEvaluatedTotal.WithLabelValues("failed").Inc()
		return res
	}
	if !ok {
		res.Reason = ReasonMetricUnavailable
		metrics.RulesEvaluatedTotal.WithLabelValues("unavailable").Inc()
		return res
	}

	res.MetricValue = &value
	res.Success = true

	suppressed, err := e.gate.InCooldown(ctx, rule)
	if err != nil {
		log.Warn("cooldown check failed", "error", err)
		res.Success = false
		res.Reason = err.Error()
		metrics.RulesEvaluatedTotal.WithLabelValues("failed").Inc()
		return res
	}
	if suppressed {
		res.Reason = ReasonCooldown
		metrics.RulesEvaluatedTotal.WithLabelValues("cooldown").Inc()
		return res
	}

	if !EvaluateCondition(value, rule.Threshold, rule.Operator) {
		metrics.RulesEvaluatedTotal.WithLabelValues("ok").Inc()
		return res
	}

	// Triggered reflects condition truth, not delivery novelty: a duplicate
	// found by the trigger still reports triggered=true.
	res.Triggered = true
	metrics.RulesEvaluatedTotal.WithLabelValues("triggered").Inc()

	alert, created, err := e.trigger.Trigger(ctx, rule, value)
	if err != nil {
		log.Error("alert trigger failed", "error", err)
		res.Success = false
		res.Reason = err.Error()
		return res
	}
	if created {
		metrics.AlertsCreatedTotal.Inc()
		log.Warn("alert created",
			"alert_id", alert.ID,
			"severity", rule.Severity,
			"value", value,
			"threshold", rule.Threshold,
		)
	} else {
		log.Info("alert suppressed, unresolved alert exists", "value", value)
	}

	return res
}
