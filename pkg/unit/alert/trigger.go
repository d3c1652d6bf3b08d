package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/noa10/mataresit-app-sub017/pkg/unit"
)

// Trigger creates deduplicated alert records. At most one unresolved alert
// per rule: if an active or acknowledged alert already exists, triggering
// is a no-op.
type Trigger struct {
	store  Store
	events unit.EventPublisher
}

func NewTrigger(store Store) *Trigger {
	return &Trigger{store: store}
}

func NewTriggerWithEvents(store Store, events unit.EventPublisher) *Trigger {
	return &Trigger{store: store, events: events}
}

// Trigger persists a new alert for the rule unless one is already open.
// It returns the alert (existing or new) and whether a new row was created.
func (t *Trigger) Trigger(ctx context.Context, rule *AlertRule, value float64) (*Alert, bool, error) {
	existing, err := t.store.ListUnresolvedAlerts(ctx, rule.ID)
	if err != nil {
		return nil, false, fmt.Errorf("list unresolved alerts: %w", err)
	}
	if len(existing) > 0 {
		return &existing[0], false, nil
	}

	now := currentTime()
	a := &Alert{
		ID:          uuid.New().String(),
		RuleID:      rule.ID,
		Title:       fmt.Sprintf("%s: %s %s %s", rule.Name, rule.MetricName, rule.Operator, formatValue(rule.Threshold, rule.Unit)),
		Description: fmt.Sprintf("%s measured %s against threshold %s %s over the last %d minutes", rule.MetricName, formatValue(value, rule.Unit), rule.Operator, formatValue(rule.Threshold, rule.Unit), rule.WindowMinutes),
		Severity:    rule.Severity,
		Status:      AlertStatusActive,
		MetricName:  rule.MetricName,
		MetricValue: value,
		Threshold:   rule.Threshold,
		Operator:    rule.Operator,
		Unit:        rule.Unit,
		Context: map[string]any{
			"rule_name":      rule.Name,
			"window_minutes": rule.WindowMinutes,
			"metric_source":  string(rule.MetricSource),
			"fired_at":       now.Format("2006-01-02T15:04:05Z07:00"),
			"trigger":        "threshold_evaluation",
		},
		TeamID:    rule.TeamID,
		CreatedAt: now,
	}

	if err := t.store.CreateAlert(ctx, a); err != nil {
		// A concurrent run may have won the check-then-insert race; the
		// storage-level uniqueness guard surfaces it here.
		if errors.Is(err, ErrAlertExists) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("create alert: %w", err)
	}

	if t.events != nil {
		_ = t.events.Publish(NewTriggeredEvent(a))
	}

	return a, true, nil
}

func formatValue(v float64, unit string) string {
	if unit == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f%s", v, unit)
}
