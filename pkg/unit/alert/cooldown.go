package alert

import (
	"context"
	"errors"
	"fmt"
)

// CooldownGate decides whether a rule's most recent alert still suppresses
// re-firing. It complements the trigger's dedup check: cooldown defends
// against re-firing after an incident is resolved, dedup against duplicates
// within one.
type CooldownGate struct {
	store Store
}

func NewCooldownGate(store Store) *CooldownGate {
	return &CooldownGate{store: store}
}

// InCooldown reports whether any alert for the rule was created within the
// last CooldownMinutes. A zero cooldown is never suppressed.
func (g *CooldownGate) InCooldown(ctx context.Context, rule *AlertRule) (bool, error) {
	if rule.CooldownMinutes <= 0 {
		return false, nil
	}

	latest, err := g.store.LatestAlert(ctx, rule.ID)
	if errors.Is(err, ErrAlertNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("latest alert: %w", err)
	}

	boundary := currentTime().Add(-rule.Cooldown())
	return !latest.CreatedAt.Before(boundary), nil
}
