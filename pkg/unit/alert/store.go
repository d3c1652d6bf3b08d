package alert

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence boundary for rules and alerts. It is a generic
// filter/order/limit surface with no dependency on a particular storage
// product; the sqlite implementation lives in pkg/infra/store.
type Store interface {
	CreateRule(ctx context.Context, rule *AlertRule) error
	GetRule(ctx context.Context, id string) (*AlertRule, error)
	ListRules(ctx context.Context, filter RuleFilter) ([]AlertRule, error)
	UpdateRule(ctx context.Context, rule *AlertRule) error
	DeleteRule(ctx context.Context, id string) error

	CreateAlert(ctx context.Context, alert *Alert) error
	GetAlert(ctx context.Context, id string) (*Alert, error)
	ListAlerts(ctx context.Context, filter AlertFilter) ([]Alert, int, error)
	UpdateAlert(ctx context.Context, alert *Alert) error

	// ListUnresolvedAlerts returns active and acknowledged alerts for a
	// rule; the trigger's dedup check.
	ListUnresolvedAlerts(ctx context.Context, ruleID string) ([]Alert, error)
	// LatestAlert returns the most recently created alert for a rule in any
	// status, or ErrAlertNotFound; the cooldown gate's single-row lookup.
	LatestAlert(ctx context.Context, ruleID string) (*Alert, error)
}

type MemoryStore struct {
	rules  map[string]*AlertRule
	alerts map[string]*Alert
	mu     sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rules:  make(map[string]*AlertRule),
		alerts: make(map[string]*Alert),
	}
}

func (s *MemoryStore) CreateRule(ctx context.Context, rule *AlertRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	if _, exists := s.rules[rule.ID]; exists {
		return ErrRuleExists
	}

	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	s.rules[rule.ID] = rule
	return nil
}

func (s *MemoryStore) GetRule(ctx context.Context, id string) (*AlertRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, exists := s.rules[id]
	if !exists {
		return nil, ErrRuleNotFound
	}
	cp := *rule
	return &cp, nil
}

func (s *MemoryStore) ListRules(ctx context.Context, filter RuleFilter) ([]AlertRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []AlertRule
	for _, r := range s.rules {
		if filter.ID != "" && r.ID != filter.ID {
			continue
		}
		if filter.TeamID != "" && r.TeamID != filter.TeamID {
			continue
		}
		if filter.EnabledOnly && !r.Enabled {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) UpdateRule(ctx context.Context, rule *AlertRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[rule.ID]; !exists {
		return ErrRuleNotFound
	}

	rule.UpdatedAt = time.Now()
	s.rules[rule.ID] = rule
	return nil
}

func (s *MemoryStore) DeleteRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[id]; !exists {
		return ErrRuleNotFound
	}

	delete(s.rules, id)
	return nil
}

func (s *MemoryStore) CreateAlert(ctx context.Context, alert *Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}

	// One unresolved alert per rule, same constraint the sqlite store
	// enforces with a partial unique index.
	if alert.Unresolved() {
		for _, existing := range s.alerts {
			if existing.RuleID == alert.RuleID && existing.Unresolved() {
				return ErrAlertExists
			}
		}
	}

	s.alerts[alert.ID] = alert
	return nil
}

func (s *MemoryStore) GetAlert(ctx context.Context, id string) (*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alert, exists := s.alerts[id]
	if !exists {
		return nil, ErrAlertNotFound
	}
	cp := *alert
	return &cp, nil
}

func (s *MemoryStore) ListAlerts(ctx context.Context, filter AlertFilter) ([]Alert, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Alert
	for _, a := range s.alerts {
		if filter.RuleID != "" && a.RuleID != filter.RuleID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && a.Severity != filter.Severity {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	total := len(result)

	offset := filter.Offset
	if offset > len(result) {
		offset = len(result)
	}

	end := len(result)
	if filter.Limit > 0 {
		end = offset + filter.Limit
		if end > len(result) {
			end = len(result)
		}
	}

	return result[offset:end], total, nil
}

func (s *MemoryStore) UpdateAlert(ctx context.Context, alert *Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.alerts[alert.ID]; !exists {
		return ErrAlertNotFound
	}

	s.alerts[alert.ID] = alert
	return nil
}

func (s *MemoryStore) ListUnresolvedAlerts(ctx context.Context, ruleID string) ([]Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Alert
	for _, a := range s.alerts {
		if a.RuleID == ruleID && a.Unresolved() {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (s *MemoryStore) LatestAlert(ctx context.Context, ruleID string) (*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Alert
	for _, a := range s.alerts {
		if a.RuleID != ruleID {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, ErrAlertNotFound
	}
	cp := *latest
	return &cp, nil
}

var _ Store = (*MemoryStore)(nil)
