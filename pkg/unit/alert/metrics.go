package alert

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PipelineEvent is one processed pipeline item (e.g. a document pushed
// through ingestion). Rules over the pipeline-events source aggregate these
// into success/error rates.
type PipelineEvent struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"team_id,omitempty"`
	Status    string    `json:"status"` // "success" | "failed"
	CreatedAt time.Time `json:"created_at"`
}

const (
	PipelineStatusSuccess = "success"
	PipelineStatusFailed  = "failed"
)

// MetricSample is one recorded value of a named performance metric.
type MetricSample struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TeamID     string    `json:"team_id,omitempty"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// MetricStore is the read side the resolver depends on, plus the ingestion
// helpers collectors use to populate windows.
type MetricStore interface {
	RecordPipelineEvent(ctx context.Context, event *PipelineEvent) error
	// CountPipelineEvents returns total and failed event counts since the
	// given instant. An empty teamID aggregates across all teams.
	CountPipelineEvents(ctx context.Context, teamID string, since time.Time) (total, failed int, err error)

	RecordSample(ctx context.Context, sample *MetricSample) error
	// LatestSample returns the most recent sample of a named metric recorded
	// at or after since, or ErrNoSample. Older out-of-window samples never
	// leak in. An empty teamID matches samples from any team.
	LatestSample(ctx context.Context, name, teamID string, since time.Time) (*MetricSample, error)
}

type MemoryMetricStore struct {
	events  []PipelineEvent
	samples []MetricSample
	mu      sync.RWMutex
}

func NewMemoryMetricStore() *MemoryMetricStore {
	return &MemoryMetricStore{}
}

func (s *MemoryMetricStore) RecordPipelineEvent(ctx context.Context, event *PipelineEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	s.events = append(s.events, *event)
	return nil
}

func (s *MemoryMetricStore) CountPipelineEvents(ctx context.Context, teamID string, since time.Time) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total, failed int
	for _, e := range s.events {
		if teamID != "" && e.TeamID != teamID {
			continue
		}
		if e.CreatedAt.Before(since) {
			continue
		}
		total++
		if e.Status == PipelineStatusFailed {
			failed++
		}
	}
	return total, failed, nil
}

func (s *MemoryMetricStore) RecordSample(ctx context.Context, sample *MetricSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sample.ID == "" {
		sample.ID = uuid.New().String()
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now()
	}
	s.samples = append(s.samples, *sample)
	return nil
}

func (s *MemoryMetricStore) LatestSample(ctx context.Context, name, teamID string, since time.Time) (*MetricSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *MetricSample
	for i := range s.samples {
		sample := &s.samples[i]
		if sample.Name != name {
			continue
		}
		if teamID != "" && sample.TeamID != teamID {
			continue
		}
		if sample.RecordedAt.Before(since) {
			continue
		}
		if latest == nil || sample.RecordedAt.After(latest.RecordedAt) {
			latest = sample
		}
	}
	if latest == nil {
		return nil, ErrNoSample
	}
	cp := *latest
	return &cp, nil
}

var _ MetricStore = (*MemoryMetricStore)(nil)
