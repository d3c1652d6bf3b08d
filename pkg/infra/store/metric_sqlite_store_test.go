package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noa10/mataresit-app-sub017/pkg/unit/alert"
)

func newTestMetricStore(t *testing.T) *MetricSQLiteStore {
	t.Helper()
	s, err := NewMetricSQLiteStore(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMetricSQLiteStore_CountPipelineEvents(t *testing.T) {
	s := newTestMetricStore(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 17; i++ {
		require.NoError(t, s.RecordPipelineEvent(ctx, &alert.PipelineEvent{Status: alert.PipelineStatusSuccess, CreatedAt: now}))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordPipelineEvent(ctx, &alert.PipelineEvent{Status: alert.PipelineStatusFailed, CreatedAt: now}))
	}
	// Outside any reasonable window.
	require.NoError(t, s.RecordPipelineEvent(ctx, &alert.PipelineEvent{Status: alert.PipelineStatusFailed, CreatedAt: now.Add(-24 * time.Hour)}))

	total, failed, err := s.CountPipelineEvents(ctx, "", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 20, total)
	assert.Equal(t, 3, failed)
}

func TestMetricSQLiteStore_CountPipelineEvents_TeamScoping(t *testing.T) {
	s := newTestMetricStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.RecordPipelineEvent(ctx, &alert.PipelineEvent{TeamID: "team-a", Status: alert.PipelineStatusFailed, CreatedAt: now}))
	require.NoError(t, s.RecordPipelineEvent(ctx, &alert.PipelineEvent{TeamID: "team-b", Status: alert.PipelineStatusSuccess, CreatedAt: now}))

	total, failed, err := s.CountPipelineEvents(ctx, "team-a", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, failed)

	// Empty team aggregates everything.
	total, _, err = s.CountPipelineEvents(ctx, "", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestMetricSQLiteStore_CountPipelineEvents_EmptyWindow(t *testing.T) {
	s := newTestMetricStore(t)

	total, failed, err := s.CountPipelineEvents(context.Background(), "", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, failed)
}

func TestMetricSQLiteStore_LatestSample(t *testing.T) {
	s := newTestMetricStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.RecordSample(ctx, &alert.MetricSample{Name: "p95_latency_ms", Value: 300, RecordedAt: now.Add(-10 * time.Minute)}))
	require.NoError(t, s.RecordSample(ctx, &alert.MetricSample{Name: "p95_latency_ms", Value: 450, RecordedAt: now.Add(-time.Minute)}))
	require.NoError(t, s.RecordSample(ctx, &alert.MetricSample{Name: "throughput", Value: 12, RecordedAt: now}))

	sample, err := s.LatestSample(ctx, "p95_latency_ms", "", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 450.0, sample.Value)
}

func TestMetricSQLiteStore_LatestSample_WindowExcludesOld(t *testing.T) {
	s := newTestMetricStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.RecordSample(ctx, &alert.MetricSample{Name: "p95_latency_ms", Value: 300, RecordedAt: now.Add(-3 * time.Hour)}))

	_, err := s.LatestSample(ctx, "p95_latency_ms", "", now.Add(-time.Hour))
	assert.ErrorIs(t, err, alert.ErrNoSample)
}

func TestMetricSQLiteStore_LatestSample_TeamScoping(t *testing.T) {
	s := newTestMetricStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.RecordSample(ctx, &alert.MetricSample{Name: "p95_latency_ms", TeamID: "team-a", Value: 100, RecordedAt: now}))
	require.NoError(t, s.RecordSample(ctx, &alert.MetricSample{Name: "p95_latency_ms", TeamID: "team-b", Value: 200, RecordedAt: now.Add(time.Second)}))

	sample, err := s.LatestSample(ctx, "p95_latency_ms", "team-a", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 100.0, sample.Value)

	sample, err = s.LatestSample(ctx, "p95_latency_ms", "", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 200.0, sample.Value)
}
