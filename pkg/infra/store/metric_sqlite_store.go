package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noa10/mataresit-app-sub017/pkg/unit/alert"
	_ "modernc.org/sqlite"
)

// MetricSQLiteStore implements alert.MetricStore backed by SQLite. It holds
// the raw material the resolver aggregates: pipeline events and performance
// samples.
type MetricSQLiteStore struct {
	db *sql.DB
}

// NewMetricSQLiteStore opens (or creates) a metric database at dbPath.
func NewMetricSQLiteStore(dbPath string) (*MetricSQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &MetricSQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *MetricSQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS pipeline_events (
		id TEXT PRIMARY KEY,
		team_id TEXT,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_pipeline_events_window ON pipeline_events(team_id, created_at);

	CREATE TABLE IF NOT EXISTS metric_samples (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		team_id TEXT,
		value REAL NOT NULL,
		recorded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_metric_samples_lookup ON metric_samples(name, team_id, recorded_at);
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *MetricSQLiteStore) Close() error {
	return s.db.Close()
}

func (s *MetricSQLiteStore) RecordPipelineEvent(ctx context.Context, event *alert.PipelineEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pipeline_events (id, team_id, status, created_at) VALUES (?, ?, ?, ?)`,
		event.ID, event.TeamID, event.Status, event.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert pipeline event: %w", err)
	}
	return nil
}

func (s *MetricSQLiteStore) CountPipelineEvents(ctx context.Context, teamID string, since time.Time) (int, int, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM pipeline_events
		WHERE created_at >= ?
	`
	args := []any{alert.PipelineStatusFailed, since.UnixNano()}
	if teamID != "" {
		query += " AND team_id = ?"
		args = append(args, teamID)
	}

	var total, failed int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total, &failed); err != nil {
		return 0, 0, fmt.Errorf("count pipeline events: %w", err)
	}
	return total, failed, nil
}

func (s *MetricSQLiteStore) RecordSample(ctx context.Context, sample *alert.MetricSample) error {
	if sample.ID == "" {
		sample.ID = uuid.New().String()
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO metric_samples (id, name, team_id, value, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		sample.ID, sample.Name, sample.TeamID, sample.Value, sample.RecordedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

func (s *MetricSQLiteStore) LatestSample(ctx context.Context, name, teamID string, since time.Time) (*alert.MetricSample, error) {
	query := `
		SELECT id, name, team_id, value, recorded_at
		FROM metric_samples
		WHERE name = ? AND recorded_at >= ?
	`
	args := []any{name, since.UnixNano()}
	if teamID != "" {
		query += " AND team_id = ?"
		args = append(args, teamID)
	}
	query += " ORDER BY recorded_at DESC LIMIT 1"

	sample := &alert.MetricSample{}
	var recordedAt int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&sample.ID, &sample.Name, &sample.TeamID, &sample.Value, &recordedAt,
	)
	if err == sql.ErrNoRows {
		return nil, alert.ErrNoSample
	}
	if err != nil {
		return nil, fmt.Errorf("scan sample: %w", err)
	}

	sample.RecordedAt = time.Unix(0, recordedAt)
	return sample, nil
}

var _ alert.MetricStore = (*MetricSQLiteStore)(nil)
