package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noa10/mataresit-app-sub017/pkg/unit/alert"
	_ "modernc.org/sqlite"
)

// AlertSQLiteStore implements alert.Store backed by SQLite.
type AlertSQLiteStore struct {
	db *sql.DB
}

// NewAlertSQLiteStore opens (or creates) an alert database at dbPath.
func NewAlertSQLiteStore(dbPath string) (*AlertSQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &AlertSQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *AlertSQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS alert_rules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		enabled INTEGER NOT NULL DEFAULT 1,
		team_id TEXT,
		metric_source TEXT NOT NULL,
		metric_name TEXT NOT NULL,
		window_minutes INTEGER NOT NULL DEFAULT 0,
		threshold REAL NOT NULL,
		operator TEXT NOT NULL,
		unit TEXT,
		severity TEXT NOT NULL,
		cooldown_minutes INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alert_rules_team ON alert_rules(team_id);
	CREATE INDEX IF NOT EXISTS idx_alert_rules_enabled ON alert_rules(enabled);

	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		rule_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		severity TEXT NOT NULL,
		status TEXT NOT NULL,
		metric_name TEXT NOT NULL,
		metric_value REAL NOT NULL,
		threshold REAL NOT NULL,
		operator TEXT NOT NULL,
		unit TEXT,
		context TEXT,
		team_id TEXT,
		created_at INTEGER NOT NULL,
		acknowledged_at INTEGER,
		resolved_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_rule ON alerts(rule_id);
	CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status);
	CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_unresolved
		ON alerts(rule_id) WHERE status IN ('active', 'acknowledged');
	`
	_, err := s.db.Exec(query)
	return err
}

// Ping checks database liveness; the health source times it as db_latency_ms.
func (s *AlertSQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database handle.
func (s *AlertSQLiteStore) Close() error {
	return s.db.Close()
}

func (s *AlertSQLiteStore) CreateRule(ctx context.Context, rule *alert.AlertRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	now := time.Now()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	if rule.UpdatedAt.IsZero() {
		rule.UpdatedAt = now
	}

	query := `
		INSERT INTO alert_rules (id, name, description, enabled, team_id, metric_source, metric_name,
			window_minutes, threshold, operator, unit, severity, cooldown_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rule.ID, rule.Name, rule.Description, boolToInt(rule.Enabled), rule.TeamID,
		string(rule.MetricSource), rule.MetricName, rule.WindowMinutes, rule.Threshold,
		string(rule.Operator), rule.Unit, string(rule.Severity), rule.CooldownMinutes,
		rule.CreatedAt.UnixNano(), rule.UpdatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return alert.ErrRuleExists
		}
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

func (s *AlertSQLiteStore) GetRule(ctx context.Context, id string) (*alert.AlertRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM alert_rules WHERE id = ?`
	return scanRule(s.db.QueryRowContext(ctx, query, id))
}

func (s *AlertSQLiteStore) ListRules(ctx context.Context, filter alert.RuleFilter) ([]alert.AlertRule, error) {
	whereClause := "1=1"
	args := []any{}

	if filter.ID != "" {
		whereClause += " AND id = ?"
		args = append(args, filter.ID)
	}
	if filter.TeamID != "" {
		whereClause += " AND team_id = ?"
		args = append(args, filter.TeamID)
	}
	if filter.EnabledOnly {
		whereClause += " AND enabled = 1"
	}

	query := fmt.Sprintf(`SELECT %s FROM alert_rules WHERE %s ORDER BY created_at ASC`, ruleColumns, whereClause)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []alert.AlertRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

func (s *AlertSQLiteStore) UpdateRule(ctx context.Context, rule *alert.AlertRule) error {
	query := `
		UPDATE alert_rules
		SET name = ?, description = ?, enabled = ?, team_id = ?, metric_source = ?, metric_name = ?,
			window_minutes = ?, threshold = ?, operator = ?, unit = ?, severity = ?, cooldown_minutes = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		rule.Name, rule.Description, boolToInt(rule.Enabled), rule.TeamID,
		string(rule.MetricSource), rule.MetricName, rule.WindowMinutes, rule.Threshold,
		string(rule.Operator), rule.Unit, string(rule.Severity), rule.CooldownMinutes,
		time.Now().UnixNano(), rule.ID,
	)
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return alert.ErrRuleNotFound
	}
	return nil
}

func (s *AlertSQLiteStore) DeleteRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM alert_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return alert.ErrRuleNotFound
	}
	return nil
}

func (s *AlertSQLiteStore) CreateAlert(ctx context.Context, a *alert.Alert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	contextJSON, _ := json.Marshal(a.Context)

	query := `
		INSERT INTO alerts (id, rule_id, title, description, severity, status, metric_name, metric_value,
			threshold, operator, unit, context, team_id, created_at, acknowledged_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.RuleID, a.Title, a.Description, string(a.Severity), string(a.Status),
		a.MetricName, a.MetricValue, a.Threshold, string(a.Operator), a.Unit,
		string(contextJSON), a.TeamID, a.CreatedAt.UnixNano(),
		nullableTime(a.AcknowledgedAt), nullableTime(a.ResolvedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return alert.ErrAlertExists
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *AlertSQLiteStore) GetAlert(ctx context.Context, id string) (*alert.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = ?`
	return scanAlert(s.db.QueryRowContext(ctx, query, id))
}

func (s *AlertSQLiteStore) ListAlerts(ctx context.Context, filter alert.AlertFilter) ([]alert.Alert, int, error) {
	whereClause := "1=1"
	args := []any{}

	if filter.RuleID != "" {
		whereClause += " AND rule_id = ?"
		args = append(args, filter.RuleID)
	}
	if filter.Status != "" {
		whereClause += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.Severity != "" {
		whereClause += " AND severity = ?"
		args = append(args, string(filter.Severity))
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM alerts WHERE %s", whereClause)
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count alerts: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM alerts WHERE %s ORDER BY created_at DESC LIMIT ? OFFSET ?`, alertColumns, whereClause)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []alert.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, total, rows.Err()
}

func (s *AlertSQLiteStore) UpdateAlert(ctx context.Context, a *alert.Alert) error {
	contextJSON, _ := json.Marshal(a.Context)

	query := `
		UPDATE alerts
		SET title = ?, description = ?, severity = ?, status = ?, metric_name = ?, metric_value = ?,
			threshold = ?, operator = ?, unit = ?, context = ?, team_id = ?, acknowledged_at = ?, resolved_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		a.Title, a.Description, string(a.Severity), string(a.Status),
		a.MetricName, a.MetricValue, a.Threshold, string(a.Operator), a.Unit,
		string(contextJSON), a.TeamID,
		nullableTime(a.AcknowledgedAt), nullableTime(a.ResolvedAt), a.ID,
	)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return alert.ErrAlertNotFound
	}
	return nil
}

func (s *AlertSQLiteStore) ListUnresolvedAlerts(ctx context.Context, ruleID string) ([]alert.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE rule_id = ? AND status IN ('active', 'acknowledged') ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, ruleID)
	if err != nil {
		return nil, fmt.Errorf("query unresolved alerts: %w", err)
	}
	defer rows.Close()

	var alerts []alert.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

func (s *AlertSQLiteStore) LatestAlert(ctx context.Context, ruleID string) (*alert.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE rule_id = ? ORDER BY created_at DESC LIMIT 1`
	return scanAlert(s.db.QueryRowContext(ctx, query, ruleID))
}

const ruleColumns = `id, name, description, enabled, team_id, metric_source, metric_name,
	window_minutes, threshold, operator, unit, severity, cooldown_minutes, created_at, updated_at`

const alertColumns = `id, rule_id, title, description, severity, status, metric_name, metric_value,
	threshold, operator, unit, context, team_id, created_at, acknowledged_at, resolved_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*alert.AlertRule, error) {
	rule := &alert.AlertRule{}
	var enabled int
	var source, operator, severity string
	var createdAt, updatedAt int64

	err := row.Scan(
		&rule.ID, &rule.Name, &rule.Description, &enabled, &rule.TeamID,
		&source, &rule.MetricName, &rule.WindowMinutes, &rule.Threshold,
		&operator, &rule.Unit, &severity, &rule.CooldownMinutes,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, alert.ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan rule: %w", err)
	}

	rule.Enabled = enabled != 0
	rule.MetricSource = alert.MetricSource(source)
	rule.Operator = alert.ThresholdOperator(operator)
	rule.Severity = alert.AlertSeverity(severity)
	rule.CreatedAt = time.Unix(0, createdAt)
	rule.UpdatedAt = time.Unix(0, updatedAt)
	return rule, nil
}

func scanAlert(row rowScanner) (*alert.Alert, error) {
	a := &alert.Alert{}
	var severity, status, operator, contextStr string
	var createdAt int64
	var acknowledgedAt, resolvedAt sql.NullInt64

	err := row.Scan(
		&a.ID, &a.RuleID, &a.Title, &a.Description, &severity, &status,
		&a.MetricName, &a.MetricValue, &a.Threshold, &operator, &a.Unit,
		&contextStr, &a.TeamID, &createdAt, &acknowledgedAt, &resolvedAt,
	)
	if err == sql.ErrNoRows {
		return nil, alert.ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan alert: %w", err)
	}

	a.Severity = alert.AlertSeverity(severity)
	a.Status = alert.AlertStatus(status)
	a.Operator = alert.ThresholdOperator(operator)
	a.CreatedAt = time.Unix(0, createdAt)
	if acknowledgedAt.Valid {
		ts := time.Unix(0, acknowledgedAt.Int64)
		a.AcknowledgedAt = &ts
	}
	if resolvedAt.Valid {
		ts := time.Unix(0, resolvedAt.Int64)
		a.ResolvedAt = &ts
	}
	if contextStr != "" {
		_ = json.Unmarshal([]byte(contextStr), &a.Context)
	}
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ alert.Store = (*AlertSQLiteStore)(nil)
var _ alert.Prober = (*AlertSQLiteStore)(nil)
