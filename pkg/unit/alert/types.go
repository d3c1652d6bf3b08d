package alert

import "time"

type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// MetricSource is the category of backing data a rule's metric is computed
// from. Each source has a registered resolver handler; adding a source never
// touches the evaluation engine.
type MetricSource string

const (
	MetricSourcePipeline    MetricSource = "pipeline_events"
	MetricSourcePerformance MetricSource = "performance"
	MetricSourceHealth      MetricSource = "system_health"
)

type ThresholdOperator string

const (
	OpGreaterThan    ThresholdOperator = ">"
	OpLessThan       ThresholdOperator = "<"
	OpGreaterOrEqual ThresholdOperator = ">="
	OpLessOrEqual    ThresholdOperator = "<="
	OpEqual          ThresholdOperator = "="
	OpNotEqual       ThresholdOperator = "!="
)

// Metric names understood by the pipeline-events source.
const (
	MetricSuccessRate = "success_rate"
	MetricErrorRate   = "error_rate"
)

// Metric names understood by the system-health source.
const (
	MetricDBLatencyMs  = "db_latency_ms"
	MetricMemoryUsed   = "memory_used_pct"
	MetricDiskUsed     = "disk_used_pct"
	MetricUptime       = "uptime_pct"
)

// AlertRule is a configured threshold condition over a named metric,
// optionally team-scoped. Rules are authored externally; the evaluation
// engine only reads them.
type AlertRule struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Enabled         bool              `json:"enabled"`
	TeamID          string            `json:"team_id,omitempty"` // empty = global
	MetricSource    MetricSource      `json:"metric_source"`
	MetricName      string            `json:"metric_name"`
	WindowMinutes   int               `json:"window_minutes"`
	Threshold       float64           `json:"threshold"`
	Operator        ThresholdOperator `json:"operator"`
	Unit            string            `json:"unit,omitempty"` // display only
	Severity        AlertSeverity     `json:"severity"`
	CooldownMinutes int               `json:"cooldown_minutes"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Alert is a fired rule instance. Severity and threshold fields are
// snapshotted at fire time; later rule edits do not rewrite history.
type Alert struct {
	ID             string            `json:"id"`
	RuleID         string            `json:"rule_id"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Severity       AlertSeverity     `json:"severity"`
	Status         AlertStatus       `json:"status"`
	MetricName     string            `json:"metric_name"`
	MetricValue    float64           `json:"metric_value"`
	Threshold      float64           `json:"threshold"`
	Operator       ThresholdOperator `json:"operator"`
	Unit           string            `json:"unit,omitempty"`
	Context        map[string]any    `json:"context,omitempty"`
	TeamID         string            `json:"team_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time        `json:"resolved_at,omitempty"`
}

// Unresolved reports whether the alert still blocks new triggers for its
// rule. Only active and acknowledged alerts do; resolved ones never.
func (a *Alert) Unresolved() bool {
	return a.Status == AlertStatusActive || a.Status == AlertStatusAcknowledged
}

type RuleFilter struct {
	ID          string
	TeamID      string
	EnabledOnly bool
}

type AlertFilter struct {
	RuleID   string
	Status   AlertStatus
	Severity AlertSeverity
	Limit    int
	Offset   int
}

// EvaluateRequest is the invocation payload for one evaluation run. Force
// and Source are observability tags; they do not alter evaluation semantics.
type EvaluateRequest struct {
	RuleID string `json:"rule_id,omitempty"`
	TeamID string `json:"team_id,omitempty"`
	Force  bool   `json:"force,omitempty"`
	Source string `json:"source,omitempty"`
}

// EvaluationResult is the per-rule outcome of a run. It is never persisted.
type EvaluationResult struct {
	Success     bool              `json:"success"`
	RuleID      string            `json:"rule_id"`
	RuleName    string            `json:"rule_name"`
	Triggered   bool              `json:"triggered"`
	MetricValue *float64          `json:"metric_value,omitempty"`
	Threshold   float64           `json:"threshold"`
	Operator    ThresholdOperator `json:"operator"`
	Severity    AlertSeverity     `json:"severity"`
	Reason      string            `json:"reason,omitempty"`
	ElapsedMs   int64             `json:"elapsed_ms"`
}

type EvaluationSummary struct {
	TotalRules       int   `json:"total_rules"`
	TriggeredAlerts  int   `json:"triggered_alerts"`
	EvaluationTimeMs int64 `json:"evaluation_time_ms"`
}

// EvaluateResponse aggregates one evaluation run. Success is false only
// when the rule set itself could not be fetched; individual rule failures
// leave it true.
type EvaluateResponse struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	Results   []EvaluationResult `json:"results"`
	Summary   EvaluationSummary  `json:"summary"`
	Timestamp time.Time          `json:"timestamp"`
}

// Result reasons reported for rules that did not fire.
const (
	ReasonMetricUnavailable = "metric unavailable"
	ReasonCooldown          = "cooldown"
)

func (r *AlertRule) Window() time.Duration {
	return time.Duration(r.WindowMinutes) * time.Minute
}

func (r *AlertRule) Cooldown() time.Duration {
	return time.Duration(r.CooldownMinutes) * time.Minute
}

func isValidSeverity(s AlertSeverity) bool {
	switch s {
	case AlertSeverityInfo, AlertSeverityWarning, AlertSeverityCritical:
		return true
	default:
		return false
	}
}

func isValidOperator(op ThresholdOperator) bool {
	switch op {
	case OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual, OpEqual, OpNotEqual:
		return true
	default:
		return false
	}
}

func isValidSource(s MetricSource) bool {
	switch s {
	case MetricSourcePipeline, MetricSourcePerformance, MetricSourceHealth:
		return true
	default:
		return false
	}
}
