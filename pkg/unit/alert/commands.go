package alert

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/noa10/mataresit-app-sub017/pkg/unit"
	"github.com/noa10/mataresit-app-sub017/pkg/unit/ptrs"
)

// defaultRuleWindowMinutes backfills window_minutes when a rule is created
// without one. Overridable via evaluation.default_window_minutes.
const defaultRuleWindowMinutes = 60

type CreateRuleCommand struct {
	store         Store
	events        unit.EventPublisher
	defaultWindow int
}

func NewCreateRuleCommand(store Store) *CreateRuleCommand {
	return &CreateRuleCommand{store: store, defaultWindow: defaultRuleWindowMinutes}
}

func NewCreateRuleCommandWithEvents(store Store, events unit.EventPublisher) *CreateRuleCommand {
	return &CreateRuleCommand{store: store, events: events, defaultWindow: defaultRuleWindowMinutes}
}

// NewCreateRuleCommandWithDefaults overrides the window backfill, usually
// from configuration. A non-positive defaultWindow keeps the built-in one.
func NewCreateRuleCommandWithDefaults(store Store, events unit.EventPublisher, defaultWindow int) *CreateRuleCommand {
	if defaultWindow <= 0 {
		defaultWindow = defaultRuleWindowMinutes
	}
	return &CreateRuleCommand{store: store, events: events, defaultWindow: defaultWindow}
}

func (c *CreateRuleCommand) Name() string {
	return "alert.create_rule"
}

func (c *CreateRuleCommand) Domain() string {
	return "alert"
}

func (c *CreateRuleCommand) Description() string {
	return "Create a new alert rule"
}

func (c *CreateRuleCommand) InputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"name": {
				Name: "name",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Rule name",
				},
			},
			"description": {
				Name: "description",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Human readable rule description",
				},
			},
			"team_id": {
				Name: "team_id",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Team scope, empty for a global rule",
				},
			},
			"metric_source": {
				Name: "metric_source",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Backing data category for the metric",
					Enum:        []any{"pipeline_events", "performance", "system_health"},
				},
			},
			"metric_name": {
				Name: "metric_name",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Metric name within the source",
				},
			},
			"window_minutes": {
				Name: "window_minutes",
				Schema: unit.Schema{
					Type:        "number",
					Description: "Lookback window in minutes",
					Min:         ptrs.Float64(1),
				},
			},
			"threshold": {
				Name: "threshold",
				Schema: unit.Schema{
					Type:        "number",
					Description: "Threshold value to compare against",
				},
			},
			"operator": {
				Name: "operator",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Comparison operator",
					Enum:        []any{">", "<", ">=", "<=", "=", "!="},
				},
			},
			"unit": {
				Name: "unit",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Display unit for the metric value",
				},
			},
			"severity": {
				Name: "severity",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Alert severity level",
					Enum:        []any{"info", "warning", "critical"},
				},
			},
			"cooldown_minutes": {
				Name: "cooldown_minutes",
				Schema: unit.Schema{
					Type:        "number",
					Description: "Minimum minutes between alerts for this rule, 0 disables",
					Min:         ptrs.Float64(0),
				},
			},
		},
		Required: []string{"name", "metric_source", "metric_name", "threshold", "operator", "severity"},
	}
}

func (c *CreateRuleCommand) OutputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"rule_id": {
				Name:   "rule_id",
				Schema: unit.Schema{Type: "string"},
			},
		},
	}
}

func (c *CreateRuleCommand) Examples() []unit.Example {
	return []unit.Example{
		{
			Input: map[string]any{
				"name":             "High error rate",
				"metric_source":    "pipeline_events",
				"metric_name":      "error_rate",
				"window_minutes":   60,
				"threshold":        10,
				"operator":         ">",
				"unit":             "%",
				"severity":         "critical",
				"cooldown_minutes": 30,
			},
			Output:      map[string]any{"rule_id": "rule-123"},
			Description: "Alert when the hourly pipeline error rate exceeds 10%",
		},
	}
}

func (c *CreateRuleCommand) Execute(ctx context.Context, input any) (any, error) {
	ec := unit.NewExecutionContext(c.events, c.Domain(), c.Name())
	ec.PublishStarted(input)

	inputMap, ok := input.(map[string]any)
	if !ok {
		err := fmt.Errorf("invalid input type: expected map[string]any")
		ec.PublishFailed(err)
		return nil, err
	}

	name := getString(inputMap, "name")
	if name == "" {
		err := fmt.Errorf("name is required")
		ec.PublishFailed(err)
		return nil, err
	}

	source := MetricSource(getString(inputMap, "metric_source"))
	if !isValidSource(source) {
		ec.PublishFailed(ErrInvalidSource)
		return nil, ErrInvalidSource
	}

	metricName := getString(inputMap, "metric_name")
	if metricName == "" {
		err := fmt.Errorf("metric_name is required")
		ec.PublishFailed(err)
		return nil, err
	}

	operator := ThresholdOperator(getString(inputMap, "operator"))
	if !isValidOperator(operator) {
		ec.PublishFailed(ErrInvalidOperator)
		return nil, ErrInvalidOperator
	}

	severity := AlertSeverity(getString(inputMap, "severity"))
	if !isValidSeverity(severity) {
		ec.PublishFailed(ErrInvalidSeverity)
		return nil, ErrInvalidSeverity
	}

	threshold, ok := getFloat(inputMap, "threshold")
	if !ok {
		err := fmt.Errorf("threshold is required")
		ec.PublishFailed(err)
		return nil, err
	}

	window := c.defaultWindow
	if _, present := inputMap["window_minutes"]; present {
		window = getInt(inputMap, "window_minutes")
	}
	if window <= 0 {
		ec.PublishFailed(ErrInvalidWindow)
		return nil, ErrInvalidWindow
	}

	now := currentTime()
	rule := &AlertRule{
		ID:              uuid.New().String(),
		Name:            name,
		Description:     getString(inputMap, "description"),
		Enabled:         true,
		TeamID:          getString(inputMap, "team_id"),
		MetricSource:    source,
		MetricName:      metricName,
		WindowMinutes:   window,
		Threshold:       threshold,
		Operator:        operator,
		Unit:            getString(inputMap, "unit"),
		Severity:        severity,
		CooldownMinutes: getInt(inputMap, "cooldown_minutes"),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := c.store.CreateRule(ctx, rule); err != nil {
		ec.PublishFailed(err)
		return nil, fmt.Errorf("create rule: %w", err)
	}

	output := map[string]any{"rule_id": rule.ID}
	ec.PublishCompleted(output)
	return output, nil
}

type UpdateRuleCommand struct {
	store  Store
	events unit.EventPublisher
}

func NewUpdateRuleCommand(store Store) *UpdateRuleCommand {
	return &UpdateRuleCommand{store: store}
}

func NewUpdateRuleCommandWithEvents(store Store, events unit.EventPublisher) *UpdateRuleCommand {
	return &UpdateRuleCommand{store: store, events: events}
}

func (c *UpdateRuleCommand) Name() string {
	return "alert.update_rule"
}

func (c *UpdateRuleCommand) Domain() string {
	return "alert"
}

func (c *UpdateRuleCommand) Description() string {
	return "Update an existing alert rule"
}

func (c *UpdateRuleCommand) InputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"rule_id": {
				Name: "rule_id",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Rule identifier",
				},
			},
			"name": {
				Name: "name",
				Schema: unit.Schema{
					Type:        "string",
					Description: "New rule name",
				},
			},
			"threshold": {
				Name: "threshold",
				Schema: unit.Schema{
					Type:        "number",
					Description: "New threshold value",
				},
			},
			"operator": {
				Name: "operator",
				Schema: unit.Schema{
					Type:        "string",
					Description: "New comparison operator",
					Enum:        []any{">", "<", ">=", "<=", "=", "!="},
				},
			},
			"window_minutes": {
				Name: "window_minutes",
				Schema: unit.Schema{
					Type:        "number",
					Description: "New lookback window in minutes",
					Min:         ptrs.Float64(1),
				},
			},
			"cooldown_minutes": {
				Name: "cooldown_minutes",
				Schema: unit.Schema{
					Type:        "number",
					Description: "New cooldown in minutes",
					Min:         ptrs.Float64(0),
				},
			},
			"enabled": {
				Name: "enabled",
				Schema: unit.Schema{
					Type:        "boolean",
					Description: "Enable or disable the rule",
				},
			},
		},
		Required: []string{"rule_id"},
	}
}

func (c *UpdateRuleCommand) OutputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"success": {
				Name:   "success",
				Schema: unit.Schema{Type: "boolean"},
			},
		},
	}
}

func (c *UpdateRuleCommand) Examples() []unit.Example {
	return []unit.Example{
		{
			Input: map[string]any{
				"rule_id":   "rule-123",
				"threshold": 15,
				"enabled":   true,
			},
			Output:      map[string]any{"success": true},
			Description: "Raise a rule's threshold",
		},
	}
}

func (c *UpdateRuleCommand) Execute(ctx context.Context, input any) (any, error) {
	ec := unit.NewExecutionContext(c.events, c.Domain(), c.Name())
	ec.PublishStarted(input)

	inputMap, ok := input.(map[string]any)
	if !ok {
		err := fmt.Errorf("invalid input type: expected map[string]any")
		ec.PublishFailed(err)
		return nil, err
	}

	ruleID := getString(inputMap, "rule_id")
	if ruleID == "" {
		ec.PublishFailed(ErrInvalidRuleID)
		return nil, ErrInvalidRuleID
	}

	rule, err := c.store.GetRule(ctx, ruleID)
	if err != nil {
		ec.PublishFailed(err)
		return nil, fmt.Errorf("get rule: %w", err)
	}

	if name := getString(inputMap, "name"); name != "" {
		rule.Name = name
	}
	if threshold, ok := getFloat(inputMap, "threshold"); ok {
		rule.Threshold = threshold
	}
	if op := getString(inputMap, "operator"); op != "" {
		operator := ThresholdOperator(op)
		if !isValidOperator(operator) {
			ec.PublishFailed(ErrInvalidOperator)
			return nil, ErrInvalidOperator
		}
		rule.Operator = operator
	}
	if _, present := inputMap["window_minutes"]; present {
		window := getInt(inputMap, "window_minutes")
		if window <= 0 {
			ec.PublishFailed(ErrInvalidWindow)
			return nil, ErrInvalidWindow
		}
		rule.WindowMinutes = window
	}
	if _, present := inputMap["cooldown_minutes"]; present {
		rule.CooldownMinutes = getInt(inputMap, "cooldown_minutes")
	}
	if enabled, ok := inputMap["enabled"].(bool); ok {
		rule.Enabled = enabled
	}
	rule.UpdatedAt = currentTime()

	if err := c.store.UpdateRule(ctx, rule); err != nil {
		ec.PublishFailed(err)
		return nil, fmt.Errorf("update rule: %w", err)
	}

	output := map[string]any{"success": true}
	ec.PublishCompleted(output)
	return output, nil
}

type DeleteRuleCommand struct {
	store  Store
	events unit.EventPublisher
}

func NewDeleteRuleCommand(store Store) *DeleteRuleCommand {
	return &DeleteRuleCommand{store: store}
}

func NewDeleteRuleCommandWithEvents(store Store, events unit.EventPublisher) *DeleteRuleCommand {
	return &DeleteRuleCommand{store: store, events: events}
}

func (c *DeleteRuleCommand) Name() string {
	return "alert.delete_rule"
}

func (c *DeleteRuleCommand) Domain() string {
	return "alert"
}

func (c *DeleteRuleCommand) Description() string {
	return "Delete an alert rule"
}

func (c *DeleteRuleCommand) InputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"rule_id": {
				Name: "rule_id",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Rule identifier",
				},
			},
		},
		Required: []string{"rule_id"},
	}
}

func (c *DeleteRuleCommand) OutputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"success": {
				Name:   "success",
				Schema: unit.Schema{Type: "boolean"},
			},
		},
	}
}

func (c *DeleteRuleCommand) Examples() []unit.Example {
	return []unit.Example{
		{
			Input:       map[string]any{"rule_id": "rule-123"},
			Output:      map[string]any{"success": true},
			Description: "Delete an alert rule",
		},
	}
}

func (c *DeleteRuleCommand) Execute(ctx context.Context, input any) (any, error) {
	ec := unit.NewExecutionContext(c.events, c.Domain(), c.Name())
	ec.PublishStarted(input)

	inputMap, ok := input.(map[string]any)
	if !ok {
		err := fmt.Errorf("invalid input type: expected map[string]any")
		ec.PublishFailed(err)
		return nil, err
	}

	ruleID := getString(inputMap, "rule_id")
	if ruleID == "" {
		ec.PublishFailed(ErrInvalidRuleID)
		return nil, ErrInvalidRuleID
	}

	if err := c.store.DeleteRule(ctx, ruleID); err != nil {
		ec.PublishFailed(err)
		return nil, fmt.Errorf("delete rule: %w", err)
	}

	output := map[string]any{"success": true}
	ec.PublishCompleted(output)
	return output, nil
}

type AcknowledgeCommand struct {
	store  Store
	events unit.EventPublisher
}

func NewAcknowledgeCommand(store Store) *AcknowledgeCommand {
	return &AcknowledgeCommand{store: store}
}

func NewAcknowledgeCommandWithEvents(store Store, events unit.EventPublisher) *AcknowledgeCommand {
	return &AcknowledgeCommand{store: store, events: events}
}

func (c *AcknowledgeCommand) Name() string {
	return "alert.acknowledge"
}

func (c *AcknowledgeCommand) Domain() string {
	return "alert"
}

func (c *AcknowledgeCommand) Description() string {
	return "Acknowledge an alert"
}

func (c *AcknowledgeCommand) InputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"alert_id": {
				Name: "alert_id",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Alert identifier",
				},
			},
		},
		Required: []string{"alert_id"},
	}
}

func (c *AcknowledgeCommand) OutputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"success": {
				Name:   "success",
				Schema: unit.Schema{Type: "boolean"},
			},
		},
	}
}

func (c *AcknowledgeCommand) Examples() []unit.Example {
	return []unit.Example{
		{
			Input:       map[string]any{"alert_id": "alert-456"},
			Output:      map[string]any{"success": true},
			Description: "Acknowledge an alert",
		},
	}
}

func (c *AcknowledgeCommand) Execute(ctx context.Context, input any) (any, error) {
	ec := unit.NewExecutionContext(c.events, c.Domain(), c.Name())
	ec.PublishStarted(input)

	inputMap, ok := input.(map[string]any)
	if !ok {
		err := fmt.Errorf("invalid input type: expected map[string]any")
		ec.PublishFailed(err)
		return nil, err
	}

	alertID := getString(inputMap, "alert_id")
	if alertID == "" {
		ec.PublishFailed(ErrInvalidAlertID)
		return nil, ErrInvalidAlertID
	}

	alert, err := c.store.GetAlert(ctx, alertID)
	if err != nil {
		ec.PublishFailed(err)
		return nil, fmt.Errorf("get alert: %w", err)
	}

	now := currentTime()
	alert.Status = AlertStatusAcknowledged
	alert.AcknowledgedAt = &now

	if err := c.store.UpdateAlert(ctx, alert); err != nil {
		ec.PublishFailed(err)
		return nil, fmt.Errorf("acknowledge alert: %w", err)
	}

	if c.events != nil {
		_ = c.events.Publish(NewAcknowledgedEvent(alert))
	}

	output := map[string]any{"success": true}
	ec.PublishCompleted(output)
	return output, nil
}

type ResolveCommand struct {
	store  Store
	events unit.EventPublisher
}

func NewResolveCommand(store Store) *ResolveCommand {
	return &ResolveCommand{store: store}
}

func NewResolveCommandWithEvents(store Store, events unit.EventPublisher) *ResolveCommand {
	return &ResolveCommand{store: store, events: events}
}

func (c *ResolveCommand) Name() string {
	return "alert.resolve"
}

func (c *ResolveCommand) Domain() string {
	return "alert"
}

func (c *ResolveCommand) Description() string {
	return "Resolve an alert"
}

func (c *ResolveCommand) InputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"alert_id": {
				Name: "alert_id",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Alert identifier",
				},
			},
		},
		Required: []string{"alert_id"},
	}
}

func (c *ResolveCommand) OutputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"success": {
				Name:   "success",
				Schema: unit.Schema{Type: "boolean"},
			},
		},
	}
}

func (c *ResolveCommand) Examples() []unit.Example {
	return []unit.Example{
		{
			Input:       map[string]any{"alert_id": "alert-456"},
			Output:      map[string]any{"success": true},
			Description: "Resolve an alert",
		},
	}
}

func (c *ResolveCommand) Execute(ctx context.Context, input any) (any, error) {
	ec := unit.NewExecutionContext(c.events, c.Domain(), c.Name())
	ec.PublishStarted(input)

	inputMap, ok := input.(map[string]any)
	if !ok {
		err := fmt.Errorf("invalid input type: expected map[string]any")
		ec.PublishFailed(err)
		return nil, err
	}

	alertID := getString(inputMap, "alert_id")
	if alertID == "" {
		ec.PublishFailed(ErrInvalidAlertID)
		return nil, ErrInvalidAlertID
	}

	alert, err := c.store.GetAlert(ctx, alertID)
	if err != nil {
		ec.PublishFailed(err)
		return nil, fmt.Errorf("get alert: %w", err)
	}

	now := currentTime()
	alert.Status = AlertStatusResolved
	alert.ResolvedAt = &now

	if err := c.store.UpdateAlert(ctx, alert); err != nil {
		ec.PublishFailed(err)
		return nil, fmt.Errorf("resolve alert: %w", err)
	}

	if c.events != nil {
		_ = c.events.Publish(NewResolvedEvent(alert))
	}

	output := map[string]any{"success": true}
	ec.PublishCompleted(output)
	return output, nil
}

// EvaluateCommand runs the evaluation engine over the selected rule set.
type EvaluateCommand struct {
	engine *Engine
	events unit.EventPublisher
}

func NewEvaluateCommand(engine *Engine) *EvaluateCommand {
	return &EvaluateCommand{engine: engine}
}

func NewEvaluateCommandWithEvents(engine *Engine, events unit.EventPublisher) *EvaluateCommand {
	return &EvaluateCommand{engine: engine, events: events}
}

func (c *EvaluateCommand) Name() string {
	return "alert.evaluate"
}

func (c *EvaluateCommand) Domain() string {
	return "alert"
}

func (c *EvaluateCommand) Description() string {
	return "Evaluate alert rules against current metrics"
}

func (c *EvaluateCommand) InputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"rule_id": {
				Name: "rule_id",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Evaluate a single rule by id",
				},
			},
			"team_id": {
				Name: "team_id",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Evaluate all enabled rules for a team",
				},
			},
			"force": {
				Name: "force",
				Schema: unit.Schema{
					Type:        "boolean",
					Description: "Mark the run as manually forced",
				},
			},
			"source": {
				Name: "source",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Caller tag recorded with the run",
				},
			},
		},
	}
}

func (c *EvaluateCommand) OutputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"success": {
				Name:   "success",
				Schema: unit.Schema{Type: "boolean"},
			},
			"message": {
				Name:   "message",
				Schema: unit.Schema{Type: "string"},
			},
			"results": {
				Name:   "results",
				Schema: unit.Schema{Type: "array"},
			},
			"summary": {
				Name:   "summary",
				Schema: unit.Schema{Type: "object"},
			},
		},
	}
}

func (c *EvaluateCommand) Examples() []unit.Example {
	return []unit.Example{
		{
			Input: map[string]any{"source": "cron"},
			Output: map[string]any{
				"success": true,
				"message": "evaluated 3 rules, 1 triggered",
			},
			Description: "Evaluate all enabled rules",
		},
		{
			Input: map[string]any{"rule_id": "rule-123", "force": true},
			Output: map[string]any{
				"success": true,
				"message": "evaluated 1 rules, 0 triggered",
			},
			Description: "Force a single rule evaluation",
		},
	}
}

func (c *EvaluateCommand) Execute(ctx context.Context, input any) (any, error) {
	ec := unit.NewExecutionContext(c.events, c.Domain(), c.Name())
	ec.PublishStarted(input)

	req := EvaluateRequest{}
	if inputMap, ok := input.(map[string]any); ok {
		req.RuleID = getString(inputMap, "rule_id")
		req.TeamID = getString(inputMap, "team_id")
		req.Source = getString(inputMap, "source")
		if force, ok := inputMap["force"].(bool); ok {
			req.Force = force
		}
	}

	resp := c.engine.Run(ctx, req)

	ec.PublishCompleted(map[string]any{
		"success":   resp.Success,
		"total":     resp.Summary.TotalRules,
		"triggered": resp.Summary.TriggeredAlerts,
	})
	return resp, nil
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func getFloat(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
