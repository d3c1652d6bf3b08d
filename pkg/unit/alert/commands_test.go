package alert

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateRuleCommand_Name(t *testing.T) {
	cmd := NewCreateRuleCommand(nil)
	if cmd.Name() != "alert.create_rule" {
		t.Errorf("expected name 'alert.create_rule', got '%s'", cmd.Name())
	}
}

func TestCreateRuleCommand_Domain(t *testing.T) {
	cmd := NewCreateRuleCommand(nil)
	if cmd.Domain() != "alert" {
		t.Errorf("expected domain 'alert', got '%s'", cmd.Domain())
	}
}

func TestCreateRuleCommand_Schemas(t *testing.T) {
	cmd := NewCreateRuleCommand(nil)

	inputSchema := cmd.InputSchema()
	if inputSchema.Type != "object" {
		t.Errorf("expected input schema type 'object', got '%s'", inputSchema.Type)
	}
	if len(inputSchema.Required) != 6 {
		t.Errorf("expected 6 required fields, got %d", len(inputSchema.Required))
	}

	outputSchema := cmd.OutputSchema()
	if outputSchema.Type != "object" {
		t.Errorf("expected output schema type 'object', got '%s'", outputSchema.Type)
	}
}

func TestCreateRuleCommand_Execute(t *testing.T) {
	store := NewMemoryStore()
	cmd := NewCreateRuleCommand(store)

	tests := []struct {
		name    string
		input   any
		wantErr bool
	}{
		{
			name: "successful creation",
			input: map[string]any{
				"name":             "High error rate",
				"metric_source":    "pipeline_events",
				"metric_name":      "error_rate",
				"window_minutes":   60,
				"threshold":        10.0,
				"operator":         ">",
				"unit":             "%",
				"severity":         "critical",
				"cooldown_minutes": 30,
			},
			wantErr: false,
		},
		{
			name: "missing name",
			input: map[string]any{
				"metric_source": "pipeline_events",
				"metric_name":   "error_rate",
				"threshold":     10.0,
				"operator":      ">",
				"severity":      "warning",
			},
			wantErr: true,
		},
		{
			name: "invalid source",
			input: map[string]any{
				"name":          "Bad source",
				"metric_source": "billing_events",
				"metric_name":   "error_rate",
				"threshold":     10.0,
				"operator":      ">",
				"severity":      "warning",
			},
			wantErr: true,
		},
		{
			name: "invalid operator",
			input: map[string]any{
				"name":          "Bad operator",
				"metric_source": "pipeline_events",
				"metric_name":   "error_rate",
				"threshold":     10.0,
				"operator":      "~",
				"severity":      "warning",
			},
			wantErr: true,
		},
		{
			name: "invalid severity",
			input: map[string]any{
				"name":          "Bad severity",
				"metric_source": "pipeline_events",
				"metric_name":   "error_rate",
				"threshold":     10.0,
				"operator":      ">",
				"severity":      "urgent",
			},
			wantErr: true,
		},
		{
			name: "missing threshold",
			input: map[string]any{
				"name":          "No threshold",
				"metric_source": "pipeline_events",
				"metric_name":   "error_rate",
				"operator":      ">",
				"severity":      "warning",
			},
			wantErr: true,
		},
		{
			name: "zero window",
			input: map[string]any{
				"name":           "Zero window",
				"metric_source":  "pipeline_events",
				"metric_name":    "error_rate",
				"window_minutes": 0,
				"threshold":      10.0,
				"operator":       ">",
				"severity":       "warning",
			},
			wantErr: true,
		},
		{
			name:    "invalid input type",
			input:   "invalid",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := cmd.Execute(context.Background(), tt.input)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			resultMap, ok := result.(map[string]any)
			if !ok {
				t.Error("expected result to be map[string]any")
				return
			}

			if _, ok := resultMap["rule_id"].(string); !ok {
				t.Error("expected 'rule_id' to be string")
			}
		})
	}
}

func TestCreateRuleCommand_WindowBackfill(t *testing.T) {
	input := map[string]any{
		"name":          "No window",
		"metric_source": "pipeline_events",
		"metric_name":   "error_rate",
		"threshold":     10.0,
		"operator":      ">",
		"severity":      "warning",
	}

	t.Run("built-in default", func(t *testing.T) {
		store := NewMemoryStore()
		cmd := NewCreateRuleCommand(store)

		result, err := cmd.Execute(context.Background(), input)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		ruleID := result.(map[string]any)["rule_id"].(string)

		rule, err := store.GetRule(context.Background(), ruleID)
		if err != nil {
			t.Fatalf("GetRule() error = %v", err)
		}
		if rule.WindowMinutes != defaultRuleWindowMinutes {
			t.Errorf("WindowMinutes = %d, want %d", rule.WindowMinutes, defaultRuleWindowMinutes)
		}
	})

	t.Run("configured default", func(t *testing.T) {
		store := NewMemoryStore()
		cmd := NewCreateRuleCommandWithDefaults(store, nil, 45)

		result, err := cmd.Execute(context.Background(), input)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		ruleID := result.(map[string]any)["rule_id"].(string)

		rule, err := store.GetRule(context.Background(), ruleID)
		if err != nil {
			t.Fatalf("GetRule() error = %v", err)
		}
		if rule.WindowMinutes != 45 {
			t.Errorf("WindowMinutes = %d, want 45", rule.WindowMinutes)
		}
	})
}

func TestCreateRuleCommand_NegativeWindow_Rejected(t *testing.T) {
	cmd := NewCreateRuleCommand(NewMemoryStore())

	_, err := cmd.Execute(context.Background(), map[string]any{
		"name":           "Negative window",
		"metric_source":  "pipeline_events",
		"metric_name":    "error_rate",
		"window_minutes": -5,
		"threshold":      10.0,
		"operator":       ">",
		"severity":       "warning",
	})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("Execute() error = %v, want ErrInvalidWindow", err)
	}
}

func TestUpdateRuleCommand_Execute(t *testing.T) {
	store := NewMemoryStore()
	store.CreateRule(context.Background(), newTestRule("rule-1", "Test Rule", true))

	cmd := NewUpdateRuleCommand(store)

	tests := []struct {
		name    string
		input   any
		wantErr bool
	}{
		{
			name: "successful update",
			input: map[string]any{
				"rule_id":   "rule-1",
				"threshold": 20.0,
				"enabled":   false,
			},
			wantErr: false,
		},
		{
			name: "rule not found",
			input: map[string]any{
				"rule_id":   "nonexistent",
				"threshold": 20.0,
			},
			wantErr: true,
		},
		{
			name: "invalid operator rejected",
			input: map[string]any{
				"rule_id":  "rule-1",
				"operator": "between",
			},
			wantErr: true,
		},
		{
			name: "zero window rejected",
			input: map[string]any{
				"rule_id":        "rule-1",
				"window_minutes": 0,
			},
			wantErr: true,
		},
		{
			name: "missing rule_id",
			input: map[string]any{
				"threshold": 20.0,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := cmd.Execute(context.Background(), tt.input)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			resultMap, ok := result.(map[string]any)
			if !ok {
				t.Error("expected result to be map[string]any")
				return
			}

			if success, _ := resultMap["success"].(bool); !success {
				t.Error("expected success to be true")
			}
		})
	}

	rule, err := store.GetRule(context.Background(), "rule-1")
	if err != nil {
		t.Fatalf("get rule: %v", err)
	}
	if rule.Threshold != 20.0 {
		t.Errorf("expected threshold 20, got %v", rule.Threshold)
	}
	if rule.Enabled {
		t.Error("expected rule to be disabled")
	}
}

func TestDeleteRuleCommand_Execute(t *testing.T) {
	store := NewMemoryStore()
	store.CreateRule(context.Background(), newTestRule("rule-1", "Test Rule", true))

	cmd := NewDeleteRuleCommand(store)

	tests := []struct {
		name    string
		input   any
		wantErr bool
	}{
		{
			name:    "successful delete",
			input:   map[string]any{"rule_id": "rule-1"},
			wantErr: false,
		},
		{
			name:    "rule not found",
			input:   map[string]any{"rule_id": "nonexistent"},
			wantErr: true,
		},
		{
			name:    "missing rule_id",
			input:   map[string]any{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := cmd.Execute(context.Background(), tt.input)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			resultMap, ok := result.(map[string]any)
			if !ok {
				t.Error("expected result to be map[string]any")
				return
			}

			if success, _ := resultMap["success"].(bool); !success {
				t.Error("expected success to be true")
			}
		})
	}
}

func TestAcknowledgeCommand_Execute(t *testing.T) {
	store := NewMemoryStore()
	store.CreateAlert(context.Background(), newTestAlert("alert-1", "rule-1", AlertStatusActive, AlertSeverityWarning))

	cmd := NewAcknowledgeCommand(store)

	result, err := cmd.Execute(context.Background(), map[string]any{"alert_id": "alert-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resultMap := result.(map[string]any)
	if success, _ := resultMap["success"].(bool); !success {
		t.Error("expected success to be true")
	}

	alert, err := store.GetAlert(context.Background(), "alert-1")
	if err != nil {
		t.Fatalf("get alert: %v", err)
	}
	if alert.Status != AlertStatusAcknowledged {
		t.Errorf("expected status acknowledged, got %s", alert.Status)
	}
	if alert.AcknowledgedAt == nil {
		t.Error("expected acknowledged_at to be set")
	}
}

func TestAcknowledgeCommand_AlertNotFound(t *testing.T) {
	cmd := NewAcknowledgeCommand(NewMemoryStore())

	if _, err := cmd.Execute(context.Background(), map[string]any{"alert_id": "ghost"}); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestResolveCommand_Execute(t *testing.T) {
	store := NewMemoryStore()
	store.CreateAlert(context.Background(), newTestAlert("alert-1", "rule-1", AlertStatusAcknowledged, AlertSeverityWarning))

	cmd := NewResolveCommand(store)

	result, err := cmd.Execute(context.Background(), map[string]any{"alert_id": "alert-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resultMap := result.(map[string]any)
	if success, _ := resultMap["success"].(bool); !success {
		t.Error("expected success to be true")
	}

	alert, err := store.GetAlert(context.Background(), "alert-1")
	if err != nil {
		t.Fatalf("get alert: %v", err)
	}
	if alert.Status != AlertStatusResolved {
		t.Errorf("expected status resolved, got %s", alert.Status)
	}
	if alert.ResolvedAt == nil {
		t.Error("expected resolved_at to be set")
	}
}

func TestResolveCommand_MissingAlertID(t *testing.T) {
	cmd := NewResolveCommand(NewMemoryStore())

	if _, err := cmd.Execute(context.Background(), map[string]any{}); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestEvaluateCommand_Execute(t *testing.T) {
	store := NewMemoryStore()
	metricStore := NewMemoryMetricStore()
	ctx := context.Background()

	store.CreateRule(ctx, newTestRule("rule-1", "High error rate", true))
	for i := 0; i < 3; i++ {
		metricStore.RecordPipelineEvent(ctx, &PipelineEvent{Status: PipelineStatusFailed, CreatedAt: time.Now()})
	}
	for i := 0; i < 17; i++ {
		metricStore.RecordPipelineEvent(ctx, &PipelineEvent{Status: PipelineStatusSuccess, CreatedAt: time.Now()})
	}

	resolver := NewResolver()
	resolver.Register(MetricSourcePipeline, PipelineSource(metricStore))

	cmd := NewEvaluateCommand(NewEngine(store, resolver))

	result, err := cmd.Execute(ctx, map[string]any{"source": "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, ok := result.(*EvaluateResponse)
	if !ok {
		t.Fatalf("expected *EvaluateResponse, got %T", result)
	}
	if !resp.Success {
		t.Error("expected run success")
	}
	if resp.Summary.TriggeredAlerts != 1 {
		t.Errorf("expected 1 triggered alert, got %d", resp.Summary.TriggeredAlerts)
	}
}

func TestEvaluateCommand_Name(t *testing.T) {
	cmd := NewEvaluateCommand(nil)
	if cmd.Name() != "alert.evaluate" {
		t.Errorf("expected name 'alert.evaluate', got '%s'", cmd.Name())
	}
}
