package alert

import (
	"context"
	"fmt"

	"github.com/noa10/mataresit-app-sub017/pkg/unit"
)

// RecordEventCommand ingests one pipeline run outcome into the metric store.
// The pipeline source computes success_rate and error_rate over these rows.
type RecordEventCommand struct {
	metrics MetricStore
	events  unit.EventPublisher
}

func NewRecordEventCommand(metrics MetricStore) *RecordEventCommand {
	return &RecordEventCommand{metrics: metrics}
}

func NewRecordEventCommandWithEvents(metrics MetricStore, events unit.EventPublisher) *RecordEventCommand {
	return &RecordEventCommand{metrics: metrics, events: events}
}

func (c *RecordEventCommand) Name() string {
	return "alert.record_event"
}

func (c *RecordEventCommand) Domain() string {
	return "alert"
}

func (c *RecordEventCommand) Description() string {
	return "Record a pipeline run outcome"
}

func (c *RecordEventCommand) InputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"status": {
				Name: "status",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Run outcome",
					Enum:        []any{PipelineStatusSuccess, PipelineStatusFailed},
				},
			},
			"team_id": {
				Name: "team_id",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Owning team (optional)",
				},
			},
		},
		Required: []string{"status"},
	}
}

func (c *RecordEventCommand) OutputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"event_id": {
				Name:   "event_id",
				Schema: unit.Schema{Type: "string"},
			},
		},
	}
}

func (c *RecordEventCommand) Examples() []unit.Example {
	return []unit.Example{
		{
			Input:       map[string]any{"status": "failed", "team_id": "team-a"},
			Output:      map[string]any{"event_id": "event-123"},
			Description: "Record a failed pipeline run for team-a",
		},
	}
}

func (c *RecordEventCommand) Execute(ctx context.Context, input any) (any, error) {
	ec := unit.NewExecutionContext(c.events, c.Domain(), c.Name())
	ec.PublishStarted(input)

	inputMap, ok := input.(map[string]any)
	if !ok {
		err := fmt.Errorf("invalid input type: expected map[string]any")
		ec.PublishFailed(err)
		return nil, err
	}

	status := getString(inputMap, "status")
	if status != PipelineStatusSuccess && status != PipelineStatusFailed {
		err := fmt.Errorf("invalid status %q: must be %q or %q", status, PipelineStatusSuccess, PipelineStatusFailed)
		ec.PublishFailed(err)
		return nil, err
	}

	event := &PipelineEvent{
		TeamID:    getString(inputMap, "team_id"),
		Status:    status,
		CreatedAt: currentTime(),
	}
	if err := c.metrics.RecordPipelineEvent(ctx, event); err != nil {
		ec.PublishFailed(err)
		return nil, fmt.Errorf("record pipeline event: %w", err)
	}

	output := map[string]any{"event_id": event.ID}
	ec.PublishCompleted(output)
	return output, nil
}

// RecordSampleCommand ingests one named metric sample. The performance
// source resolves rules against the latest in-window sample.
type RecordSampleCommand struct {
	metrics MetricStore
	events  unit.EventPublisher
}

func NewRecordSampleCommand(metrics MetricStore) *RecordSampleCommand {
	return &RecordSampleCommand{metrics: metrics}
}

func NewRecordSampleCommandWithEvents(metrics MetricStore, events unit.EventPublisher) *RecordSampleCommand {
	return &RecordSampleCommand{metrics: metrics, events: events}
}

func (c *RecordSampleCommand) Name() string {
	return "alert.record_sample"
}

func (c *RecordSampleCommand) Domain() string {
	return "alert"
}

func (c *RecordSampleCommand) Description() string {
	return "Record a performance metric sample"
}

func (c *RecordSampleCommand) InputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"name": {
				Name: "name",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Metric name",
				},
			},
			"value": {
				Name: "value",
				Schema: unit.Schema{
					Type:        "number",
					Description: "Sampled value",
				},
			},
			"team_id": {
				Name: "team_id",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Owning team (optional)",
				},
			},
		},
		Required: []string{"name", "value"},
	}
}

func (c *RecordSampleCommand) OutputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"sample_id": {
				Name:   "sample_id",
				Schema: unit.Schema{Type: "string"},
			},
		},
	}
}

func (c *RecordSampleCommand) Examples() []unit.Example {
	return []unit.Example{
		{
			Input:       map[string]any{"name": "api_latency_ms", "value": 230.5},
			Output:      map[string]any{"sample_id": "sample-123"},
			Description: "Record an API latency sample",
		},
	}
}

func (c *RecordSampleCommand) Execute(ctx context.Context, input any) (any, error) {
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
	value, ok := getFloat(inputMap, "value")
	if !ok {
		err := fmt.Errorf("value is required")
		ec.PublishFailed(err)
		return nil, err
	}

	sample := &MetricSample{
		Name:       name,
		TeamID:     getString(inputMap, "team_id"),
		Value:      value,
		RecordedAt: currentTime(),
	}
	if err := c.metrics.RecordSample(ctx, sample); err != nil {
		ec.PublishFailed(err)
		return nil, fmt.Errorf("record sample: %w", err)
	}

	output := map[string]any{"sample_id": sample.ID}
	ec.PublishCompleted(output)
	return output, nil
}
