package unit

import (
	"errors"
	"sync"
	"testing"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []any
	err    error
}

func (p *capturePublisher) Publish(event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func TestExecutionContext_PublishStarted(t *testing.T) {
	pub := &capturePublisher{}
	ec := NewExecutionContext(pub, "alert", "alert.evaluate")

	ec.PublishStarted(map[string]any{"force": true})

	if len(pub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(pub.events))
	}
	evt, ok := pub.events[0].(*ExecutionEvent)
	if !ok {
		t.Fatal("published event is not an ExecutionEvent")
	}
	if evt.EventType != string(ExecutionStarted) {
		t.Errorf("EventType = %s", evt.EventType)
	}
	if evt.EventDomain != "alert" || evt.UnitName != "alert.evaluate" {
		t.Error("domain or unit name not stamped")
	}
	if evt.EventCorrelationID == "" {
		t.Error("correlation ID missing")
	}
}

func TestExecutionContext_PublishCompleted(t *testing.T) {
	pub := &capturePublisher{}
	ec := NewExecutionContext(pub, "alert", "alert.evaluate")

	ec.PublishStarted(nil)
	ec.PublishCompleted(map[string]any{"triggered": 2})

	if len(pub.events) != 2 {
		t.Fatalf("events = %d, want 2", len(pub.events))
	}
	started := pub.events[0].(*ExecutionEvent)
	completed := pub.events[1].(*ExecutionEvent)

	if completed.EventType != string(ExecutionCompleted) {
		t.Errorf("EventType = %s", completed.EventType)
	}
	if started.EventCorrelationID != completed.EventCorrelationID {
		t.Error("started and completed events should share a correlation ID")
	}
}

func TestExecutionContext_PublishFailed(t *testing.T) {
	pub := &capturePublisher{}
	ec := NewExecutionContext(pub, "alert", "alert.create_rule")

	ec.PublishFailed(errors.New("invalid operator"))

	evt := pub.events[0].(*ExecutionEvent)
	if evt.EventType != string(ExecutionFailed) {
		t.Errorf("EventType = %s", evt.EventType)
	}
	if evt.Error != "invalid operator" {
		t.Errorf("Error = %q", evt.Error)
	}
}

func TestExecutionContext_NilPublisher(t *testing.T) {
	ec := NewExecutionContext(nil, "alert", "alert.evaluate")

	ec.PublishStarted(nil)
	ec.PublishCompleted(nil)
	ec.PublishFailed(errors.New("boom"))
}

func TestExecutionContext_PublishErrorIgnored(t *testing.T) {
	pub := &capturePublisher{err: errors.New("bus closed")}
	ec := NewExecutionContext(pub, "alert", "alert.evaluate")

	ec.PublishCompleted(nil)

	if len(pub.events) != 1 {
		t.Error("publish failure should not prevent the attempt")
	}
}

func TestExecutionEvent_ImplementsEvent(t *testing.T) {
	var _ Event = (*ExecutionEvent)(nil)

	evt := &ExecutionEvent{
		EventType:          string(ExecutionStarted),
		EventDomain:        "alert",
		EventCorrelationID: "corr-1",
	}
	if evt.Type() != string(ExecutionStarted) {
		t.Error("Type mismatch")
	}
	if evt.Domain() != "alert" {
		t.Error("Domain mismatch")
	}
	if evt.Payload() != evt {
		t.Error("Payload should return the event itself")
	}
	if evt.CorrelationID() != "corr-1" {
		t.Error("CorrelationID mismatch")
	}
}

func TestNoopEventPublisher(t *testing.T) {
	pub := &NoopEventPublisher{}
	if err := pub.Publish("anything"); err != nil {
		t.Errorf("Publish = %v", err)
	}
}
