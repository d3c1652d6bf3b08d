package unit

import (
	"errors"
	"fmt"
	"testing"
)

func TestUnitError_Error(t *testing.T) {
	err := NewError(ErrCodeRuleNotFound, "rule not found")
	if got := err.Error(); got != "[00100] rule not found" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := WrapError(fmt.Errorf("sql: no rows"), ErrCodeRuleNotFound, "rule not found")
	if got := wrapped.Error(); got != "[00100] rule not found: sql: no rows" {
		t.Errorf("Error() = %q", got)
	}
}

func TestUnitError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(cause, ErrCodeStoreUnavailable, "store write failed")

	if !errors.Is(err, cause) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
}

func TestUnitError_Is_MatchesOnCode(t *testing.T) {
	err := NewDomainError("alert", ErrCodeRuleNotFound, "rule missing")
	sentinel := NewError(ErrCodeRuleNotFound, "rule not found")

	if !errors.Is(err, sentinel) {
		t.Error("errors with the same code should match")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("errors with different codes should not match")
	}
}

func TestUnitError_WithDetails(t *testing.T) {
	err := NewError(ErrCodeMetricUnavailable, "no samples").
		WithDetails("metric", "db_latency_ms").
		WithDetails("window_minutes", 60)

	if err.Details["metric"] != "db_latency_ms" {
		t.Error("WithDetails did not record metric")
	}
	if err.Details["window_minutes"] != 60 {
		t.Error("WithDetails did not record window")
	}
}

func TestUnitError_WithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(ErrCodeStoreUnavailable, "store unreachable").WithCause(cause)

	if err.Unwrap() != cause {
		t.Error("WithCause did not set the cause")
	}
}

func TestAsUnitError(t *testing.T) {
	ue, ok := AsUnitError(NewError(ErrCodeInvalidRequest, "bad input"))
	if !ok || ue.Code != ErrCodeInvalidRequest {
		t.Error("AsUnitError should unwrap a UnitError")
	}

	wrapped := fmt.Errorf("outer: %w", NewError(ErrCodeTimeout, "deadline"))
	ue, ok = AsUnitError(wrapped)
	if !ok || ue.Code != ErrCodeTimeout {
		t.Error("AsUnitError should see through fmt wrapping")
	}

	if _, ok := AsUnitError(errors.New("plain")); ok {
		t.Error("AsUnitError should reject plain errors")
	}
	if _, ok := AsUnitError(nil); ok {
		t.Error("AsUnitError should reject nil")
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"generic not found", NewError(ErrCodeNotFound, "missing"), true},
		{"rule not found", NewDomainError("alert", ErrCodeRuleNotFound, "rule missing"), true},
		{"alert not found", NewDomainError("alert", ErrCodeAlertNotFound, "alert missing"), true},
		{"sentinel", ErrNotFound, true},
		{"timeout", ErrTimeout, false},
		{"plain error", errors.New("nope"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(NewError(ErrCodeTimeout, "probe deadline exceeded")) {
		t.Error("code-based timeout should match")
	}
	if !IsTimeout(ErrTimeout) {
		t.Error("sentinel timeout should match")
	}
	if IsTimeout(ErrNotFound) {
		t.Error("not-found should not match timeout")
	}
}
