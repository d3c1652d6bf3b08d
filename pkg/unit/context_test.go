package unit

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req_abc")
	if got := GetRequestID(ctx); got != "req_abc" {
		t.Errorf("GetRequestID = %q", got)
	}
}

func TestRunIDRoundTrip(t *testing.T) {
	ctx := WithRunID(context.Background(), "run_xyz")
	if got := GetRunID(ctx); got != "run_xyz" {
		t.Errorf("GetRunID = %q", got)
	}
}

func TestStartTimeRoundTrip(t *testing.T) {
	now := time.Now()
	ctx := WithStartTime(context.Background(), now)
	if got := GetStartTime(ctx); !got.Equal(now) {
		t.Errorf("GetStartTime = %v, want %v", got, now)
	}
}

func TestGetters_EmptyContext(t *testing.T) {
	ctx := context.Background()
	if GetRequestID(ctx) != "" {
		t.Error("GetRequestID on empty context should be empty")
	}
	if GetRunID(ctx) != "" {
		t.Error("GetRunID on empty context should be empty")
	}
	if !GetStartTime(ctx).IsZero() {
		t.Error("GetStartTime on empty context should be zero")
	}
}

func TestGenerateRequestID(t *testing.T) {
	id := GenerateRequestID()
	if !strings.HasPrefix(id, "req_") {
		t.Errorf("id %q should have req_ prefix", id)
	}
	if id == GenerateRequestID() {
		t.Error("consecutive IDs should differ")
	}
}

func TestGenerateRunID(t *testing.T) {
	id := GenerateRunID()
	if !strings.HasPrefix(id, "run_") {
		t.Errorf("id %q should have run_ prefix", id)
	}
	if len(id) != len("run_")+32 {
		t.Errorf("id %q has unexpected length", id)
	}
}
