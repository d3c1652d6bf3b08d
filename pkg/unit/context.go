package unit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	RunIDKey     contextKey = "run_id"
	StartTimeKey contextKey = "start_time"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithRunID tags the context with the evaluation run being executed so
// per-rule log lines can be correlated back to their run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, StartTimeKey, t)
}

func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(RequestIDKey).(string); ok {
		return s
	}
	return ""
}

func GetRunID(ctx context.Context) string {
	if s, ok := ctx.Value(RunIDKey).(string); ok {
		return s
	}
	return ""
}

func GetStartTime(ctx context.Context) time.Time {
	if t, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return t
	}
	return time.Time{}
}

func GenerateRequestID() string {
	return fmt.Sprintf("req_%s", randomHex(16))
}

func GenerateRunID() string {
	return fmt.Sprintf("run_%s", randomHex(16))
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		ts := time.Now().UnixNano()
		for i := 0; i < n; i++ {
			b[i] = byte(ts >> (i * 8))
		}
	}
	return hex.EncodeToString(b)
}
