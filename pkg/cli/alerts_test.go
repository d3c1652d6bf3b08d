package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noa10/mataresit-app-sub017/pkg/unit/alert"
)

func seedAlert(t *testing.T, store *alert.MemoryStore, title string, status alert.AlertStatus) *alert.Alert {
	t.Helper()
	a := &alert.Alert{
		RuleID:      "rule-1",
		Title:       title,
		Severity:    alert.AlertSeverityWarning,
		Status:      status,
		MetricName:  alert.MetricErrorRate,
		MetricValue: 42,
		Threshold:   10,
		Operator:    alert.OpGreaterThan,
	}
	require.NoError(t, store.CreateAlert(context.Background(), a))
	return a
}

func TestRunAlertsActive(t *testing.T) {
	root, store, buf := newTestRoot(t)
	seedAlert(t, store, "High error rate: error_rate > 10", alert.AlertStatusActive)
	seedAlert(t, store, "Resolved alert", alert.AlertStatusResolved)

	err := runAlertsActive(context.Background(), root)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "High error rate")
	assert.NotContains(t, buf.String(), "Resolved alert")
}

func TestRunAlertsHistory(t *testing.T) {
	root, store, buf := newTestRoot(t)
	seedAlert(t, store, "First alert", alert.AlertStatusResolved)
	seedAlert(t, store, "Second alert", alert.AlertStatusActive)

	err := runAlertsHistory(context.Background(), root, map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "First alert")
	assert.Contains(t, buf.String(), "Second alert")
	assert.Contains(t, buf.String(), "Total: 2")
}

func TestRunAlertsHistory_StatusFilter(t *testing.T) {
	root, store, buf := newTestRoot(t)
	seedAlert(t, store, "First alert", alert.AlertStatusResolved)
	seedAlert(t, store, "Second alert", alert.AlertStatusActive)

	err := runAlertsHistory(context.Background(), root, map[string]any{
		"status": string(alert.AlertStatusResolved),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "First alert")
	assert.NotContains(t, buf.String(), "Second alert")
}

func TestRunAlertsAck(t *testing.T) {
	root, store, buf := newTestRoot(t)
	a := seedAlert(t, store, "High error rate", alert.AlertStatusActive)

	err := runAlertsAck(context.Background(), root, a.ID)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "acknowledged")

	got, err := store.GetAlert(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, alert.AlertStatusAcknowledged, got.Status)
	assert.NotNil(t, got.AcknowledgedAt)
}

func TestRunAlertsAck_NotFound(t *testing.T) {
	root, _, _ := newTestRoot(t)

	err := runAlertsAck(context.Background(), root, "ghost")
	assert.Error(t, err)
}

func TestRunAlertsResolve(t *testing.T) {
	root, store, buf := newTestRoot(t)
	a := seedAlert(t, store, "High error rate", alert.AlertStatusAcknowledged)

	err := runAlertsResolve(context.Background(), root, a.ID)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "resolved")

	got, err := store.GetAlert(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, alert.AlertStatusResolved, got.Status)
	assert.NotNil(t, got.ResolvedAt)
}

func TestRunAlertsResolve_NotFound(t *testing.T) {
	root, _, _ := newTestRoot(t)

	err := runAlertsResolve(context.Background(), root, "ghost")
	assert.Error(t, err)
}

func TestNewAlertsCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()
	cmd := NewAlertsCommand(root)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"active", "history", "ack", "resolve"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
