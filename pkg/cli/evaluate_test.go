package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noa10/mataresit-app-sub017/pkg/registry"
	"github.com/noa10/mataresit-app-sub017/pkg/unit/alert"
)

func TestRunEvaluate_NoRules(t *testing.T) {
	root, _, buf := newTestRoot(t)

	err := runEvaluate(context.Background(), root, "", "", false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "evaluated 0 rules")
}

func TestRunEvaluate_TriggersAlert(t *testing.T) {
	metricStore := alert.NewMemoryMetricStore()
	for i := 0; i < 10; i++ {
		status := alert.PipelineStatusSuccess
		if i < 5 {
			status = alert.PipelineStatusFailed
		}
		require.NoError(t, metricStore.RecordPipelineEvent(context.Background(), &alert.PipelineEvent{
			Status:    status,
			CreatedAt: time.Now().Add(-time.Minute),
		}))
	}

	root, store, buf := newTestRoot(t, registry.WithMetricStore(metricStore))
	require.NoError(t, store.CreateRule(context.Background(), &alert.AlertRule{
		Name:          "High error rate",
		MetricSource:  alert.MetricSourcePipeline,
		MetricName:    alert.MetricErrorRate,
		Operator:      alert.OpGreaterThan,
		Threshold:     10,
		Severity:      alert.AlertSeverityCritical,
		WindowMinutes: 60,
		Enabled:       true,
	}))

	err := runEvaluate(context.Background(), root, "", "", false)
	require.NoError(t, err)

	alerts, _, err := store.ListAlerts(context.Background(), alert.AlertFilter{Status: alert.AlertStatusActive})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Contains(t, buf.String(), "1 triggered")
}

func TestRunEvaluate_JSONOutput(t *testing.T) {
	root, _, buf := newTestRoot(t)
	root.opts.Format = OutputJSON

	err := runEvaluate(context.Background(), root, "", "", false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"summary"`)
}

func TestRunEvaluate_UnknownRule(t *testing.T) {
	root, _, buf := newTestRoot(t)

	err := runEvaluate(context.Background(), root, "no-such-rule", "", false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "evaluated 0 rules")
}

func TestRunEvaluate_PushesMetricsWhenConfigured(t *testing.T) {
	got := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	root, _, _ := newTestRoot(t)
	root.cfg.Metrics.PushgatewayURL = server.URL

	err := runEvaluate(context.Background(), root, "", "", false)
	require.NoError(t, err)

	select {
	case path := <-got:
		assert.Contains(t, path, "/metrics/job/alertd")
	default:
		t.Fatal("expected a push to the gateway")
	}
}

func TestRunEvaluate_NoPushWithoutURL(t *testing.T) {
	hit := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit <- struct{}{}
	}))
	defer server.Close()

	root, _, _ := newTestRoot(t)

	err := runEvaluate(context.Background(), root, "", "", false)
	require.NoError(t, err)

	select {
	case <-hit:
		t.Fatal("push happened without a configured gateway")
	default:
	}
}

func TestNewEvaluateCommand_Flags(t *testing.T) {
	root := NewRootCommand()
	cmd := NewEvaluateCommand(root)

	assert.NotNil(t, cmd.Flags().Lookup("rule"))
	assert.NotNil(t, cmd.Flags().Lookup("team"))
	assert.NotNil(t, cmd.Flags().Lookup("force"))
}
