package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// pushJob groups alertd runs under one Pushgateway job.
const pushJob = "alertd"

// PushToGateway sends every registered metric to the Pushgateway at url.
// alertd is a one-shot process, so pushed counters are the only way its
// instrumentation survives the run. Add semantics keep groups from other
// instances intact; instance labels the group when non-empty.
func PushToGateway(ctx context.Context, url, instance string) error {
	pusher := push.New(url, pushJob).Gatherer(prometheus.DefaultGatherer)
	if instance != "" {
		pusher = pusher.Grouping("instance", instance)
	}
	if err := pusher.AddContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
