package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func NewRecordCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record metric data for rule evaluation",
		Long: `Ingest pipeline outcomes and metric samples.

Recorded data feeds the pipeline_events and performance metric sources
the next time 'alertd evaluate' runs.`,
	}

	cmd.AddCommand(NewRecordPipelineCommand(root))
	cmd.AddCommand(NewRecordSampleCommand(root))

	return cmd
}

func NewRecordPipelineCommand(root *RootCommand) *cobra.Command {
	var (
		status string
		teamID string
	)

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Record a pipeline run outcome",
		Example: `  # Record a failed run for a team
  alertd record pipeline --status failed --team team-a`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := map[string]any{"status": status}
			if teamID != "" {
				input["team_id"] = teamID
			}
			return runRecord(cmd.Context(), root, "alert.record_event", input, "event_id")
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Run outcome (success, failed)")
	cmd.Flags().StringVarP(&teamID, "team", "t", "", "Owning team")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func NewRecordSampleCommand(root *RootCommand) *cobra.Command {
	var (
		metric string
		value  float64
		teamID string
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Record a performance metric sample",
		Example: `  # Record an API latency sample
  alertd record sample --metric api_latency_ms --value 230.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := map[string]any{
				"name":  metric,
				"value": value,
			}
			if teamID != "" {
				input["team_id"] = teamID
			}
			return runRecord(cmd.Context(), root, "alert.record_sample", input, "sample_id")
		},
	}

	cmd.Flags().StringVarP(&metric, "metric", "m", "", "Metric name")
	cmd.Flags().Float64Var(&value, "value", 0, "Sampled value")
	cmd.Flags().StringVarP(&teamID, "team", "t", "", "Owning team")
	_ = cmd.MarkFlagRequired("metric")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func runRecord(ctx context.Context, root *RootCommand, command string, input map[string]any, idKey string) error {
	opts := root.OutputOptions()

	out, err := root.execCommand(ctx, command, input)
	if err != nil {
		PrintError(err, opts)
		return err
	}

	if m, ok := out.(map[string]any); ok {
		PrintSuccess(fmt.Sprintf("Recorded: %v", m[idKey]), opts)
		return nil
	}
	return PrintOutput(out, opts)
}
