package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/noa10/mataresit-app-sub017/pkg/infra/metrics"
	"github.com/noa10/mataresit-app-sub017/pkg/unit/alert"
)

func NewEvaluateCommand(root *RootCommand) *cobra.Command {
	var (
		ruleID string
		teamID string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run one evaluation pass over the alert rules",
		Long: `Evaluate alert rules against current metric values.

By default all enabled rules are evaluated. A single rule or a team's
rules can be selected with flags. Rules whose condition holds fire an
alert unless an unresolved alert already exists for the rule or the
rule is in cooldown.`,
		Example: `  # Evaluate all enabled rules
  alertd evaluate

  # Evaluate a single rule
  alertd evaluate --rule rule-123

  # Evaluate one team's rules
  alertd evaluate --team team-a`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.Context(), root, ruleID, teamID, force)
		},
	}

	cmd.Flags().StringVarP(&ruleID, "rule", "r", "", "Evaluate a single rule by id")
	cmd.Flags().StringVarP(&teamID, "team", "t", "", "Evaluate all enabled rules for a team")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Mark the run as manually forced")

	return cmd
}

func runEvaluate(ctx context.Context, root *RootCommand, ruleID, teamID string, force bool) error {
	opts := root.OutputOptions()

	input := map[string]any{
		"source": "cli",
		"force":  force,
	}
	if ruleID != "" {
		input["rule_id"] = ruleID
	}
	if teamID != "" {
		input["team_id"] = teamID
	}

	out, err := root.execCommand(ctx, "alert.evaluate", input)
	pushRunMetrics(ctx, root)
	if err != nil {
		PrintError(err, opts)
		return err
	}

	resp, ok := out.(*alert.EvaluateResponse)
	if !ok {
		return PrintOutput(out, opts)
	}

	if !resp.Success {
		PrintError(fmt.Errorf("evaluation failed: %s", resp.Message), opts)
		return fmt.Errorf("evaluation failed: %s", resp.Message)
	}

	if opts.Format == OutputTable {
		PrintSuccess(resp.Message, opts)
		if len(resp.Results) > 0 {
			return PrintOutput(resp.Results, opts)
		}
		return nil
	}

	return PrintOutput(resp, opts)
}

// pushRunMetrics ships the run's instrumentation to the configured
// Pushgateway. A failed push is logged, never fatal: the evaluation
// already happened and its alerts are persisted.
func pushRunMetrics(ctx context.Context, root *RootCommand) {
	url := root.Config().Metrics.PushgatewayURL
	if url == "" {
		return
	}
	if err := metrics.PushToGateway(ctx, url, root.Config().General.Hostname); err != nil {
		slog.Warn("push evaluation metrics", "error", err)
	}
}
