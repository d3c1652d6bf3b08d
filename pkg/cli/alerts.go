package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func NewAlertsCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Alert lifecycle commands",
		Long: `Inspect and manage triggered alerts.

Active alerts stay open until acknowledged or resolved; the history
subcommand queries the full alert log.`,
	}

	cmd.AddCommand(NewAlertsActiveCommand(root))
	cmd.AddCommand(NewAlertsHistoryCommand(root))
	cmd.AddCommand(NewAlertsAckCommand(root))
	cmd.AddCommand(NewAlertsResolveCommand(root))

	return cmd
}

func NewAlertsActiveCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "active",
		Short: "List active alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlertsActive(cmd.Context(), root)
		},
	}

	return cmd
}

func runAlertsActive(ctx context.Context, root *RootCommand) error {
	opts := root.OutputOptions()

	out, err := root.execQuery(ctx, "alert.active", map[string]any{})
	if err != nil {
		PrintError(err, opts)
		return err
	}

	if m, ok := out.(map[string]any); ok {
		return PrintOutput(m["alerts"], opts)
	}
	return PrintOutput(out, opts)
}

func NewAlertsHistoryCommand(root *RootCommand) *cobra.Command {
	var (
		ruleID   string
		status   string
		severity string
		limit    int
		offset   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query alert history",
		Example: `  # Last 20 alerts
  alertd alerts history --limit 20

  # Resolved critical alerts for one rule
  alertd alerts history --rule rule-123 --status resolved --severity critical`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := map[string]any{}
			if ruleID != "" {
				input["rule_id"] = ruleID
			}
			if status != "" {
				input["status"] = status
			}
			if severity != "" {
				input["severity"] = severity
			}
			if limit > 0 {
				input["limit"] = limit
			}
			if offset > 0 {
				input["offset"] = offset
			}
			return runAlertsHistory(cmd.Context(), root, input)
		},
	}

	cmd.Flags().StringVarP(&ruleID, "rule", "r", "", "Filter by rule ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (active, acknowledged, resolved)")
	cmd.Flags().StringVar(&severity, "severity", "", "Filter by severity (info, warning, critical)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum alerts to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Pagination offset")

	return cmd
}

func runAlertsHistory(ctx context.Context, root *RootCommand, input map[string]any) error {
	opts := root.OutputOptions()

	out, err := root.execQuery(ctx, "alert.history", input)
	if err != nil {
		PrintError(err, opts)
		return err
	}

	m, ok := out.(map[string]any)
	if !ok {
		return PrintOutput(out, opts)
	}
	if err := PrintOutput(m["alerts"], opts); err != nil {
		return err
	}
	if opts.Format == OutputTable {
		fmt.Fprintf(opts.Writer, "\nTotal: %v\n", m["total"])
	}
	return nil
}

func NewAlertsAckCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ack <alert-id>",
		Aliases: []string{"acknowledge"},
		Short:   "Acknowledge an alert",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlertsAck(cmd.Context(), root, args[0])
		},
	}

	return cmd
}

func runAlertsAck(ctx context.Context, root *RootCommand, alertID string) error {
	opts := root.OutputOptions()

	_, err := root.execCommand(ctx, "alert.acknowledge", map[string]any{
		"alert_id": alertID,
	})
	if err != nil {
		PrintError(err, opts)
		return err
	}

	PrintSuccess(fmt.Sprintf("Alert %s acknowledged", alertID), opts)
	return nil
}

func NewAlertsResolveCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <alert-id>",
		Short: "Resolve an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlertsResolve(cmd.Context(), root, args[0])
		},
	}

	return cmd
}

func runAlertsResolve(ctx context.Context, root *RootCommand, alertID string) error {
	opts := root.OutputOptions()

	_, err := root.execCommand(ctx, "alert.resolve", map[string]any{
		"alert_id": alertID,
	})
	if err != nil {
		PrintError(err, opts)
		return err
	}

	PrintSuccess(fmt.Sprintf("Alert %s resolved", alertID), opts)
	return nil
}
