package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func NewRuleCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Alert rule management commands",
		Long: `Manage alert rules.

Rules are threshold conditions over named metrics, evaluated by
'alertd evaluate'.`,
	}

	cmd.AddCommand(NewRuleListCommand(root))
	cmd.AddCommand(NewRuleCreateCommand(root))
	cmd.AddCommand(NewRuleEnableCommand(root))
	cmd.AddCommand(NewRuleDisableCommand(root))
	cmd.AddCommand(NewRuleDeleteCommand(root))

	return cmd
}

func NewRuleListCommand(root *RootCommand) *cobra.Command {
	var (
		teamID      string
		enabledOnly bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List alert rules",
		Example: `  # List all rules
  alertd rule list

  # List enabled rules for a team
  alertd rule list --team team-a --enabled`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuleList(cmd.Context(), root, teamID, enabledOnly)
		},
	}

	cmd.Flags().StringVarP(&teamID, "team", "t", "", "Filter by team")
	cmd.Flags().BoolVar(&enabledOnly, "enabled", false, "Only enabled rules")

	return cmd
}

func runRuleList(ctx context.Context, root *RootCommand, teamID string, enabledOnly bool) error {
	opts := root.OutputOptions()

	input := map[string]any{}
	if teamID != "" {
		input["team_id"] = teamID
	}
	if enabledOnly {
		input["enabled_only"] = true
	}

	out, err := root.execQuery(ctx, "alert.list_rules", input)
	if err != nil {
		PrintError(err, opts)
		return err
	}

	if m, ok := out.(map[string]any); ok {
		return PrintOutput(m["rules"], opts)
	}
	return PrintOutput(out, opts)
}

func NewRuleCreateCommand(root *RootCommand) *cobra.Command {
	var (
		source    string
		metric    string
		threshold float64
		operator  string
		severity  string
		teamID    string
		window    int
		cooldown  int
		unitLabel string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an alert rule",
		Example: `  # Alert when the hourly pipeline error rate exceeds 10%
  alertd rule create "High error rate" --source pipeline_events \
    --metric error_rate --threshold 10 --operator ">" --severity warning

  # Alert on disk pressure with a 30 minute cooldown
  alertd rule create "Disk almost full" --source system_health \
    --metric disk_used_pct --threshold 90 --operator ">=" \
    --severity critical --cooldown 30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := map[string]any{
				"name":             args[0],
				"metric_source":    source,
				"metric_name":      metric,
				"threshold":        threshold,
				"operator":         operator,
				"severity":         severity,
				"window_minutes":   window,
				"cooldown_minutes": cooldown,
			}
			if teamID != "" {
				input["team_id"] = teamID
			}
			if unitLabel != "" {
				input["unit"] = unitLabel
			}
			return runRuleCreate(cmd.Context(), root, input)
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Metric source (pipeline_events, performance, system_health)")
	cmd.Flags().StringVarP(&metric, "metric", "m", "", "Metric name (e.g. error_rate, disk_used_pct)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Threshold value")
	cmd.Flags().StringVar(&operator, "operator", ">", "Comparison operator (>, <, >=, <=, =, !=)")
	cmd.Flags().StringVar(&severity, "severity", "warning", "Severity (info, warning, critical)")
	cmd.Flags().StringVarP(&teamID, "team", "t", "", "Scope the rule to a team")
	cmd.Flags().IntVarP(&window, "window", "w", 60, "Lookback window in minutes")
	cmd.Flags().IntVar(&cooldown, "cooldown", 0, "Cooldown in minutes (0 = none)")
	cmd.Flags().StringVar(&unitLabel, "unit", "", "Display unit (e.g. %, ms)")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("metric")
	_ = cmd.MarkFlagRequired("threshold")

	return cmd
}

func runRuleCreate(ctx context.Context, root *RootCommand, input map[string]any) error {
	opts := root.OutputOptions()

	out, err := root.execCommand(ctx, "alert.create_rule", input)
	if err != nil {
		PrintError(err, opts)
		return err
	}

	if m, ok := out.(map[string]any); ok {
		PrintSuccess(fmt.Sprintf("Rule created: %v", m["rule_id"]), opts)
		return nil
	}
	return PrintOutput(out, opts)
}

func NewRuleEnableCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enable <rule-id>",
		Short: "Enable an alert rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuleSetEnabled(cmd.Context(), root, args[0], true)
		},
	}

	return cmd
}

func NewRuleDisableCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disable <rule-id>",
		Short: "Disable an alert rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuleSetEnabled(cmd.Context(), root, args[0], false)
		},
	}

	return cmd
}

func runRuleSetEnabled(ctx context.Context, root *RootCommand, ruleID string, enabled bool) error {
	opts := root.OutputOptions()

	_, err := root.execCommand(ctx, "alert.update_rule", map[string]any{
		"rule_id": ruleID,
		"enabled": enabled,
	})
	if err != nil {
		PrintError(err, opts)
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	PrintSuccess(fmt.Sprintf("Rule %s %s", ruleID, state), opts)
	return nil
}

func NewRuleDeleteCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <rule-id>",
		Aliases: []string{"rm"},
		Short:   "Delete an alert rule",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuleDelete(cmd.Context(), root, args[0])
		},
	}

	return cmd
}

func runRuleDelete(ctx context.Context, root *RootCommand, ruleID string) error {
	opts := root.OutputOptions()

	_, err := root.execCommand(ctx, "alert.delete_rule", map[string]any{
		"rule_id": ruleID,
	})
	if err != nil {
		PrintError(err, opts)
		return err
	}

	PrintSuccess(fmt.Sprintf("Rule %s deleted", ruleID), opts)
	return nil
}
