// Package cli implements the alertd command line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/noa10/mataresit-app-sub017/pkg/config"
	"github.com/noa10/mataresit-app-sub017/pkg/infra/eventbus"
	"github.com/noa10/mataresit-app-sub017/pkg/infra/logger"
	"github.com/noa10/mataresit-app-sub017/pkg/infra/metrics"
	"github.com/noa10/mataresit-app-sub017/pkg/infra/store"
	"github.com/noa10/mataresit-app-sub017/pkg/registry"
	"github.com/noa10/mataresit-app-sub017/pkg/unit"
	"github.com/noa10/mataresit-app-sub017/pkg/unit/alert"
)

var (
	cliVersion   = "dev"
	cliBuildDate = "unknown"
	cliGitCommit = "unknown"
)

// hostStatsInterval is how often the cached host collector refreshes.
const hostStatsInterval = 10 * time.Second

type RootCommand struct {
	cmd       *cobra.Command
	cfg       *config.Config
	registry  *unit.Registry
	bus       *eventbus.InMemoryEventBus
	collector *metrics.CachedCollector
	opts      *OutputOptions
	formatStr string
}

func NewRootCommand() *RootCommand {
	root := &RootCommand{
		opts: NewOutputOptions(),
	}

	cmd := &cobra.Command{
		Use:   "alertd",
		Short: "alertd - alert rule evaluation engine",
		Long: `alertd evaluates configured alert rules against pipeline, performance,
and system-health metrics and records fired alerts.

Rules are threshold conditions over named metrics. Each evaluation run
resolves every enabled rule's metric, applies the cooldown gate, and
triggers deduplicated alerts for rules whose condition holds.`,
		PersistentPreRunE:  root.persistentPreRunE,
		PersistentPostRunE: root.persistentPostRunE,
	}

	pflags := cmd.PersistentFlags()

	pflags.StringVarP(&root.formatStr, "output", "o", "table", "Output format (table, json, yaml)")
	pflags.BoolVarP(&root.opts.Quiet, "quiet", "q", false, "Suppress output")
	pflags.String("config", "", "Config file path (default: ~/.alertd/config.toml)")

	viper.BindPFlag("output", pflags.Lookup("output"))
	viper.BindPFlag("quiet", pflags.Lookup("quiet"))
	viper.BindPFlag("config", pflags.Lookup("config"))

	root.cmd = cmd

	root.addSubCommands()

	return root
}

func (r *RootCommand) persistentPreRunE(cmd *cobra.Command, args []string) error {
	r.opts.Format = OutputFormat(r.formatStr)

	cfgPath := viper.GetString("config")
	var err error
	r.cfg, err = config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(logger.Config{
		Level:  r.cfg.Logging.Level,
		Format: r.cfg.Logging.Format,
	})

	r.registry = unit.NewRegistry()

	if err := os.MkdirAll(filepath.Dir(r.cfg.Storage.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	var alertStore alert.Store
	var prober alert.Prober

	sqliteStore, err := store.NewAlertSQLiteStore(r.cfg.Storage.DBPath)
	if err != nil {
		slog.Warn("failed to open alert database, using memory store", "error", err)
		alertStore = alert.NewMemoryStore()
	} else {
		alertStore = sqliteStore
		prober = sqliteStore
	}

	var metricStore alert.MetricStore
	metricSQLite, err := store.NewMetricSQLiteStore(r.cfg.Storage.MetricsDBPath)
	if err != nil {
		slog.Warn("failed to open metrics database, using memory store", "error", err)
		metricStore = alert.NewMemoryMetricStore()
	} else {
		metricStore = metricSQLite
	}

	r.collector = metrics.NewCachedCollector(metrics.NewCollector(), hostStatsInterval)
	r.collector.Start(cmd.Context())

	r.bus = eventbus.NewInMemoryEventBus()
	if _, err := r.bus.Subscribe(logTriggeredAlert, eventbus.FilterByType(alert.EventTypeTriggered)); err != nil {
		return fmt.Errorf("subscribe alert events: %w", err)
	}

	if err := registry.RegisterAll(r.registry,
		registry.WithAlertStore(alertStore),
		registry.WithMetricStore(metricStore),
		registry.WithProber(prober),
		registry.WithCollector(metrics.NewHostStats(r.collector)),
		registry.WithEventPublisher(&eventbus.Publisher{Bus: r.bus}),
		registry.WithWorkers(r.cfg.Evaluation.Workers),
		registry.WithProbeTimeout(r.cfg.Evaluation.ProbeTimeoutD),
		registry.WithDefaultWindow(r.cfg.Evaluation.DefaultWindowMinutes),
	); err != nil {
		return fmt.Errorf("register units: %w", err)
	}

	return nil
}

func (r *RootCommand) persistentPostRunE(cmd *cobra.Command, args []string) error {
	if r.collector != nil {
		r.collector.Stop()
	}
	if r.bus != nil {
		return r.bus.Close()
	}
	return nil
}

// logTriggeredAlert surfaces fired alerts on the structured log as well as
// the command output.
func logTriggeredAlert(event unit.Event) error {
	payload, ok := event.Payload().(map[string]any)
	if !ok {
		return nil
	}
	slog.Warn("alert triggered",
		"alert_id", payload["id"],
		"rule_id", payload["rule_id"],
		"severity", payload["severity"],
		"metric_value", payload["metric_value"],
	)
	return nil
}

func (r *RootCommand) addSubCommands() {
	r.cmd.AddCommand(NewVersionCommand(r))
	r.cmd.AddCommand(NewEvaluateCommand(r))
	r.cmd.AddCommand(NewRuleCommand(r))
	r.cmd.AddCommand(NewAlertsCommand(r))
	r.cmd.AddCommand(NewRecordCommand(r))
}

func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

func (r *RootCommand) Registry() *unit.Registry {
	return r.registry
}

func (r *RootCommand) Config() *config.Config {
	return r.cfg
}

func (r *RootCommand) OutputOptions() *OutputOptions {
	return r.opts
}

func (r *RootCommand) SetOutputWriter(w interface{ Write([]byte) (int, error) }) {
	r.opts.Writer = w
}

// execCommand runs a registered command unit by name.
func (r *RootCommand) execCommand(ctx context.Context, name string, input map[string]any) (any, error) {
	cmd := r.registry.GetCommand(name)
	if cmd == nil {
		return nil, fmt.Errorf("command %s not registered", name)
	}
	return cmd.Execute(ctx, input)
}

// execQuery runs a registered query unit by name.
func (r *RootCommand) execQuery(ctx context.Context, name string, input map[string]any) (any, error) {
	q := r.registry.GetQuery(name)
	if q == nil {
		return nil, fmt.Errorf("query %s not registered", name)
	}
	return q.Execute(ctx, input)
}

func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

func Execute() {
	root := NewRootCommand()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func SetVersion(version, buildDate, gitCommit string) {
	cliVersion = version
	cliBuildDate = buildDate
	cliGitCommit = gitCommit
}

func GetVersion() string {
	return cliVersion
}

func GetBuildDate() string {
	return cliBuildDate
}

func GetGitCommit() string {
	return cliGitCommit
}
