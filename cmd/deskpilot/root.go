package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/deskpilot-ai/deskpilot/internal/config"
	"github.com/deskpilot-ai/deskpilot/internal/events"
	"github.com/deskpilot-ai/deskpilot/internal/guardrail"
	"github.com/deskpilot-ai/deskpilot/internal/guardrail/builtin"
	"github.com/deskpilot-ai/deskpilot/internal/plan"
	"github.com/deskpilot-ai/deskpilot/internal/planner"
	"github.com/deskpilot-ai/deskpilot/internal/retry"
	"github.com/deskpilot-ai/deskpilot/internal/session"
	"github.com/deskpilot-ai/deskpilot/internal/skill"
)

var (
	configFile string
	rulesFile  string
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "deskpilot",
	Short: "DeskPilot - desktop automation planning and guardrails",
	Long: `DeskPilot turns recognized user intents into validated, policy-checked
action plans and executes approved plans through the skill subsystem.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig loads configuration and wires the default logger before any
// command runs
func loadConfig(cmd *cobra.Command, args []string) error {
	loader := config.NewConfigLoader(config.NewValidator())

	loaded, err := loader.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	return nil
}

// pipeline bundles the wired planning and execution components for the CLI
// commands.
type pipeline struct {
	skills   skill.Executor
	engine   *guardrail.Engine
	manager  *planner.Manager
	registry *session.Registry
	runner   *session.Runner
	bus      *events.DefaultBus
}

// buildPipeline wires the full stack from the loaded configuration.
func buildPipeline() (*pipeline, error) {
	logger := slog.Default()
	tracer := otel.Tracer("deskpilot")

	bus := events.NewBus(
		events.WithErrorHandler(func(err error, ctx map[string]any) {
			logger.Warn("event bus error", "error", err, "context", ctx)
		}),
	)

	rules := builtin.DefaultRules(cfg.Security, cfg.Planner.RateLimitPerMinute)
	if rulesFile != "" {
		loaded, err := builtin.LoadRuleConfigs(rulesFile, cfg.Security)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}

	catalog := skill.NewCatalog()
	engine := guardrail.NewEngine(rules,
		guardrail.WithEngineLogger(logger),
		guardrail.WithEngineTracer(tracer),
	)
	generator := plan.NewGenerator(catalog, cfg.Security,
		plan.WithGeneratorLogger(logger),
		plan.WithGeneratorTracer(tracer),
	)
	manager := planner.NewManager(generator, engine,
		planner.WithManagerBus(bus),
		planner.WithManagerLogger(logger),
		planner.WithManagerTracer(tracer),
	)
	registry := session.NewRegistry(
		session.WithCleanupDelay(cfg.Planner.SessionCleanupDelay),
		session.WithRegistryBus(bus),
		session.WithRegistryLogger(logger),
	)
	runner := session.NewRunner(catalog, registry,
		session.WithRunnerBus(bus),
		session.WithRunnerLogger(logger),
		session.WithRunnerTracer(tracer),
		session.WithRunnerRetry(retry.DefaultConfig()),
	)

	return &pipeline{
		skills:   catalog,
		engine:   engine,
		manager:  manager,
		registry: registry,
		runner:   runner,
		bus:      bus,
	}, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules-config", "", "Path to guardrail rule configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}
