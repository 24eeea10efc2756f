// SPDX-License-Identifier: MIT

// Package cli implements the sparselm command tree.
package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/sparselm/engine"
	"github.com/katalvlaran/sparselm/internal/config"
	"github.com/katalvlaran/sparselm/internal/logging"
	"github.com/katalvlaran/sparselm/metrics"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// Output formats.
const (
	OutputYAML  = "yaml"
	OutputTable = "table"
)

// rootOptions holds persistent flags. Non-empty values override the file.
type rootOptions struct {
	configPath  string
	logLevel    string
	logFormat   string
	dataPath    string
	target      string
	metricsFile string
	output      string
}

// runtime is built once per invocation by the root pre-run hook.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	output   string
}

func (rt *runtime) engine() *engine.Engine {
	return engine.New(
		engine.WithLogger(rt.logger.Named("engine")),
		engine.WithObserver(rt.metrics),
	)
}

// flush writes the metrics registry when configured.
func (rt *runtime) flush() error {
	if rt.cfg.Metrics.File == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(rt.cfg.Metrics.File, rt.registry); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	rt.logger.Debug("metrics written", zap.String("file", rt.cfg.Metrics.File))

	return nil
}

// NewRootCommand returns the sparselm command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rt := &runtime{}

	cmd := &cobra.Command{
		Use:   "sparselm",
		Short: "Structured-sparsity linear regression",
		Long: "sparselm fits grouped, hierarchical and mixed-integer sparse linear\n" +
			"models and selects their hyperparameters by cross-validation.",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(opts, rt)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format (console, json)")
	pf.StringVar(&opts.dataPath, "data", "", "CSV training table with a header row")
	pf.StringVar(&opts.target, "target", "", "response column (default: last column)")
	pf.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics here after the command")
	pf.StringVarP(&opts.output, "output", "o", OutputYAML, "output format (yaml, table)")

	cmd.AddCommand(newFitCommand(rt), newCVCommand(rt), newVersionCommand())

	return cmd
}

func setup(opts *rootOptions, rt *runtime) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	override(&cfg.Log.Level, opts.logLevel)
	override(&cfg.Log.Format, opts.logFormat)
	override(&cfg.Data.Path, opts.dataPath)
	override(&cfg.Data.Target, opts.target)
	override(&cfg.Metrics.File, opts.metricsFile)

	switch opts.output {
	case OutputYAML, OutputTable:
	default:
		return fmt.Errorf("cli: unknown output format %q", opts.output)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()

	rt.cfg = cfg
	rt.logger = logger
	rt.registry = reg
	rt.metrics = metrics.New(reg)
	rt.output = opts.output

	return nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// The root pre-run loads configuration; version must work without it.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "sparselm %s (commit: %s)\n", Version, GitCommit)

			return err
		},
	}
}
