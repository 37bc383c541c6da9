// Package cmd implements the taskplan command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskplan/internal/config"
	"github.com/felixgeelhaar/taskplan/internal/exitcode"
	"github.com/felixgeelhaar/taskplan/internal/log"
	"github.com/felixgeelhaar/taskplan/internal/metrics"
	"github.com/felixgeelhaar/taskplan/internal/telemetry"
	"github.com/felixgeelhaar/taskplan/internal/ux"
)

// rootOptions carries persistent flags and the state PersistentPreRunE builds
// for subcommands.
type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string
	noColor    bool

	cfg     *config.Config
	logger  *log.Logger
	metrics *metrics.Metrics
	cleanup func()
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskplan",
		Short: "Hierarchical task planner with resource and risk limits",
		Long: `taskplan decomposes a mission into AND/OR task trees and selects the
cheapest plan that fits the resource pool without exceeding the risk ceiling.

Missions are YAML or JSON documents naming a root task, a resource pool and
the task tree. Settings come from --config, .taskplan/config.yaml,
~/.taskplan/config.yaml and TASKPLAN_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default .taskplan/config.yaml or ~/.taskplan/config.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text, json")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exitcode.Usage(err)
	})

	cmd.AddCommand(
		newPlanCmd(opts),
		newValidateCmd(opts),
		newGraphCmd(opts),
		newExplainCmd(opts),
		newConfigCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// ExecuteContext runs the command line and reports any error on stderr
func ExecuteContext(ctx context.Context) error {
	opts := &rootOptions{}
	root := newRootCmd(opts)
	defer opts.teardown()

	err := root.ExecuteContext(ctx)
	if err != nil {
		reportError(root.ErrOrStderr(), err, opts.noColor)
	}
	return err
}

// setup loads configuration and wires logging and tracing
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	o.cfg = cfg

	logCleanup, err := o.setupLogging(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	telemetryCleanup := o.setupTelemetry(cmd.Context())
	o.metrics = metrics.Default()

	o.cleanup = func() {
		telemetryCleanup()
		logCleanup()
	}
	return nil
}

func (o *rootOptions) teardown() {
	if o.cleanup != nil {
		o.cleanup()
		o.cleanup = nil
	}
}

// instrument wraps a RunE with a command span and command metrics
func (o *rootOptions) instrument(name string, run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		ctx, span := telemetry.StartCommandSpan(cmd.Context(), name)
		defer span.End()
		cmd.SetContext(ctx)

		err := run(cmd, args)

		if o.metrics != nil {
			o.metrics.CommandExecutions.WithLabelValues(name, fmt.Sprint(err == nil)).Inc()
			o.metrics.CommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		}
		if err != nil {
			telemetry.RecordError(span, err)
			return err
		}
		telemetry.RecordSuccess(span)
		return nil
	}
}

func reportError(w io.Writer, err error, noColor bool) {
	f, ferr := ux.NewFormatter("text", &ux.FormatterOptions{Writer: w, NoColor: noColor})
	if ferr == nil && f.Format(ux.NewErrorReport(err)) == nil {
		if exitcode.DetermineExitCode(err) == exitcode.UsageError {
			fmt.Fprintln(w, "Run 'taskplan --help' for usage.")
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
