package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/exitcode"
	"github.com/felixgeelhaar/taskplan/internal/mission"
	"github.com/felixgeelhaar/taskplan/internal/planner"
	"github.com/felixgeelhaar/taskplan/internal/progress"
	"github.com/felixgeelhaar/taskplan/internal/trace"
	"github.com/felixgeelhaar/taskplan/internal/ux"
)

type planOptions struct {
	*rootOptions

	file          string
	format        string
	riskCeiling   float64
	accounting    string
	maxExpansions int
	timeout       time.Duration
	parallelism   int
	traceFile     string
	watch         bool
	progress      bool
}

func newPlanCmd(root *rootOptions) *cobra.Command {
	o := &planOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Select the cheapest feasible plan for a mission",
		Long: `Plan a mission: decompose its root task, keep only options that fit the
resource pool and stay under the risk ceiling, and print the cheapest plan.

Settings are applied in order: configuration, the mission's own overrides,
then flags given on the command line.`,
		Example: `  # Plan ./mission.yaml (or .taskplan/mission.yaml)
  taskplan plan

  # Plan with a tighter risk ceiling and JSON output
  taskplan plan -f mission.yaml --risk-ceiling 0.3 --format json

  # Record every search decision
  taskplan plan -f mission.yaml --trace-file trace.jsonl

  # Show live search progress
  taskplan plan -f mission.yaml --progress

  # Re-plan whenever the mission changes
  taskplan plan -f mission.yaml --watch`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = root.instrument("plan", o.run)

	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "mission file (default ./mission.yaml or .taskplan/mission.yaml)")
	f.StringVar(&o.format, "format", "text", "output format: text, json, yaml")
	f.Float64Var(&o.riskCeiling, "risk-ceiling", 0, "highest risk any accepted step may carry (0-1)")
	f.StringVar(&o.accounting, "accounting", "", "resource accounting: snapshot or cumulative")
	f.IntVar(&o.maxExpansions, "max-expansions", 0, "stop after this many search expansions (0 = unlimited)")
	f.DurationVar(&o.timeout, "timeout", 0, "stop searching after this long (0 = no limit)")
	f.IntVar(&o.parallelism, "parallelism", 0, "options evaluated concurrently per expansion")
	f.StringVar(&o.traceFile, "trace-file", "", "write search decisions as JSON lines to this file")
	f.BoolVarP(&o.watch, "watch", "w", false, "re-plan whenever the mission file changes")
	f.BoolVar(&o.progress, "progress", false, "show search progress on stderr")
	return cmd
}

func (o *planOptions) run(cmd *cobra.Command, _ []string) error {
	path, err := missionPath(o.file)
	if err != nil {
		return err
	}
	formatter, err := ux.NewFormatter(o.format, &ux.FormatterOptions{Writer: cmd.OutOrStdout(), NoColor: o.noColor})
	if err != nil {
		return exitcode.Usage(err)
	}

	if o.watch {
		return o.runWatch(cmd, path, formatter)
	}

	m, err := mission.Load(path)
	if err != nil {
		return err
	}
	report, err := o.planMission(cmd, m, nil)
	if err != nil {
		return err
	}
	return formatter.Format(report.PlanReport)
}

// runWatch plans on every change until the command's context is canceled.
// A failed load or plan is reported and the watch continues.
func (o *planOptions) runWatch(cmd *cobra.Command, path string, formatter ux.Formatter) error {
	ctx := cmd.Context()
	var shared *planner.Planner

	o.logger.Info("watching mission", "path", path)
	return mission.Watch(ctx, path, func(m *mission.Mission, err error) {
		if err == nil {
			var report planReport
			report, err = o.planMission(cmd, m, shared)
			if err == nil {
				shared = report.planner
				err = formatter.Format(report.PlanReport)
			}
		}
		if err != nil && ctx.Err() == nil {
			reportError(cmd.ErrOrStderr(), err, o.noColor)
		}
	})
}

// planReport pairs output with the planner that produced it so watch mode
// can reuse its result cache across reloads.
type planReport struct {
	*ux.PlanReport
	planner *planner.Planner
}

// planMission plans m, reusing p when its settings match
func (o *planOptions) planMission(cmd *cobra.Command, m *mission.Mission, p *planner.Planner) (planReport, error) {
	cfg, err := o.plannerConfig(cmd, m)
	if err != nil {
		return planReport{}, err
	}

	var recorders trace.Multi
	var jsonl *trace.JSONL
	if o.traceFile != "" {
		if jsonl, err = trace.CreateJSONL(o.traceFile); err != nil {
			return planReport{}, errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to create trace file", err)
		}
		defer jsonl.Close()
		recorders = append(recorders, jsonl)
	}
	if o.progress {
		ind := progress.NewIndicator(progress.Config{Writer: cmd.ErrOrStderr(), ShowSpinner: true})
		ind.Start()
		defer func() {
			ind.Stop()
			ind.PrintSummary()
		}()
		recorders = append(recorders, ind)
	}

	if p == nil || p.Config() != cfg || len(recorders) > 0 {
		opts := []planner.Option{planner.WithLogger(o.logger), planner.WithMetrics(o.metrics)}
		if len(recorders) > 0 {
			opts = append(opts, planner.WithRecorder(recorders))
		}
		if p, err = planner.New(cfg, opts...); err != nil {
			return planReport{}, err
		}
	}

	res, err := p.Plan(cmd.Context(), m.Tree, m.Root, m.Pool)
	if jsonl != nil {
		if terr := jsonl.Err(); terr != nil {
			o.logger.Warn("trace incomplete", "path", o.traceFile, "error", terr)
		}
	}
	if err != nil {
		return planReport{}, err
	}
	return planReport{
		PlanReport: &ux.PlanReport{
			Mission: m.Name,
			Result:  *res,
			Steps:   res.Leaves(m.Tree),
			Pool:    m.Pool,
		},
		planner: p,
	}, nil
}

// plannerConfig layers configuration, mission overrides and changed flags
func (o *planOptions) plannerConfig(cmd *cobra.Command, m *mission.Mission) (planner.Config, error) {
	base, err := o.cfg.PlannerConfig()
	if err != nil {
		return planner.Config{}, err
	}
	cfg, err := m.PlannerConfig(base)
	if err != nil {
		return planner.Config{}, err
	}

	f := cmd.Flags()
	if f.Changed("risk-ceiling") {
		cfg.RiskCeiling = o.riskCeiling
	}
	if f.Changed("accounting") {
		a, err := planner.ParseAccounting(o.accounting)
		if err != nil {
			return planner.Config{}, exitcode.Usage(err)
		}
		cfg.Accounting = a
	}
	if f.Changed("max-expansions") {
		cfg.MaxExpansions = o.maxExpansions
	}
	if f.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if f.Changed("parallelism") {
		cfg.Parallelism = o.parallelism
	}
	return cfg, cfg.Validate()
}

// missionPath resolves --file, falling back to the working directory
func missionPath(file string) (string, error) {
	if file != "" {
		return file, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	path, err := ux.MissionFile(cwd)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, "no mission file", err).
			WithSuggestion("Pass a mission with --file").
			WithSuggestion("Create mission.yaml in the current directory")
	}
	return path, nil
}
