package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskplan/internal/health"
	"github.com/felixgeelhaar/taskplan/internal/metrics"
	"github.com/felixgeelhaar/taskplan/internal/planner"
	"github.com/felixgeelhaar/taskplan/internal/server"
	"github.com/felixgeelhaar/taskplan/internal/version"
)

// shutdownGrace is added to the server's own drain timeout so Shutdown can
// report its result before the command gives up.
const shutdownGrace = 5 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr            string
		readTimeout     time.Duration
		writeTimeout    time.Duration
		shutdownTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner over HTTP",
		Long: `Start the plan server.

Endpoints:
  POST /v1/plan         plan a mission document (JSON or YAML)
  GET  /v1/plan/stream  websocket: send a mission, receive search events and the result
  GET  /metrics         Prometheus metrics
  GET  /health/live     liveness probe
  GET  /health/ready    readiness probe (includes a planner canary)
  GET  /health/startup  startup probe

SIGINT or SIGTERM fails readiness and drains in-flight plans before exiting.`,
		Example: `  taskplan serve
  taskplan serve --addr 127.0.0.1:9090 --shutdown-timeout 60s`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = root.instrument("serve", func(cmd *cobra.Command, _ []string) error {
		cfg := root.cfg.Server
		f := cmd.Flags()
		if f.Changed("addr") {
			cfg.Addr = addr
		}
		if f.Changed("read-timeout") {
			cfg.ReadTimeout = readTimeout
		}
		if f.Changed("write-timeout") {
			cfg.WriteTimeout = writeTimeout
		}
		if f.Changed("shutdown-timeout") {
			cfg.ShutdownTimeout = shutdownTimeout
		}

		plannerCfg, err := root.cfg.PlannerConfig()
		if err != nil {
			return err
		}
		reg, m := metrics.NewRegistry()
		p, err := planner.New(plannerCfg, planner.WithLogger(root.logger), planner.WithMetrics(m))
		if err != nil {
			return err
		}

		info := version.GetInfo()
		srv := server.NewServer(p, health.NewProbeManager(info.Version), server.Config{
			Address:         cfg.Addr,
			ShutdownTimeout: cfg.ShutdownTimeout,
			ReadTimeout:     cfg.ReadTimeout,
			WriteTimeout:    cfg.WriteTimeout,
			MaxBodyBytes:    cfg.MaxBodyBytes,
		}, server.WithLogger(root.logger), server.WithMetrics(m, reg))

		l, err := net.Listen("tcp", cfg.Addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
		}
		return serveUntilDone(cmd, srv, l, cfg.ShutdownTimeout)
	})

	f := cmd.Flags()
	f.StringVar(&addr, "addr", ":8080", "address to listen on")
	f.DurationVar(&readTimeout, "read-timeout", 10*time.Second, "maximum duration for reading a request")
	f.DurationVar(&writeTimeout, "write-timeout", 60*time.Second, "maximum duration for writing a response")
	f.DurationVar(&shutdownTimeout, "shutdown-timeout", 15*time.Second, "maximum time to drain connections on shutdown")
	return cmd
}

// serveUntilDone serves on l until the command's context is canceled, then
// shuts srv down gracefully.
func serveUntilDone(cmd *cobra.Command, srv *server.Server, l net.Listener, drain time.Duration) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "taskplan %s listening on http://%s\n", version.GetInfo().Short(), l.Addr())

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Serve(l)
	}()

	select {
	case err := <-serverErr:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		fmt.Fprintln(out, "shutting down, draining in-flight requests")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drain+shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		fmt.Fprintln(out, "server stopped")
		return nil
	}
}
