package cmd

import (
	"context"
	"io"
	"time"

	"github.com/felixgeelhaar/taskplan/internal/log"
	"github.com/felixgeelhaar/taskplan/internal/telemetry"
	"github.com/felixgeelhaar/taskplan/internal/version"
)

// telemetryFlushTimeout bounds the final span export on exit
const telemetryFlushTimeout = 5 * time.Second

// setupLogging installs the default logger. Logs go to stderr so plan output
// on stdout stays machine readable.
func (o *rootOptions) setupLogging(w io.Writer) (func(), error) {
	logCfg, err := o.cfg.LogConfig(version.GetInfo().Version)
	if err != nil {
		return nil, err
	}
	logCfg.Output = w

	o.logger = log.New(logCfg)
	previous := log.SetDefaultLogger(o.logger)

	return func() { log.SetDefaultLogger(previous) }, nil
}

// setupTelemetry starts the tracer provider when enabled. A collector that
// cannot be reached only costs a warning.
func (o *rootOptions) setupTelemetry(ctx context.Context) func() {
	if !o.cfg.Telemetry.Enabled {
		return func() {}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	telemCfg := o.cfg.TelemetryConfig(version.GetInfo().Version)
	shutdown, err := telemetry.InitProvider(ctx, telemCfg)
	if err != nil {
		o.logger.Warn("failed to initialize telemetry", "error", err)
		return func() {}
	}

	o.logger.Debug("telemetry enabled",
		"endpoint", telemCfg.Endpoint,
		"sample_rate", telemCfg.SampleRate)

	return func() {
		if shutdown == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			o.logger.Warn("failed to flush telemetry", "error", err)
		}
	}
}
