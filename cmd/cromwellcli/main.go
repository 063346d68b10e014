/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/friendsincode/cromwell_cli/internal/config"
	"github.com/friendsincode/cromwell_cli/internal/logging"
	"github.com/friendsincode/cromwell_cli/internal/telemetry"
	"github.com/friendsincode/cromwell_cli/internal/version"
)

// app carries per-process state into each subcommand.
type app struct {
	configPath string
	verbosity  int
	profile    string

	cfg    *config.Config
	logger zerolog.Logger
	tracer *telemetry.TracerProvider
	out    io.Writer
}

// spanExporter replaces the OTLP exporter when set.
var spanExporter sdktrace.SpanExporter

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cromwellcli",
		Short:         "Submit workflows to a Cromwell server",
		Long:          "cromwellcli submits WDL workflows to a Cromwell server, either one at a time or once per indexed BAM file found under an S3 prefix.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "Verbosity (cumulative)")
	rootCmd.PersistentFlags().StringVarP(&a.profile, "profile", "p", config.DefaultProfile, "AWS CLI Profile")
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Optional YAML config file")

	rootCmd.AddCommand(
		newRunBucketCmd(a),
		newRunCmd(a),
		newQueryCmd(a),
	)
	return rootCmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// run executes args and flushes telemetry whether or not the command failed.
func run(ctx context.Context, out io.Writer, args []string) error {
	a := &app{out: out}
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	a.teardown(ctx)
	return err
}

// setup loads configuration, applies global flags and starts logging and tracing.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("profile") {
		cfg.Profile = a.profile
	}
	if a.verbosity > cfg.Verbosity {
		cfg.Verbosity = a.verbosity
	}
	a.cfg = cfg

	a.logger = logging.Setup(cfg.Verbosity)
	logging.Announce(a.logger, cfg.Profile)

	a.tracer, err = telemetry.InitTracer(cmd.Context(), telemetry.TracerConfig{
		ServiceName:    "cromwellcli",
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
		Exporter:       spanExporter,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	return nil
}

func (a *app) teardown(ctx context.Context) {
	if err := a.tracer.Shutdown(context.WithoutCancel(ctx)); err != nil {
		a.logger.Error().Err(err).Msg("failed to shutdown tracer provider")
	}
}
