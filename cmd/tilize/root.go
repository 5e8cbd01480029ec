package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/wbrown/tilize"
	"github.com/wbrown/tilize/config"
)

// app holds state shared by all subcommands.
type app struct {
	configPath  string
	verbosity   int
	threads     int
	metricsAddr string

	registry *prometheus.Registry
	metrics  *tilize.Metrics
	server   *http.Server

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "tilize [flags] <input> <output>",
		Short: "Recreate an image as a mosaic of two-tone patterns",
		Long: `Recreate an image as a mosaic of two-tone patterns.

The input image is split into tiles of the configured size. Every tile is
replaced by the pattern and palette color pair that reproduces it with the
smallest summed RGB difference. The search is exhaustive.

The output format follows the output extension: png, jpg, gif, bmp, tif,
or ans for 24-bit ANSI half-block text.

Examples:
  tilize photo.png mosaic.png
  tilize -c blocks.yaml -t 8 photo.jpg mosaic.bmp
  tilize --preview=none photo.png mosaic.png`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stdout = cmd.OutOrStdout()
			a.stderr = cmd.ErrOrStderr()
			a.setupLogging()
			return a.setupMetrics()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.shutdownMetrics()
		},
	}

	run := newRunOptions()
	run.addFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return a.runOne(cmd.Context(), run, args[0], args[1])
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "tilize.json",
		"Configuration file (JSON, or YAML for .yaml/.yml)")
	pf.CountVarP(&a.verbosity, "verbose", "v",
		"Increase log verbosity (-v info, -vv debug)")
	pf.IntVarP(&a.threads, "threads", "t", config.DefaultThreads(),
		"Number of worker threads")
	pf.StringVar(&a.metricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address (e.g. :9090)")

	cmd.AddCommand(
		newBatchCmd(a),
		newWatchCmd(a),
		newPatternsCmd(a),
		newConfigCmd(a),
	)
	return cmd
}

func (a *app) setupLogging() {
	level := slog.LevelWarn
	switch {
	case a.verbosity >= 2:
		level = slog.LevelDebug
	case a.verbosity == 1:
		level = slog.LevelInfo
	}
	tilize.SetLogger(slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})))
}

func (a *app) setupMetrics() error {
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = tilize.NewMetrics(a.registry)
	if a.metricsAddr == "" {
		return nil
	}

	ln, err := net.Listen("tcp", a.metricsAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.metricsAddr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	a.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			tilize.Logger().Warn("metrics server stopped", "error", err)
		}
	}()
	tilize.Logger().Info("serving metrics", "addr", ln.Addr().String())
	return nil
}

func (a *app) shutdownMetrics() {
	if a.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = a.server.Shutdown(ctx)
}

// loadConfig reads the configuration named by --config.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	tilize.Logger().Debug("configuration loaded", "path", a.configPath,
		"tile_width", cfg.TileWidth, "tile_height", cfg.TileHeight, "colors", len(cfg.Colors))
	return cfg, nil
}

// newEngine loads the pattern library and palette named by cfg.
func (a *app) newEngine(cfg *config.Config, opts ...tilize.EngineOption) (*tilize.Engine, error) {
	patterns, err := cfg.PatternLibrary()
	if err != nil {
		return nil, err
	}
	palette, err := cfg.Palette()
	if err != nil {
		return nil, err
	}
	base := []tilize.EngineOption{
		tilize.WithWorkers(a.threads),
		tilize.WithMetrics(a.metrics),
	}
	return tilize.NewEngine(patterns, palette, append(base, opts...)...)
}
