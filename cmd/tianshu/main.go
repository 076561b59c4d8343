package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dinobot22/mineru-tianshu/internal/config"
	"github.com/dinobot22/mineru-tianshu/internal/metrics"
	"github.com/dinobot22/mineru-tianshu/internal/normalize"
	"github.com/dinobot22/mineru-tianshu/internal/objectstore"
	"github.com/dinobot22/mineru-tianshu/internal/watch"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"tianshu.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Normalize struct {
		Dir     string `arg:"" help:"Engine output directory to normalize"`
		NoStore bool   `help:"Skip asset externalization even when a store is configured"`
		JSON    bool   `help:"Print the pass result as JSON"`
	} `cmd:"" help:"Normalize one engine output directory into the canonical layout"`

	Watch struct {
		Root string `short:"r" help:"Drop root to monitor (overrides watch.root)"`
	} `cmd:"" help:"Watch a drop directory and normalize jobs as they finish"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "normalize <dir>":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runNormalize(cfg, CLI.Normalize.Dir, CLI.Normalize.NoStore, CLI.Normalize.JSON); err != nil {
			slog.Error("Normalization failed", "error", err)
			os.Exit(1)
		}
	case "watch":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runWatch(cfg, CLI.Watch.Root); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration written", "path", CLI.Config)
	}
}

func buildPipeline(cfg *config.Config, noStore bool, recorder metrics.Recorder) (*normalize.Pipeline, error) {
	opts := []normalize.PipelineOption{normalize.WithRecorder(recorder)}
	if cfg.Store.Enabled && !noStore {
		client, err := objectstore.New(cfg.Store, objectstore.WithRecorder(recorder))
		if err != nil {
			return nil, err
		}
		opts = append(opts, normalize.WithClient(client))
	} else {
		slog.Info("Object store disabled, assets stay local")
	}
	return normalize.NewPipeline(opts...), nil
}

func runNormalize(cfg *config.Config, dir string, noStore, asJSON bool) error {
	pipeline, err := buildPipeline(cfg, noStore, metrics.NoopRecorder{})
	if err != nil {
		return err
	}

	res, err := pipeline.Normalize(context.Background(), dir)
	if err != nil {
		return err
	}

	if dangling, err := normalize.VerifyReferenceIntegrity(dir); err == nil && len(dangling) > 0 {
		slog.Warn("Document references assets that are missing locally", "dangling", dangling)
	}

	if asJSON {
		encoded, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
	}
	return nil
}

func runWatch(cfg *config.Config, rootOverride string) error {
	root := cfg.Watch.Root
	if rootOverride != "" {
		root = rootOverride
	}
	if root == "" {
		return fmt.Errorf("no watch root configured (set watch.root or pass --root)")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var metricsServer *http.Server
	if cfg.Watch.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler(registry))
		metricsServer = &http.Server{Addr: cfg.Watch.MetricsAddr, Handler: mux}
		go func() {
			slog.Info("Serving metrics", "addr", cfg.Watch.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	pipeline, err := buildPipeline(cfg, false, recorder)
	if err != nil {
		return err
	}

	watcher, err := watch.New(root, pipeline, cfg.Watch.DebounceDuration())
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}

	slog.Info("Watching for jobs, waiting for shutdown signal...")
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping watcher...")
	watcher.Stop()

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Metrics server shutdown failed", "error", err)
		}
	}
	return nil
}
