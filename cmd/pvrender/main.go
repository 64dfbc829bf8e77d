// Command pvrender renders phase-vocoder interpolation and cross-synthesis
// voices from a bank of PVOC-EX files into a float32 WAV file.
//
// Usage:
//
//	pvrender [-config render.yaml] [-metrics]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/cwbudde/algo-pvoc/internal/config"
	"github.com/cwbudde/algo-pvoc/internal/observe"
	"github.com/cwbudde/algo-pvoc/pvoc/pvocex"
	"github.com/cwbudde/algo-pvoc/pvoc/voice"
)

const version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "render.yaml", "path to the YAML render description")
	showMetrics := flag.Bool("metrics", false, "print collected metrics after rendering")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "pvrender: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "pvrender: %v\n", err)
		}
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel.Level()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reader := sdkmetric.NewManualReader()
	mp := observe.NewMeterProvider(reader, "pvrender", version)
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			slog.Warn("meter provider shutdown", "err", err)
		}
	}()

	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		slog.Error("failed to create metrics", "err", err)
		return 1
	}

	start := time.Now()

	bank, err := pvocex.LoadDir(ctx, cfg.Bank.Dir, pvocex.WithStartIndex(cfg.Bank.Start))
	if err != nil {
		slog.Error("failed to load bank", "dir", cfg.Bank.Dir, "err", err)
		return 1
	}
	slog.Info("bank loaded", "dir", cfg.Bank.Dir, "files", bank.Len())

	samples, stats, err := render(ctx, cfg, []voice.Option{
		voice.WithLogger(logger),
		voice.WithObserver(observe.NewObserver(ctx, metrics)),
		voice.WithLoader(bank),
	}, logger)
	if err != nil {
		slog.Error("render failed", "err", err)
		return 1
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		slog.Error("failed to create output", "path", cfg.Output, "err", err)
		return 1
	}

	if err := writeWAV(f, samples, int(cfg.SampleRate)); err != nil {
		_ = f.Close()
		slog.Error("failed to write output", "path", cfg.Output, "err", err)
		return 1
	}
	if err := f.Close(); err != nil {
		slog.Error("failed to close output", "path", cfg.Output, "err", err)
		return 1
	}

	elapsed := time.Since(start)
	metrics.RenderDuration.Record(ctx, elapsed.Seconds())

	slog.Info("render complete",
		"output", cfg.Output,
		"samples", stats.Samples,
		"blocks", stats.Blocks,
		"block_errors", stats.BlockErrors,
		"peak", stats.Peak,
		"elapsed", elapsed,
	)

	if *showMetrics {
		if err := printMetrics(ctx, reader); err != nil {
			slog.Error("failed to collect metrics", "err", err)
			return 1
		}
	}

	return 0
}

func printMetrics(ctx context.Context, reader *sdkmetric.ManualReader) error {
	points, err := observe.Collect(ctx, reader)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Metric\tAttributes\tValue\n"); err != nil {
		return err
	}
	for _, p := range points {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\n", p.Name, p.Attributes, p.Value); err != nil {
			return err
		}
	}
	return tw.Flush()
}
