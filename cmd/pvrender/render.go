package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-pvoc/internal/config"
	"github.com/cwbudde/algo-pvoc/pvoc/voice"
)

// renderStats summarizes a render.
type renderStats struct {
	Blocks      int
	Samples     int
	BlockErrors int
	Peak        float64
}

// controller feeds one dependent voice its controls for each block.
type controller func(t float64)

// render builds an engine from cfg, runs it for cfg.Duration and returns the
// mixed mono output. Block errors are logged once per voice and counted;
// the output of a failed block is silence.
func render(ctx context.Context, cfg *config.Config, opts []voice.Option, logger *slog.Logger) ([]float32, renderStats, error) {
	var stats renderStats

	e, err := voice.NewEngine(append(cfg.EngineOptions(), opts...)...)
	if err != nil {
		return nil, stats, err
	}

	readerName := cfg.Reader.Name
	if readerName == "" {
		readerName = "reader"
	}

	h, rd, err := e.AddReader(readerName, cfg.Reader.File)
	if err != nil {
		return nil, stats, err
	}

	controllers := make([]controller, 0, len(cfg.Voices))
	gains := make([]float64, 0, len(cfg.Voices))

	for _, vc := range cfg.Voices {
		switch vc.Kind {
		case config.KindInterp:
			v, err := e.AddInterp(vc.Name, vc.File, h)
			if err != nil {
				return nil, stats, err
			}
			controllers = append(controllers, func(t float64) { v.SetControls(vc.InterpControls(t)) })
		case config.KindCross:
			v, err := e.AddCross(vc.Name, vc.File, h, vc.Warp)
			if err != nil {
				return nil, stats, err
			}
			controllers = append(controllers, func(t float64) { v.SetControls(vc.CrossControls(t)) })
		default:
			return nil, stats, fmt.Errorf("voice %s: unknown kind %q", vc.Name, vc.Kind)
		}
		gains = append(gains, config.Or(vc.Gain, 1))
	}

	block := cfg.BlockSize
	blocks := int(math.Ceil(cfg.Duration * cfg.SampleRate / float64(block)))

	outs := make([][]float64, len(controllers))
	for i := range outs {
		outs[i] = make([]float64, block)
	}

	mix := make([]float32, blocks*block)
	reported := map[string]bool{}

	for b := range blocks {
		if b%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		t := float64(b*block) / cfg.SampleRate

		rd.SetControls(voice.ReadControls{Time: cfg.Reader.Time(t)})
		for _, c := range controllers {
			c(t)
		}

		if err := e.Process(outs); err != nil {
			var be *voice.BlockError
			if !errors.As(err, &be) {
				return nil, stats, err
			}

			stats.BlockErrors++

			if !reported[be.Voice] {
				reported[be.Voice] = true
				logger.Warn("block failed; rendering silence", "voice", be.Voice, "block", be.Block, "err", be.Err)
			}
		}

		dst := mix[b*block : (b+1)*block]
		for i, out := range outs {
			g := gains[i]
			for j, v := range out {
				dst[j] += float32(g * v)
			}
		}
	}

	for _, s := range mix {
		stats.Peak = math.Max(stats.Peak, math.Abs(float64(s)))
	}

	stats.Blocks = blocks
	stats.Samples = len(mix)

	return mix, stats, nil
}
