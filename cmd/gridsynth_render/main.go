package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	cli "github.com/urfave/cli/v2"

	gridsynth "github.com/cbegin/gridsynth-go"
	"github.com/cbegin/gridsynth-go/internal/config"
)

type ArgumentError string

func (err ArgumentError) Error() string {
	return string(err)
}

func run(ctx context.Context) error {
	app := &cli.App{
		Name:      "gridsynth_render",
		Usage:     "render a YAML score to a float32 WAV file",
		ArgsUsage: "SCORE",
		Action:    renderCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output WAV path",
				Value:   "out.wav",
			},
			&cli.IntFlag{
				Name:    "sample-rate",
				Aliases: []string{"r"},
				Usage:   "output sample rate",
				Value:   48000,
			},
			&cli.IntFlag{
				Name:  "voices",
				Usage: "voice pool size",
				Value: 4,
			},
			&cli.Float64Flag{
				Name:  "volume",
				Usage: "master volume scalar",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "limiter",
				Usage: "enable the output limiter",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "debug logging",
			},
		},
		OnUsageError: HandleUsageError,
		ExitErrHandler: func(ctx *cli.Context, err error) {
			cli.HandleExitCoder(HandleError(ctx, err))
		},
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	return app.RunContext(ctx, os.Args)
}

func renderCommand(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return ArgumentError("expected exactly one SCORE argument")
	}
	level := slog.LevelInfo
	if ctx.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	score, err := config.LoadScore(ctx.Args().First())
	if err != nil {
		return err
	}
	sampleRate := ctx.Int("sample-rate")
	opts := []gridsynth.Option{
		gridsynth.WithVoices(ctx.Int("voices")),
		gridsynth.WithLimiter(ctx.Bool("limiter")),
		gridsynth.WithMasterVolume(ctx.Float64("volume")),
		gridsynth.WithLogger(logger),
	}
	if score.Tuning != nil {
		t, err := score.Tuning.ToTuning()
		if err != nil {
			return fmt.Errorf("score tuning: %w", err)
		}
		opts = append(opts, gridsynth.WithTuning(t))
	}
	samples, err := gridsynth.Render(score.Events(sampleRate), sampleRate, score.Seconds, opts...)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	out := ctx.String("out")
	if err := os.WriteFile(out, gridsynth.EncodeWAVFloat32LE(samples, sampleRate, 2), 0o644); err != nil {
		return err
	}
	logger.Info("rendered", "out", out, "seconds", score.Seconds, "events", len(score.Notes))
	return nil
}

func HandleUsageError(ctx *cli.Context, err error, isSubcommand bool) error {
	return cli.Exit(err, 2)
}

func HandleError(ctx *cli.Context, err error) error {
	if err == nil {
		return nil
	}

	var argErr ArgumentError
	if errors.As(err, &argErr) {
		return cli.Exit(argErr, 2)
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		return exitCoder
	}

	return cli.Exit(err, 1)
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
