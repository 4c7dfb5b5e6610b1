package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	gridsynth "github.com/cbegin/gridsynth-go"
	"github.com/cbegin/gridsynth-go/internal/config"
	"github.com/cbegin/gridsynth-go/internal/console"
	"github.com/cbegin/gridsynth-go/internal/midiin"
)

const keyHelp = `keys: 1-9 0 q-p set value 1-20 | f g h j focus melodic num/den, bass num/den | space pause | x quit`

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		sampleRate = flag.Int("sample-rate", 0, "output sample rate (overrides config)")
		voices     = flag.Int("voices", 0, "voice pool size (overrides config)")
		backend    = flag.String("backend", "", "audio backend: ebiten|oto|none (overrides config)")
		midiDevice = flag.String("midi", "", "MIDI input name prefix (overrides config)")
		listMIDI   = flag.Bool("list-midi", false, "list MIDI inputs and exit")
		volume     = flag.Float64("volume", -1, "master volume scalar (overrides config)")
		limiter    = flag.Bool("limiter", false, "enable the output limiter")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logger := initLogger(*verbose)

	if *listMIDI {
		if err := listInputs(); err != nil {
			fatal(logger, "list midi", err)
		}
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fatal(logger, "load config", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sample-rate":
			cfg.SampleRate = *sampleRate
		case "voices":
			cfg.Voices = *voices
		case "backend":
			cfg.Backend = *backend
		case "midi":
			cfg.MIDI.Device = *midiDevice
		case "volume":
			cfg.Volume = *volume
		case "limiter":
			cfg.Limiter = *limiter
		}
	})
	if err := cfg.Validate(); err != nil {
		fatal(logger, "config", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		fatal(logger, "config", err)
	}
	opts = append(opts, gridsynth.WithLogger(logger))

	s, err := gridsynth.New(cfg.SampleRate, opts...)
	if err != nil {
		fatal(logger, "create synth", err)
	}
	if err := s.Start(); err != nil {
		fatal(logger, "start audio", err)
	}
	defer s.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	closeMIDI := openMIDI(cfg.MIDI.Device, s, logger)
	defer closeMIDI()

	paused := false
	keys, err := console.Start(func(r rune) {
		if r != ' ' {
			s.HandleKey(r)
			return
		}
		paused = !paused
		if !paused {
			if err := s.Start(); err != nil {
				logger.Warn("resume audio", "err", err)
			}
			return
		}
		s.Pause()
		s.AllNotesOff()
	})
	switch {
	case errors.Is(err, console.ErrNotTerminal):
		logger.Info("stdin is not a terminal; tuning keys disabled")
	case err != nil:
		logger.Warn("console unavailable", "err", err)
	default:
		defer keys.Stop()
		fmt.Fprintln(os.Stderr, keyHelp)
	}
	var quit <-chan struct{}
	if keys != nil {
		quit = keys.Done()
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("interrupted")
			return
		case <-quit:
			logger.Info("quit")
			return
		case <-ticker.C:
			st := s.Stats()
			logger.Debug("status",
				"active", st.ActiveVoices,
				"dropped", st.NotesDropped,
				"lost", st.EventsLost,
				"level", s.Level(),
				"focus", s.Editor().Focus().String(),
			)
		}
	}
}

// initLogger configures slog and routes the stdlib log package through it.
func initLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}

// openMIDI connects the first matching input. Without MIDI the synth still
// runs so the tuning keys can be used.
func openMIDI(device string, s *gridsynth.Synth, logger *slog.Logger) func() {
	drv, err := midiin.NewDriver()
	if err != nil {
		logger.Warn("midi unavailable", "err", err)
		return func() {}
	}
	in, err := drv.Open(device, func(on bool, note int, velocity float64) {
		s.HandleNote(on, note, velocity)
	}, func() {
		logger.Warn("midi input lost; releasing notes")
		s.AllNotesOff()
	}, logger)
	if err != nil {
		logger.Warn("midi input not opened", "err", err)
		_ = drv.Close()
		return func() {}
	}
	return func() {
		_ = in.Close()
		_ = drv.Close()
	}
}

func listInputs() error {
	drv, err := midiin.NewDriver()
	if err != nil {
		return err
	}
	defer drv.Close()
	names, err := drv.Names()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no MIDI inputs")
	}
	for i, n := range names {
		fmt.Printf("%d: %s\n", i, n)
	}
	return nil
}
