package gridsynth

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	intsynth "github.com/cbegin/gridsynth-go/internal/synth"
	"github.com/cbegin/gridsynth-go/internal/tuning"
)

// Backend selects the audio output used by Start.
type Backend string

const (
	BackendEbiten Backend = "ebiten"
	BackendOto    Backend = "oto"
	BackendNone   Backend = "none"
)

func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case BackendEbiten, BackendOto, BackendNone:
		return b, nil
	case "":
		return BackendEbiten, nil
	default:
		return "", fmt.Errorf("invalid backend %q (expected ebiten|oto|none)", name)
	}
}

// DefaultIntervalKey is the note that, while held, turns grid presses into
// ratio selections.
const DefaultIntervalKey = 112

type Option func(*config)

type config struct {
	voices      int
	tuning      tuning.Tuning
	queueSize   int
	intervalKey int
	backend     Backend
	otoBuffer   time.Duration
	limiter     bool
	volume      float64
	logger      *slog.Logger
	sampleTap   func([]float32)
}

func defaultConfig() config {
	return config{
		voices:      intsynth.DefaultParams().Polyphony,
		tuning:      tuning.Default(),
		queueSize:   256,
		intervalKey: DefaultIntervalKey,
		backend:     BackendEbiten,
		volume:      1,
		logger:      slog.Default(),
	}
}

// WithVoices sets the size of the voice pool.
func WithVoices(n int) Option {
	return func(cfg *config) {
		cfg.voices = n
	}
}

func WithTuning(t tuning.Tuning) Option {
	return func(cfg *config) {
		cfg.tuning = t
	}
}

// WithQueueSize bounds the number of events in flight between the producer
// and the render thread. Events beyond it are dropped.
func WithQueueSize(n int) Option {
	return func(cfg *config) {
		cfg.queueSize = n
	}
}

// WithIntervalKey changes the modifier note. A negative note disables it.
func WithIntervalKey(note int) Option {
	return func(cfg *config) {
		cfg.intervalKey = note
	}
}

func WithBackend(b Backend) Option {
	return func(cfg *config) {
		cfg.backend = b
	}
}

// WithOtoBufferSize sets the device buffer duration for BackendOto.
func WithOtoBufferSize(d time.Duration) Option {
	return func(cfg *config) {
		cfg.otoBuffer = d
	}
}

// WithMasterVolume sets the initial output gain. SetMasterVolume changes
// it later.
func WithMasterVolume(v float64) Option {
	return func(cfg *config) {
		cfg.volume = v
	}
}

// WithLimiter inserts a peak limiter after the voice mix.
func WithLimiter(enabled bool) Option {
	return func(cfg *config) {
		cfg.limiter = enabled
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) Option {
	return func(cfg *config) {
		cfg.sampleTap = tap
	}
}
