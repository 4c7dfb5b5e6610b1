package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	gridsynth "github.com/cbegin/gridsynth-go"
	"github.com/cbegin/gridsynth-go/internal/tuning"
)

// Config is the on-disk configuration of the gridsynth command.
type Config struct {
	SampleRate int     `yaml:"sample_rate"`
	Voices     int     `yaml:"voices"`
	Backend    string  `yaml:"backend"`
	Volume     float64 `yaml:"volume"`
	Limiter    bool    `yaml:"limiter"`
	QueueSize  int     `yaml:"queue_size"`
	MIDI       MIDI    `yaml:"midi"`
	Tuning     Tuning  `yaml:"tuning"`
}

type MIDI struct {
	// Device is matched as a case-insensitive name prefix. Empty picks
	// the first input.
	Device      string `yaml:"device,omitempty"`
	IntervalKey int    `yaml:"interval_key"`
}

// Tuning is the YAML form of tuning.Tuning. Ratios are [num, den].
type Tuning struct {
	Root    float64 `yaml:"root"`
	Bass    []int   `yaml:"bass,flow"`
	Melodic []int   `yaml:"melodic,flow"`
}

func Default() Config {
	t := tuning.Default()
	return Config{
		SampleRate: 48000,
		Voices:     4,
		Backend:    string(gridsynth.BackendEbiten),
		Volume:     1,
		QueueSize:  256,
		MIDI:       MIDI{IntervalKey: gridsynth.DefaultIntervalKey},
		Tuning:     FromTuning(t),
	}
}

// Load reads a YAML file on top of Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Voices <= 0 {
		return fmt.Errorf("voices must be positive, got %d", c.Voices)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive, got %d", c.QueueSize)
	}
	if !(c.Volume >= 0) {
		return errors.New("volume must be non-negative")
	}
	if _, err := gridsynth.ParseBackend(c.Backend); err != nil {
		return err
	}
	if c.MIDI.IntervalKey > tuning.MaxNote {
		return fmt.Errorf("midi.interval_key %d out of range", c.MIDI.IntervalKey)
	}
	if _, err := c.Tuning.ToTuning(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	return nil
}

// Options converts the config into Synth options. The backend must already
// have passed Validate.
func (c Config) Options() ([]gridsynth.Option, error) {
	backend, err := gridsynth.ParseBackend(c.Backend)
	if err != nil {
		return nil, err
	}
	t, err := c.Tuning.ToTuning()
	if err != nil {
		return nil, err
	}
	return []gridsynth.Option{
		gridsynth.WithVoices(c.Voices),
		gridsynth.WithBackend(backend),
		gridsynth.WithLimiter(c.Limiter),
		gridsynth.WithMasterVolume(c.Volume),
		gridsynth.WithQueueSize(c.QueueSize),
		gridsynth.WithIntervalKey(c.MIDI.IntervalKey),
		gridsynth.WithTuning(t),
	}, nil
}

func FromTuning(t tuning.Tuning) Tuning {
	return Tuning{
		Root:    t.Root,
		Bass:    []int{t.Bass.Num, t.Bass.Den},
		Melodic: []int{t.Melodic.Num, t.Melodic.Den},
	}
}

// ToTuning validates and converts. A zero root selects tuning.DefaultRoot.
func (t Tuning) ToTuning() (tuning.Tuning, error) {
	bass, err := ratio("bass", t.Bass)
	if err != nil {
		return tuning.Tuning{}, err
	}
	mel, err := ratio("melodic", t.Melodic)
	if err != nil {
		return tuning.Tuning{}, err
	}
	root := t.Root
	if root == 0 {
		root = tuning.DefaultRoot
	}
	out := tuning.Tuning{Root: root, Bass: bass, Melodic: mel}
	if err := out.Validate(); err != nil {
		return tuning.Tuning{}, err
	}
	return out, nil
}

func ratio(name string, v []int) (tuning.Ratio, error) {
	if len(v) != 2 {
		return tuning.Ratio{}, fmt.Errorf("%s: want [num, den], got %d values", name, len(v))
	}
	return tuning.Ratio{Num: v[0], Den: v[1]}, nil
}
