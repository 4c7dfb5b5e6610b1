package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	gridsynth "github.com/cbegin/gridsynth-go"
	"github.com/cbegin/gridsynth-go/internal/tuning"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	tn, err := cfg.Tuning.ToTuning()
	if err != nil {
		t.Fatal(err)
	}
	if tn != tuning.Default() {
		t.Fatalf("tuning = %+v, want %+v", tn, tuning.Default())
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
sample_rate: 44100
voices: 8
backend: oto
limiter: true
midi:
  device: launch
tuning:
  root: 110
  melodic: [5, 4]
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.SampleRate != 44100 || cfg.Voices != 8 || cfg.Backend != "oto" || !cfg.Limiter {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.QueueSize != 256 || cfg.Volume != 1 || cfg.MIDI.IntervalKey != gridsynth.DefaultIntervalKey {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	tn, err := cfg.Tuning.ToTuning()
	if err != nil {
		t.Fatal(err)
	}
	want := tuning.Tuning{Root: 110, Bass: tuning.Ratio{Num: 1, Den: 1}, Melodic: tuning.Ratio{Num: 5, Den: 4}}
	if tn != want {
		t.Fatalf("tuning = %+v, want %+v", tn, want)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) == 0 {
		t.Fatalf("no options")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		yaml string
		want string
	}{
		{"sample rate", "sample_rate: 0", "sample_rate"},
		{"voices", "voices: -1", "voices"},
		{"queue", "queue_size: 0", "queue_size"},
		{"volume", "volume: -0.5", "volume"},
		{"backend", "backend: alsa", "backend"},
		{"interval key", "midi: {interval_key: 128}", "interval_key"},
		{"ratio length", "tuning: {bass: [1, 2, 3]}", "bass"},
		{"ratio zero", "tuning: {melodic: [3, 0]}", "melodic"},
		{"negative root", "tuning: {root: -1}", "root"},
		{"syntax", "voices: [", "decode"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestIntervalKeyCanBeDisabled(t *testing.T) {
	cfg, err := Parse([]byte("midi: {interval_key: -1}"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MIDI.IntervalKey != -1 {
		t.Fatalf("interval key = %d", cfg.MIDI.IntervalKey)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridsynth.yaml")
	if err := os.WriteFile(path, []byte("voices: 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Voices != 6 {
		t.Fatalf("voices = %d", cfg.Voices)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
