package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	gridsynth "github.com/cbegin/gridsynth-go"
)

// Score is a list of timed notes for offline rendering.
type Score struct {
	Seconds float64     `yaml:"seconds"`
	Tuning  *Tuning     `yaml:"tuning,omitempty"`
	Notes   []NoteEvent `yaml:"events"`
}

// NoteEvent is a note-on, or a note-off when Off is set. Hard cuts the
// voice without a tail.
type NoteEvent struct {
	At       float64 `yaml:"at"`
	Note     int     `yaml:"note"`
	Velocity float64 `yaml:"velocity,omitempty"`
	Off      bool    `yaml:"off,omitempty"`
	Hard     bool    `yaml:"hard,omitempty"`
}

func LoadScore(path string) (Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Score{}, err
	}
	s, err := ParseScore(data)
	if err != nil {
		return Score{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func ParseScore(data []byte) (Score, error) {
	var s Score
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Score{}, fmt.Errorf("decode score: %w", err)
	}
	if !(s.Seconds > 0) || math.IsInf(s.Seconds, 0) {
		return Score{}, errors.New("seconds must be positive")
	}
	for i, ev := range s.Notes {
		if !(ev.At >= 0) {
			return Score{}, fmt.Errorf("event %d: at must be non-negative", i)
		}
		if !ev.Off && !(ev.Velocity >= 0 && ev.Velocity <= 1) {
			return Score{}, fmt.Errorf("event %d: velocity %v outside [0, 1]", i, ev.Velocity)
		}
	}
	if s.Tuning != nil {
		if _, err := s.Tuning.ToTuning(); err != nil {
			return Score{}, fmt.Errorf("tuning: %w", err)
		}
	}
	return s, nil
}

// Events converts the score to frame-stamped synth events.
func (s Score) Events(sampleRate int) []gridsynth.Event {
	out := make([]gridsynth.Event, 0, len(s.Notes))
	for _, ev := range s.Notes {
		frame := gridsynth.FrameAt(ev.At, sampleRate)
		if ev.Off {
			out = append(out, gridsynth.NoteOffAt(frame, ev.Note, !ev.Hard))
			continue
		}
		out = append(out, gridsynth.NoteOnAt(frame, ev.Note, ev.Velocity))
	}
	return out
}
