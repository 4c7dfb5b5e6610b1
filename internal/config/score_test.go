package config

import (
	"testing"

	gridsynth "github.com/cbegin/gridsynth-go"
)

func TestParseScore(t *testing.T) {
	s, err := ParseScore([]byte(`
seconds: 2
tuning:
  root: 100
  bass: [1, 1]
  melodic: [3, 2]
events:
  - {at: 0, note: 0, velocity: 0.8}
  - {at: 0.5, note: 17, velocity: 0.5}
  - {at: 1, note: 0, off: true}
  - {at: 1.5, note: 17, off: true, hard: true}
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Seconds != 2 || s.Tuning == nil || s.Tuning.Root != 100 {
		t.Fatalf("unexpected score %+v", s)
	}
	if len(s.Notes) != 4 || !s.Notes[3].Hard || s.Notes[1].Note != 17 {
		t.Fatalf("notes = %+v", s.Notes)
	}
	got := s.Events(48000)
	want := []gridsynth.Event{
		gridsynth.NoteOnAt(0, 0, 0.8),
		gridsynth.NoteOnAt(24000, 17, 0.5),
		gridsynth.NoteOffAt(48000, 0, true),
		gridsynth.NoteOffAt(72000, 17, false),
	}
	if len(got) != len(want) {
		t.Fatalf("events = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseScoreRejectsInvalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		yaml string
	}{
		{"no duration", "events: []"},
		{"negative time", "seconds: 1\nevents: [{at: -1, note: 0, velocity: 1}]"},
		{"loud velocity", "seconds: 1\nevents: [{at: 0, note: 0, velocity: 2}]"},
		{"bad tuning", "seconds: 1\ntuning: {bass: [0, 1], melodic: [1, 1]}"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseScore([]byte(tc.yaml)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
