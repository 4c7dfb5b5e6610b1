package midiin

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

func TestDecode(t *testing.T) {
	for _, tc := range []struct {
		name string
		msg  midi.Message
		on   bool
		note int
		vel  float64
		ok   bool
	}{
		{"note on", midi.NoteOn(0, 60, 127), true, 60, 1, true},
		{"note on other channel", midi.NoteOn(9, 5, 0x40), true, 5, 64.0 / 127, true},
		{"note off", midi.NoteOff(0, 61), false, 61, 0, true},
		{"note on zero velocity", midi.NoteOn(3, 62, 0), false, 62, 0, true},
		{"control change", midi.ControlChange(0, 7, 100), false, 0, 0, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			on, note, vel, ok := Decode(tc.msg)
			if ok != tc.ok || on != tc.on || note != tc.note || vel != tc.vel {
				t.Fatalf("Decode = (%v, %d, %f, %v), want (%v, %d, %f, %v)",
					on, note, vel, ok, tc.on, tc.note, tc.vel, tc.ok)
			}
		})
	}
}

func TestSelectName(t *testing.T) {
	names := []string{"Midi Through Port-0", "Launchpad X", "launchkey 49"}
	for _, tc := range []struct {
		prefix string
		want   int
		ok     bool
	}{
		{"", 0, true},
		{"Launchkey", 2, true},
		{"LAUNCHPAD", 1, true},
		{"Keystep", -1, false},
	} {
		got, ok := SelectName(names, tc.prefix)
		if got != tc.want || ok != tc.ok {
			t.Errorf("SelectName(%q) = %d, %v; want %d, %v", tc.prefix, got, ok, tc.want, tc.ok)
		}
	}
	if _, ok := SelectName(nil, ""); ok {
		t.Fatalf("empty list should not select")
	}
}
