package tuning

import (
	"math"
	"sync"
	"testing"
)

func TestNoteHzGridCorners(t *testing.T) {
	f := Frequencies{Bass: 110, Melodic: 165}
	for _, tc := range []struct {
		note int
		want float64
	}{
		{0, 7 * 110},
		{16, 6 * 110},
		{127, 15 * 165},
		{112, 0},
		{1, 165 + 7*110},
		{35, 3*165 + 5*110},
	} {
		if got := f.NoteHz(tc.note); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("NoteHz(%d) = %f, want %f", tc.note, got, tc.want)
		}
	}
}

func TestCellRoundTrip(t *testing.T) {
	for n := 0; n <= MaxNote; n++ {
		row, col := Cell(n)
		if row < 0 || row >= GridRows || col < 0 || col >= GridCols {
			t.Fatalf("Cell(%d) = (%d, %d) out of grid", n, row, col)
		}
		if got := NoteAt(row, col); got != n {
			t.Fatalf("NoteAt(Cell(%d)) = %d", n, got)
		}
	}
	if row, col := Cell(0); row != 7 || col != 0 {
		t.Fatalf("Cell(0) = (%d, %d), want (7, 0)", row, col)
	}
}

func TestFrequenciesFromRatios(t *testing.T) {
	tn := Tuning{Root: 100, Bass: Ratio{3, 2}, Melodic: Ratio{5, 4}}
	f := tn.Frequencies()
	if f.Bass != 150 {
		t.Fatalf("bass = %f, want 150", f.Bass)
	}
	if f.Melodic != 187.5 {
		t.Fatalf("melodic = %f, want 187.5", f.Melodic)
	}
}

func TestDefaultRootIsMIDINote48(t *testing.T) {
	if math.Abs(DefaultRoot-130.8127826502993) > 1e-9 {
		t.Fatalf("DefaultRoot = %f", DefaultRoot)
	}
}

func TestValidateRejectsNonPositive(t *testing.T) {
	for _, tc := range []struct {
		name string
		t    Tuning
	}{
		{"zero root", Tuning{Root: 0, Bass: Ratio{1, 1}, Melodic: Ratio{1, 1}}},
		{"nan root", Tuning{Root: math.NaN(), Bass: Ratio{1, 1}, Melodic: Ratio{1, 1}}},
		{"zero bass den", Tuning{Root: 100, Bass: Ratio{1, 0}, Melodic: Ratio{1, 1}}},
		{"negative melodic num", Tuning{Root: 100, Bass: Ratio{1, 1}, Melodic: Ratio{-3, 2}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.t.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("default tuning invalid: %v", err)
	}
}

func TestSetDispatchesOnParam(t *testing.T) {
	tn := Default()
	for _, tc := range []struct {
		p Param
		v int
	}{
		{ParamMelodicNum, 7},
		{ParamMelodicDen, 4},
		{ParamBassNum, 5},
		{ParamBassDen, 3},
	} {
		if err := tn.Set(tc.p, tc.v); err != nil {
			t.Fatalf("Set(%s): %v", tc.p, err)
		}
		if got := tn.Get(tc.p); got != tc.v {
			t.Fatalf("Get(%s) = %d, want %d", tc.p, got, tc.v)
		}
	}
	if tn.Melodic != (Ratio{7, 4}) || tn.Bass != (Ratio{5, 3}) {
		t.Fatalf("unexpected tuning %+v", tn)
	}
	if err := tn.Set(ParamBassDen, 0); err == nil {
		t.Fatalf("expected error for zero value")
	}
}

func TestStoreUpdatePublishesSnapshot(t *testing.T) {
	s, err := NewStore(Tuning{Root: 100, Bass: Ratio{1, 1}, Melodic: Ratio{1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	before := s.Frequencies()
	if err := s.Set(ParamMelodicNum, 2); err != nil {
		t.Fatal(err)
	}
	after := s.Frequencies()
	if before.Melodic != 100 || after.Melodic != 200 {
		t.Fatalf("melodic before=%f after=%f", before.Melodic, after.Melodic)
	}
	if err := s.Update(func(t *Tuning) error {
		t.Root = -1
		return nil
	}); err == nil {
		t.Fatalf("expected invalid update to fail")
	}
	if got := s.Frequencies(); got != after {
		t.Fatalf("invalid update leaked into snapshot: %+v", got)
	}
}

func TestApplyIntervalUsesRowAndColumn(t *testing.T) {
	s, err := NewStore(Default())
	if err != nil {
		t.Fatal(err)
	}
	// row 2, col 3
	note := NoteAt(2, 3)
	if !s.ApplyInterval(note) {
		t.Fatalf("expected change")
	}
	got := s.Tuning()
	if got.Bass != Intervals[2] || got.Melodic != Intervals[3] {
		t.Fatalf("tuning = %+v", got)
	}
	// Columns beyond the table keep the melodic ratio.
	if !s.ApplyInterval(NoteAt(5, 12)) {
		t.Fatalf("expected bass change")
	}
	got = s.Tuning()
	if got.Bass != Intervals[5] || got.Melodic != Intervals[3] {
		t.Fatalf("tuning = %+v", got)
	}
	if s.ApplyInterval(NoteAt(5, 12)) {
		t.Fatalf("repeat should not report a change")
	}
	if s.ApplyInterval(200) {
		t.Fatalf("out-of-range note should be ignored")
	}
}

func TestStoreConcurrentReaders(t *testing.T) {
	s, err := NewStore(Default())
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			f := s.Frequencies()
			if f.Bass <= 0 || f.Melodic <= 0 {
				t.Errorf("bad snapshot %+v", f)
				return
			}
		}
	}()
	for i := 1; i <= 200; i++ {
		_ = s.Set(ParamMelodicNum, i%20+1)
	}
	close(stop)
	wg.Wait()
}

func TestEditorKeys(t *testing.T) {
	s, err := NewStore(Default())
	if err != nil {
		t.Fatal(err)
	}
	e := NewEditor(s)
	if e.Focus() != ParamMelodicNum {
		t.Fatalf("default focus = %s", e.Focus())
	}
	for _, tc := range []struct {
		key     rune
		changed bool
		focus   Param
	}{
		{'5', true, ParamMelodicNum},
		{'g', false, ParamMelodicDen},
		{'0', true, ParamMelodicDen},
		{'H', false, ParamBassNum},
		{'p', true, ParamBassNum},
		{'j', false, ParamBassDen},
		{'W', true, ParamBassDen},
		{'z', false, ParamBassDen},
	} {
		changed, err := e.HandleKey(tc.key)
		if err != nil {
			t.Fatalf("key %q: %v", tc.key, err)
		}
		if changed != tc.changed {
			t.Fatalf("key %q changed = %v, want %v", tc.key, changed, tc.changed)
		}
		if e.Focus() != tc.focus {
			t.Fatalf("key %q focus = %s, want %s", tc.key, e.Focus(), tc.focus)
		}
	}
	got := s.Tuning()
	want := Tuning{Root: DefaultRoot, Bass: Ratio{20, 12}, Melodic: Ratio{5, 10}}
	if got != want {
		t.Fatalf("tuning = %+v, want %+v", got, want)
	}
}
