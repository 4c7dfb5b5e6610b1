package tuning

import (
	"errors"
	"fmt"
	"math"
)

// GridRows and GridCols describe the isomorphic keyboard layout: the low
// four bits of a note number pick the column, bits 4-6 pick the row.
const (
	GridRows = 8
	GridCols = 16
	MaxNote  = GridRows*GridCols - 1
)

// DefaultRoot is the frequency of MIDI note 48.
var DefaultRoot = 440 * math.Pow(2, float64(48-69)/12)

// Ratio is a just-intonation interval.
type Ratio struct {
	Num int
	Den int
}

func (r Ratio) Value() float64 {
	return float64(r.Num) / float64(r.Den)
}

func (r Ratio) Validate() error {
	if r.Num <= 0 || r.Den <= 0 {
		return fmt.Errorf("ratio %d/%d: numerator and denominator must be positive", r.Num, r.Den)
	}
	return nil
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Tuning holds the collaborator-owned parameters from which the bass and
// melodic step frequencies are derived.
type Tuning struct {
	Root    float64
	Bass    Ratio
	Melodic Ratio
}

func Default() Tuning {
	return Tuning{
		Root:    DefaultRoot,
		Bass:    Ratio{Num: 1, Den: 1},
		Melodic: Ratio{Num: 3, Den: 2},
	}
}

func (t Tuning) Validate() error {
	if !(t.Root > 0) || math.IsInf(t.Root, 0) {
		return errors.New("root frequency must be positive")
	}
	if err := t.Bass.Validate(); err != nil {
		return fmt.Errorf("bass: %w", err)
	}
	if err := t.Melodic.Validate(); err != nil {
		return fmt.Errorf("melodic: %w", err)
	}
	return nil
}

// Frequencies derives B = root*bass and M = B*melodic.
func (t Tuning) Frequencies() Frequencies {
	bass := t.Root * float64(t.Bass.Num) / float64(t.Bass.Den)
	return Frequencies{
		Bass:    bass,
		Melodic: bass * float64(t.Melodic.Num) / float64(t.Melodic.Den),
	}
}

// Frequencies is an immutable snapshot of the two step frequencies.
type Frequencies struct {
	Bass    float64
	Melodic float64
}

// NoteHz maps a note number onto the grid: each column adds one melodic
// step, each row below the top adds one bass step.
func (f Frequencies) NoteHz(note int) float64 {
	row, col := Cell(note)
	return float64(col)*f.Melodic + float64(row)*f.Bass
}

// Cell returns the grid coordinates of a note. Row 0 is the top row.
func Cell(note int) (row, col int) {
	return 7 - note/GridCols, note % GridCols
}

// NoteAt is the inverse of Cell.
func NoteAt(row, col int) int {
	return (7-row)*GridCols + col
}

func ValidNote(note int) bool {
	return note >= 0 && note <= MaxNote
}
