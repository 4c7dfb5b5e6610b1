package tuning

import "fmt"

// Param selects one of the four ratio integers.
type Param int

const (
	ParamMelodicNum Param = iota
	ParamMelodicDen
	ParamBassNum
	ParamBassDen
)

func (p Param) String() string {
	switch p {
	case ParamMelodicNum:
		return "melodic numerator"
	case ParamMelodicDen:
		return "melodic denominator"
	case ParamBassNum:
		return "bass numerator"
	case ParamBassDen:
		return "bass denominator"
	default:
		return fmt.Sprintf("Param(%d)", int(p))
	}
}

// Set assigns v to the parameter selected by p.
func (t *Tuning) Set(p Param, v int) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %d", p, v)
	}
	switch p {
	case ParamMelodicNum:
		t.Melodic.Num = v
	case ParamMelodicDen:
		t.Melodic.Den = v
	case ParamBassNum:
		t.Bass.Num = v
	case ParamBassDen:
		t.Bass.Den = v
	default:
		return fmt.Errorf("unknown parameter %d", int(p))
	}
	return nil
}

func (t Tuning) Get(p Param) int {
	switch p {
	case ParamMelodicNum:
		return t.Melodic.Num
	case ParamMelodicDen:
		return t.Melodic.Den
	case ParamBassNum:
		return t.Bass.Num
	case ParamBassDen:
		return t.Bass.Den
	}
	return 0
}

// Intervals is the table used when ratios are picked from the grid.
var Intervals = [...]Ratio{
	{1, 1}, {9, 8}, {6, 5}, {5, 4}, {4, 3}, {3, 2}, {8, 5}, {5, 3},
}

// IntervalsFor returns the bass and melodic ratios selected by a grid note.
// Columns past the end of the table leave the melodic ratio unselected.
func IntervalsFor(note int) (bass Ratio, melodic Ratio, hasMelodic bool) {
	row, col := Cell(note)
	bass = Intervals[row]
	if col < len(Intervals) {
		return bass, Intervals[col], true
	}
	return bass, Ratio{}, false
}
