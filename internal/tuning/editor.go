package tuning

import (
	"sync"
	"unicode"
)

var keyValues = map[rune]int{
	'1': 1, '2': 2, '3': 3, '4': 4, '5': 5,
	'6': 6, '7': 7, '8': 8, '9': 9, '0': 10,
	'q': 11, 'w': 12, 'e': 13, 'r': 14, 't': 15,
	'y': 16, 'u': 17, 'i': 18, 'o': 19, 'p': 20,
}

var keyFocus = map[rune]Param{
	'f': ParamMelodicNum,
	'g': ParamMelodicDen,
	'h': ParamBassNum,
	'j': ParamBassDen,
}

// Editor routes typed keys to the focused ratio parameter of a Store.
type Editor struct {
	mu    sync.Mutex
	store *Store
	focus Param
}

func NewEditor(store *Store) *Editor {
	return &Editor{store: store, focus: ParamMelodicNum}
}

func (e *Editor) Focus() Param {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focus
}

func (e *Editor) SetFocus(p Param) {
	e.mu.Lock()
	e.focus = p
	e.mu.Unlock()
}

// HandleKey applies a single key press. Value keys assign 1-20 to the
// focused parameter and report changed=true; focus keys only move the
// selector. Unknown keys are ignored.
func (e *Editor) HandleKey(r rune) (changed bool, err error) {
	r = unicode.ToLower(r)
	if p, ok := keyFocus[r]; ok {
		e.SetFocus(p)
		return false, nil
	}
	v, ok := keyValues[r]
	if !ok {
		return false, nil
	}
	if err := e.store.Set(e.Focus(), v); err != nil {
		return false, err
	}
	return true, nil
}
