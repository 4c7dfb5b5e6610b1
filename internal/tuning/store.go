package tuning

import (
	"sync"
	"sync/atomic"
)

// Store publishes frequency snapshots to the audio thread. Writers are
// serialized by a mutex; readers only perform an atomic load.
type Store struct {
	mu     sync.Mutex
	tuning Tuning
	freqs  atomic.Pointer[Frequencies]
}

func NewStore(t Tuning) (*Store, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	s := &Store{tuning: t}
	s.publish()
	return s, nil
}

func (s *Store) publish() {
	f := s.tuning.Frequencies()
	s.freqs.Store(&f)
}

// Frequencies returns the latest snapshot. Safe to call from the audio thread.
func (s *Store) Frequencies() Frequencies {
	return *s.freqs.Load()
}

func (s *Store) Tuning() Tuning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tuning
}

// Update applies fn to a copy of the current tuning and publishes it if the
// result is valid. Returning an error from fn discards the change.
func (s *Store) Update(fn func(*Tuning) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.tuning
	if err := fn(&next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	s.tuning = next
	s.publish()
	return nil
}

func (s *Store) Set(p Param, v int) error {
	return s.Update(func(t *Tuning) error {
		return t.Set(p, v)
	})
}

// ApplyInterval sets the ratios from the interval table at the note's grid
// cell. It reports whether anything changed.
func (s *Store) ApplyInterval(note int) bool {
	if !ValidNote(note) {
		return false
	}
	bass, mel, hasMel := IntervalsFor(note)
	changed := false
	_ = s.Update(func(t *Tuning) error {
		if t.Bass != bass {
			t.Bass = bass
			changed = true
		}
		if hasMel && t.Melodic != mel {
			t.Melodic = mel
			changed = true
		}
		return nil
	})
	return changed
}
