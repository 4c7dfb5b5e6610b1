package synth

import (
	"errors"

	"github.com/cbegin/gridsynth-go/internal/tuning"
)

// FrequencySource supplies the step frequencies read at note-on time.
// Implementations must be safe to call from the audio thread.
type FrequencySource interface {
	Frequencies() tuning.Frequencies
}

type Params struct {
	Polyphony int
	Timbre    Timbre
}

func DefaultParams() Params {
	return Params{
		Polyphony: 4,
		Timbre:    TimbreSine,
	}
}

// Engine owns a fixed pool of voices. It is not safe for concurrent use;
// all calls belong on the render thread.
type Engine struct {
	voices     []*Voice
	timbre     Timbre
	freqs      FrequencySource
	sampleRate float64
	dropped    int
}

func New(params Params, freqs FrequencySource) *Engine {
	if params.Polyphony <= 0 {
		params.Polyphony = DefaultParams().Polyphony
	}
	e := &Engine{
		voices: make([]*Voice, params.Polyphony),
		timbre: params.Timbre,
		freqs:  freqs,
	}
	for i := range e.voices {
		e.voices[i] = NewVoice(TimbresOf(TimbreSine))
	}
	return e
}

// Configure propagates the sample rate to every voice. Voices already
// sounding keep their pitch until restarted.
func (e *Engine) Configure(sampleRate int) error {
	if sampleRate <= 0 {
		return errors.New("sampleRate must be positive")
	}
	e.sampleRate = float64(sampleRate)
	for _, v := range e.voices {
		v.Prepare(e.sampleRate)
	}
	return nil
}

// SetTimbre selects the sound used for subsequent note-ons. Only voices
// that can render it are eligible.
func (e *Engine) SetTimbre(t Timbre) { e.timbre = t }

// NoteOn assigns a voice to the note. It returns false when the note was
// dropped: out of range, silent frequency, or no free voice. Only the
// last case counts towards Dropped.
func (e *Engine) NoteOn(note int, velocity float64) bool {
	if !tuning.ValidNote(note) || e.freqs == nil {
		return false
	}
	hz := e.freqs.Frequencies().NoteHz(note)
	if !(hz > 0) {
		return false
	}
	for _, v := range e.voices {
		if v.IsHeld() && v.Note() == note {
			return v.Start(note, velocity, hz)
		}
	}
	capable := false
	for _, v := range e.voices {
		if !v.CanRender(e.timbre) {
			continue
		}
		capable = true
		if v.IsFree() {
			return v.Start(note, velocity, hz)
		}
	}
	if capable {
		e.dropped++
	}
	return false
}

// NoteOff releases the voice holding note. Unmatched or repeated
// note-offs are ignored.
func (e *Engine) NoteOff(note int, allowTailOff bool) bool {
	for _, v := range e.voices {
		if v.IsHeld() && v.Note() == note {
			v.Stop(allowTailOff)
			return true
		}
	}
	return false
}

// AllNotesOff stops every assigned voice, including ones already in
// their tail when allowTailOff is false.
func (e *Engine) AllNotesOff(allowTailOff bool) {
	for _, v := range e.voices {
		if v.State() != VoiceIdle {
			v.Stop(allowTailOff)
		}
	}
}

// RenderBlock clears the region and mixes every voice into it.
func (e *Engine) RenderBlock(buf Buffer, start, n int) {
	if n <= 0 {
		return
	}
	buf.Clear(start, n)
	for _, v := range e.voices {
		v.Render(buf, start, n)
	}
}

func (e *Engine) ActiveVoiceCount() int {
	n := 0
	for _, v := range e.voices {
		if v.State() != VoiceIdle {
			n++
		}
	}
	return n
}

// Dropped returns the number of note-ons lost to pool exhaustion.
func (e *Engine) Dropped() int { return e.dropped }

// Voice exposes a pooled voice for inspection.
func (e *Engine) Voice(i int) *Voice { return e.voices[i] }
