package synth

import "math"

const twoPi = math.Pi * 2

const (
	// TailOffDecay is applied to the release multiplier once per sample.
	TailOffDecay = 0.99
	// TailOffFloor ends the release once the multiplier falls to it.
	TailOffFloor = 0.005
)

// Timbre identifies a sound a voice may be asked to render.
type Timbre uint8

const (
	TimbreSine Timbre = iota
)

func (t Timbre) String() string {
	switch t {
	case TimbreSine:
		return "sine"
	default:
		return "unknown"
	}
}

// TimbreSet is a bit mask of timbres.
type TimbreSet uint32

func TimbresOf(ts ...Timbre) TimbreSet {
	var s TimbreSet
	for _, t := range ts {
		s |= 1 << t
	}
	return s
}

func (s TimbreSet) Has(t Timbre) bool {
	return t < 32 && s&(1<<t) != 0
}

type VoiceState int

const (
	VoiceIdle VoiceState = iota
	VoiceSounding
	VoiceReleasing
)

func (s VoiceState) String() string {
	switch s {
	case VoiceSounding:
		return "sounding"
	case VoiceReleasing:
		return "releasing"
	default:
		return "idle"
	}
}

// Voice is a monophonic sine oscillator.
type Voice struct {
	timbres    TimbreSet
	sampleRate float64
	note       int
	phase      float64
	delta      float64
	level      float64
	tailOff    float64
}

func NewVoice(timbres TimbreSet) *Voice {
	return &Voice{timbres: timbres, note: -1}
}

func (v *Voice) CanRender(t Timbre) bool {
	return v.timbres.Has(t)
}

// Prepare sets the sample rate used by subsequent Start calls.
func (v *Voice) Prepare(sampleRate float64) {
	v.sampleRate = sampleRate
}

// Start (re)triggers the oscillator. A non-positive frequency or missing
// sample rate leaves the voice idle and returns false.
func (v *Voice) Start(note int, velocity float64, freqHz float64) bool {
	if !(freqHz > 0) || !(v.sampleRate > 0) {
		v.clear()
		return false
	}
	v.note = note
	v.phase = 0
	v.level = clamp(velocity, 0, 1)
	v.tailOff = 0
	v.delta = twoPi * freqHz / v.sampleRate
	return true
}

// Stop either begins the exponential tail-off or, without tail-off,
// silences the voice immediately.
func (v *Voice) Stop(allowTailOff bool) {
	if allowTailOff {
		if v.tailOff == 0 && v.delta != 0 {
			v.tailOff = 1
		}
		return
	}
	v.clear()
}

func (v *Voice) clear() {
	v.note = -1
	v.delta = 0
	v.tailOff = 0
}

// Render adds the voice's output into every channel of buf for n frames
// starting at start.
func (v *Voice) Render(buf Buffer, start, n int) {
	if v.delta == 0 {
		return
	}
	if v.tailOff > 0 {
		for i := start; i < start+n; i++ {
			s := float32(math.Sin(v.phase) * v.level * v.tailOff)
			for _, ch := range buf {
				ch[i] += s
			}
			v.phase += v.delta
			v.tailOff *= TailOffDecay
			if v.tailOff <= TailOffFloor {
				v.clear()
				return
			}
		}
		return
	}
	for i := start; i < start+n; i++ {
		s := float32(math.Sin(v.phase) * v.level)
		for _, ch := range buf {
			ch[i] += s
		}
		v.phase += v.delta
	}
}

// Note returns the assigned note number or -1.
func (v *Voice) Note() int { return v.note }

func (v *Voice) State() VoiceState {
	switch {
	case v.delta == 0:
		return VoiceIdle
	case v.tailOff > 0:
		return VoiceReleasing
	default:
		return VoiceSounding
	}
}

// IsFree reports whether the voice may be assigned a new note.
func (v *Voice) IsFree() bool {
	return v.note < 0 && v.delta == 0
}

// IsHeld reports whether the voice is sounding and not yet released.
func (v *Voice) IsHeld() bool {
	return v.note >= 0 && v.delta != 0 && v.tailOff == 0
}

func clamp(v, lo, hi float64) float64 {
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
