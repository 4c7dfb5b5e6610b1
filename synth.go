package gridsynth

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viterin/vek/vek32"

	intaudio "github.com/cbegin/gridsynth-go/internal/audio"
	intfx "github.com/cbegin/gridsynth-go/internal/effects"
	intsynth "github.com/cbegin/gridsynth-go/internal/synth"
	"github.com/cbegin/gridsynth-go/internal/tuning"
)

const outputChannels = 2

// Stats is a snapshot of counters published by the render thread.
type Stats struct {
	ActiveVoices int
	NotesDropped int64 // note-ons lost to pool exhaustion
	EventsLost   int64 // events lost to a full queue
}

// Synth connects event producers (MIDI, console, API callers) to the voice
// pool running on the audio thread. Producer methods never block; Process
// is the only method that touches the engine.
type Synth struct {
	sampleRate int
	logger     *slog.Logger
	store      *tuning.Store
	editor     *tuning.Editor

	events chan Event

	// Render thread only.
	engine  *intsynth.Engine
	pending []Event
	clock   int64
	scratch intsynth.Buffer
	squares []float32
	post    *intfx.Chain
	tap     func([]float32)

	volume       atomic.Uint64
	level        atomic.Uint32
	frames       atomic.Int64
	activeVoices atomic.Int32
	notesDropped atomic.Int64
	eventsLost   atomic.Int64

	intervalKey  int
	intervalHeld atomic.Bool

	mu          sync.Mutex
	backendKind Backend
	otoBuffer   time.Duration
	backend     intaudio.Backend
}

func New(sampleRate int, opts ...Option) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.voices <= 0 {
		return nil, fmt.Errorf("voice count must be positive, got %d", cfg.voices)
	}
	if cfg.queueSize <= 0 {
		return nil, fmt.Errorf("queue size must be positive, got %d", cfg.queueSize)
	}
	store, err := tuning.NewStore(cfg.tuning)
	if err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	engine := intsynth.New(intsynth.Params{Polyphony: cfg.voices, Timbre: intsynth.TimbreSine}, store)
	if err := engine.Configure(sampleRate); err != nil {
		return nil, err
	}
	s := &Synth{
		sampleRate:  sampleRate,
		logger:      cfg.logger,
		store:       store,
		editor:      tuning.NewEditor(store),
		events:      make(chan Event, cfg.queueSize),
		engine:      engine,
		pending:     make([]Event, 0, cfg.queueSize),
		tap:         cfg.sampleTap,
		intervalKey: cfg.intervalKey,
		backendKind: cfg.backend,
		otoBuffer:   cfg.otoBuffer,
	}
	if cfg.limiter {
		s.post = intfx.NewChain(intfx.DefaultLimiter(sampleRate))
	}
	s.SetMasterVolume(cfg.volume)
	return s, nil
}

func (s *Synth) SampleRate() int { return s.sampleRate }

// Tuning returns the store whose snapshot is read at every note-on.
func (s *Synth) Tuning() *tuning.Store { return s.store }

// Editor returns the focused-parameter editor bound to the tuning store.
func (s *Synth) Editor() *tuning.Editor { return s.editor }

// Clock returns the number of frames rendered so far.
func (s *Synth) Clock() int64 { return s.frames.Load() }

// Schedule enqueues an event for the render thread. It reports false when
// the queue is full and the event was dropped. Events are applied in frame
// order; frames already rendered count as the start of the next block, and
// events due at the same frame keep their scheduling order.
func (s *Synth) Schedule(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	default:
		s.eventsLost.Add(1)
		return false
	}
}

func (s *Synth) NoteOn(note int, velocity float64) bool {
	return s.Schedule(NoteOnAt(0, note, velocity))
}

func (s *Synth) NoteOff(note int, allowTailOff bool) bool {
	return s.Schedule(NoteOffAt(0, note, allowTailOff))
}

// AllNotesOff releases every voice, with tail-off.
func (s *Synth) AllNotesOff() bool {
	return s.Schedule(Event{Kind: EventAllNotesOff, AllowTailOff: true})
}

// HandleNote is the entry point for keyboard-style input. While the
// interval key is held, note-ons also retune the grid from the interval
// table before sounding.
func (s *Synth) HandleNote(on bool, note int, velocity float64) bool {
	if !tuning.ValidNote(note) {
		s.logger.Debug("note out of range", "note", note)
		return false
	}
	row, col := tuning.Cell(note)
	if !on {
		if note == s.intervalKey {
			s.intervalHeld.Store(false)
		}
		s.logger.Debug("note off", "note", note, "row", row, "col", col)
		return s.NoteOff(note, true)
	}
	if note == s.intervalKey {
		s.intervalHeld.Store(true)
	} else if s.intervalHeld.Load() && s.store.ApplyInterval(note) {
		t := s.store.Tuning()
		s.logger.Info("intervals changed", "bass", t.Bass.String(), "melodic", t.Melodic.String())
	}
	s.logger.Debug("note on", "note", note, "row", row, "col", col, "velocity", velocity)
	return s.NoteOn(note, velocity)
}

// HandleKey forwards a typed key to the ratio editor.
func (s *Synth) HandleKey(r rune) {
	changed, err := s.editor.HandleKey(r)
	if err != nil {
		s.logger.Warn("tuning rejected", "key", string(r), "err", err)
		return
	}
	if changed {
		t := s.store.Tuning()
		s.logger.Info("tuning changed", "focus", s.editor.Focus().String(),
			"bass", t.Bass.String(), "melodic", t.Melodic.String())
	} else {
		s.logger.Debug("tuning focus", "focus", s.editor.Focus().String())
	}
}

// SetMasterVolume sets the output gain applied after mixing. 1.0 is default.
func (s *Synth) SetMasterVolume(volume float64) {
	if !(volume >= 0) {
		volume = 0
	}
	s.volume.Store(math.Float64bits(volume))
}

func (s *Synth) MasterVolume() float64 {
	return math.Float64frombits(s.volume.Load())
}

// Level returns the RMS of the most recent block.
func (s *Synth) Level() float32 {
	return math.Float32frombits(s.level.Load())
}

func (s *Synth) Stats() Stats {
	return Stats{
		ActiveVoices: int(s.activeVoices.Load()),
		NotesDropped: s.notesDropped.Load(),
		EventsLost:   s.eventsLost.Load(),
	}
}

// Process renders interleaved stereo into dst. It implements the audio
// stream source and must only be called from one goroutine.
func (s *Synth) Process(dst []float32) {
	s.drain()
	s.render(dst)
}

func (s *Synth) drain() {
	for {
		select {
		case ev := <-s.events:
			if len(s.pending) == cap(s.pending) {
				s.eventsLost.Add(1)
				continue
			}
			s.pending = insertByFrame(s.pending, ev, s.clock)
		default:
			return
		}
	}
}

// insertByFrame appends ev and moves it ahead of any later-stamped events.
// Past frames are clamped to now so they stay in arrival order.
func insertByFrame(pending []Event, ev Event, now int64) []Event {
	ev.Frame = max(ev.Frame, now)
	pending = append(pending, ev)
	for i := len(pending) - 1; i > 0 && pending[i-1].Frame > ev.Frame; i-- {
		pending[i], pending[i-1] = pending[i-1], pending[i]
	}
	return pending
}

// render consumes due events from pending, splitting the block at each
// event's frame.
func (s *Synth) render(dst []float32) {
	frames := len(dst) / outputChannels
	if frames == 0 {
		return
	}
	out := dst[:frames*outputChannels]
	s.ensureScratch(frames)

	blockEnd := s.clock + int64(frames)
	pos, consumed := 0, 0
	for _, ev := range s.pending {
		if ev.Frame >= blockEnd {
			break
		}
		at := max(int(ev.Frame-s.clock), pos)
		s.engine.RenderBlock(s.scratch, pos, at-pos)
		pos = at
		s.apply(ev)
		consumed++
	}
	s.engine.RenderBlock(s.scratch, pos, frames-pos)
	s.pending = s.pending[:copy(s.pending, s.pending[consumed:])]
	s.clock = blockEnd

	left, right := s.scratch[0][:frames], s.scratch[1][:frames]
	for i := 0; i < frames; i++ {
		out[2*i] = left[i]
		out[2*i+1] = right[i]
	}
	if g := s.MasterVolume(); g != 1 {
		vek32.MulNumber_Inplace(out, float32(g))
	}
	s.post.ProcessInterleaved(out)

	sq := vek32.Mul_Into(s.squares[:len(out)], out, out)
	s.level.Store(math.Float32bits(float32(math.Sqrt(float64(vek32.Mean(sq))))))
	s.frames.Store(s.clock)
	s.activeVoices.Store(int32(s.engine.ActiveVoiceCount()))
	s.notesDropped.Store(int64(s.engine.Dropped()))

	if s.tap != nil {
		s.tap(out)
	}
}

func (s *Synth) apply(ev Event) {
	switch ev.Kind {
	case EventNoteOn:
		s.engine.NoteOn(ev.Note, ev.Velocity)
	case EventNoteOff:
		s.engine.NoteOff(ev.Note, ev.AllowTailOff)
	case EventAllNotesOff:
		s.engine.AllNotesOff(ev.AllowTailOff)
	}
}

// ensureScratch grows the planar mix buffer; after the first block of a
// given size no further allocation happens.
func (s *Synth) ensureScratch(frames int) {
	if s.scratch.Len() >= frames {
		return
	}
	s.scratch = intsynth.NewBuffer(outputChannels, frames)
	s.squares = make([]float32, frames*outputChannels)
}

// Start opens the configured audio backend and begins playback.
func (s *Synth) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend != nil {
		s.backend.Play()
		return nil
	}
	var (
		b   intaudio.Backend
		err error
	)
	switch s.backendKind {
	case BackendEbiten:
		b, err = intaudio.NewEbitenPlayer(s.sampleRate, s)
	case BackendOto:
		b, err = intaudio.NewOtoPlayer(s.sampleRate, s.otoBuffer, s)
	case BackendNone:
		return nil
	default:
		return fmt.Errorf("unknown backend %q", s.backendKind)
	}
	if err != nil {
		return fmt.Errorf("%s backend: %w", s.backendKind, err)
	}
	s.backend = b
	s.backend.Play()
	s.logger.Info("audio started", "backend", string(s.backendKind), "sample_rate", s.sampleRate)
	return nil
}

func (s *Synth) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend != nil {
		s.backend.Pause()
	}
}

// Stop closes the audio backend and clears the limiter envelope so a
// later Start begins at unity gain.
func (s *Synth) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.backend != nil {
		err = s.backend.Close()
		s.backend = nil
	}
	s.post.Reset()
	return err
}
