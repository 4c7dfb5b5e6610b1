package gridsynth

// EventKind identifies what an Event does to the voice pool.
type EventKind int

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventAllNotesOff
)

func (k EventKind) String() string {
	switch k {
	case EventNoteOn:
		return "note-on"
	case EventNoteOff:
		return "note-off"
	case EventAllNotesOff:
		return "all-notes-off"
	default:
		return "unknown"
	}
}

// Event is a timestamped instruction for the render thread. Frame is the
// absolute output frame at which it takes effect; frames already rendered
// (including 0) apply at the start of the next block.
type Event struct {
	Frame        int64
	Kind         EventKind
	Note         int
	Velocity     float64
	AllowTailOff bool
}

func NoteOnAt(frame int64, note int, velocity float64) Event {
	return Event{Frame: frame, Kind: EventNoteOn, Note: note, Velocity: velocity}
}

func NoteOffAt(frame int64, note int, allowTailOff bool) Event {
	return Event{Frame: frame, Kind: EventNoteOff, Note: note, AllowTailOff: allowTailOff}
}
