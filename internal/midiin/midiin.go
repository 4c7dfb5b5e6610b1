package midiin

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Handler receives decoded notes. It runs on the driver's callback
// goroutine and must not block.
type Handler func(on bool, note int, velocity float64)

// Decode extracts a note start or end from a MIDI message. NoteOn with
// velocity 0 counts as a note end.
func Decode(msg midi.Message) (on bool, note int, velocity float64, ok bool) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return true, int(key), float64(vel) / 127, true
	case msg.GetNoteEnd(&ch, &key):
		return false, int(key), 0, true
	}
	return false, 0, 0, false
}

// SelectName picks the first name starting with prefix (case-insensitive),
// or the first name when prefix is empty.
func SelectName(names []string, prefix string) (int, bool) {
	if len(names) == 0 {
		return -1, false
	}
	if prefix == "" {
		return 0, true
	}
	prefix = strings.ToLower(prefix)
	for i, n := range names {
		if strings.HasPrefix(strings.ToLower(n), prefix) {
			return i, true
		}
	}
	return -1, false
}

// Input is an open MIDI input port forwarding notes to a Handler.
type Input struct {
	mu     sync.Mutex
	in     drivers.In
	stop   func()
	name   string
	logger *slog.Logger
}

// Listen opens in and starts forwarding notes. onLost, if set, is called
// from a new goroutine when the driver reports a listener error.
func Listen(in drivers.In, h Handler, onLost func(), logger *slog.Logger) (*Input, error) {
	if logger == nil {
		logger = slog.Default()
	}
	name := in.String()
	if !in.IsOpen() {
		if err := in.Open(); err != nil {
			return nil, fmt.Errorf("open %q: %w", name, err)
		}
	}
	i := &Input{in: in, name: name, logger: logger}
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		on, note, vel, ok := Decode(msg)
		if !ok {
			return
		}
		h(on, note, vel)
	}, midi.HandleError(func(listenErr error) {
		logger.Warn("midi: listener error", "device", name, "err", listenErr)
		if onLost != nil {
			go onLost()
		}
	}))
	if err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("listen %q: %w", name, err)
	}
	i.stop = stop
	logger.Info("midi: connected", "device", name)
	return i, nil
}

func (i *Input) Name() string { return i.name }

func (i *Input) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.stop != nil {
		i.stop()
		i.stop = nil
	}
	if i.in == nil {
		return nil
	}
	err := i.in.Close()
	i.in = nil
	return err
}

// Open picks an input from ins by name prefix and starts listening.
func Open(ins []drivers.In, prefix string, h Handler, onLost func(), logger *slog.Logger) (*Input, error) {
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	idx, ok := SelectName(names, prefix)
	if !ok {
		if prefix == "" {
			return nil, fmt.Errorf("no MIDI inputs available")
		}
		return nil, fmt.Errorf("no MIDI input matching %q (have %s)", prefix, strings.Join(names, ", "))
	}
	return Listen(ins[idx], h, onLost, logger)
}
