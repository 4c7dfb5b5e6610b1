package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

const (
	keyCtrlC = 0x03
	keyEsc   = 0x1b
)

// ErrNotTerminal is returned by Start when stdin is not a terminal.
var ErrNotTerminal = errors.New("console: stdin is not a terminal")

// Keys reads single keystrokes from a raw-mode terminal.
type Keys struct {
	fd       int
	oldState *term.State
	done     chan struct{}
	stopped  sync.Once
}

// Start puts stdin in raw mode and delivers each key to onKey on a
// background goroutine. Done is closed when a quit key (x, Ctrl-C or Esc)
// is read or stdin ends. Call Stop to restore the terminal.
func Start(onKey func(rune)) (*Keys, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("console: raw mode: %w", err)
	}
	k := &Keys{fd: fd, oldState: old, done: make(chan struct{})}
	go func() {
		defer close(k.done)
		Read(os.Stdin, onKey)
	}()
	return k, nil
}

// Done is closed once the reader has seen a quit key or stdin has ended.
func (k *Keys) Done() <-chan struct{} { return k.done }

// Stop restores the terminal. The reader goroutine exits on the next key.
func (k *Keys) Stop() {
	k.stopped.Do(func() {
		if k.oldState != nil {
			_ = term.Restore(k.fd, k.oldState)
		}
	})
}

// Read delivers runes from r to onKey until a quit key or EOF.
func Read(r io.Reader, onKey func(rune)) {
	br := bufio.NewReader(r)
	for {
		c, _, err := br.ReadRune()
		if err != nil {
			return
		}
		if IsQuit(c) {
			return
		}
		onKey(c)
	}
}

func IsQuit(r rune) bool {
	switch r {
	case 'x', 'X', keyCtrlC, keyEsc:
		return true
	}
	return false
}
