//go:build !cgo

package midiin

import (
	"errors"
	"log/slog"
)

var errNoCgo = errors.New("MIDI input requires a cgo build")

type Driver struct{}

func NewDriver() (*Driver, error) {
	return nil, errNoCgo
}

func (d *Driver) Names() ([]string, error) { return nil, errNoCgo }

func (d *Driver) Open(prefix string, h Handler, onLost func(), logger *slog.Logger) (*Input, error) {
	return nil, errNoCgo
}

func (d *Driver) Close() error { return nil }
