//go:build cgo

package midiin

import (
	"fmt"
	"log/slog"

	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Driver owns the system MIDI driver.
type Driver struct {
	drv *rtmididrv.Driver
}

func NewDriver() (*Driver, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	return &Driver{drv: drv}, nil
}

// Names lists the available input ports.
func (d *Driver) Names() ([]string, error) {
	ins, err := d.drv.Ins()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

func (d *Driver) Open(prefix string, h Handler, onLost func(), logger *slog.Logger) (*Input, error) {
	ins, err := d.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	return Open(ins, prefix, h, onLost, logger)
}

func (d *Driver) Close() error {
	return d.drv.Close()
}
