package serial

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

var ErrNilConfig = errors.New("config cannot be nil")

// uartPort is a Port over a tarm/serial device
type uartPort struct {
	dev    *serial.Port
	device string
}

// Open opens the device named in cfg
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	dev, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return &uartPort{dev: dev, device: cfg.Device}, nil
}

// Read returns 0 bytes and no error when the read timeout expires. tarm/serial
// reports an idle line as io.EOF, which would otherwise end the caller's stream.
func (p *uartPort) Read(b []byte) (int, error) {
	return idleRead(p.dev.Read(b))
}

func (p *uartPort) Write(b []byte) (int, error) {
	n, err := p.dev.Write(b)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", p.device, err)
	}
	return n, nil
}

func (p *uartPort) Close() error {
	if p.dev == nil {
		return nil
	}
	return p.dev.Close()
}

// Flush discards bytes received before the monitor attached
func (p *uartPort) Flush() error {
	return p.dev.Flush()
}

func idleRead(n int, err error) (int, error) {
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}
