package stream

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is used when no baud rate is configured.
const DefaultBaudRate = 115200

// ErrReadTimeout is returned when a serial read times out.
var ErrReadTimeout = errors.New("stream: serial read timeout")

// serialPort adapts serial.Port, which reports a read timeout as (0, nil),
// to the io.Reader contract expected by io.ReadFull.
type serialPort struct {
	serial.Port
}

func (p serialPort) Read(b []byte) (int, error) {
	n, err := p.Port.Read(b)
	if n == 0 && err == nil && len(b) > 0 {
		return 0, ErrReadTimeout
	}
	return n, err
}

// OpenSerial opens a serial line speaking the length-prefixed APDU framing.
// A positive timeout bounds every read.
func OpenSerial(path string, baud int, timeout time.Duration) (*Session, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", path, err)
	}
	if timeout > 0 {
		if err := port.SetReadTimeout(timeout); err != nil {
			port.Close()
			return nil, fmt.Errorf("set serial timeout: %w", err)
		}
	}
	return NewSession(serialPort{port}, timeout), nil
}
