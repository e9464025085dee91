package pipe

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DefaultSerialDevice is the compiled-in serial tower device.
const DefaultSerialDevice = "/dev/ttyS0"

// Tower line disciplines. The IR tower runs 2400 8o1; fast mode doubles
// the rate and drops parity.
var (
	serialSlowMode = serial.Mode{BaudRate: 2400, DataBits: 8, Parity: serial.OddParity, StopBits: serial.OneStopBit}
	serialFastMode = serial.Mode{BaudRate: 4800, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
)

// SerialPipe drives the serial IR tower. The tower transceiver hears its
// own transmissions, so the pipe is half duplex.
type SerialPipe struct {
	port serial.Port
	fast bool
}

// NewSerialPipe creates a serial tower pipe.
func NewSerialPipe() *SerialPipe {
	return &SerialPipe{}
}

// Open opens the named serial device, or the default when name is empty.
func (s *SerialPipe) Open(name string) error {
	if name == "" {
		name = DefaultSerialDevice
	}

	mode := serialSlowMode
	port, err := serial.Open(name, &mode)
	if err != nil {
		return fmt.Errorf("open serial device %s: %w", name, err)
	}

	s.port = port
	s.fast = false
	return nil
}

// Close closes the serial port.
func (s *SerialPipe) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

// Read reads up to len(p) bytes, waiting at most timeout.
func (s *SerialPipe) Read(p []byte, timeout time.Duration) (int, error) {
	if s.port == nil {
		return 0, ErrNotOpen
	}

	if err := s.port.SetReadTimeout(timeout); err != nil {
		return 0, err
	}

	n, err := s.port.Read(p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, ErrTimeout
	}
	return n, nil
}

// Write writes p to the serial port.
func (s *SerialPipe) Write(p []byte) (int, error) {
	if s.port == nil {
		return 0, ErrNotOpen
	}
	return s.port.Write(p)
}

// Capabilities implements Pipe.Capabilities
func (s *SerialPipe) Capabilities() Caps {
	return CapFastMode | CapHalfDuplex
}

// SetFastMode switches the line discipline between the slow and fast
// regimes.
func (s *SerialPipe) SetFastMode(fast bool) error {
	if s.port == nil {
		return ErrNotOpen
	}

	mode := serialSlowMode
	if fast {
		mode = serialFastMode
	}
	if err := s.port.SetMode(&mode); err != nil {
		return err
	}
	s.fast = fast
	return nil
}
