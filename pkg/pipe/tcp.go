package pipe

import (
	"fmt"
	"net"
	"time"
)

// DefaultTCPAddress is used when a tcp: device name carries no address.
const DefaultTCPAddress = "localhost:2000"

const tcpDialTimeout = 10 * time.Second

// TCPPipe bridges the link to a remote tower daemon over TCP.
type TCPPipe struct {
	conn net.Conn
}

// NewTCPPipe creates a TCP bridge pipe.
func NewTCPPipe() *TCPPipe {
	return &TCPPipe{}
}

// Open dials the given host:port, or the default when name is empty.
func (t *TCPPipe) Open(name string) error {
	if name == "" {
		name = DefaultTCPAddress
	}

	conn, err := net.DialTimeout("tcp", name, tcpDialTimeout)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", name, err)
	}

	t.conn = conn
	return nil
}

// Close closes the connection.
func (t *TCPPipe) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// Read reads up to len(p) bytes, waiting at most timeout.
func (t *TCPPipe) Read(p []byte, timeout time.Duration) (int, error) {
	if t.conn == nil {
		return 0, ErrNotOpen
	}

	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}

	n, err := t.conn.Read(p)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return n, ErrTimeout
		}
		return n, err
	}
	return n, nil
}

// Write writes p to the connection.
func (t *TCPPipe) Write(p []byte) (int, error) {
	if t.conn == nil {
		return 0, ErrNotOpen
	}
	return t.conn.Write(p)
}

// Capabilities implements Pipe.Capabilities
func (t *TCPPipe) Capabilities() Caps {
	return 0
}

// SetFastMode implements Pipe.SetFastMode. The bridge negotiates no
// line speed of its own.
func (t *TCPPipe) SetFastMode(fast bool) error {
	if !fast {
		return nil
	}
	return ErrUnsupported
}
