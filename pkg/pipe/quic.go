package pipe

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/quic-go/quic-go"
)

const quicDialTimeout = 10 * time.Second

// QUICPipe bridges the link to a remote tower daemon over a single QUIC
// stream. The daemon terminates the stream on its own serial or USB
// tower.
type QUICPipe struct {
	conn   *quic.Conn
	stream *quic.Stream
}

// NewQUICPipe creates a QUIC bridge pipe.
func NewQUICPipe() *QUICPipe {
	return &QUICPipe{}
}

// Open dials the given host:port and opens the command stream, or the
// default address when name is empty.
func (q *QUICPipe) Open(name string) error {
	if name == "" {
		name = DefaultTCPAddress
	}

	// Tower daemons run with self-signed certificates.
	tlsConf := &tls.Config{
		InsecureSkipVerify: true,
		NextProtos:         []string{"rcx-pipe"},
	}

	ctx, cancel := context.WithTimeout(context.Background(), quicDialTimeout)
	defer cancel()

	conn, err := quic.DialAddr(ctx, name, tlsConf, nil)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", name, err)
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		conn.CloseWithError(0, "failed to open stream")
		return fmt.Errorf("open stream to %s: %w", name, err)
	}

	q.conn = conn
	q.stream = stream
	return nil
}

// Close closes the stream and the connection.
func (q *QUICPipe) Close() error {
	if q.stream != nil {
		q.stream.Close()
		q.stream = nil
	}
	if q.conn != nil {
		err := q.conn.CloseWithError(0, "pipe closed")
		q.conn = nil
		return err
	}
	return nil
}

// Read reads up to len(p) bytes, waiting at most timeout.
func (q *QUICPipe) Read(p []byte, timeout time.Duration) (int, error) {
	if q.stream == nil {
		return 0, ErrNotOpen
	}

	if err := q.stream.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}

	n, err := q.stream.Read(p)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return n, ErrTimeout
		}
		return n, err
	}
	return n, nil
}

// Write writes p to the stream.
func (q *QUICPipe) Write(p []byte) (int, error) {
	if q.stream == nil {
		return 0, ErrNotOpen
	}
	return q.stream.Write(p)
}

// Capabilities implements Pipe.Capabilities
func (q *QUICPipe) Capabilities() Caps {
	return 0
}

// SetFastMode implements Pipe.SetFastMode.
func (q *QUICPipe) SetFastMode(fast bool) error {
	if !fast {
		return nil
	}
	return ErrUnsupported
}
