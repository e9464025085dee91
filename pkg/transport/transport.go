// Package transport frames single request/reply exchanges with the
// brick over a pipe: preamble, complement encoding, additive checksum,
// opcode toggle bit, retries and timeouts. The link above it deals only
// in command bodies and reply payloads.
package transport

import (
	"time"

	"brickhost/rcx-go/pkg/types"
)

// Exchange timing.
const (
	// DefaultTimeout is the reply wait applied when the caller passes
	// zero.
	DefaultTimeout = 300 * time.Millisecond

	// MaxTimeout is the longest reply wait any exchange uses. Callers
	// pick it for commands the brick is slow to answer.
	MaxTimeout = 3000 * time.Millisecond

	// SendTries is the per-Send attempt budget when retry is enabled.
	SendTries = 3
)

// Transport is one request/reply exchange engine, exclusively owned by
// its Link. Send blocks until a reply of the expected length arrives or
// the timeout elapses, and returns the reply payload length (the status
// byte is not counted) or a negative error.
type Transport interface {
	Open(target types.Target, name string) types.Result
	Close()

	Send(req []byte, reply []byte, expected int, retry bool, timeout time.Duration) types.Result

	SetOmitHeader(omit bool)

	FastModeSupported() bool
	FastModeOddParity() bool
	SetFastMode(fast bool)
	FastMode() bool

	// ComplementData reports whether the transport currently follows
	// every data byte with its complement on the wire.
	ComplementData() bool
}
