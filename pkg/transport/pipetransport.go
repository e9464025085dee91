package transport

import (
	"time"

	"brickhost/rcx-go/pkg/internal/logger"
	"brickhost/rcx-go/pkg/pipe"
	"brickhost/rcx-go/pkg/protocol"
	"brickhost/rcx-go/pkg/types"
)

// Wire preambles. The slow regime announces a frame with the full sync
// sequence; fast mode keeps only the final sync byte.
var (
	preambleSlow = []byte{0x55, 0xff, 0x00}
	preambleFast = []byte{0xff}
)

// PipeTransport frames exchanges over any Pipe backend.
type PipeTransport struct {
	pipe pipe.Pipe
	log  logger.Logger

	target     types.Target
	open       bool
	omitHeader bool
	fastMode   bool

	// toggle is XORed into the opcode and flipped after every completed
	// exchange; retries inside one Send keep it so the brick can drop
	// duplicates.
	toggle byte
}

// NewPipeTransport creates a transport over the given pipe.
func NewPipeTransport(p pipe.Pipe, log logger.Logger) *PipeTransport {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &PipeTransport{pipe: p, log: log}
}

// Open opens the underlying pipe.
func (t *PipeTransport) Open(target types.Target, name string) types.Result {
	if err := t.pipe.Open(name); err != nil {
		t.log.Error("transport open failed: %v", err)
		return types.OpenError
	}

	t.target = target
	t.open = true
	t.fastMode = false
	t.toggle = 0
	t.log.Debug("transport open: target=%s device=%q", target, name)
	return types.ResultOK
}

// Close closes the underlying pipe.
func (t *PipeTransport) Close() {
	if !t.open {
		return
	}
	if err := t.pipe.Close(); err != nil {
		t.log.Warn("transport close: %v", err)
	}
	t.open = false
}

// SetOmitHeader controls whether frames carry the sync preamble.
func (t *PipeTransport) SetOmitHeader(omit bool) {
	t.omitHeader = omit
}

// FastModeSupported implements Transport.FastModeSupported
func (t *PipeTransport) FastModeSupported() bool {
	return t.pipe.Capabilities()&pipe.CapFastMode != 0
}

// FastModeOddParity implements Transport.FastModeOddParity
func (t *PipeTransport) FastModeOddParity() bool {
	return t.pipe.Capabilities()&pipe.CapFastOddParity != 0
}

// SetFastMode switches the framing and the pipe between regimes.
func (t *PipeTransport) SetFastMode(fast bool) {
	if t.fastMode == fast {
		return
	}
	if err := t.pipe.SetFastMode(fast); err != nil {
		t.log.Warn("fast mode switch: %v", err)
		return
	}
	t.fastMode = fast
}

// FastMode implements Transport.FastMode
func (t *PipeTransport) FastMode() bool {
	return t.fastMode
}

// ComplementData implements Transport.ComplementData. Complement
// encoding rides only on the slow regime.
func (t *PipeTransport) ComplementData() bool {
	return !t.fastMode
}

// Send performs one exchange: frame req, write it, collect a reply of
// exactly expected body bytes, validate, and copy the body into reply.
// It returns the payload length (expected minus the status byte) or a
// negative error. With expected 0 the command is fire-and-forget.
func (t *PipeTransport) Send(req []byte, reply []byte, expected int, retry bool, timeout time.Duration) types.Result {
	if !t.open {
		return types.OpenError
	}
	if expected > len(reply) {
		return types.RequestError
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	body := make([]byte, len(req))
	copy(body, req)
	if len(body) > 0 {
		body[0] ^= t.toggle
	}
	frame := t.buildFrame(body)

	tries := 1
	if retry {
		tries = SendTries
	}

	result := types.NoResponseError
	for attempt := 0; attempt < tries; attempt++ {
		if _, err := t.pipe.Write(frame); err != nil {
			t.log.Error("write failed: %v", err)
			result = types.OpenError
			continue
		}

		if expected <= 0 {
			t.toggle ^= protocol.OpToggleMask
			return types.ResultOK
		}

		res := t.receive(reply, expected, len(frame), timeout)
		if !res.IsError() {
			t.toggle ^= protocol.OpToggleMask
			return res
		}
		result = res
		t.log.Debug("exchange attempt %d failed: %s", attempt+1, res)
	}

	return result
}

// buildFrame wraps a command body in the current wire framing.
func (t *PipeTransport) buildFrame(body []byte) []byte {
	buf := make([]byte, 0, 3+2*len(body)+2)

	if !t.omitHeader {
		if t.fastMode {
			buf = append(buf, preambleFast...)
		} else {
			buf = append(buf, preambleSlow...)
		}
	}

	var sum byte
	for _, b := range body {
		buf = append(buf, b)
		if !t.fastMode {
			buf = append(buf, ^b)
		}
		sum += b
	}

	buf = append(buf, sum)
	if !t.fastMode {
		buf = append(buf, ^sum)
	}
	return buf
}

// receive collects and validates one reply frame of expected body bytes.
func (t *PipeTransport) receive(reply []byte, expected, echoLen int, timeout time.Duration) types.Result {
	deadline := time.Now().Add(timeout)

	// A half-duplex medium hears our own transmission first.
	if t.pipe.Capabilities()&pipe.CapHalfDuplex != 0 {
		echo := make([]byte, echoLen)
		if !t.readFull(echo, deadline) {
			return types.NoResponseError
		}
	}

	if !t.omitHeader {
		pre := preambleSlow
		if t.fastMode {
			pre = preambleFast
		}
		if !t.huntPreamble(pre, deadline) {
			return types.NoResponseError
		}
	}

	perByte := 1
	if !t.fastMode {
		perByte = 2
	}
	raw := make([]byte, expected*perByte+perByte)
	if !t.readFull(raw, deadline) {
		return types.NoResponseError
	}

	var sum byte
	for i := 0; i < expected; i++ {
		b := raw[i*perByte]
		if !t.fastMode && raw[i*perByte+1] != ^b {
			t.log.Debug("complement mismatch at reply byte %d", i)
			return types.NoResponseError
		}
		reply[i] = b
		sum += b
	}

	check := raw[expected*perByte]
	if check != sum || (!t.fastMode && raw[expected*perByte+1] != ^check) {
		t.log.Debug("reply checksum mismatch: got %#02x want %#02x", check, sum)
		return types.NoResponseError
	}

	return types.Result(expected - 1)
}

// huntPreamble consumes bytes until the preamble sequence appears.
func (t *PipeTransport) huntPreamble(pre []byte, deadline time.Time) bool {
	matched := 0
	var b [1]byte

	for matched < len(pre) {
		remain := time.Until(deadline)
		if remain <= 0 {
			return false
		}

		n, err := t.pipe.Read(b[:], remain)
		if err != nil || n == 0 {
			return false
		}

		switch {
		case b[0] == pre[matched]:
			matched++
		case b[0] == pre[0]:
			matched = 1
		default:
			matched = 0
		}
	}
	return true
}

// readFull reads len(buf) bytes before the deadline.
func (t *PipeTransport) readFull(buf []byte, deadline time.Time) bool {
	off := 0
	for off < len(buf) {
		remain := time.Until(deadline)
		if remain <= 0 {
			return false
		}

		n, err := t.pipe.Read(buf[off:], remain)
		if err != nil && err != pipe.ErrTimeout {
			return false
		}
		if n == 0 {
			return false
		}
		off += n
	}
	return true
}
