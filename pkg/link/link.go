// Package link drives one brick over one transport: session
// synchronization, command exchanges, program and firmware downloads,
// and the small query surface (versions, values, battery).
//
// A Link is created idle, bound to a device by Open, and strictly
// single-threaded: every operation blocks until the brick answers or
// the transport gives up.
package link

import (
	"time"

	"brickhost/rcx-go/pkg/internal/logger"
	"brickhost/rcx-go/pkg/pipe"
	"brickhost/rcx-go/pkg/protocol"
	"brickhost/rcx-go/pkg/transport"
	"brickhost/rcx-go/pkg/types"
)

// Chunk-loop defaults.
const (
	defaultProgramChunk  = 20
	defaultFirmwareChunk = 200
	defaultDownloadWait  = 300 * time.Millisecond

	// Zero-run tolerances per medium.
	maxZerosUSB    = 23
	maxZerosSerial = 30

	// Sparse-byte tolerance for fast transfers.
	defaultMaxOnes = 90

	// Spybotics bricks keep much tighter per-packet timing.
	spyboticsChunkUSB    = 2
	spyboticsChunkSerial = 16
)

// ProgressFunc observes a running download. Returning false aborts the
// transfer after the in-flight packet.
type ProgressFunc func(soFar, total, delta int) bool

// Config configures a Link.
type Config struct {
	// Quiet suppresses the completion sound and changes the final
	// packet's sequence numbering outside of program downloads.
	Quiet bool

	// Verbose raises the log level to debug on the default logger.
	Verbose bool

	// OmitHeader drops the frame preamble on the wire.
	OmitHeader bool

	// ProgramChunkSize is the packet payload size for program
	// downloads. Default 20.
	ProgramChunkSize int

	// FirmwareChunkSize is the packet payload size for firmware
	// downloads. Default 200.
	FirmwareChunkSize int

	// DownloadWait is the per-packet reply timeout during downloads.
	// Default 300ms.
	DownloadWait time.Duration

	// MaxOnes overrides the sparse-byte tolerance. Default 90.
	MaxOnes int

	// OnProgress observes downloads and may cancel them.
	OnProgress ProgressFunc

	// Logger receives link and transport diagnostics. Nil runs silent
	// unless Verbose is set.
	Logger logger.Logger
}

// DefaultConfig returns a Config with the standard chunk sizes and
// timing filled in.
func DefaultConfig() Config {
	return Config{
		ProgramChunkSize:  defaultProgramChunk,
		FirmwareChunkSize: defaultFirmwareChunk,
		DownloadWait:      defaultDownloadWait,
		MaxOnes:           defaultMaxOnes,
	}
}

// Link is the operation surface over one brick.
type Link struct {
	cfg Config
	log logger.Logger

	target types.Target
	tr     transport.Transport

	onUSB    bool
	maxZeros int

	synced      bool
	programMode bool

	lastResult types.Result
	reply      [protocol.MaxReplyLength]byte

	progress progressTracker
}

// New creates an idle Link. Zero-valued chunk sizes and timing in cfg
// are replaced by the defaults.
func New(cfg Config) *Link {
	if cfg.ProgramChunkSize <= 0 {
		cfg.ProgramChunkSize = defaultProgramChunk
	}
	if cfg.FirmwareChunkSize <= 0 {
		cfg.FirmwareChunkSize = defaultFirmwareChunk
	}
	if cfg.DownloadWait <= 0 {
		cfg.DownloadWait = defaultDownloadWait
	}
	if cfg.MaxOnes <= 0 {
		cfg.MaxOnes = defaultMaxOnes
	}

	log := cfg.Logger
	if log == nil {
		if cfg.Verbose {
			log = logger.NewDefaultLogger(logger.LevelDebug)
		} else {
			log = logger.NewNoOpLogger()
		}
	}

	l := &Link{cfg: cfg, log: log}
	l.progress.fn = cfg.OnProgress
	return l
}

// Open resolves the device name (§ device scheme), constructs the
// matching pipe and transport, and binds the link to the target brick.
// No wire traffic is issued except the Spybotics ping mute.
func (l *Link) Open(target types.Target, name string) types.Result {
	name = ResolveDeviceName(name)
	l.target = target
	l.onUSB = false

	var (
		p   pipe.Pipe
		dev string
	)

	if rest, ok := CheckPrefix(name, "usb"); ok {
		up, err := pipe.NewUSBTowerPipe()
		if err != nil {
			l.log.Error("usb: %v", err)
			return types.USBUnsupportedError
		}
		p, dev = up, rest
		l.onUSB = true
	} else if rest, ok := CheckPrefix(name, "tcp"); ok {
		p, dev = pipe.NewTCPPipe(), rest
	} else if rest, ok := CheckPrefix(name, "quic"); ok {
		p, dev = pipe.NewQUICPipe(), rest
	} else {
		if rest, ok := CheckPrefix(name, "serial"); ok {
			dev = rest
		} else {
			dev = name
		}
		p = pipe.NewSerialPipe()
	}

	tr := transport.NewPipeTransport(p, l.log)
	tr.SetOmitHeader(l.cfg.OmitHeader)

	if res := tr.Open(target, dev); res.IsError() {
		return res
	}
	l.tr = tr

	if target == types.TargetSpybotics {
		// Mute the brick's own periodic ping before anything else.
		mute := protocol.MakeSet(
			types.NewValue(types.SourceSpybotPingCtrl, 1),
			types.NewValue(types.SourceConstant, 0))
		if res := l.Send(mute); res.IsError() {
			return res
		}
	}

	l.maxZeros = maxZerosSerial
	if l.onUSB {
		l.maxZeros = maxZerosUSB
	}

	l.synced = false
	l.lastResult = types.ResultOK
	l.log.Info("link open: target=%s device=%q", target, name)
	return types.ResultOK
}

// Close releases the transport and returns the link to idle.
func (l *Link) Close() {
	if l.tr != nil {
		l.tr.Close()
		l.tr = nil
	}
	l.synced = false
}

// Target returns the brick variant the link is bound to.
func (l *Link) Target() types.Target {
	return l.target
}

// Synced reports whether the session handshake has completed since the
// last Open or Close. A failed exchange after the handshake does not
// reset it.
func (l *Link) Synced() bool {
	return l.synced
}

// LastResult returns the outcome of the most recent Send.
func (l *Link) LastResult() types.Result {
	return l.lastResult
}

// GetVersion queries the brick's ROM and firmware version words.
func (l *Link) GetVersion() (rom, ram uint32, result types.Result) {
	if res := l.Sync(); res.IsError() {
		return 0, 0, res
	}

	res := l.Send(protocol.MakeGetVersions())
	if res.IsError() {
		return 0, 0, res
	}
	if res != 8 {
		return 0, 0, types.ReplyError
	}

	var reply [8]byte
	l.Reply(reply[:])

	rom = uint32(reply[0])<<24 | uint32(reply[1])<<16 | uint32(reply[2])<<8 | uint32(reply[3])
	ram = uint32(reply[4])<<24 | uint32(reply[5])<<16 | uint32(reply[6])<<8 | uint32(reply[7])
	return rom, ram, types.ResultOK
}

// GetValue polls one value on the brick. A non-negative result is the
// raw unsigned 16-bit reading (0..65535), so it never overlaps the
// negative error codes; a signed reading with bit 15 set comes back as
// a value above 32767 and the caller reinterprets it.
func (l *Link) GetValue(v types.Value) types.Result {
	if res := l.Sync(); res.IsError() {
		return res
	}

	res := l.Send(protocol.MakeRead(v))
	if res.IsError() {
		return res
	}
	if res != 2 {
		return types.ReplyError
	}

	return types.Result(int32(l.ReplyByte(0)) | int32(l.ReplyByte(1))<<8)
}

// GetBatteryLevel returns the battery voltage in millivolts.
func (l *Link) GetBatteryLevel() types.Result {
	if res := l.Sync(); res.IsError() {
		return res
	}

	if l.target == types.TargetScout {
		res := l.Send(protocol.NewCmd().Set(protocol.OpPollMemory, 0x3a, 0x01, 0x01))
		if res != 1 {
			return types.ReplyError
		}
		return types.Result(int32(l.ReplyByte(0)) * 109)
	}

	res := l.Send(protocol.NewCmd().Set(protocol.OpBatteryLevel))
	if res != 2 {
		return types.ReplyError
	}
	return types.Result(int32(l.ReplyByte(0)) | int32(l.ReplyByte(1))<<8)
}
