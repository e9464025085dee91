package link

import (
	"time"

	"brickhost/rcx-go/pkg/protocol"
	"brickhost/rcx-go/pkg/transport"
	"brickhost/rcx-go/pkg/types"
)

// Sync establishes the session if needed: a ping, then the
// variant-specific unlock preamble. Idempotent; every public operation
// calls it first.
func (l *Link) Sync() types.Result {
	if l.synced {
		return types.ResultOK
	}

	if res := l.Send(protocol.MakePing()); res.IsError() {
		return res
	}

	switch l.target {
	case types.TargetCyberMaster:
		if res := l.Send(protocol.MakeUnlockCM()); res.IsError() {
			return res
		}
	case types.TargetScout:
		if res := l.Send(protocol.MakeUnlock()); res.IsError() {
			return res
		}
		if res := l.Send(protocol.NewCmd().Set(0x47, 0x80)); res.IsError() {
			return res
		}
	}

	l.synced = true
	return types.ResultOK
}

// Send issues one command with the default retry and timeout policy.
func (l *Link) Send(cmd *protocol.Cmd) types.Result {
	return l.SendTimeout(cmd, true, 0)
}

// SendTimeout issues one command. The expected reply length is derived
// from the opcode; oversized requests or predictions are rejected
// before touching the wire. The outcome is stored for the reply
// accessors.
func (l *Link) SendTimeout(cmd *protocol.Cmd, retry bool, timeout time.Duration) types.Result {
	body := cmd.Body()
	expected := protocol.ExpectedReplyLength(l.target, body)

	if len(body) > protocol.MaxCmdLength || expected > protocol.MaxReplyLength {
		return types.RequestError
	}

	l.lastResult = l.tr.Send(body, l.reply[:], expected, retry, timeout)
	return l.lastResult
}

// ReplyByte returns payload byte i of the stored reply, or 0 when i is
// out of range or the last exchange failed.
func (l *Link) ReplyByte(i int) byte {
	if l.lastResult < 0 || i < 0 || i >= int(l.lastResult) {
		return 0
	}
	return l.reply[i+1]
}

// Reply copies the stored reply payload into buf and returns the number
// of bytes copied, or the last error.
func (l *Link) Reply(buf []byte) types.Result {
	if l.lastResult < 0 {
		return l.lastResult
	}

	n := int(l.lastResult)
	if n > len(buf) {
		n = len(buf)
	}
	copy(buf, l.reply[1:1+n])
	return types.Result(n)
}

// WasErrorFromMissingFirmware probes whether a failure is explained by
// the brick running ROM only. It re-issues the version query with the
// maximum timeout and reports true iff the firmware version word reads
// all zeros. Only meaningful for firmware-carrying targets after a
// successful sync.
func (l *Link) WasErrorFromMissingFirmware() bool {
	if !l.target.NeedsFirmware() {
		return false
	}
	if !l.synced {
		return false
	}

	res := l.SendTimeout(protocol.MakeGetVersions(), true, transport.MaxTimeout)
	if res != 8 {
		return false
	}

	for i := 4; i < 8; i++ {
		if l.ReplyByte(i) != 0 {
			return false
		}
	}
	return true
}
