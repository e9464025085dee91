package protocol

import "brickhost/rcx-go/pkg/types"

// ExpectedReplyLength predicts the reply length in bytes (status byte
// included) for an outgoing command. The transport reads exactly this
// many body bytes before checking the frame.
//
// Message and remote-control commands are unconfirmed on the wire, but
// they have always fallen through to the default here and callers have
// come to depend on the single-byte wait.
func ExpectedReplyLength(target types.Target, cmd []byte) int {
	if len(cmd) == 0 {
		return 0
	}

	switch cmd[0] & OpClassMask {
	case OpBeginTask, OpBeginSub, OpDownload, OpBeginFirmware:
		return 2
	case OpBatteryLevel, OpRead:
		return 3
	case OpGetVersions:
		return 9
	case OpUploadEeprom:
		if target == types.TargetCyberMaster {
			return 1
		}
		return 17
	case OpUnlock:
		return 26
	case OpGetMemMap:
		if target == types.TargetCyberMaster {
			return 21
		}
		return 189
	case OpPollMemory:
		if len(cmd) != 4 {
			return 0
		}
		return int(cmd[3]) + 1
	case OpUploadDatalog:
		if len(cmd) != 5 {
			return 0
		}
		return (int(cmd[3])|int(cmd[4])<<8)*3 + 1
	default:
		return 1
	}
}
