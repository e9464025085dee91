// Package protocol defines the byte-level command vocabulary shared by
// the brick family: opcodes, command construction, expected reply
// lengths and the chunk-size heuristics that keep the IR/USB medium in
// sync during bulk transfers.
package protocol

// Capacity limits for a single exchange.
const (
	// MaxCmdLength bounds an outgoing command. Sized so a full
	// firmware download packet (200 data bytes plus framing) fits.
	MaxCmdLength = 256

	// MaxReplyLength bounds a stored reply, large enough for the
	// memory-map and datalog responses.
	MaxReplyLength = 256
)

// Opcode bits. Bit 3 toggles between consecutive commands so the brick
// can tell a retransmission from a new command; masking it off selects
// the command class.
const (
	OpToggleMask byte = 0x08
	OpClassMask  byte = 0xf7
)

// Opcodes. Values are the wire bytes with the toggle bit clear.
const (
	OpSetSourceValue byte = 0x05
	OpPing           byte = 0x10
	OpRead           byte = 0x12
	OpGetVersions    byte = 0x15
	OpUnlockCM       byte = 0x60
	OpGetMemMap      byte = 0x20
	OpBeginTask      byte = 0x25
	OpUploadEeprom   byte = 0x27
	OpBatteryLevel   byte = 0x30
	OpBeginSub       byte = 0x35
	OpDeleteTasks    byte = 0x40
	OpDownload       byte = 0x45
	OpStopAll        byte = 0x50
	OpPlaySound      byte = 0x51
	OpPollMemory     byte = 0x63
	OpDeleteFirmware byte = 0x65
	OpDeleteSubs     byte = 0x70
	OpBeginFirmware  byte = 0x75
	OpSelectProgram  byte = 0x91
	OpUploadDatalog  byte = 0xa4
	OpUnlock         byte = 0xa5
	OpRemote         byte = 0xd2
	OpMessage        byte = 0xf7
)
