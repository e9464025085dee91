package link

import (
	"brickhost/rcx-go/pkg/image"
	"brickhost/rcx-go/pkg/protocol"
	"brickhost/rcx-go/pkg/transport"
	"brickhost/rcx-go/pkg/types"
)

// Firmware geometry.
const (
	// firmwareChecksumSpan caps the byte range the announced checksum
	// covers.
	firmwareChecksumSpan = 0x4c00

	// nubStart is where the fast-download nub loads.
	nubStart = 0x8000

	// spyboticsStart is the load address of a flattened Spybotics
	// program.
	spyboticsStart = 0x0100
)

// Download transfers a program image into the given program slot
// (1-based; 0 keeps the current slot). Spybotics bricks take the whole
// image as one flattened transfer; everything else goes chunk by chunk.
func (l *Link) Download(img *image.Image, programNumber int) types.Result {
	if res := l.Sync(); res.IsError() {
		return res
	}

	if res := l.Send(protocol.MakeStopAll()); res.IsError() {
		return res
	}

	var res types.Result
	if l.target == types.TargetSpybotics {
		res = l.downloadSpybotics(img)
	} else {
		res = l.downloadByChunk(img, programNumber)
	}
	if res.IsError() {
		return res
	}

	if !l.cfg.Quiet {
		l.Send(protocol.MakePlaySound(5))
	}
	return types.ResultOK
}

// downloadByChunk clears the target slot and walks the image chunk by
// chunk. Program mode marks every trailing packet for the chunk loop
// and is restored on every exit path.
func (l *Link) downloadByChunk(img *image.Image, programNumber int) types.Result {
	l.programMode = true
	defer func() { l.programMode = false }()

	if programNumber != 0 {
		if res := l.Send(protocol.MakeSelectProgram(uint8(programNumber - 1))); res.IsError() {
			return res
		}
	}

	if res := l.Send(protocol.MakeDeleteTasks()); res.IsError() {
		return res
	}
	if res := l.Send(protocol.MakeDeleteSubs()); res.IsError() {
		return res
	}

	total := img.Size()
	for i := 0; i < img.ChunkCount(); i++ {
		c := img.Chunk(i)
		t := -1
		if i == 0 {
			t = total
		}
		if res := l.downloadChunk(c.Type, c.Number, c.Data, t); res.IsError() {
			return res
		}
	}

	return types.ResultOK
}

// downloadChunk opens one chunk with Begin and streams its payload.
// total seeds the progress tracker on the first chunk of an image; -1
// leaves the running tracker alone, 0 means "just this chunk".
func (l *Link) downloadChunk(t image.ChunkType, number uint8, data []byte, total int) types.Result {
	if res := l.Sync(); res.IsError() {
		return res
	}

	res := l.Send(protocol.MakeBegin(t, number, uint16(len(data))))
	if res.IsError() {
		return res
	}
	if res != 1 || l.ReplyByte(0) != 0 {
		return types.MemFullError
	}

	if total == 0 {
		total = len(data)
	}
	if total > 0 {
		l.progress.begin(total)
	}

	return l.download(data, l.cfg.ProgramChunkSize)
}

// downloadSpybotics flattens the image and pushes it as one
// firmware-style transfer. The caller has already synced.
func (l *Link) downloadSpybotics(img *image.Image) types.Result {
	blob := image.Flatten(img)
	check := protocol.Checksum(blob)

	res := l.Send(protocol.MakeBeginFirmware(spyboticsStart, check))
	if res.IsError() {
		return res
	}

	l.progress.begin(len(blob))

	chunk := spyboticsChunkSerial
	if l.onUSB {
		chunk = spyboticsChunkUSB
	}
	return l.download(blob, chunk)
}

// DownloadFirmware transfers a firmware blob to the given start
// address. In fast mode the transport is primed with the on-brick nub
// first, then switched to the fast regime for the main payload.
func (l *Link) DownloadFirmware(data []byte, start int, fast bool) types.Result {
	if fast {
		if !l.tr.FastModeSupported() {
			return types.PipeModeError
		}

		nub := fastdlNub
		if l.tr.FastModeOddParity() {
			nub = fastdlNubOdd
		}
		if res := l.transferFirmware(nub, nubStart, false); res.IsError() {
			return res
		}

		l.tr.SetFastMode(true)
		res := l.transferFirmware(data, start, true)
		l.tr.SetFastMode(false)
		return res
	}

	return l.transferFirmware(data, start, true)
}

// transferFirmware erases, announces and streams one firmware payload,
// finishing with the unlock handshake.
func (l *Link) transferFirmware(data []byte, start int, progress bool) types.Result {
	if res := l.Sync(); res.IsError() {
		return res
	}

	if res := l.Send(protocol.MakeDeleteFirmware()); res.IsError() {
		return res
	}

	span := len(data)
	if span > firmwareChecksumSpan {
		span = firmwareChecksumSpan
	}
	check := protocol.Checksum(data[:span])

	if res := l.Send(protocol.MakeBeginFirmware(uint16(start), check)); res.IsError() {
		return res
	}

	total := 0
	if progress {
		total = len(data)
	}
	l.progress.begin(total)

	if res := l.download(data, l.cfg.FirmwareChunkSize); res.IsError() {
		return res
	}

	// The brick has little time to answer the finishing unlock: one
	// attempt with the longest wait, and nothing after it that could
	// trample the reply.
	res := l.SendTimeout(protocol.MakeUnlock(), false, transport.MaxTimeout)
	if l.tr.FastMode() {
		return types.ResultOK
	}
	return res
}

// download is the shared chunk loop: sequence the payload into packets,
// shrinking each one when its bytes would desynchronize the medium.
// Every packet except the last carries a running sequence number; the
// last carries 0 during program downloads or when sounds are enabled.
func (l *Link) download(data []byte, chunk int) types.Result {
	seq := uint16(1)
	remain := len(data)
	off := 0

	for remain > 0 {
		var n int
		if remain <= chunk {
			if !l.cfg.Quiet || l.programMode {
				seq = 0
			}
			n = remain
		} else {
			n = chunk
		}

		n = protocol.AdjustChunkSize(n, data[off:], l.tr.ComplementData(), l.maxZeros, l.cfg.MaxOnes)
		if n < remain && n < chunk {
			l.log.Debug("chunk shortened to %d bytes", n)
		}

		res := l.SendTimeout(protocol.MakeDownload(seq, data[off:off+n]), true, l.cfg.DownloadWait)
		seq++
		if res.IsError() {
			return res
		}

		remain -= n
		off += n
		if !l.progress.increment(n) {
			return types.AbortError
		}
	}

	return types.ResultOK
}
