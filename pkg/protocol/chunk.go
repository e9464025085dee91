package protocol

import "math/bits"

// onesDensity[b] is the popcount of byte b.
var onesDensity [256]uint8

func init() {
	for i := range onesDensity {
		onesDensity[i] = uint8(bits.OnesCount8(uint8(i)))
	}
}

// A sparse byte carries fewer than 3 set bits.
const (
	denseThreshold     = 3
	onesPlusMinusScore = 3
)

// AdjustChunkSize returns a packet length no larger than n that keeps
// the outgoing byte stream free of patterns the medium loses sync on:
// long runs of zeros, and long stretches of sparse bytes at fast
// transfer speeds. When the transport complements every byte the wire
// never sees such runs and n is returned unchanged.
//
// The sparse-byte clamp never returns less than maxOnes even when the
// stretch starts earlier; downloads stall without that minimum step.
func AdjustChunkSize(n int, data []byte, complement bool, maxZeros, maxOnes int) int {
	size := n
	if complement {
		return size
	}

	for i := 0; i < size-maxZeros; i++ {
		if data[i] != 0 {
			continue
		}

		// Found a zero; measure the run.
		j := 0
		for ; j < maxZeros; j++ {
			if data[i+j] != 0 {
				break
			}
		}

		if j >= maxZeros {
			size = i + maxZeros
			break
		}
	}

	for i := 0; i < size-maxOnes; i++ {
		if onesDensity[data[i]] >= denseThreshold {
			continue
		}

		// Found a sparse byte; scan ahead, letting dense bytes earn
		// the run back out of trouble.
		score := 0
		j := 0
		for ; j < maxOnes; j++ {
			if onesDensity[data[i+j]] >= denseThreshold {
				score++
				if score > onesPlusMinusScore {
					break
				}
			} else {
				score -= 2
				if score < 0 {
					score = 0
				}
			}
		}

		if j >= maxOnes {
			size = i
			if size < maxOnes {
				size = maxOnes
			}
			break
		}
	}

	return size
}
