package protocol

import (
	"bytes"
	"testing"
)

const (
	testMaxZerosUSB    = 23
	testMaxZerosSerial = 30
	testMaxOnes        = 90
)

// TestAdjustChunkSize_Complement verifies the adjuster is a no-op when
// the transport complements bytes.
func TestAdjustChunkSize_Complement(t *testing.T) {
	data := make([]byte, 100) // worst case: all zeros
	if got := AdjustChunkSize(100, data, true, testMaxZerosUSB, testMaxOnes); got != 100 {
		t.Errorf("AdjustChunkSize(complement) = %d, want 100", got)
	}
}

// TestAdjustChunkSize tests the zero-run and sparse-byte scans
func TestAdjustChunkSize(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		data     []byte
		maxZeros int
		maxOnes  int
		want     int
	}{
		{
			name:     "all zeros clamps at maxZeros",
			n:        100,
			data:     make([]byte, 100),
			maxZeros: testMaxZerosUSB,
			maxOnes:  testMaxOnes,
			want:     23,
		},
		{
			name:     "all dense bytes pass through",
			n:        100,
			data:     bytes.Repeat([]byte{0xFF}, 100),
			maxZeros: testMaxZerosUSB,
			maxOnes:  testMaxOnes,
			want:     100,
		},
		{
			name:     "zero run below threshold passes through",
			n:        100,
			data:     append(make([]byte, 22), bytes.Repeat([]byte{0xFF}, 78)...),
			maxZeros: testMaxZerosUSB,
			maxOnes:  testMaxOnes,
			want:     100,
		},
		{
			name:     "serial threshold clamps later",
			n:        100,
			data:     make([]byte, 100),
			maxZeros: testMaxZerosSerial,
			maxOnes:  testMaxOnes,
			want:     30,
		},
		{
			name:     "zero run mid-payload clamps after the run start",
			n:        100,
			data:     append(bytes.Repeat([]byte{0xFF}, 10), make([]byte, 90)...),
			maxZeros: testMaxZerosUSB,
			maxOnes:  testMaxOnes,
			want:     10 + 23,
		},
		{
			name: "dense bytes rescue a sparse stretch",
			n:    100,
			// Four dense bytes after every sparse one break the forward
			// scan before it exhausts the window.
			data:     bytes.Repeat([]byte{0x01, 0xFF, 0xFF, 0xFF, 0xFF}, 20),
			maxZeros: testMaxZerosUSB,
			maxOnes:  testMaxOnes,
			want:     100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdjustChunkSize(tt.n, tt.data, false, tt.maxZeros, tt.maxOnes)
			if got != tt.want {
				t.Errorf("AdjustChunkSize(%d) = %d, want %d", tt.n, got, tt.want)
			}
		})
	}
}

// TestAdjustChunkSize_SparseClampMinimum pins the historical clamp: when
// a sparse stretch starts before maxOnes, the adjusted size is maxOnes,
// not the run start. Changing this stalls downloads of sparse payloads.
func TestAdjustChunkSize_SparseClampMinimum(t *testing.T) {
	// One dense byte, then sparse (but nonzero) bytes so the sparse scan
	// fires at i=1 without the zero scan interfering.
	data := append([]byte{0xFF}, bytes.Repeat([]byte{0x01}, 199)...)
	maxOnes := 90

	got := AdjustChunkSize(200, data, false, testMaxZerosSerial, maxOnes)
	if got != maxOnes {
		t.Errorf("AdjustChunkSize = %d, want clamp to maxOnes (%d)", got, maxOnes)
	}
}

// TestAdjustChunkSize_NeverGrowsWithoutSparse verifies the result never
// exceeds n when no sparse clamp applies.
func TestAdjustChunkSize_NeverGrowsWithoutSparse(t *testing.T) {
	payloads := [][]byte{
		bytes.Repeat([]byte{0xAA}, 64),
		append(make([]byte, 5), bytes.Repeat([]byte{0x77}, 59)...),
		{0x00},
		{},
	}

	for _, data := range payloads {
		n := len(data)
		got := AdjustChunkSize(n, data, false, testMaxZerosUSB, testMaxOnes)
		if got > n {
			t.Errorf("AdjustChunkSize(%d) = %d, exceeds request", n, got)
		}
		if got < 0 {
			t.Errorf("AdjustChunkSize(%d) = %d, negative", n, got)
		}
	}
}
