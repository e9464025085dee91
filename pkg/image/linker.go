package image

// Flatten lays an image's chunks out back to back into one contiguous
// blob. Spybotics bricks take a whole program as a single firmware-style
// transfer instead of per-chunk Begin/Download sequences.
func Flatten(img *Image) []byte {
	out := make([]byte, 0, img.Size())
	for i := 0; i < img.ChunkCount(); i++ {
		out = append(out, img.Chunk(i).Data...)
	}
	return out
}
