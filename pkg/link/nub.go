package link

// Fast-download nub images. The nub is a tiny resident program the
// firmware transfer plants at nubStart; once running it drives the IR
// hardware at the fast rate so the main payload can follow. Two builds
// exist because some media keep odd parity in fast mode.
var fastdlNub = []byte{
	0x79, 0x06, 0xfd, 0x80, 0x79, 0x01, 0x80, 0x00,
	0x5e, 0x00, 0x03, 0x0a, 0x6a, 0x8e, 0xee, 0x80,
	0xfe, 0x91, 0x6a, 0x8e, 0xee, 0xda, 0xfe, 0x4d,
	0x6a, 0x8e, 0xee, 0xd8, 0x55, 0x06, 0x6b, 0x86,
	0xee, 0xc4, 0x5a, 0x00, 0x80, 0x36, 0x19, 0x11,
	0x6a, 0x0e, 0xee, 0xdc, 0x47, 0xf6, 0x5a, 0x00,
	0x80, 0x00,
}

var fastdlNubOdd = []byte{
	0x79, 0x06, 0xfd, 0x80, 0x79, 0x01, 0x80, 0x00,
	0x5e, 0x00, 0x03, 0x0a, 0x6a, 0x8e, 0xee, 0x80,
	0xfe, 0xb1, 0x6a, 0x8e, 0xee, 0xda, 0xfe, 0x4d,
	0x6a, 0x8e, 0xee, 0xd8, 0x55, 0x06, 0x6b, 0x86,
	0xee, 0xc4, 0x5a, 0x00, 0x80, 0x36, 0x19, 0x11,
	0x6a, 0x0e, 0xee, 0xdc, 0x47, 0xf6, 0x5a, 0x00,
	0x80, 0x30,
}
