package spec

// Block metadata layout (3 bytes):
//
//	byte 0:    region code high bits
//	bytes 1-2: big-endian uint16; top 2 bits are the region code low bits,
//	           low 14 bits store (visitedPixelCount << 1) | 1
//
// The region code is two letters, 5 bits each as an offset from 'A', packed
// into the top 10 bits: byte0 holds char0 and the high 3 bits of char1, the
// top 2 bits of the 16-bit field hold the low 2 bits of char1.

const (
	// MetaLength is the number of metadata bytes trailing each bitmap.
	MetaLength = 3

	countMask = 0x3FFF
)

// DecodeRegion returns the two-letter region code stored in meta.
func DecodeRegion(meta [MetaLength]byte) string {
	c0 := meta[0] >> 3
	c1 := (meta[0]&0x07)<<2 | meta[1]>>6
	return string([]byte{'A' + c0, 'A' + c1})
}

// EncodeRegion packs a two-letter region code into a fresh metadata field
// with a zero visited count. Characters outside 'A'..'Z' are masked.
func EncodeRegion(code string) [MetaLength]byte {
	var c0, c1 byte
	if len(code) > 0 {
		c0 = (code[0] - 'A') & 0x1F
	}
	if len(code) > 1 {
		c1 = (code[1] - 'A') & 0x1F
	}
	var meta [MetaLength]byte
	meta[0] = c0<<3 | c1>>2
	meta[1] = (c1 & 0x03) << 6
	return meta
}

// DecodeVisitedCount returns the visited pixel count cached in meta.
func DecodeVisitedCount(meta [MetaLength]byte) int {
	field := uint16(meta[1])<<8 | uint16(meta[2])
	return int((field & countMask) >> 1)
}

// WithVisitedCount returns meta with its count field rewritten to
// (count<<1)|1, preserving the region code bits.
func WithVisitedCount(meta [MetaLength]byte, count int) [MetaLength]byte {
	field := (uint16(count)<<1 | 1) & countMask
	meta[1] = meta[1]&0xC0 | byte(field>>8)
	meta[2] = byte(field)
	return meta
}
