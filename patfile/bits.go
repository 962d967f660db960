package patfile

import "math/bits"

// Bit-field helpers for the cross-byte header fields. All bit ranges are
// documented here and nowhere else; call sites never shift ad hoc.

// Compact header byte 2, the field legacy firmware provably ignores.
// v2 repurposes it as:
//
//	bit  7:    version flag (1 = v2; encoded as the MSB because it is the
//	           bit old parsers are known not to check)
//	bits 6-4:  generation ID (0-7)
//	bits 3-0:  reserved, written as zero
const (
	compactVersionFlagBit = 7
	compactGenShift       = 4
	compactGenMask        = 0x07
)

func packCompactMeta(v2 bool, generationID uint8) byte {
	b := (generationID & compactGenMask) << compactGenShift
	if v2 {
		b |= 1 << compactVersionFlagBit
	}
	return b
}

func unpackCompactMeta(b byte) (v2 bool, generationID uint8) {
	return b>>compactVersionFlagBit == 1, (b >> compactGenShift) & compactGenMask
}

// Extended header version/identity field: a 16-bit big-endian value over
// header bytes 4-5, not byte-aligned:
//
//	bits 15-12: version nibble (1 or 2)
//	bits 11-6:  arena registry ID (0-63)
//	bits 5-0:   observer ID (0-63)
//
// v1 writes only the high byte (0x10) and has no byte 5; the version
// nibble is the high nibble of byte 4 in both versions, so version
// detection never depends on the version-specific layout.
const (
	extVersionShift = 12
	extArenaShift   = 6
	extArenaMax     = 0x3F
	extObserverMax  = 0x3F
)

func packVersionIdentity(version, arenaID, observerID uint8) (hi, lo byte) {
	v := uint16(version)<<extVersionShift |
		uint16(arenaID&extArenaMax)<<extArenaShift |
		uint16(observerID&extObserverMax)
	return byte(v >> 8), byte(v)
}

func unpackVersionIdentity(hi, lo byte) (version, arenaID, observerID uint8) {
	v := uint16(hi)<<8 | uint16(lo)
	return uint8(v >> extVersionShift),
		uint8(v>>extArenaShift) & extArenaMax,
		uint8(v) & extObserverMax
}

// versionNibble extracts the format version from extended header byte 4.
func versionNibble(b byte) uint8 { return b >> 4 }

// Panel-presence mask: 6 bytes, one bit per full-grid panel slot in
// row-major order (slot = row*numColsFull + col), bit i stored at
// byte i/8, bit i%8.
const presenceMaskBytes = 6

func setMaskBit(mask []byte, i int) { mask[i/8] |= 1 << (i % 8) }

func maskBit(mask []byte, i int) bool { return mask[i/8]>>(i%8)&1 == 1 }

func maskPopCount(mask []byte) int {
	var n int
	for _, b := range mask {
		n += bits.OnesCount8(b)
	}
	return n
}

// maskSetBits returns the indices of set bits in ascending order.
func maskSetBits(mask []byte) []int {
	out := make([]int, 0, maskPopCount(mask))
	for i := 0; i < len(mask)*8; i++ {
		if maskBit(mask, i) {
			out = append(out, i)
		}
	}
	return out
}

// xorChecksum is the file checksum: XOR of every payload byte after the
// header.
func xorChecksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum ^= b
	}
	return sum
}
