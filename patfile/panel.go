package patfile

import (
	"fmt"
	"math/bits"

	"github.com/arena-display/pattern-tools/pattern"
)

// Panel block wire layout (sizes for a 20x20 panel: 53 bytes GS2, 203 GS16):
//
//	byte 0:      header = parityBit<<7 | blockVersion (7 bits)
//	byte 1:      depth flag, bits per pixel (1 or 4)
//	bytes 2..:   pixel payload
//	last byte:   stretch
//
// Pixel convention, the part most prone to divergent reimplementation:
// panel-local origin (0,0) is the BOTTOM-LEFT pixel; linear index is
// rowFromBottom*width + col. GS2 packs one bit per pixel MSB-first; GS16
// packs two pixels per byte, even linear index in the high nibble.
//
// The parity bit is the set-bit count (mod 2) of every byte after the
// header byte, so the block total excluding the header is always even.
// Decode recomputes it; a mismatch is a corruption signal.
const (
	blockVersion     = 1
	blockVersionMask = 0x7F
	parityBitShift   = 7
	blockOverhead    = 3 // header byte + depth byte + stretch byte
)

// PanelPayloadSize returns the pixel payload size in bytes for one panel.
func PanelPayloadSize(mode pattern.GrayscaleMode, pixelsPerPanel int) int {
	n := pixelsPerPanel * pixelsPerPanel
	if mode == pattern.GS2 {
		return (n + 7) / 8
	}
	return (n + 1) / 2
}

// PanelBlockSize returns the full encoded block size for one panel.
func PanelBlockSize(mode pattern.GrayscaleMode, pixelsPerPanel int) int {
	return PanelPayloadSize(mode, pixelsPerPanel) + blockOverhead
}

// EncodePanel packs one panel's pixels, indexed [rowFromBottom][col], into
// a self-contained block.
func EncodePanel(pixels [][]uint8, stretch uint8, mode pattern.GrayscaleMode) ([]byte, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: grayscale mode %d", ErrInvalidParameter, uint8(mode))
	}
	size := len(pixels)
	if size == 0 {
		return nil, fmt.Errorf("%w: empty panel", ErrDimensionMismatch)
	}
	for r, row := range pixels {
		if len(row) != size {
			return nil, fmt.Errorf("%w: panel row %d width %d != %d", ErrDimensionMismatch, r, len(row), size)
		}
	}

	block := make([]byte, PanelBlockSize(mode, size))
	block[1] = byte(mode)
	maxLevel := mode.MaxLevel()

	for r, row := range pixels {
		for c, v := range row {
			if v > maxLevel {
				return nil, fmt.Errorf("%w: pixel (%d,%d) value %d exceeds %s max %d",
					ErrInvalidPixelValue, c, r, v, mode, maxLevel)
			}
			idx := r*size + c
			if mode == pattern.GS2 {
				if v != 0 {
					block[2+idx/8] |= 1 << (7 - idx%8)
				}
			} else {
				if idx%2 == 0 {
					block[2+idx/2] |= v << 4
				} else {
					block[2+idx/2] |= v
				}
			}
		}
	}

	block[len(block)-1] = stretch
	block[0] = blockVersion | parityBit(block[1:])<<parityBitShift
	return block, nil
}

// DecodePanel unpacks one block back into pixels and the stretch value.
// The caller supplies the mode and panel size from the file header: blocks
// are not self-describing beyond their integrity fields.
func DecodePanel(block []byte, mode pattern.GrayscaleMode, pixelsPerPanel int) ([][]uint8, uint8, error) {
	if !mode.Valid() {
		return nil, 0, fmt.Errorf("%w: grayscale mode %d", ErrInvalidParameter, uint8(mode))
	}
	want := PanelBlockSize(mode, pixelsPerPanel)
	if len(block) != want {
		return nil, 0, fmt.Errorf("%w: block size %d, want %d", ErrDimensionMismatch, len(block), want)
	}
	if v := block[0] & blockVersionMask; v != blockVersion {
		return nil, 0, fmt.Errorf("%w: panel block version %d", ErrUnsupportedVersion, v)
	}
	if got, stored := parityBit(block[1:]), block[0]>>parityBitShift; got != stored {
		return nil, 0, fmt.Errorf("%w: stored parity %d, computed %d", ErrParityMismatch, stored, got)
	}
	if block[1] != byte(mode) {
		return nil, 0, fmt.Errorf("%w: block depth flag %d does not match declared mode %s",
			ErrInvalidParameter, block[1], mode)
	}

	pixels := make([][]uint8, pixelsPerPanel)
	for r := range pixels {
		pixels[r] = make([]uint8, pixelsPerPanel)
		for c := range pixels[r] {
			idx := r*pixelsPerPanel + c
			if mode == pattern.GS2 {
				pixels[r][c] = (block[2+idx/8] >> (7 - idx%8)) & 1
			} else if idx%2 == 0 {
				pixels[r][c] = block[2+idx/2] >> 4
			} else {
				pixels[r][c] = block[2+idx/2] & 0x0F
			}
		}
	}
	return pixels, block[len(block)-1], nil
}

// parityBit returns the set-bit count of b modulo 2.
func parityBit(b []byte) byte {
	var count int
	for _, v := range b {
		count += bits.OnesCount8(v)
	}
	return byte(count & 1)
}
