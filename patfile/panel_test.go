package patfile

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arena-display/pattern-tools/pattern"
)

func blankPanel(size int) [][]uint8 {
	p := make([][]uint8, size)
	for r := range p {
		p[r] = make([]uint8, size)
	}
	return p
}

func TestPanelBlockSizes(t *testing.T) {
	tests := []struct {
		mode pattern.GrayscaleMode
		px   int
		want int
	}{
		{pattern.GS2, 20, 53},
		{pattern.GS16, 20, 203},
		{pattern.GS2, 16, 35},
		{pattern.GS16, 16, 131},
		{pattern.GS2, 8, 11},
		{pattern.GS16, 8, 35},
	}
	for _, tt := range tests {
		if got := PanelBlockSize(tt.mode, tt.px); got != tt.want {
			t.Errorf("PanelBlockSize(%s, %d) = %d, want %d", tt.mode, tt.px, got, tt.want)
		}
	}
}

// The canonical byte-layout scenario: 20x20 binary panel, pixel (0,0) lit,
// stretch 192. Pixel (0,0) is the bottom-left corner and must land in
// bit 7 of payload byte 0.
func TestEncodePanelCornerScenario(t *testing.T) {
	pixels := blankPanel(20)
	pixels[0][0] = 1

	block, err := EncodePanel(pixels, 192, pattern.GS2)
	if err != nil {
		t.Fatalf("EncodePanel: %v", err)
	}
	if len(block) != 53 {
		t.Fatalf("block length %d, want 53", len(block))
	}
	if block[2] != 0x80 {
		t.Errorf("payload byte 0 = %#02x, want 0x80", block[2])
	}
	if block[52] != 192 {
		t.Errorf("final byte = %d, want stretch 192", block[52])
	}
	// Depth flag 0x01 (1 bit), payload 0x80 (1 bit), stretch 0xC0 (2 bits):
	// four set bits after the header, parity even, version 1.
	if block[0] != 0x01 {
		t.Errorf("header byte = %#02x, want 0x01", block[0])
	}
	if block[1] != 0x01 {
		t.Errorf("depth flag = %#02x, want 0x01", block[1])
	}
}

func TestEncodePanelOppositeCorner(t *testing.T) {
	pixels := blankPanel(20)
	pixels[19][19] = 1 // linear index 399: payload byte 49, bit 0

	block, err := EncodePanel(pixels, 0, pattern.GS2)
	if err != nil {
		t.Fatalf("EncodePanel: %v", err)
	}
	if block[2+49] != 0x01 {
		t.Errorf("payload byte 49 = %#02x, want 0x01", block[2+49])
	}
	for i := 2; i < 2+49; i++ {
		if block[i] != 0 {
			t.Errorf("payload byte %d = %#02x, want 0", i-2, block[i])
		}
	}
}

func TestEncodePanelNibblePacking(t *testing.T) {
	// 4x4 GS16 panel with pixel value == linear index: even indices land
	// in high nibbles, so the payload counts 0x01 0x23 0x45 ...
	pixels := blankPanel(4)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			pixels[r][c] = uint8(r*4 + c)
		}
	}
	block, err := EncodePanel(pixels, 7, pattern.GS16)
	if err != nil {
		t.Fatalf("EncodePanel: %v", err)
	}
	want := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF}
	for i, w := range want {
		if block[2+i] != w {
			t.Errorf("payload byte %d = %#02x, want %#02x", i, block[2+i], w)
		}
	}
	if block[1] != 0x04 {
		t.Errorf("depth flag = %#02x, want 0x04", block[1])
	}
}

func TestPanelRoundTrip(t *testing.T) {
	for _, mode := range []pattern.GrayscaleMode{pattern.GS2, pattern.GS16} {
		for _, size := range []int{8, 16, 20} {
			pixels := blankPanel(size)
			for r := range pixels {
				for c := range pixels[r] {
					pixels[r][c] = uint8((r*7 + c*3) % int(mode.MaxLevel()+1))
				}
			}
			block, err := EncodePanel(pixels, 42, mode)
			if err != nil {
				t.Fatalf("%s/%d encode: %v", mode, size, err)
			}
			got, stretch, err := DecodePanel(block, mode, size)
			if err != nil {
				t.Fatalf("%s/%d decode: %v", mode, size, err)
			}
			if stretch != 42 {
				t.Errorf("%s/%d stretch = %d, want 42", mode, size, stretch)
			}
			if diff := cmp.Diff(pixels, got); diff != "" {
				t.Errorf("%s/%d pixel mismatch (-want +got):\n%s", mode, size, diff)
			}
		}
	}
}

// Flipping any single bit after the header byte must trip the parity check.
func TestPanelParityDetectsSingleBitFlips(t *testing.T) {
	pixels := blankPanel(8)
	pixels[3][5] = 1
	pixels[0][0] = 1
	block, err := EncodePanel(pixels, 10, pattern.GS2)
	if err != nil {
		t.Fatalf("EncodePanel: %v", err)
	}

	for byteIdx := 1; byteIdx < len(block); byteIdx++ {
		for bit := 0; bit < 8; bit++ {
			corrupt := append([]byte(nil), block...)
			corrupt[byteIdx] ^= 1 << bit
			if _, _, err := DecodePanel(corrupt, pattern.GS2, 8); !errors.Is(err, ErrParityMismatch) {
				t.Fatalf("flip byte %d bit %d: err = %v, want ErrParityMismatch", byteIdx, bit, err)
			}
		}
	}
}

func TestDecodePanelRejects(t *testing.T) {
	pixels := blankPanel(8)
	block, err := EncodePanel(pixels, 0, pattern.GS2)
	if err != nil {
		t.Fatalf("EncodePanel: %v", err)
	}

	if _, _, err := DecodePanel(block[:len(block)-1], pattern.GS2, 8); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("truncated block: %v, want ErrDimensionMismatch", err)
	}
	if _, _, err := DecodePanel(block, pattern.GS16, 8); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("wrong mode length: %v, want ErrDimensionMismatch", err)
	}

	// Unknown block version, with parity recomputed so only the version
	// check can fire.
	bad := append([]byte(nil), block...)
	bad[0] = 0x02 | (bad[0] & 0x80)
	if _, _, err := DecodePanel(bad, pattern.GS2, 8); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("future block version: %v, want ErrUnsupportedVersion", err)
	}
}

func TestEncodePanelRejects(t *testing.T) {
	pixels := blankPanel(8)
	pixels[1][1] = 2 // out of range for GS2
	if _, err := EncodePanel(pixels, 0, pattern.GS2); !errors.Is(err, ErrInvalidPixelValue) {
		t.Errorf("out-of-range pixel: %v, want ErrInvalidPixelValue", err)
	}

	ragged := blankPanel(8)
	ragged[2] = ragged[2][:5]
	if _, err := EncodePanel(ragged, 0, pattern.GS2); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("ragged panel: %v, want ErrDimensionMismatch", err)
	}
}
