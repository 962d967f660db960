package patfile

import "testing"

// Each bit field round-trips independently of the others.

func TestCompactMetaRoundTrip(t *testing.T) {
	for gen := uint8(0); gen <= 7; gen++ {
		for _, v2 := range []bool{false, true} {
			b := packCompactMeta(v2, gen)
			gotV2, gotGen := unpackCompactMeta(b)
			if gotV2 != v2 || gotGen != gen {
				t.Errorf("meta(%v,%d) -> %#02x -> (%v,%d)", v2, gen, b, gotV2, gotGen)
			}
			if b&0x0F != 0 {
				t.Errorf("meta(%v,%d) = %#02x sets reserved bits", v2, gen, b)
			}
		}
	}

	// The version flag is the MSB: the one bit legacy parsers never check.
	if b := packCompactMeta(true, 0); b != 0x80 {
		t.Errorf("bare version flag = %#02x, want 0x80", b)
	}
	if b := packCompactMeta(false, 5); b != 0x50 {
		t.Errorf("generation 5 v1 = %#02x, want 0x50", b)
	}
}

func TestVersionIdentityRoundTrip(t *testing.T) {
	tests := []struct {
		name                       string
		version, arenaID, observer uint8
	}{
		{"zeros", 2, 0, 0},
		{"arena only", 2, 63, 0},
		{"observer only", 2, 0, 63},
		{"both max", 2, 63, 63},
		{"mid values", 2, 21, 42},
		{"version 1 shape", 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hi, lo := packVersionIdentity(tt.version, tt.arenaID, tt.observer)
			v, a, o := unpackVersionIdentity(hi, lo)
			if v != tt.version || a != tt.arenaID || o != tt.observer {
				t.Errorf("(%d,%d,%d) -> %#02x%02x -> (%d,%d,%d)",
					tt.version, tt.arenaID, tt.observer, hi, lo, v, a, o)
			}
			// Version nibble stays in the high nibble of the high byte so
			// pass-one version detection never needs the low byte.
			if versionNibble(hi) != tt.version {
				t.Errorf("versionNibble(%#02x) = %d, want %d", hi, versionNibble(hi), tt.version)
			}
		})
	}

	// Documented bit positions: version 15-12, arena 11-6, observer 5-0.
	hi, lo := packVersionIdentity(2, 0x3F, 0)
	if hi != 0x2F || lo != 0xC0 {
		t.Errorf("arena field bits: got %#02x%02x, want 0x2FC0", hi, lo)
	}
	hi, lo = packVersionIdentity(2, 0, 0x3F)
	if hi != 0x20 || lo != 0x3F {
		t.Errorf("observer field bits: got %#02x%02x, want 0x203F", hi, lo)
	}
}

func TestPresenceMaskHelpers(t *testing.T) {
	mask := make([]byte, presenceMaskBytes)
	for _, i := range []int{0, 7, 8, 23, 47} {
		setMaskBit(mask, i)
	}
	for _, i := range []int{0, 7, 8, 23, 47} {
		if !maskBit(mask, i) {
			t.Errorf("bit %d not set", i)
		}
	}
	if maskBit(mask, 1) || maskBit(mask, 46) {
		t.Error("unexpected bits set")
	}
	if got := maskPopCount(mask); got != 5 {
		t.Errorf("popcount = %d, want 5", got)
	}
	want := []int{0, 7, 8, 23, 47}
	got := maskSetBits(mask)
	if len(got) != len(want) {
		t.Fatalf("maskSetBits = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("maskSetBits = %v, want %v", got, want)
		}
	}
}

func TestXorChecksum(t *testing.T) {
	if got := xorChecksum(nil); got != 0 {
		t.Errorf("empty checksum = %#02x, want 0", got)
	}
	if got := xorChecksum([]byte{0xFF, 0x0F, 0xF0}); got != 0x00 {
		t.Errorf("checksum = %#02x, want 0x00", got)
	}
	if got := xorChecksum([]byte{0x12, 0x34}); got != 0x26 {
		t.Errorf("checksum = %#02x, want 0x26", got)
	}
}

func TestDeriveLayout(t *testing.T) {
	build := func(rows, colsFull int, cols []int) []byte {
		mask := make([]byte, presenceMaskBytes)
		for r := 0; r < rows; r++ {
			for _, c := range cols {
				setMaskBit(mask, r*colsFull+c)
			}
		}
		return mask
	}

	tests := []struct {
		name         string
		rows, cols   int
		colsFull     int
		installed    []int
		wantColsFull int
	}{
		{"full single row", 1, 4, 4, []int{0, 1, 2, 3}, 4},
		{"partial two rows", 2, 2, 5, []int{1, 3}, 5},
		{"partial leading gap", 2, 8, 10, []int{1, 2, 3, 4, 5, 6, 7, 8}, 10},
		// A trailing absent column is unobservable; the derived grid is
		// the smallest consistent one.
		{"trailing gap single row", 1, 2, 6, []int{0, 3}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := build(tt.rows, tt.colsFull, tt.installed)
			cols, full, err := deriveLayout(mask, tt.rows, tt.cols)
			if err != nil {
				t.Fatalf("deriveLayout: %v", err)
			}
			if full != tt.wantColsFull {
				t.Errorf("numColsFull = %d, want %d", full, tt.wantColsFull)
			}
			for i, c := range tt.installed {
				if cols[i] != c {
					t.Fatalf("installed = %v, want %v", cols, tt.installed)
				}
			}
		})
	}

	// Rows with disagreeing column patterns are corrupt: row 0 occupies
	// columns {0,1} but row 1's bits {5,7} are not {W,W+1} for any W.
	mask := make([]byte, presenceMaskBytes)
	for _, i := range []int{0, 1, 5, 7} {
		setMaskBit(mask, i)
	}
	if _, _, err := deriveLayout(mask, 2, 2); err == nil {
		t.Error("inconsistent mask accepted")
	}
	// Bit count disagreeing with the header panel count is corrupt.
	if _, _, err := deriveLayout(mask, 2, 3); err == nil {
		t.Error("mask bit count mismatch accepted")
	}
}
