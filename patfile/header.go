package patfile

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/arena-display/pattern-tools/pattern"
)

// Family selects the header layout. Compact is the 7-byte legacy firmware
// header; Extended is the magic-prefixed desktop format.
type Family int

const (
	// FamilyExtended is the zero value: new files default to it.
	FamilyExtended Family = iota
	FamilyCompact
)

func (f Family) String() string {
	switch f {
	case FamilyCompact:
		return "compact"
	case FamilyExtended:
		return "extended"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// fileMagic opens every extended-family file. Compact files carry no magic;
// family detection is "magic present or not".
var fileMagic = [4]byte{'A', 'R', 'N', 'A'}

// Frame marker tag preceding every frame's panel blocks.
const (
	frameTag0 = 0xAB
	frameTag1 = 0xCD
	frameHdr  = 4 // tag (2) + little-endian frame index (2)
)

// Compact header layout (13 bytes total with the presence mask):
//
//	bytes 0-1:  frame count, little-endian
//	byte  2:    repurposed meta field (see packCompactMeta); v1 writes 0
//	byte  3:    arena registry ID; v1 writes 0
//	byte  4:    grayscale levels (2 or 16)
//	byte  5:    row count
//	byte  6:    installed-column count
//	bytes 7-12: panel-presence mask
//
// Extended header layout (17 bytes v1, 18 bytes v2):
//
//	bytes 0-3:   magic "ARNA"
//	byte  4:     version/identity high byte (version nibble in bits 7-4)
//	byte  5:     (v2 only) version/identity low byte
//	then:        grayscale mode byte (bits per pixel), frame count (LE16),
//	             row count, installed-column count, checksum,
//	             6-byte panel-presence mask
const (
	compactHeaderLen = 7 + presenceMaskBytes
	extHeaderLenV1   = 17
	extHeaderLenV2   = 18
)

// Header is the parsed file header: on decode it is the only source of
// truth for interpreting the bytes that follow.
type Header struct {
	Family               Family
	Version              int
	FrameCount           int
	GenerationID         uint8 // compact v2 only; 0 elsewhere
	ArenaID              uint8
	ObserverID           uint8 // extended v2 only
	Mode                 pattern.GrayscaleMode
	RowCount             int
	InstalledColumnCount int
	Checksum             uint8 // extended family only
	PresenceMask         [presenceMaskBytes]byte

	headerLen int
}

// Info parses just enough of data to return its header. Frame payloads are
// not validated; use a Decoder for that.
func Info(data []byte) (Header, error) {
	return parseHeader(data, maxSupportedVersion)
}

const maxSupportedVersion = 2

// parseHeader is the two-pass header parse: family and version are
// determined first, then the version-specific layout is applied. It never
// requires knowing the expected generation in advance.
func parseHeader(data []byte, maxVersion int) (Header, error) {
	if len(data) >= len(fileMagic) && bytes.Equal(data[:len(fileMagic)], fileMagic[:]) {
		return parseExtendedHeader(data, maxVersion)
	}
	return parseCompactHeader(data, maxVersion)
}

func parseCompactHeader(data []byte, maxVersion int) (Header, error) {
	if len(data) < compactHeaderLen {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than the %d-byte compact header",
			ErrChecksumMismatch, len(data), compactHeaderLen)
	}
	h := Header{
		Family:     FamilyCompact,
		Version:    1,
		FrameCount: int(binary.LittleEndian.Uint16(data[0:2])),
	}
	// Legacy readers ignore bytes 2-3 entirely; that documented blindness
	// is what makes the v2 repurposing safe. A v1-only decoder therefore
	// still decodes v2 compact files, it just sees no metadata.
	if maxVersion >= 2 {
		if v2, gen := unpackCompactMeta(data[2]); v2 {
			h.Version = 2
			h.GenerationID = gen
			h.ArenaID = data[3]
		}
	}
	switch data[4] {
	case 2:
		h.Mode = pattern.GS2
	case 16:
		h.Mode = pattern.GS16
	default:
		return Header{}, fmt.Errorf("%w: grayscale levels byte %d", ErrChecksumMismatch, data[4])
	}
	h.RowCount = int(data[5])
	h.InstalledColumnCount = int(data[6])
	copy(h.PresenceMask[:], data[7:compactHeaderLen])
	h.headerLen = compactHeaderLen
	return h, nil
}

func parseExtendedHeader(data []byte, maxVersion int) (Header, error) {
	if len(data) < extHeaderLenV1 {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than the %d-byte extended header",
			ErrChecksumMismatch, len(data), extHeaderLenV1)
	}
	// Pass one: version only. The nibble position is version-invariant.
	version := versionNibble(data[4])
	if version < 1 || int(version) > maxVersion {
		return Header{}, fmt.Errorf("%w: extended header version %d (decoder supports up to %d)",
			ErrUnsupportedVersion, version, maxVersion)
	}

	// Pass two: version-specific layout.
	h := Header{Family: FamilyExtended, Version: int(version)}
	rest := data[5:]
	h.headerLen = extHeaderLenV1
	if version == 2 {
		if len(data) < extHeaderLenV2 {
			return Header{}, fmt.Errorf("%w: truncated v2 extended header", ErrChecksumMismatch)
		}
		_, h.ArenaID, h.ObserverID = unpackVersionIdentity(data[4], data[5])
		rest = data[6:]
		h.headerLen = extHeaderLenV2
	}

	switch m := pattern.GrayscaleMode(rest[0]); m {
	case pattern.GS2, pattern.GS16:
		h.Mode = m
	default:
		return Header{}, fmt.Errorf("%w: grayscale mode byte %d", ErrChecksumMismatch, rest[0])
	}
	h.FrameCount = int(binary.LittleEndian.Uint16(rest[1:3]))
	h.RowCount = int(rest[3])
	h.InstalledColumnCount = int(rest[4])
	h.Checksum = rest[5]
	copy(h.PresenceMask[:], rest[6:6+presenceMaskBytes])
	return h, nil
}

func (h Header) encode() []byte {
	switch h.Family {
	case FamilyCompact:
		buf := make([]byte, compactHeaderLen)
		binary.LittleEndian.PutUint16(buf[0:2], uint16(h.FrameCount))
		if h.Version >= 2 {
			buf[2] = packCompactMeta(true, h.GenerationID)
			buf[3] = h.ArenaID
		}
		buf[4] = byte(h.Mode.Levels())
		buf[5] = byte(h.RowCount)
		buf[6] = byte(h.InstalledColumnCount)
		copy(buf[7:], h.PresenceMask[:])
		return buf
	default:
		size := extHeaderLenV1
		if h.Version == 2 {
			size = extHeaderLenV2
		}
		buf := make([]byte, 0, size)
		buf = append(buf, fileMagic[:]...)
		hi, lo := packVersionIdentity(uint8(h.Version), h.ArenaID, h.ObserverID)
		if h.Version == 2 {
			buf = append(buf, hi, lo)
		} else {
			// v1 carries only the version nibble; identity bits do not exist.
			buf = append(buf, uint8(h.Version)<<4)
		}
		buf = append(buf, byte(h.Mode))
		var fc [2]byte
		binary.LittleEndian.PutUint16(fc[:], uint16(h.FrameCount))
		buf = append(buf, fc[0], fc[1])
		buf = append(buf, byte(h.RowCount), byte(h.InstalledColumnCount), h.Checksum)
		buf = append(buf, h.PresenceMask[:]...)
		return buf
	}
}
