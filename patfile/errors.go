// Package patfile encodes and decodes arena pattern files: the per-panel
// bit-packed block codec and the versioned file container consumed by the
// embedded display controllers. Byte layouts here are a wire contract;
// firmware and independent implementations depend on them exactly.
package patfile

import "errors"

var (
	// ErrDimensionMismatch reports a pixel grid whose size disagrees with
	// the arena-derived expected size.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrInvalidPixelValue reports a pixel outside the declared grayscale
	// mode's range.
	ErrInvalidPixelValue = errors.New("invalid pixel value")
	// ErrInvalidParameter reports a malformed encode/decode request.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnsupportedVersion reports a header version this decoder does not
	// implement. The file is rejected, never misread.
	ErrUnsupportedVersion = errors.New("unsupported format version")
	// ErrChecksumMismatch reports file-level corruption or truncation.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrParityMismatch reports corruption confined to one panel block.
	ErrParityMismatch = errors.New("panel parity mismatch")
)
