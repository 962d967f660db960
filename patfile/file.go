package patfile

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/arena-display/pattern-tools/arena"
	"github.com/arena-display/pattern-tools/pattern"
)

// EncodeOptions selects the output format. The zero value produces the
// extended family at the current version.
type EncodeOptions struct {
	Family  Family
	Version int   // 0 means latest (2)
	ArenaID uint8 // arena registry ID to embed (v2 formats only)
}

// Encode assembles a complete pattern file from a set and its arena config.
// Structural problems abort before any bytes are produced; Encode never
// returns a partial file.
func Encode(set pattern.Set, cfg arena.Config, opts EncodeOptions) ([]byte, error) {
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if set.Width() != cfg.TotalPixelsX() || set.Height() != cfg.TotalPixelsY() {
		return nil, fmt.Errorf("%w: frames are %dx%d, arena expects %dx%d",
			ErrDimensionMismatch, set.Width(), set.Height(), cfg.TotalPixelsX(), cfg.TotalPixelsY())
	}
	if opts.Version == 0 {
		opts.Version = maxSupportedVersion
	}
	if opts.Version < 1 || opts.Version > maxSupportedVersion {
		return nil, fmt.Errorf("%w: encode version %d", ErrUnsupportedVersion, opts.Version)
	}
	if slots := cfg.NumRows * cfg.NumColsFull; slots > presenceMaskBytes*8 {
		return nil, fmt.Errorf("%w: %d panel slots exceed the %d-bit presence mask",
			ErrInvalidParameter, slots, presenceMaskBytes*8)
	}
	if opts.Family == FamilyExtended && opts.Version == 2 {
		if opts.ArenaID > extArenaMax {
			return nil, fmt.Errorf("%w: arena ID %d exceeds the extended family's 6-bit field; use the compact family",
				ErrInvalidParameter, opts.ArenaID)
		}
		if cfg.ObserverID > extObserverMax {
			return nil, fmt.Errorf("%w: observer ID %d exceeds 6 bits", ErrInvalidParameter, cfg.ObserverID)
		}
	}

	h := Header{
		Family:               opts.Family,
		Version:              opts.Version,
		FrameCount:           len(set.Frames),
		Mode:                 set.Mode,
		RowCount:             cfg.NumRows,
		InstalledColumnCount: cfg.InstalledColumnCount(),
	}
	if opts.Version >= 2 {
		h.ArenaID = opts.ArenaID
		if opts.Family == FamilyCompact {
			h.GenerationID = cfg.Generation
		} else {
			h.ObserverID = cfg.ObserverID
		}
	}
	for r := 0; r < cfg.NumRows; r++ {
		for _, c := range cfg.ColumnsInstalled {
			setMaskBit(h.PresenceMask[:], r*cfg.NumColsFull+c)
		}
	}

	// Frames are independent; encode them concurrently and place results
	// by index so output order is exact regardless of completion order.
	frameSize := frameHdr + cfg.PanelCount()*PanelBlockSize(set.Mode, cfg.PixelsPerPanel())
	frames := make([][]byte, len(set.Frames))
	errs := make([]error, len(set.Frames))
	var wg sync.WaitGroup
	for k := range set.Frames {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			frames[k], errs[k] = encodeFrame(set, cfg, k, frameSize)
		}(k)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	payload := make([]byte, 0, len(set.Frames)*frameSize)
	for _, f := range frames {
		payload = append(payload, f...)
	}
	if opts.Family == FamilyExtended {
		h.Checksum = xorChecksum(payload)
	}
	return append(h.encode(), payload...), nil
}

// encodeFrame produces the frame marker plus one panel block per installed
// panel, rows outer, installed columns in order. Absent columns emit
// nothing: partial arenas pack dense.
func encodeFrame(set pattern.Set, cfg arena.Config, k, frameSize int) ([]byte, error) {
	px := cfg.PixelsPerPanel()
	out := make([]byte, 0, frameSize)
	out = append(out, frameTag0, frameTag1)
	var idx [2]byte
	binary.LittleEndian.PutUint16(idx[:], uint16(k))
	out = append(out, idx[0], idx[1])

	frame := set.Frames[k]
	panelPixels := make([][]uint8, px)
	for r := 0; r < cfg.NumRows; r++ {
		for dense := range cfg.ColumnsInstalled {
			for py := 0; py < px; py++ {
				panelPixels[py] = frame[r*px+py][dense*px : (dense+1)*px]
			}
			block, err := EncodePanel(panelPixels, set.Stretch[k], set.Mode)
			if err != nil {
				return nil, fmt.Errorf("frame %d panel (row %d, col %d): %w", k, r, cfg.ColumnsInstalled[dense], err)
			}
			out = append(out, block...)
		}
	}
	return out, nil
}

// Decoder parses pattern files. The registry resolves generation and arena
// metadata; lookup misses degrade to the unspecified label with a warning
// rather than failing, since legacy files commonly carry ID 0.
type Decoder struct {
	Registry *arena.Registry
	Log      zerolog.Logger
	// MaxVersion caps the accepted format version; primarily a test hook
	// to prove that newer files are rejected rather than misread.
	MaxVersion int
}

// NewDecoder returns a decoder with warnings discarded.
func NewDecoder(reg *arena.Registry) *Decoder {
	return &Decoder{Registry: reg, Log: zerolog.Nop(), MaxVersion: maxSupportedVersion}
}

// Decode parses a complete pattern file and reconstructs the frame
// sequence and arena configuration. The returned values never alias data.
func (d *Decoder) Decode(data []byte) (pattern.Set, arena.Config, error) {
	h, err := parseHeader(data, d.MaxVersion)
	if err != nil {
		return pattern.Set{}, arena.Config{}, err
	}
	if h.FrameCount < 1 {
		return pattern.Set{}, arena.Config{}, fmt.Errorf("%w: zero frame count", ErrChecksumMismatch)
	}

	panels := h.RowCount * h.InstalledColumnCount
	if panels == 0 {
		return pattern.Set{}, arena.Config{}, fmt.Errorf("%w: zero panel count", ErrChecksumMismatch)
	}
	if got := maskPopCount(h.PresenceMask[:]); got != panels {
		return pattern.Set{}, arena.Config{}, fmt.Errorf("%w: presence mask has %d panels, header says %d",
			ErrChecksumMismatch, got, panels)
	}

	// Validate the frame byte length against an independently computed
	// expectation before trusting any pixel data.
	payload := data[h.headerLen:]
	if len(payload)%h.FrameCount != 0 {
		return pattern.Set{}, arena.Config{}, fmt.Errorf("%w: %d payload bytes not divisible by %d frames",
			ErrChecksumMismatch, len(payload), h.FrameCount)
	}
	frameSize := len(payload) / h.FrameCount
	blockSize := (frameSize - frameHdr) / panels
	spec, ok := d.panelSpec(h, blockSize)
	if !ok {
		return pattern.Set{}, arena.Config{}, fmt.Errorf("%w: frame size %d matches no known panel geometry",
			ErrChecksumMismatch, frameSize)
	}
	if frameSize != frameHdr+panels*PanelBlockSize(h.Mode, spec.PixelsPerPanel) {
		return pattern.Set{}, arena.Config{}, fmt.Errorf("%w: frame size %d, want %d",
			ErrChecksumMismatch, frameSize, frameHdr+panels*PanelBlockSize(h.Mode, spec.PixelsPerPanel))
	}
	if h.Family == FamilyExtended {
		if sum := xorChecksum(payload); sum != h.Checksum {
			return pattern.Set{}, arena.Config{}, fmt.Errorf("%w: stored %#02x, computed %#02x",
				ErrChecksumMismatch, h.Checksum, sum)
		}
	}

	cols, numColsFull, err := deriveLayout(h.PresenceMask[:], h.RowCount, h.InstalledColumnCount)
	if err != nil {
		return pattern.Set{}, arena.Config{}, err
	}

	cfg := arena.Config{
		Generation:       spec.ID,
		Spec:             spec,
		NumRows:          h.RowCount,
		NumColsFull:      numColsFull,
		ColumnsInstalled: cols,
		ObserverID:       h.ObserverID,
		Name:             arena.UnspecifiedArenaName,
	}
	if name, ok := d.Registry.ArenaName(spec.ID, h.ArenaID); ok {
		cfg.Name = name
	} else {
		d.Log.Warn().
			Uint8("generation", spec.ID).
			Uint8("arena_id", h.ArenaID).
			Msg("arena ID not in registry; labelling unspecified")
	}

	set := pattern.Set{
		Frames:  make([]pattern.Frame, h.FrameCount),
		Stretch: make([]uint8, h.FrameCount),
		Mode:    h.Mode,
	}
	px := spec.PixelsPerPanel
	for k := 0; k < h.FrameCount; k++ {
		fb := payload[k*frameSize : (k+1)*frameSize]
		if fb[0] != frameTag0 || fb[1] != frameTag1 {
			return pattern.Set{}, arena.Config{}, fmt.Errorf("%w: frame %d marker %#02x%02x",
				ErrChecksumMismatch, k, fb[0], fb[1])
		}
		if idx := int(binary.LittleEndian.Uint16(fb[2:4])); idx != k {
			return pattern.Set{}, arena.Config{}, fmt.Errorf("%w: frame %d carries index %d",
				ErrChecksumMismatch, k, idx)
		}
		frame := pattern.NewFrame(cfg.TotalPixelsY(), cfg.TotalPixelsX())
		off := frameHdr
		for r := 0; r < h.RowCount; r++ {
			for dense := 0; dense < len(cols); dense++ {
				pixels, stretch, err := DecodePanel(fb[off:off+blockSize], h.Mode, px)
				if err != nil {
					return pattern.Set{}, arena.Config{}, fmt.Errorf("frame %d panel (row %d, col %d): %w",
						k, r, cols[dense], err)
				}
				for py := 0; py < px; py++ {
					copy(frame[r*px+py][dense*px:(dense+1)*px], pixels[py])
				}
				set.Stretch[k] = stretch
				off += blockSize
			}
		}
		set.Frames[k] = frame
	}
	return set, cfg, nil
}

// panelSpec resolves the panel geometry from the decoded block size. A
// generation named in the header (compact v2) wins when it agrees with the
// byte length; otherwise the registry is searched for a generation whose
// panel size produces this block size. A header generation the registry
// does not know degrades with a warning, it does not fail the decode.
func (d *Decoder) panelSpec(h Header, blockSize int) (arena.GenerationSpec, bool) {
	if h.GenerationID != 0 {
		spec, ok := d.Registry.GenerationSpec(h.GenerationID)
		if ok && PanelBlockSize(h.Mode, spec.PixelsPerPanel) == blockSize {
			return spec, true
		}
		d.Log.Warn().
			Uint8("generation", h.GenerationID).
			Msg("header generation unknown or inconsistent with frame size; inferring from block length")
	}
	for _, id := range d.Registry.Generations() {
		spec, _ := d.Registry.GenerationSpec(id)
		if PanelBlockSize(h.Mode, spec.PixelsPerPanel) == blockSize {
			return spec, true
		}
	}
	return arena.GenerationSpec{}, false
}

// deriveLayout reconstructs the installed-column list and the full column
// count from the presence mask. Trailing absent columns are unobservable
// in the mask, so NumColsFull is the smallest grid consistent with it.
func deriveLayout(mask []byte, rows, cols int) ([]int, int, error) {
	bits := maskSetBits(mask)
	if len(bits) != rows*cols {
		return nil, 0, fmt.Errorf("%w: mask bit count %d != %d panels", ErrChecksumMismatch, len(bits), rows*cols)
	}
	installed := append([]int(nil), bits[:cols]...)
	numColsFull := installed[cols-1] + 1
	if rows > 1 {
		// Row 1 repeats the column pattern offset by the grid width.
		numColsFull = bits[cols] - bits[0]
		if numColsFull <= installed[cols-1] {
			return nil, 0, fmt.Errorf("%w: presence mask rows disagree", ErrChecksumMismatch)
		}
	}
	for r := 0; r < rows; r++ {
		for i, c := range installed {
			if bits[r*cols+i] != r*numColsFull+c {
				return nil, 0, fmt.Errorf("%w: presence mask is not row-major consistent", ErrChecksumMismatch)
			}
		}
	}
	return installed, numColsFull, nil
}
