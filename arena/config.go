package arena

import (
	"fmt"
	"sort"
)

// ConfigInput is the boundary form of an arena configuration, typically
// produced by an external config loader. Optional fields use the loader's
// conventions: a nil ColumnsInstalled means every column is present.
type ConfigInput struct {
	Generation       uint8
	NumRows          int
	NumColsFull      int
	ColumnsInstalled []int // nil = all columns installed
	Flipped          bool
	AngleOffsetDeg   float64
	ObserverID       uint8
}

// Config is the fully resolved arena configuration used by the geometry
// engine and codecs. No field is optional: ColumnsInstalled is always the
// concrete, sorted, duplicate-free list of installed column indices.
type Config struct {
	Generation       uint8
	Spec             GenerationSpec
	NumRows          int
	NumColsFull      int
	ColumnsInstalled []int
	Flipped          bool
	AngleOffsetDeg   float64
	ObserverID       uint8

	// Name is the registry-resolved arena name, or the unspecified label
	// when the arena ID was not found. Informational only.
	Name string
}

// ResolveConfig normalizes a ConfigInput against a registry. All structural
// validation happens here so the core never sees a partially valid arena.
func ResolveConfig(reg *Registry, in ConfigInput) (Config, error) {
	spec, ok := reg.GenerationSpec(in.Generation)
	if !ok {
		return Config{}, fmt.Errorf("unknown generation %d", in.Generation)
	}
	if in.NumRows < 1 {
		return Config{}, fmt.Errorf("num rows must be >= 1, got %d", in.NumRows)
	}
	if in.NumColsFull < 1 {
		return Config{}, fmt.Errorf("num full columns must be >= 1, got %d", in.NumColsFull)
	}

	var cols []int
	if in.ColumnsInstalled == nil {
		cols = make([]int, in.NumColsFull)
		for i := range cols {
			cols[i] = i
		}
	} else {
		if len(in.ColumnsInstalled) == 0 {
			return Config{}, fmt.Errorf("arena has zero installed columns")
		}
		cols = append([]int(nil), in.ColumnsInstalled...)
		sort.Ints(cols)
		for i, c := range cols {
			if c < 0 || c >= in.NumColsFull {
				return Config{}, fmt.Errorf("installed column %d outside [0,%d)", c, in.NumColsFull)
			}
			if i > 0 && cols[i-1] == c {
				return Config{}, fmt.Errorf("duplicate installed column %d", c)
			}
		}
	}

	return Config{
		Generation:       in.Generation,
		Spec:             spec,
		NumRows:          in.NumRows,
		NumColsFull:      in.NumColsFull,
		ColumnsInstalled: cols,
		Flipped:          in.Flipped,
		AngleOffsetDeg:   in.AngleOffsetDeg,
		ObserverID:       in.ObserverID,
		Name:             UnspecifiedArenaName,
	}, nil
}

// PixelsPerPanel returns the panel side length in pixels.
func (c Config) PixelsPerPanel() int { return c.Spec.PixelsPerPanel }

// InstalledColumnCount returns the number of installed panel columns.
func (c Config) InstalledColumnCount() int { return len(c.ColumnsInstalled) }

// TotalPixelsX is the pixel width of the stitched display surface. Absent
// columns contribute nothing: a partial arena's frames are packed dense.
func (c Config) TotalPixelsX() int { return len(c.ColumnsInstalled) * c.Spec.PixelsPerPanel }

// TotalPixelsY is the pixel height of the stitched display surface.
func (c Config) TotalPixelsY() int { return c.NumRows * c.Spec.PixelsPerPanel }

// PanelCount returns the number of installed panels.
func (c Config) PanelCount() int { return c.NumRows * len(c.ColumnsInstalled) }

// ColumnInstalled reports whether full-grid column index col is installed.
func (c Config) ColumnInstalled(col int) bool {
	i := sort.SearchInts(c.ColumnsInstalled, col)
	return i < len(c.ColumnsInstalled) && c.ColumnsInstalled[i] == col
}

// InstalledIndex maps a full-grid column index to its dense position in the
// installed list, or -1 when the column is absent.
func (c Config) InstalledIndex(col int) int {
	i := sort.SearchInts(c.ColumnsInstalled, col)
	if i < len(c.ColumnsInstalled) && c.ColumnsInstalled[i] == col {
		return i
	}
	return -1
}
