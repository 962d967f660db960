// patgen generates arena stimulus patterns and works with pattern files.
//
//	patgen make -pattern square-grating -out drift.pat [flags]
//	patgen info file.pat
//	patgen convert -in old.pat -out new.pat [-family compact] [-version 1]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arena-display/pattern-tools/arena"
	"github.com/arena-display/pattern-tools/geom"
	"github.com/arena-display/pattern-tools/patfile"
	"github.com/arena-display/pattern-tools/pattern"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "make":
		runMake(os.Args[2:])
	case "info":
		runInfo(os.Args[2:])
	case "convert":
		runConvert(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: patgen <make|info|convert> [flags]")
}

// parseCSVIntSlice parses a comma-separated list of ints
func parseCSVIntSlice(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid int '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseMode(s string) (pattern.GrayscaleMode, error) {
	switch s {
	case "gs2":
		return pattern.GS2, nil
	case "gs16":
		return pattern.GS16, nil
	}
	return 0, fmt.Errorf("unknown grayscale mode %q (gs2 or gs16)", s)
}

func parsePattern(s string) (pattern.PatternType, error) {
	switch s {
	case "square-grating":
		return pattern.SquareGrating, nil
	case "sine-grating":
		return pattern.SineGrating, nil
	case "edge":
		return pattern.Edge, nil
	case "off-on":
		return pattern.OffOn, nil
	case "starfield":
		return pattern.Starfield, nil
	}
	return 0, fmt.Errorf("unknown pattern type %q", s)
}

func parseMotion(s string) (pattern.MotionType, error) {
	switch s {
	case "rotation":
		return pattern.Rotation, nil
	case "translation":
		return pattern.Translation, nil
	case "expansion":
		return pattern.Expansion, nil
	}
	return 0, fmt.Errorf("unknown motion type %q", s)
}

func parsePanelModel(s string) (geom.PanelModel, error) {
	switch s {
	case "smooth":
		return geom.PanelModelSmooth, nil
	case "poly":
		return geom.PanelModelPoly, nil
	}
	return 0, fmt.Errorf("unknown panel model %q (smooth or poly)", s)
}

func parseFamily(s string) (patfile.Family, error) {
	switch s {
	case "extended":
		return patfile.FamilyExtended, nil
	case "compact":
		return patfile.FamilyCompact, nil
	}
	return 0, fmt.Errorf("unknown header family %q (extended or compact)", s)
}

func runMake(args []string) {
	fs := flag.NewFlagSet("make", flag.ExitOnError)
	out := fs.String("out", "", "output pattern file (required)")

	patName := fs.String("pattern", "square-grating", "square-grating, sine-grating, edge, off-on or starfield")
	motName := fs.String("motion", "rotation", "rotation, translation or expansion")
	modeName := fs.String("mode", "gs16", "grayscale mode: gs2 or gs16")
	frames := fs.Int("frames", 24, "frames in the sequence (off-on is always 2)")
	period := fs.Float64("period", 30, "spatial period in degrees")
	duty := fs.Int("duty", 50, "square-grating duty cycle percent")
	levels := fs.String("levels", "", "high,low,background intensities (default mode max,0,0)")
	stretch := fs.Int("stretch", 0, "per-frame stretch byte (0-255)")
	poleAz := fs.Float64("pole-az", 0, "motion pole azimuth in degrees")
	poleEl := fs.Float64("pole-el", 90, "motion pole elevation in degrees")
	samples := fs.Int("samples", 1, "super-sampling grid size per pixel axis")
	panelModel := fs.String("panel-model", "smooth", "panel surface model: smooth or poly")

	dots := fs.Int("star-dots", 200, "starfield dot count")
	dotRadius := fs.Float64("star-radius", 2, "starfield dot radius in degrees")
	seed := fs.Int64("seed", 1, "starfield random seed")

	gen := fs.Int("gen", 3, "hardware generation ID")
	rows := fs.Int("rows", 2, "panel rows")
	cols := fs.Int("cols", 12, "full-circle panel columns")
	installed := fs.String("installed", "", "installed column indices, e.g. 0,1,2 (default all)")
	flipped := fs.Bool("flip", false, "mirror the display for an outside observer")
	offset := fs.Float64("offset", 0, "arena angular offset in degrees")

	familyName := fs.String("family", "extended", "header family: extended or compact")
	version := fs.Int("version", 0, "format version (0 = latest)")
	arenaID := fs.Int("arena-id", 0, "arena registry ID to embed")
	observer := fs.Int("observer", 0, "observer ID to embed (extended v2)")
	fs.Parse(args)

	if *out == "" {
		log.Fatal("make: -out is required")
	}
	pat, err := parsePattern(*patName)
	if err != nil {
		log.Fatalf("make: %v", err)
	}
	mot, err := parseMotion(*motName)
	if err != nil {
		log.Fatalf("make: %v", err)
	}
	mode, err := parseMode(*modeName)
	if err != nil {
		log.Fatalf("make: %v", err)
	}
	family, err := parseFamily(*familyName)
	if err != nil {
		log.Fatalf("make: %v", err)
	}
	colList, err := parseCSVIntSlice(*installed)
	if err != nil {
		log.Fatalf("make: -installed: %v", err)
	}
	model, err := parsePanelModel(*panelModel)
	if err != nil {
		log.Fatalf("make: %v", err)
	}

	lv := pattern.Levels{High: mode.MaxLevel()}
	if *levels != "" {
		vals, err := parseCSVIntSlice(*levels)
		if err != nil || len(vals) != 3 {
			log.Fatalf("make: -levels wants high,low,background, got %q", *levels)
		}
		lv = pattern.Levels{High: uint8(vals[0]), Low: uint8(vals[1]), Background: uint8(vals[2])}
	}

	cfg, err := arena.ResolveConfig(arena.BuiltinRegistry(), arena.ConfigInput{
		Generation:       uint8(*gen),
		NumRows:          *rows,
		NumColsFull:      *cols,
		ColumnsInstalled: colList,
		Flipped:          *flipped,
		AngleOffsetDeg:   *offset,
		ObserverID:       uint8(*observer),
	})
	if err != nil {
		log.Fatalf("make: arena: %v", err)
	}

	set, err := pattern.Generate(pattern.Params{
		Pattern:          pat,
		Motion:           mot,
		Mode:             mode,
		NumFrames:        *frames,
		SpatialPeriodDeg: *period,
		DutyCyclePct:     *duty,
		PoleAzDeg:        *poleAz,
		PoleElDeg:        *poleEl,
		Levels:           lv,
		Stretch:          uint8(*stretch),
		Star: pattern.StarfieldParams{
			NumDots:      *dots,
			DotRadiusDeg: *dotRadius,
			Seed:         *seed,
		},
		Geometry: geom.Options{PanelModel: model, SamplesPerAxis: *samples},
	}, cfg)
	if err != nil {
		log.Fatalf("make: generate: %v", err)
	}

	opts := patfile.EncodeOptions{Family: family, Version: *version, ArenaID: uint8(*arenaID)}
	if err := patfile.Save(*out, set, cfg, opts); err != nil {
		log.Fatalf("make: %v", err)
	}
	fmt.Printf("%s: %d frames, %dx%d px, %s\n", *out, len(set.Frames), set.Width(), set.Height(), set.Mode)
}

func runInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		log.Fatal("info: expected one pattern file argument")
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		log.Fatalf("info: %v", err)
	}
	h, err := patfile.Info(data)
	if err != nil {
		log.Fatalf("info: %v", err)
	}
	fmt.Printf("family:  %s v%d\n", h.Family, h.Version)
	fmt.Printf("mode:    %s\n", h.Mode)
	fmt.Printf("frames:  %d\n", h.FrameCount)
	fmt.Printf("panels:  %d rows x %d installed columns\n", h.RowCount, h.InstalledColumnCount)
	if h.GenerationID != 0 {
		fmt.Printf("gen:     %d\n", h.GenerationID)
	}
	if h.ArenaID != 0 {
		fmt.Printf("arena:   %d\n", h.ArenaID)
	}
	if h.ObserverID != 0 {
		fmt.Printf("observer: %d\n", h.ObserverID)
	}
}

func runConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	in := fs.String("in", "", "input pattern file (required)")
	out := fs.String("out", "", "output pattern file (required)")
	familyName := fs.String("family", "extended", "output header family: extended or compact")
	version := fs.Int("version", 0, "output format version (0 = latest)")
	arenaID := fs.Int("arena-id", 0, "arena registry ID to embed")
	fs.Parse(args)

	if *in == "" || *out == "" {
		log.Fatal("convert: -in and -out are required")
	}
	family, err := parseFamily(*familyName)
	if err != nil {
		log.Fatalf("convert: %v", err)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("convert: %v", err)
	}
	dec := patfile.NewDecoder(arena.BuiltinRegistry())
	dec.Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	set, cfg, err := dec.Decode(data)
	if err != nil {
		log.Fatalf("convert: %s: %v", *in, err)
	}

	opts := patfile.EncodeOptions{Family: family, Version: *version, ArenaID: uint8(*arenaID)}
	if err := patfile.Save(*out, set, cfg, opts); err != nil {
		log.Fatalf("convert: %v", err)
	}
	fmt.Printf("%s -> %s (%s v%d)\n", *in, *out, family, effectiveVersion(*version))
}

func effectiveVersion(v int) int {
	if v == 0 {
		return 2
	}
	return v
}
