package arena

import (
	"testing"
)

func TestResolveConfigDefaults(t *testing.T) {
	reg := BuiltinRegistry()

	cfg, err := ResolveConfig(reg, ConfigInput{Generation: 3, NumRows: 2, NumColsFull: 12})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	if got := cfg.InstalledColumnCount(); got != 12 {
		t.Errorf("nil ColumnsInstalled should mean all columns; got %d", got)
	}
	if cfg.TotalPixelsX() != 240 || cfg.TotalPixelsY() != 40 {
		t.Errorf("derived pixels = %dx%d, want 240x40", cfg.TotalPixelsX(), cfg.TotalPixelsY())
	}
	if cfg.PanelCount() != 24 {
		t.Errorf("PanelCount = %d, want 24", cfg.PanelCount())
	}
}

// A partial arena's pixel width counts installed columns only, never the
// full-grid column count.
func TestResolveConfigPartialArena(t *testing.T) {
	reg := BuiltinRegistry()

	cfg, err := ResolveConfig(reg, ConfigInput{
		Generation:       3,
		NumRows:          2,
		NumColsFull:      10,
		ColumnsInstalled: []int{1, 2, 3, 4, 5, 6, 7, 8},
	})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	if cfg.TotalPixelsX() != 160 {
		t.Errorf("TotalPixelsX = %d, want 160 (8 installed columns x 20px)", cfg.TotalPixelsX())
	}
	if cfg.TotalPixelsY() != 40 {
		t.Errorf("TotalPixelsY = %d, want 40", cfg.TotalPixelsY())
	}
	if cfg.ColumnInstalled(0) || !cfg.ColumnInstalled(1) || cfg.ColumnInstalled(9) {
		t.Error("ColumnInstalled disagrees with installed set")
	}
	if cfg.InstalledIndex(3) != 2 || cfg.InstalledIndex(0) != -1 {
		t.Errorf("InstalledIndex mapping wrong: idx(3)=%d idx(0)=%d", cfg.InstalledIndex(3), cfg.InstalledIndex(0))
	}
}

func TestResolveConfigRejects(t *testing.T) {
	reg := BuiltinRegistry()

	tests := []struct {
		name string
		in   ConfigInput
	}{
		{"unknown generation", ConfigInput{Generation: 9, NumRows: 1, NumColsFull: 4}},
		{"zero rows", ConfigInput{Generation: 3, NumRows: 0, NumColsFull: 4}},
		{"zero full columns", ConfigInput{Generation: 3, NumRows: 1, NumColsFull: 0}},
		{"empty installed set", ConfigInput{Generation: 3, NumRows: 1, NumColsFull: 4, ColumnsInstalled: []int{}}},
		{"column out of range", ConfigInput{Generation: 3, NumRows: 1, NumColsFull: 4, ColumnsInstalled: []int{0, 4}}},
		{"negative column", ConfigInput{Generation: 3, NumRows: 1, NumColsFull: 4, ColumnsInstalled: []int{-1}}},
		{"duplicate column", ConfigInput{Generation: 3, NumRows: 1, NumColsFull: 4, ColumnsInstalled: []int{2, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ResolveConfig(reg, tt.in); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestResolveConfigSortsColumns(t *testing.T) {
	reg := BuiltinRegistry()
	cfg, err := ResolveConfig(reg, ConfigInput{
		Generation:       1,
		NumRows:          1,
		NumColsFull:      6,
		ColumnsInstalled: []int{5, 0, 3},
	})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	want := []int{0, 3, 5}
	for i, c := range want {
		if cfg.ColumnsInstalled[i] != c {
			t.Fatalf("ColumnsInstalled = %v, want %v", cfg.ColumnsInstalled, want)
		}
	}
}
