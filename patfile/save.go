package patfile

import (
	"fmt"
	"io"
	"os"

	"github.com/arena-display/pattern-tools/arena"
	"github.com/arena-display/pattern-tools/pattern"
)

// Save encodes the set and writes it to path. Encoding happens fully in
// memory first, so a structural error never leaves a partial file behind.
func Save(path string, set pattern.Set, cfg arena.Config, opts EncodeOptions) error {
	data, err := Encode(set, cfg, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pattern file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write pattern file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pattern file: %w", err)
	}
	return nil
}

// Load reads and decodes a pattern file, resolving metadata against reg.
func Load(path string, reg *arena.Registry) (pattern.Set, arena.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return pattern.Set{}, arena.Config{}, fmt.Errorf("open pattern file: %w", err)
	}
	data, err := io.ReadAll(f)
	closeErr := f.Close()
	if err != nil {
		return pattern.Set{}, arena.Config{}, fmt.Errorf("read pattern file: %w", err)
	}
	if closeErr != nil {
		return pattern.Set{}, arena.Config{}, fmt.Errorf("close pattern file: %w", closeErr)
	}
	return NewDecoder(reg).Decode(data)
}
