// Package arena models the physical LED display arena: the hardware
// generation table, the per-generation arena-ID namespace, and the
// resolved configuration of one arena instance (rows, installed columns,
// orientation, angular offset).
package arena

import (
	"fmt"
	"sort"
)

// GenerationSpec describes one hardware generation of display panels.
// All panels of a generation are square with PixelsPerPanel pixels per side.
type GenerationSpec struct {
	ID             uint8   // Generation identifier stored in file headers (3-bit field in compact headers, so 0-7)
	PixelsPerPanel int     // Pixels per panel side (8, 16 or 20)
	PanelWidthMM   float64 // Physical panel width in millimetres
}

// Arena-ID range policy. The codec treats every range identically; these
// bounds exist for documentation and tooling only.
const (
	ArenaIDUnspecified   = 0   // Legacy files and files written without registry metadata
	ArenaIDCuratedMax    = 31  // 1-31: maintainer-curated configurations
	ArenaIDCommunityMax  = 127 // 32-127: community-registered configurations
	ArenaIDUserLocalMin  = 128 // 128-255: user-local, never centrally registered
	GenerationIDMax      = 7   // Compact headers carry the generation in 3 bits
	UnspecifiedArenaName = "unspecified"
)

// Registry is an immutable lookup table of generations and named arena
// configurations. It is always passed explicitly; there is no package-level
// default so test fixtures and alternate tables can coexist.
type Registry struct {
	generations map[uint8]GenerationSpec
	// arenaNames maps generation ID -> arena ID -> registered name.
	arenaNames map[uint8]map[uint8]string
}

// NewRegistry builds a registry from a generation table and an optional
// arena-name table. Both maps are copied.
func NewRegistry(gens []GenerationSpec, names map[uint8]map[uint8]string) (*Registry, error) {
	r := &Registry{
		generations: make(map[uint8]GenerationSpec, len(gens)),
		arenaNames:  make(map[uint8]map[uint8]string, len(names)),
	}
	for _, g := range gens {
		if g.ID > GenerationIDMax {
			return nil, fmt.Errorf("generation ID %d exceeds %d", g.ID, GenerationIDMax)
		}
		switch g.PixelsPerPanel {
		case 8, 16, 20:
		default:
			return nil, fmt.Errorf("generation %d: unsupported panel size %d", g.ID, g.PixelsPerPanel)
		}
		if _, dup := r.generations[g.ID]; dup {
			return nil, fmt.Errorf("duplicate generation ID %d", g.ID)
		}
		r.generations[g.ID] = g
	}
	for gen, table := range names {
		if _, ok := r.generations[gen]; !ok {
			return nil, fmt.Errorf("arena names registered for unknown generation %d", gen)
		}
		dst := make(map[uint8]string, len(table))
		for id, name := range table {
			if id == ArenaIDUnspecified {
				return nil, fmt.Errorf("generation %d: arena ID 0 is reserved for %q", gen, UnspecifiedArenaName)
			}
			dst[id] = name
		}
		r.arenaNames[gen] = dst
	}
	return r, nil
}

// BuiltinRegistry returns the default generation table. Arena names beyond
// the curated set below are supplied by the caller's own registry.
func BuiltinRegistry() *Registry {
	r, err := NewRegistry(
		[]GenerationSpec{
			{ID: 1, PixelsPerPanel: 8, PanelWidthMM: 32.0},
			{ID: 2, PixelsPerPanel: 16, PanelWidthMM: 40.0},
			{ID: 3, PixelsPerPanel: 20, PanelWidthMM: 40.0},
		},
		map[uint8]map[uint8]string{
			3: {
				1: "cylinder-12col-full",
				2: "cylinder-12col-partial",
			},
		},
	)
	if err != nil {
		// The builtin table is fixed at compile time; a failure here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return r
}

// GenerationSpec looks up a generation by ID.
func (r *Registry) GenerationSpec(id uint8) (GenerationSpec, bool) {
	g, ok := r.generations[id]
	return g, ok
}

// Generations returns all registered generation IDs in ascending order.
func (r *Registry) Generations() []uint8 {
	ids := make([]uint8, 0, len(r.generations))
	for id := range r.generations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ArenaName resolves an arena ID within a generation's namespace.
// ID 0 always resolves to the unspecified label. Unknown IDs report ok=false
// so the caller can degrade rather than fail; pattern correctness never
// depends on registry completeness.
func (r *Registry) ArenaName(generation, arenaID uint8) (string, bool) {
	if arenaID == ArenaIDUnspecified {
		return UnspecifiedArenaName, true
	}
	table, ok := r.arenaNames[generation]
	if !ok {
		return UnspecifiedArenaName, false
	}
	name, ok := table[arenaID]
	if !ok {
		return UnspecifiedArenaName, false
	}
	return name, true
}

// ArenaID is the reverse lookup of ArenaName.
func (r *Registry) ArenaID(generation uint8, name string) (uint8, bool) {
	if name == UnspecifiedArenaName {
		return ArenaIDUnspecified, true
	}
	for id, n := range r.arenaNames[generation] {
		if n == name {
			return id, true
		}
	}
	return 0, false
}

// WithArena returns a copy of the registry with one additional arena name
// registered. The receiver is not modified.
func (r *Registry) WithArena(generation, arenaID uint8, name string) (*Registry, error) {
	if _, ok := r.generations[generation]; !ok {
		return nil, fmt.Errorf("unknown generation %d", generation)
	}
	if arenaID == ArenaIDUnspecified {
		return nil, fmt.Errorf("arena ID 0 is reserved for %q", UnspecifiedArenaName)
	}
	if existing, ok := r.arenaNames[generation][arenaID]; ok {
		return nil, fmt.Errorf("generation %d: arena ID %d already registered as %q", generation, arenaID, existing)
	}
	gens := make([]GenerationSpec, 0, len(r.generations))
	for _, g := range r.generations {
		gens = append(gens, g)
	}
	names := make(map[uint8]map[uint8]string, len(r.arenaNames)+1)
	for gen, table := range r.arenaNames {
		dst := make(map[uint8]string, len(table))
		for id, n := range table {
			dst[id] = n
		}
		names[gen] = dst
	}
	if names[generation] == nil {
		names[generation] = make(map[uint8]string, 1)
	}
	names[generation][arenaID] = name
	return NewRegistry(gens, names)
}
