package vectorindex

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// diskImage is the on-disk layout. The format is private to this package;
// recompute-from-corpus via RebuildFrom is always the recovery path when a
// saved file cannot be read back.
type diskImage struct {
	Entries []Entry
}

// Save writes the current snapshot to path so the index survives process
// restarts without a rebuild.
func (idx *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating index file: %w", err)
	}
	defer f.Close()

	snap := idx.snap.Load()
	if err := gob.NewEncoder(f).Encode(diskImage{Entries: snap.entries}); err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	return nil
}

// Load reads a saved index from path. Load(Save(idx)) preserves the Add and
// Search contracts.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	var img diskImage
	if err := gob.NewDecoder(f).Decode(&img); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}
	snap := &snapshot{
		entries: img.Entries,
		byKey:   make(map[string]int, len(img.Entries)),
	}
	for i := range snap.entries {
		snap.byKey[snap.entries[i].Chunk.Key()] = i
	}
	idx := &Index{}
	idx.snap.Store(snap)
	return idx, nil
}
