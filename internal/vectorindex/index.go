package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"clause-rag/internal/chunker"
	"clause-rag/internal/embedding"
	"clause-rag/internal/models"
)

// Entry is the unit stored in the index: a chunk, its embedding, and the
// denormalized metadata used for filter-time access without a corpus join.
// Norm caches the vector's L2 norm.
type Entry struct {
	Chunk  models.Chunk
	Vector []float32
	Meta   models.ChunkMetadata
	Norm   float64
}

// snapshot is an immutable published view of the index. Readers search it
// lock-free; writers replace it as a whole.
type snapshot struct {
	entries []Entry
	byKey   map[string]int
}

func emptySnapshot() *snapshot {
	return &snapshot{byKey: make(map[string]int)}
}

// Index is a brute-force cosine-similarity vector index. Queries rank by
// descending similarity with deterministic tie-breaking, and metadata
// filters are applied before the top-k cut. Mutations are serialized under a
// single-writer discipline and published via atomic snapshot swap, so
// concurrent readers always see a consistent view and a failed rebuild
// never leaves the index half-updated.
type Index struct {
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

// New creates an empty index.
func New() *Index {
	idx := &Index{}
	idx.snap.Store(emptySnapshot())
	return idx
}

// Count returns the number of stored entries.
func (idx *Index) Count() int {
	return len(idx.snap.Load().entries)
}

// Add inserts one chunk with its vector and metadata. Idempotent by chunk
// identity: re-adding the same (source clause id, sequence index) replaces
// the prior entry, so corpus re-ingestion does not accumulate duplicates.
func (idx *Index) Add(chunk models.Chunk, vector []float32, meta models.ChunkMetadata) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	cur := idx.snap.Load()
	next := &snapshot{
		entries: make([]Entry, len(cur.entries)),
		byKey:   make(map[string]int, len(cur.byKey)+1),
	}
	copy(next.entries, cur.entries)
	for k, v := range cur.byKey {
		next.byKey[k] = v
	}
	upsert(next, chunk, vector, meta)
	idx.snap.Store(next)
}

func upsert(s *snapshot, chunk models.Chunk, vector []float32, meta models.ChunkMetadata) {
	e := Entry{Chunk: chunk, Vector: vector, Meta: meta, Norm: l2norm(vector)}
	if pos, ok := s.byKey[chunk.Key()]; ok {
		s.entries[pos] = e
		return
	}
	s.byKey[chunk.Key()] = len(s.entries)
	s.entries = append(s.entries, e)
}

// Search returns up to k hits ranked by descending cosine similarity, ties
// broken by ascending source clause id then sequence index. The filter is
// applied before the cut, so a filtered-out entry never occupies a slot. A
// zero-entry index is an error; zero entries after filtering is a valid
// empty result.
func (idx *Index) Search(_ context.Context, queryVec []float32, k int, filter *models.SearchFilter) ([]models.SearchHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", models.ErrConfiguration, k)
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	snap := idx.snap.Load()
	if len(snap.entries) == 0 {
		return nil, models.ErrIndexEmpty
	}

	queryNorm := l2norm(queryVec)
	var hits []models.SearchHit
	for i := range snap.entries {
		e := &snap.entries[i]
		if !filter.Matches(e.Meta) {
			continue
		}
		hits = append(hits, models.SearchHit{
			Chunk:      e.Chunk,
			Similarity: cosine(queryVec, queryNorm, e.Vector, e.Norm),
			Metadata:   e.Meta,
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		if hits[i].Chunk.SourceClauseID != hits[j].Chunk.SourceClauseID {
			return hits[i].Chunk.SourceClauseID < hits[j].Chunk.SourceClauseID
		}
		return hits[i].Chunk.SequenceIndex < hits[j].Chunk.SequenceIndex
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// RebuildFrom clears the index and reprocesses the entire corpus. The new
// snapshot is built off to the side and published only on success: any
// validation, round-trip, or embedding failure aborts the rebuild and the
// previously published index stays authoritative.
func (idx *Index) RebuildFrom(ctx context.Context, records []models.ClauseRecord, builder *chunker.Builder, emb embedding.Embedder) error {
	next := emptySnapshot()
	for i := range records {
		rec := records[i]
		if err := rec.Validate(); err != nil {
			return err
		}
		chunks := builder.Chunk(rec.ID, rec.Text)
		if got := builder.Reconstruct(chunks); got != rec.Text {
			return fmt.Errorf("%w: chunking round-trip mismatch for clause %q", models.ErrIngestion, rec.ID)
		}
		meta := models.MetadataFor(rec)
		for _, ch := range chunks {
			vec, err := emb.Embed(ctx, ch.Text)
			if err != nil {
				return fmt.Errorf("embedding chunk %s: %w", ch.Key(), err)
			}
			upsert(next, ch, vec, meta)
		}
	}

	idx.mu.Lock()
	idx.snap.Store(next)
	idx.mu.Unlock()
	log.Debug().Int("entries", len(next.entries)).Int("records", len(records)).Msg("index rebuilt")
	return nil
}

// cosine computes dot(a,b)/(|a||b|) with a defined result of 0 when either
// norm is exactly zero. Vectors are compared as stored, without
// renormalization.
func cosine(a []float32, normA float64, b []float32, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum / (normA * normB)
}

func l2norm(v []float32) float64 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
