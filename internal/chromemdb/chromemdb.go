package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"clause-rag/internal/chunker"
	"clause-rag/internal/embedding"
	"clause-rag/internal/models"
)

const compress = false

// Store is the chromem-go backed clause store, an alternative to the native
// in-memory index when the corpus should live in chromem's persistent
// format. Ranking is delegated to chromem; the native index remains the
// reference for exact tie-break ordering. The store keeps two generation
// collections under the configured name and serves exactly one of them, so
// a rebuild can be staged aside and flipped in whole.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	baseName   string
	active     string
}

// NewStore opens (or creates) a chromem database. With inMemory set the
// store lives only for the process lifetime.
func NewStore(dbPath, collectionName string, inMemory bool) (*Store, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}
	s := &Store{db: db, baseName: collectionName}
	s.active = s.pickActive()
	c, err := s.db.GetOrCreateCollection(s.active, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}
	s.collection = c
	return s, nil
}

func (s *Store) generationName(i int) string {
	return fmt.Sprintf("%s_gen%d", s.baseName, i)
}

func (s *Store) nextGeneration() string {
	if s.active == s.generationName(0) {
		return s.generationName(1)
	}
	return s.generationName(0)
}

// pickActive chooses which generation to serve when opening a persisted
// database. Both generations survive only when a flip was interrupted
// before cleanup; the fuller one is the completed rebuild.
func (s *Store) pickActive() string {
	cols := s.db.ListCollections()
	g0, g1 := s.generationName(0), s.generationName(1)
	c0, ok0 := cols[g0]
	c1, ok1 := cols[g1]
	switch {
	case ok0 && ok1:
		if c1.Count() > c0.Count() {
			return g1
		}
		return g0
	case ok1:
		return g1
	default:
		return g0
	}
}

// Count returns the number of stored chunks.
func (s *Store) Count() int {
	if s.collection == nil {
		return 0
	}
	return s.collection.Count()
}

// RebuildFrom reprocesses the entire corpus into the inactive generation
// and flips to it on success. Records are validated and chunked exactly as
// the native index does; any failure up to and including the document write
// leaves the previously active collection serving.
func (s *Store) RebuildFrom(ctx context.Context, records []models.ClauseRecord, builder *chunker.Builder, emb embedding.Embedder) error {
	var docs []chromem.Document
	for i := range records {
		rec := records[i]
		if err := rec.Validate(); err != nil {
			return err
		}
		chunks := builder.Chunk(rec.ID, rec.Text)
		if got := builder.Reconstruct(chunks); got != rec.Text {
			return fmt.Errorf("%w: chunking round-trip mismatch for clause %q", models.ErrIngestion, rec.ID)
		}
		for _, ch := range chunks {
			vec, err := emb.Embed(ctx, ch.Text)
			if err != nil {
				return fmt.Errorf("embedding chunk %s: %w", ch.Key(), err)
			}
			docs = append(docs, chromem.Document{
				ID:        ch.Key(),
				Content:   ch.Text,
				Metadata:  metadataMap(ch, models.MetadataFor(rec)),
				Embedding: vec,
			})
		}
	}

	if err := s.swapIn(ctx, docs); err != nil {
		return err
	}
	log.Debug().Int("chunks", len(docs)).Int("records", len(records)).Msg("chromem collection rebuilt")
	return nil
}

// swapIn writes docs into the inactive generation and makes it the served
// collection only after every document is stored. A failed write drops the
// staging generation; the active collection is never touched before the
// flip.
func (s *Store) swapIn(ctx context.Context, docs []chromem.Document) error {
	nextName := s.nextGeneration()
	if err := s.db.DeleteCollection(nextName); err != nil {
		return fmt.Errorf("failed to drop stale collection: %v", err)
	}
	next, err := s.db.GetOrCreateCollection(nextName, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create/get collection: %v", err)
	}
	if len(docs) > 0 {
		if err := next.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			_ = s.db.DeleteCollection(nextName)
			return fmt.Errorf("failed to add documents: %v", err)
		}
	}

	prev := s.active
	s.collection = next
	s.active = nextName
	if err := s.db.DeleteCollection(prev); err != nil {
		// the flip already happened; the stale generation is cleaned up on
		// the next rebuild or the next open
		log.Warn().Err(err).Str("collection", prev).Msg("failed to drop previous generation")
	}
	return nil
}

// Search ranks stored chunks against the query vector. The filter is
// applied client-side before the top-k cut: chromem's NResults contract is
// relative to the documents left after its where-filter, so pushing the
// predicate down would make the requestable result count depend on the
// filter itself.
func (s *Store) Search(ctx context.Context, queryVec []float32, k int, filter *models.SearchFilter) ([]models.SearchHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", models.ErrConfiguration, k)
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if s.Count() == 0 {
		return nil, models.ErrIndexEmpty
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryVec,
		NResults:       s.Count(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	var hits []models.SearchHit
	for _, res := range results {
		hit := hitFrom(res)
		if !filter.Matches(hit.Metadata) {
			continue
		}
		hits = append(hits, hit)
		if len(hits) == k {
			break
		}
	}
	return hits, nil
}

func metadataMap(ch models.Chunk, meta models.ChunkMetadata) map[string]string {
	return map[string]string{
		"source_clause_id": ch.SourceClauseID,
		"sequence_index":   strconv.Itoa(ch.SequenceIndex),
		"is_complete":      strconv.FormatBool(ch.IsComplete),
		"contract_type":    meta.ContractType,
		"clause_type":      meta.ClauseType,
		"risk_level":       string(meta.RiskLevel),
		"fairness_score":   strconv.Itoa(meta.FairnessScore),
	}
}

func hitFrom(res chromem.Result) models.SearchHit {
	seq, _ := strconv.Atoi(res.Metadata["sequence_index"])
	complete, _ := strconv.ParseBool(res.Metadata["is_complete"])
	fairness, _ := strconv.Atoi(res.Metadata["fairness_score"])
	return models.SearchHit{
		Chunk: models.Chunk{
			SourceClauseID: res.Metadata["source_clause_id"],
			Text:           res.Content,
			IsComplete:     complete,
			SequenceIndex:  seq,
		},
		Similarity: float64(res.Similarity),
		Metadata: models.ChunkMetadata{
			ContractType:  res.Metadata["contract_type"],
			ClauseType:    res.Metadata["clause_type"],
			RiskLevel:     models.RiskLevel(res.Metadata["risk_level"]),
			FairnessScore: fairness,
		},
	}
}
