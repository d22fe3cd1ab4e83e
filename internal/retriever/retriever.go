package retriever

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"clause-rag/internal/corpus"
	"clause-rag/internal/embedding"
	"clause-rag/internal/models"
)

// DefaultTopK is the number of similar clauses returned when the caller
// does not ask for a specific count.
const DefaultTopK = 5

// overfetchFactor widens the index query so that one clause's multiple
// chunks cannot crowd diverse clauses out of the final top-k after
// per-clause deduplication.
const overfetchFactor = 4

// VectorStore is the search contract the retriever needs from an index
// backend.
type VectorStore interface {
	Search(ctx context.Context, queryVec []float32, k int, filter *models.SearchFilter) ([]models.SearchHit, error)
}

// Retriever orchestrates query embedding, index search, per-clause
// deduplication, and record resolution. It is read-only with respect to the
// index and safe for concurrent use.
type Retriever struct {
	embedder embedding.Embedder
	store    VectorStore
	corpus   *corpus.Corpus
}

// New creates a retriever. The corpus is used only to resolve chunk
// back-references into full clause records and may be nil.
func New(emb embedding.Embedder, store VectorStore, c *corpus.Corpus) *Retriever {
	return &Retriever{embedder: emb, store: store, corpus: c}
}

// SearchSimilar embeds the query text once, searches the index with an
// optional clause-type filter, and returns at most k hits, each the
// highest-similarity chunk of its source clause. Index and configuration
// errors propagate to the caller unchanged.
func (r *Retriever) SearchSimilar(ctx context.Context, queryText string, k int, clauseType string) ([]models.SearchHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", models.ErrConfiguration, k)
	}

	queryVec, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, err
	}

	var filter *models.SearchFilter
	if clauseType != "" {
		filter = &models.SearchFilter{ClauseType: clauseType}
	}

	hits, err := r.store.Search(ctx, queryVec, k*overfetchFactor, filter)
	if err != nil {
		return nil, err
	}

	hits = dedupeByClause(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	r.resolve(hits)
	log.Debug().Int("hits", len(hits)).Str("clause_type", clauseType).Msg("similar clause search done")
	return hits, nil
}

// dedupeByClause keeps only the first (highest-ranked) chunk per source
// clause, preserving rank order.
func dedupeByClause(hits []models.SearchHit) []models.SearchHit {
	seen := make(map[string]struct{}, len(hits))
	out := hits[:0]
	for _, h := range hits {
		if _, ok := seen[h.Chunk.SourceClauseID]; ok {
			continue
		}
		seen[h.Chunk.SourceClauseID] = struct{}{}
		out = append(out, h)
	}
	return out
}

// resolve fills each hit's Record from the corpus. A missing record means
// the index is stale against the loaded corpus; the hit keeps its
// denormalized metadata and the staleness is fixed by a rebuild, not here.
func (r *Retriever) resolve(hits []models.SearchHit) {
	if r.corpus == nil {
		return
	}
	for i := range hits {
		if rec, ok := r.corpus.Get(hits[i].Chunk.SourceClauseID); ok {
			hits[i].Record = rec
		}
	}
}
