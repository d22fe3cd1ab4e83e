package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clause-rag/internal/analyzer"
	"clause-rag/internal/chunker"
	"clause-rag/internal/corpus"
	"clause-rag/internal/models"
	"clause-rag/internal/vectorindex"
)

type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

type stubStore struct {
	hits      []models.SearchHit
	err       error
	gotK      int
	gotFilter *models.SearchFilter
	calls     int
}

func (s *stubStore) Search(_ context.Context, _ []float32, k int, filter *models.SearchFilter) ([]models.SearchHit, error) {
	s.calls++
	s.gotK = k
	s.gotFilter = filter
	if s.err != nil {
		return nil, s.err
	}
	return s.hits, nil
}

func hit(clauseID string, seq int, similarity float64, clauseType string, fairness int) models.SearchHit {
	return models.SearchHit{
		Chunk:      models.Chunk{SourceClauseID: clauseID, SequenceIndex: seq, Text: "text"},
		Similarity: similarity,
		Metadata:   models.ChunkMetadata{ClauseType: clauseType, FairnessScore: fairness, ContractType: "Freelance Agreement", RiskLevel: models.RiskLow},
	}
}

func TestSearchSimilar_InvalidK(t *testing.T) {
	emb := &stubEmbedder{}
	store := &stubStore{}
	r := New(emb, store, nil)

	_, err := r.SearchSimilar(context.Background(), "some clause", 0, "")
	require.ErrorIs(t, err, models.ErrConfiguration)
	assert.Zero(t, emb.calls, "no work may happen before validation")
	assert.Zero(t, store.calls)
}

func TestSearchSimilar_EmbedsExactlyOnce(t *testing.T) {
	emb := &stubEmbedder{}
	store := &stubStore{hits: []models.SearchHit{hit("a", 0, 0.9, "termination", 9)}}
	r := New(emb, store, nil)

	_, err := r.SearchSimilar(context.Background(), "some clause", 5, "")
	require.NoError(t, err)
	assert.Equal(t, 1, emb.calls)
}

func TestSearchSimilar_FilterResolution(t *testing.T) {
	store := &stubStore{}
	r := New(&stubEmbedder{}, store, nil)

	_, err := r.SearchSimilar(context.Background(), "q", 3, "")
	require.NoError(t, err)
	assert.Nil(t, store.gotFilter)

	_, err = r.SearchSimilar(context.Background(), "q", 3, "termination")
	require.NoError(t, err)
	require.NotNil(t, store.gotFilter)
	assert.Equal(t, "termination", store.gotFilter.ClauseType)

	// the store query is widened so dedup cannot starve the top-k
	assert.Equal(t, 3*overfetchFactor, store.gotK)
}

func TestSearchSimilar_DedupesBySourceClause(t *testing.T) {
	store := &stubStore{hits: []models.SearchHit{
		hit("a", 0, 0.95, "termination", 9),
		hit("a", 1, 0.93, "termination", 9),
		hit("b", 0, 0.90, "termination", 8),
		hit("a", 2, 0.88, "termination", 9),
		hit("c", 0, 0.85, "termination", 7),
	}}
	r := New(&stubEmbedder{}, store, nil)

	hits, err := r.SearchSimilar(context.Background(), "q", 2, "termination")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Chunk.SourceClauseID)
	assert.Equal(t, 0, hits[0].Chunk.SequenceIndex, "highest-similarity chunk wins per clause")
	assert.Equal(t, "b", hits[1].Chunk.SourceClauseID)
}

func TestSearchSimilar_PropagatesStoreErrors(t *testing.T) {
	r := New(&stubEmbedder{}, &stubStore{err: models.ErrIndexEmpty}, nil)
	_, err := r.SearchSimilar(context.Background(), "q", 3, "")
	require.ErrorIs(t, err, models.ErrIndexEmpty)
}

func TestSearchSimilar_ResolvesRecords(t *testing.T) {
	records := []models.ClauseRecord{{
		ID:                 "a",
		ContractType:       "Freelance Agreement",
		ClauseType:         "termination",
		RiskLevel:          models.RiskLow,
		Text:               "Either party may terminate with thirty days notice.",
		BenchmarkRationale: "30 days is standard across industry",
		FairnessScore:      9,
	}}
	store := &stubStore{hits: []models.SearchHit{hit("a", 0, 0.9, "termination", 9), hit("gone", 0, 0.8, "termination", 7)}}
	r := New(&stubEmbedder{}, store, corpus.New(records))

	hits, err := r.SearchSimilar(context.Background(), "q", 5, "")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.NotNil(t, hits[0].Record)
	assert.Equal(t, "30 days is standard across industry", hits[0].Record.BenchmarkRationale)
	assert.Nil(t, hits[1].Record, "stale back-reference resolves to nil until the next rebuild")
}

// End-to-end: corpus -> rebuild -> retrieve -> compare, with a deterministic
// embedder standing in for the model.
func TestSearchSimilar_EndToEnd(t *testing.T) {
	terminationText := "Either party may terminate this Agreement with thirty (30) days written notice."
	queryText := "Any party can terminate the agreement by giving 30 days written notice."

	records := []models.ClauseRecord{
		{
			ID: "freelance:termination", ContractType: "Freelance Agreement", ClauseType: "termination",
			RiskLevel: models.RiskLow, Text: terminationText, FairnessScore: 9,
		},
		{
			ID: "freelance:payment", ContractType: "Freelance Agreement", ClauseType: "payment",
			RiskLevel: models.RiskLow, Text: "Payment is due within fifteen business days of invoice.", FairnessScore: 8,
		},
	}

	emb := &stubEmbedder{vectors: map[string][]float32{
		terminationText: {1, 0, 0},
		queryText:       {0.999, 0.01, 0},
		"Payment is due within fifteen business days of invoice.": {0, 1, 0},
	}}

	builder, err := chunker.NewBuilder(512, 50)
	require.NoError(t, err)
	idx := vectorindex.New()
	require.NoError(t, idx.RebuildFrom(context.Background(), records, builder, emb))

	r := New(emb, idx, corpus.New(records))
	hits, err := r.SearchSimilar(context.Background(), queryText, 3, "termination")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Greater(t, hits[0].Similarity, 0.95)
	assert.Equal(t, "freelance:termination", hits[0].Chunk.SourceClauseID)

	report := analyzer.Compare(hits)
	assert.True(t, report.FoundSimilar)
	require.NotNil(t, report.AverageFairnessScore)
	assert.Equal(t, 9.0, *report.AverageFairnessScore)

	// a filter matching nothing is a valid empty outcome, not an error
	hits, err = r.SearchSimilar(context.Background(), queryText, 3, "liability")
	require.NoError(t, err)
	assert.Empty(t, hits)
	report = analyzer.Compare(hits)
	assert.False(t, report.FoundSimilar)
}
