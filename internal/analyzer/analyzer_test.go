package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clause-rag/internal/models"
)

func hit(similarity float64, fairness int) models.SearchHit {
	return models.SearchHit{
		Chunk:      models.Chunk{SourceClauseID: "c", Text: "text"},
		Similarity: similarity,
		Metadata: models.ChunkMetadata{
			ContractType:  "Freelance Agreement",
			ClauseType:    "termination",
			RiskLevel:     models.RiskLow,
			FairnessScore: fairness,
		},
	}
}

func TestCompare_AverageIsUnweightedMean(t *testing.T) {
	report := Compare([]models.SearchHit{hit(0.9, 9), hit(0.8, 7), hit(0.7, 8)})

	assert.True(t, report.FoundSimilar)
	require.NotNil(t, report.AverageFairnessScore)
	assert.Equal(t, 8.0, *report.AverageFairnessScore)
	assert.Len(t, report.SimilarClauses, 3)
}

func TestCompare_EmptyHitsIsValidTerminalState(t *testing.T) {
	report := Compare(nil)

	assert.False(t, report.FoundSimilar)
	assert.Empty(t, report.SimilarClauses)
	assert.Nil(t, report.AverageFairnessScore)
	assert.Nil(t, report.BestMatch)
	assert.Nil(t, report.SimilarityOfBestMatch)
	assert.Equal(t, "No similar clauses found for comparison.", report.Summary)
}

func TestCompare_BestMatchIsHead(t *testing.T) {
	hits := []models.SearchHit{hit(0.85, 9), hit(0.78, 7)}
	report := Compare(hits)

	require.NotNil(t, report.BestMatch)
	assert.Equal(t, 0.85, report.BestMatch.Similarity)
	assert.Equal(t, 9, report.BestMatch.Metadata.FairnessScore)
	require.NotNil(t, report.SimilarityOfBestMatch)
	assert.Equal(t, 0.85, *report.SimilarityOfBestMatch)
}

func TestCompare_Deterministic(t *testing.T) {
	hits := []models.SearchHit{hit(0.9, 9), hit(0.6, 5)}
	assert.Equal(t, Compare(hits), Compare(hits))
}

func TestCompare_SummaryNamesBestMatch(t *testing.T) {
	report := Compare([]models.SearchHit{hit(0.9123, 9)})

	assert.Contains(t, report.Summary, "Found 1 similar clauses")
	assert.Contains(t, report.Summary, "Freelance Agreement")
	assert.Contains(t, report.Summary, "termination")
	assert.Contains(t, report.Summary, "9/10")
	assert.Contains(t, report.Summary, "0.9123")
}
