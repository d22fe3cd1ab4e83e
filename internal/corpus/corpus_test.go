package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clause-rag/internal/models"
)

func TestSeedDir_LoadDir_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SeedDir(dir))

	corp, err := LoadDir(dir)
	require.NoError(t, err)
	require.Greater(t, corp.Len(), 10)

	for _, rec := range corp.Records() {
		assert.NoError(t, rec.Validate(), "seed record %s must pass ingestion validation", rec.ID)
		assert.NotEmpty(t, rec.ContractType)
		assert.NotEmpty(t, rec.ClauseType)
		assert.True(t, rec.RiskLevel.Valid())
	}
}

func TestLoadDir_StableIDsAcrossLoads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SeedDir(dir))

	first, err := LoadDir(dir)
	require.NoError(t, err)
	second, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, first.Records(), second.Records())
}

func TestLoadDir_FlattensClauses(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SeedDir(dir))

	corp, err := LoadDir(dir)
	require.NoError(t, err)

	rec, ok := corp.Get("freelance_agreement_1:termination")
	require.True(t, ok)
	assert.Equal(t, "Freelance Agreement", rec.ContractType)
	assert.Equal(t, "termination", rec.ClauseType)
	assert.Equal(t, 9, rec.FairnessScore)
	assert.Contains(t, rec.Text, "thirty (30) days written notice")
	assert.Equal(t, "30 days is standard across industry", rec.BenchmarkRationale)
	assert.EqualValues(t, 30, rec.KeyTerms["notice_period_days"])
}

func TestLoadDir_MissingFairnessScore(t *testing.T) {
	dir := t.TempDir()
	contract := `{
  "type": "Test Agreement",
  "risk_level": "low",
  "clauses": {
    "termination": {
      "text": "Either party may terminate at any time.",
      "key_terms": {"notice_period_days": 0},
      "benchmark": "no score assigned yet"
    }
  }
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test_agreement_1.json"), []byte(contract), 0o644))

	corp, err := LoadDir(dir)
	require.NoError(t, err, "loading is lenient, the ingestion invariant rejects later")
	require.Equal(t, 1, corp.Len())

	rec := corp.Records()[0]
	assert.Equal(t, 0, rec.FairnessScore)
	require.Error(t, rec.Validate())
	assert.ErrorIs(t, rec.Validate(), models.ErrIngestion)
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestLoadDir_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))
	_, err := LoadDir(dir)
	require.Error(t, err)
}

func TestCorpus_Get(t *testing.T) {
	corp := New([]models.ClauseRecord{{ID: "a", Text: "x", FairnessScore: 5}})
	rec, ok := corp.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", rec.ID)

	_, ok = corp.Get("missing")
	assert.False(t, ok)
}
