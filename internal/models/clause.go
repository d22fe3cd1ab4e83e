package models

import (
	"fmt"
	"strconv"
)

// RiskLevel is the ordinal risk classification of a benchmarked clause.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether the risk level is one of the known ordinals.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// ClauseRecord is a single benchmarked clause from the standard contract
// database. ContractType and ClauseType are open-ended string sets so the
// corpus can grow without code changes.
type ClauseRecord struct {
	ID                 string         `json:"id"`
	ContractType       string         `json:"contract_type"`
	ClauseType         string         `json:"clause_type"`
	RiskLevel          RiskLevel      `json:"risk_level"`
	Text               string         `json:"text"`
	BenchmarkRationale string         `json:"benchmark_rationale"`
	FairnessScore      int            `json:"fairness_score"`
	KeyTerms           map[string]any `json:"key_terms,omitempty"`
}

// Validate checks the invariants a record must satisfy before it may enter
// the index. Records failing validation abort the whole rebuild.
func (r *ClauseRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: clause record has no id", ErrIngestion)
	}
	if r.Text == "" {
		return fmt.Errorf("%w: clause %q has no text", ErrIngestion, r.ID)
	}
	if r.FairnessScore < 1 || r.FairnessScore > 10 {
		return fmt.Errorf("%w: clause %q has fairness score %d, want 1..10", ErrIngestion, r.ID, r.FairnessScore)
	}
	return nil
}

// Chunk is a retrievable unit derived from one ClauseRecord. SourceClauseID
// is a lookup key into the corpus, not an owning reference.
type Chunk struct {
	SourceClauseID string `json:"source_clause_id"`
	Text           string `json:"text"`
	IsComplete     bool   `json:"is_complete"`
	SequenceIndex  int    `json:"sequence_index"`
}

// Key is the chunk identity used for idempotent ingestion: re-adding the
// same key replaces the prior index entry.
func (c Chunk) Key() string {
	return c.SourceClauseID + ":" + strconv.Itoa(c.SequenceIndex)
}

// ChunkMetadata duplicates the filterable fields of the source record so the
// index can apply predicates without a join back to the corpus.
type ChunkMetadata struct {
	ContractType  string    `json:"contract_type"`
	ClauseType    string    `json:"clause_type"`
	RiskLevel     RiskLevel `json:"risk_level"`
	FairnessScore int       `json:"fairness_score"`
}

// MetadataFor denormalizes the filterable fields of a record.
func MetadataFor(r ClauseRecord) ChunkMetadata {
	return ChunkMetadata{
		ContractType:  r.ContractType,
		ClauseType:    r.ClauseType,
		RiskLevel:     r.RiskLevel,
		FairnessScore: r.FairnessScore,
	}
}

// SearchHit is one ranked retrieval result. Record is resolved from the
// corpus by the retriever and may be nil when the corpus copy is stale.
type SearchHit struct {
	Chunk      Chunk         `json:"chunk"`
	Similarity float64       `json:"similarity"`
	Metadata   ChunkMetadata `json:"metadata"`
	Record     *ClauseRecord `json:"record,omitempty"`
}

// SearchFilter restricts a search to entries whose denormalized metadata
// matches. Zero-valued fields are unconstrained. A nil filter matches
// everything.
type SearchFilter struct {
	ContractType string
	ClauseType   string
	RiskLevel    RiskLevel
	MinFairness  int
}

// Validate rejects malformed filters before any search work is done.
func (f *SearchFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.RiskLevel != "" && !f.RiskLevel.Valid() {
		return fmt.Errorf("%w: unknown risk level %q", ErrConfiguration, f.RiskLevel)
	}
	if f.MinFairness < 0 || f.MinFairness > 10 {
		return fmt.Errorf("%w: min fairness %d out of range 0..10", ErrConfiguration, f.MinFairness)
	}
	return nil
}

// Matches reports whether the metadata satisfies every constrained field.
func (f *SearchFilter) Matches(m ChunkMetadata) bool {
	if f == nil {
		return true
	}
	if f.ContractType != "" && f.ContractType != m.ContractType {
		return false
	}
	if f.ClauseType != "" && f.ClauseType != m.ClauseType {
		return false
	}
	if f.RiskLevel != "" && f.RiskLevel != m.RiskLevel {
		return false
	}
	if f.MinFairness > 0 && m.FairnessScore < f.MinFairness {
		return false
	}
	return true
}
