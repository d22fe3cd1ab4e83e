package models

// ComparisonReport is the engine's final output for one analyzed clause.
// An empty hit list is a valid terminal state, not an error: FoundSimilar is
// false and every nullable field stays nil.
type ComparisonReport struct {
	FoundSimilar          bool        `json:"found_similar"`
	SimilarClauses        []SearchHit `json:"similar_clauses,omitempty"`
	AverageFairnessScore  *float64    `json:"average_fairness_score,omitempty"`
	BestMatch             *SearchHit  `json:"best_match,omitempty"`
	SimilarityOfBestMatch *float64    `json:"similarity_of_best_match,omitempty"`
	Summary               string      `json:"summary"`
}
