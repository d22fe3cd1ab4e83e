package analyzer

import (
	"fmt"

	"clause-rag/internal/models"
)

// Compare aggregates a similarity-ordered hit list into a fairness
// comparison report. It is a pure function of its input: no external state,
// no randomness, so identical hit lists always produce identical reports.
//
// The average is the unweighted arithmetic mean of every hit's fairness
// score, an aggregate a legal-literate reader can recheck by hand. An empty
// hit list is a valid "no benchmark available" outcome, not an error.
func Compare(hits []models.SearchHit) models.ComparisonReport {
	if len(hits) == 0 {
		return models.ComparisonReport{
			FoundSimilar: false,
			Summary:      "No similar clauses found for comparison.",
		}
	}

	sum := 0
	for _, h := range hits {
		sum += h.Metadata.FairnessScore
	}
	avg := float64(sum) / float64(len(hits))

	// hits are already ordered by the index's ranking, so the best match
	// is the head of the list
	best := hits[0]
	similarity := best.Similarity

	return models.ComparisonReport{
		FoundSimilar:          true,
		SimilarClauses:        hits,
		AverageFairnessScore:  &avg,
		BestMatch:             &best,
		SimilarityOfBestMatch: &similarity,
		Summary:               summarize(hits),
	}
}

// summarize renders the human-readable comparison summary.
func summarize(hits []models.SearchHit) string {
	best := hits[0]
	return fmt.Sprintf(`Found %d similar clauses in the standard contracts.

Best Match:
-   Contract Type: %s
-   Clause Type: %s
-   Fairness Score: %d/10
-   Similarity Score: %.4f

This clause appears in standard %s agreements.`,
		len(hits),
		best.Metadata.ContractType,
		best.Metadata.ClauseType,
		best.Metadata.FairnessScore,
		best.Similarity,
		best.Metadata.ContractType,
	)
}
