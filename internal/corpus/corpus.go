package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"clause-rag/internal/models"
)

// Contract is the authoring shape of one standard contract file: a contract
// type with a map of benchmarked clauses. The fairness score lives inside
// key_terms, matching how the corpus is authored.
type Contract struct {
	Type        string                 `json:"type"`
	RiskLevel   models.RiskLevel       `json:"risk_level"`
	Description string                 `json:"description"`
	Clauses     map[string]ClauseEntry `json:"clauses"`
}

// ClauseEntry is one clause inside a contract file.
type ClauseEntry struct {
	Text      string         `json:"text"`
	KeyTerms  map[string]any `json:"key_terms"`
	Benchmark string         `json:"benchmark"`
}

// Corpus is the static, versioned set of benchmark clause records. Records
// are looked up by id when the retriever resolves chunk back-references.
type Corpus struct {
	records []models.ClauseRecord
	byID    map[string]*models.ClauseRecord
}

// New builds a corpus over the given records.
func New(records []models.ClauseRecord) *Corpus {
	c := &Corpus{records: records, byID: make(map[string]*models.ClauseRecord, len(records))}
	for i := range c.records {
		c.byID[c.records[i].ID] = &c.records[i]
	}
	return c
}

// Records returns all records in load order.
func (c *Corpus) Records() []models.ClauseRecord { return c.records }

// Len returns the number of records.
func (c *Corpus) Len() int { return len(c.records) }

// Get resolves a clause record by id.
func (c *Corpus) Get(id string) (*models.ClauseRecord, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// LoadDir reads every .json contract file under dir and flattens each clause
// into a ClauseRecord. Record ids are derived from the file name and clause
// name so re-ingestion of the same corpus is idempotent. Records are
// returned as authored; the fairness-score invariant is enforced at index
// rebuild time, not here.
func LoadDir(dir string) (*Corpus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var records []models.ClauseRecord
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading contract file %s: %w", name, err)
		}
		var contract Contract
		if err := json.Unmarshal(data, &contract); err != nil {
			return nil, fmt.Errorf("parsing contract file %s: %w", name, err)
		}
		records = append(records, flatten(strings.TrimSuffix(name, ".json"), contract)...)
	}
	log.Debug().Int("files", len(names)).Int("records", len(records)).Str("dir", dir).Msg("loaded corpus")
	return New(records), nil
}

// flatten turns one contract file into per-clause records, in clause-name
// order for deterministic ids across loads.
func flatten(fileBase string, contract Contract) []models.ClauseRecord {
	clauseNames := make([]string, 0, len(contract.Clauses))
	for name := range contract.Clauses {
		clauseNames = append(clauseNames, name)
	}
	sort.Strings(clauseNames)

	records := make([]models.ClauseRecord, 0, len(clauseNames))
	for _, clauseName := range clauseNames {
		entry := contract.Clauses[clauseName]
		records = append(records, models.ClauseRecord{
			ID:                 fileBase + ":" + clauseName,
			ContractType:       contract.Type,
			ClauseType:         clauseName,
			RiskLevel:          contract.RiskLevel,
			Text:               entry.Text,
			BenchmarkRationale: entry.Benchmark,
			FairnessScore:      fairnessFrom(entry.KeyTerms),
			KeyTerms:           entry.KeyTerms,
		})
	}
	return records
}

// fairnessFrom extracts the fairness score from key_terms. JSON numbers
// decode as float64; anything missing or malformed yields 0, which the
// ingestion invariant rejects later.
func fairnessFrom(keyTerms map[string]any) int {
	v, ok := keyTerms["fairness_score"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}
