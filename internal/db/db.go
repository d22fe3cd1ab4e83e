package db

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"clause-rag/internal/helper"
	"clause-rag/internal/models"
)

// ClauseRow is the Postgres row shape of one benchmark clause record. The
// corpus store is one possible corpus source; the engine itself only
// consumes the loaded records.
type ClauseRow struct {
	bun.BaseModel `bun:"table:clause_records,alias:cr"`

	ID                 string         `bun:"id,pk"`
	ContractType       string         `bun:"contract_type,notnull"`
	ClauseType         string         `bun:"clause_type,notnull"`
	RiskLevel          string         `bun:"risk_level,notnull"`
	Text               string         `bun:"text,notnull"`
	BenchmarkRationale string         `bun:"benchmark_rationale"`
	FairnessScore      int            `bun:"fairness_score,notnull"`
	KeyTerms           map[string]any `bun:"key_terms,type:jsonb"`
}

// Connect opens a Postgres connection via the bun pgdriver.
func Connect(dsn, password string) *sql.DB {
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(password)))
}

// NewDB wraps the sql connection with the bun Postgres dialect. With debug
// set, every query is logged through the bundebug hook.
func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// Init creates the clause_records table if missing.
func Init(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*ClauseRow)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Drop removes the clause_records table.
func Drop(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*ClauseRow)(nil)).IfExists().Exec(ctx)
	return err
}

// StoreRecords bulk-inserts clause records. Records without an id are
// assigned one, so authoring sources may omit it.
func StoreRecords(ctx context.Context, db *bun.DB, records []models.ClauseRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]ClauseRow, 0, len(records))
	for _, r := range records {
		id := r.ID
		if id == "" {
			generated, err := helper.GenerateUUID()
			if err != nil {
				return err
			}
			id = generated
		}
		rows = append(rows, ClauseRow{
			ID:                 id,
			ContractType:       r.ContractType,
			ClauseType:         r.ClauseType,
			RiskLevel:          string(r.RiskLevel),
			Text:               r.Text,
			BenchmarkRationale: r.BenchmarkRationale,
			FairnessScore:      r.FairnessScore,
			KeyTerms:           r.KeyTerms,
		})
	}
	_, err := db.NewInsert().Model(&rows).Exec(ctx)
	return err
}

// LoadRecords reads the whole corpus back, ordered by id for deterministic
// ingestion.
func LoadRecords(ctx context.Context, db *bun.DB) ([]models.ClauseRecord, error) {
	var rows []ClauseRow
	if err := db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	records := make([]models.ClauseRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.ClauseRecord{
			ID:                 row.ID,
			ContractType:       row.ContractType,
			ClauseType:         row.ClauseType,
			RiskLevel:          models.RiskLevel(row.RiskLevel),
			Text:               row.Text,
			BenchmarkRationale: row.BenchmarkRationale,
			FairnessScore:      row.FairnessScore,
			KeyTerms:           row.KeyTerms,
		})
	}
	return records, nil
}
