package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const PipelineRunsSchema = `
	CREATE TABLE IF NOT EXISTS pipeline_runs (
		id VARCHAR PRIMARY KEY,
		source VARCHAR,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		input_columns JSON,
		record_count INTEGER NOT NULL,
		schema_valid BOOLEAN NOT NULL,
		business_rules_valid BOOLEAN NOT NULL,
		quality_score DOUBLE NOT NULL,
		quality JSON,
		findings JSON
	);
`
const EnrichedTransactionsSchema = `
	CREATE TABLE IF NOT EXISTS enriched_transactions (
		run_id VARCHAR NOT NULL,
		position INTEGER NOT NULL,
		start_time TIMESTAMP,
		end_time TIMESTAMP,
		type VARCHAR,
		id VARCHAR,
		raw_amount VARCHAR,
		amount DOUBLE,
		sender VARCHAR,
		receiver VARCHAR,
		duration_seconds DOUBLE,
		date VARCHAR,
		hour INTEGER,
		day_of_week VARCHAR,
		month VARCHAR,
		year INTEGER,
		amount_category VARCHAR,
		fee DOUBLE,
		net_amount DOUBLE,
		type_category VARCHAR NOT NULL,
		sender_initials VARCHAR NOT NULL,
		receiver_initials VARCHAR NOT NULL,
		is_weekend BOOLEAN NOT NULL,
		is_business_hour BOOLEAN NOT NULL,
		is_high_value BOOLEAN NOT NULL,
		PRIMARY KEY (run_id, position)
	);
`

var bootQueries = []string{
	PipelineRunsSchema,
	EnrichedTransactionsSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			if _, err := exec.ExecContext(context.Background(), query, nil); err != nil {
				return fmt.Errorf("failed to bootstrap schema: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sql.OpenDB(c), nil
}

// Querier is the subset of *sql.DB and *sql.Tx used by the stores.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Conn returns the transaction carried by ctx, falling back to db.
func Conn(ctx context.Context, db *sql.DB) Querier {
	if tx := GetTransaction(ctx); tx != nil {
		return tx
	}
	return db
}
