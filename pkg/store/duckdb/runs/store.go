package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/models/store"
	"github.com/de-tools/mpesa-etl/pkg/store/duckdb"
)

type Store interface {
	Create(ctx context.Context, run *store.Run) error
	Get(ctx context.Context, id string) (*store.Run, error)
	List(ctx context.Context) ([]*store.Run, error)
}

type runStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &runStore{db: db}, nil
}

const selectRuns = `
	SELECT id, source, started_at, finished_at, CAST(input_columns AS VARCHAR), record_count,
		schema_valid, business_rules_valid, quality_score,
		CAST(quality AS VARCHAR), CAST(findings AS VARCHAR)
	FROM pipeline_runs
`

func (s *runStore) Create(ctx context.Context, run *store.Run) error {
	columns, err := json.Marshal(run.Columns)
	if err != nil {
		return fmt.Errorf("marshal columns: %w", err)
	}
	quality, err := json.Marshal(run.Quality)
	if err != nil {
		return fmt.Errorf("marshal quality report: %w", err)
	}
	findings, err := json.Marshal(run.Findings)
	if err != nil {
		return fmt.Errorf("marshal findings: %w", err)
	}

	_, err = duckdb.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO pipeline_runs (
			id, source, started_at, finished_at, input_columns, record_count,
			schema_valid, business_rules_valid, quality_score, quality, findings
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Source,
		run.StartedAt,
		run.FinishedAt,
		string(columns),
		run.RecordCount,
		run.SchemaValid,
		run.BusinessRulesValid,
		run.QualityScore,
		string(quality),
		string(findings),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *runStore) Get(ctx context.Context, id string) (*store.Run, error) {
	row := duckdb.Conn(ctx, s.db).QueryRowContext(ctx, selectRuns+" WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

func (s *runStore) List(ctx context.Context) ([]*store.Run, error) {
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, selectRuns+" ORDER BY started_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*store.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*store.Run, error) {
	var (
		run                       store.Run
		source                    sql.NullString
		columns, quality, finding sql.NullString
	)
	if err := row.Scan(
		&run.ID,
		&source,
		&run.StartedAt,
		&run.FinishedAt,
		&columns,
		&run.RecordCount,
		&run.SchemaValid,
		&run.BusinessRulesValid,
		&run.QualityScore,
		&quality,
		&finding,
	); err != nil {
		return nil, err
	}
	run.Source = source.String

	if err := unmarshalColumn(columns, &run.Columns); err != nil {
		return nil, fmt.Errorf("unmarshal columns: %w", err)
	}
	if err := unmarshalColumn(quality, &run.Quality); err != nil {
		return nil, fmt.Errorf("unmarshal quality report: %w", err)
	}
	if err := unmarshalColumn(finding, &run.Findings); err != nil {
		return nil, fmt.Errorf("unmarshal findings: %w", err)
	}
	return &run, nil
}

func unmarshalColumn(raw sql.NullString, v any) error {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw.String), v)
}
