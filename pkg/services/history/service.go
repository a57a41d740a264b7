package history

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/models/store"
	"github.com/de-tools/mpesa-etl/pkg/services/pipeline"
	"github.com/de-tools/mpesa-etl/pkg/store/duckdb"
	"github.com/de-tools/mpesa-etl/pkg/store/duckdb/runs"
	"github.com/de-tools/mpesa-etl/pkg/store/duckdb/transactions"
	"github.com/rs/zerolog"
)

// Service persists pipeline runs and reads them back.
type Service interface {
	Record(ctx context.Context, source string, result *pipeline.Result) error
	List(ctx context.Context) ([]*store.Run, error)
	Get(ctx context.Context, id string) (*store.Run, error)
	Summary(ctx context.Context, id string) (*domain.Summary, error)
	Transactions(ctx context.Context, id string, page store.Page) (domain.EnrichedTable, error)
}

type service struct {
	db           *sql.DB
	runs         runs.Store
	transactions transactions.Store
}

func NewService(db *sql.DB) (Service, error) {
	runStore, err := runs.NewStore(db)
	if err != nil {
		return nil, err
	}
	transactionStore, err := transactions.NewStore(db)
	if err != nil {
		return nil, err
	}
	return &service{db: db, runs: runStore, transactions: transactionStore}, nil
}

// Record writes the run and its enriched rows in a single transaction.
func (s *service) Record(ctx context.Context, source string, result *pipeline.Result) error {
	logger := zerolog.Ctx(ctx).With().Str("run_id", result.RunID).Logger()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ctxWithTx := duckdb.WithTransaction(ctx, tx)
	run := &store.Run{
		ID:                 result.RunID,
		Source:             source,
		StartedAt:          result.StartedAt.UTC(),
		FinishedAt:         result.FinishedAt.UTC(),
		Columns:            inputColumns(result.Table.Columns),
		RecordCount:        result.Table.Len(),
		SchemaValid:        result.Validation.SchemaValid,
		BusinessRulesValid: result.Validation.BusinessRulesValid,
		QualityScore:       result.Validation.QualityScore,
		Quality:            result.Quality,
		Findings:           result.Validation.Findings,
	}
	if err := s.runs.Create(ctxWithTx, run); err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	if err := s.transactions.Add(ctxWithTx, result.RunID, result.Table.Records); err != nil {
		return fmt.Errorf("failed to store transactions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	logger.Info().Int("records", run.RecordCount).Msg("persisted pipeline run")
	return nil
}

func (s *service) List(ctx context.Context) ([]*store.Run, error) {
	return s.runs.List(ctx)
}

func (s *service) Get(ctx context.Context, id string) (*store.Run, error) {
	return s.runs.Get(ctx, id)
}

func (s *service) Summary(ctx context.Context, id string) (*domain.Summary, error) {
	if _, err := s.runs.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.transactions.Summary(ctx, id)
}

// Transactions returns the run's rows with the same column layout the run produced.
func (s *service) Transactions(ctx context.Context, id string, page store.Page) (domain.EnrichedTable, error) {
	run, err := s.runs.Get(ctx, id)
	if err != nil {
		return domain.EnrichedTable{}, err
	}
	records, err := s.transactions.List(ctx, id, page)
	if err != nil {
		return domain.EnrichedTable{}, err
	}
	columns := append(append([]string{}, run.Columns...), domain.DerivedColumns...)
	return domain.EnrichedTable{Columns: columns, Records: records}, nil
}

// inputColumns strips the derived columns from an output layout.
func inputColumns(columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, column := range columns {
		if !slices.Contains(domain.DerivedColumns, column) {
			out = append(out, column)
		}
	}
	return out
}
