package sql

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*){0,2}$`)

// Sink appends enriched rows of a run to a warehouse table.
type Sink struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

func NewSink(db *sql.DB, dialect Dialect, table string) (*Sink, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("%w: invalid table name %q", domain.ErrInvalidConfig, table)
	}
	return &Sink{db: db, dialect: dialect, table: table}, nil
}

func (s *Sink) Dialect() string {
	return s.dialect.Name
}

// Write creates the target table when missing and inserts all rows in one transaction.
func (s *Sink) Write(ctx context.Context, runID string, table domain.EnrichedTable) error {
	logger := zerolog.Ctx(ctx)

	if _, err := s.db.ExecContext(ctx, s.dialect.createTable(s.table)); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, s.dialect.insert(s.table))
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	columns := sinkColumns()
	args := make([]any, len(columns))
	for position, record := range table.Records {
		args[0] = runID
		args[1] = position
		for i, column := range columns[2:] {
			args[i+2] = bindValue(record.Value(column))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert record %d: %w", position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	logger.Info().
		Str("dialect", s.dialect.Name).
		Str("table", s.table).
		Int("records", table.Len()).
		Msg("exported transactions to warehouse")
	return nil
}

func (s *Sink) Close() error {
	return s.db.Close()
}

// bindValue maps a typed record value onto a driver argument.
func bindValue(value any, valid bool) any {
	if !valid {
		return nil
	}
	switch v := value.(type) {
	case decimal.Decimal:
		return v.InexactFloat64()
	case int32:
		return int64(v)
	case time.Time:
		return v.UTC()
	default:
		return v
	}
}
