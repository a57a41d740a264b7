package transactions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/models/store"
	"github.com/de-tools/mpesa-etl/pkg/store/duckdb"
	"github.com/shopspring/decimal"
)

// Store keeps the enriched rows of each run, keyed by run id and position.
type Store interface {
	Add(ctx context.Context, runID string, records []domain.EnrichedRecord) error
	List(ctx context.Context, runID string, page store.Page) ([]domain.EnrichedRecord, error)
	Summary(ctx context.Context, runID string) (*domain.Summary, error)
}

type transactionStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &transactionStore{db: db}, nil
}

const columnList = `
	start_time, end_time, type, id, raw_amount, amount, sender, receiver,
	duration_seconds, date, hour, day_of_week, month, year, amount_category,
	fee, net_amount, type_category, sender_initials, receiver_initials,
	is_weekend, is_business_hour, is_high_value`

func (s *transactionStore) Add(ctx context.Context, runID string, records []domain.EnrichedRecord) error {
	if len(records) == 0 {
		return nil
	}

	stmt, err := duckdb.Conn(ctx, s.db).PrepareContext(ctx, `
		INSERT INTO enriched_transactions (run_id, position, `+columnList+`
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for position, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			runID,
			position,
			r.Source.StartTime,
			r.Source.EndTime,
			r.Source.Type,
			r.Source.ID,
			r.Source.Amount,
			nullFloat(r.Amount),
			r.Source.Sender,
			r.Source.Receiver,
			r.DurationSeconds,
			r.Date,
			r.Hour,
			r.DayOfWeek,
			r.Month,
			r.Year,
			sql.NullString{String: string(r.AmountCategory), Valid: r.AmountCategory.Valid()},
			nullFloat(r.Fee),
			nullFloat(r.NetAmount),
			string(r.TypeCategory),
			r.SenderInitials,
			r.ReceiverInitials,
			r.IsWeekend,
			r.IsBusinessHour,
			r.IsHighValue,
		)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", position, err)
		}
	}
	return nil
}

func (s *transactionStore) List(ctx context.Context, runID string, page store.Page) ([]domain.EnrichedRecord, error) {
	query := `SELECT ` + columnList + ` FROM enriched_transactions WHERE run_id = ? ORDER BY position`
	args := []any{runID}
	if page.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, page.Limit, page.Offset)
	}

	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	records := make([]domain.EnrichedRecord, 0)
	for rows.Next() {
		var (
			r                domain.EnrichedRecord
			amount, fee, net sql.NullFloat64
			tier             sql.NullString
			category         string
		)
		if err := rows.Scan(
			&r.Source.StartTime,
			&r.Source.EndTime,
			&r.Source.Type,
			&r.Source.ID,
			&r.Source.Amount,
			&amount,
			&r.Source.Sender,
			&r.Source.Receiver,
			&r.DurationSeconds,
			&r.Date,
			&r.Hour,
			&r.DayOfWeek,
			&r.Month,
			&r.Year,
			&tier,
			&fee,
			&net,
			&category,
			&r.SenderInitials,
			&r.ReceiverInitials,
			&r.IsWeekend,
			&r.IsBusinessHour,
			&r.IsHighValue,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		r.Amount = r.Source.ParsedAmount()
		if !r.Amount.Valid && amount.Valid {
			r.Amount = decimal.NewNullDecimal(decimal.NewFromFloat(amount.Float64))
		}
		r.Fee = nullDecimal(fee)
		r.NetAmount = nullDecimal(net)
		r.AmountCategory = domain.AmountTier(tier.String)
		r.TypeCategory = domain.TypeCategory(category)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Summary aggregates a run's rows in SQL.
func (s *transactionStore) Summary(ctx context.Context, runID string) (*domain.Summary, error) {
	conn := duckdb.Conn(ctx, s.db)

	var (
		summary                domain.Summary
		first, last            sql.NullTime
		total, average, median sql.NullFloat64
		totalFees, averageFee  sql.NullFloat64
		averageDuration        sql.NullFloat64
		highValue              int64
		count                  int64
		criticalFieldsFull     bool
	)
	err := conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			MIN(start_time),
			MAX(start_time),
			SUM(amount),
			AVG(amount),
			MEDIAN(amount),
			SUM(fee),
			AVG(fee),
			AVG(duration_seconds),
			COUNT(*) FILTER (WHERE is_high_value),
			COALESCE(BOOL_AND(amount IS NOT NULL AND start_time IS NOT NULL AND type IS NOT NULL), TRUE)
		FROM enriched_transactions
		WHERE run_id = ?`, runID).Scan(
		&count, &first, &last, &total, &average, &median,
		&totalFees, &averageFee, &averageDuration, &highValue, &criticalFieldsFull,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate run %s: %w", runID, err)
	}

	summary.TotalTransactions = int(count)
	summary.FirstTransaction = timePtr(first)
	summary.LastTransaction = timePtr(last)
	summary.TotalAmount = decimal.NewFromFloat(total.Float64)
	summary.AverageAmount = decimal.NewFromFloat(average.Float64)
	summary.MedianAmount = decimal.NewFromFloat(median.Float64)
	summary.TotalFees = decimal.NewFromFloat(totalFees.Float64)
	summary.AverageFee = decimal.NewFromFloat(averageFee.Float64)
	summary.AverageDuration = averageDuration.Float64
	summary.HighValueCount = int(highValue)
	summary.CriticalFieldsFull = criticalFieldsFull

	var outOfOrder int64
	err = conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT start_time, LAG(start_time) OVER (ORDER BY position) AS previous
			FROM enriched_transactions
			WHERE run_id = ?
		) WHERE start_time IS NULL OR start_time < previous`, runID).Scan(&outOfOrder)
	if err != nil {
		return nil, fmt.Errorf("check ordering of run %s: %w", runID, err)
	}
	summary.ChronologicalOrder = outOfOrder == 0

	if summary.ByType, err = s.counts(ctx, conn, runID, "type"); err != nil {
		return nil, err
	}
	if summary.ByCategory, err = s.counts(ctx, conn, runID, "type_category"); err != nil {
		return nil, err
	}
	if summary.ByAmountTier, err = s.counts(ctx, conn, runID, "amount_category"); err != nil {
		return nil, err
	}
	return &summary, nil
}

// counts groups by one of the fixed label columns above; column is never user input.
func (s *transactionStore) counts(ctx context.Context, conn duckdb.Querier, runID, column string) ([]domain.Count, error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT %[1]s, COUNT(*) AS n
		FROM enriched_transactions
		WHERE run_id = ? AND %[1]s IS NOT NULL
		GROUP BY %[1]s
		ORDER BY n DESC, %[1]s`, column), runID)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", column, err)
	}
	defer rows.Close()

	counts := make([]domain.Count, 0)
	for rows.Next() {
		var c domain.Count
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", column, err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func nullFloat(d decimal.NullDecimal) sql.NullFloat64 {
	if !d.Valid {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: d.Decimal.InexactFloat64(), Valid: true}
}

func nullDecimal(f sql.NullFloat64) decimal.NullDecimal {
	if !f.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(f.Float64))
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
