package transactions

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/models/store"
	"github.com/de-tools/mpesa-etl/pkg/services/derive"
	"github.com/de-tools/mpesa-etl/pkg/services/summary"
	"github.com/de-tools/mpesa-etl/pkg/store/duckdb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) Store {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	s, err := NewStore(db)
	require.NoError(t, err)
	return s
}

func raw(start time.Time, seconds int, transactionType, amount, sender string) domain.TransactionRecord {
	r := domain.TransactionRecord{
		Type:     sql.NullString{String: transactionType, Valid: transactionType != ""},
		ID:       sql.NullString{String: "ID" + amount, Valid: true},
		Amount:   sql.NullString{String: amount, Valid: amount != ""},
		Sender:   sql.NullString{String: sender, Valid: sender != ""},
		Receiver: sql.NullString{String: "KPLC", Valid: true},
	}
	if !start.IsZero() {
		r.StartTime = sql.NullTime{Time: start, Valid: true}
		r.EndTime = sql.NullTime{Time: start.Add(time.Duration(seconds) * time.Second), Valid: true}
	}
	return r
}

func enriched(records ...domain.TransactionRecord) []domain.EnrichedRecord {
	out := make([]domain.EnrichedRecord, 0, len(records))
	for _, r := range records {
		out = append(out, derive.Enrich(r, derive.DefaultFeeRules()))
	}
	return out
}

func day(d, hour int) time.Time {
	return time.Date(2023, 1, d, hour, 0, 0, 0, time.UTC)
}

func sample() []domain.EnrichedRecord {
	return enriched(
		raw(day(1, 8), 10, "Pay Bill", "80", "Jane Wanjiku"),
		raw(day(2, 9), 20, "Send Money", "20000", "Peter Kimani"),
		raw(day(3, 10), 30, "Pay Bill", "1000", ""),
		raw(day(4, 11), 40, "Withdrawal", "2920.50", "Rose Chebet"),
	)
}

func assertSameRecord(t *testing.T, expected, actual domain.EnrichedRecord) {
	t.Helper()
	assert.Equal(t, expected.Source, actual.Source)
	assert.True(t, expected.Amount.Decimal.Equal(actual.Amount.Decimal), "amount %s != %s", expected.Amount.Decimal, actual.Amount.Decimal)
	assert.Equal(t, expected.Amount.Valid, actual.Amount.Valid)
	assert.True(t, expected.Fee.Decimal.Equal(actual.Fee.Decimal), "fee %s != %s", expected.Fee.Decimal, actual.Fee.Decimal)
	assert.True(t, expected.NetAmount.Decimal.Equal(actual.NetAmount.Decimal), "net %s != %s", expected.NetAmount.Decimal, actual.NetAmount.Decimal)
	assert.Equal(t, expected.DurationSeconds, actual.DurationSeconds)
	assert.Equal(t, expected.Date, actual.Date)
	assert.Equal(t, expected.Hour, actual.Hour)
	assert.Equal(t, expected.DayOfWeek, actual.DayOfWeek)
	assert.Equal(t, expected.Month, actual.Month)
	assert.Equal(t, expected.Year, actual.Year)
	assert.Equal(t, expected.AmountCategory, actual.AmountCategory)
	assert.Equal(t, expected.TypeCategory, actual.TypeCategory)
	assert.Equal(t, expected.SenderInitials, actual.SenderInitials)
	assert.Equal(t, expected.ReceiverInitials, actual.ReceiverInitials)
	assert.Equal(t, expected.IsWeekend, actual.IsWeekend)
	assert.Equal(t, expected.IsBusinessHour, actual.IsBusinessHour)
	assert.Equal(t, expected.IsHighValue, actual.IsHighValue)
}

func TestTransactionStore_AddAndList(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	records := sample()

	require.NoError(t, s.Add(ctx, "run-1", records))
	require.NoError(t, s.Add(ctx, "run-2", records[:1]))

	t.Run("all rows in position order", func(t *testing.T) {
		got, err := s.List(ctx, "run-1", store.Page{})
		require.NoError(t, err)
		require.Len(t, got, len(records))
		for i := range records {
			assertSameRecord(t, records[i], got[i])
		}
	})

	t.Run("paged", func(t *testing.T) {
		got, err := s.List(ctx, "run-1", store.Page{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assertSameRecord(t, records[1], got[0])
		assertSameRecord(t, records[2], got[1])
	})

	t.Run("unknown run", func(t *testing.T) {
		got, err := s.List(ctx, "missing", store.Page{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty batch", func(t *testing.T) {
		assert.NoError(t, s.Add(ctx, "run-3", nil))
	})
}

func TestTransactionStore_UnavailableValues(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	records := enriched(raw(time.Time{}, 0, "", "12x", ""))

	require.NoError(t, s.Add(ctx, "run-1", records))

	got, err := s.List(ctx, "run-1", store.Page{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Amount.Valid)
	assert.False(t, got[0].Fee.Valid)
	assert.False(t, got[0].DurationSeconds.Valid)
	assert.False(t, got[0].Hour.Valid)
	assert.Equal(t, domain.TierUnavailable, got[0].AmountCategory)
	assert.Equal(t, "12x", got[0].Source.Amount.String)
	assert.Equal(t, domain.UnknownInitials, got[0].SenderInitials)
}

func TestTransactionStore_SummaryMatchesInMemory(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	records := sample()
	require.NoError(t, s.Add(ctx, "run-1", records))

	got, err := s.Summary(ctx, "run-1")
	require.NoError(t, err)
	want := summary.Summarize(domain.EnrichedTable{Records: records})

	assert.Equal(t, want.TotalTransactions, got.TotalTransactions)
	assert.Equal(t, want.FirstTransaction, got.FirstTransaction)
	assert.Equal(t, want.LastTransaction, got.LastTransaction)
	assert.InDelta(t, want.TotalAmount.InexactFloat64(), got.TotalAmount.InexactFloat64(), 1e-6)
	assert.InDelta(t, want.AverageAmount.InexactFloat64(), got.AverageAmount.InexactFloat64(), 1e-6)
	assert.InDelta(t, want.MedianAmount.InexactFloat64(), got.MedianAmount.InexactFloat64(), 1e-6)
	assert.InDelta(t, want.TotalFees.InexactFloat64(), got.TotalFees.InexactFloat64(), 1e-6)
	assert.InDelta(t, want.AverageFee.InexactFloat64(), got.AverageFee.InexactFloat64(), 1e-6)
	assert.InDelta(t, want.AverageDuration, got.AverageDuration, 1e-9)
	assert.Equal(t, want.HighValueCount, got.HighValueCount)
	assert.Equal(t, want.CriticalFieldsFull, got.CriticalFieldsFull)
	assert.Equal(t, want.ChronologicalOrder, got.ChronologicalOrder)
	assert.Equal(t, want.ByType, got.ByType)
	assert.Equal(t, want.ByCategory, got.ByCategory)
	assert.Equal(t, want.ByAmountTier, got.ByAmountTier)
}

func TestTransactionStore_SummaryQualityFlags(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, "run-1", enriched(
		raw(day(3, 8), 5, "Deposit", "500", "Rose"),
		raw(day(1, 8), 5, "Deposit", "", "Rose"),
	)))

	got, err := s.Summary(ctx, "run-1")
	require.NoError(t, err)
	assert.False(t, got.CriticalFieldsFull)
	assert.False(t, got.ChronologicalOrder)
	assert.True(t, decimal.NewFromInt(500).Equal(got.TotalAmount))
}

func TestTransactionStore_SummaryOfEmptyRun(t *testing.T) {
	s := setupStore(t)

	got, err := s.Summary(context.Background(), "missing")

	require.NoError(t, err)
	assert.Zero(t, got.TotalTransactions)
	assert.Nil(t, got.FirstTransaction)
	assert.True(t, got.CriticalFieldsFull)
	assert.True(t, got.ChronologicalOrder)
	assert.Empty(t, got.ByType)
}

func TestTransactionStore_DatabaseErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("prepare failure", func(t *testing.T) {
		mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO enriched_transactions")).
			WillReturnError(errors.New("read-only database"))

		err := s.Add(ctx, "run-1", sample())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "prepare statement")
	})

	t.Run("insert failure", func(t *testing.T) {
		prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO enriched_transactions"))
		prep.ExpectExec().WillReturnError(errors.New("constraint violation"))
		prep.WillBeClosed()

		err := s.Add(ctx, "run-1", sample())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert record 0")
	})

	t.Run("aggregate failure", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM enriched_transactions")).
			WithArgs("run-1").
			WillReturnError(errors.New("out of memory"))

		_, err := s.Summary(ctx, "run-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "aggregate run run-1")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
