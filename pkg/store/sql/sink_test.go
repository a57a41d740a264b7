package sql

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/services/config"
	"github.com/de-tools/mpesa-etl/pkg/services/derive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enrichedTable() domain.EnrichedTable {
	start := time.Date(2023, 1, 2, 9, 30, 0, 0, time.UTC)
	records := []domain.TransactionRecord{
		{
			StartTime: sql.NullTime{Time: start, Valid: true},
			EndTime:   sql.NullTime{Time: start.Add(5 * time.Second), Valid: true},
			Type:      sql.NullString{String: "Pay Bill", Valid: true},
			ID:        sql.NullString{String: "MA123F", Valid: true},
			Amount:    sql.NullString{String: "2500", Valid: true},
			Sender:    sql.NullString{String: "Jane Wanjiku", Valid: true},
			Receiver:  sql.NullString{String: "KPLC", Valid: true},
		},
		{
			Type:   sql.NullString{String: "Send Money", Valid: true},
			Amount: sql.NullString{String: "80", Valid: true},
		},
	}

	table := domain.EnrichedTable{Columns: append(append([]string{}, domain.Columns...), domain.DerivedColumns...)}
	for _, r := range records {
		table.Records = append(table.Records, derive.Enrich(r, derive.DefaultFeeRules()))
	}
	return table
}

func TestDialect_Statements(t *testing.T) {
	create := Postgres.createTable("public.transactions")
	assert.True(t, strings.HasPrefix(create, "CREATE TABLE IF NOT EXISTS public.transactions (run_id TEXT, position INTEGER, start_time TIMESTAMP"))
	assert.Contains(t, create, "fee DOUBLE PRECISION")
	assert.Contains(t, create, "is_high_value BOOLEAN")

	insert := Postgres.insert("t")
	assert.True(t, strings.HasSuffix(insert, "$23, $24)"))

	assert.Contains(t, Databricks.createTable("t"), "type STRING")
	assert.Contains(t, Snowflake.createTable("t"), "start_time TIMESTAMP_NTZ")
	assert.True(t, strings.HasSuffix(SQLite.insert("t"), "?, ?)"))
	assert.Equal(t, 24, strings.Count(SQLite.insert("t"), "?"))
}

func TestNewSink_Validation(t *testing.T) {
	_, err := NewSink(nil, SQLite, "t")
	require.Error(t, err)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSink(db, SQLite, "t; DROP TABLE x")
	require.Error(t, err)
	assert.True(t, domain.IsInvalidConfig(err))

	sink, err := NewSink(db, Snowflake, "analytics.mpesa.transactions")
	require.NoError(t, err)
	assert.Equal(t, "snowflake", sink.Dialect())
}

func TestSink_Write(t *testing.T) {
	// Given
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sink, err := NewSink(db, Postgres, "transactions")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS transactions (")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO transactions (run_id, position, start_time"))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(2, 1))
	prep.WillBeClosed()
	mock.ExpectCommit()

	// When
	err = sink.Write(context.Background(), "run-1", enrichedTable())

	// Then
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSink_WriteRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sink, err := NewSink(db, SQLite, "transactions")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS transactions")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO transactions"))
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = sink.Write(context.Background(), "run-1", enrichedTable())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert record 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSink_WriteCreateTableFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sink, err := NewSink(db, Databricks, "transactions")
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

	err = sink.Write(context.Background(), "run-1", enrichedTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create table transactions")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteFactory_RoundTrip(t *testing.T) {
	// Given
	path := filepath.Join(t.TempDir(), "warehouse.db")
	sink, err := SQLiteFactory(context.Background(), config.WarehouseProfile{
		Driver: "sqlite",
		DSN:    path,
		Table:  "enriched_transactions",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sink.Close()
	})

	// When
	require.NoError(t, sink.Write(context.Background(), "run-1", enrichedTable()))
	require.NoError(t, sink.Write(context.Background(), "run-2", enrichedTable()))

	// Then
	var count int
	var fees float64
	err = sink.db.QueryRow("SELECT COUNT(*), SUM(fee) FROM enriched_transactions WHERE run_id = ?", "run-1").Scan(&count, &fees)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.InDelta(t, 17.5, fees, 1e-9)

	var nulls int
	err = sink.db.QueryRow("SELECT COUNT(*) FROM enriched_transactions WHERE start_time IS NULL").Scan(&nulls)
	require.NoError(t, err)
	assert.Equal(t, 2, nulls)
}

func TestFactories_RequireDSN(t *testing.T) {
	_, err := PostgresFactory(context.Background(), config.WarehouseProfile{Driver: "postgres", Table: "t"})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidConfig(err))
}
