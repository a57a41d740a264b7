package sql

import (
	"fmt"
	"strings"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
)

type kind int

const (
	kindText kind = iota
	kindFloat
	kindInt
	kindBool
	kindTimestamp
)

// Dialect captures what differs between warehouses: bind parameter syntax and column
// type names.
type Dialect struct {
	Name         string
	Placeholders func(n int) string
	Types        map[kind]string
}

func questionMarks(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func dollarNumbers(n int) string {
	params := make([]string, n)
	for i := range params {
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(params, ", ")
}

var (
	Snowflake = Dialect{
		Name:         "snowflake",
		Placeholders: questionMarks,
		Types: map[kind]string{
			kindText: "VARCHAR", kindFloat: "FLOAT", kindInt: "INTEGER", kindBool: "BOOLEAN", kindTimestamp: "TIMESTAMP_NTZ",
		},
	}
	Databricks = Dialect{
		Name:         "databricks",
		Placeholders: questionMarks,
		Types: map[kind]string{
			kindText: "STRING", kindFloat: "DOUBLE", kindInt: "INT", kindBool: "BOOLEAN", kindTimestamp: "TIMESTAMP",
		},
	}
	Postgres = Dialect{
		Name:         "postgres",
		Placeholders: dollarNumbers,
		Types: map[kind]string{
			kindText: "TEXT", kindFloat: "DOUBLE PRECISION", kindInt: "INTEGER", kindBool: "BOOLEAN", kindTimestamp: "TIMESTAMP",
		},
	}
	SQLite = Dialect{
		Name:         "sqlite",
		Placeholders: questionMarks,
		Types: map[kind]string{
			kindText: "TEXT", kindFloat: "REAL", kindInt: "INTEGER", kindBool: "BOOLEAN", kindTimestamp: "TIMESTAMP",
		},
	}
)

const (
	columnRunID    = "run_id"
	columnPosition = "position"
)

// columnKinds types every column of the sink table.
var columnKinds = map[string]kind{
	columnRunID:                   kindText,
	columnPosition:                kindInt,
	domain.ColumnStartTime:        kindTimestamp,
	domain.ColumnEndTime:          kindTimestamp,
	domain.ColumnType:             kindText,
	domain.ColumnID:               kindText,
	domain.ColumnAmount:           kindFloat,
	domain.ColumnSender:           kindText,
	domain.ColumnReceiver:         kindText,
	domain.ColumnDurationSeconds:  kindFloat,
	domain.ColumnDate:             kindText,
	domain.ColumnHour:             kindInt,
	domain.ColumnDayOfWeek:        kindText,
	domain.ColumnMonth:            kindText,
	domain.ColumnYear:             kindInt,
	domain.ColumnAmountCategory:   kindText,
	domain.ColumnFee:              kindFloat,
	domain.ColumnNetAmount:        kindFloat,
	domain.ColumnTypeCategory:     kindText,
	domain.ColumnSenderInitials:   kindText,
	domain.ColumnReceiverInitials: kindText,
	domain.ColumnIsWeekend:        kindBool,
	domain.ColumnIsBusinessHour:   kindBool,
	domain.ColumnIsHighValue:      kindBool,
}

// sinkColumns is the fixed layout of the sink table.
func sinkColumns() []string {
	columns := []string{columnRunID, columnPosition}
	columns = append(columns, domain.Columns...)
	return append(columns, domain.DerivedColumns...)
}

func (d Dialect) createTable(table string) string {
	columns := sinkColumns()
	defs := make([]string, len(columns))
	for i, column := range columns {
		defs[i] = fmt.Sprintf("%s %s", column, d.Types[columnKinds[column]])
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
}

func (d Dialect) insert(table string) string {
	columns := sinkColumns()
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), d.Placeholders(len(columns)))
}
