package domain

import (
	"database/sql"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Canonical column names of a transaction table.
const (
	ColumnStartTime = "start_time"
	ColumnEndTime   = "end_time"
	ColumnType      = "type"
	ColumnID        = "id"
	ColumnAmount    = "amount"
	ColumnSender    = "sender"
	ColumnReceiver  = "receiver"
)

// Columns lists the canonical input columns in output order.
var Columns = []string{
	ColumnStartTime,
	ColumnEndTime,
	ColumnType,
	ColumnID,
	ColumnAmount,
	ColumnSender,
	ColumnReceiver,
}

// TransactionRecord is one raw input row. A field is invalid when the source cell was
// empty, unparsable (timestamps) or the column was absent altogether.
type TransactionRecord struct {
	StartTime sql.NullTime
	EndTime   sql.NullTime
	Type      sql.NullString
	ID        sql.NullString
	Amount    sql.NullString // raw text, coerced during enrichment
	Sender    sql.NullString
	Receiver  sql.NullString
}

// Table is an in-memory batch of transaction records together with the set of columns
// the source actually carried.
type Table struct {
	Columns []string
	Records []TransactionRecord
}

func (t Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

func (t Table) Len() int {
	return len(t.Records)
}

// Clone returns a deep copy so that callers' tables are never mutated.
func (t Table) Clone() Table {
	return Table{
		Columns: slices.Clone(t.Columns),
		Records: slices.Clone(t.Records),
	}
}

// Value returns the raw value of a column for duplicate detection and null counting.
func (r TransactionRecord) Value(column string) (any, bool) {
	switch column {
	case ColumnStartTime:
		return r.StartTime.Time, r.StartTime.Valid
	case ColumnEndTime:
		return r.EndTime.Time, r.EndTime.Valid
	case ColumnType:
		return r.Type.String, r.Type.Valid
	case ColumnID:
		return r.ID.String, r.ID.Valid
	case ColumnAmount:
		return r.Amount.String, r.Amount.Valid
	case ColumnSender:
		return r.Sender.String, r.Sender.Valid
	case ColumnReceiver:
		return r.Receiver.String, r.Receiver.Valid
	default:
		return nil, false
	}
}

// Amounts are bounded before any arithmetic. Exponent notation such as "1e2000000"
// parses cheaply but rescaling it to a fixed precision does not.
const (
	maxAmountIntegerDigits = 15
	maxAmountScale         = 18
)

// ParsedAmount coerces the raw amount into a decimal. Unparsable or missing text yields
// an invalid value, as does a magnitude of 10^15 or more or more than 18 decimal places.
func (r TransactionRecord) ParsedAmount() decimal.NullDecimal {
	if !r.Amount.Valid {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(r.Amount.String))
	if err != nil {
		return decimal.NullDecimal{}
	}
	if d.Exponent() < -maxAmountScale || int64(d.NumDigits())+int64(d.Exponent()) > maxAmountIntegerDigits {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// legacyColumns maps the export headers of the mobile-money statement format onto the
// canonical column names.
var legacyColumns = map[string]string{
	"TransactionStartDate": ColumnStartTime,
	"TransactionEndDate":   ColumnEndTime,
	"TransactionType":      ColumnType,
	"TransID":              ColumnID,
	"TransAmount":          ColumnAmount,
	"TransSender":          ColumnSender,
	"TransReceiver":        ColumnReceiver,
}

// CanonicalColumn resolves a header to its canonical name. Unknown headers are returned
// trimmed but otherwise unchanged.
func CanonicalColumn(name string) string {
	name = strings.TrimSpace(name)
	if canonical, ok := legacyColumns[name]; ok {
		return canonical
	}
	return name
}
