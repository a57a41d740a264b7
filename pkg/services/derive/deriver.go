package derive

import (
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/shopspring/decimal"
)

const (
	maxDurationSeconds = 3600
	businessHourStart  = 8
	businessHourEnd    = 17
	dateLayout         = "2006-01-02"
)

var highValueThreshold = decimal.NewFromInt(10000)

// Enrich computes every derived field of a single record. It reads nothing but the
// record and the fee rules, so records can be enriched in any order.
func Enrich(record domain.TransactionRecord, fees FeeRules) domain.EnrichedRecord {
	amount := record.ParsedAmount()
	fee := fees.Fee(amount)

	enriched := domain.EnrichedRecord{
		Source:           record,
		Amount:           amount,
		DurationSeconds:  Duration(record.StartTime, record.EndTime),
		AmountCategory:   Tier(amount),
		Fee:              fee,
		NetAmount:        NetAmount(amount, fee),
		TypeCategory:     Category(record.Type),
		SenderInitials:   Initials(record.Sender),
		ReceiverInitials: Initials(record.Receiver),
		IsHighValue:      amount.Valid && amount.Decimal.GreaterThan(highValueThreshold),
	}

	if record.StartTime.Valid {
		start := record.StartTime.Time
		enriched.Date = sql.NullString{String: start.Format(dateLayout), Valid: true}
		enriched.Hour = sql.NullInt32{Int32: int32(start.Hour()), Valid: true}
		enriched.DayOfWeek = sql.NullString{String: start.Weekday().String(), Valid: true}
		enriched.Month = sql.NullString{String: start.Month().String(), Valid: true}
		enriched.Year = sql.NullInt32{Int32: int32(start.Year()), Valid: true}
		enriched.IsWeekend = start.Weekday() == time.Saturday || start.Weekday() == time.Sunday
		enriched.IsBusinessHour = start.Hour() >= businessHourStart && start.Hour() <= businessHourEnd
	}

	return enriched
}

// Duration is end minus start in seconds, clamped to [0, 3600].
func Duration(start, end sql.NullTime) sql.NullFloat64 {
	if !start.Valid || !end.Valid {
		return sql.NullFloat64{}
	}
	seconds := end.Time.Sub(start.Time).Seconds()
	seconds = min(max(seconds, 0), maxDurationSeconds)
	return sql.NullFloat64{Float64: seconds, Valid: true}
}

// Initials keeps the first character of every whitespace-separated token.
func Initials(name sql.NullString) string {
	if !name.Valid {
		return domain.UnknownInitials
	}
	var b strings.Builder
	for _, token := range strings.Fields(name.String) {
		r, _ := utf8.DecodeRuneInString(token)
		b.WriteRune(r)
	}
	return b.String()
}
