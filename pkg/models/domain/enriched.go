package domain

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Derived column names, appended after the input columns on output.
const (
	ColumnDurationSeconds  = "duration_seconds"
	ColumnDate             = "date"
	ColumnHour             = "hour"
	ColumnDayOfWeek        = "day_of_week"
	ColumnMonth            = "month"
	ColumnYear             = "year"
	ColumnAmountCategory   = "amount_category"
	ColumnFee              = "fee"
	ColumnNetAmount        = "net_amount"
	ColumnTypeCategory     = "type_category"
	ColumnSenderInitials   = "sender_initials"
	ColumnReceiverInitials = "receiver_initials"
	ColumnIsWeekend        = "is_weekend"
	ColumnIsBusinessHour   = "is_business_hour"
	ColumnIsHighValue      = "is_high_value"
)

var DerivedColumns = []string{
	ColumnDurationSeconds,
	ColumnDate,
	ColumnHour,
	ColumnDayOfWeek,
	ColumnMonth,
	ColumnYear,
	ColumnAmountCategory,
	ColumnFee,
	ColumnNetAmount,
	ColumnTypeCategory,
	ColumnSenderInitials,
	ColumnReceiverInitials,
	ColumnIsWeekend,
	ColumnIsBusinessHour,
	ColumnIsHighValue,
}

// AmountTier is an ordinal amount bucket. The zero value means unavailable.
type AmountTier string

const (
	TierUnavailable AmountTier = ""
	TierVerySmall   AmountTier = "Very Small (≤100)"
	TierSmall       AmountTier = "Small (101-500)"
	TierMedium      AmountTier = "Medium (501-3K)"
	TierLarge       AmountTier = "Large (3K-10K)"
	TierXLarge      AmountTier = "X-Large (10K-35K)"
	Tier2XLarge     AmountTier = "2X-Large (35K-150K)"
	TierJumbo       AmountTier = "Jumbo (>150K)"
)

// AmountTiers lists all tiers in ascending order.
var AmountTiers = []AmountTier{
	TierVerySmall,
	TierSmall,
	TierMedium,
	TierLarge,
	TierXLarge,
	Tier2XLarge,
	TierJumbo,
}

func (t AmountTier) Valid() bool {
	return t != TierUnavailable
}

type TypeCategory string

const (
	CategoryBillPayment TypeCategory = "Bill Payment"
	CategoryPeerToPeer  TypeCategory = "Peer-to-Peer Transfer"
	CategoryCashOut     TypeCategory = "Cash Out"
	CategoryCashIn      TypeCategory = "Cash In"
	CategoryAirtimeData TypeCategory = "Airtime/Data Purchase"
	CategoryOther       TypeCategory = "Other"
)

// UnknownInitials is the redaction sentinel for a missing name.
const UnknownInitials = "UNKNOWN"

// EnrichedRecord is a transaction record plus every derived field.
type EnrichedRecord struct {
	Source TransactionRecord

	Amount          decimal.NullDecimal
	DurationSeconds sql.NullFloat64
	Date            sql.NullString
	Hour            sql.NullInt32
	DayOfWeek       sql.NullString
	Month           sql.NullString
	Year            sql.NullInt32
	AmountCategory  AmountTier
	Fee             decimal.NullDecimal
	NetAmount       decimal.NullDecimal
	TypeCategory    TypeCategory

	SenderInitials   string
	ReceiverInitials string

	IsWeekend      bool
	IsBusinessHour bool
	IsHighValue    bool
}

// EnrichedTable is the output of a pipeline run.
type EnrichedTable struct {
	Columns []string
	Records []EnrichedRecord
}

func (t EnrichedTable) Len() int {
	return len(t.Records)
}

// Value returns the typed output value of a column. The amount column carries the
// coerced decimal rather than the raw text.
func (r EnrichedRecord) Value(column string) (any, bool) {
	switch column {
	case ColumnAmount:
		return r.Amount.Decimal, r.Amount.Valid
	case ColumnDurationSeconds:
		return r.DurationSeconds.Float64, r.DurationSeconds.Valid
	case ColumnDate:
		return r.Date.String, r.Date.Valid
	case ColumnHour:
		return r.Hour.Int32, r.Hour.Valid
	case ColumnDayOfWeek:
		return r.DayOfWeek.String, r.DayOfWeek.Valid
	case ColumnMonth:
		return r.Month.String, r.Month.Valid
	case ColumnYear:
		return r.Year.Int32, r.Year.Valid
	case ColumnAmountCategory:
		return string(r.AmountCategory), r.AmountCategory.Valid()
	case ColumnFee:
		return r.Fee.Decimal, r.Fee.Valid
	case ColumnNetAmount:
		return r.NetAmount.Decimal, r.NetAmount.Valid
	case ColumnTypeCategory:
		return string(r.TypeCategory), true
	case ColumnSenderInitials:
		return r.SenderInitials, true
	case ColumnReceiverInitials:
		return r.ReceiverInitials, true
	case ColumnIsWeekend:
		return r.IsWeekend, true
	case ColumnIsBusinessHour:
		return r.IsBusinessHour, true
	case ColumnIsHighValue:
		return r.IsHighValue, true
	default:
		return r.Source.Value(column)
	}
}
