package validation

import (
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// Score deductions, applied as weight × offending/total.
const (
	maxScore             = 100.0
	criticalFieldsWeight = 100.0
	amountRangeWeight    = 20.0
	dateOrderingWeight   = 15.0
	futureDatedWeight    = 10.0
)

// CriticalFields must never be null for a record to count as complete.
var CriticalFields = []string{
	domain.ColumnAmount,
	domain.ColumnStartTime,
	domain.ColumnType,
}

type Settings struct {
	RequiredColumns []string
	AmountMin       decimal.Decimal
	AmountMax       decimal.Decimal
	AllowedTypes    []string
	// Now returns the instant future-dated transactions are compared against.
	Now func() time.Time
}

func DefaultSettings() Settings {
	return Settings{
		RequiredColumns: append([]string{}, domain.Columns...),
		AmountMin:       decimal.NewFromInt(50),
		AmountMax:       decimal.NewFromInt(150000),
		AllowedTypes:    DefaultAllowedTypes(),
		Now:             time.Now,
	}
}

func DefaultAllowedTypes() []string {
	return []string{"Pay Bill", "Send Money", "Withdrawal", "Deposit", "Airtime Purchase"}
}

func (s Settings) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
