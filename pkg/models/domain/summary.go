package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Count is a labelled frequency, ordered by descending count in a Summary.
type Count struct {
	Label string
	Count int
}

// Summary holds the statistics printed after a run and written to the analysis report.
type Summary struct {
	TotalTransactions  int
	FirstTransaction   *time.Time
	LastTransaction    *time.Time
	TotalAmount        decimal.Decimal
	AverageAmount      decimal.Decimal
	MedianAmount       decimal.Decimal
	ByType             []Count
	ByCategory         []Count
	ByAmountTier       []Count
	AverageFee         decimal.Decimal
	TotalFees          decimal.Decimal
	AverageDuration    float64
	HighValueCount     int
	CriticalFieldsFull bool // no missing amount, start time or type
	ChronologicalOrder bool // start times monotonically increasing
}
