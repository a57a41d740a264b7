package summary

import (
	"cmp"
	"slices"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/services/validation"
	"github.com/shopspring/decimal"
)

// Summarize computes the post-run statistics of an enriched table. Unavailable amounts,
// fees and durations are left out of the aggregates that use them.
func Summarize(table domain.EnrichedTable) domain.Summary {
	s := domain.Summary{
		TotalTransactions:  table.Len(),
		CriticalFieldsFull: true,
		ChronologicalOrder: true,
	}

	types := newCounter()
	categories := newCounter()
	tiers := newCounter()

	var (
		amounts   []decimal.Decimal
		fees      []decimal.Decimal
		durations float64
		timed     int
		previous  *time.Time
	)

	for _, record := range table.Records {
		if record.Source.Type.Valid {
			types.add(record.Source.Type.String)
		}
		categories.add(string(record.TypeCategory))
		if record.AmountCategory.Valid() {
			tiers.add(string(record.AmountCategory))
		}

		if record.Amount.Valid {
			amounts = append(amounts, record.Amount.Decimal)
		}
		if record.Fee.Valid {
			fees = append(fees, record.Fee.Decimal)
		}
		if record.DurationSeconds.Valid {
			durations += record.DurationSeconds.Float64
			timed++
		}
		if record.IsHighValue {
			s.HighValueCount++
		}

		if !record.Amount.Valid || !record.Source.StartTime.Valid || !record.Source.Type.Valid {
			s.CriticalFieldsFull = false
		}

		if !record.Source.StartTime.Valid {
			s.ChronologicalOrder = false
			continue
		}
		start := record.Source.StartTime.Time
		if previous != nil && start.Before(*previous) {
			s.ChronologicalOrder = false
		}
		previous = &start
		if s.FirstTransaction == nil || start.Before(*s.FirstTransaction) {
			first := start
			s.FirstTransaction = &first
		}
		if s.LastTransaction == nil || start.After(*s.LastTransaction) {
			last := start
			s.LastTransaction = &last
		}
	}

	s.TotalAmount = decimal.Sum(decimal.Zero, amounts...)
	s.AverageAmount = mean(s.TotalAmount, len(amounts))
	s.MedianAmount = validation.Quantile(amounts, 0.5)
	s.TotalFees = decimal.Sum(decimal.Zero, fees...)
	s.AverageFee = mean(s.TotalFees, len(fees))
	if timed > 0 {
		s.AverageDuration = durations / float64(timed)
	}

	s.ByType = types.sorted()
	s.ByCategory = categories.sorted()
	s.ByAmountTier = tiers.sorted()
	return s
}

func mean(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n)))
}

type counter map[string]int

func newCounter() counter {
	return counter{}
}

func (c counter) add(label string) {
	c[label]++
}

// sorted orders by descending count, ties broken by label.
func (c counter) sorted() []domain.Count {
	counts := make([]domain.Count, 0, len(c))
	for label, n := range c {
		counts = append(counts, domain.Count{Label: label, Count: n})
	}
	slices.SortFunc(counts, func(a, b domain.Count) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return counts
}
