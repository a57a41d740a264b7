package validation

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const outlierQuantile = 0.95

// QualityReport computes observational statistics over a raw table. It does not
// influence the validation outcome.
func QualityReport(ctx context.Context, table domain.Table) domain.QualityReport {
	report := domain.QualityReport{
		TotalRecords:     table.Len(),
		MissingPerColumn: make(map[string]int, len(table.Columns)),
		TypeDistribution: make(map[string]int),
	}

	for _, column := range table.Columns {
		missing := 0
		for _, record := range table.Records {
			if _, ok := record.Value(column); !ok {
				missing++
			}
		}
		report.MissingPerColumn[column] = missing
	}

	report.DuplicateCount = countDuplicates(table)

	if table.HasColumn(domain.ColumnAmount) {
		report.AmountOutlierCount = countOutliers(table)
	}

	if table.HasColumn(domain.ColumnType) {
		for _, record := range table.Records {
			if record.Type.Valid {
				report.TypeDistribution[record.Type.String]++
			}
		}
	}

	if table.HasColumn(domain.ColumnStartTime) && table.HasColumn(domain.ColumnEndTime) {
		report.NegativeDurationCount = countInvertedDates(table)
	}

	zerolog.Ctx(ctx).Info().
		Int("total_records", report.TotalRecords).
		Int("duplicates", report.DuplicateCount).
		Int("amount_outliers", report.AmountOutlierCount).
		Int("negative_durations", report.NegativeDurationCount).
		Msg("data quality report generated")

	return report
}

// countDuplicates counts records identical on every column to an earlier record.
// Amounts compare by numeric value, so "100" and "100.0" are the same amount.
func countDuplicates(table domain.Table) int {
	seen := make(map[string]struct{}, table.Len())
	duplicates := 0
	for _, record := range table.Records {
		key := recordKey(record, table.Columns)
		if _, ok := seen[key]; ok {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
	}
	return duplicates
}

func recordKey(record domain.TransactionRecord, columns []string) string {
	var b strings.Builder
	for _, column := range columns {
		b.WriteString(keyValue(record, column))
		b.WriteByte('\x1f')
	}
	return b.String()
}

func keyValue(record domain.TransactionRecord, column string) string {
	if column == domain.ColumnAmount {
		if amount := record.ParsedAmount(); amount.Valid {
			return amount.Decimal.String()
		}
	}
	value, ok := record.Value(column)
	if !ok {
		return "\x00null"
	}
	if t, isTime := value.(time.Time); isTime {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return value.(string)
}

// countOutliers counts amounts strictly above the 95th percentile.
func countOutliers(table domain.Table) int {
	amounts := make([]decimal.Decimal, 0, table.Len())
	for _, record := range table.Records {
		if amount := record.ParsedAmount(); amount.Valid {
			amounts = append(amounts, amount.Decimal)
		}
	}
	if len(amounts) == 0 {
		return 0
	}

	threshold := Quantile(amounts, outlierQuantile)
	count := 0
	for _, amount := range amounts {
		if amount.GreaterThan(threshold) {
			count++
		}
	}
	return count
}

// Quantile returns the q-th quantile using linear interpolation between the closest
// ranks. The input slice is not modified.
func Quantile(values []decimal.Decimal, q float64) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sorted := slices.Clone(values)
	slices.SortFunc(sorted, func(a, b decimal.Decimal) int { return a.Cmp(b) })

	pos := decimal.NewFromFloat(q).Mul(decimal.NewFromInt(int64(len(sorted) - 1)))
	lower := pos.Floor()
	lo := int(lower.IntPart())
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos.Sub(lower)
	return sorted[lo].Add(sorted[lo+1].Sub(sorted[lo]).Mul(frac))
}
