package summary

import (
	"bytes"
	"database/sql"
	"testing"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/services/derive"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(start time.Time, seconds int, transactionType, amount string) domain.TransactionRecord {
	r := domain.TransactionRecord{
		StartTime: sql.NullTime{Time: start, Valid: !start.IsZero()},
		Type:      sql.NullString{String: transactionType, Valid: transactionType != ""},
		Amount:    sql.NullString{String: amount, Valid: amount != ""},
	}
	if !start.IsZero() {
		r.EndTime = sql.NullTime{Time: start.Add(time.Duration(seconds) * time.Second), Valid: true}
	}
	return r
}

func enrich(records ...domain.TransactionRecord) domain.EnrichedTable {
	table := domain.EnrichedTable{Columns: append(append([]string{}, domain.Columns...), domain.DerivedColumns...)}
	for _, r := range records {
		table.Records = append(table.Records, derive.Enrich(r, derive.DefaultFeeRules()))
	}
	return table
}

func day(d, hour int) time.Time {
	return time.Date(2023, 1, d, hour, 0, 0, 0, time.UTC)
}

func sampleTable() domain.EnrichedTable {
	return enrich(
		record(day(1, 8), 10, "Pay Bill", "80"),
		record(day(2, 9), 20, "Send Money", "20000"),
		record(day(3, 10), 30, "Pay Bill", "1000"),
		record(day(4, 11), 40, "Withdrawal", "2920"),
	)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleTable())

	assert.Equal(t, 4, s.TotalTransactions)
	require.NotNil(t, s.FirstTransaction)
	require.NotNil(t, s.LastTransaction)
	assert.Equal(t, day(1, 8), *s.FirstTransaction)
	assert.Equal(t, day(4, 11), *s.LastTransaction)
	assert.True(t, decimal.NewFromInt(24000).Equal(s.TotalAmount), s.TotalAmount.String())
	assert.True(t, decimal.NewFromInt(6000).Equal(s.AverageAmount), s.AverageAmount.String())
	assert.True(t, decimal.NewFromInt(1960).Equal(s.MedianAmount), s.MedianAmount.String())
	assert.True(t, decimal.RequireFromString("124.6").Equal(s.TotalFees), s.TotalFees.String())
	assert.True(t, decimal.RequireFromString("31.15").Equal(s.AverageFee), s.AverageFee.String())
	assert.Equal(t, 25.0, s.AverageDuration)
	assert.Equal(t, 1, s.HighValueCount)
	assert.True(t, s.CriticalFieldsFull)
	assert.True(t, s.ChronologicalOrder)

	assert.Equal(t, []domain.Count{
		{Label: "Pay Bill", Count: 2},
		{Label: "Send Money", Count: 1},
		{Label: "Withdrawal", Count: 1},
	}, s.ByType)
	assert.Equal(t, []domain.Count{
		{Label: string(domain.CategoryBillPayment), Count: 2},
		{Label: string(domain.CategoryCashOut), Count: 1},
		{Label: string(domain.CategoryPeerToPeer), Count: 1},
	}, s.ByCategory)
	assert.Equal(t, []domain.Count{
		{Label: string(domain.TierMedium), Count: 2},
		{Label: string(domain.TierVerySmall), Count: 1},
		{Label: string(domain.TierXLarge), Count: 1},
	}, s.ByAmountTier)
}

func TestSummarize_DataQualityFlags(t *testing.T) {
	s := Summarize(enrich(
		record(day(3, 8), 5, "Deposit", "500"),
		record(day(1, 8), 5, "Deposit", ""),
		record(time.Time{}, 0, "", "abc"),
	))

	assert.False(t, s.CriticalFieldsFull)
	assert.False(t, s.ChronologicalOrder)
	assert.True(t, decimal.NewFromInt(500).Equal(s.TotalAmount))
	assert.Equal(t, 5.0, s.AverageDuration)
	assert.Equal(t, []domain.Count{{Label: "Deposit", Count: 2}}, s.ByType)
	assert.Equal(t, day(1, 8), *s.FirstTransaction)
	assert.Equal(t, day(3, 8), *s.LastTransaction)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(domain.EnrichedTable{})

	assert.Zero(t, s.TotalTransactions)
	assert.Nil(t, s.FirstTransaction)
	assert.True(t, s.TotalAmount.IsZero())
	assert.True(t, s.AverageAmount.IsZero())
	assert.Empty(t, s.ByType)
}

func TestBuildReport(t *testing.T) {
	result := &domain.ValidationResult{
		SchemaValid:  true,
		QualityScore: 92.5,
		Findings: []domain.Finding{
			{Rule: domain.RuleDateOrdering, Severity: domain.SeverityHigh, Count: 1, Message: "1 records end before they start"},
		},
	}

	report := BuildReport(Summarize(sampleTable()), result)

	assert.Equal(t, ReportTitle, report.Title)
	assert.Equal(t, Currency, report.Currency)
	assert.Equal(t, 24000.0, report.TotalAmount)
	assert.Equal(t, 4, report.Period.Duration)
	require.Len(t, report.Sections, 5)
	assert.Equal(t, "Transaction Types", report.Sections[1].Title)
	assert.Equal(t, "Pay Bill", report.Sections[1].Details[0].Name)
	assert.Equal(t, 2, report.Sections[1].Details[0].Value)

	quality := report.Sections[4]
	assert.Equal(t, "Data Quality", quality.Title)
	assert.Equal(t, "92.50", quality.Summary["Quality Score"])
	require.Len(t, quality.Details, 1)
	assert.Equal(t, "high", quality.Details[0].Unit)
}

func TestBuildReport_EmptySummaryHasNoPeriod(t *testing.T) {
	report := BuildReport(Summarize(domain.EnrichedTable{}), nil)

	assert.Zero(t, report.Period.Duration)
	assert.Empty(t, report.Sections[4].Details)
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	generatedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	err := WriteMarkdown(&buf, Summarize(sampleTable()), &domain.ValidationResult{QualityScore: 100}, generatedAt)

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "# M-Pesa Transaction Analysis Report")
	assert.Contains(t, out, "Analysis generated on: 2024-06-01 12:00:00")
	assert.Contains(t, out, "## Summary Statistics")
	assert.Contains(t, out, "- Total Transactions: 4")
	assert.Contains(t, out, "- Date Range: 2023-01-01 08:00:00 to 2023-01-04 11:00:00")
	assert.Contains(t, out, "- Total Transaction Amount: KES 24,000.00")
	assert.Contains(t, out, "- Average Transaction Amount: KES 6,000.00")
	assert.Contains(t, out, "## Key Insights")
	assert.Contains(t, out, "- Type Pay Bill: 2")
	assert.Contains(t, out, "## Data Quality")
	assert.Contains(t, out, "- No missing values in critical fields: true")
	assert.Contains(t, out, "- Valid date ranges: true")
	assert.Contains(t, out, "- Quality Score: 100.00")
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "KES 1,234,567.89", Money(1234567.891))
	assert.Equal(t, "KES 0.00", Money(0))
}
