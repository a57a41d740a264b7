package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Handle(t *testing.T) {
	var buf bytes.Buffer
	report := &domain.Report{
		Title:       "M-Pesa Transaction Analysis Report",
		Currency:    "KES",
		TotalAmount: 1234.5,
		Period: domain.TimePeriod{
			Start:    time.Date(2023, 1, 1, 8, 0, 0, 0, time.UTC),
			End:      time.Date(2023, 1, 3, 8, 0, 0, 0, time.UTC),
			Duration: 3,
		},
		Sections: []domain.ReportSection{
			{
				Title:   "Amount Categories",
				Summary: map[string]interface{}{"Total Transactions": 2},
				Details: []domain.ReportDetail{
					{Name: "Very Small (≤100)", Value: 2, Unit: "records"},
				},
			},
			{Title: "Empty", Summary: map[string]interface{}{"Chronological start times": true}},
		},
	}

	require.NoError(t, NewReporter(&buf).Handle(report))

	out := buf.String()
	assert.Contains(t, out, "Transactions: 2023-01-01 to 2023-01-03 (3 days)")
	assert.Contains(t, out, "Total Amount: KES 1234.50")
	assert.Contains(t, out, "=== Amount Categories ===")
	assert.Contains(t, out, "Chronological start times: true")

	var rows []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "|") || strings.HasPrefix(line, "+") {
			rows = append(rows, line)
		}
	}
	require.Len(t, rows, 5)
	width := len([]rune(rows[0]))
	for _, row := range rows {
		assert.Equal(t, width, len([]rune(row)), row)
	}
	assert.Contains(t, rows[3], "| Very Small (≤100) ")
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab  ", pad("ab", 4))
	assert.Equal(t, "abc…", pad("abcdef", 4))
	assert.Equal(t, "≤10 ", pad("≤10", 4))
}
