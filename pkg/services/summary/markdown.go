package summary

import (
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/shopspring/decimal"
)

const markdownTemplate = `# {{.Title}}

Analysis generated on: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}

## Summary Statistics
- Total Transactions: {{.Summary.TotalTransactions}}
- Date Range: {{period .Summary}}
- Total Transaction Amount: {{money .Summary.TotalAmount}}
- Average Transaction Amount: {{money .Summary.AverageAmount}}
- Median Transaction Amount: {{money .Summary.MedianAmount}}
- Total Fees: {{money .Summary.TotalFees}}
- High Value Transactions: {{.Summary.HighValueCount}}

## Key Insights
{{- range $c := .Summary.ByType}}
- Type {{$c.Label}}: {{$c.Count}}
{{- end}}
{{- range $c := .Summary.ByCategory}}
- Category {{$c.Label}}: {{$c.Count}}
{{- end}}
{{- range $c := .Summary.ByAmountTier}}
- Amount {{$c.Label}}: {{$c.Count}}
{{- end}}
- Average Duration: {{printf "%.1f" .Summary.AverageDuration}} seconds

## Data Quality
- No missing values in critical fields: {{.Summary.CriticalFieldsFull}}
- Valid date ranges: {{.Summary.ChronologicalOrder}}
{{- with .Validation}}
- Quality Score: {{printf "%.2f" .QualityScore}}
{{- range .Findings}}
- {{.Rule}} ({{.Severity}}): {{.Message}}
{{- end}}
{{- end}}
`

var markdown = template.Must(template.New("markdown").Funcs(template.FuncMap{
	"money": func(amount decimal.Decimal) string {
		return Money(amount.InexactFloat64())
	},
	"period": func(s domain.Summary) string {
		if s.FirstTransaction == nil || s.LastTransaction == nil {
			return "n/a"
		}
		return fmt.Sprintf("%s to %s", s.FirstTransaction.Format(time.DateTime), s.LastTransaction.Format(time.DateTime))
	},
}).Parse(markdownTemplate))

// WriteMarkdown writes the analysis report as markdown. The validation outcome is
// optional.
func WriteMarkdown(w io.Writer, s domain.Summary, result *domain.ValidationResult, generatedAt time.Time) error {
	data := struct {
		Title       string
		GeneratedAt time.Time
		Summary     domain.Summary
		Validation  *domain.ValidationResult
	}{
		Title:       ReportTitle,
		GeneratedAt: generatedAt,
		Summary:     s,
		Validation:  result,
	}
	if err := markdown.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render markdown report: %w", err)
	}
	return nil
}
