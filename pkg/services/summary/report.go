package summary

import (
	"fmt"
	"math"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	ReportTitle = "M-Pesa Transaction Analysis Report"
	Currency    = "KES"
)

var printer = message.NewPrinter(language.English)

// Money formats an amount with thousands separators and two decimals.
func Money(amount float64) string {
	return printer.Sprintf("%s %.2f", Currency, amount)
}

// BuildReport renders a summary into report sections for the terminal reporter. The
// validation outcome is optional.
func BuildReport(s domain.Summary, result *domain.ValidationResult) *domain.Report {
	report := &domain.Report{
		Title:       ReportTitle,
		TotalAmount: s.TotalAmount.InexactFloat64(),
		Currency:    Currency,
	}
	if s.FirstTransaction != nil && s.LastTransaction != nil {
		report.Period = domain.TimePeriod{
			Start:    *s.FirstTransaction,
			End:      *s.LastTransaction,
			Duration: int(math.Floor(s.LastTransaction.Sub(*s.FirstTransaction).Hours()/24)) + 1,
		}
	}

	report.Sections = append(report.Sections,
		domain.ReportSection{
			Title: "Summary Statistics",
			Summary: map[string]interface{}{
				"Total Transactions": s.TotalTransactions,
				"High Value":         s.HighValueCount,
			},
			Details: []domain.ReportDetail{
				{Name: "Average Amount", Value: s.AverageAmount.StringFixed(2), Unit: Currency, Description: "mean of parsable amounts"},
				{Name: "Median Amount", Value: s.MedianAmount.StringFixed(2), Unit: Currency, Description: "median of parsable amounts"},
				{Name: "Total Fees", Value: s.TotalFees.StringFixed(2), Unit: Currency, Description: "fees generated for the platform"},
				{Name: "Average Fee", Value: s.AverageFee.StringFixed(2), Unit: Currency},
				{Name: "Average Duration", Value: fmt.Sprintf("%.1f", s.AverageDuration), Unit: "seconds", Description: "clamped to one hour"},
			},
		},
		countSection("Transaction Types", s.ByType),
		countSection("Transaction Categories", s.ByCategory),
		countSection("Amount Categories", s.ByAmountTier),
	)

	quality := domain.ReportSection{
		Title: "Data Quality",
		Summary: map[string]interface{}{
			"No missing values in critical fields": s.CriticalFieldsFull,
			"Chronological start times":            s.ChronologicalOrder,
		},
	}
	if result != nil {
		quality.Summary["Quality Score"] = fmt.Sprintf("%.2f", result.QualityScore)
		quality.Summary["Schema Valid"] = result.SchemaValid
		quality.Summary["Business Rules Valid"] = result.BusinessRulesValid
		for _, finding := range result.Findings {
			quality.Details = append(quality.Details, domain.ReportDetail{
				Name:        finding.Rule,
				Value:       finding.Count,
				Unit:        finding.Severity.String(),
				Description: finding.Message,
			})
		}
	}
	report.Sections = append(report.Sections, quality)

	return report
}

func countSection(title string, counts []domain.Count) domain.ReportSection {
	section := domain.ReportSection{Title: title}
	for _, c := range counts {
		section.Details = append(section.Details, domain.ReportDetail{
			Name:  c.Label,
			Value: c.Count,
			Unit:  "records",
		})
	}
	return section
}
