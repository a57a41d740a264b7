package adapters

import (
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/api"
	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/models/store"
	"github.com/shopspring/decimal"
)

func MapStoreRunToAPIRun(run *store.Run) api.Run {
	return api.Run{
		ID:                 run.ID,
		Source:             run.Source,
		StartedAt:          run.StartedAt,
		FinishedAt:         run.FinishedAt,
		RecordCount:        run.RecordCount,
		SchemaValid:        run.SchemaValid,
		BusinessRulesValid: run.BusinessRulesValid,
		QualityScore:       run.QualityScore,
	}
}

// MapStoreRunToAPIDetail combines a stored run with its summary.
func MapStoreRunToAPIDetail(run *store.Run, s domain.Summary) api.RunDetail {
	return api.RunDetail{
		Run: MapStoreRunToAPIRun(run),
		Validation: MapDomainValidationToAPI(domain.ValidationResult{
			SchemaValid:        run.SchemaValid,
			BusinessRulesValid: run.BusinessRulesValid,
			QualityScore:       run.QualityScore,
			Findings:           run.Findings,
		}),
		Quality: MapDomainQualityToAPI(run.Quality),
		Summary: MapDomainSummaryToAPI(s),
	}
}

func MapDomainValidationToAPI(v domain.ValidationResult) api.Validation {
	findings := make([]api.Finding, 0, len(v.Findings))
	for _, f := range v.Findings {
		findings = append(findings, api.Finding{
			Rule:     f.Rule,
			Severity: api.Severity(f.Severity.String()),
			Count:    f.Count,
			Penalty:  f.Penalty,
			Message:  f.Message,
		})
	}
	return api.Validation{
		SchemaValid:        v.SchemaValid,
		BusinessRulesValid: v.BusinessRulesValid,
		QualityScore:       v.QualityScore,
		MissingColumns:     v.MissingColumns,
		Findings:           findings,
	}
}

func MapDomainQualityToAPI(q domain.QualityReport) api.QualityReport {
	return api.QualityReport{
		TotalRecords:          q.TotalRecords,
		MissingPerColumn:      q.MissingPerColumn,
		DuplicateCount:        q.DuplicateCount,
		AmountOutlierCount:    q.AmountOutlierCount,
		TypeDistribution:      q.TypeDistribution,
		NegativeDurationCount: q.NegativeDurationCount,
	}
}

func MapDomainSummaryToAPI(s domain.Summary) api.Summary {
	summary := api.Summary{
		TotalTransactions:  s.TotalTransactions,
		TotalAmount:        money(s.TotalAmount),
		AverageAmount:      money(s.AverageAmount),
		MedianAmount:       money(s.MedianAmount),
		TotalFees:          money(s.TotalFees),
		AverageFee:         money(s.AverageFee),
		AverageDuration:    s.AverageDuration,
		HighValueCount:     s.HighValueCount,
		ByType:             counts(s.ByType),
		ByCategory:         counts(s.ByCategory),
		ByAmountTier:       counts(s.ByAmountTier),
		CriticalFieldsFull: s.CriticalFieldsFull,
		ChronologicalOrder: s.ChronologicalOrder,
	}
	if s.FirstTransaction != nil && s.LastTransaction != nil {
		summary.Period = &api.TimePeriod{
			Start:    *s.FirstTransaction,
			End:      *s.LastTransaction,
			Duration: int(s.LastTransaction.Sub(*s.FirstTransaction).Hours()/24) + 1,
		}
	}
	return summary
}

// MapEnrichedTableToAPI keeps the table's column layout. Decimals travel as strings.
func MapEnrichedTableToAPI(table domain.EnrichedTable) []api.Transaction {
	transactions := make([]api.Transaction, 0, table.Len())
	for _, record := range table.Records {
		tx := make(api.Transaction, len(table.Columns))
		for _, column := range table.Columns {
			value, valid := record.Value(column)
			if !valid {
				tx[column] = nil
				continue
			}
			switch v := value.(type) {
			case decimal.Decimal:
				tx[column] = v.String()
			case time.Time:
				tx[column] = v.UTC()
			default:
				tx[column] = v
			}
		}
		transactions = append(transactions, tx)
	}
	return transactions
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func counts(in []domain.Count) []api.Count {
	out := make([]api.Count, 0, len(in))
	for _, c := range in {
		out = append(out, api.Count{Label: c.Label, Count: c.Count})
	}
	return out
}
