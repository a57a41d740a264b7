package validation

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Validate checks the table against the schema and business rules and scores its
// quality. The result is advisory; nothing here rejects or drops records.
func Validate(ctx context.Context, table domain.Table, settings Settings) domain.ValidationResult {
	logger := zerolog.Ctx(ctx)
	result := domain.ValidationResult{
		SchemaValid:        true,
		BusinessRulesValid: true,
		QualityScore:       maxScore,
		Findings:           make([]domain.Finding, 0),
	}

	result.MissingColumns = MissingColumns(table, settings.RequiredColumns)
	if len(result.MissingColumns) > 0 {
		result.SchemaValid = false
		result.Findings = append(result.Findings, domain.Finding{
			Rule:     domain.RuleSchema,
			Severity: domain.SeverityHigh,
			Count:    len(result.MissingColumns),
			Message:  fmt.Sprintf("Missing required columns: %s", strings.Join(result.MissingColumns, ", ")),
		})
		logger.Error().Strs("columns", result.MissingColumns).Msg("missing required columns")
	}

	total := table.Len()
	if total > 0 {
		checkCriticalFields(ctx, &result, table)
		checkAmountRange(ctx, &result, table, settings)
		checkDateOrdering(ctx, &result, table)
		checkFutureDated(ctx, &result, table, settings)
		checkAllowedTypes(ctx, &result, table, settings)
	}

	logger.Info().
		Bool("schema_valid", result.SchemaValid).
		Bool("business_rules_valid", result.BusinessRulesValid).
		Msgf("data validation results: quality score %.2f%%", result.QualityScore)

	return result
}

// violate records a finding and deducts weight × count/total from the running score.
func violate(result *domain.ValidationResult, finding domain.Finding, weight float64, total int) {
	result.BusinessRulesValid = false
	if weight > 0 {
		finding.Penalty = weight * float64(finding.Count) / float64(total)
		result.QualityScore = math.Max(0, result.QualityScore-finding.Penalty)
	}
	result.Findings = append(result.Findings, finding)
}

func checkCriticalFields(ctx context.Context, result *domain.ValidationResult, table domain.Table) {
	logger := zerolog.Ctx(ctx)
	nulls := 0
	for _, field := range CriticalFields {
		if !table.HasColumn(field) {
			continue
		}
		count := 0
		for _, record := range table.Records {
			if isNull(record, field) {
				count++
			}
		}
		if count > 0 {
			logger.Warn().Str("field", field).Msgf("found %d missing values in critical field", count)
		}
		nulls += count
	}
	if nulls == 0 {
		return
	}

	violate(result, domain.Finding{
		Rule:     domain.RuleCriticalFields,
		Severity: domain.SeverityMedium,
		Count:    nulls,
		Message:  fmt.Sprintf("Found %d missing values in critical fields", nulls),
	}, criticalFieldsWeight, table.Len())
}

// isNull treats an amount that cannot be coerced to a number as missing.
func isNull(record domain.TransactionRecord, field string) bool {
	if field == domain.ColumnAmount {
		return !record.ParsedAmount().Valid
	}
	_, ok := record.Value(field)
	return !ok
}

func checkAmountRange(
	ctx context.Context,
	result *domain.ValidationResult,
	table domain.Table,
	settings Settings,
) {
	if !table.HasColumn(domain.ColumnAmount) {
		return
	}

	count := 0
	for _, record := range table.Records {
		amount := record.ParsedAmount()
		if !amount.Valid {
			continue
		}
		if amount.Decimal.LessThan(settings.AmountMin) || amount.Decimal.GreaterThan(settings.AmountMax) {
			count++
		}
	}
	if count == 0 {
		return
	}

	zerolog.Ctx(ctx).Warn().Msgf("found %d transactions with invalid amounts (outside %s-%s range)",
		count, settings.AmountMin, settings.AmountMax)
	violate(result, domain.Finding{
		Rule:     domain.RuleAmountRange,
		Severity: domain.SeverityMedium,
		Count:    count,
		Message: fmt.Sprintf("Found %d transactions with amounts outside %s-%s",
			count, settings.AmountMin, settings.AmountMax),
	}, amountRangeWeight, table.Len())
}

func checkDateOrdering(ctx context.Context, result *domain.ValidationResult, table domain.Table) {
	if !table.HasColumn(domain.ColumnStartTime) || !table.HasColumn(domain.ColumnEndTime) {
		return
	}

	count := countInvertedDates(table)
	if count == 0 {
		return
	}

	zerolog.Ctx(ctx).Error().Msgf("found %d transactions with start date after end date", count)
	violate(result, domain.Finding{
		Rule:     domain.RuleDateOrdering,
		Severity: domain.SeverityHigh,
		Count:    count,
		Message:  fmt.Sprintf("Found %d transactions with start time after end time", count),
	}, dateOrderingWeight, table.Len())
}

func countInvertedDates(table domain.Table) int {
	count := 0
	for _, record := range table.Records {
		if record.StartTime.Valid && record.EndTime.Valid && record.StartTime.Time.After(record.EndTime.Time) {
			count++
		}
	}
	return count
}

func checkFutureDated(
	ctx context.Context,
	result *domain.ValidationResult,
	table domain.Table,
	settings Settings,
) {
	if !table.HasColumn(domain.ColumnStartTime) {
		return
	}

	now := settings.now()
	count := 0
	for _, record := range table.Records {
		if record.StartTime.Valid && record.StartTime.Time.After(now) {
			count++
		}
	}
	if count == 0 {
		return
	}

	zerolog.Ctx(ctx).Error().Msgf("found %d transactions with future dates", count)
	violate(result, domain.Finding{
		Rule:     domain.RuleFutureDated,
		Severity: domain.SeverityHigh,
		Count:    count,
		Message:  fmt.Sprintf("Found %d transactions dated in the future", count),
	}, futureDatedWeight, table.Len())
}

func checkAllowedTypes(
	ctx context.Context,
	result *domain.ValidationResult,
	table domain.Table,
	settings Settings,
) {
	if !table.HasColumn(domain.ColumnType) {
		return
	}

	count := 0
	unknown := make([]string, 0)
	for _, record := range table.Records {
		if record.Type.Valid && slices.Contains(settings.AllowedTypes, record.Type.String) {
			continue
		}
		count++
		if record.Type.Valid && !slices.Contains(unknown, record.Type.String) {
			unknown = append(unknown, record.Type.String)
		}
	}
	if count == 0 {
		return
	}

	slices.Sort(unknown)
	zerolog.Ctx(ctx).Warn().Strs("types", unknown).
		Msgf("found %d transactions with invalid transaction types", count)
	violate(result, domain.Finding{
		Rule:     domain.RuleAllowedType,
		Severity: domain.SeverityLow,
		Count:    count,
		Message:  fmt.Sprintf("Found %d transactions with unrecognised types %v", count, unknown),
	}, 0, table.Len())
}
