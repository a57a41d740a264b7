package commands

import (
	"fmt"
	"sort"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/services/validation"
	"github.com/de-tools/mpesa-etl/pkg/store/csvfile"
	"github.com/spf13/cobra"
)

type ValidateCmd struct {
	env    *Env
	input  string
	strict bool
}

func NewValidateCmd(env *Env) *cobra.Command {
	vc := &ValidateCmd{env: env}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report data quality and validation findings without transforming",
		RunE:  vc.run,
	}

	cmd.Flags().StringVar(&vc.input, "input", "", "Input CSV file (defaults to etl_config.input_file_path)")
	cmd.Flags().BoolVar(&vc.strict, "strict", false, "Exit with an error when schema or business rules fail")

	return cmd
}

func (vc *ValidateCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, ctx, err := vc.env.Setup(cmd)
	if err != nil {
		return err
	}
	reporter, err := vc.env.Reporter()
	if err != nil {
		return err
	}

	input := vc.input
	if input == "" {
		input = cfg.ETL.InputFilePath
	}

	table, err := csvfile.NewReader(cfg.TimeLayout()).ReadFile(ctx, input)
	if err != nil {
		return err
	}

	quality := validation.QualityReport(ctx, table)
	result := validation.Validate(ctx, table, cfg.PipelineSettings().Validation)

	if err := reporter.Handle(validationReport(input, quality, result)); err != nil {
		return err
	}

	if vc.strict && !result.Valid() {
		return fmt.Errorf("validation failed for %s: quality score %.2f", input, result.QualityScore)
	}
	return nil
}

func validationReport(source string, quality domain.QualityReport, result domain.ValidationResult) *domain.Report {
	input := domain.ReportSection{
		Title: "Input Quality",
		Summary: map[string]interface{}{
			"Total Records":           quality.TotalRecords,
			"Duplicate Records":       quality.DuplicateCount,
			"Amount Outliers":         quality.AmountOutlierCount,
			"Negative Duration Count": quality.NegativeDurationCount,
		},
	}
	for _, column := range sortedKeys(quality.MissingPerColumn) {
		input.Details = append(input.Details, domain.ReportDetail{
			Name:        column,
			Value:       quality.MissingPerColumn[column],
			Unit:        "missing",
			Description: "null or unparsable cells",
		})
	}

	types := domain.ReportSection{Title: "Type Distribution"}
	for _, label := range sortedKeys(quality.TypeDistribution) {
		types.Details = append(types.Details, domain.ReportDetail{
			Name:  label,
			Value: quality.TypeDistribution[label],
			Unit:  "records",
		})
	}

	checks := domain.ReportSection{
		Title: "Validation",
		Summary: map[string]interface{}{
			"Schema Valid":         result.SchemaValid,
			"Business Rules Valid": result.BusinessRulesValid,
			"Quality Score":        fmt.Sprintf("%.2f", result.QualityScore),
		},
	}
	if len(result.MissingColumns) > 0 {
		checks.Summary["Missing Columns"] = result.MissingColumns
	}
	for _, finding := range result.Findings {
		checks.Details = append(checks.Details, domain.ReportDetail{
			Name:        finding.Rule,
			Value:       finding.Count,
			Unit:        finding.Severity.String(),
			Description: finding.Message,
		})
	}

	return &domain.Report{
		Title:    fmt.Sprintf("Validation of %s", source),
		Sections: []domain.ReportSection{input, types, checks},
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
