package commands

import (
	"fmt"

	"github.com/de-tools/mpesa-etl/pkg/services/config"
	"github.com/de-tools/mpesa-etl/pkg/services/export"
	"github.com/de-tools/mpesa-etl/pkg/services/pipeline"
	"github.com/de-tools/mpesa-etl/pkg/services/summary"
	"github.com/de-tools/mpesa-etl/pkg/store/csvfile"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type RunCmd struct {
	env        *Env
	input      string
	output     string
	reportPath string
	persist    bool
	profile    string
}

func NewRunCmd(env *Env) *cobra.Command {
	rc := &RunCmd{env: env}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract, validate, enrich and load a transaction file",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.input, "input", "", "Input CSV file (defaults to etl_config.input_file_path)")
	cmd.Flags().StringVar(&rc.output, "output", "", "Output CSV file (defaults to etl_config.output_dir/output_filename)")
	cmd.Flags().StringVar(&rc.reportPath, "report", "", "Also write the markdown analysis report to this path")
	cmd.Flags().BoolVar(&rc.persist, "persist", false, "Store the run in the local DuckDB run store")
	cmd.Flags().StringVar(&rc.profile, "profile", "", "Export the run to this destination profile")

	return cmd
}

func (rc *RunCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, ctx, err := rc.env.Setup(cmd)
	if err != nil {
		return err
	}
	reporter, err := rc.env.Reporter()
	if err != nil {
		return err
	}

	input := rc.input
	if input == "" {
		input = cfg.ETL.InputFilePath
	}
	output := rc.output
	if output == "" {
		output = cfg.OutputPath()
	}

	table, err := csvfile.NewReader(cfg.TimeLayout()).ReadFile(ctx, input)
	if err != nil {
		return err
	}

	result, err := pipeline.NewOrchestrator(cfg.PipelineSettings(), *zerolog.Ctx(ctx)).Run(ctx, table)
	if err != nil {
		return fmt.Errorf("failed to run pipeline: %w", err)
	}

	if err := csvfile.NewWriter(cfg.TimeLayout()).WriteFile(ctx, output, result.Table); err != nil {
		return err
	}

	s := summary.Summarize(result.Table)
	if rc.reportPath != "" {
		if err := writeMarkdown(cmd.OutOrStdout(), rc.reportPath, s, &result.Validation, rc.env.now()); err != nil {
			return err
		}
	}

	if rc.persist {
		svc, closer, err := rc.env.OpenHistory(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		if err := svc.Record(ctx, input, result); err != nil {
			return err
		}
	}

	var locations []string
	if rc.profile != "" {
		profiles, err := config.NewProfileRegistry(cfg.Storage.ProfilesPath)
		if err != nil {
			return err
		}
		locations, err = export.NewService(profiles, rc.env.Sinks, cfg.TimeLayout()).Export(ctx, rc.profile, result)
		if err != nil {
			return err
		}
	}

	if err := reporter.Handle(summary.BuildReport(s, &result.Validation)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nRun %s: %d records written to %s\n", result.RunID, result.Table.Len(), output)
	if rc.persist {
		fmt.Fprintf(out, "Stored in %s\n", cfg.Storage.DuckDBPath)
	}
	for _, location := range locations {
		fmt.Fprintf(out, "Exported to %s\n", location)
	}
	return nil
}
