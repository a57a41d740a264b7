package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/models/store"
	"github.com/de-tools/mpesa-etl/pkg/services/summary"
	"github.com/spf13/cobra"
)

func NewRunsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse runs stored in the local run store",
	}

	cmd.AddCommand(newRunsListCmd(env))
	cmd.AddCommand(newRunsShowCmd(env))

	return cmd
}

func newRunsListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, ctx, err := env.Setup(cmd)
			if err != nil {
				return err
			}
			svc, closer, err := env.OpenHistory(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			runs, err := svc.List(ctx)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs stored")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tSOURCE\tRECORDS\tVALID\tSCORE")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\t%.2f\n",
					run.ID,
					run.StartedAt.Local().Format(time.DateTime),
					run.Source,
					run.RecordCount,
					run.SchemaValid && run.BusinessRulesValid,
					run.QualityScore)
			}
			return w.Flush()
		},
	}
}

func newRunsShowCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the summary of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ctx, err := env.Setup(cmd)
			if err != nil {
				return err
			}
			reporter, err := env.Reporter()
			if err != nil {
				return err
			}
			svc, closer, err := env.OpenHistory(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			run, err := svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			s, err := svc.Summary(ctx, run.ID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run %s from %s, processed %s\n",
				run.ID, run.Source, run.FinishedAt.Local().Format(time.DateTime))
			return reporter.Handle(summary.BuildReport(*s, validationOf(run)))
		},
	}
}

func validationOf(run *store.Run) *domain.ValidationResult {
	return &domain.ValidationResult{
		SchemaValid:        run.SchemaValid,
		BusinessRulesValid: run.BusinessRulesValid,
		QualityScore:       run.QualityScore,
		Findings:           run.Findings,
	}
}
