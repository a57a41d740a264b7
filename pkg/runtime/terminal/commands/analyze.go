package commands

import (
	"github.com/spf13/cobra"
)

type AnalyzeCmd struct {
	env    *Env
	output string
}

func NewAnalyzeCmd(env *Env) *cobra.Command {
	ac := &AnalyzeCmd{env: env}
	cmd := &cobra.Command{
		Use:   "analyze <run-id>",
		Short: "Write the markdown analysis report of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.output, "output", "", "Report file (defaults to stdout)")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, args []string) error {
	cfg, ctx, err := ac.env.Setup(cmd)
	if err != nil {
		return err
	}
	svc, closer, err := ac.env.OpenHistory(cfg)
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

	return writeMarkdown(cmd.OutOrStdout(), ac.output, *s, validationOf(run), ac.env.now())
}
