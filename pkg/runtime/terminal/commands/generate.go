package commands

import (
	"fmt"
	"strings"

	"github.com/de-tools/mpesa-etl/pkg/services/generator"
	"github.com/de-tools/mpesa-etl/pkg/store/csvfile"
	"github.com/spf13/cobra"
)

type GenerateCmd struct {
	env    *Env
	kind   string
	count  int
	seed   uint64
	output string
}

func NewGenerateCmd(env *Env) *cobra.Command {
	gc := &GenerateCmd{env: env}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a sample transaction file",
		RunE:  gc.run,
	}

	cmd.Flags().StringVar(&gc.kind, "kind", generator.KindRealistic,
		fmt.Sprintf("Generator to use (%s)", strings.Join(generator.Kinds(), ", ")))
	cmd.Flags().IntVar(&gc.count, "count", 100, "Number of transactions to generate")
	cmd.Flags().Uint64Var(&gc.seed, "seed", 42, "Random seed")
	cmd.Flags().StringVar(&gc.output, "output", "", "Output CSV file (defaults to etl_config.input_file_path)")

	return cmd
}

func (gc *GenerateCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, ctx, err := gc.env.Setup(cmd)
	if err != nil {
		return err
	}
	if gc.count < 0 {
		return fmt.Errorf("count must not be negative, got %d", gc.count)
	}

	gen, err := generator.New(gc.kind, gc.seed)
	if err != nil {
		return err
	}

	output := gc.output
	if output == "" {
		output = cfg.ETL.InputFilePath
	}

	table := gen.Generate(gc.count)
	if err := csvfile.NewWriter(cfg.TimeLayout()).WriteRawFile(ctx, output, table); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d %s transactions in %s\n", table.Len(), gc.kind, output)
	return nil
}
