package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/mpesa-etl/pkg/runtime/terminal/commands"
	"github.com/de-tools/mpesa-etl/pkg/runtime/terminal/export"
	sqlsink "github.com/de-tools/mpesa-etl/pkg/store/sql"
	"github.com/spf13/cobra"
)

const (
	FormatTable = "table"
	FormatPlain = "plain"
)

// CLI represents the command-line interface
type CLI struct {
	env     *commands.Env
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Sinks  sqlsink.Registry
	Output io.Writer
	Errors io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Errors == nil {
		opts.Errors = os.Stderr
	}
	if opts.Sinks == nil {
		opts.Sinks = sqlsink.DefaultRegistry()
	}

	cli := &CLI{
		env: &commands.Env{
			Format: FormatTable,
			Sinks:  opts.Sinks,
			Reporters: map[string]commands.ReportHandler{
				FormatTable: export.NewReporter(opts.Output),
				FormatPlain: NewReporter(opts.Output),
			},
		},
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	cli.rootCmd.SetErr(opts.Errors)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) ExecuteContext(ctx context.Context, args ...string) error {
	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mpesa-etl",
		Short:         "Validate, enrich and analyse M-Pesa transaction exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cli.env.ConfigPath, "config", "", "Path to the configuration file (JSON, YAML or TOML)")
	flags.StringVar(&cli.env.LogLevel, "log-level", "", "Override logging.level")
	flags.StringVar(&cli.env.Format, "format", FormatTable, "Report format (table or plain)")

	cmd.AddCommand(commands.NewRunCmd(cli.env))
	cmd.AddCommand(commands.NewValidateCmd(cli.env))
	cmd.AddCommand(commands.NewGenerateCmd(cli.env))
	cmd.AddCommand(commands.NewRunsCmd(cli.env))
	cmd.AddCommand(commands.NewAnalyzeCmd(cli.env))
	cmd.AddCommand(commands.NewProfilesCmd(cli.env))

	return cmd
}
