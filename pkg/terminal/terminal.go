// Package terminal assembles the command-line interface.
package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/obs-tools/visit-atlas/pkg/terminal/commands"
	"github.com/obs-tools/visit-atlas/pkg/terminal/export"
)

// CLI represents the command-line interface
type CLI struct {
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visit-atlas",
		Short: "Visitor volume comparison tool",
	}

	cmd.AddCommand(commands.NewReportCmd(cli.reporter))
	cmd.AddCommand(commands.NewActivityCmd(cli.reporter))
	cmd.AddCommand(commands.NewZonesCmd())
	cmd.AddCommand(commands.NewPeriodsCmd())
	cmd.AddCommand(commands.NewIngestCmd())
	cmd.AddCommand(commands.NewCacheCmd())

	return cmd
}
