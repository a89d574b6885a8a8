// Command kabi-builder walks preprocessed C translation units and writes
// their exported-symbol type graph to a datafile, per spec §6.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/camuso/kabiparser/internal/cli"
	"github.com/camuso/kabiparser/internal/config"
	"github.com/camuso/kabiparser/internal/kabierr"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Error: internal: %v\n", r)
			code = 70 // EX_SOFTWARE
		}
	}()

	root := &cobra.Command{
		Use:   "kabi-builder [files...]",
		Short: "Build a kernel ABI type graph from preprocessed C sources",
	}
	root.Flags().StringP("datafile", "f", "", "path to the datafile to write (default kabi-data.db, or $KABI_DATAFILE)")
	root.Flags().BoolP("cumulative", "c", false, "fold new declarations onto the datafile's existing graph instead of overwriting it")
	root.Flags().BoolP("clean", "x", false, "remove the datafile before building")
	root.Flags().Bool("pure-sqlite", false, "use the cgo-free sqlite driver instead of mattn/go-sqlite3")
	root.SilenceUsage = true
	root.SilenceErrors = true

	exitCode := 0
	root.RunE = func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()

		cfg, err := config.FromBuilderFlags(cmd.Flags())
		if err != nil {
			return err
		}

		foundExport, err := cli.RunBuilder(context.Background(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if !foundExport {
			exitCode = 1
			fmt.Fprintln(cmd.ErrOrStderr(), "no exported symbol found")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfg.DataFile)
		return nil
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if c, ok := kabierr.CodeOf(err); ok {
			switch c {
			case kabierr.ArgMissing, kabierr.ArgConflict:
				return 2
			case kabierr.NotFound:
				return 1
			}
		}
		return 1
	}
	return exitCode
}
