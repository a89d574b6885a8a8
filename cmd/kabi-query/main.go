// Command kabi-query answers lookups against a datafile built by
// kabi-builder: resolve/count a declaration, list an export's signature
// and members, or walk up from a struct to every export it affects, per
// spec §6.
package main

import (
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
		Use:   "kabi-query",
		Short: "Query a kernel ABI type graph built by kabi-builder",
	}
	root.Flags().StringP("count", "c", "", "report how many matches the given declaration has")
	root.Flags().StringP("decl", "d", "", "print every declaration matching the given name")
	root.Flags().StringP("exports", "e", "", "print the signature (and, unless -q, the members) of the exported symbol matching the given name")
	root.Flags().StringP("struct", "s", "", "print every export transitively using the given compound type")
	root.Flags().BoolP("whole-word", "w", false, "match the given name exactly instead of as a substring")
	root.Flags().BoolP("quiet", "q", false, "suppress nested-member rows, printing only the top-level signature")
	root.Flags().StringP("filelist", "f", "", "path to a text file listing one datafile per line (default: the single datafile kabi-data.db, or $KABI_DATAFILE)")
	root.Flags().Bool("pure-sqlite", false, "use the cgo-free sqlite driver instead of mattn/go-sqlite3")
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.RunE = func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()

		cfg, err := config.FromQueryFlags(cmd.Flags())
		if err != nil {
			return err
		}

		return cli.RunQuery(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
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
	return 0
}
