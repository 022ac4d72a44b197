// cmd/table.go
package cmd

import (
	"fmt"

	"github.com/ColonelBlimp/cwkeyer/internal/cw"
	"github.com/spf13/cobra"
)

// tableColumns is how many characters are printed per row
const tableColumns = 4

func newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Print the supported characters and their symbols",
		Args:  cobra.NoArgs,
		// The chart needs no config or hardware
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for i, r := range cw.Characters() {
				sym, _ := cw.Lookup(r)
				sep := "    "
				if (i+1)%tableColumns == 0 {
					sep = "\n"
				}
				_, _ = fmt.Fprintf(out, "%c  %-6s%s", r, sym, sep)
			}
			if len(cw.Characters())%tableColumns != 0 {
				_, _ = fmt.Fprintln(out)
			}
			return nil
		},
	}
}
