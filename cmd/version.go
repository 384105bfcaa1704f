package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-wiring/framework/app"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "wiring", app.Version)
		},
	}
}
