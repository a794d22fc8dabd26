package main

import (
	"fmt"

	"github.com/spf13/cobra"

	schema "github.com/Irrelon/irrelon-schema"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of irrelon-schema",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "irrelon-schema version %s\n", schema.Version)
		},
	}
}
