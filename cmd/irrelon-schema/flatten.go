package main

import (
	"fmt"
	"text/tabwriter"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newFlattenCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "flatten",
		Short: "Print every path of a schema with its type",
		Long:  `Prints the flattened paths of the schema. List elements appear under "$".`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.load()
			if err != nil {
				return err
			}
			names := s.Flatten().Strings(s.Catalog())
			if asJSON {
				out, err := gojson.MarshalIndent(names, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range s.Flatten().Paths() {
				fmt.Fprintf(w, "%s\t%s\n", p, names[p])
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print a JSON object instead of a table")
	return cmd
}
