package main

import (
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Irrelon/irrelon-schema/jsonschema"
	"github.com/Irrelon/irrelon-schema/openapi"
)

func newExportCmd(a *app) *cobra.Command {
	var format string
	var all bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a schema as JSON Schema or OpenAPI components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.load()
			if err != nil {
				return err
			}
			var out any
			switch format {
			case "jsonschema":
				out, err = jsonschema.FromSchema(s)
			case "openapi":
				if all {
					out, err = openapi.CatalogComponents(s.Catalog())
				} else {
					out, err = openapi.Components(s)
				}
			default:
				return fmt.Errorf("unknown export format %q (want jsonschema or openapi)", format)
			}
			if err != nil {
				return err
			}
			b, err := gojson.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "jsonschema", "jsonschema or openapi")
	cmd.Flags().BoolVar(&all, "all", false, "openapi: export every declared schema")
	return cmd
}
