package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	schema "github.com/Irrelon/irrelon-schema"
	"github.com/Irrelon/irrelon-schema/internal/logging"
	"github.com/Irrelon/irrelon-schema/source"
)

// errInvalid makes the process exit with status 1 after the results have been
// printed.
var errInvalid = errors.New("one or more documents are invalid")

// app is the state shared by the subcommands of one invocation.
type app struct {
	configPath string
	schemaPath string
	schemaName string

	cfg    *Config
	logger *slog.Logger
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "irrelon-schema",
		Short: "Validate documents against declarative schemas",
		Long: `irrelon-schema loads schema declarations from YAML or JSON, validates data
documents against them, and exports them as flattened paths, JSON Schema or
OpenAPI components.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	// Persistent flags (available to all commands)
	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./irrelon-schema.yaml)")
	pf.StringVarP(&a.schemaPath, "schema", "s", "", "schema declaration file (.yaml, .yml or .json)")
	pf.StringVarP(&a.schemaName, "name", "n", "", "schema to use (default: the first one declared)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("lang", "en", "language of failure messages: en, ja")
	pf.Int("max-depth", schema.DefaultMaxDepth, "maximum schema nesting during validation")

	cmd.AddCommand(
		newValidateCmd(a),
		newFlattenCmd(a),
		newExportCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := readConfig(a.configPath, cmd)
	if err != nil {
		return err
	}
	level, err := cfg.level()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cmd.ErrOrStderr(), level)
	return nil
}

// load reads the declaration file and returns the selected schema.
func (a *app) load() (*schema.Schema, error) {
	if a.schemaPath == "" {
		return nil, errors.New("--schema is required")
	}
	cat := schema.NewCatalog(schema.NewRegistry(schema.WithRegistryLogger(a.logger)), schema.WithCatalogLogger(a.logger))
	schemas, err := source.LoadFile(cat, a.schemaPath)
	if err != nil {
		return nil, err
	}
	if missing := cat.Unresolved(); len(missing) > 0 {
		a.logger.Warn("schemas referenced but never declared", "names", missing)
	}
	if a.schemaName != "" {
		s, ok := cat.Lookup(a.schemaName)
		if !ok {
			return nil, fmt.Errorf("schema %q is not declared in %s", a.schemaName, a.schemaPath)
		}
		return s, nil
	}
	if len(schemas) == 0 {
		return nil, fmt.Errorf("%s declares no schemas", a.schemaPath)
	}
	a.logger.Debug("schemas loaded", "file", a.schemaPath, "count", len(schemas))
	return schemas[0], nil
}
