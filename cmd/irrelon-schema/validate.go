package main

import (
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	schema "github.com/Irrelon/irrelon-schema"
	"github.com/Irrelon/irrelon-schema/codec"
	"github.com/Irrelon/irrelon-schema/i18n"
	"github.com/Irrelon/irrelon-schema/metrics"
	"github.com/Irrelon/irrelon-schema/source"
)

// report is one line of validate output.
type report struct {
	File string `json:"file"`
	schema.Result
	Issues   schema.Issues `json:"issues,omitempty"`
	Document any           `json:"value,omitempty"`
}

func newValidateCmd(a *app) *cobra.Command {
	var printValue bool
	cmd := &cobra.Command{
		Use:   "validate [flags] FILE...",
		Short: "Validate data documents against a schema",
		Long: `Validates each data file (JSON by .json extension, YAML otherwise; "-" reads
JSON from stdin) and prints one JSON result per line. Timestamp fields accept
RFC3339 strings. Exits with status 1 when any document is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd, args, printValue)
		},
	}
	cmd.Flags().BoolVar(&printValue, "print-value", false, "include the document with defaults and transforms applied")
	cmd.Flags().String("metrics-file", "", "write Prometheus metrics in text format to this file")
	return cmd
}

func (a *app) runValidate(cmd *cobra.Command, files []string, printValue bool) error {
	s, err := a.load()
	if err != nil {
		return err
	}

	opts := []schema.ValidateOption{
		schema.WithMaxDepth(a.cfg.MaxDepth),
		schema.WithTranslator(i18n.ForLanguage(a.cfg.Lang)),
		schema.WithLogger(a.logger),
	}
	var reg *prometheus.Registry
	if a.cfg.MetricsFile != "" {
		reg = prometheus.NewRegistry()
		obs, err := metrics.New(reg)
		if err != nil {
			return err
		}
		opts = append(opts, schema.WithObserver(obs))
	}

	enc := gojson.NewEncoder(cmd.OutOrStdout())
	invalid := 0
	for _, file := range files {
		rep, err := a.validateFile(cmd, s, file, opts)
		if err != nil {
			return err
		}
		if !printValue {
			rep.Document = nil
		}
		if !rep.Valid {
			invalid++
		}
		if err := enc.Encode(rep); err != nil {
			return err
		}
	}

	if reg != nil {
		if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, reg); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}
	a.logger.Info("validation finished", "schema", s.String(), "documents", len(files), "invalid", invalid)
	if invalid > 0 {
		return errInvalid
	}
	return nil
}

func (a *app) validateFile(cmd *cobra.Command, s *schema.Schema, file string, opts []schema.ValidateOption) (report, error) {
	rep := report{File: file}
	doc, err := decode(cmd.InOrStdin(), file)
	if err != nil {
		return rep, err
	}
	doc, err = codec.DecodeTimestamps(s, doc)
	if iss, ok := schema.AsIssues(err); ok {
		rep.Issues = iss
		rep.Code = iss[0].Code
		rep.Reason = iss[0].Message
		return rep, nil
	}

	res, err := s.Validate(cmd.Context(), doc, opts...)
	if err != nil {
		return rep, err
	}
	rep.Result = res
	rep.Document = res.Value
	if !res.Valid {
		rep.Issues = schema.Issues{res.Issue()}
	}
	return rep, nil
}

func decode(stdin io.Reader, file string) (any, error) {
	if file == "-" {
		return source.DecodeJSON(stdin)
	}
	return source.DecodeFile(file)
}
