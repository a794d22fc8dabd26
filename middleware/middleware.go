// Package middleware validates JSON request bodies in net/http handlers.
package middleware

import (
	"context"
	"net/http"

	gojson "github.com/goccy/go-json"

	schema "github.com/Irrelon/irrelon-schema"
	"github.com/Irrelon/irrelon-schema/codec"
	"github.com/Irrelon/irrelon-schema/source"
)

// DefaultMaxBodyBytes limits request bodies read by ValidateJSON.
const DefaultMaxBodyBytes = 1 << 20

// ctxKeyResult is a typed context key for storing the validation Result.
type ctxKeyResult struct{}

// ContextWithResult attaches a validation Result to the context.
func ContextWithResult(ctx context.Context, res schema.Result) context.Context {
	return context.WithValue(ctx, ctxKeyResult{}, res)
}

// ResultFromContext retrieves the Result stored by ValidateJSON. Result.Value
// holds the request document with defaults and transforms applied.
func ResultFromContext(ctx context.Context) (schema.Result, bool) {
	v, ok := ctx.Value(ctxKeyResult{}).(schema.Result)
	return v, ok
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []schema.Issue) map[string]any {
	return map[string]any{"issues": issues}
}

// Option configures ValidateJSON.
type Option func(*config)

type config struct {
	maxBody int64
	opts    []schema.ValidateOption
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option { return func(c *config) { c.maxBody = n } }

// WithValidateOptions passes opts to every Validate call.
func WithValidateOptions(opts ...schema.ValidateOption) Option {
	return func(c *config) { c.opts = append(c.opts, opts...) }
}

// ValidateJSON decodes the request body as JSON and validates it against s.
// Timestamp fields accept RFC3339 strings. On success the Result is stored in
// the request context; otherwise it answers 400 for malformed JSON and 422
// with the issues for an invalid document.
func ValidateJSON(s *schema.Schema, opts ...Option) func(http.Handler) http.Handler {
	cfg := config{maxBody: DefaultMaxBodyBytes}
	for _, o := range opts {
		o(&cfg)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := http.MaxBytesReader(w, r.Body, cfg.maxBody)
			doc, err := source.DecodeJSON(body)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			doc, err = codec.DecodeTimestamps(s, doc)
			if iss, ok := schema.AsIssues(err); ok {
				writeJSON(w, http.StatusUnprocessableEntity, ErrorPayload(iss))
				return
			}
			res, _ := s.Validate(r.Context(), doc, cfg.opts...)
			if !res.Valid {
				writeJSON(w, http.StatusUnprocessableEntity, ErrorPayload([]schema.Issue{res.Issue()}))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithResult(r.Context(), res)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = gojson.NewEncoder(w).Encode(v)
}
