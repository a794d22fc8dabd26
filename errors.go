package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Failure codes carried by Result.Code and Issue.Code.
const (
	CodeInvalidType     = "invalid_type"
	CodeRequired        = "required"
	CodeUnknownKey      = "unknown_key"
	CodeInvalidEnum     = "invalid_enum"
	CodeElementRequired = "element_required"
	CodeTransform       = "transform"
	CodeUnresolvedRef   = "unresolved_ref"
	CodeTooDeep         = "too_deep"
	CodeCanceled        = "canceled"
)

// ErrInvalidDefinition is matched (errors.Is) by every DefinitionError.
var ErrInvalidDefinition = errors.New("schema: invalid definition")

// DefinitionError reports a schema authored incorrectly. It is raised at
// construction time and never recoverable at validation time.
type DefinitionError struct {
	Path   string // dotted field path, "$" marks list elements
	Reason string
	Cause  error
}

func (e *DefinitionError) Error() string {
	if e.Path == "" {
		return "Schema definition invalid: " + e.Reason
	}
	return fmt.Sprintf("Schema definition invalid at path %q: %s", e.Path, e.Reason)
}

func (e *DefinitionError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidDefinition, e.Cause}
	}
	return []error{ErrInvalidDefinition}
}

func definitionErrorf(path, format string, args ...any) *DefinitionError {
	return &DefinitionError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// ValidationError is the error form of a failed Result, returned when the
// caller asks for FailAsError.
type ValidationError struct {
	Result Result
}

func (e *ValidationError) Error() string {
	if e.Result.Reason != "" {
		return e.Result.Reason
	}
	return fmt.Sprintf("%s at %s", e.Result.Code, e.Result.Path)
}

// AsValidationError extracts a ValidationError using errors.As.
func AsValidationError(err error) (*ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Issue is the JSON Pointer rendition of a failure, for callers that report
// errors in the same shape as API error payloads.
type Issue struct {
	Path    string         `json:"path"` // JSON Pointer (for example: /items/2/price).
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// Issues is a collection of Issue values that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// AsIssues extracts Issues from an error. A ValidationError converts to a
// single Issue.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	if ve, ok := AsValidationError(err); ok {
		return Issues{ve.Result.Issue()}, true
	}
	return nil, false
}
