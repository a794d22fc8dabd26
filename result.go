package schema

// PatchOp says why a value was written into the document during validation.
type PatchOp uint8

const (
	PatchDefault   PatchOp = iota + 1 // the field was absent and its default was applied
	PatchTransform                    // the field's transform result was written back
)

func (op PatchOp) String() string {
	switch op {
	case PatchDefault:
		return "default"
	case PatchTransform:
		return "transform"
	}
	return "unknown"
}

// Patch records one write performed by the validator.
type Patch struct {
	Path  string  `json:"path"`
	Op    PatchOp `json:"op"`
	Value any     `json:"value"`
}

// Result is the outcome of a validation. On failure Path, Code and Reason
// describe the first failing field; ExpectedType and ActualType are set for
// type mismatches.
type Result struct {
	Valid        bool   `json:"valid"`
	Path         string `json:"path,omitempty"`
	Code         string `json:"code,omitempty"`
	Reason       string `json:"reason,omitempty"`
	ExpectedType string `json:"expectedType,omitempty"`
	ActualType   string `json:"actualType,omitempty"`

	// Value is the validated document with defaults and transforms applied.
	// It is a copy of the input unless InPlace was requested.
	Value any `json:"-"`
	// Patches lists every default and transform write, in application order.
	Patches []Patch `json:"patches,omitempty"`
}

// Issue converts a failed Result into its JSON Pointer form.
func (r Result) Issue() Issue {
	iss := Issue{Path: PointerFromPath(r.Path), Code: r.Code, Message: r.Reason}
	if r.ExpectedType != "" || r.ActualType != "" {
		iss.Params = map[string]any{"expected": r.ExpectedType, "actual": r.ActualType}
	}
	return iss
}

func succeeded() Result { return Result{Valid: true} }
