package schema

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/Irrelon/irrelon-schema/i18n"
)

// DefaultMaxDepth bounds schema nesting during validation.
const DefaultMaxDepth = 512

// Observer receives the outcome of every top-level validation.
type Observer interface {
	ObserveValidation(s *Schema, res Result, elapsed time.Duration)
}

// ValidateOption configures a single Validate call.
type ValidateOption func(*validateOptions)

type validateOptions struct {
	failAsError bool
	inPlace     bool
	maxDepth    int
	root        any
	hasRoot     bool
	observer    Observer
	translator  i18n.Translator
	logger      *slog.Logger
}

// FailAsError makes Validate also return a *ValidationError when the value is
// invalid.
func FailAsError() ValidateOption { return func(o *validateOptions) { o.failAsError = true } }

// InPlace applies defaults and transforms to the caller's value instead of a
// copy. Only map[string]any objects and []any lists can be written in place;
// other object shapes are converted and the converted copy is written back
// into their parent.
func InPlace() ValidateOption { return func(o *validateOptions) { o.inPlace = true } }

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(n int) ValidateOption {
	return func(o *validateOptions) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithRoot sets the document passed to transforms as root. It defaults to the
// value being validated.
func WithRoot(root any) ValidateOption {
	return func(o *validateOptions) { o.root, o.hasRoot = root, true }
}

// WithObserver reports the result and duration of the call to obs.
func WithObserver(obs Observer) ValidateOption {
	return func(o *validateOptions) { o.observer = obs }
}

// WithTranslator renders failure reasons with tr instead of i18n.Default().
func WithTranslator(tr i18n.Translator) ValidateOption {
	return func(o *validateOptions) { o.translator = tr }
}

// WithLogger logs validation failures at debug level to l.
func WithLogger(l *slog.Logger) ValidateOption {
	return func(o *validateOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Validate checks value against the schema and returns the first failure.
//
// Undeclared keys fail (closed world). For each declared field, in declaration
// order, a missing value receives the field default, the transform runs, and
// the field validator runs; lists and nested schemas are checked recursively.
// The returned Result carries the patched document in Value and every write
// in Patches. The input is not modified unless InPlace is given.
//
// The error is non-nil only with FailAsError, for an invalid value.
func (s *Schema) Validate(ctx context.Context, value any, opts ...ValidateOption) (Result, error) {
	o := validateOptions{maxDepth: DefaultMaxDepth, logger: s.cat.logger}
	for _, opt := range opts {
		opt(&o)
	}
	start := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}

	r := &run{ctx: ctx, cat: s.cat, opts: &o, vc: ValidatorContext{Translator: o.translator}}
	doc, acyclic, cycle := value, true, ""
	if !o.inPlace {
		doc, cycle, acyclic = cloneValue(value)
	}
	if isAbsent(doc) {
		doc = map[string]any{}
	}

	var res Result
	if !acyclic {
		// a document containing itself nests without bound
		doc = value
		res = r.tooDeep(cycle)
	} else if obj, ok := asObject(doc); ok {
		doc = obj
		r.root = doc
		if o.hasRoot {
			r.root = o.root
		}
		res = r.object(s, obj, "", 0)
	} else {
		res = typeFailure("", doc, KindMap.String(), r.vc)
	}
	res.Value = doc
	res.Patches = r.patches

	if !res.Valid {
		o.logger.Debug("validation failed", "schema", s.String(), "path", res.Path, "code", res.Code, "reason", res.Reason)
	}
	if o.observer != nil {
		o.observer.ObserveValidation(s, res, time.Since(start))
	}
	if !res.Valid && o.failAsError {
		return res, &ValidationError{Result: res}
	}
	return res, nil
}

// run holds the state of one Validate call.
type run struct {
	ctx     context.Context
	cat     *Catalog
	opts    *validateOptions
	vc      ValidatorContext
	root    any
	patches []Patch
}

func (r *run) fail(path, code string, data map[string]string) Result {
	return Result{Path: path, Code: code, Reason: r.vc.message(code, data)}
}

func (r *run) tooDeep(path string) Result {
	return r.fail(path, CodeTooDeep, map[string]string{"path": path, "limit": strconv.Itoa(r.opts.maxDepth)})
}

// object validates obj against s. Writes go into obj.
func (r *run) object(s *Schema, obj map[string]any, path string, depth int) Result {
	if err := r.ctx.Err(); err != nil {
		return r.fail(path, CodeCanceled, map[string]string{"path": path, "cause": err.Error()})
	}
	if depth > r.opts.maxDepth {
		return r.tooDeep(path)
	}
	if !s.isDefined() {
		return r.fail(path, CodeUnresolvedRef, map[string]string{"path": path})
	}
	fields, index := s.snapshot()

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := index[k]; !ok {
			p := JoinPath(path, k)
			return r.fail(p, CodeUnknownKey, map[string]string{"path": p, "key": k})
		}
	}

	for _, f := range fields {
		p := JoinPath(path, f.Name)
		v, present := obj[f.Name]
		if !present && f.HasDefault {
			v, _, _ = cloneValue(f.Default)
			obj[f.Name] = v
			present = true
			r.patches = append(r.patches, Patch{Path: p, Op: PatchDefault, Value: v})
		}
		if f.Transform != nil {
			out, err := f.Transform(v, obj, r.root)
			if err != nil {
				return r.fail(p, CodeTransform, map[string]string{"path": p, "cause": err.Error()})
			}
			if present || out != nil {
				v = out
				obj[f.Name] = v
				r.patches = append(r.patches, Patch{Path: p, Op: PatchTransform, Value: v})
			}
		}
		if res := r.check(f, v, p, depth, func(nv any) { obj[f.Name] = nv }); !res.Valid {
			return res
		}
	}
	return succeeded()
}

// check runs the field validator on v and descends into lists and schemas.
// set replaces v in its container when a nested object had to be converted.
func (r *run) check(f *FieldSpec, v any, path string, depth int, set func(any)) Result {
	if res := f.check(v, path, r.vc); !res.Valid {
		return res
	}
	switch f.Type.Kind {
	case KindList:
		if isAbsent(v) {
			if f.ElementRequired {
				return r.elementRequired(path)
			}
			return succeeded()
		}
		elems := listElems(v)
		if f.ElementRequired && len(elems) == 0 {
			return r.elementRequired(path)
		}
		list, writable := v.([]any)
		for i, e := range elems {
			var setElem func(any)
			if writable {
				setElem = func(nv any) { list[i] = nv }
			}
			if res := r.check(f.Element, e, indexPath(path, i), depth, setElem); !res.Valid {
				return res
			}
		}
	case KindSchema:
		if isAbsent(v) {
			return succeeded()
		}
		target := r.cat.slot(f.Type.Schema)
		if target == nil {
			return r.fail(path, CodeUnresolvedRef, map[string]string{"path": path})
		}
		obj, ok := asObject(v)
		if !ok {
			return typeFailure(path, v, KindMap.String(), r.vc)
		}
		before := len(r.patches)
		res := r.object(target, obj, path, depth+1)
		if _, same := v.(map[string]any); !same && set != nil && len(r.patches) > before {
			set(obj)
		}
		return res
	}
	return succeeded()
}

func (r *run) elementRequired(path string) Result {
	p := indexPath(path, 0)
	return r.fail(p, CodeElementRequired, map[string]string{"path": p})
}
