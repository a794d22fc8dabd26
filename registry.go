package schema

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Irrelon/irrelon-schema/i18n"
	"gopkg.in/go-playground/validator.v9"
)

// ValidatorContext carries per-call settings into a ValidatorFunc.
type ValidatorContext struct {
	// Translator renders failure reasons; nil means i18n.Default().
	Translator i18n.Translator
}

func (vc ValidatorContext) message(code string, data map[string]string) string {
	tr := vc.Translator
	if tr == nil {
		tr = i18n.Default()
	}
	return tr.Message(code, data)
}

// ValidatorFunc checks a single value found at path.
type ValidatorFunc func(value any, path string, vc ValidatorContext) Result

// CheckFunc is a custom type's own validator. A nil error accepts the value.
type CheckFunc func(value any) error

// TransformFunc rewrites a field value during validation. parent is the object
// holding the field and root is the whole document being validated.
// Transforms must be synchronous and free of side effects.
type TransformFunc func(value, parent, root any) (any, error)

// CustomType binds a name to a base type plus optional format metadata and an
// optional validator. Validate takes precedence over Tag; with neither, values
// are checked against Base.
type CustomType struct {
	Name     string
	Base     Type
	Format   string
	Validate CheckFunc
	// Tag is a go-playground validator tag such as "email" or "uuid4".
	Tag string
}

// Registry resolves type tags to validator functions. It is safe for
// concurrent use.
type Registry struct {
	mu         sync.RWMutex
	types      map[string]CustomType
	transforms map[string]TransformFunc
	tags       *validator.Validate
	logger     *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for registration events.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry returns a Registry holding the built-in custom types.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		types:      map[string]CustomType{},
		transforms: map[string]TransformFunc{},
		tags:       validator.New(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(r)
	}
	for _, ct := range builtinTypes {
		r.types[ct.Name] = ct
	}
	return r
}

var builtinTypes = []CustomType{
	{Name: "any", Base: Any},
	{Name: "integer", Base: Numeric, Format: "int32"},
	{Name: "long", Base: Numeric, Format: "int64"},
	{Name: "float", Base: Numeric, Format: "float"},
	{Name: "double", Base: Numeric, Format: "double"},
	{Name: "byte", Base: Text, Format: "byte"},
	{Name: "binary", Base: Text, Format: "binary"},
	{Name: "date", Base: Timestamp, Format: "date"},
	{Name: "date-time", Base: Timestamp, Format: "date-time"},
	{Name: "password", Base: Text, Format: "password"},
}

// Register adds a custom type. Names are unique and may not shadow primitive
// tag names; the base must be a primitive, Any, or an already registered
// custom type.
func (r *Registry) Register(ct CustomType) error {
	if ct.Name == "" {
		return definitionErrorf("", "custom type name must not be empty")
	}
	if _, ok := primitiveNames[ct.Name]; ok {
		return definitionErrorf("", "custom type %q shadows a primitive type name", ct.Name)
	}
	switch ct.Base.Kind {
	case kindInvalid:
		return definitionErrorf("", "custom type %q has no base type", ct.Name)
	case KindSchema:
		return definitionErrorf("", "custom type %q cannot be based on a schema reference", ct.Name)
	}
	if ct.Tag != "" {
		if err := r.checkTag(ct.Tag); err != nil {
			return &DefinitionError{Reason: fmt.Sprintf("custom type %q has an invalid validator tag %q", ct.Name, ct.Tag), Cause: err}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.types[ct.Name]; dup {
		return definitionErrorf("", "custom type %q is already registered", ct.Name)
	}
	if ct.Base.Kind == KindCustom {
		if _, ok := r.types[ct.Base.Name]; !ok {
			return definitionErrorf("", "custom type %q is based on unknown type %q", ct.Name, ct.Base.Name)
		}
	}
	r.types[ct.Name] = ct
	r.logger.Debug("custom type registered", "name", ct.Name, "base", ct.Base.String(), "format", ct.Format)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(ct CustomType) {
	if err := r.Register(ct); err != nil {
		panic(err)
	}
}

// checkTag reports whether go-playground accepts tag; unknown tags make it panic.
func (r *Registry) checkTag(tag string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	_ = r.tags.Var("", tag)
	return nil
}

// Lookup returns the custom type registered under name.
func (r *Registry) Lookup(name string) (CustomType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.types[name]
	return ct, ok
}

// Names lists the registered custom type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for n := range r.types {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ParseType maps a type name used in file-based declarations to a tag.
func (r *Registry) ParseType(name string) (Type, bool) {
	if t, ok := primitiveNames[strings.ToLower(name)]; ok {
		return t, true
	}
	if name == "any" {
		return Any, true
	}
	if _, ok := r.Lookup(name); ok {
		return Custom(name), true
	}
	return Type{}, false
}

// Format returns the format metadata of t, following custom type aliases.
func (r *Registry) Format(t Type) string {
	for i := 0; t.Kind == KindCustom && i < maxAliasDepth; i++ {
		ct, ok := r.Lookup(t.Name)
		if !ok {
			return ""
		}
		if ct.Format != "" {
			return ct.Format
		}
		t = ct.Base
	}
	return ""
}

// Underlying follows custom type aliases down to a non-custom tag. Unknown
// custom names resolve to Any.
func (r *Registry) Underlying(t Type) Type {
	for i := 0; t.Kind == KindCustom; i++ {
		ct, ok := r.Lookup(t.Name)
		if !ok || i >= maxAliasDepth {
			return Any
		}
		t = ct.Base
	}
	return t
}

// RegisterTransform names a transform so declaration files can refer to it.
func (r *Registry) RegisterTransform(name string, fn TransformFunc) error {
	if name == "" || fn == nil {
		return definitionErrorf("", "transform %q must have a name and a function", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.transforms[name]; dup {
		return definitionErrorf("", "transform %q is already registered", name)
	}
	r.transforms[name] = fn
	r.logger.Debug("transform registered", "name", name)
	return nil
}

// Transform returns the transform registered under name.
func (r *Registry) Transform(name string) (TransformFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.transforms[name]
	return fn, ok
}

// ExpectedName is the type name reported as ExpectedType for t.
func (r *Registry) ExpectedName(t Type) string {
	if t.Kind == KindCustom {
		if ct, ok := r.Lookup(t.Name); ok && (ct.Validate != nil || ct.Tag != "") {
			return ct.Name
		}
		return r.ExpectedName(r.Underlying(t))
	}
	if t.Kind == KindSchema {
		return KindMap.String()
	}
	return t.Kind.String()
}

const maxAliasDepth = 32

// Resolve builds the validator for a field of type t. The composition runs the
// required check first, then the base type check, then oneOf membership, and
// stops at the first failure. A nil value passes every check except required.
// custom is consulted before the built-in handling; a nil return falls through.
// Unknown tags resolve to a validator that always succeeds.
func (r *Registry) Resolve(t Type, required bool, oneOf []any, custom func(Type) ValidatorFunc) ValidatorFunc {
	chain := make([]ValidatorFunc, 0, 3)
	if required {
		chain = append(chain, checkRequired)
	}
	chain = append(chain, r.base(t, custom, 0))
	if len(oneOf) > 0 {
		chain = append(chain, checkOneOf(oneOf))
	}
	if len(chain) == 1 {
		return chain[0]
	}
	return compose(chain...)
}

func compose(chain ...ValidatorFunc) ValidatorFunc {
	return func(value any, path string, vc ValidatorContext) Result {
		for _, fn := range chain {
			if res := fn(value, path, vc); !res.Valid {
				return res
			}
		}
		return succeeded()
	}
}

func (r *Registry) base(t Type, custom func(Type) ValidatorFunc, depth int) ValidatorFunc {
	if custom != nil {
		if fn := custom(t); fn != nil {
			return fn
		}
	}
	switch t.Kind {
	case KindText:
		return checkKind("string", isString)
	case KindNumeric:
		return checkKind("number", isNumeric)
	case KindBoolean:
		return checkKind("boolean", isBool)
	case KindMap, KindSchema:
		return checkKind("object", isMap)
	case KindCallable:
		return checkKind("function", isCallable)
	case KindList:
		return checkKind("array", isList)
	case KindTimestamp:
		return checkKind("timestamp", isTimestamp)
	case KindCustom:
		ct, ok := r.Lookup(t.Name)
		if !ok || depth >= maxAliasDepth {
			return checkAny
		}
		switch {
		case ct.Validate != nil:
			return checkCustom(ct.Name, ct.Validate)
		case ct.Tag != "":
			tags, tag := r.tags, ct.Tag
			return checkCustom(ct.Name, func(v any) error { return tags.Var(v, tag) })
		}
		return r.base(ct.Base, custom, depth+1)
	}
	return checkAny
}

func checkAny(any, string, ValidatorContext) Result { return succeeded() }

func checkRequired(value any, path string, vc ValidatorContext) Result {
	if !isAbsent(value) {
		return succeeded()
	}
	return Result{
		Path:   path,
		Code:   CodeRequired,
		Reason: vc.message(CodeRequired, map[string]string{"path": path}),
	}
}

func checkKind(expected string, ok func(any) bool) ValidatorFunc {
	return func(value any, path string, vc ValidatorContext) Result {
		if isAbsent(value) || ok(value) {
			return succeeded()
		}
		return typeFailure(path, value, expected, vc)
	}
}

func checkCustom(name string, fn CheckFunc) ValidatorFunc {
	return func(value any, path string, vc ValidatorContext) Result {
		if isAbsent(value) {
			return succeeded()
		}
		if err := fn(value); err != nil {
			res := typeFailure(path, value, name, vc)
			res.Reason += ": " + err.Error()
			return res
		}
		return succeeded()
	}
}

func checkOneOf(allowed []any) ValidatorFunc {
	rendered := make([]string, len(allowed))
	for i, a := range allowed {
		rendered[i] = render(a)
	}
	list := strings.Join(rendered, ", ")
	return func(value any, path string, vc ValidatorContext) Result {
		if isAbsent(value) || containsValue(allowed, value) {
			return succeeded()
		}
		return Result{
			Path:       path,
			Code:       CodeInvalidEnum,
			ActualType: TypeOf(value),
			Reason:     vc.message(CodeInvalidEnum, map[string]string{"path": path, "allowed": list, "value": preview(value)}),
		}
	}
}

func typeFailure(path string, value any, expected string, vc ValidatorContext) Result {
	actual := TypeOf(value)
	return Result{
		Path:         path,
		Code:         CodeInvalidType,
		ExpectedType: expected,
		ActualType:   actual,
		Reason: vc.message(CodeInvalidType, map[string]string{
			"path": path, "expected": expected, "actual": actual, "value": preview(value),
		}),
	}
}
