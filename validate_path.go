package schema

import (
	"context"
	"strconv"
	"time"
)

// ValidateAt validates only the part of doc selected by a dotted path.
//
// The path is matched against the schema as far as it goes: for a schema
// declaring foo.bar, the path "foo.bar.thing" validates doc's foo.bar value
// against the foo.bar field. List elements are selected by index or by the
// wildcard "$", which selects the first element. When not even the first
// segment is declared, doc itself is checked to be an object. Options apply
// as for Validate, including the observer.
func (s *Schema) ValidateAt(ctx context.Context, path string, doc any, opts ...ValidateOption) (Result, error) {
	o := validateOptions{maxDepth: DefaultMaxDepth, logger: s.cat.logger}
	for _, opt := range opts {
		opt(&o)
	}
	start := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}
	r := &run{ctx: ctx, cat: s.cat, opts: &o, vc: ValidatorContext{Translator: o.translator}, root: doc}
	if o.hasRoot {
		r.root = o.root
	}

	spec, segs := s.furthest(SplitPath(path))
	var res Result
	if spec == nil {
		res = checkKind(KindMap.String(), isMap)(doc, "", r.vc)
	} else {
		at := JoinPath(segs...)
		v, acyclic, cycle := valueAt(doc, segs), true, ""
		if !o.inPlace {
			v, cycle, acyclic = cloneValue(v)
		}
		if acyclic {
			res = r.check(spec, v, at, 0, nil)
		} else {
			res = r.tooDeep(JoinPath(at, cycle))
		}
		res.Value = v
	}
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

// furthest returns the deepest field declared along segs together with the
// data path leading to it. Wildcards in the data path become index 0.
func (s *Schema) furthest(segs []string) (*FieldSpec, []string) {
	var (
		spec *FieldSpec
		cur  = s
		path []string
	)
	for _, seg := range segs {
		if spec != nil {
			switch spec.Type.Kind {
			case KindList:
				if seg != Wildcard && !isIndex(seg) {
					return spec, path
				}
				if seg == Wildcard {
					seg = "0"
				}
				spec = spec.Element
				path = append(path, seg)
				continue
			case KindSchema:
				next, ok := s.cat.defined(spec.Type.Schema)
				if !ok {
					return spec, path
				}
				cur = next
			default:
				return spec, path
			}
		}
		f, ok := cur.Field(seg)
		if !ok {
			break
		}
		spec = f
		path = append(path, seg)
	}
	return spec, path
}

func isIndex(seg string) bool {
	n, err := strconv.Atoi(seg)
	return err == nil && n >= 0
}

// valueAt reads the value under a data path; missing steps yield nil.
func valueAt(doc any, segs []string) any {
	v := doc
	for _, seg := range segs {
		if isAbsent(v) {
			return nil
		}
		if isList(v) {
			i, err := strconv.Atoi(seg)
			elems := listElems(v)
			if err != nil || i < 0 || i >= len(elems) {
				return nil
			}
			v = elems[i]
			continue
		}
		obj, ok := asObject(v)
		if !ok {
			return nil
		}
		v = obj[seg]
	}
	return v
}
