package schema

import (
	"bytes"
	"reflect"
	"time"
)

// cloneValue deep-copies a document into the generic shape the validator
// writes to: objects become map[string]any and lists become []any. Scalars,
// timestamps and functions are shared. ok is false when the document contains
// itself; cycle is then the path of the first value found among its own
// ancestors.
func cloneValue(v any) (out any, cycle string, ok bool) {
	c := cloner{active: map[cloneKey]bool{}}
	out = c.clone(v, "")
	return out, c.cycle, !c.cyclic
}

// cloneKey identifies a map, slice or pointer by the memory it refers to.
// Slices also carry their length so that distinct windows of one array are
// told apart.
type cloneKey struct {
	ptr uintptr
	n   int
}

type cloner struct {
	active map[cloneKey]bool
	cyclic bool
	cycle  string
}

// enter marks rv as being copied. It reports false when rv is already on the
// current path.
func (c *cloner) enter(rv reflect.Value, path string) (cloneKey, bool) {
	k := cloneKey{ptr: rv.Pointer()}
	if rv.Kind() == reflect.Slice {
		k.n = rv.Len()
	}
	if k.ptr == 0 {
		return k, true
	}
	if c.active[k] {
		c.cyclic, c.cycle = true, path
		return k, false
	}
	c.active[k] = true
	return k, true
}

func (c *cloner) leave(k cloneKey) { delete(c.active, k) }

func (c *cloner) clone(v any, path string) any {
	if c.cyclic {
		return nil
	}
	switch t := v.(type) {
	case nil, string, bool, time.Time:
		return v
	case []byte:
		return bytes.Clone(t)
	case map[string]any:
		k, ok := c.enter(reflect.ValueOf(t), path)
		if !ok {
			return nil
		}
		defer c.leave(k)
		out := make(map[string]any, len(t))
		for key, e := range t {
			out[key] = c.clone(e, JoinPath(path, key))
		}
		return out
	case []any:
		k, ok := c.enter(reflect.ValueOf(t), path)
		if !ok {
			return nil
		}
		defer c.leave(k)
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = c.clone(e, indexPath(path, i))
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if isBytes(rv) {
		return v
	}
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() || rv.Type().Elem() == timeType {
			return v
		}
		if e := rv.Elem(); e.Kind() == reflect.Struct || e.Kind() == reflect.Map || e.Kind() == reflect.Slice {
			k, ok := c.enter(rv, path)
			if !ok {
				return nil
			}
			defer c.leave(k)
			return c.clone(e.Interface(), path)
		}
	case reflect.Map:
		if obj, ok := asObject(v); ok {
			k, ok := c.enter(rv, path)
			if !ok {
				return nil
			}
			defer c.leave(k)
			return c.clone(obj, path)
		}
	case reflect.Slice:
		if rv.IsNil() {
			return []any{}
		}
		k, ok := c.enter(rv, path)
		if !ok {
			return nil
		}
		defer c.leave(k)
		return c.clone(listElems(v), path)
	case reflect.Array:
		return c.clone(listElems(v), path)
	case reflect.Struct:
		if obj, ok := asObject(v); ok {
			return c.clone(obj, path)
		}
	}
	return v
}

// asObject returns the key/value view of an object value. map[string]any is
// returned as is, so writes reach the caller; other maps with string keys and
// structs are converted.
func asObject(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			out[it.Key().String()] = it.Value().Interface()
		}
		return out, true
	case reflect.Struct:
		if rv.Type() == timeType {
			return nil, false
		}
		out := map[string]any{}
		structFields(rv, out)
		return out, true
	}
	return nil, false
}
