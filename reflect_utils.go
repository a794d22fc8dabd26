package schema

import (
	"reflect"
	"strings"
)

// StructKey resolves the document key of a struct field.
// Priority: schema:"name=..." > json tag name > field name; "-" hides the field.
func StructKey(sf reflect.StructField) string {
	if st := sf.Tag.Get("schema"); st != "" {
		for _, p := range strings.Split(st, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if i := strings.IndexByte(jt, ','); i >= 0 {
			jt = jt[:i]
		}
		if jt != "" {
			return jt
		}
	}
	return sf.Name
}

// structFields lists the exported fields of a struct value keyed by StructKey.
// Embedded structs without a key of their own are flattened into the parent.
func structFields(rv reflect.Value, out map[string]any) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := rv.Field(i)
		if sf.Anonymous && sf.Tag.Get("json") == "" && sf.Tag.Get("schema") == "" {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				structFields(fv, out)
				continue
			}
		}
		key := StructKey(sf)
		if key == "-" {
			continue
		}
		if omitEmpty(sf) && fv.IsZero() {
			continue
		}
		out[key] = fv.Interface()
	}
}

func omitEmpty(sf reflect.StructField) bool {
	jt := sf.Tag.Get("json")
	i := strings.IndexByte(jt, ',')
	return i >= 0 && strings.Contains(jt[i:], "omitempty")
}
