package schema_test

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	schema "github.com/Irrelon/irrelon-schema"
	"github.com/Irrelon/irrelon-schema/source"
)

// ---- Helpers ----

func benchUserSchema(tb testing.TB) *schema.Schema {
	tb.Helper()
	cat := schema.NewCatalog(nil)
	meta := cat.MustDefine("Meta", schema.Declaration{{Name: "score", Spec: schema.Numeric}})
	s, err := cat.Object("User").
		Field("id", schema.Text).Required().
		Field("name", schema.Text).
		Field("age", schema.Integer).
		Field("active", schema.Field{Type: schema.Boolean, Default: true}).
		Field("meta", meta).
		Field("tags", []any{schema.Text}).
		Build()
	if err != nil {
		tb.Fatalf("schema build failed: %v", err)
	}
	return s
}

// generateUsers returns a JSON array of n user objects.
func generateUsers(n int) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`{"id":"u_` + strconv.Itoa(i) + `","name":"n","age":` + strconv.Itoa(i%90) +
			`,"meta":{"score":` + strconv.Itoa(i) + `},"tags":["a","b"]}`)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func decodeUsers(tb testing.TB, n int) []any {
	tb.Helper()
	v, err := source.DecodeJSON(bytes.NewReader(generateUsers(n)))
	if err != nil {
		tb.Fatalf("decode failed: %v", err)
	}
	return v.([]any)
}

// ---- Benchmarks ----

func BenchmarkValidate_Copy(b *testing.B) {
	s := benchUserSchema(b)
	docs := decodeUsers(b, 256)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res, _ := s.Validate(ctx, docs[i%len(docs)]); !res.Valid {
			b.Fatalf("unexpected failure: %s", res.Reason)
		}
	}
}

func BenchmarkValidate_InPlace(b *testing.B) {
	s := benchUserSchema(b)
	docs := decodeUsers(b, 256)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res, _ := s.Validate(ctx, docs[i%len(docs)], schema.InPlace()); !res.Valid {
			b.Fatalf("unexpected failure: %s", res.Reason)
		}
	}
}

func BenchmarkDecodeAndValidate(b *testing.B) {
	s := benchUserSchema(b)
	data := generateUsers(1)
	data = data[1 : len(data)-1]
	ctx := context.Background()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v, err := source.DecodeJSON(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		if !s.IsValid(ctx, v) {
			b.Fatal("invalid")
		}
	}
}

func BenchmarkFlatten(b *testing.B) {
	s := benchUserSchema(b)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = s.Flatten()
	}
}
