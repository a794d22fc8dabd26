package codec_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schema "github.com/Irrelon/irrelon-schema"
	"github.com/Irrelon/irrelon-schema/codec"
)

func TestTimeRFC3339_Roundtrip(t *testing.T) {
	in := "2025-01-01T00:00:00Z"
	got, err := codec.DecodeTime(in)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, in, codec.EncodeTime(got))
}

func TestTimeRFC3339_Canonical(t *testing.T) {
	got, err := codec.DecodeTime("2025-01-01T09:00:00.500000+09:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01T00:00:00.5Z", codec.EncodeTime(got))

	_, err = codec.DecodeTime("2025-01-01")
	assert.Error(t, err)
}

func TestDecodeTimestamps(t *testing.T) {
	cat := schema.NewCatalog(nil)
	event := cat.MustDefine("Event", schema.Declaration{
		{Name: "at", Spec: schema.Timestamp},
		{Name: "day", Spec: schema.Date},
		{Name: "history", Spec: []any{schema.DateTime}},
		{Name: "name", Spec: schema.Text},
	})
	cat.MustDefine("Log", schema.Declaration{
		{Name: "last", Spec: event},
		{Name: "events", Spec: []any{event}},
	})
	log, _ := cat.Lookup("Log")

	doc := map[string]any{
		"last": map[string]any{
			"at":      "2025-01-01T00:00:00Z",
			"day":     "2025-02-03T00:00:00Z",
			"history": []any{"2024-12-31T23:59:59Z"},
			"name":    "2025-01-01T00:00:00Z",
		},
		"events": []any{map[string]any{"at": "2025-01-02T00:00:00Z"}},
	}
	out, err := codec.DecodeTimestamps(log, doc)
	require.NoError(t, err)

	last := out.(map[string]any)["last"].(map[string]any)
	assert.IsType(t, time.Time{}, last["at"])
	assert.IsType(t, time.Time{}, last["day"])
	assert.IsType(t, time.Time{}, last["history"].([]any)[0])
	assert.Equal(t, "2025-01-01T00:00:00Z", last["name"], "text fields are untouched")
	first := out.(map[string]any)["events"].([]any)[0].(map[string]any)
	assert.IsType(t, time.Time{}, first["at"])

	assert.True(t, log.IsValid(context.Background(), out))
}

func TestDecodeTimestamps_Invalid(t *testing.T) {
	cat := schema.NewCatalog(nil)
	s := cat.MustDefine("E", schema.Declaration{
		{Name: "at", Spec: schema.Timestamp},
		{Name: "list", Spec: []any{schema.Timestamp}},
	})

	_, err := codec.DecodeTimestamps(s, map[string]any{"at": "yesterday", "list": []any{"x", 3}})
	require.Error(t, err)
	iss, ok := schema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 2)
	assert.Equal(t, "/at", iss[0].Path)
	assert.Equal(t, schema.CodeInvalidType, iss[0].Code)
	assert.Equal(t, "/list/0", iss[1].Path)

	// non-maps pass through for the validator to report
	out, err := codec.DecodeTimestamps(s, "nope")
	require.NoError(t, err)
	assert.Equal(t, "nope", out)
}
