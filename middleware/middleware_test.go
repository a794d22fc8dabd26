package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schema "github.com/Irrelon/irrelon-schema"
	"github.com/Irrelon/irrelon-schema/middleware"
)

func handler(t *testing.T) http.Handler {
	t.Helper()
	cat := schema.NewCatalog(nil)
	order := cat.MustDefine("Order", schema.Declaration{
		{Name: "id", Spec: schema.Field{Type: schema.Text, Required: true}},
		{Name: "status", Spec: schema.Field{Type: schema.Text, Default: "new"}},
		{Name: "placed", Spec: schema.Timestamp},
	})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, found := middleware.ResultFromContext(r.Context())
		require.True(t, found)
		doc := res.Value.(map[string]any)
		_, isTime := doc["placed"].(time.Time)
		assert.True(t, isTime)
		w.Write([]byte(doc["status"].(string)))
	})
	r := chi.NewRouter()
	r.With(middleware.ValidateJSON(order, middleware.WithMaxBodyBytes(1024))).Post("/orders", ok)
	return r
}

func serve(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))
	return rec
}

func TestValidateJSON(t *testing.T) {
	h := handler(t)

	rec := serve(h, `{"id": "o1", "placed": "2025-01-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	cases := []struct {
		name   string
		body   string
		status int
		path   string
	}{
		{"missing required", `{"placed": "2025-01-01T00:00:00Z"}`, http.StatusUnprocessableEntity, "/id"},
		{"unknown key", `{"id": "o1", "coupon": "x"}`, http.StatusUnprocessableEntity, "/coupon"},
		{"bad timestamp", `{"id": "o1", "placed": "soon"}`, http.StatusUnprocessableEntity, "/placed"},
		{"malformed", `{"id":`, http.StatusBadRequest, ""},
		{"too large", `{"id": "` + strings.Repeat("x", 2048) + `"}`, http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(h, tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tc.path == "" {
				return
			}
			var payload struct {
				Issues []schema.Issue `json:"issues"`
			}
			require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &payload))
			require.Len(t, payload.Issues, 1)
			assert.Equal(t, tc.path, payload.Issues[0].Path)
		})
	}
}
