package metrics_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schema "github.com/Irrelon/irrelon-schema"
	"github.com/Irrelon/irrelon-schema/metrics"
)

func TestObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := metrics.New(reg)
	require.NoError(t, err)

	cat := schema.NewCatalog(nil)
	user := cat.MustDefine("User", schema.Declaration{
		{Name: "name", Spec: schema.Field{Type: schema.Text, Required: true}},
	})
	ctx := context.Background()
	_, _ = user.Validate(ctx, map[string]any{"name": "ada"}, schema.WithObserver(obs))
	_, _ = user.Validate(ctx, map[string]any{"name": "bob"}, schema.WithObserver(obs))
	_, _ = user.Validate(ctx, map[string]any{}, schema.WithObserver(obs))

	n, err := testutil.GatherAndCount(reg, "irrelon_schema_validations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	mfs, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "irrelon_schema_validations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			counts[labels["result"]+"/"+labels["code"]] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"valid/": 2, "invalid/" + schema.CodeRequired: 1}, counts)
	n, err = testutil.GatherAndCount(reg, "irrelon_schema_validation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)
	_, err = metrics.New(reg)
	assert.Error(t, err)
}
