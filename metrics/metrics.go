// Package metrics exports validation outcomes as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	schema "github.com/Irrelon/irrelon-schema"
)

// Observer counts validations and records their duration. It implements
// schema.Observer; pass it with schema.WithObserver.
type Observer struct {
	validations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

var _ schema.Observer = (*Observer)(nil)

// New creates an Observer and registers its collectors with reg. A nil reg
// means prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Observer, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &Observer{
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "irrelon_schema_validations_total",
				Help: "Total number of validations by schema and outcome",
			},
			[]string{"schema", "result", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "irrelon_schema_validation_duration_seconds",
				Help:    "Duration of validations",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"schema"},
		),
	}
	for _, c := range []prometheus.Collector{o.validations, o.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ObserveValidation implements schema.Observer.
func (o *Observer) ObserveValidation(s *schema.Schema, res schema.Result, elapsed time.Duration) {
	name := s.String()
	outcome := "valid"
	if !res.Valid {
		outcome = "invalid"
	}
	o.validations.WithLabelValues(name, outcome, res.Code).Inc()
	o.duration.WithLabelValues(name).Observe(elapsed.Seconds())
}
