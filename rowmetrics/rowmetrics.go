// Package rowmetrics counts the rows and errors streams produce
package rowmetrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stephenafamo/rowcursor"
)

// Metrics holds the counters shared by every wrapped stream
type Metrics struct {
	rows   *prometheus.CounterVec
	errors *prometheus.CounterVec
}

// New creates the counters and registers them with reg
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rowcursor",
			Name:      "rows_total",
			Help:      "Number of raw rows read from streams",
		}, []string{"model"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rowcursor",
			Name:      "errors_total",
			Help:      "Number of errors returned by streams",
		}, []string{"model"}),
	}

	for _, c := range []prometheus.Collector{m.rows, m.errors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Wrap returns a stream that counts what s produces under the model label
func (m *Metrics) Wrap(s rowcursor.Stream, model rowcursor.ModelID) rowcursor.Stream {
	return stream{
		s:      s,
		rows:   m.rows.WithLabelValues(string(model)),
		errors: m.errors.WithLabelValues(string(model)),
	}
}

type stream struct {
	s      rowcursor.Stream
	rows   prometheus.Counter
	errors prometheus.Counter
}

func (s stream) Next(ctx context.Context) (rowcursor.Value, error) {
	v, err := s.s.Next(ctx)
	switch {
	case err == rowcursor.Done: //nolint:errorlint
	case err != nil:
		s.errors.Inc()
	default:
		s.rows.Inc()
	}

	return v, err
}

func (s stream) Close() error {
	return s.s.Close()
}
