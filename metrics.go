package cursescell

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the cell layer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	BuffersRented      prometheus.Counter
	BuffersReturned    prometheus.Counter
	BuffersOutstanding prometheus.Gauge

	NativeCalls        *prometheus.CounterVec
	ConversionFailures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BuffersRented: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cursescell_buffers_rented_total",
			Help: "Total number of cell buffers rented from the pool",
		}),
		BuffersReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cursescell_buffers_returned_total",
			Help: "Total number of cell buffers returned to the pool",
		}),
		BuffersOutstanding: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cursescell_buffers_outstanding",
			Help: "Number of pooled cell buffers currently rented",
		}),
		NativeCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cursescell_native_calls_total",
				Help: "Total number of native primitive calls",
			},
			[]string{"primitive", "result"},
		),
		ConversionFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cursescell_conversion_failures_total",
				Help: "Total number of failed cell conversions",
			},
			[]string{"op", "kind"},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.BuffersRented,
			m.BuffersReturned,
			m.BuffersOutstanding,
			m.NativeCalls,
			m.ConversionFailures,
		)
	}
	return m
}

func (m *Metrics) bufferRented() {
	if m == nil {
		return
	}
	m.BuffersRented.Inc()
	m.BuffersOutstanding.Inc()
}

func (m *Metrics) bufferReturned() {
	if m == nil {
		return
	}
	m.BuffersReturned.Inc()
	m.BuffersOutstanding.Dec()
}

func (m *Metrics) nativeCall(p Primitive, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.NativeCalls.WithLabelValues(p.String(), result).Inc()
}

// Conversion directions used as the op label.
const (
	opEncode = "encode"
	opDecode = "decode"
)

func (m *Metrics) conversionFailed(op string, err error) {
	if m == nil || err == nil {
		return
	}
	m.ConversionFailures.WithLabelValues(op, failureKind(err)).Inc()
}

// failureKind maps a conversion error to its metric label.
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrUnrepresentableGlyph):
		return "unrepresentable"
	case errors.Is(err, ErrNonEncodable):
		return "non_encodable"
	case errors.Is(err, ErrIncompleteEncoding):
		return "incomplete_encoding"
	case errors.Is(err, ErrIncompleteDecoding):
		return "incomplete_decoding"
	case errors.Is(err, ErrBufferTooSmall):
		return "buffer_too_small"
	case errors.Is(err, ErrInvalidCast):
		return "invalid_cast"
	default:
		return "other"
	}
}
