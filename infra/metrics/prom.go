package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/traveldelay/core/metrics"
)

// PromSink records prediction events in Prometheus metrics.
type PromSink struct {
	predictions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	delay       *prometheus.HistogramVec
	loaded      *prometheus.GaugeVec
}

// NewPromSink registers prediction metrics on the default Prometheus registerer.
// The Prometheus server should be started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	predictions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delay_predictions_total",
		Help: "Total number of delay prediction requests by outcome",
	}, []string{"estimator", "outcome"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "delay_prediction_duration_seconds",
		Help:    "Time spent handling a delay prediction request",
		Buckets: prometheus.DefBuckets,
	}, []string{"estimator"}))
	if err != nil {
		return nil, err
	}
	delay, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "delay_predicted_minutes",
		Help:    "Distribution of predicted delays in minutes",
		Buckets: []float64{0, 5, 10, 15, 20, 30, 45, 60, 90, 120},
	}, []string{"estimator"}))
	if err != nil {
		return nil, err
	}
	loaded, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "delay_model_loaded",
		Help: "1 when the configured estimator loaded at start-up",
	}, []string{"estimator"}))
	if err != nil {
		return nil, err
	}
	return &PromSink{predictions: predictions, duration: duration, delay: delay, loaded: loaded}, nil
}

// register returns the already registered collector when one with the same
// descriptor exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RecordPrediction increments the request counter and observes latency and,
// for successful requests, the predicted delay.
func (s *PromSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	s.predictions.WithLabelValues(ev.Estimator, string(ev.Outcome)).Inc()
	s.duration.WithLabelValues(ev.Estimator).Observe(ev.Latency.Seconds())
	if ev.Outcome == coremetrics.OutcomeSuccess {
		s.delay.WithLabelValues(ev.Estimator).Observe(ev.DelayMinutes)
	}
	return nil
}

// RecordModelStatus sets the loaded gauge for the estimator.
func (s *PromSink) RecordModelStatus(estimator string, loaded bool) error {
	v := 0.0
	if loaded {
		v = 1
	}
	s.loaded.WithLabelValues(estimator).Set(v)
	return nil
}
