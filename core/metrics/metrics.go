package metrics

import (
	"errors"
	"io"
	"time"
)

// Outcome classifies a prediction request for metrics labels.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeBadRequest  Outcome = "bad_request"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeError       Outcome = "error"
)

// PredictionEvent describes one handled /predict-delay request.
type PredictionEvent struct {
	RequestID    string        `json:"request_id"`
	Estimator    string        `json:"estimator"`
	Outcome      Outcome       `json:"outcome"`
	DelayMinutes float64       `json:"delay_minutes,omitempty"`
	Latency      time.Duration `json:"latency_ns"`
	Time         time.Time     `json:"time"`
}

// MetricsSink records prediction events for observability purposes.
type MetricsSink interface {
	RecordPrediction(ev PredictionEvent) error
}

// ModelStatusRecorder records whether the configured estimator is loaded.
type ModelStatusRecorder interface {
	RecordModelStatus(estimator string, loaded bool) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPrediction(PredictionEvent) error { return nil }

// Ensure NopSink implements ModelStatusRecorder.
func (NopSink) RecordModelStatus(string, bool) error { return nil }

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPrediction forwards the event to every sink and joins their errors.
func (m *MultiSink) RecordPrediction(ev PredictionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordPrediction(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordModelStatus forwards the status to sinks supporting it.
func (m *MultiSink) RecordModelStatus(estimator string, loaded bool) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(ModelStatusRecorder); ok {
			if err := rec.RecordModelStatus(estimator, loaded); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink holding resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
