package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/traveldelay/core/metrics"
)

func TestInfluxSink_RecordPrediction(t *testing.T) {
	var (
		mu   sync.Mutex
		body string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		body = string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer func() { _ = sink.Close() }()
	now := time.Now()
	ev := coremetrics.PredictionEvent{
		RequestID:    "req-1",
		Estimator:    "formula",
		Outcome:      coremetrics.OutcomeSuccess,
		DelayMinutes: 24.5,
		Latency:      1500 * time.Microsecond,
		Time:         now,
	}
	require.NoError(t, sink.RecordPrediction(ev))

	p := write.NewPointWithMeasurement("delay_prediction").
		AddTag("estimator", "formula").
		AddTag("outcome", "success").
		AddField("latency_ms", 1.5).
		AddField("request_id", "req-1").
		AddField("delay_minutes", 24.5).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, expected, strings.TrimSpace(body))
}

func TestInfluxSink_FailedRequestHasNoDelayField(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	require.NoError(t, sink.RecordPrediction(coremetrics.PredictionEvent{
		Estimator: "model",
		Outcome:   coremetrics.OutcomeUnavailable,
		Time:      time.Now(),
	}))
	assert.Contains(t, body, "outcome=unavailable")
	assert.NotContains(t, body, "delay_minutes")

	require.NoError(t, sink.RecordModelStatus("model", false))
	assert.Contains(t, body, "model_status,estimator=model loaded=false")
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(context.Background(), srv.URL+"/api/v2/write", "tok", "org", "bucket")
	_, ok := sink.(*InfluxSink)
	assert.False(t, ok, "expected NopSink on failing health check")
	assert.True(t, called, "health endpoint not called")
}
