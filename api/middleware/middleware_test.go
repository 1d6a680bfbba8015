package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/traveldelay/infra/logger"
)

type captureMonitor struct {
	err  error
	tags map[string]string
}

func (c *captureMonitor) CaptureException(err error, tags map[string]string) {
	c.err, c.tags = err, tags
}
func (c *captureMonitor) Flush(time.Duration) {}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rr.Header().Get(RequestIDHeader))
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("tea"))
	}), RequestID, Logging(logger.NewWriterLogger(&buf, "http")))

	req := httptest.NewRequest(http.MethodPost, "/predict-delay", nil)
	req.Header.Set(RequestIDHeader, "r-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "request", rec["message"])
	assert.Equal(t, "POST", rec["method"])
	assert.Equal(t, "/predict-delay", rec["path"])
	assert.EqualValues(t, http.StatusTeapot, rec["status"])
	assert.EqualValues(t, 3, rec["bytes"])
	assert.Equal(t, "r-1", rec["request_id"])
}

func TestRecover(t *testing.T) {
	mon := &captureMonitor{}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("estimator exploded")
	}), RequestID, Recover(logger.NopLogger{}, mon))

	req := httptest.NewRequest(http.MethodPost, "/predict-delay", nil)
	req.Header.Set(RequestIDHeader, "r-2")
	rr := httptest.NewRecorder()
	require.NotPanics(t, func() { h.ServeHTTP(rr, req) })

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
	require.Error(t, mon.err)
	assert.Contains(t, mon.err.Error(), "estimator exploded")
	assert.Equal(t, "r-2", mon.tags["request_id"])
}

func TestRecover_AfterResponseStarted(t *testing.T) {
	mon := &captureMonitor{}
	h := Recover(logger.NopLogger{}, mon)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		panic("late failure")
	}))

	rr := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	})

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "partial", rr.Body.String())
	assert.Equal(t, "text/plain", rr.Header().Get("Content-Type"))
	require.Error(t, mon.err)
	assert.Contains(t, mon.err.Error(), "late failure")
}
