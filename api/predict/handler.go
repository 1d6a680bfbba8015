// Package predict serves POST /predict-delay.
package predict

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/kilianp07/traveldelay/api/middleware"
	"github.com/kilianp07/traveldelay/core/logger"
	"github.com/kilianp07/traveldelay/core/metrics"
	"github.com/kilianp07/traveldelay/core/model"
	"github.com/kilianp07/traveldelay/core/monitoring"
	"github.com/kilianp07/traveldelay/core/prediction"
	infralogger "github.com/kilianp07/traveldelay/infra/logger"
)

// DefaultMaxBodyBytes bounds request bodies when Options leaves it unset.
const DefaultMaxBodyBytes = 1 << 20

// MsgBodyTooLarge is returned when the body exceeds the configured limit.
const MsgBodyTooLarge = "Request body too large"

// Options are the collaborators of the handler. Nil values are replaced by
// no-op implementations.
type Options struct {
	MaxBodyBytes int64
	Sink         metrics.MetricsSink
	Monitor      monitoring.Monitor
	Logger       logger.Logger
}

// NewHandler returns the handler for POST /predict-delay.
func NewHandler(engine *prediction.Engine, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Sink == nil {
		opts.Sink = metrics.NopSink{}
	}
	if opts.Monitor == nil {
		opts.Monitor = monitoring.NopMonitor{}
	}
	if opts.Logger == nil {
		opts.Logger = infralogger.NopLogger{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := middleware.RequestIDFrom(r.Context())

		body, readErr := io.ReadAll(http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes))
		var (
			res model.Result
			err error
		)
		var tooLarge *http.MaxBytesError
		switch {
		case readErr != nil && engine.Available() && errors.As(readErr, &tooLarge):
			err = &prediction.Error{Kind: prediction.KindBadRequest, Msg: MsgBodyTooLarge, Err: readErr}
		case readErr != nil && engine.Available():
			err = &prediction.Error{Kind: prediction.KindBadRequest, Msg: "Invalid JSON body: " + readErr.Error(), Err: readErr}
		default:
			// an unavailable engine answers before looking at the body
			res, err = engine.PredictJSON(r.Context(), body)
		}

		ev := metrics.PredictionEvent{
			RequestID: reqID,
			Estimator: engine.Name(),
			Time:      start,
		}
		if err != nil {
			if prediction.KindOf(err) == prediction.KindInternal {
				opts.Logger.Errorf("request %s: %v", reqID, err)
				opts.Monitor.CaptureException(err, map[string]string{
					"request_id": reqID,
					"estimator":  engine.Name(),
				})
			} else {
				opts.Logger.Debugf("request %s rejected: %v", reqID, err)
			}
		} else {
			ev.DelayMinutes = res.DelayMinutes
		}
		var writeErr error
		ev.Outcome, writeErr = respond(w, res, err)
		if writeErr != nil {
			ev.DelayMinutes = 0
			opts.Logger.Errorf("request %s: encode response: %v", reqID, writeErr)
			opts.Monitor.CaptureException(writeErr, map[string]string{
				"request_id": reqID,
				"estimator":  engine.Name(),
			})
		}
		ev.Latency = time.Since(start)
		if err := opts.Sink.RecordPrediction(ev); err != nil {
			opts.Logger.Warnf("record prediction: %v", err)
		}
	})
}

// StatusCode maps a prediction error to its HTTP status.
func StatusCode(err error) int {
	if prediction.KindOf(err) == prediction.KindBadRequest {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// WriteError writes err as {"error": ...} with the matching status.
func WriteError(w http.ResponseWriter, err error) error {
	return middleware.WriteJSON(w, StatusCode(err), model.ErrorResponse{
		Error:         err.Error(),
		MissingFields: prediction.MissingFields(err),
	})
}

// respond writes the result or the error of a prediction and returns the
// outcome of what was actually sent.
func respond(w http.ResponseWriter, res model.Result, err error) (metrics.Outcome, error) {
	var writeErr error
	if err != nil {
		writeErr = WriteError(w, err)
	} else {
		writeErr = middleware.WriteJSON(w, http.StatusOK, res)
	}
	if writeErr != nil {
		return metrics.OutcomeError, writeErr
	}
	return outcome(err), nil
}

func outcome(err error) metrics.Outcome {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	switch prediction.KindOf(err) {
	case prediction.KindBadRequest:
		return metrics.OutcomeBadRequest
	case prediction.KindUnavailable:
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}
