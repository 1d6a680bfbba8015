package prediction

import (
	"context"

	"github.com/kilianp07/traveldelay/core/model"
)

// Engine is built once at start-up and shared by every request. It holds
// either a ready estimator or the error that prevented building one.
type Engine struct {
	estimator Estimator
	name      string
	loadErr   error
}

// NewEngine returns an engine serving predictions from est.
func NewEngine(est Estimator) *Engine {
	return &Engine{estimator: est, name: est.Name()}
}

// NewUnavailableEngine returns an engine whose estimator named name failed to
// load. Every prediction fails with KindUnavailable.
func NewUnavailableEngine(name string, cause error) *Engine {
	return &Engine{name: name, loadErr: cause}
}

// Available reports whether predictions can be served.
func (e *Engine) Available() bool { return e.estimator != nil }

// Name returns the configured estimator type.
func (e *Engine) Name() string { return e.name }

// LoadError returns the start-up failure of an unavailable engine.
func (e *Engine) LoadError() error { return e.loadErr }

// PredictJSON runs a raw request body through availability, validation and
// estimation, in that order.
func (e *Engine) PredictJSON(ctx context.Context, body []byte) (model.Result, error) {
	if !e.Available() {
		return model.Result{}, unavailable(e.loadErr)
	}
	f, err := ParseRequest(body)
	if err != nil {
		return model.Result{}, err
	}
	return e.Predict(ctx, f)
}

// Predict estimates the delay for f, which must carry every required field.
func (e *Engine) Predict(ctx context.Context, f model.Features) (model.Result, error) {
	if !e.Available() {
		return model.Result{}, unavailable(e.loadErr)
	}
	if err := Validate(f); err != nil {
		return model.Result{}, err
	}
	est, err := e.estimator.Estimate(ctx, f)
	if err != nil {
		return model.Result{}, internal(err)
	}
	if !isFinite(est.Minutes) {
		return model.Result{}, internal(ErrNonFinite)
	}
	return model.Result{DelayMinutes: est.Minutes, Status: model.StatusSuccess, Note: est.Note}, nil
}
