package prediction

import (
	"context"
	"fmt"

	"github.com/kilianp07/traveldelay/core/model"
)

// ModelEstimator applies a fitted preprocessor and regressor. Both are read
// only after construction.
type ModelEstimator struct {
	pre *Preprocessor
	reg *Regressor
}

// NewModelEstimator checks that the artifacts agree on the feature count.
func NewModelEstimator(pre *Preprocessor, reg *Regressor) (*ModelEstimator, error) {
	if pre == nil || reg == nil {
		return nil, fmt.Errorf("model estimator: preprocessor and model are required")
	}
	if len(pre.Features) != len(reg.Coefficients) {
		return nil, fmt.Errorf("model estimator: preprocessor yields %d features, model expects %d",
			len(pre.Features), len(reg.Coefficients))
	}
	return &ModelEstimator{pre: pre, reg: reg}, nil
}

// Name implements Estimator.
func (e *ModelEstimator) Name() string { return "model" }

// Estimate implements Estimator.
func (e *ModelEstimator) Estimate(_ context.Context, f model.Features) (Estimate, error) {
	x, err := e.pre.Transform(f)
	if err != nil {
		return Estimate{}, fmt.Errorf("transform: %w", err)
	}
	y, err := e.reg.Predict(x)
	if err != nil {
		return Estimate{}, err
	}
	minutes, err := finalize(y.AtVec(0))
	if err != nil {
		return Estimate{}, fmt.Errorf("model: %w", err)
	}
	return Estimate{Minutes: minutes}, nil
}
