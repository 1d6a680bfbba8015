package prediction

import (
	"context"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/traveldelay/core/model"
)

// FormulaNote is attached to every formula estimate.
const FormulaNote = "Using simplified prediction model"

// Bounds of the random perturbation added by the formula estimator.
const (
	NoiseMin = -5.0
	NoiseMax = 15.0
)

// Sampler draws one random value per call.
type Sampler interface {
	Rand() float64
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func() float64

func (f SamplerFunc) Rand() float64 { return f() }

// NewUniformNoise returns a sampler over [NoiseMin, NoiseMax). A nil seed uses
// the runtime's shared generator; otherwise draws are reproducible.
func NewUniformNoise(seed *uint64) Sampler {
	u := distuv.Uniform{Min: NoiseMin, Max: NoiseMax}
	if seed == nil {
		return u
	}
	u.Src = rand.NewPCG(*seed, *seed)
	return &lockedSampler{s: u}
}

// lockedSampler serializes draws from a source that is not goroutine safe.
type lockedSampler struct {
	mu sync.Mutex
	s  Sampler
}

func (l *lockedSampler) Rand() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Rand()
}

// FormulaEstimator computes
//
//	duration_min*0.1 + mean_condition*2 + distance_km*0.05 + U(-5, 15)
//
// clamped at zero and rounded to two decimals. Fields absent from the request
// read as zero.
type FormulaEstimator struct {
	noise Sampler
}

// NewFormulaEstimator returns a formula estimator drawing its perturbation
// from noise. A nil noise uses NewUniformNoise(nil).
func NewFormulaEstimator(noise Sampler) *FormulaEstimator {
	if noise == nil {
		noise = NewUniformNoise(nil)
	}
	return &FormulaEstimator{noise: noise}
}

// Name implements Estimator.
func (e *FormulaEstimator) Name() string { return "formula" }

// Estimate implements Estimator.
func (e *FormulaEstimator) Estimate(_ context.Context, f model.Features) (Estimate, error) {
	duration, err := f.Float(model.DurationMin, 0)
	if err != nil {
		return Estimate{}, err
	}
	condition, err := f.Float(model.MeanCondition, 0)
	if err != nil {
		return Estimate{}, err
	}
	distance, err := f.Float(model.DistanceKM, 0)
	if err != nil {
		return Estimate{}, err
	}
	minutes, err := finalize(duration*0.1 + condition*2 + distance*0.05 + e.noise.Rand())
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{Minutes: minutes, Note: FormulaNote}, nil
}
