package prediction

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/traveldelay/core/model"
)

// Preprocessor types understood by DecodePreprocessor.
const (
	PreprocessorStandardScaler = "standard_scaler"
	PreprocessorPassthrough    = "passthrough"
)

// RegressorLinear is the only regression model type supported.
const RegressorLinear = "linear"

// Preprocessor is a fitted transform turning a request into the numeric row a
// regressor expects. Features selects and orders the request fields.
type Preprocessor struct {
	Type     string    `json:"type"`
	Features []string  `json:"features"`
	Mean     []float64 `json:"mean,omitempty"`
	Scale    []float64 `json:"scale,omitempty"`
}

// DecodePreprocessor reads and checks a JSON preprocessor artifact.
func DecodePreprocessor(r io.Reader) (*Preprocessor, error) {
	var p Preprocessor
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode preprocessor: %w", err)
	}
	if err := p.init(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Preprocessor) init() error {
	if p.Type == "" {
		p.Type = PreprocessorStandardScaler
	}
	if len(p.Features) == 0 {
		return fmt.Errorf("preprocessor: no features")
	}
	switch p.Type {
	case PreprocessorPassthrough:
		return nil
	case PreprocessorStandardScaler:
	default:
		return fmt.Errorf("preprocessor: unsupported type %q", p.Type)
	}
	n := len(p.Features)
	if len(p.Mean) != n || len(p.Scale) != n {
		return fmt.Errorf("preprocessor: %d features but %d means and %d scales", n, len(p.Mean), len(p.Scale))
	}
	for i, s := range p.Scale {
		// a constant column was fitted with a zero variance
		if s == 0 {
			p.Scale[i] = 1
		}
		if math.IsNaN(s) || math.IsInf(s, 0) || math.IsNaN(p.Mean[i]) || math.IsInf(p.Mean[i], 0) {
			return fmt.Errorf("preprocessor: non-finite parameter for %s", p.Features[i])
		}
	}
	return nil
}

// Transform returns the 1×n matrix fed to the regressor.
func (p *Preprocessor) Transform(f model.Features) (*mat.Dense, error) {
	row, err := f.Row(p.Features)
	if err != nil {
		return nil, err
	}
	x := mat.NewDense(1, len(row), row)
	if p.Type == PreprocessorStandardScaler {
		x.Apply(func(_, j int, v float64) float64 {
			return (v - p.Mean[j]) / p.Scale[j]
		}, x)
	}
	return x, nil
}

// Regressor is a fitted linear regression.
type Regressor struct {
	Type         string    `json:"type"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// DecodeRegressor reads and checks a JSON regression artifact.
func DecodeRegressor(r io.Reader) (*Regressor, error) {
	var m Regressor
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if m.Type == "" {
		m.Type = RegressorLinear
	}
	if m.Type != RegressorLinear {
		return nil, fmt.Errorf("model: unsupported type %q", m.Type)
	}
	if len(m.Coefficients) == 0 {
		return nil, fmt.Errorf("model: no coefficients")
	}
	return &m, nil
}

// Predict returns one prediction per row of x.
func (m *Regressor) Predict(x mat.Matrix) (*mat.VecDense, error) {
	rows, cols := x.Dims()
	if cols != len(m.Coefficients) {
		return nil, fmt.Errorf("model expects %d features, got %d", len(m.Coefficients), cols)
	}
	coef := mat.NewVecDense(cols, m.Coefficients)
	y := mat.NewVecDense(rows, nil)
	y.MulVec(x, coef)
	for i := 0; i < rows; i++ {
		y.SetVec(i, y.AtVec(i)+m.Intercept)
	}
	return y, nil
}
