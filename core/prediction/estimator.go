package prediction

import (
	"context"
	"errors"
	"math"

	"github.com/kilianp07/traveldelay/core/model"
)

// Estimate is the raw output of an Estimator.
type Estimate struct {
	Minutes float64
	// Note is an optional remark returned to the client.
	Note string
}

// Estimator computes a delay for a request whose required fields are present.
// Implementations must be safe for concurrent use.
type Estimator interface {
	Name() string
	Estimate(ctx context.Context, f model.Features) (Estimate, error)
}

// ErrNonFinite is returned when an estimate is NaN or infinite.
var ErrNonFinite = errors.New("non-finite delay")

// roundLimit is the magnitude above which float64 carries no fractional digits.
const roundLimit = 1 << 52

// finalize clamps negative delays to zero and rounds to two decimals.
func finalize(minutes float64) (float64, error) {
	if !isFinite(minutes) {
		return 0, ErrNonFinite
	}
	minutes = math.Max(0, minutes)
	if minutes < roundLimit {
		minutes = math.Round(minutes*100) / 100
	}
	return minutes, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
