package prediction

import (
	"context"
	"sync"

	"github.com/kilianp07/traveldelay/core/model"
)

// MockEstimator returns a fixed estimate or error and counts its calls.
type MockEstimator struct {
	Minutes float64
	Note    string
	Err     error

	mu    sync.Mutex
	calls int
}

// Name implements Estimator.
func (m *MockEstimator) Name() string { return "mock" }

// Estimate returns the configured values.
func (m *MockEstimator) Estimate(_ context.Context, _ model.Features) (Estimate, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return Estimate{}, m.Err
	}
	return Estimate{Minutes: m.Minutes, Note: m.Note}, nil
}

// Calls returns the number of Estimate invocations.
func (m *MockEstimator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
