package prediction

import (
	"context"
	"errors"

	"github.com/kilianp07/traveldelay/core/factory"
)

// DefaultEstimator is used when the configuration names none.
const DefaultEstimator = "formula"

var estimatorRegistry = factory.NewRegistry[Estimator]()

func init() {
	_ = RegisterEstimator("formula", func(_ context.Context, conf map[string]any) (Estimator, error) {
		var c struct {
			Seed *uint64 `json:"seed"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewFormulaEstimator(NewUniformNoise(c.Seed)), nil
	})
}

// RegisterEstimator adds an estimator factory identified by name.
func RegisterEstimator(name string, f factory.Factory[Estimator]) error {
	return estimatorRegistry.Register(name, f)
}

// EstimatorTypes lists the registered estimator names.
func EstimatorTypes() []string { return estimatorRegistry.Types() }

// BuildEngine creates the estimator described by cfg. An unknown type is a
// configuration error; any other failure yields an unavailable engine so the
// service can still start and report the problem per request.
func BuildEngine(ctx context.Context, cfg factory.ModuleConfig) (*Engine, error) {
	if cfg.Type == "" {
		cfg.Type = DefaultEstimator
	}
	est, err := estimatorRegistry.Create(ctx, cfg)
	if errors.Is(err, factory.ErrUnknownType) {
		return nil, err
	}
	if err != nil {
		return NewUnavailableEngine(cfg.Type, err), nil
	}
	return NewEngine(est), nil
}
