package artifact

import (
	"context"
	"fmt"
	"io"

	"github.com/kilianp07/traveldelay/core/factory"
	"github.com/kilianp07/traveldelay/core/prediction"
	"github.com/kilianp07/traveldelay/infra/logger"
)

// Default artifact locations, relative to the working directory.
const (
	DefaultPreprocessorPath = "preprocess.json"
	DefaultModelPath        = "model.json"
)

// ModelConfig locates the artifacts of the model estimator.
type ModelConfig struct {
	PreprocessorPath string `json:"preprocessor_path"`
	ModelPath        string `json:"model_path"`
	S3Region         string `json:"s3_region"`
}

// SetDefaults fills empty paths.
func (c *ModelConfig) SetDefaults() {
	if c.PreprocessorPath == "" {
		c.PreprocessorPath = DefaultPreprocessorPath
	}
	if c.ModelPath == "" {
		c.ModelPath = DefaultModelPath
	}
}

func init() {
	_ = prediction.RegisterEstimator("model", func(ctx context.Context, conf map[string]any) (prediction.Estimator, error) {
		var c ModelConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return LoadModelEstimator(ctx, c)
	})
}

// LoadModelEstimator reads both artifacts and builds the estimator.
func LoadModelEstimator(ctx context.Context, cfg ModelConfig) (*prediction.ModelEstimator, error) {
	cfg.SetDefaults()
	log := logger.New("artifact")

	var pre *prediction.Preprocessor
	err := load(ctx, cfg.PreprocessorPath, cfg.S3Region, func(r io.Reader) (err error) {
		pre, err = prediction.DecodePreprocessor(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	var reg *prediction.Regressor
	err = load(ctx, cfg.ModelPath, cfg.S3Region, func(r io.Reader) (err error) {
		reg, err = prediction.DecodeRegressor(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	est, err := prediction.NewModelEstimator(pre, reg)
	if err != nil {
		return nil, err
	}
	log.Infof("model loaded from %s and %s (%d features)", cfg.PreprocessorPath, cfg.ModelPath, len(pre.Features))
	return est, nil
}

func load(ctx context.Context, location, region string, decode func(io.Reader) error) error {
	rc, err := Open(ctx, location, region)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := decode(rc); err != nil {
		return fmt.Errorf("%s: %w", location, err)
	}
	return nil
}
