package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/traveldelay/core/factory"
	"github.com/kilianp07/traveldelay/core/model"
	"github.com/kilianp07/traveldelay/core/prediction"
)

const (
	scalerJSON = `{"type":"standard_scaler","features":["duration_min","distance_km","mean_condition"],"mean":[100,50,1],"scale":[20,10,1]}`
	linearJSON = `{"type":"linear","coefficients":[2,1,3],"intercept":10}`
)

type fakeS3 struct {
	objects map[string]string
	gets    []string
	region  string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	k := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.gets = append(f.gets, k)
	body, ok := f.objects[k]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func withFakeS3(t *testing.T, f *fakeS3) {
	t.Helper()
	prev := newS3Client
	newS3Client = func(_ context.Context, region string) (s3Getter, error) {
		f.region = region
		return f, nil
	}
	t.Cleanup(func() { newS3Client = prev })
}

func writeArtifacts(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	pre := filepath.Join(dir, "preprocess.json")
	mdl := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(pre, []byte(scalerJSON), 0o600))
	require.NoError(t, os.WriteFile(mdl, []byte(linearJSON), 0o600))
	return pre, mdl
}

func features() model.Features {
	f := model.Features{}
	for _, name := range model.RequiredFields {
		f[name] = 0
	}
	f[model.DurationMin] = 120
	f[model.DistanceKM] = 100
	f[model.MeanCondition] = 2
	return f
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://models/traffic/v1/model.json")
	require.NoError(t, err)
	assert.Equal(t, "models", bucket)
	assert.Equal(t, "traffic/v1/model.json", key)

	for _, bad := range []string{"s3://bucket", "s3:///key", "http://bucket/key", "s3://bucket/"} {
		_, _, err := ParseS3URI(bad)
		assert.ErrorIs(t, err, ErrInvalidS3URI, bad)
	}
	assert.True(t, IsS3("s3://a/b"))
	assert.False(t, IsS3("/tmp/model.json"))
}

func TestLoadModelEstimator_Files(t *testing.T) {
	pre, mdl := writeArtifacts(t)
	est, err := LoadModelEstimator(context.Background(), ModelConfig{PreprocessorPath: pre, ModelPath: mdl})
	require.NoError(t, err)

	// 2*1 + 1*5 + 3*1 + 10
	got, err := est.Estimate(context.Background(), features())
	require.NoError(t, err)
	assert.InDelta(t, 20.0, got.Minutes, 1e-9)
}

func TestLoadModelEstimator_S3(t *testing.T) {
	f := &fakeS3{objects: map[string]string{
		"models/pre.json":   scalerJSON,
		"models/model.json": linearJSON,
	}}
	withFakeS3(t, f)

	_, err := LoadModelEstimator(context.Background(), ModelConfig{
		PreprocessorPath: "s3://models/pre.json",
		ModelPath:        "s3://models/model.json",
		S3Region:         "eu-west-3",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"models/pre.json", "models/model.json"}, f.gets)
	assert.Equal(t, "eu-west-3", f.region)

	_, err = LoadModelEstimator(context.Background(), ModelConfig{
		PreprocessorPath: "s3://models/pre.json",
		ModelPath:        "s3://models/missing.json",
	})
	assert.ErrorContains(t, err, "NoSuchKey")
}

func TestLoadModelEstimator_Errors(t *testing.T) {
	pre, mdl := writeArtifacts(t)
	_, err := LoadModelEstimator(context.Background(), ModelConfig{PreprocessorPath: pre, ModelPath: filepath.Join(t.TempDir(), "nope.json")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"type":"linear","coefficients":[1]}`), 0o600))
	_, err = LoadModelEstimator(context.Background(), ModelConfig{PreprocessorPath: pre, ModelPath: bad})
	assert.ErrorContains(t, err, "model expects 1")

	_, err = LoadModelEstimator(context.Background(), ModelConfig{PreprocessorPath: mdl, ModelPath: mdl})
	assert.ErrorContains(t, err, mdl)
}

func TestModelEstimatorRegistered(t *testing.T) {
	pre, mdl := writeArtifacts(t)
	e, err := prediction.BuildEngine(context.Background(), factory.ModuleConfig{
		Type: "model",
		Conf: map[string]any{"preprocessor_path": pre, "model_path": mdl},
	})
	require.NoError(t, err)
	assert.True(t, e.Available())
	assert.Equal(t, "model", e.Name())

	// missing artifacts leave the service up but unavailable
	e, err = prediction.BuildEngine(context.Background(), factory.ModuleConfig{
		Type: "model",
		Conf: map[string]any{"preprocessor_path": filepath.Join(t.TempDir(), "preprocess.json")},
	})
	require.NoError(t, err)
	assert.False(t, e.Available())
	assert.ErrorIs(t, e.LoadError(), os.ErrNotExist)
}
