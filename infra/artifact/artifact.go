// Package artifact loads fitted model artifacts from the local filesystem or
// from S3 and registers the "model" estimator.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrInvalidS3URI is returned for s3:// locations without a bucket or key.
var ErrInvalidS3URI = errors.New("invalid s3 uri")

type s3Getter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var newS3Client = func(ctx context.Context, region string) (s3Getter, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// ParseS3URI splits s3://bucket/key into its bucket and key.
func ParseS3URI(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidS3URI, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: scheme %q", ErrInvalidS3URI, u.Scheme)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidS3URI, location)
	}
	return u.Host, key, nil
}

// IsS3 reports whether location names an S3 object.
func IsS3(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// Open returns a reader for the artifact at location, a filesystem path or an
// s3:// URI. The caller closes the reader.
func Open(ctx context.Context, location, region string) (io.ReadCloser, error) {
	if !IsS3(location) {
		return os.Open(location)
	}
	bucket, key, err := ParseS3URI(location)
	if err != nil {
		return nil, err
	}
	client, err := newS3Client(ctx, region)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to download %s: %w", location, err)
	}
	return out.Body, nil
}
