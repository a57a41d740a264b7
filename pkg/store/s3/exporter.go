package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"github.com/de-tools/mpesa-etl/pkg/services/config"
	"github.com/rs/zerolog"
)

// PutObjectAPI is the slice of the S3 client the exporter needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// Object is one artifact of a run.
type Object struct {
	Name        string
	ContentType string
	Body        []byte
}

type Exporter struct {
	client PutObjectAPI
	bucket string
	prefix string
}

func NewExporter(client PutObjectAPI, bucket, prefix string) (*Exporter, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is required", domain.ErrInvalidConfig)
	}
	return &Exporter{client: client, bucket: bucket, prefix: prefix}, nil
}

// NewFromProfile builds an exporter using the shared AWS configuration chain.
func NewFromProfile(ctx context.Context, profile config.S3Profile) (*Exporter, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if profile.AWSProfile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile.AWSProfile))
	}
	if profile.Region != "" {
		opts = append(opts, awsconfig.WithDefaultRegion(profile.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if profile.EndpointURL != "" {
			o.BaseEndpoint = aws.String(profile.EndpointURL)
			o.UsePathStyle = true
		}
	})
	return NewExporter(client, profile.Bucket, profile.Prefix)
}

// Key is where an artifact of a run lands in the bucket.
func (e *Exporter) Key(runID, name string) string {
	return path.Join(e.prefix, runID, name)
}

// Upload writes every object under the run's key prefix and returns the URIs written.
func (e *Exporter) Upload(ctx context.Context, runID string, objects ...Object) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	uris := make([]string, 0, len(objects))
	for _, object := range objects {
		key := e.Key(runID, object.Name)
		_, err := e.client.PutObject(ctx, &awss3.PutObjectInput{
			Bucket:        aws.String(e.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(object.Body),
			ContentLength: aws.Int64(int64(len(object.Body))),
			ContentType:   aws.String(object.ContentType),
		})
		if err != nil {
			return uris, fmt.Errorf("failed to upload s3://%s/%s: %w", e.bucket, key, err)
		}

		uri := fmt.Sprintf("s3://%s/%s", e.bucket, key)
		logger.Debug().Str("uri", uri).Int("bytes", len(object.Body)).Msg("uploaded object")
		uris = append(uris, uri)
	}
	return uris, nil
}
