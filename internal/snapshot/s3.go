package snapshot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3Destination. Endpoint is only needed for
// S3-compatible stores like MinIO; setting it also switches the client to
// path-style addressing.
type S3Options struct {
	Bucket   string
	Key      string
	Region   string
	Endpoint string
}

// S3Destination uploads each snapshot to a fixed object key, replacing the
// previous one.
type S3Destination struct {
	client *s3.Client
	opts   S3Options
}

// NewS3Destination resolves AWS credentials from the default chain and
// returns a destination for opts.Bucket/opts.Key.
func NewS3Destination(ctx context.Context, opts S3Options) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Destination{client: client, opts: opts}, nil
}

func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.opts.Bucket),
		Key:         aws.String(d.opts.Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", d.opts.Bucket, d.opts.Key, err)
	}
	return nil
}
