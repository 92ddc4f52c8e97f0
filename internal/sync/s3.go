package sync

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3 export destination.
type S3Options struct {
	Bucket string
	Key    string
	Region string

	// Endpoint, when non-empty, overrides the AWS endpoint and switches to
	// path-style addressing (MinIO and similar).
	Endpoint string
}

// S3Destination uploads workspace exports to an S3-compatible bucket. Each
// upload replaces the previous snapshot under the same key.
type S3Destination struct {
	client *s3.Client
	opts   S3Options
}

// NewS3Destination creates an S3 destination using the ambient AWS
// credential chain.
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

// Name identifies the destination in sync logs.
func (d *S3Destination) Name() string {
	return "s3://" + d.opts.Bucket + "/" + d.opts.Key
}

// Write uploads the JSONL snapshot as a single object.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.opts.Bucket),
		Key:         aws.String(d.opts.Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", d.Name(), err)
	}
	return nil
}
