package lister

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds configuration for the S3 object lister.
type S3Config struct {
	// Region is the AWS region.
	Region string
	// Endpoint is an optional custom endpoint (for MinIO, LocalStack, etc.).
	Endpoint string
	// UsePathStyle enables path-style addressing (required for MinIO).
	UsePathStyle bool
}

// S3Objects lists partition directories stored on S3.
type S3Objects struct {
	client *s3.Client
}

// NewS3Objects creates an S3 object lister from the ambient AWS
// configuration.
func NewS3Objects(ctx context.Context, cfg S3Config) (*S3Objects, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Objects{client: s3.NewFromConfig(awsCfg, s3Opts...)}, nil
}

// NewS3ObjectsWithClient creates an S3 object lister with a
// pre-configured client.
func NewS3ObjectsWithClient(client *s3.Client) *S3Objects {
	return &S3Objects{client: client}
}

// ListDir implements ObjectLister. The location must be an
// s3://bucket/prefix URL; listing paginates through every object under
// the prefix.
func (l *S3Objects) ListDir(ctx context.Context, location string) ([]Entry, error) {
	bucket, prefix, err := splitS3Location(location)
	if err != nil {
		return nil, err
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var entries []Entry
	paginator := s3.NewListObjectsV2Paginator(l.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			entries = append(entries, Entry{
				Path: "s3://" + bucket + "/" + key,
				Size: aws.ToInt64(obj.Size),
			})
		}
	}
	return entries, nil
}

func splitS3Location(location string) (bucket, prefix string, err error) {
	trimmed, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 location: %s", location)
	}
	bucket, prefix, _ = strings.Cut(trimmed, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in s3 location: %s", location)
	}
	return bucket, prefix, nil
}
