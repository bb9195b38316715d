package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rohanthewiz/serr"
)

// S3 stores objects in an S3 bucket. A custom endpoint switches the client
// to path style addressing so MinIO and similar services work.
type S3 struct {
	client    *s3.S3
	bucket    string
	region    string
	endpoint  string
	publicURL string
}

func NewS3(cfg Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, serr.New("s3 storage requires a bucket")
	}

	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, serr.Wrap(err, "failed to create AWS session")
	}

	return &S3{
		client:    s3.New(sess),
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

func (s *S3) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if path == "" {
		return "", serr.New("empty object path")
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return "", serr.Wrap(err, "failed to upload to s3", "bucket", s.bucket, "key", path)
	}
	return s.URL(path)
}

func (s *S3) URL(path string) (string, error) {
	if path == "" {
		return "", serr.New("empty object path")
	}
	if s.publicURL != "" {
		return s.publicURL + "/" + path, nil
	}
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, path), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, path), nil
}
