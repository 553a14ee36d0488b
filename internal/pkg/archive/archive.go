// Package archive keeps raw catalog uploads in S3.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Archive struct {
	bucket string
	client putObjectAPI
}

// NewS3Archive builds an archive on the default AWS credential chain.
func NewS3Archive(ctx context.Context, bucket, region string) (*S3Archive, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("config.LoadDefaultConfig: %w", err)
	}

	return &S3Archive{bucket: bucket, client: s3.NewFromConfig(cfg)}, nil
}

func (a *S3Archive) Put(ctx context.Context, key string, body []byte) error {
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3.PutObject %s/%s: %w", a.bucket, key, err)
	}

	return nil
}
