package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3/MinIO configuration
type S3Config struct {
	Endpoint        string // e.g., "http://localhost:9000" for MinIO
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
}

// S3Archive stores analytics snapshots in S3-compatible object storage,
// keeping long-term history outside the hot Postgres store.
type S3Archive struct {
	client *s3.Client
	bucket string
}

// NewS3Archive creates a new S3 snapshot archive
func NewS3Archive(cfg S3Config) (*S3Archive, error) {
	// Static credentials with a custom endpoint; path style is required
	// for MinIO.
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		UsePathStyle: true,
	})

	return &S3Archive{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// ArchiveSnapshot marshals a snapshot document and uploads it under
// snapshots/{accountID}/{timestamp}.json, returning the object key.
func (s *S3Archive) ArchiveSnapshot(ctx context.Context, accountID string, snapshot any) (string, error) {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot: %w", err)
	}

	key := fmt.Sprintf("snapshots/%s/%s.json", accountID, time.Now().UTC().Format("2006-01-02T150405"))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("uploading snapshot: %w", err)
	}

	return key, nil
}

// Delete removes an archived snapshot
func (s *S3Archive) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}
