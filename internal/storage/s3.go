package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3MediaStorage serves clip media from S3 behind a CDN
type S3MediaStorage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	region  string
	baseURL string
}

// PresignResult is a direct-upload grant for new clip media
type PresignResult struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

const presignTTL = 15 * time.Minute

// NewS3MediaStorage creates media storage bound to a bucket and CDN base URL
func NewS3MediaStorage(region, bucket, baseURL string) (*S3MediaStorage, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	return &S3MediaStorage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		region:  region,
		baseURL: baseURL,
	}, nil
}

// ResolveURL maps an object key to its CDN URL
func (s *S3MediaStorage) ResolveURL(key string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.baseURL, "/"), key)
}

// PresignUpload issues a short-lived PUT URL under an organized key:
// clips/{year}/{month}/{creatorID}/{fileID}{ext}
func (s *S3MediaStorage) PresignUpload(ctx context.Context, creatorID, filename string) (*PresignResult, error) {
	extension := filepath.Ext(filename)
	if extension == "" {
		extension = ".mp4"
	}

	now := time.Now()
	key := fmt.Sprintf("clips/%d/%02d/%s/%s%s",
		now.Year(), now.Month(), creatorID, uuid.New().String(), extension)

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(getContentType(extension)),
		Metadata: map[string]string{
			"creator-id":        creatorID,
			"original-filename": filename,
			"upload-timestamp":  now.Format(time.RFC3339),
		},
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &PresignResult{
		Key:       key,
		UploadURL: req.URL,
		PublicURL: s.ResolveURL(key),
		ExpiresAt: now.Add(presignTTL),
	}, nil
}

// DeleteMedia removes a stored object
func (s *S3MediaStorage) DeleteMedia(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// CheckBucketAccess verifies the bucket is reachable at startup
func (s *S3MediaStorage) CheckBucketAccess(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", s.bucket, err)
	}
	return nil
}

// getContentType maps a video file extension to its MIME type
func getContentType(extension string) string {
	switch strings.ToLower(extension) {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
