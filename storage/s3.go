package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	defaultExpirySeconds = 900
	maxExpirySeconds     = 3600
)

var allowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// IsAllowedImageContentType reports whether uploads of this content type are
// accepted for product images.
func IsAllowedImageContentType(contentType string) bool {
	return allowedImageContentTypes[contentType]
}

// AllowedImageContentTypes returns the accepted content types for error
// messages.
func AllowedImageContentTypes() []string {
	return []string{"image/gif", "image/jpeg", "image/jpg", "image/png", "image/webp"}
}

// PresignedUpload is a one-shot PUT grant for a product image.
type PresignedUpload struct {
	URL       string `json:"upload_url"`
	Method    string `json:"method"`
	Key       string `json:"key"`
	ExpiresIn int64  `json:"expires_in"`
}

// ImageStore issues presigned S3 PUT URLs so clients upload images directly
// without the API proxying bytes.
type ImageStore struct {
	presigner *s3.PresignClient
	bucket    string
}

func NewImageStore(ctx context.Context, bucket string) (*ImageStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &ImageStore{
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
	}, nil
}

// PresignProductImage grants a PUT for product/{id}/{filename}. Expiry is
// clamped to [1, 3600] seconds; zero or negative falls back to 15 minutes.
func (s *ImageStore) PresignProductImage(ctx context.Context, productID uuid.UUID, filename, contentType string, expirySeconds int64) (*PresignedUpload, error) {
	if expirySeconds <= 0 {
		expirySeconds = defaultExpirySeconds
	}
	if expirySeconds > maxExpirySeconds {
		expirySeconds = maxExpirySeconds
	}

	key := fmt.Sprintf("product/%s/%s", productID, filename)
	presigned, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(o *s3.PresignOptions) {
		o.Expires = time.Duration(expirySeconds) * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("presign put object: %w", err)
	}

	return &PresignedUpload{
		URL:       presigned.URL,
		Method:    "PUT",
		Key:       key,
		ExpiresIn: expirySeconds,
	}, nil
}
