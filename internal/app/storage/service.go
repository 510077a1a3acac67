package storage

import (
	"context"
	"io"
	"time"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// AvatarService defines the public interface for avatar file storage.
type AvatarService interface {
	// Upload stores an avatar body under the given key.
	Upload(ctx context.Context, key string, mimeType string, body io.Reader) error

	// PresignDownload generates a pre-signed URL for fetching an avatar.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the avatar stored under the given key.
	Delete(ctx context.Context, key string) error
}

// NewAvatarService is the factory function for AvatarService.
// It initializes and returns a concrete implementation based on the provided configuration.
func NewAvatarService(cfg ServiceConfig) (AvatarService, error) {
	// Currently, only S3 compatible implementations are supported.
	return newS3Client(cfg)
}
