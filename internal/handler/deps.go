package handler

import (
	"context"
	"time"

	"pulsegram/internal/app/feed"
	"pulsegram/internal/app/presence"
	"pulsegram/internal/app/storage"
	"pulsegram/internal/configs"
)

// avatarURLTTL is how long presigned avatar download URLs stay valid.
const avatarURLTTL = 15 * time.Minute

// AppDeps bundles the collaborators every handler closes over.
type AppDeps struct {
	Hub    *presence.Hub
	Config *configs.AppConfig
	Store  *feed.Store

	// Avatars is nil when S3 storage is not configured; avatar routes then
	// answer with ErrStorageDisabled.
	Avatars storage.AvatarService
}

// AvatarURL resolves a stored avatar key to a presigned download URL.
// Returns "" for users without an avatar or when storage is unavailable.
func (d *AppDeps) AvatarURL(ctx context.Context, avatarKey string) string {
	if avatarKey == "" || d.Avatars == nil {
		return ""
	}

	url, err := d.Avatars.PresignDownload(ctx, avatarKey, avatarURLTTL)
	if err != nil {
		return ""
	}
	return url
}
