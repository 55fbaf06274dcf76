package storage

import "context"

// MediaStorage resolves stored clip media to playable URLs and issues
// direct-upload grants. Interface so handlers can be tested with a fake.
type MediaStorage interface {
	// ResolveURL maps a stored object key to a playable CDN URL.
	ResolveURL(key string) string

	// PresignUpload issues a short-lived direct PUT URL for new clip media.
	PresignUpload(ctx context.Context, creatorID, filename string) (*PresignResult, error)

	DeleteMedia(ctx context.Context, key string) error
}

// Ensure S3MediaStorage implements MediaStorage
var _ MediaStorage = (*S3MediaStorage)(nil)
