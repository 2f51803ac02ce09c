package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/banner-resolver/internal/repository"
)

// UploaderFactory connects an upload backend.
type UploaderFactory func(ctx context.Context) (repository.Uploader, error)

type lazyUploader struct {
	backend string
	build   UploaderFactory

	mu       sync.Mutex
	uploader repository.Uploader
}

// NewLazyUploader returns an Uploader that connects its backend on first use,
// so credential and connection problems surface as upload errors after the
// dataset is written. A failed connect is retried on the next upload.
func NewLazyUploader(backend string, build UploaderFactory) repository.Uploader {
	return &lazyUploader{backend: backend, build: build}
}

func (u *lazyUploader) Backend() string {
	return u.backend
}

func (u *lazyUploader) UpsertFile(ctx context.Context, localPath, desiredName, folderID string) (string, error) {
	up, err := u.connect(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: connecting %s backend: %w", repository.ErrUpload, u.backend, err)
	}
	return up.UpsertFile(ctx, localPath, desiredName, folderID)
}

func (u *lazyUploader) connect(ctx context.Context) (repository.Uploader, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.uploader != nil {
		return u.uploader, nil
	}
	up, err := u.build(ctx)
	if err != nil {
		return nil, err
	}
	u.uploader = up
	return up, nil
}
