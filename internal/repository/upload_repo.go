package repository

import "context"

// Uploader pushes a finished dataset file to remote storage.
type Uploader interface {
	// UpsertFile updates the file named desiredName inside folderID if it
	// exists, otherwise creates it. It returns the remote file id.
	UpsertFile(ctx context.Context, localPath, desiredName, folderID string) (string, error)
	// Backend names the storage backend for logs and metrics.
	Backend() string
}
