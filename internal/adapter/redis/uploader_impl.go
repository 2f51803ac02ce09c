package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/repository"
	"github.com/user/banner-resolver/pkg/utils"
)

const (
	folderKeyPrefix = "dataset:folder:"
	fileKeyPrefix   = "dataset:file:"
	// folderMarker is the value of a folder key.
	folderMarker = "folder"
)

// Client is the subset of *redis.Client the uploader uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// UploaderImpl stores datasets in Redis. A folder is a marker key plus a hash
// of file name to file id; file content lives under its own key.
type UploaderImpl struct {
	client Client
	logger *zap.Logger
}

// NewUploader creates a Redis-backed Uploader.
func NewUploader(client Client, logger *zap.Logger) *UploaderImpl {
	return &UploaderImpl{client: client, logger: logger.Named("redis_uploader")}
}

func folderKey(folderID string) string {
	return folderKeyPrefix + folderID
}

func folderFilesKey(folderID string) string {
	return folderKeyPrefix + folderID + ":files"
}

func fileKey(id string) string {
	return fileKeyPrefix + id
}

func (u *UploaderImpl) Backend() string {
	return "redis"
}

// UpsertFile reuses the id already mapped to desiredName in the folder, or
// derives a new one from the folder and name.
func (u *UploaderImpl) UpsertFile(ctx context.Context, localPath, desiredName, folderID string) (string, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", repository.ErrUpload, localPath, err)
	}

	marker, err := u.client.Get(ctx, folderKey(folderID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", repository.ErrFolderNotFound, folderID)
	}
	if err != nil {
		return "", mapRedisError(err, "looking up folder "+folderID)
	}
	if marker != folderMarker {
		return "", fmt.Errorf("%w: %s", repository.ErrNotAFolder, folderID)
	}

	id, err := u.client.HGet(ctx, folderFilesKey(folderID), desiredName).Result()
	switch {
	case errors.Is(err, redis.Nil):
		id = utils.HashURL(folderID + "/" + desiredName)
	case err != nil:
		return "", mapRedisError(err, "looking up "+desiredName)
	}

	if err := u.client.Set(ctx, fileKey(id), content, 0).Err(); err != nil {
		return "", mapRedisError(err, "storing "+desiredName)
	}
	if err := u.client.HSet(ctx, folderFilesKey(folderID), desiredName, id).Err(); err != nil {
		return "", mapRedisError(err, "indexing "+desiredName)
	}

	u.logger.Info("dataset stored", zap.String("file_id", id), zap.String("folder_id", folderID), zap.String("name", desiredName))
	return id, nil
}

func mapRedisError(err error, step string) error {
	if strings.HasPrefix(err.Error(), "NOPERM") {
		return fmt.Errorf("%w: %s: %v", repository.ErrPermissionDenied, step, err)
	}
	return fmt.Errorf("%w: %s: %v", repository.ErrUpload, step, err)
}
