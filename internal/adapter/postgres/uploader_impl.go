package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/repository"
)

const insufficientPrivilege = "42501"

const schema = `
CREATE TABLE IF NOT EXISTS dataset_folders (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	is_folder  BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS dataset_files (
	id         BIGSERIAL PRIMARY KEY,
	folder_id  TEXT NOT NULL REFERENCES dataset_folders (id),
	name       TEXT NOT NULL,
	mime_type  TEXT NOT NULL,
	content    BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (folder_id, name)
);`

// DB is the subset of pgxpool.Pool the uploader uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UploaderImpl stores datasets as rows of dataset_files, one per folder and name.
type UploaderImpl struct {
	db     DB
	logger *zap.Logger
}

// NewUploader creates a Postgres-backed Uploader.
func NewUploader(db DB, logger *zap.Logger) *UploaderImpl {
	return &UploaderImpl{db: db, logger: logger.Named("postgres_uploader")}
}

// EnsureSchema creates the dataset tables if they do not exist.
func (u *UploaderImpl) EnsureSchema(ctx context.Context) error {
	if _, err := u.db.Exec(ctx, schema); err != nil {
		return mapPgError(err, "creating schema")
	}
	return nil
}

func (u *UploaderImpl) Backend() string {
	return "postgres"
}

// UpsertFile inserts the file or replaces the content of the row sharing its
// folder and name.
func (u *UploaderImpl) UpsertFile(ctx context.Context, localPath, desiredName, folderID string) (string, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", repository.ErrUpload, localPath, err)
	}

	var isFolder bool
	err = u.db.QueryRow(ctx, `SELECT is_folder FROM dataset_folders WHERE id = $1`, folderID).Scan(&isFolder)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", repository.ErrFolderNotFound, folderID)
	}
	if err != nil {
		return "", mapPgError(err, "looking up folder "+folderID)
	}
	if !isFolder {
		return "", fmt.Errorf("%w: %s", repository.ErrNotAFolder, folderID)
	}

	var id int64
	err = u.db.QueryRow(ctx,
		`INSERT INTO dataset_files (folder_id, name, mime_type, content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (folder_id, name) DO UPDATE SET
		   content = EXCLUDED.content, mime_type = EXCLUDED.mime_type, updated_at = NOW()
		 RETURNING id`,
		folderID, desiredName, "text/csv", content,
	).Scan(&id)
	if err != nil {
		return "", mapPgError(err, "upserting "+desiredName)
	}

	u.logger.Info("dataset stored", zap.Int64("id", id), zap.String("folder_id", folderID), zap.String("name", desiredName))
	return strconv.FormatInt(id, 10), nil
}

func mapPgError(err error, step string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == insufficientPrivilege {
		return fmt.Errorf("%w: %s: %v", repository.ErrPermissionDenied, step, err)
	}
	return fmt.Errorf("%w: %s: %v", repository.ErrUpload, step, err)
}
