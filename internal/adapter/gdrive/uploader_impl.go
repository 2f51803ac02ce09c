package gdrive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/user/banner-resolver/internal/repository"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	csvMimeType    = "text/csv"
)

// Options selects credentials and an optional shared drive.
type Options struct {
	// CredentialsJSON is the raw service account key. It wins over
	// CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
	DriveID         string
}

// Uploader upserts datasets into a Google Drive folder, shared drives
// included.
type Uploader struct {
	svc     *drive.Service
	driveID string
	logger  *zap.Logger
}

// NewUploader authenticates with a service account key.
func NewUploader(ctx context.Context, opts Options, logger *zap.Logger) (repository.Uploader, error) {
	clientOpts := []option.ClientOption{option.WithScopes(drive.DriveScope)}
	switch {
	case opts.CredentialsJSON != "":
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(opts.CredentialsJSON)))
	case opts.CredentialsFile != "":
		if _, err := os.Stat(opts.CredentialsFile); err != nil {
			return nil, fmt.Errorf("service account file: %w", err)
		}
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	default:
		return nil, errors.New("no google drive credentials configured")
	}

	svc, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return NewUploaderWithService(svc, opts.DriveID, logger), nil
}

// NewUploaderWithService wraps an existing Drive service.
func NewUploaderWithService(svc *drive.Service, driveID string, logger *zap.Logger) *Uploader {
	return &Uploader{svc: svc, driveID: driveID, logger: logger.Named("gdrive")}
}

func (u *Uploader) Backend() string {
	return "gdrive"
}

// UpsertFile updates the file named desiredName in the folder, or creates it.
func (u *Uploader) UpsertFile(ctx context.Context, localPath, desiredName, folderID string) (string, error) {
	if err := u.validateFolder(ctx, folderID); err != nil {
		return "", err
	}

	existingID, err := u.findExisting(ctx, desiredName, folderID)
	if err != nil {
		return "", err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %v", repository.ErrUpload, localPath, err)
	}
	defer f.Close()
	media := googleapi.ContentType(csvMimeType)

	if existingID != "" {
		updated, err := u.svc.Files.Update(existingID, &drive.File{}).
			Media(f, media).
			SupportsAllDrives(true).
			Fields("id").
			Context(ctx).
			Do()
		if err != nil {
			return "", mapDriveError(err, "updating "+desiredName, repository.ErrUpload)
		}
		u.logger.Info("dataset updated", zap.String("file_id", updated.Id), zap.String("name", desiredName))
		return updated.Id, nil
	}

	created, err := u.svc.Files.Create(&drive.File{
		Name:     desiredName,
		Parents:  []string{folderID},
		MimeType: csvMimeType,
	}).
		Media(f, media).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", mapDriveError(err, "creating "+desiredName, repository.ErrUpload)
	}
	u.logger.Info("dataset created", zap.String("file_id", created.Id), zap.String("name", desiredName))
	return created.Id, nil
}

func (u *Uploader) validateFolder(ctx context.Context, folderID string) error {
	if folderID == "" {
		return fmt.Errorf("%w: empty folder id", repository.ErrFolderNotFound)
	}
	meta, err := u.svc.Files.Get(folderID).
		Fields("id, name, driveId, mimeType").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return mapDriveError(err, "looking up folder "+folderID, repository.ErrFolderNotFound)
	}
	if meta.MimeType != folderMimeType {
		return fmt.Errorf("%w: %s has mime type %s", repository.ErrNotAFolder, folderID, meta.MimeType)
	}
	return nil
}

func (u *Uploader) findExisting(ctx context.Context, name, folderID string) (string, error) {
	call := u.svc.Files.List().
		Q(nameInFolderQuery(name, folderID)).
		Fields("files(id, name)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true)
	if u.driveID != "" {
		call = call.DriveId(u.driveID).Corpora("drive")
	}
	list, err := call.Context(ctx).Do()
	if err != nil {
		return "", mapDriveError(err, "listing folder "+folderID, repository.ErrUpload)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func nameInFolderQuery(name, folderID string) string {
	return fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", escapeQuery(name), escapeQuery(folderID))
}

func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// mapDriveError classifies a Drive API error. notFound is what a 404 means
// for the call that failed.
func mapDriveError(err error, step string, notFound error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s: %v", notFound, step, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s: %v", repository.ErrPermissionDenied, step, err)
		}
	}
	return fmt.Errorf("%w: %s: %v", repository.ErrUpload, step, err)
}
