package gdrive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/user/banner-resolver/internal/repository"
)

func TestNameInFolderQuery(t *testing.T) {
	assert.Equal(t,
		`name = 'jasoseol_banner.csv' and 'folder-1' in parents and trashed = false`,
		nameInFolderQuery("jasoseol_banner.csv", "folder-1"))
	assert.Equal(t,
		`name = 'it\'s.csv' and 'f' in parents and trashed = false`,
		nameInFolderQuery("it's.csv", "f"))
}

func TestMapDriveError(t *testing.T) {
	notFound := &googleapi.Error{Code: http.StatusNotFound}
	assert.ErrorIs(t, mapDriveError(notFound, "get", repository.ErrFolderNotFound), repository.ErrFolderNotFound)
	assert.ErrorIs(t, mapDriveError(&googleapi.Error{Code: http.StatusForbidden}, "get", repository.ErrFolderNotFound), repository.ErrPermissionDenied)
	assert.ErrorIs(t, mapDriveError(&googleapi.Error{Code: http.StatusUnauthorized}, "get", repository.ErrFolderNotFound), repository.ErrPermissionDenied)
	assert.ErrorIs(t, mapDriveError(fmt.Errorf("dial tcp: timeout"), "get", repository.ErrFolderNotFound), repository.ErrUpload)
}

func TestMapDriveErrorFileNotFoundIsUploadFailure(t *testing.T) {
	err := mapDriveError(&googleapi.Error{Code: http.StatusNotFound}, "updating jasoseol_banner.csv", repository.ErrUpload)
	assert.ErrorIs(t, err, repository.ErrUpload)
	assert.NotErrorIs(t, err, repository.ErrFolderNotFound)
}

func newTestUploader(t *testing.T, handler http.HandlerFunc) *Uploader {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := drive.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return NewUploaderWithService(svc, "", zap.NewNop())
}

func TestValidateFolder(t *testing.T) {
	u := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/files/folder-1":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "folder-1", "mimeType": folderMimeType})
		case "/files/doc-1":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "doc-1", "mimeType": "text/csv"})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"File not found"}}`))
		}
	})
	ctx := context.Background()

	assert.NoError(t, u.validateFolder(ctx, "folder-1"))
	assert.ErrorIs(t, u.validateFolder(ctx, "doc-1"), repository.ErrNotAFolder)
	assert.ErrorIs(t, u.validateFolder(ctx, "missing"), repository.ErrFolderNotFound)
	assert.ErrorIs(t, u.validateFolder(ctx, ""), repository.ErrFolderNotFound)
}

func TestFindExisting(t *testing.T) {
	var gotQuery string
	u := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"files":[{"id":"file-9","name":"jasoseol_banner.csv"}]}`))
	})

	id, err := u.findExisting(context.Background(), "jasoseol_banner.csv", "folder-1")
	require.NoError(t, err)
	assert.Equal(t, "file-9", id)
	assert.Equal(t, nameInFolderQuery("jasoseol_banner.csv", "folder-1"), gotQuery)
}
