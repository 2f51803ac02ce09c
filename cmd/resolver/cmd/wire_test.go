package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
	"github.com/user/banner-resolver/pkg/config"
)

const bannerPage = `<html><body>
<div class="main-banner-ggs"><a href="/event/1"><img src="/img/a.png" alt="A"></a></div>
</body></html>`

func staticConfig(t *testing.T) *config.Config {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(bannerPage))
	}))
	t.Cleanup(srv.Close)

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.StartURL = srv.URL + "/"
	cfg.Mode = string(entity.ModeStatic)
	cfg.OutputPath = filepath.Join(t.TempDir(), "out", "banners.csv")
	cfg.UploadName = "banners.csv"
	cfg.UploadBackend = config.BackendNone
	return cfg
}

func TestNewAppWithoutUploadBackend(t *testing.T) {
	cfg := staticConfig(t)
	require.NoError(t, cfg.Validate())

	a, err := newApp(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.runner)
	require.NotNil(t, a.metrics)

	report, err := a.runner.Run(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, report.Records, 1)
	assert.Equal(t, cfg.StartURL+"event/1", report.Records[0].Destination)
	assert.Equal(t, entity.SourceDOMAnchor, report.Records[0].Source)
	assert.Empty(t, report.RemoteID)
	assert.FileExists(t, cfg.OutputPath)
}

func TestUploadCredentialsAreCheckedAfterDatasetIsWritten(t *testing.T) {
	cfg := staticConfig(t)
	cfg.UploadBackend = config.BackendGDrive
	cfg.GDriveFolderID = "folder-1"
	cfg.GDriveCredentialsJSON = ""
	cfg.GDriveSAJSONPath = filepath.Join(t.TempDir(), "gdrive_sa.json")
	require.NoError(t, cfg.Validate())

	a, err := newApp(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	report, err := a.runner.Run(context.Background(), "run-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrUpload)
	assert.Equal(t, cfg.OutputPath, report.OutputPath)
	assert.NotEmpty(t, report.UploadError)

	data, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/img/a.png")
}
