package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://jasoseol.com/", cfg.StartURL)
	assert.Equal(t, "interactive", cfg.Mode)
	assert.Equal(t, "jasoseol_banner.csv", cfg.UploadName)
	assert.Equal(t, 2500*time.Millisecond, cfg.ChangeTimeout)
	assert.Equal(t, 5, cfg.GuardFactor)
	assert.Equal(t, []string{"swiper-slide-active", "slick-active", "is-active", "active"}, cfg.ActiveClasses)
	assert.True(t, cfg.Headless)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("START_URL", "https://example.com/")
	t.Setenv("MODE", "static")
	t.Setenv("OUTPUT_PATH", "out/banners.csv")
	t.Setenv("CHANGE_TIMEOUT", "3s")
	t.Setenv("GUARD_FACTOR", "4")
	t.Setenv("ACTIVE_CLASSES", "on,current")
	t.Setenv("HEADLESS", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/", cfg.StartURL)
	assert.Equal(t, "static", cfg.Mode)
	assert.Equal(t, "banners.csv", cfg.UploadName)
	assert.Equal(t, 3*time.Second, cfg.ChangeTimeout)
	assert.Equal(t, 4, cfg.GuardFactor)
	assert.Equal(t, []string{"on", "current"}, cfg.ActiveClasses)
	assert.False(t, cfg.Headless)
}

func TestLoadFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("SLIDE_SELECTOR: \".carousel li\"\nALIGN_SLACK: 7\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ".carousel li", cfg.SlideSelector)
	assert.Equal(t, 7, cfg.AlignSlack)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.StartURL = "/relative"
	cfg.Mode = "turbo"
	cfg.UploadBackend = BackendGDrive
	cfg.GDriveCredentialsJSON = ""
	cfg.GDriveSAJSONPath = ""

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "START_URL")
	assert.Contains(t, err.Error(), "MODE")
	assert.Contains(t, err.Error(), "GDRIVE_FOLDER_ID")
	assert.Contains(t, err.Error(), "GDRIVE_CREDENTIALS_JSON")
}

func TestValidateBackends(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.UploadBackend = BackendRedis
	assert.ErrorContains(t, cfg.Validate(), "UPLOAD_FOLDER_ID")
	cfg.UploadFolderID = "banners"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "banners", cfg.FolderID())

	cfg.UploadBackend = BackendPostgres
	assert.ErrorContains(t, cfg.Validate(), "POSTGRES_URL")

	cfg.UploadBackend = "ftp"
	assert.ErrorContains(t, cfg.Validate(), "unknown UPLOAD_BACKEND")

	cfg.UploadBackend = BackendGDrive
	cfg.GDriveFolderID = "drive-folder"
	assert.Equal(t, "drive-folder", cfg.FolderID())
}
