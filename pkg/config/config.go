package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Upload backends.
const (
	BackendNone     = "none"
	BackendGDrive   = "gdrive"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config stores all configuration for the application.
type Config struct {
	StartURL   string `mapstructure:"START_URL"`
	Mode       string `mapstructure:"MODE"`
	OutputPath string `mapstructure:"OUTPUT_PATH"`
	UploadName string `mapstructure:"UPLOAD_NAME"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	Headless        bool          `mapstructure:"HEADLESS"`
	UserAgent       string        `mapstructure:"USER_AGENT"`
	PageLoadTimeout time.Duration `mapstructure:"PAGE_LOAD_TIMEOUT"`
	HTTPTimeout     time.Duration `mapstructure:"HTTP_TIMEOUT"`

	ChangeTimeout      time.Duration `mapstructure:"CHANGE_TIMEOUT"`
	PollInterval       time.Duration `mapstructure:"POLL_INTERVAL"`
	NewSurfaceWait     time.Duration `mapstructure:"NEW_SURFACE_WAIT"`
	SameSurfaceWait    time.Duration `mapstructure:"SAME_SURFACE_WAIT"`
	SurfaceLoadTimeout time.Duration `mapstructure:"SURFACE_LOAD_TIMEOUT"`
	RestoreTimeout     time.Duration `mapstructure:"RESTORE_TIMEOUT"`
	GuardFactor        int           `mapstructure:"GUARD_FACTOR"`
	MinGuard           int           `mapstructure:"MIN_GUARD"`
	AlignSlack         int           `mapstructure:"ALIGN_SLACK"`

	SlideSelector   string   `mapstructure:"SLIDE_SELECTOR"`
	NextSelector    string   `mapstructure:"NEXT_SELECTOR"`
	CounterSelector string   `mapstructure:"COUNTER_SELECTOR"`
	BlobSelector    string   `mapstructure:"BLOB_SELECTOR"`
	ActiveClasses   []string `mapstructure:"ACTIVE_CLASSES"`
	TopClass        string   `mapstructure:"TOP_CLASS"`

	UploadBackend         string `mapstructure:"UPLOAD_BACKEND"`
	UploadFolderID        string `mapstructure:"UPLOAD_FOLDER_ID"`
	GDriveFolderID        string `mapstructure:"GDRIVE_FOLDER_ID"`
	GDriveCredentialsJSON string `mapstructure:"GDRIVE_CREDENTIALS_JSON"`
	GDriveSAJSONPath      string `mapstructure:"GDRIVE_SA_JSON_PATH"`
	GDriveDriveID         string `mapstructure:"GDRIVE_DRIVE_ID"`
	PostgresURL           string `mapstructure:"POSTGRES_URL"`
	RedisAddr             string `mapstructure:"REDIS_ADDR"`
	RedisPassword         string `mapstructure:"REDIS_PASSWORD"`
	RedisDB               int    `mapstructure:"REDIS_DB"`

	PushgatewayURL string `mapstructure:"PUSHGATEWAY_URL"`
	ServerPort     string `mapstructure:"SERVER_PORT"`
}

var defaults = map[string]any{
	"START_URL":   "https://jasoseol.com/",
	"MODE":        "interactive",
	"OUTPUT_PATH": "jasoseol_banner.csv",
	"UPLOAD_NAME": "",

	"LOG_LEVEL":  "info",
	"LOG_FORMAT": "json",

	"HEADLESS":          true,
	"USER_AGENT":        "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"PAGE_LOAD_TIMEOUT": 30 * time.Second,
	"HTTP_TIMEOUT":      20 * time.Second,

	"CHANGE_TIMEOUT":       2500 * time.Millisecond,
	"POLL_INTERVAL":        50 * time.Millisecond,
	"NEW_SURFACE_WAIT":     3 * time.Second,
	"SAME_SURFACE_WAIT":    3 * time.Second,
	"SURFACE_LOAD_TIMEOUT": 8 * time.Second,
	"RESTORE_TIMEOUT":      5 * time.Second,
	"GUARD_FACTOR":         5,
	"MIN_GUARD":            20,
	"ALIGN_SLACK":          3,

	"SLIDE_SELECTOR":   ".main-banner-ggs .swiper-slide",
	"NEXT_SELECTOR":    ".swiper-button-next",
	"COUNTER_SELECTOR": ".swiper-pagination-fraction",
	"BLOB_SELECTOR":    "script#__NEXT_DATA__",
	"ACTIVE_CLASSES":   []string{"swiper-slide-active", "slick-active", "is-active", "active"},
	"TOP_CLASS":        "top",

	"UPLOAD_BACKEND":          BackendNone,
	"UPLOAD_FOLDER_ID":        "",
	"GDRIVE_FOLDER_ID":        "",
	"GDRIVE_CREDENTIALS_JSON": "",
	"GDRIVE_SA_JSON_PATH":     "gdrive_sa.json",
	"GDRIVE_DRIVE_ID":         "",
	"POSTGRES_URL":            "",
	"REDIS_ADDR":              "localhost:6379",
	"REDIS_PASSWORD":          "",
	"REDIS_DB":                0,

	"PUSHGATEWAY_URL": "",
	"SERVER_PORT":     "8080",
}

// Load reads configuration from an optional .env file, an optional config
// file and environment variables, in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	// Attempt to read the .env file, but don't fail if it's not present
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.UploadName == "" {
		cfg.UploadName = filepath.Base(cfg.OutputPath)
	}
	return &cfg, nil
}

// FolderID returns the upload folder identity for the configured backend.
func (c *Config) FolderID() string {
	if c.UploadBackend == BackendGDrive {
		return c.GDriveFolderID
	}
	return c.UploadFolderID
}

// Validate checks the whole-run preconditions that can be verified before
// any browser work starts.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.StartURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		errs = append(errs, fmt.Errorf("START_URL must be an absolute URL, got %q", c.StartURL))
	}
	switch c.Mode {
	case "interactive", "static":
	default:
		errs = append(errs, fmt.Errorf("MODE must be interactive or static, got %q", c.Mode))
	}
	if c.OutputPath == "" {
		errs = append(errs, errors.New("OUTPUT_PATH is required"))
	}
	if c.ChangeTimeout <= 0 || c.PollInterval <= 0 {
		errs = append(errs, errors.New("CHANGE_TIMEOUT and POLL_INTERVAL must be positive"))
	}

	switch c.UploadBackend {
	case BackendNone, "":
	case BackendGDrive:
		if c.GDriveFolderID == "" {
			errs = append(errs, errors.New("GDRIVE_FOLDER_ID is required for the gdrive backend"))
		}
		if c.GDriveCredentialsJSON == "" && c.GDriveSAJSONPath == "" {
			errs = append(errs, errors.New("GDRIVE_CREDENTIALS_JSON or GDRIVE_SA_JSON_PATH is required for the gdrive backend"))
		}
	case BackendPostgres:
		if c.PostgresURL == "" {
			errs = append(errs, errors.New("POSTGRES_URL is required for the postgres backend"))
		}
		if c.UploadFolderID == "" {
			errs = append(errs, errors.New("UPLOAD_FOLDER_ID is required for the postgres backend"))
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis backend"))
		}
		if c.UploadFolderID == "" {
			errs = append(errs, errors.New("UPLOAD_FOLDER_ID is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown UPLOAD_BACKEND %q", c.UploadBackend))
	}

	return errors.Join(errs...)
}
