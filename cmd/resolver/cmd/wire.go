package cmd

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/adapter/chromedp_surface"
	"github.com/user/banner-resolver/internal/adapter/csvsink"
	"github.com/user/banner-resolver/internal/adapter/gdrive"
	"github.com/user/banner-resolver/internal/adapter/httpfetch"
	"github.com/user/banner-resolver/internal/adapter/postgres"
	redis_adapter "github.com/user/banner-resolver/internal/adapter/redis"
	"github.com/user/banner-resolver/internal/carousel"
	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
	"github.com/user/banner-resolver/internal/usecase"
	"github.com/user/banner-resolver/pkg/config"
	"github.com/user/banner-resolver/pkg/metrics"
)

// app holds the wired pipeline and the connections it owns.
type app struct {
	runner  usecase.Runner
	metrics *metrics.Metrics

	mu      sync.Mutex
	closers []func()
}

func (a *app) onClose(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, fn)
}

func (a *app) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{metrics: metrics.New()}

	base, err := url.Parse(cfg.StartURL)
	if err != nil {
		return nil, fmt.Errorf("parsing start url: %w", err)
	}

	var uploader repository.Uploader
	if backend := cfg.UploadBackend; backend != "" && backend != config.BackendNone {
		uploader = usecase.NewLazyUploader(backend, func(ctx context.Context) (repository.Uploader, error) {
			return a.connectUploader(ctx, cfg, logger)
		})
	}

	browser := chromedp_surface.NewBrowser(chromedp_surface.BrowserOptions{
		Headless:        cfg.Headless,
		UserAgent:       cfg.UserAgent,
		PageLoadTimeout: cfg.PageLoadTimeout,
		Selectors: chromedp_surface.Selectors{
			Slide:   cfg.SlideSelector,
			Next:    cfg.NextSelector,
			Counter: cfg.CounterSelector,
		},
	}, logger)
	fetcher := httpfetch.NewFetcher(cfg.UserAgent, cfg.HTTPTimeout, logger)
	sink := csvsink.NewSink(cfg.OutputPath)

	opts := usecase.RunOptions{
		Mode:         entity.Mode(cfg.Mode),
		StartURL:     cfg.StartURL,
		BlobSelector: cfg.BlobSelector,
		UploadName:   cfg.UploadName,
		FolderID:     cfg.FolderID(),
		Resolver: usecase.ResolverOptions{
			BaseURL:    base,
			Strategies: carousel.DefaultStrategies(cfg.ActiveClasses, cfg.TopClass),
			Discover: carousel.DiscoverOptions{
				GuardFactor:   cfg.GuardFactor,
				MinGuard:      cfg.MinGuard,
				ChangeTimeout: cfg.ChangeTimeout,
			},
			Capture: carousel.CaptureOptions{
				NewSurfaceWait:  cfg.NewSurfaceWait,
				LoadTimeout:     cfg.SurfaceLoadTimeout,
				SameSurfaceWait: cfg.SameSurfaceWait,
				RestoreTimeout:  cfg.RestoreTimeout,
				PollInterval:    cfg.PollInterval,
			},
			PollInterval: cfg.PollInterval,
			AlignSlack:   cfg.AlignSlack,
		},
	}
	a.runner = usecase.NewRunUseCase(opts, browser, fetcher, sink, uploader, a.metrics, logger)
	return a, nil
}

// connectUploader connects the configured upload backend. It runs on the
// first upload, after the dataset is already on disk.
func (a *app) connectUploader(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Uploader, error) {
	switch cfg.UploadBackend {
	case config.BackendGDrive:
		return gdrive.NewUploader(ctx, gdrive.Options{
			CredentialsJSON: cfg.GDriveCredentialsJSON,
			CredentialsFile: cfg.GDriveSAJSONPath,
			DriveID:         cfg.GDriveDriveID,
		}, logger)

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("pinging postgres: %w", err)
		}
		up := postgres.NewUploader(pool, logger)
		if err := up.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		a.onClose(pool.Close)
		logger.Info("PostgreSQL connection pool established")
		return up, nil

	case config.BackendRedis:
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		a.onClose(func() { _ = rdb.Close() })
		logger.Info("Redis connection established")
		return redis_adapter.NewUploader(rdb, logger), nil
	}
	return nil, fmt.Errorf("unknown upload backend %q", cfg.UploadBackend)
}
