package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/dom"
	"github.com/user/banner-resolver/internal/embedded"
	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
	"github.com/user/banner-resolver/pkg/metrics"
)

// Runner executes the whole pipeline once.
type Runner interface {
	Run(ctx context.Context, id string) (*entity.RunReport, error)
}

// RunOptions configures one pipeline.
type RunOptions struct {
	Mode           entity.Mode
	StartURL       string
	BlobSelector   string
	SlideSelectors []string
	UploadName     string
	FolderID       string
	Resolver       ResolverOptions
}

type runUseCase struct {
	opts     RunOptions
	opener   repository.SurfaceOpener
	fetcher  repository.PageFetcher
	sink     repository.RecordSink
	uploader repository.Uploader
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewRunUseCase creates a Runner. opener serves interactive mode and fetcher
// static mode; uploader may be nil to skip the upload step.
func NewRunUseCase(
	opts RunOptions,
	opener repository.SurfaceOpener,
	fetcher repository.PageFetcher,
	sink repository.RecordSink,
	uploader repository.Uploader,
	m *metrics.Metrics,
	logger *zap.Logger,
) Runner {
	return &runUseCase{
		opts:     opts,
		opener:   opener,
		fetcher:  fetcher,
		sink:     sink,
		uploader: uploader,
		metrics:  m,
		logger:   logger.Named("runner"),
	}
}

// Run obtains the page, resolves its banners, writes the dataset and uploads
// it. The returned report is never nil; on an upload failure it still carries
// the local output path.
func (uc *runUseCase) Run(ctx context.Context, id string) (*entity.RunReport, error) {
	report := &entity.RunReport{
		ID:        id,
		Mode:      uc.opts.Mode,
		StartURL:  uc.opts.StartURL,
		StartedAt: time.Now(),
	}
	log := uc.logger.With(zap.String("run_id", id), zap.String("mode", string(uc.opts.Mode)))
	log.Info("run started", zap.String("url", uc.opts.StartURL))

	err := uc.run(ctx, report, log)

	report.FinishedAt = time.Now()
	uc.metrics.RunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	if err != nil {
		report.Error = err.Error()
		log.Error("run failed", zap.Error(err))
		return report, err
	}
	log.Info("run finished",
		zap.Int("records", len(report.Records)),
		zap.String("output", report.OutputPath),
		zap.String("remote_id", report.RemoteID))
	return report, nil
}

func (uc *runUseCase) run(ctx context.Context, report *entity.RunReport, log *zap.Logger) error {
	var (
		records []entity.BannerRecord
		err     error
	)
	switch uc.opts.Mode {
	case entity.ModeStatic:
		records, err = uc.resolveStatic(ctx, log)
	default:
		records, err = uc.resolveInteractive(ctx, log)
	}
	if err != nil {
		if ctx.Err() != nil && len(records) > 0 {
			uc.keepPartial(ctx, report, records, log)
		}
		return err
	}

	report.Records = records
	report.Tally()
	for _, rec := range records {
		uc.metrics.ObserveResolution(string(rec.Source))
	}

	path, err := uc.sink.Write(ctx, records)
	if err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	report.OutputPath = path

	if uc.uploader == nil {
		return nil
	}
	remoteID, err := uc.uploader.UpsertFile(ctx, path, uc.opts.UploadName, uc.opts.FolderID)
	uc.metrics.ObserveUpload(uc.uploader.Backend(), err)
	if err != nil {
		if !errors.Is(err, repository.ErrUpload) {
			err = fmt.Errorf("%w: %w", repository.ErrUpload, err)
		}
		report.UploadError = err.Error()
		return err
	}
	report.RemoteID = remoteID
	log.Info("dataset uploaded", zap.String("backend", uc.uploader.Backend()), zap.String("remote_id", remoteID))
	return nil
}

// keepPartial writes the records resolved before cancellation. The upload
// step is skipped.
func (uc *runUseCase) keepPartial(ctx context.Context, report *entity.RunReport, records []entity.BannerRecord, log *zap.Logger) {
	report.Records = records
	report.Tally()
	path, err := uc.sink.Write(context.WithoutCancel(ctx), records)
	if err != nil {
		log.Error("writing partial dataset failed", zap.Error(err))
		return
	}
	report.OutputPath = path
	log.Warn("run cancelled, partial dataset written",
		zap.Int("records", len(records)),
		zap.String("output", path))
}

func (uc *runUseCase) resolveInteractive(ctx context.Context, log *zap.Logger) ([]entity.BannerRecord, error) {
	surface, release, err := uc.opener.Open(ctx, uc.opts.StartURL)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", repository.ErrUpstreamFetch, uc.opts.StartURL, err)
	}
	defer release()

	html, err := surface.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading document: %v", repository.ErrUpstreamFetch, err)
	}
	index, err := uc.buildIndex(html, log)
	if err != nil {
		return nil, err
	}
	return NewResolverUseCase(surface, uc.opts.Resolver, uc.metrics, uc.logger).Resolve(ctx, index)
}

func (uc *runUseCase) resolveStatic(ctx context.Context, log *zap.Logger) ([]entity.BannerRecord, error) {
	html, err := uc.fetcher.Fetch(ctx, uc.opts.StartURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUpstreamFetch, err)
	}
	index, err := uc.buildIndex(html, log)
	if err != nil {
		return nil, err
	}
	return NewStaticUseCase(uc.opts.Resolver.BaseURL, uc.opts.SlideSelectors, uc.logger).Resolve(html, index)
}

// buildIndex extracts the embedded pairs. A page without the blob yields an
// empty index; a blob that cannot be decoded is fatal.
func (uc *runUseCase) buildIndex(html string, log *zap.Logger) (*embedded.Index, error) {
	blob, ok, err := dom.ExtractBlob(html, uc.opts.BlobSelector)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUpstreamParse, err)
	}
	if !ok {
		log.Warn("embedded data blob not found, fallback lookups will miss", zap.String("selector", uc.opts.BlobSelector))
		return embedded.NewIndex(nil), nil
	}
	pairs, err := embedded.ExtractPairs(blob)
	if err != nil {
		return nil, err
	}
	log.Info("embedded pairs extracted", zap.Int("pairs", len(pairs)))
	return embedded.NewIndex(pairs), nil
}
