package usecase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/carousel"
	"github.com/user/banner-resolver/internal/embedded"
	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
	"github.com/user/banner-resolver/pkg/metrics"
)

// Per-slide states, as logged under the "state" field.
const (
	stateAligning       = "aligning"
	stateAlignFailed    = "align_failed"
	stateCapturing      = "capturing"
	stateCaptureFailed  = "capture_failed"
	stateFallbackLookup = "fallback_lookup"
	stateResolved       = "resolved"
)

// Resolver turns the live carousel into one record per unique slide.
type Resolver interface {
	Resolve(ctx context.Context, index *embedded.Index) ([]entity.BannerRecord, error)
}

// ResolverOptions tunes the carousel components for one surface.
type ResolverOptions struct {
	BaseURL      *url.URL
	Strategies   []carousel.ActiveSlideStrategy
	Discover     carousel.DiscoverOptions
	Capture      carousel.CaptureOptions
	PollInterval time.Duration
	AlignSlack   int
}

type resolverUseCase struct {
	surface    repository.BrowsingSurface
	estimator  *carousel.HintEstimator
	discoverer *carousel.Discoverer
	aligner    *carousel.Aligner
	capturer   *carousel.Capturer
	alignSlack int
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewResolverUseCase wires the carousel components over surface.
func NewResolverUseCase(surface repository.BrowsingSurface, opts ResolverOptions, m *metrics.Metrics, logger *zap.Logger) Resolver {
	reader := carousel.NewReader(surface, opts.BaseURL, opts.Strategies...)
	advancer := carousel.NewAdvancer(surface, reader, opts.PollInterval, logger)
	return &resolverUseCase{
		surface:    surface,
		estimator:  carousel.NewHintEstimator(surface),
		discoverer: carousel.NewDiscoverer(reader, advancer, opts.Discover, logger),
		aligner:    carousel.NewAligner(reader, advancer, opts.Discover.ChangeTimeout, logger),
		capturer:   carousel.NewCapturer(surface, opts.Capture, logger),
		alignSlack: opts.AlignSlack,
		metrics:    m,
		logger:     logger.Named("resolver"),
	}
}

// Resolve discovers every slide, then aligns and captures each in discovery
// order. Per-slide failures fall back to the index and never abort the run.
func (uc *resolverUseCase) Resolve(ctx context.Context, index *embedded.Index) ([]entity.BannerRecord, error) {
	nodes, err := uc.surface.SlideNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrReadUnavailable, err)
	}
	if len(nodes) == 0 {
		return nil, repository.ErrCarouselNotFound
	}

	hint := uc.estimator.Estimate(ctx)
	uc.logger.Info("starting discovery", zap.Int("hint", hint), zap.Int("nodes", len(nodes)))

	discovered, err := uc.discoverer.Discover(ctx, hint)
	if err != nil {
		return nil, fmt.Errorf("discovering slides: %w", err)
	}
	uc.metrics.SlidesDiscovered.Set(float64(len(discovered)))

	maxSteps := len(discovered) + uc.alignSlack
	records := make([]entity.BannerRecord, 0, len(discovered))
	for _, slide := range discovered {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		records = append(records, uc.resolveSlide(ctx, slide, maxSteps, index))
	}
	return records, nil
}

func (uc *resolverUseCase) resolveSlide(ctx context.Context, slide entity.DiscoveredSlide, maxSteps int, index *embedded.Index) entity.BannerRecord {
	log := uc.logger.With(
		zap.Int("order", slide.Order),
		zap.String("locator", slide.Signature.ImageLocator),
	)
	record := entity.BannerRecord{
		Title:        slide.Signature.Title,
		ImageLocator: slide.Signature.ImageLocator,
	}

	log.Debug("slide state", zap.String("state", stateAligning))
	presented, aligned := uc.aligner.AlignTo(ctx, slide.Signature, maxSteps)
	uc.metrics.ObserveAlignment(aligned)

	if !aligned {
		log.Warn("slide not re-presented, skipping activation",
			zap.String("state", stateAlignFailed),
			zap.Int("max_steps", maxSteps),
			zap.Error(repository.ErrAlignmentExhausted))
	} else {
		log.Debug("slide state", zap.String("state", stateCapturing))
		outcome := uc.capturer.Capture(ctx, presented)
		uc.metrics.ObserveCapture(outcome.Kind.String())

		if outcome.Captured() {
			record.Destination = outcome.Destination
			record.Source = entity.SourceNewSurface
			if outcome.Kind == entity.SameSurface {
				record.Source = entity.SourceSameSurface
			}
			log.Info("slide resolved",
				zap.String("state", stateResolved),
				zap.String("outcome", outcome.Kind.String()),
				zap.String("destination", record.Destination))
			return record
		}
		log.Info("capture yielded no destination",
			zap.String("state", stateCaptureFailed),
			zap.String("outcome", outcome.Kind.String()),
			zap.String("reason", outcome.Reason))
	}

	log.Debug("slide state", zap.String("state", stateFallbackLookup))
	record.Destination, record.Source = lookupFallback(index, slide.Signature)
	if record.Source == entity.SourceUnresolved {
		log.Warn("no destination found",
			zap.String("state", stateResolved),
			zap.Error(repository.ErrFallbackExhausted))
	} else {
		log.Info("slide resolved",
			zap.String("state", stateResolved),
			zap.String("outcome", string(record.Source)),
			zap.String("destination", record.Destination))
	}
	return record
}
