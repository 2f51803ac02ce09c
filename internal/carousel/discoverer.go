package carousel

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/entity"
)

// DiscoverOptions bounds the discovery loop.
type DiscoverOptions struct {
	// GuardFactor multiplies the count hint into the iteration budget.
	GuardFactor int
	// MinGuard is the iteration budget when the hint is unknown.
	MinGuard      int
	ChangeTimeout time.Duration
}

// Discoverer builds the ordered set of unique slides by reading and
// advancing the carousel.
type Discoverer struct {
	reader   *Reader
	advancer *Advancer
	opts     DiscoverOptions
	logger   *zap.Logger
}

func NewDiscoverer(reader *Reader, advancer *Advancer, opts DiscoverOptions, logger *zap.Logger) *Discoverer {
	if opts.GuardFactor < 1 {
		opts.GuardFactor = 1
	}
	return &Discoverer{reader: reader, advancer: advancer, opts: opts, logger: logger.Named("discoverer")}
}

// Discover records unique slides, keyed by image locator, until the unique
// count reaches hint or the iteration guard is spent. A hint of zero or less
// is unknown: the count stop is disabled and only the guard applies.
func (d *Discoverer) Discover(ctx context.Context, hint int) ([]entity.DiscoveredSlide, error) {
	known := hint > 0
	if !known {
		hint = 1
	}
	guard := d.opts.GuardFactor * hint
	if !known && guard < d.opts.MinGuard {
		guard = d.opts.MinGuard
	}

	seen := make(map[string]struct{})
	var slides []entity.DiscoveredSlide

	for i := 0; i < guard; i++ {
		if err := ctx.Err(); err != nil {
			return slides, err
		}

		p, err := d.reader.Read(ctx)
		if err != nil {
			d.logger.Debug("slide unreadable, retrying", zap.Int("iteration", i), zap.Error(err))
		} else if !p.Signature.Empty() {
			if _, dup := seen[p.Signature.ImageLocator]; !dup {
				seen[p.Signature.ImageLocator] = struct{}{}
				slides = append(slides, entity.DiscoveredSlide{Order: len(slides), Signature: p.Signature})
				d.logger.Debug("slide discovered",
					zap.Int("order", len(slides)-1),
					zap.String("locator", p.Signature.ImageLocator),
					zap.String("title", p.Signature.Title))
			}
		}

		if known && len(slides) >= hint {
			break
		}

		if err := d.advancer.Advance(ctx); err != nil {
			d.logger.Debug("advance failed", zap.Int("iteration", i), zap.Error(err))
		}
		d.advancer.WaitForChange(ctx, p.Signature, d.opts.ChangeTimeout)
	}

	d.logger.Info("discovery finished",
		zap.Int("unique", len(slides)),
		zap.Int("hint", hint),
		zap.Bool("hint_known", known),
		zap.Int("guard", guard))
	return slides, nil
}
