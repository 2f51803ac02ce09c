package carousel

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/entity"
)

// Aligner drives the carousel back to a previously seen slide. The carousel
// has no addressable index, so alignment is a bounded linear search.
type Aligner struct {
	reader        *Reader
	advancer      *Advancer
	changeTimeout time.Duration
	logger        *zap.Logger
}

func NewAligner(reader *Reader, advancer *Advancer, changeTimeout time.Duration, logger *zap.Logger) *Aligner {
	return &Aligner{reader: reader, advancer: advancer, changeTimeout: changeTimeout, logger: logger.Named("aligner")}
}

// AlignTo advances until target is presented again, issuing at most maxSteps
// advances. It returns the presented slide and whether it matches target.
func (a *Aligner) AlignTo(ctx context.Context, target entity.SlideSignature, maxSteps int) (entity.PresentedSlide, bool) {
	for step := 0; ; step++ {
		p, err := a.reader.Read(ctx)
		if err == nil && p.Signature.SameSlide(target) {
			a.logger.Debug("aligned", zap.String("locator", target.ImageLocator), zap.Int("steps", step))
			return p, true
		}
		if step >= maxSteps || ctx.Err() != nil {
			return p, false
		}
		if err := a.advancer.Advance(ctx); err != nil {
			a.logger.Debug("advance failed", zap.Int("step", step), zap.Error(err))
		}
		a.advancer.WaitForChange(ctx, p.Signature, a.changeTimeout)
	}
}
