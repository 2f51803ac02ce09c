package carousel

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
)

// Advancer moves the carousel forward by one position.
type Advancer struct {
	surface      repository.BrowsingSurface
	reader       *Reader
	pollInterval time.Duration
	logger       *zap.Logger
}

func NewAdvancer(surface repository.BrowsingSurface, reader *Reader, pollInterval time.Duration, logger *zap.Logger) *Advancer {
	if pollInterval <= 0 {
		pollInterval = 50 * time.Millisecond
	}
	return &Advancer{
		surface:      surface,
		reader:       reader,
		pollInterval: pollInterval,
		logger:       logger.Named("advancer"),
	}
}

// Advance clicks the next control when it is interactable and otherwise
// sends a right-arrow key press. It does not wait for the transition.
func (a *Advancer) Advance(ctx context.Context) error {
	clicked, err := a.surface.ClickNext(ctx)
	if err == nil && clicked {
		return nil
	}
	if err != nil {
		a.logger.Debug("next control click failed, falling back to key press", zap.Error(err))
	}
	return a.surface.PressKey(ctx, repository.KeyArrowRight)
}

// WaitForChange polls until a readable slide other than previous is presented
// or timeout elapses. It reports whether a change was observed.
func (a *Advancer) WaitForChange(ctx context.Context, previous entity.SlideSignature, timeout time.Duration) bool {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		p, err := a.reader.Read(waitCtx)
		if err == nil && !p.Signature.Empty() && p.Signature.ImageLocator != previous.ImageLocator {
			return true
		}
		select {
		case <-waitCtx.Done():
			return false
		case <-ticker.C:
		}
	}
}
