package carousel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
)

// CaptureOptions holds every bounded wait used while capturing a destination.
type CaptureOptions struct {
	NewSurfaceWait  time.Duration
	LoadTimeout     time.Duration
	SameSurfaceWait time.Duration
	RestoreTimeout  time.Duration
	PollInterval    time.Duration
}

// Capturer activates a slide and classifies how the browser reacted.
type Capturer struct {
	surface repository.BrowsingSurface
	opts    CaptureOptions
	logger  *zap.Logger
}

func NewCapturer(surface repository.BrowsingSurface, opts CaptureOptions, logger *zap.Logger) *Capturer {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 50 * time.Millisecond
	}
	return &Capturer{surface: surface, opts: opts, logger: logger.Named("capturer")}
}

// Capture tries new-surface capture, then same-surface capture. Whatever the
// outcome, the primary surface is returned to the entry location and any
// opened tab is closed before Capture returns.
func (c *Capturer) Capture(ctx context.Context, slide entity.PresentedSlide) entity.NavigationOutcome {
	origin, err := c.surface.Location(ctx)
	if err != nil {
		return failed("reading entry location", err)
	}
	defer c.holdPosition(ctx, origin)

	return c.attempt(ctx, slide, origin)
}

func (c *Capturer) attempt(ctx context.Context, slide entity.PresentedSlide, origin string) entity.NavigationOutcome {
	opened, err := c.surface.Activate(ctx, slide.Handle, c.opts.NewSurfaceWait)
	if err != nil {
		return failed("activating slide", err)
	}
	if opened != nil {
		return c.captureOpened(ctx, opened)
	}

	if loc, err := c.surface.Location(ctx); err == nil && loc != origin {
		return entity.SameSurfaceOutcome(loc)
	}

	// A second click catches handlers that navigate only once the first
	// click has primed them.
	opened, err = c.surface.Activate(ctx, slide.Handle, c.opts.PollInterval)
	if err != nil {
		return failed("re-activating slide", err)
	}
	if opened != nil {
		return c.captureOpened(ctx, opened)
	}

	if dest, ok := c.pollLocation(ctx, c.opts.SameSurfaceWait, func(loc string) bool { return loc != origin }); ok {
		return entity.SameSurfaceOutcome(dest)
	}
	return entity.NoNavigationOutcome()
}

func (c *Capturer) captureOpened(ctx context.Context, opened repository.OpenedSurface) entity.NavigationOutcome {
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.RestoreTimeout)
		defer cancel()
		if err := opened.Close(closeCtx); err != nil {
			c.logger.Warn("closing opened surface failed", zap.Error(err))
		}
	}()

	loadCtx, cancel := context.WithTimeout(ctx, c.opts.LoadTimeout)
	defer cancel()

	if err := opened.WaitLoaded(loadCtx); err != nil {
		return failed("waiting for opened surface", err)
	}
	dest, err := opened.Location(loadCtx)
	if err != nil {
		return failed("reading opened surface location", err)
	}
	if dest == "" {
		return failed("reading opened surface location", errors.New("empty location"))
	}
	return entity.NewSurfaceOutcome(dest)
}

// holdPosition returns the primary surface to origin: history back first,
// then a direct navigation when the back step did not land on origin.
func (c *Capturer) holdPosition(ctx context.Context, origin string) {
	base := context.WithoutCancel(ctx)

	if loc, err := c.surface.Location(base); err == nil && loc == origin {
		return
	}

	backCtx, cancel := context.WithTimeout(base, c.opts.RestoreTimeout)
	defer cancel()
	if err := c.surface.NavigateBack(backCtx); err != nil {
		c.logger.Debug("history back failed", zap.Error(err))
	} else if _, ok := c.pollLocation(backCtx, c.opts.RestoreTimeout, func(loc string) bool { return loc == origin }); ok {
		return
	}

	navCtx, cancelNav := context.WithTimeout(base, c.opts.RestoreTimeout)
	defer cancelNav()
	if err := c.surface.Navigate(navCtx, origin); err != nil {
		c.logger.Error("restoring entry location failed", zap.String("origin", origin), zap.Error(err))
	}
}

// pollLocation reads the surface location until match holds or timeout
// elapses.
func (c *Capturer) pollLocation(ctx context.Context, timeout time.Duration, match func(string) bool) (string, bool) {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		if loc, err := c.surface.Location(pollCtx); err == nil && match(loc) {
			return loc, true
		}
		select {
		case <-pollCtx.Done():
			return "", false
		case <-ticker.C:
		}
	}
}

func failed(step string, err error) entity.NavigationOutcome {
	return entity.ActionFailedOutcome(fmt.Sprintf("%v: %s: %v", repository.ErrActivationFailed, step, err))
}
