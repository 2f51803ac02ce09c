package chromedp_surface

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/repository"
)

// Selectors locate the carousel parts in the live document.
type Selectors struct {
	Slide   string
	Next    string
	Counter string
}

// BrowserOptions configures the headless browser.
type BrowserOptions struct {
	Headless        bool
	UserAgent       string
	PageLoadTimeout time.Duration
	Selectors       Selectors
}

// Browser opens primary browsing surfaces in a dedicated Chrome instance.
type Browser struct {
	opts   BrowserOptions
	logger *zap.Logger
}

// NewBrowser creates a SurfaceOpener backed by chromedp.
func NewBrowser(opts BrowserOptions, logger *zap.Logger) repository.SurfaceOpener {
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = 30 * time.Second
	}
	return &Browser{opts: opts, logger: logger.Named("browser")}
}

// Open starts Chrome, loads url and waits for the carousel to render. The
// release func closes the tab and the browser.
func (b *Browser) Open(ctx context.Context, url string) (repository.BrowsingSurface, func(), error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.WindowSize(1366, 900),
	)
	if b.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(b.opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(b.logger.Sugar().Debugf))
	release := func() {
		cancelTab()
		cancelAlloc()
	}

	// The first Run allocates the browser, so it must not carry a deadline.
	if err := chromedp.Run(tabCtx); err != nil {
		release()
		return nil, nil, fmt.Errorf("starting browser: %w", err)
	}

	s := &Surface{
		tabCtx:          tabCtx,
		selectors:       b.opts.Selectors,
		pageLoadTimeout: b.opts.PageLoadTimeout,
		logger:          b.logger.Named("surface"),
	}
	if err := s.Navigate(ctx, url); err != nil {
		release()
		return nil, nil, err
	}
	s.waitForCarousel(ctx)

	return s, release, nil
}

func (s *Surface) waitForCarousel(ctx context.Context) {
	if s.selectors.Slide == "" {
		return
	}
	waitCtx, cancel := context.WithTimeout(ctx, s.pageLoadTimeout)
	defer cancel()
	run, stop := s.scoped(waitCtx)
	defer stop()

	if err := chromedp.Run(run, chromedp.WaitReady(s.selectors.Slide, chromedp.ByQuery)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("carousel did not render in time", zap.String("selector", s.selectors.Slide))
			return
		}
		s.logger.Warn("waiting for carousel failed", zap.Error(err))
	}
}
