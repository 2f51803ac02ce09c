package chromedp_surface

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
)

const loadPollInterval = 100 * time.Millisecond

const slideSnapshotJS = `(() => {
  const visible = (el) => {
    const r = el.getBoundingClientRect();
    const st = window.getComputedStyle(el);
    return r.width > 0 && r.height > 0 && st.visibility !== 'hidden' && st.display !== 'none';
  };
  return Array.from(document.querySelectorAll(%s)).map((el, i) => {
    const img = el.querySelector('img');
    const a = el.closest('a[href]') || el.querySelector('a[href]');
    return {
      index: i,
      classes: Array.from(el.classList),
      title: img ? (img.getAttribute('alt') || el.getAttribute('title') || '') : '',
      src: img ? (img.getAttribute('src') || img.currentSrc || '') : '',
      srcset: img ? (img.getAttribute('srcset') || '') : '',
      href: a ? a.href : '',
      visible: visible(el),
    };
  });
})()`

const counterTextJS = `(() => {
  const el = document.querySelector(%s);
  return el ? el.textContent.trim() : '';
})()`

const clickNextJS = `(() => {
  const el = document.querySelector(%s);
  if (!el) return false;
  const r = el.getBoundingClientRect();
  const st = window.getComputedStyle(el);
  if (r.width === 0 || r.height === 0 || st.visibility === 'hidden' || st.display === 'none') return false;
  if (el.disabled || el.getAttribute('aria-disabled') === 'true' || el.classList.contains('swiper-button-disabled')) return false;
  el.click();
  return true;
})()`

// Surface drives the primary Chrome tab.
type Surface struct {
	tabCtx          context.Context
	selectors       Selectors
	pageLoadTimeout time.Duration
	logger          *zap.Logger
}

var _ repository.BrowsingSurface = (*Surface)(nil)

// scoped derives a run context from the tab that also ends with ctx.
// Cancelling it never closes the tab.
func (s *Surface) scoped(ctx context.Context) (context.Context, context.CancelFunc) {
	return scopeTo(s.tabCtx, ctx)
}

func scopeTo(chromeCtx, ctx context.Context) (context.Context, context.CancelFunc) {
	var (
		run    context.Context
		cancel context.CancelFunc
	)
	if deadline, ok := ctx.Deadline(); ok {
		run, cancel = context.WithDeadline(chromeCtx, deadline)
	} else {
		run, cancel = context.WithCancel(chromeCtx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return run, func() {
		stop()
		cancel()
	}
}

func (s *Surface) run(ctx context.Context, actions ...chromedp.Action) error {
	run, cancel := s.scoped(ctx)
	defer cancel()
	return chromedp.Run(run, actions...)
}

func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func (s *Surface) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

func (s *Surface) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (s *Surface) SlideNodes(ctx context.Context) ([]entity.SlideNode, error) {
	var nodes []entity.SlideNode
	script := fmt.Sprintf(slideSnapshotJS, jsString(s.selectors.Slide))
	if err := s.run(ctx, chromedp.Evaluate(script, &nodes)); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (s *Surface) CounterText(ctx context.Context) (string, error) {
	if s.selectors.Counter == "" {
		return "", nil
	}
	var text string
	script := fmt.Sprintf(counterTextJS, jsString(s.selectors.Counter))
	if err := s.run(ctx, chromedp.Evaluate(script, &text)); err != nil {
		return "", err
	}
	return text, nil
}

func (s *Surface) ClickNext(ctx context.Context) (bool, error) {
	if s.selectors.Next == "" {
		return false, nil
	}
	var clicked bool
	script := fmt.Sprintf(clickNextJS, jsString(s.selectors.Next))
	if err := s.run(ctx, chromedp.Evaluate(script, &clicked)); err != nil {
		return false, err
	}
	return clicked, nil
}

func (s *Surface) PressKey(ctx context.Context, key string) error {
	switch key {
	case repository.KeyArrowRight:
		key = kb.ArrowRight
	}
	return s.run(ctx, chromedp.KeyEvent(key))
}

// Activate clicks the slide with real input events, so handlers that open a
// tab are treated as user gestures. A tab opened by this tab within wait is
// attached and returned.
func (s *Surface) Activate(ctx context.Context, index int, wait time.Duration) (repository.OpenedSurface, error) {
	run, cancel := s.scoped(ctx)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(run, chromedp.Nodes(s.selectors.Slide, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(nodes) {
		return nil, fmt.Errorf("slide %d of %d not present", index, len(nodes))
	}

	opener := chromedp.FromContext(s.tabCtx).Target.TargetID
	watchCtx, stopWatch := context.WithCancel(run)
	defer stopWatch()
	opened := chromedp.WaitNewTarget(watchCtx, func(info *target.Info) bool {
		return info.OpenerID == opener && info.Type == "page"
	})

	if err := chromedp.Run(run, chromedp.MouseClickNode(nodes[index])); err != nil {
		return nil, err
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case id, ok := <-opened:
		if !ok {
			return nil, nil
		}
		return s.attach(id)
	case <-timer.C:
		return nil, nil
	case <-run.Done():
		return nil, run.Err()
	}
}

func (s *Surface) attach(id target.ID) (repository.OpenedSurface, error) {
	tctx, cancel := chromedp.NewContext(s.tabCtx, chromedp.WithTargetID(id))
	if err := chromedp.Run(tctx); err != nil {
		cancel()
		return nil, fmt.Errorf("attaching to opened tab: %w", err)
	}
	s.logger.Debug("attached to opened tab", zap.String("target", string(id)))
	return &openedSurface{ctx: tctx, cancel: cancel}, nil
}

func (s *Surface) NavigateBack(ctx context.Context) error {
	return s.run(ctx, chromedp.NavigateBack())
}

// Navigate loads url within the page load timeout unless ctx ends sooner.
func (s *Surface) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.pageLoadTimeout)
	defer cancel()
	if err := s.run(navCtx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// openedSurface is a secondary tab attached after an activation.
type openedSurface struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// WaitLoaded waits for the tab to leave about:blank and for its body.
func (o *openedSurface) WaitLoaded(ctx context.Context) error {
	run, cancel := scopeTo(o.ctx, ctx)
	defer cancel()

	ticker := time.NewTicker(loadPollInterval)
	defer ticker.Stop()
	for {
		var loc string
		if err := chromedp.Run(run, chromedp.Location(&loc)); err != nil {
			return err
		}
		if loc != "" && loc != "about:blank" {
			break
		}
		select {
		case <-run.Done():
			return run.Err()
		case <-ticker.C:
		}
	}
	return chromedp.Run(run, chromedp.WaitReady("body", chromedp.ByQuery))
}

func (o *openedSurface) Location(ctx context.Context) (string, error) {
	run, cancel := scopeTo(o.ctx, ctx)
	defer cancel()
	var loc string
	if err := chromedp.Run(run, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// Close closes the tab and waits for the browser to confirm.
func (o *openedSurface) Close(_ context.Context) error {
	defer o.cancel()
	return chromedp.Cancel(o.ctx)
}
