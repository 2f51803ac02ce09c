package carousel

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
	"github.com/user/banner-resolver/internal/testutil"
)

const origin = "https://example.com/"

func fixtureSlides(n int) []testutil.FakeSlide {
	slides := make([]testutil.FakeSlide, n)
	for i := range slides {
		slides[i] = testutil.FakeSlide{
			Title: fmt.Sprintf("banner %d", i),
			Src:   fmt.Sprintf("https://cdn.example.com/banner/%c.png", 'a'+i),
		}
	}
	return slides
}

func locatorOf(i int) string {
	return fmt.Sprintf("https://cdn.example.com/banner/%c.png", 'a'+i)
}

type kit struct {
	surface  *testutil.FakeSurface
	reader   *Reader
	advancer *Advancer
}

func newKit(surface *testutil.FakeSurface) kit {
	logger := zap.NewNop()
	base, _ := url.Parse(origin)
	reader := NewReader(surface, base)
	return kit{
		surface:  surface,
		reader:   reader,
		advancer: NewAdvancer(surface, reader, 2*time.Millisecond, logger),
	}
}

func (k kit) discoverer(guardFactor, minGuard int) *Discoverer {
	return NewDiscoverer(k.reader, k.advancer, DiscoverOptions{
		GuardFactor:   guardFactor,
		MinGuard:      minGuard,
		ChangeTimeout: 40 * time.Millisecond,
	}, zap.NewNop())
}

func (k kit) aligner() *Aligner {
	return NewAligner(k.reader, k.advancer, 40*time.Millisecond, zap.NewNop())
}

func locators(slides []entity.DiscoveredSlide) []string {
	out := make([]string, 0, len(slides))
	for _, s := range slides {
		out = append(out, s.Signature.ImageLocator)
	}
	return out
}

type unreadableSurface struct {
	*testutil.FakeSurface
}

func (unreadableSurface) SlideNodes(context.Context) ([]entity.SlideNode, error) {
	return nil, errors.New("execution context was destroyed")
}

func TestReaderMarkers(t *testing.T) {
	tests := []struct {
		name       string
		marker     testutil.Marker
		wantHandle int
	}{
		{"active class", testutil.MarkerActive, 2},
		{"top class", testutil.MarkerTop, 2},
		{"no marker falls back to first node", testutil.MarkerNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface := testutil.NewFakeSurface(origin, fixtureSlides(4)...)
			surface.Marker = tt.marker
			surface.SetPosition(2)

			p, err := newKit(surface).reader.Read(context.Background())
			require.NoError(t, err)
			assert.Equal(t, locatorOf(2), p.Signature.ImageLocator)
			assert.Equal(t, "banner 2", p.Signature.Title)
			assert.Equal(t, tt.wantHandle, p.Handle)
		})
	}
}

func TestReaderMissingImage(t *testing.T) {
	surface := testutil.NewFakeSurface(origin, testutil.FakeSlide{Title: "loading"})

	p, err := newKit(surface).reader.Read(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Signature.Empty())
	assert.Empty(t, p.Signature.Title)
}

func TestReaderSurfaceError(t *testing.T) {
	surface := unreadableSurface{testutil.NewFakeSurface(origin, fixtureSlides(2)...)}
	reader := NewReader(surface, nil)

	_, err := reader.Read(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrReadUnavailable)
}

func TestSignatureOf(t *testing.T) {
	base, err := url.Parse(origin)
	require.NoError(t, err)

	sig := SignatureOf(entity.SlideNode{Title: " Spring ", Srcset: "/img/a.png 1x, /img/a@2x.png 2x"}, base)
	assert.Equal(t, entity.SlideSignature{Title: "Spring", ImageLocator: "https://example.com/img/a.png"}, sig)

	sig = SignatureOf(entity.SlideNode{Src: "/_next/image?url=%2Fimg%2FC.png&w=640"}, base)
	assert.Equal(t, "https://example.com/img/C.png", sig.ImageLocator)

	sig = SignatureOf(entity.SlideNode{Title: "no image"}, base)
	assert.Equal(t, entity.SlideSignature{}, sig)
}

func TestAdvancerFallsBackToKeyPress(t *testing.T) {
	surface := testutil.NewFakeSurface(origin, fixtureSlides(3)...)
	surface.NoNextControl = true
	k := newKit(surface)

	require.NoError(t, k.advancer.Advance(context.Background()))
	assert.Equal(t, 1, surface.KeyPresses())
	assert.Equal(t, 1, surface.Position())
}

func TestAdvancerPrefersNextControl(t *testing.T) {
	surface := testutil.NewFakeSurface(origin, fixtureSlides(3)...)
	k := newKit(surface)

	require.NoError(t, k.advancer.Advance(context.Background()))
	assert.Equal(t, 0, surface.KeyPresses())
	assert.Equal(t, 1, surface.Position())
}

func TestWaitForChange(t *testing.T) {
	surface := testutil.NewFakeSurface(origin, fixtureSlides(3)...)
	k := newKit(surface)
	ctx := context.Background()

	first, err := k.reader.Read(ctx)
	require.NoError(t, err)
	assert.False(t, k.advancer.WaitForChange(ctx, first.Signature, 20*time.Millisecond))

	require.NoError(t, k.advancer.Advance(ctx))
	assert.True(t, k.advancer.WaitForChange(ctx, first.Signature, 20*time.Millisecond))
}

func TestDiscoverIsIdempotentAcrossStartPositions(t *testing.T) {
	const n = 5
	want := make([]string, n)
	for i := range want {
		want[i] = locatorOf(i)
	}

	for start := 0; start < n; start++ {
		t.Run(fmt.Sprintf("start %d", start), func(t *testing.T) {
			surface := testutil.NewFakeSurface(origin, fixtureSlides(n)...)
			surface.SetPosition(start)

			slides, err := newKit(surface).discoverer(5, 20).Discover(context.Background(), n)
			require.NoError(t, err)
			assert.ElementsMatch(t, want, locators(slides))
			assert.Equal(t, locatorOf(start), slides[0].Signature.ImageLocator)
			for i, s := range slides {
				assert.Equal(t, i, s.Order)
			}
		})
	}
}

func TestDiscoverStopsAtHint(t *testing.T) {
	surface := testutil.NewFakeSurface(origin, fixtureSlides(5)...)

	slides, err := newKit(surface).discoverer(5, 20).Discover(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, slides, 3)
	assert.Equal(t, 2, surface.Advances())
}

func TestDiscoverUnknownHintUsesGuard(t *testing.T) {
	surface := testutil.NewFakeSurface(origin, fixtureSlides(4)...)

	slides, err := newKit(surface).discoverer(2, 9).Discover(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, slides, 4)
	assert.Equal(t, 9, surface.Advances())
}

func TestDiscoverDeduplicatesQueryVariants(t *testing.T) {
	surface := testutil.NewFakeSurface(origin,
		testutil.FakeSlide{Src: "https://example.com/img/C.png?w=400"},
		testutil.FakeSlide{Src: "/img/C.png"},
	)

	slides, err := newKit(surface).discoverer(2, 4).Discover(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, slides, 1)
	assert.Equal(t, "https://example.com/img/C.png", slides[0].Signature.ImageLocator)
}

// retitlingSurface changes every slide title on each read, the way a
// carousel that rotates captions over a fixed image does.
type retitlingSurface struct {
	*testutil.FakeSurface
	reads int
}

func (s *retitlingSurface) SlideNodes(ctx context.Context) ([]entity.SlideNode, error) {
	nodes, err := s.FakeSurface.SlideNodes(ctx)
	s.reads++
	for i := range nodes {
		nodes[i].Title = fmt.Sprintf("%s (read %d)", nodes[i].Title, s.reads)
	}
	return nodes, err
}

func TestTitleChangesDoNotSplitSlides(t *testing.T) {
	fake := testutil.NewFakeSurface(origin, fixtureSlides(3)...)
	surface := &retitlingSurface{FakeSurface: fake}
	base, _ := url.Parse(origin)
	reader := NewReader(surface, base)
	advancer := NewAdvancer(surface, reader, 2*time.Millisecond, zap.NewNop())
	discoverer := NewDiscoverer(reader, advancer, DiscoverOptions{
		GuardFactor:   3,
		MinGuard:      9,
		ChangeTimeout: 40 * time.Millisecond,
	}, zap.NewNop())

	slides, err := discoverer.Discover(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{locatorOf(0), locatorOf(1), locatorOf(2)}, locators(slides))

	target := slides[1].Signature
	p, ok := NewAligner(reader, advancer, 40*time.Millisecond, zap.NewNop()).AlignTo(context.Background(), target, 3)
	require.True(t, ok)
	assert.NotEqual(t, target.Title, p.Signature.Title)
	assert.True(t, p.Signature.SameSlide(target))
}

func TestDiscoverStuckCarouselIsBounded(t *testing.T) {
	surface := testutil.NewFakeSurface(origin, fixtureSlides(3)...)
	surface.Stuck = true

	slides, err := newKit(surface).discoverer(2, 20).Discover(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, slides, 1)
	assert.Equal(t, 6, surface.Advances())
}

func TestDiscoverHonorsCancellation(t *testing.T) {
	surface := testutil.NewFakeSurface(origin, fixtureSlides(3)...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newKit(surface).discoverer(5, 20).Discover(ctx, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAlignToEverySlide(t *testing.T) {
	const n = 5
	surface := testutil.NewFakeSurface(origin, fixtureSlides(n)...)
	k := newKit(surface)

	for target := n - 1; target >= 0; target-- {
		sig := entity.SlideSignature{ImageLocator: locatorOf(target)}
		p, ok := k.aligner().AlignTo(context.Background(), sig, n)
		require.True(t, ok, "target %d", target)
		assert.Equal(t, locatorOf(target), p.Signature.ImageLocator)
		assert.Equal(t, target, p.Handle)
	}
}

func TestAlignToIsBounded(t *testing.T) {
	surface := testutil.NewFakeSurface(origin, fixtureSlides(3)...)
	k := newKit(surface)

	_, ok := k.aligner().AlignTo(context.Background(), entity.SlideSignature{ImageLocator: "https://cdn.example.com/gone.png"}, 4)
	assert.False(t, ok)
	assert.Equal(t, 4, surface.Advances())
}

func TestAlignToStuckCarousel(t *testing.T) {
	surface := testutil.NewFakeSurface(origin, fixtureSlides(3)...)
	surface.Stuck = true
	k := newKit(surface)

	_, ok := k.aligner().AlignTo(context.Background(), entity.SlideSignature{ImageLocator: locatorOf(2)}, 3)
	assert.False(t, ok)
	assert.Equal(t, 3, surface.Advances())
	assert.Empty(t, surface.Activations())
}

func TestHintEstimator(t *testing.T) {
	surface := testutil.NewFakeSurface(origin, fixtureSlides(4)...)
	estimator := NewHintEstimator(surface)
	ctx := context.Background()

	surface.Counter = "1 / 7"
	assert.Equal(t, 7, estimator.Estimate(ctx))

	surface.Counter = ""
	assert.Equal(t, 4, estimator.Estimate(ctx))

	empty := testutil.NewFakeSurface(origin)
	assert.Equal(t, 0, NewHintEstimator(empty).Estimate(ctx))
}

func TestParseCounterTotal(t *testing.T) {
	assert.Equal(t, 12, ParseCounterTotal("3 / 12"))
	assert.Equal(t, 5, ParseCounterTotal("01/5"))
	assert.Equal(t, 0, ParseCounterTotal("next"))
	assert.Equal(t, 0, ParseCounterTotal(""))
}

func TestCountSlidesSkipsClones(t *testing.T) {
	nodes := []entity.SlideNode{
		{Classes: []string{"swiper-slide", "swiper-slide-duplicate"}},
		{Classes: []string{"swiper-slide"}},
		{Classes: []string{"swiper-slide", "swiper-slide-active"}},
		{Classes: []string{"swiper-slide", "swiper-slide-duplicate-active"}},
	}
	assert.Equal(t, 2, CountSlides(nodes))
}

func TestDefaultStrategiesOrder(t *testing.T) {
	strategies := DefaultStrategies([]string{"swiper-slide-active"}, "top")
	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"active-class", "top-class", "first-slide"}, names)
}
