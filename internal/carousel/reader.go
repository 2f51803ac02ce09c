package carousel

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
	"github.com/user/banner-resolver/pkg/utils"
)

// Reader reads the signature of whichever slide is currently presented.
type Reader struct {
	surface    repository.BrowsingSurface
	base       *url.URL
	strategies []ActiveSlideStrategy
}

// NewReader creates a Reader. base resolves relative image addresses; with no
// strategies the defaults for swiper-style markup are used.
func NewReader(surface repository.BrowsingSurface, base *url.URL, strategies ...ActiveSlideStrategy) *Reader {
	if len(strategies) == 0 {
		strategies = DefaultStrategies([]string{"swiper-slide-active", "active"}, "top")
	}
	return &Reader{surface: surface, base: base, strategies: strategies}
}

// Read returns the presented slide. A presented slide without an image yields
// an empty signature and a nil error; callers retry. Handle is -1 when no
// slide node is present.
func (r *Reader) Read(ctx context.Context) (entity.PresentedSlide, error) {
	nodes, err := r.surface.SlideNodes(ctx)
	if err != nil {
		return entity.PresentedSlide{Handle: -1}, fmt.Errorf("%w: %v", repository.ErrReadUnavailable, err)
	}
	for _, s := range r.strategies {
		if node, ok := s.Pick(nodes); ok {
			return entity.PresentedSlide{Signature: SignatureOf(node, r.base), Handle: node.Index}, nil
		}
	}
	return entity.PresentedSlide{Handle: -1}, nil
}

// SignatureOf derives the comparable signature of a slide node.
func SignatureOf(node entity.SlideNode, base *url.URL) entity.SlideSignature {
	src := node.Src
	if strings.TrimSpace(src) == "" {
		src = utils.FirstSrcsetCandidate(node.Srcset)
	}
	locator := utils.NormalizeImageLocator(base, src)
	if locator == "" {
		return entity.SlideSignature{}
	}
	return entity.SlideSignature{Title: strings.TrimSpace(node.Title), ImageLocator: locator}
}
