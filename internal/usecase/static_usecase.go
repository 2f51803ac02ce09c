package usecase

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/carousel"
	"github.com/user/banner-resolver/internal/dom"
	"github.com/user/banner-resolver/internal/embedded"
	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
	"github.com/user/banner-resolver/pkg/utils"
)

// StaticResolver resolves banners from server-rendered markup alone.
type StaticResolver interface {
	Resolve(html string, index *embedded.Index) ([]entity.BannerRecord, error)
}

type staticUseCase struct {
	base      *url.URL
	selectors []string
	logger    *zap.Logger
}

// NewStaticUseCase creates a StaticResolver. Empty selectors use the default
// banner selectors.
func NewStaticUseCase(base *url.URL, selectors []string, logger *zap.Logger) StaticResolver {
	return &staticUseCase{base: base, selectors: selectors, logger: logger.Named("static")}
}

func (uc *staticUseCase) Resolve(html string, index *embedded.Index) ([]entity.BannerRecord, error) {
	nodes, err := dom.CollectSlides(html, uc.selectors...)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, repository.ErrCarouselNotFound
	}

	seen := make(map[string]struct{})
	var records []entity.BannerRecord
	for _, node := range nodes {
		sig := carousel.SignatureOf(node, uc.base)
		if sig.Empty() || embedded.Classify(sig.ImageLocator) != embedded.ImageLike {
			continue
		}
		if _, dup := seen[sig.ImageLocator]; dup {
			continue
		}
		seen[sig.ImageLocator] = struct{}{}

		record := entity.BannerRecord{Title: sig.Title, ImageLocator: sig.ImageLocator}
		if dest := uc.anchorDestination(node.Href); dest != "" {
			record.Destination, record.Source = dest, entity.SourceDOMAnchor
		} else {
			record.Destination, record.Source = lookupFallback(index, sig)
		}
		uc.logger.Debug("banner collected",
			zap.String("locator", record.ImageLocator),
			zap.String("source", string(record.Source)))
		records = append(records, record)
	}
	return records, nil
}

// anchorDestination returns href as an absolute address, or "" for hrefs
// that do not navigate.
func (uc *staticUseCase) anchorDestination(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	abs, err := utils.ToAbsoluteURL(uc.base, href)
	if err != nil {
		return ""
	}
	return abs
}
