// Package dom reads banner markup and the embedded data blob out of a static
// HTML document.
package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/banner-resolver/internal/entity"
)

const (
	DefaultSlideSelector = ".main-banner-ggs"
	BackupSlideSelector  = ".swiper .swiper-slide, .banner, .main-banner, .main_banner"
	DefaultBlobSelector  = "script#__NEXT_DATA__"
)

// CollectSlides snapshots banner nodes holding an image. Selectors are tried
// in order and the first one matching anything wins; with none given the
// primary and backup banner selectors are used.
func CollectSlides(html string, selectors ...string) ([]entity.SlideNode, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	if len(selectors) == 0 {
		selectors = []string{DefaultSlideSelector, BackupSlideSelector}
	}

	var candidates *goquery.Selection
	for _, sel := range selectors {
		if sel == "" {
			continue
		}
		if found := doc.Find(sel); found.Length() > 0 {
			candidates = found
			break
		}
	}
	if candidates == nil {
		return nil, nil
	}

	var nodes []entity.SlideNode
	candidates.Each(func(i int, s *goquery.Selection) {
		img := s.Find("img").First()
		if img.Length() == 0 {
			return
		}
		alt, _ := img.Attr("alt")
		src, _ := img.Attr("src")
		srcset, _ := img.Attr("srcset")
		class, _ := s.Attr("class")
		nodes = append(nodes, entity.SlideNode{
			Index:   i,
			Classes: strings.Fields(class),
			Title:   strings.TrimSpace(alt),
			Src:     strings.TrimSpace(src),
			Srcset:  srcset,
			Href:    anchorHref(s),
			Visible: true,
		})
	})
	return nodes, nil
}

// anchorHref returns the href of the anchor enclosing the node, or of the
// first anchor inside it.
func anchorHref(s *goquery.Selection) string {
	if href, ok := s.Closest("a[href]").Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	if href, ok := s.Find("a[href]").First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	return ""
}

// ExtractBlob returns the text of the first node matching selector. The bool
// is false when no such node exists or it is empty.
func ExtractBlob(html, selector string) (string, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false, err
	}
	if selector == "" {
		selector = DefaultBlobSelector
	}
	text := strings.TrimSpace(doc.Find(selector).First().Text())
	return text, text != "", nil
}
