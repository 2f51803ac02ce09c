package embedded

import (
	"fmt"

	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
	"github.com/user/banner-resolver/pkg/utils"
)

// ExtractPairs walks every object of the blob depth-first, pre-order. An
// object holding both image-like and path-like strings pairs each image with
// its first path-like string. Pairs come back deduplicated by
// (basename, destination) in first-seen order.
func ExtractPairs(raw string) ([]entity.EmbeddedPair, error) {
	root, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: embedded data: %v", repository.ErrUpstreamParse, err)
	}

	var (
		pairs []entity.EmbeddedPair
		seen  = make(map[entity.EmbeddedPair]struct{})
	)
	walk(root, func(obj *object) {
		var images []string
		link := ""
		for _, v := range obj.values {
			s, ok := v.(string)
			if !ok {
				continue
			}
			switch Classify(s) {
			case ImageLike:
				images = append(images, s)
			case PathLike:
				if link == "" {
					link = s
				}
			}
		}
		if link == "" {
			return
		}
		for _, img := range images {
			p := entity.EmbeddedPair{ImageLocatorBasename: utils.Basename(utils.UnwrapImageProxy(img)), Destination: link}
			if p.ImageLocatorBasename == "" {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			pairs = append(pairs, p)
		}
	})
	return pairs, nil
}

func walk(v any, visit func(*object)) {
	switch t := v.(type) {
	case *object:
		visit(t)
		for _, child := range t.values {
			walk(child, visit)
		}
	case []any:
		for _, child := range t {
			walk(child, visit)
		}
	}
}
