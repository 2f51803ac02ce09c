package carousel

import "github.com/user/banner-resolver/internal/entity"

// ActiveSlideStrategy decides which slide node the carousel currently
// presents. Strategies are tried in priority order; markup drift on the
// target site should only require swapping one of them.
type ActiveSlideStrategy interface {
	Name() string
	Pick(nodes []entity.SlideNode) (entity.SlideNode, bool)
}

// ClassStrategy picks the first node carrying any of its marker classes.
type ClassStrategy struct {
	name    string
	classes []string
}

// NewActiveClassStrategy matches "active" marker classes such as
// swiper-slide-active.
func NewActiveClassStrategy(classes ...string) *ClassStrategy {
	return &ClassStrategy{name: "active-class", classes: classes}
}

// NewTopClassStrategy matches the "top" marker used by stacked carousels.
func NewTopClassStrategy(class string) *ClassStrategy {
	return &ClassStrategy{name: "top-class", classes: []string{class}}
}

func (s *ClassStrategy) Name() string {
	return s.name
}

func (s *ClassStrategy) Pick(nodes []entity.SlideNode) (entity.SlideNode, bool) {
	for _, n := range nodes {
		for _, c := range s.classes {
			if c != "" && n.HasClass(c) {
				return n, true
			}
		}
	}
	return entity.SlideNode{}, false
}

// FirstSlideStrategy picks the first slide element present.
type FirstSlideStrategy struct{}

func (FirstSlideStrategy) Name() string {
	return "first-slide"
}

func (FirstSlideStrategy) Pick(nodes []entity.SlideNode) (entity.SlideNode, bool) {
	if len(nodes) == 0 {
		return entity.SlideNode{}, false
	}
	return nodes[0], true
}

// DefaultStrategies returns active marker, then top marker, then first slide.
func DefaultStrategies(activeClasses []string, topClass string) []ActiveSlideStrategy {
	strategies := []ActiveSlideStrategy{NewActiveClassStrategy(activeClasses...)}
	if topClass != "" {
		strategies = append(strategies, NewTopClassStrategy(topClass))
	}
	return append(strategies, FirstSlideStrategy{})
}
