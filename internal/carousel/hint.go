package carousel

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
)

var counterPattern = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)

// HintEstimator guesses how many slides the carousel holds. The guess is
// often wrong; discovery treats it as a hint only.
type HintEstimator struct {
	surface repository.BrowsingSurface
}

func NewHintEstimator(surface repository.BrowsingSurface) *HintEstimator {
	return &HintEstimator{surface: surface}
}

// Estimate parses the "current / total" counter and falls back to counting
// slide elements. It returns 0 when neither signal is usable.
func (h *HintEstimator) Estimate(ctx context.Context) int {
	if text, err := h.surface.CounterText(ctx); err == nil {
		if total := ParseCounterTotal(text); total > 0 {
			return total
		}
	}
	nodes, err := h.surface.SlideNodes(ctx)
	if err != nil {
		return 0
	}
	return CountSlides(nodes)
}

// ParseCounterTotal extracts the total from text like "3 / 12".
func ParseCounterTotal(text string) int {
	m := counterPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	total, err := strconv.Atoi(m[2])
	if err != nil {
		return 0
	}
	return total
}

// CountSlides counts slide elements, skipping loop clones.
func CountSlides(nodes []entity.SlideNode) int {
	count := 0
	for _, n := range nodes {
		if isClone(n) {
			continue
		}
		count++
	}
	return count
}

func isClone(n entity.SlideNode) bool {
	for _, c := range n.Classes {
		if strings.Contains(c, "duplicate") {
			return true
		}
	}
	return false
}
