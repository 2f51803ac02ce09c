package embedded

import (
	"sort"

	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/pkg/utils"
)

// Index maps image basenames to their sorted, unique destinations.
type Index struct {
	byBasename map[string][]string
}

func NewIndex(pairs []entity.EmbeddedPair) *Index {
	sets := make(map[string]map[string]struct{})
	for _, p := range pairs {
		if p.ImageLocatorBasename == "" || p.Destination == "" {
			continue
		}
		set, ok := sets[p.ImageLocatorBasename]
		if !ok {
			set = make(map[string]struct{})
			sets[p.ImageLocatorBasename] = set
		}
		set[p.Destination] = struct{}{}
	}

	idx := &Index{byBasename: make(map[string][]string, len(sets))}
	for base, set := range sets {
		dests := make([]string, 0, len(set))
		for d := range set {
			dests = append(dests, d)
		}
		sort.Strings(dests)
		idx.byBasename[base] = dests
	}
	return idx
}

// Len returns the number of distinct basenames.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.byBasename)
}

// Exact returns the lexicographically first destination paired with the
// locator's basename.
func (i *Index) Exact(locator string) (string, bool) {
	if i.Len() == 0 {
		return "", false
	}
	dests, ok := i.byBasename[utils.Basename(locator)]
	if !ok || len(dests) == 0 {
		return "", false
	}
	return dests[0], true
}

// Fuzzy returns the first destination of the basename that best matches the
// locator's basename.
func (i *Index) Fuzzy(locator string) (string, bool) {
	if i.Len() == 0 {
		return "", false
	}
	base := utils.Basename(locator)
	if base == "" {
		return "", false
	}
	key, ok := BestMatch(base, i.byBasename)
	if !ok {
		return "", false
	}
	return i.byBasename[key][0], true
}
