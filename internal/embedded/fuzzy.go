package embedded

import (
	"sort"

	"github.com/antzucaro/matchr"
)

// minFuzzyScore is the floor of the acceptance threshold, in runes.
const minFuzzyScore = 5

// BestMatch returns the candidate key sharing the longest common substring
// with target. The best score must reach max(5, len(target)/3) runes. Ties go
// to the higher Jaro-Winkler similarity, then to the lexicographically
// smaller key.
func BestMatch(target string, candidates map[string][]string) (string, bool) {
	if target == "" || len(candidates) == 0 {
		return "", false
	}

	keys := make([]string, 0, len(candidates))
	for k := range candidates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		best      string
		bestScore = -1
		bestSim   float64
	)
	for _, k := range keys {
		score := LongestCommonSubstring(target, k)
		if score < bestScore {
			continue
		}
		sim := matchr.JaroWinkler(target, k, false)
		if score == bestScore && sim <= bestSim {
			continue
		}
		best, bestScore, bestSim = k, score, sim
	}

	threshold := len([]rune(target)) / 3
	if threshold < minFuzzyScore {
		threshold = minFuzzyScore
	}
	if bestScore < threshold {
		return "", false
	}
	return best, true
}

// LongestCommonSubstring returns the length in runes of the longest
// contiguous run shared by a and b.
func LongestCommonSubstring(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	longest := 0
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > longest {
					longest = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return longest
}
