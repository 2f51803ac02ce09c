// Package embedded extracts (image, destination) pairs from the client-side
// data blob of a page and matches slides against them.
package embedded

import (
	"regexp"
	"strings"

	"github.com/user/banner-resolver/pkg/utils"
)

// Kind is the classification of a string found in the blob.
type Kind int

const (
	Neither Kind = iota
	ImageLike
	PathLike
)

var imageExtPattern = regexp.MustCompile(`(?i)\.(?:png|jpg|jpeg|webp|gif)(?:\?.*)?$`)

// Classify reports whether s addresses an image, addresses a page, or neither.
// Image-like wins over path-like.
func Classify(s string) Kind {
	s = strings.TrimSpace(s)
	if s == "" {
		return Neither
	}
	if imageExtPattern.MatchString(s) || utils.IsImageProxy(s) {
		return ImageLike
	}
	if isPathLike(s) {
		return PathLike
	}
	return Neither
}

func isPathLike(s string) bool {
	if len(s) < 2 || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	return strings.HasPrefix(s, "/") ||
		strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://")
}
