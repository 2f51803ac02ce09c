package usecase

import (
	"github.com/user/banner-resolver/internal/embedded"
	"github.com/user/banner-resolver/internal/entity"
)

// lookupFallback resolves a destination from the embedded pair index: exact
// basename first, fuzzy second. It never falls back to the image itself.
func lookupFallback(index *embedded.Index, sig entity.SlideSignature) (string, entity.RecordSource) {
	if dest, ok := index.Exact(sig.ImageLocator); ok {
		return dest, entity.SourceEmbeddedExact
	}
	if dest, ok := index.Fuzzy(sig.ImageLocator); ok {
		return dest, entity.SourceEmbeddedFuzzy
	}
	return "", entity.SourceUnresolved
}
