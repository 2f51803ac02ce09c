package repository

import "errors"

var (
	// ErrReadUnavailable means the presented slide could not be read. Loops retry it.
	ErrReadUnavailable = errors.New("slide signature unavailable")
	// ErrAlignmentExhausted means the target slide did not reappear within the step budget.
	ErrAlignmentExhausted = errors.New("alignment exhausted")
	// ErrActivationFailed means clicking a slide or observing its result failed.
	ErrActivationFailed = errors.New("activation failed")
	// ErrFallbackExhausted means no embedded pair or fuzzy candidate matched.
	ErrFallbackExhausted = errors.New("fallback exhausted")
	// ErrCarouselNotFound means the page shows no slide element at all.
	ErrCarouselNotFound = errors.New("carousel not found")

	ErrUpstreamFetch = errors.New("upstream fetch failed")
	ErrUpstreamParse = errors.New("upstream parse failed")

	ErrUpload           = errors.New("upload failed")
	ErrFolderNotFound   = errors.New("upload folder not found")
	ErrNotAFolder       = errors.New("upload target is not a folder")
	ErrPermissionDenied = errors.New("upload permission denied")

	ErrRunInProgress = errors.New("a run is already in progress")
)
