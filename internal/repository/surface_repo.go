package repository

import (
	"context"
	"time"

	"github.com/user/banner-resolver/internal/entity"
)

// Key names accepted by BrowsingSurface.PressKey.
const (
	KeyArrowRight = "ArrowRight"
)

// BrowsingSurface is the single live tab a run drives. It is a single-owner
// resource: exactly one goroutine may call it at a time.
type BrowsingSurface interface {
	// Location returns the surface's current address.
	Location(ctx context.Context) (string, error)
	// HTML returns the serialized document.
	HTML(ctx context.Context) (string, error)
	// SlideNodes snapshots every slide element of the carousel in DOM order.
	SlideNodes(ctx context.Context) ([]entity.SlideNode, error)
	// CounterText returns the text of the "current / total" indicator, or "".
	CounterText(ctx context.Context) (string, error)
	// ClickNext clicks the carousel's next control. It reports false when the
	// control is missing or not interactable.
	ClickNext(ctx context.Context) (bool, error)
	// PressKey dispatches a key press to the document.
	PressKey(ctx context.Context, key string) error
	// Activate clicks the slide at index and returns the surface opened by the
	// click if one appears within wait, or nil.
	Activate(ctx context.Context, index int, wait time.Duration) (OpenedSurface, error)
	// NavigateBack goes one entry back in history.
	NavigateBack(ctx context.Context) error
	// Navigate loads url and waits for the document body.
	Navigate(ctx context.Context, url string) error
}

// OpenedSurface is a secondary tab opened by an activation. It must be closed
// before control returns to the caller that received it.
type OpenedSurface interface {
	WaitLoaded(ctx context.Context) error
	Location(ctx context.Context) (string, error)
	Close(ctx context.Context) error
}

// SurfaceOpener opens the primary browsing surface at a start address.
type SurfaceOpener interface {
	// Open returns a loaded surface and a release func that closes it.
	Open(ctx context.Context, url string) (BrowsingSurface, func(), error)
}
