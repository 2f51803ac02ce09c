package repository

import "context"

// PageFetcher retrieves a document over plain HTTP, decoded to UTF-8.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
