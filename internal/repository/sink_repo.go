package repository

import (
	"context"

	"github.com/user/banner-resolver/internal/entity"
)

// RecordSink persists the final dataset locally.
type RecordSink interface {
	// Write stores records and returns the path written.
	Write(ctx context.Context, records []entity.BannerRecord) (string, error)
}
