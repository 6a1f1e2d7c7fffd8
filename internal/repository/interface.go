package repository

import (
	"context"
	"errors"
	"time"

	"github.com/reviewrelay/review-relay/internal/model"
)

// ErrDuplicateCode is returned by LinkStore.Create when the short code is
// already taken. Callers treat it as a collision and retry with a new code.
var ErrDuplicateCode = errors.New("short code already exists")

// LinkStore persists short-code to payload mappings
type LinkStore interface {
	Create(ctx context.Context, link *model.ShortLink) error
	GetByCode(ctx context.Context, shortCode string) (*model.ShortLink, error)
	IncrementClicks(ctx context.Context, shortCode string) error
	// AllCodes lists every issued short code, used to warm the code filter
	// at startup.
	AllCodes(ctx context.Context) ([]string, error)
	// DeleteExpired removes links past expiry or created before olderThan.
	// Intended for an external sweep job, not the request path.
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// ReviewStore persists submitted review records
type ReviewStore interface {
	Create(ctx context.Context, review *model.Review) error
	GetByID(ctx context.Context, id int64) (*model.Review, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}
