package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/reviewrelay/review-relay/config"
	"github.com/reviewrelay/review-relay/internal/cache"
	"github.com/reviewrelay/review-relay/internal/filter"
	"github.com/reviewrelay/review-relay/internal/model"
	"github.com/reviewrelay/review-relay/internal/repository"
)

// ErrCodeExhausted is returned when every generation attempt collided.
// With a 36^6 code space this is effectively unreachable; callers keep a
// non-persisted fallback link anyway.
var ErrCodeExhausted = errors.New("failed to generate a unique short code")

// CodeGenerator produces candidate short codes
type CodeGenerator interface {
	Generate() (string, error)
}

// ShortLinkService issues short codes for review payloads and resolves them
// back, enforcing expiry and counting clicks.
type ShortLinkService struct {
	store       repository.LinkStore
	cache       *cache.RedisCache  // optional
	codes       *filter.CodeFilter // optional
	gen         CodeGenerator
	maxAttempts int
	expiry      time.Duration
}

// NewShortLinkService creates a new short link service. cache and codes may
// be nil; both are read-path accelerators, not correctness requirements.
func NewShortLinkService(store repository.LinkStore, cache *cache.RedisCache, codes *filter.CodeFilter, gen CodeGenerator, cfg *config.ShortLinkConfig) *ShortLinkService {
	return &ShortLinkService{
		store:       store,
		cache:       cache,
		codes:       codes,
		gen:         gen,
		maxAttempts: cfg.MaxAttempts,
		expiry:      time.Duration(cfg.DefaultExpiryHours) * time.Hour,
	}
}

// CreateLinkParams describes the payload stored behind a short code
type CreateLinkParams struct {
	ReviewText   string
	CustomerName string
	ShopName     *string
	ProductName  *string
	// ExpiresInHours overrides the configured default when positive
	ExpiresInHours int
}

// Create stores the payload under a fresh short code and returns the code.
// Collisions, whether caught by the existence pre-check or by the unique-key
// constraint on insert, trigger a regenerate-and-retry up to the configured
// attempt budget.
func (s *ShortLinkService) Create(ctx context.Context, params CreateLinkParams) (string, error) {
	if strings.TrimSpace(params.ReviewText) == "" {
		return "", fmt.Errorf("review text is required")
	}

	expiry := s.expiry
	if params.ExpiresInHours > 0 {
		expiry = time.Duration(params.ExpiresInHours) * time.Hour
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		code, err := s.gen.Generate()
		if err != nil {
			return "", fmt.Errorf("failed to generate short code: %w", err)
		}

		existing, err := s.store.GetByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if existing != nil {
			continue
		}

		expiresAt := time.Now().Add(expiry)
		link := &model.ShortLink{
			ShortCode:    code,
			ReviewText:   params.ReviewText,
			CustomerName: params.CustomerName,
			ShopName:     params.ShopName,
			ProductName:  params.ProductName,
			ExpiresAt:    &expiresAt,
		}

		if err := s.store.Create(ctx, link); err != nil {
			if errors.Is(err, repository.ErrDuplicateCode) {
				// Lost a check-then-insert race; the constraint is the arbiter
				continue
			}
			return "", err
		}

		if s.codes != nil {
			s.codes.Add(code)
		}
		s.cachePayload(ctx, link)

		return code, nil
	}

	return "", ErrCodeExhausted
}

// Resolve returns the payload behind a short code and increments its click
// counter. Missing and expired codes both resolve to (nil, nil); the caller
// cannot tell which, so expired links do not leak their existence.
//
// The code filter only sees codes created through this instance plus the
// startup warm-up, so the negative short-circuit assumes a single-instance
// deployment. Run without a filter when scaling out.
func (s *ShortLinkService) Resolve(ctx context.Context, shortCode string) (*model.LinkPayload, error) {
	if s.codes != nil && !s.codes.MightContain(shortCode) {
		return nil, nil
	}

	if s.cache != nil {
		payload, err := s.cache.GetPayload(ctx, shortCode)
		if err != nil {
			log.Printf("link cache read failed for %q: %v", shortCode, err)
		} else if payload != nil {
			s.countClick(ctx, shortCode)
			return payload, nil
		}
	}

	link, err := s.store.GetByCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	if link == nil || link.IsExpired() {
		return nil, nil
	}

	s.countClick(ctx, shortCode)
	s.cachePayload(ctx, link)

	return link.Payload(), nil
}

// WarmCodeFilter loads every issued short code into the code filter.
// Called once at startup.
func (s *ShortLinkService) WarmCodeFilter(ctx context.Context) error {
	if s.codes == nil {
		return nil
	}
	codes, err := s.store.AllCodes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load short codes: %w", err)
	}
	s.codes.AddBatch(codes)
	log.Printf("code filter warmed with %d short codes", len(codes))
	return nil
}

// countClick records one successful resolution. The counter is display-only,
// so a failed increment is logged rather than failing the redirect.
func (s *ShortLinkService) countClick(ctx context.Context, shortCode string) {
	if err := s.store.IncrementClicks(ctx, shortCode); err != nil {
		log.Printf("failed to count click for %q: %v", shortCode, err)
	}
}

// cachePayload caches the payload with a TTL capped at the remaining
// lifetime so an expired link can never be served from cache.
func (s *ShortLinkService) cachePayload(ctx context.Context, link *model.ShortLink) {
	if s.cache == nil {
		return
	}
	ttl := cache.DefaultTTL
	if link.ExpiresAt != nil {
		if remaining := time.Until(*link.ExpiresAt); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		return
	}
	if err := s.cache.SetPayload(ctx, link.ShortCode, link.Payload(), ttl); err != nil {
		log.Printf("link cache write failed for %q: %v", link.ShortCode, err)
	}
}
