package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/reviewrelay/review-relay/config"
	"github.com/reviewrelay/review-relay/internal/model"
	"github.com/reviewrelay/review-relay/internal/repository"
	"github.com/stretchr/testify/assert"
)

// memLinkStore is an in-memory LinkStore for service tests
type memLinkStore struct {
	mu         sync.Mutex
	links      map[string]*model.ShortLink
	failCreate bool
}

func newMemLinkStore() *memLinkStore {
	return &memLinkStore{links: make(map[string]*model.ShortLink)}
}

func (s *memLinkStore) Create(_ context.Context, link *model.ShortLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return fmt.Errorf("store unavailable")
	}
	if _, ok := s.links[link.ShortCode]; ok {
		return repository.ErrDuplicateCode
	}
	cp := *link
	s.links[link.ShortCode] = &cp
	return nil
}

func (s *memLinkStore) GetByCode(_ context.Context, shortCode string) (*model.ShortLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[shortCode]
	if !ok {
		return nil, nil
	}
	cp := *link
	return &cp, nil
}

func (s *memLinkStore) IncrementClicks(_ context.Context, shortCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[shortCode]
	if !ok {
		return fmt.Errorf("no such code")
	}
	link.Clicks++
	return nil
}

func (s *memLinkStore) AllCodes(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make([]string, 0, len(s.links))
	for code := range s.links {
		codes = append(codes, code)
	}
	return codes, nil
}

func (s *memLinkStore) DeleteExpired(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for code, link := range s.links {
		if (link.ExpiresAt != nil && link.ExpiresAt.Before(time.Now())) || link.CreatedAt.Before(olderThan) {
			delete(s.links, code)
			n++
		}
	}
	return n, nil
}

func (s *memLinkStore) clicks(shortCode string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if link, ok := s.links[shortCode]; ok {
		return link.Clicks
	}
	return 0
}

// seqGen returns a scripted sequence of codes
type seqGen struct {
	codes []string
	i     int
}

func (g *seqGen) Generate() (string, error) {
	if g.i >= len(g.codes) {
		return "", fmt.Errorf("generator exhausted")
	}
	code := g.codes[g.i]
	g.i++
	return code, nil
}

func linkTestConfig() *config.ShortLinkConfig {
	return &config.ShortLinkConfig{CodeLength: 6, MaxAttempts: 5, DefaultExpiryHours: 168}
}

func TestCreateAndResolveRoundTrip(t *testing.T) {
	store := newMemLinkStore()
	svc := NewShortLinkService(store, nil, nil, &seqGen{codes: []string{"abc123"}}, linkTestConfig())

	shop := "Acme Jewels"
	code, err := svc.Create(context.Background(), CreateLinkParams{
		ReviewText:   "Wonderful experience, highly recommend!",
		CustomerName: "Priya",
		ShopName:     &shop,
	})
	assert.NoError(t, err)
	assert.Equal(t, "abc123", code)

	payload, err := svc.Resolve(context.Background(), code)
	assert.NoError(t, err)
	assert.NotNil(t, payload)
	assert.Equal(t, "Wonderful experience, highly recommend!", payload.ReviewText)
	assert.Equal(t, "Priya", payload.CustomerName)
	assert.Equal(t, "Acme Jewels", *payload.ShopName)
}

func TestCreateSetsExpiry(t *testing.T) {
	store := newMemLinkStore()
	svc := NewShortLinkService(store, nil, nil, &seqGen{codes: []string{"abc123"}}, linkTestConfig())

	_, err := svc.Create(context.Background(), CreateLinkParams{
		ReviewText:   "text long enough",
		CustomerName: "Priya",
	})
	assert.NoError(t, err)

	link, _ := store.GetByCode(context.Background(), "abc123")
	assert.NotNil(t, link.ExpiresAt)
	expected := time.Now().Add(168 * time.Hour)
	assert.WithinDuration(t, expected, *link.ExpiresAt, time.Minute)
}

func TestCreateRejectsEmptyText(t *testing.T) {
	svc := NewShortLinkService(newMemLinkStore(), nil, nil, &seqGen{codes: []string{"abc123"}}, linkTestConfig())

	_, err := svc.Create(context.Background(), CreateLinkParams{ReviewText: "   ", CustomerName: "P"})
	assert.Error(t, err)
}

func TestCreateRetriesOnCollision(t *testing.T) {
	store := newMemLinkStore()
	seeded := &model.ShortLink{ShortCode: "taken1", ReviewText: "existing", CustomerName: "X"}
	assert.NoError(t, store.Create(context.Background(), seeded))

	// Generator first returns the taken code, then a fresh one
	svc := NewShortLinkService(store, nil, nil, &seqGen{codes: []string{"taken1", "fresh2"}}, linkTestConfig())

	code, err := svc.Create(context.Background(), CreateLinkParams{
		ReviewText:   "new review text",
		CustomerName: "Priya",
	})
	assert.NoError(t, err)
	assert.Equal(t, "fresh2", code)
}

func TestCreateTreatsDuplicateKeyAsCollision(t *testing.T) {
	// Losing the check-then-insert race surfaces as ErrDuplicateCode from
	// the insert itself; the service must retry with the next code.
	racing := &racingStore{memLinkStore: newMemLinkStore(), conflictCode: "race99"}
	svc := NewShortLinkService(racing, nil, nil, &seqGen{codes: []string{"race99", "safe42"}}, linkTestConfig())

	code, err := svc.Create(context.Background(), CreateLinkParams{
		ReviewText:   "race condition review",
		CustomerName: "Priya",
	})
	assert.NoError(t, err)
	assert.Equal(t, "safe42", code)
}

// racingStore passes the existence pre-check but rejects the first insert
// of conflictCode with ErrDuplicateCode, as a unique index would.
type racingStore struct {
	*memLinkStore
	conflictCode string
	conflicted   bool
}

func (s *racingStore) Create(ctx context.Context, link *model.ShortLink) error {
	if link.ShortCode == s.conflictCode && !s.conflicted {
		s.conflicted = true
		return repository.ErrDuplicateCode
	}
	return s.memLinkStore.Create(ctx, link)
}

func TestCreateExhaustsRetryBudget(t *testing.T) {
	store := newMemLinkStore()
	assert.NoError(t, store.Create(context.Background(), &model.ShortLink{ShortCode: "stuck1", ReviewText: "x", CustomerName: "X"}))

	gen := &seqGen{codes: []string{"stuck1", "stuck1", "stuck1", "stuck1", "stuck1"}}
	svc := NewShortLinkService(store, nil, nil, gen, linkTestConfig())

	_, err := svc.Create(context.Background(), CreateLinkParams{
		ReviewText:   "never stored",
		CustomerName: "Priya",
	})
	assert.ErrorIs(t, err, ErrCodeExhausted)
}

func TestResolveMissingCode(t *testing.T) {
	svc := NewShortLinkService(newMemLinkStore(), nil, nil, &seqGen{}, linkTestConfig())

	payload, err := svc.Resolve(context.Background(), "nosuch")
	assert.NoError(t, err)
	assert.Nil(t, payload)
}

func TestResolveExpiredCode(t *testing.T) {
	store := newMemLinkStore()
	expired := time.Now().Add(-time.Hour)
	assert.NoError(t, store.Create(context.Background(), &model.ShortLink{
		ShortCode:    "old123",
		ReviewText:   "stale review",
		CustomerName: "Priya",
		ExpiresAt:    &expired,
	}))

	svc := NewShortLinkService(store, nil, nil, &seqGen{}, linkTestConfig())

	// Expired resolves exactly like missing, and does not count a click
	payload, err := svc.Resolve(context.Background(), "old123")
	assert.NoError(t, err)
	assert.Nil(t, payload)
	assert.Equal(t, uint64(0), store.clicks("old123"))
}

func TestResolveCountsClicks(t *testing.T) {
	store := newMemLinkStore()
	svc := NewShortLinkService(store, nil, nil, &seqGen{codes: []string{"click1"}}, linkTestConfig())

	_, err := svc.Create(context.Background(), CreateLinkParams{
		ReviewText:   "count my clicks",
		CustomerName: "Priya",
	})
	assert.NoError(t, err)

	for i := 0; i < 3; i++ {
		payload, err := svc.Resolve(context.Background(), "click1")
		assert.NoError(t, err)
		assert.NotNil(t, payload)
	}
	assert.Equal(t, uint64(3), store.clicks("click1"))

	// A miss leaves counters untouched
	_, _ = svc.Resolve(context.Background(), "missing")
	assert.Equal(t, uint64(3), store.clicks("click1"))
}
