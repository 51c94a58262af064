package settings

import (
	"context"
	"errors"
	"time"

	"github.com/seatbook/seatbook-api/internal/pkg/logger"
)

// Delay before the cache is cleared a second time after an update. A
// reader that loaded the old values before the update may have cached them
// in between.
const defaultReinvalidateAfter = 2 * time.Second

// Service serves typed settings snapshots, cache-aside.
type Service struct {
	repo              Repository
	cache             Cache
	reinvalidateAfter time.Duration
}

// NewService creates settings service
func NewService(repo Repository, cache Cache) *Service {
	if cache == nil {
		cache = noCache{}
	}
	return &Service{repo: repo, cache: cache, reinvalidateAfter: defaultReinvalidateAfter}
}

// Snapshot returns the current settings. Cache failures fall through to
// the database.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	cached, err := s.cache.Get(ctx)
	if err == nil {
		return *cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		logger.LogWarn(ctx, "Settings cache read failed", "error", err.Error())
	}

	values, err := s.repo.All(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snapshot := FromValues(values)

	if err := s.cache.Set(ctx, snapshot); err != nil {
		logger.LogWarn(ctx, "Settings cache write failed", "error", err.Error())
	}
	return snapshot, nil
}

// Update writes the keys req sets and invalidates the cache. Keys the
// request leaves out are not rewritten, so concurrent partial updates of
// different keys both survive.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (Snapshot, error) {
	values, err := s.repo.All(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if err := req.Apply(FromValues(values)).Validate(); err != nil {
		return Snapshot{}, err
	}

	changed := req.Values()
	if len(changed) > 0 {
		if err := s.repo.Upsert(ctx, changed); err != nil {
			return Snapshot{}, err
		}
	}
	s.invalidate(ctx)
	s.invalidateLater()

	values, err = s.repo.All(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	next := FromValues(values)

	logger.LogInfo(ctx, "Platform settings updated",
		"keys", len(changed),
		"tax_percentage", next.TaxPercent,
		"platform_fee", next.PlatformFee.String(),
		"commission_percentage", next.CommissionPercent,
	)
	return next, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.LogError(ctx, err, "Settings cache invalidation failed")
	}
}

func (s *Service) invalidateLater() {
	if s.reinvalidateAfter <= 0 {
		return
	}
	time.AfterFunc(s.reinvalidateAfter, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.invalidate(ctx)
	})
}
