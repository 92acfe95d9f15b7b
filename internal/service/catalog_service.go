package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bittutor/bittutor-api/internal/models"
	"github.com/bittutor/bittutor-api/pkg/config"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
)

type catalogRepository interface {
	OfferForUser(ctx context.Context, category string, userID, age int) ([]models.CourseOffer, error)
	WishListForUser(ctx context.Context, userID int) ([]models.CourseOffer, error)
}

type viewerRepository interface {
	FindByID(ctx context.Context, id int) (*models.User, error)
}

// CatalogService serves the ranked course offer and wishlist views. Offer
// responses are optionally cached in Redis, keyed by viewer and category,
// because the ranking query joins five tables.
type CatalogService struct {
	repo       catalogRepository
	users      viewerRepository
	categories categoryFinder
	cache      *redis.Client
	cfg        config.CatalogConfig
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewCatalogService constructs the catalog service. cache and metrics may be nil.
func NewCatalogService(repo catalogRepository, users viewerRepository, categories categoryFinder, cache *redis.Client, cfg config.CatalogConfig, metrics *MetricsService, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, users: users, categories: categories, cache: cache, cfg: cfg, metrics: metrics, logger: logger}
}

func offerCacheKey(userID int, category string) string {
	return fmt.Sprintf("catalog:offer:%d:%s", userID, category)
}

// Offer returns the courses in a category the viewer may see, best-rated
// first. The viewer's own courses, banned, subscribed and completed courses
// are excluded, as are courses whose age range does not include the viewer.
func (s *CatalogService) Offer(ctx context.Context, userID int, category string) ([]models.CourseOffer, error) {
	viewer, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if _, err := s.categories.FindByName(ctx, category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}

	if offers, ok := s.cachedOffer(ctx, userID, category); ok {
		s.metrics.RecordCacheLookup(true)
		return offers, nil
	}
	if s.cfg.CacheEnabled && s.cache != nil {
		s.metrics.RecordCacheLookup(false)
	}

	offers, err := s.repo.OfferForUser(ctx, category, userID, viewer.Age)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute course offer")
	}
	s.storeOffer(ctx, userID, category, offers)
	return offers, nil
}

// WishList returns the viewer's saved courses with the same ranking as Offer.
func (s *CatalogService) WishList(ctx context.Context, userID int) ([]models.CourseOffer, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	offers, err := s.repo.WishListForUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load wishlist")
	}
	return offers, nil
}

// InvalidateOffers drops every cached offer view. Mutating services call it
// when a course appears, disappears or gains a review, so stale rankings live
// at most until the next write rather than a full TTL.
func (s *CatalogService) InvalidateOffers(ctx context.Context) {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, "catalog:offer:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Warn("offer cache invalidation failed", zap.String("key", iter.Val()), zap.Error(err))
			return
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("offer cache scan failed", zap.Error(err))
	}
}

func (s *CatalogService) cachedOffer(ctx context.Context, userID int, category string) ([]models.CourseOffer, bool) {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, offerCacheKey(userID, category)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("offer cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var offers []models.CourseOffer
	if err := json.Unmarshal(raw, &offers); err != nil {
		s.logger.Warn("offer cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return offers, true
}

func (s *CatalogService) storeOffer(ctx context.Context, userID int, category string, offers []models.CourseOffer) {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return
	}
	raw, err := json.Marshal(offers)
	if err != nil {
		return
	}
	ttl := s.cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := s.cache.Set(ctx, offerCacheKey(userID, category), raw, ttl).Err(); err != nil {
		s.logger.Warn("offer cache write failed", zap.Error(err))
	}
}
