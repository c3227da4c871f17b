package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alexanderramin/roadmap/internal/domain"
)

const (
	cacheKeyActive = "active"
	cacheKeyAll    = "all"
)

// CachedProjectRepo decorates a ProjectRepo with an offline-tolerant read
// path: successful lists are remembered, and reads fall back to the cache
// when the backing store fails. Writes go straight through and invalidate.
type CachedProjectRepo struct {
	ProjectRepo
	cache  ProjectCache
	logger *slog.Logger
}

var _ ProjectRepo = (*CachedProjectRepo)(nil)

// CacheInvalidator is implemented by project repos holding a snapshot that
// writes made around them, such as a transactional import, must clear.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

var _ CacheInvalidator = (*CachedProjectRepo)(nil)

func NewCachedProjectRepo(inner ProjectRepo, cache ProjectCache, logger *slog.Logger) *CachedProjectRepo {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedProjectRepo{ProjectRepo: inner, cache: cache, logger: logger}
}

func listKey(includeArchived bool) string {
	if includeArchived {
		return cacheKeyAll
	}
	return cacheKeyActive
}

func (r *CachedProjectRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	key := listKey(includeArchived)
	projects, err := r.ProjectRepo.List(ctx, includeArchived)
	if err == nil {
		if storeErr := r.cache.Store(ctx, key, projects); storeErr != nil {
			r.logger.WarnContext(ctx, "project_cache_store_failed", "key", key, "error", storeErr.Error())
		}
		return projects, nil
	}

	cached, cacheErr := r.cache.Load(ctx, key)
	if cacheErr != nil {
		return nil, err
	}
	r.logger.WarnContext(ctx, "project_list_served_from_cache", "key", key, "error", err.Error())
	return cached, nil
}

func (r *CachedProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	p, err := r.ProjectRepo.GetByID(ctx, id)
	if err == nil || errors.Is(err, ErrNotFound) {
		return p, err
	}
	if cached := r.findCached(ctx, func(p *domain.Project) bool { return p.ID == id }); cached != nil {
		r.logger.WarnContext(ctx, "project_served_from_cache", "project_id", id, "error", err.Error())
		return cached, nil
	}
	return nil, err
}

func (r *CachedProjectRepo) GetByShortID(ctx context.Context, shortID string) (*domain.Project, error) {
	p, err := r.ProjectRepo.GetByShortID(ctx, shortID)
	if err == nil || errors.Is(err, ErrNotFound) {
		return p, err
	}
	if cached := r.findCached(ctx, func(p *domain.Project) bool { return strings.EqualFold(p.ShortID, shortID) }); cached != nil {
		r.logger.WarnContext(ctx, "project_served_from_cache", "short_id", shortID, "error", err.Error())
		return cached, nil
	}
	return nil, err
}

func (r *CachedProjectRepo) findCached(ctx context.Context, match func(*domain.Project) bool) *domain.Project {
	for _, key := range []string{cacheKeyAll, cacheKeyActive} {
		list, err := r.cache.Load(ctx, key)
		if err != nil {
			continue
		}
		for _, p := range list {
			if match(p) {
				return p
			}
		}
	}
	return nil
}

func (r *CachedProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	return r.afterWrite(ctx, r.ProjectRepo.Create(ctx, p))
}

func (r *CachedProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	return r.afterWrite(ctx, r.ProjectRepo.Update(ctx, p))
}

func (r *CachedProjectRepo) Archive(ctx context.Context, id string) error {
	return r.afterWrite(ctx, r.ProjectRepo.Archive(ctx, id))
}

func (r *CachedProjectRepo) Unarchive(ctx context.Context, id string) error {
	return r.afterWrite(ctx, r.ProjectRepo.Unarchive(ctx, id))
}

func (r *CachedProjectRepo) Delete(ctx context.Context, id string) error {
	return r.afterWrite(ctx, r.ProjectRepo.Delete(ctx, id))
}

// Invalidate drops the snapshot after projects were written through another repo.
func (r *CachedProjectRepo) Invalidate(ctx context.Context) error {
	return r.afterWrite(ctx, nil)
}

func (r *CachedProjectRepo) afterWrite(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	if invErr := r.cache.Invalidate(ctx); invErr != nil {
		return fmt.Errorf("invalidating project cache: %w", invErr)
	}
	return nil
}
