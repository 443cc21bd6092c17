package themes

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunThemeRepository implements ThemeRepository with optional caching.
type BunThemeRepository struct {
	repo repository.Repository[*Theme]
}

// NewBunThemeRepository creates a theme repository without caching.
func NewBunThemeRepository(db *bun.DB) *BunThemeRepository {
	return NewBunThemeRepositoryWithCache(db, nil, nil)
}

// NewBunThemeRepositoryWithCache creates a theme repository with caching support.
func NewBunThemeRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunThemeRepository {
	base := NewThemeRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunThemeRepository{repo: base}
}

func (r *BunThemeRepository) Create(ctx context.Context, theme *Theme) (*Theme, error) {
	record, err := r.repo.Create(ctx, theme)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunThemeRepository) Update(ctx context.Context, theme *Theme) (*Theme, error) {
	record, err := r.repo.Update(ctx, theme)
	if err != nil {
		return nil, mapRepositoryError(err, "theme", theme.ID.String())
	}
	return record, nil
}

func (r *BunThemeRepository) GetByID(ctx context.Context, id uuid.UUID) (*Theme, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "theme", id.String())
	}
	return record, nil
}

func (r *BunThemeRepository) GetByName(ctx context.Context, name string) (*Theme, error) {
	record, err := r.repo.GetByIdentifier(ctx, name)
	if err != nil {
		return nil, mapRepositoryError(err, "theme", name)
	}
	return record, nil
}

func (r *BunThemeRepository) List(ctx context.Context) ([]*Theme, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
