package ports

import (
	"context"
	"errors"

	"github.com/shopkit/go-shop-api-server/internal/domains/catalog/domain"
)

var ErrNotFound = errors.New("article not found")

// Repository persists catalog articles.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Article, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Article, error)
	FindByName(ctx context.Context, name string) ([]*domain.Article, error)
	ListAvailable(ctx context.Context) ([]*domain.Article, error)
	// SlowSellers lists available articles with the fewest ordered units,
	// ascending, capped at limit.
	SlowSellers(ctx context.Context, limit int) ([]*domain.Article, error)
	Insert(ctx context.Context, article *domain.Article) (*domain.Article, error)
}

// Service defines the catalog use cases (driving port).
type Service interface {
	FindByID(ctx context.Context, id int64) (*domain.Article, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*domain.Article, error)
	// FindByName searches by exact name; a blank name lists all available
	// articles instead.
	FindByName(ctx context.Context, name string) ([]*domain.Article, error)
	FindAvailable(ctx context.Context) ([]*domain.Article, error)
	FindSlowSellers(ctx context.Context, limit int) ([]*domain.Article, error)
	Create(ctx context.Context, article *domain.Article) (*domain.Article, error)
}
