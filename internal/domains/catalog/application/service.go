package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopkit/go-shop-api-server/internal/domains/catalog/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/catalog/ports"
)

// DefaultSlowSellerLimit caps slow-seller listings when no limit is given.
const DefaultSlowSellerLimit = 5

var ErrInvalidInput = errors.New("invalid article input")

// Service orchestrates the catalog use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// FindByID loads an article. A missing article is a normal nil result.
func (s *Service) FindByID(ctx context.Context, id int64) (*domain.Article, error) {
	article, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	return article, err
}

func (s *Service) FindByIDs(ctx context.Context, ids []int64) ([]*domain.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.repo.GetByIDs(ctx, ids)
}

// FindByName searches by exact name. A blank name degrades to the available
// listing so empty search forms still render a catalog.
func (s *Service) FindByName(ctx context.Context, name string) ([]*domain.Article, error) {
	if strings.TrimSpace(name) == "" {
		return s.repo.ListAvailable(ctx)
	}
	return s.repo.FindByName(ctx, name)
}

func (s *Service) FindAvailable(ctx context.Context) ([]*domain.Article, error) {
	return s.repo.ListAvailable(ctx)
}

func (s *Service) FindSlowSellers(ctx context.Context, limit int) ([]*domain.Article, error) {
	if limit <= 0 {
		limit = DefaultSlowSellerLimit
	}
	return s.repo.SlowSellers(ctx, limit)
}

func (s *Service) Create(ctx context.Context, article *domain.Article) (*domain.Article, error) {
	if article == nil {
		return nil, nil
	}
	if err := article.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	article.ID = domain.NoID
	return s.repo.Insert(ctx, article)
}

var _ ports.Service = (*Service)(nil)
