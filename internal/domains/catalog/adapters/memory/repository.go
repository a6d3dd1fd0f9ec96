package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopkit/go-shop-api-server/internal/domains/catalog/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// SalesIndex resolves how many units of an article were ordered. Order data
// lives outside the catalog context, so the index is bound from outside.
type SalesIndex interface {
	UnitsOrderedFor(articleID int64) int64
}

// Repository is an in-memory catalog persistence adapter.
type Repository struct {
	mu       sync.RWMutex
	articles map[int64]*domain.Article
	nextID   int64
	sales    SalesIndex
}

func NewRepository() *Repository {
	return &Repository{articles: map[int64]*domain.Article{}}
}

// BindSales attaches the sales index used for slow-seller queries.
func (r *Repository) BindSales(index SalesIndex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales = index
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	article, ok := r.articles[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *article
	return &clone, nil
}

func (r *Repository) GetByIDs(_ context.Context, ids []int64) ([]*domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*domain.Article, 0, len(ids))
	for _, id := range ids {
		if article, ok := r.articles[id]; ok {
			clone := *article
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *Repository) FindByName(_ context.Context, name string) ([]*domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Article
	for _, article := range r.articles {
		if article.Name == name {
			clone := *article
			result = append(result, &clone)
		}
	}
	sortByID(result)
	return result, nil
}

func (r *Repository) ListAvailable(_ context.Context) ([]*domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Article
	for _, article := range r.articles {
		if article.Available {
			clone := *article
			result = append(result, &clone)
		}
	}
	sortByID(result)
	return result, nil
}

func (r *Repository) SlowSellers(_ context.Context, limit int) ([]*domain.Article, error) {
	available, _ := r.ListAvailable(nil)
	r.mu.RLock()
	sales := r.sales
	r.mu.RUnlock()
	units := func(id int64) int64 {
		if sales == nil {
			return 0
		}
		return sales.UnitsOrderedFor(id)
	}
	sort.SliceStable(available, func(i, j int) bool {
		return units(available[i].ID) < units(available[j].ID)
	})
	if limit > 0 && len(available) > limit {
		available = available[:limit]
	}
	return available, nil
}

func (r *Repository) Insert(_ context.Context, article *domain.Article) (*domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *article
	stored.ID = r.nextID
	r.articles[stored.ID] = &stored
	clone := stored
	return &clone, nil
}

func sortByID(articles []*domain.Article) {
	sort.Slice(articles, func(i, j int) bool { return articles[i].ID < articles[j].ID })
}
