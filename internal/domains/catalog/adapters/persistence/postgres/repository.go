package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shopkit/go-shop-api-server/internal/domains/catalog/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists catalog articles in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&articleRecord{})
	}
	return repo
}

type articleRecord struct {
	ID        int64   `gorm:"primaryKey;column:id"`
	Name      string  `gorm:"column:name;index"`
	Price     float64 `gorm:"column:price"`
	Available bool    `gorm:"column:available;index"`
}

func (articleRecord) TableName() string { return "articles" }

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Article, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record articleRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Article, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []articleRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(records), nil
}

func (r *Repository) FindByName(ctx context.Context, name string) ([]*domain.Article, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []articleRecord
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(records), nil
}

func (r *Repository) ListAvailable(ctx context.Context) ([]*domain.Article, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []articleRecord
	if err := r.db.WithContext(ctx).Where("available").Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(records), nil
}

// SlowSellers orders available articles by total units sold, ascending.
// Articles that never appear on an order line rank first.
func (r *Repository) SlowSellers(ctx context.Context, limit int) ([]*domain.Article, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []articleRecord
	query := r.db.WithContext(ctx).
		Table("articles").
		Select("articles.*").
		Joins("LEFT JOIN order_lines l ON l.article_id = articles.id").
		Where("articles.available").
		Group("articles.id").
		Order("COALESCE(SUM(l.quantity), 0), articles.id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(records), nil
}

func (r *Repository) Insert(ctx context.Context, article *domain.Article) (*domain.Article, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := articleRecord{
		Name:      article.Name,
		Price:     article.Price,
		Available: article.Available,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres article repository not configured")
	}
	return nil
}

func (r articleRecord) toDomain() *domain.Article {
	return &domain.Article{
		ID:        r.ID,
		Name:      r.Name,
		Price:     r.Price,
		Available: r.Available,
	}
}

func toDomainSlice(records []articleRecord) []*domain.Article {
	articles := make([]*domain.Article, 0, len(records))
	for i := range records {
		articles = append(articles, records[i].toDomain())
	}
	return articles
}
