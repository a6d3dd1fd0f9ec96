package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shopkit/go-shop-api-server/internal/domains/orders/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM. Lines are owned rows
// of their order; deliveries reference orders through a join table.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&orderRecord{}, &lineRecord{}, &deliveryRecord{}, &deliveryOrderRecord{})
	}
	return repo
}

type orderRecord struct {
	ID         int64     `gorm:"primaryKey;column:id"`
	CustomerID int64     `gorm:"column:customer_id;index"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type lineRecord struct {
	ID        int64 `gorm:"primaryKey;column:id"`
	OrderID   int64 `gorm:"column:order_id;index"`
	ArticleID int64 `gorm:"column:article_id;index"`
	Quantity  int16 `gorm:"column:quantity"`
}

func (lineRecord) TableName() string { return "order_lines" }

type deliveryRecord struct {
	ID     int64  `gorm:"primaryKey;column:id"`
	Number string `gorm:"column:number;index"`
}

func (deliveryRecord) TableName() string { return "deliveries" }

type deliveryOrderRecord struct {
	DeliveryID int64 `gorm:"primaryKey;column:delivery_id"`
	OrderID    int64 `gorm:"primaryKey;column:order_id;index"`
}

func (deliveryOrderRecord) TableName() string { return "delivery_orders" }

// Insert persists an order with its lines in one transaction, allocating
// fresh ids.
func (r *Repository) Insert(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := orderRecord{CustomerID: order.CustomerID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		for i := range order.Lines {
			line := lineRecord{
				OrderID:   record.ID,
				ArticleID: order.Lines[i].ArticleID,
				Quantity:  order.Lines[i].Quantity,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID, ports.FetchOrderOnly)
}

// GetByID fetches an order with its lines; depth selects whether deliveries
// are loaded too.
func (r *Repository) GetByID(ctx context.Context, id int64, depth ports.FetchDepth) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return r.materialize(ctx, &record, depth)
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID int64, depth ports.FetchDepth) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		order, err := r.materialize(ctx, &records[i], depth)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *Repository) CustomerIDByOrder(ctx context.Context, orderID int64) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).Select("id", "customer_id").First(&record, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ports.ErrNotFound
		}
		return 0, err
	}
	return record.CustomerID, nil
}

// InsertDelivery persists a delivery and its order links in one transaction.
func (r *Repository) InsertDelivery(ctx context.Context, delivery *domain.Delivery) (*domain.Delivery, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := deliveryRecord{Number: delivery.Number}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		for _, orderID := range delivery.OrderIDs {
			link := deliveryOrderRecord{DeliveryID: record.ID, OrderID: orderID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	stored := &domain.Delivery{ID: record.ID, Number: record.Number}
	stored.OrderIDs = append(stored.OrderIDs, delivery.OrderIDs...)
	return stored, nil
}

func (r *Repository) FindDeliveriesByNumber(ctx context.Context, number string) ([]*domain.Delivery, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []deliveryRecord
	if err := r.db.WithContext(ctx).
		Where("number = ?", number).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	deliveries := make([]*domain.Delivery, 0, len(records))
	for i := range records {
		delivery := &domain.Delivery{ID: records[i].ID, Number: records[i].Number}
		if err := r.db.WithContext(ctx).Model(&deliveryOrderRecord{}).
			Where("delivery_id = ?", delivery.ID).
			Order("order_id").
			Pluck("order_id", &delivery.OrderIDs).Error; err != nil {
			return nil, err
		}
		deliveries = append(deliveries, delivery)
	}
	return deliveries, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func (r *Repository) materialize(ctx context.Context, record *orderRecord, depth ports.FetchDepth) (*domain.Order, error) {
	order := &domain.Order{
		ID:         record.ID,
		CustomerID: record.CustomerID,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
	var lines []lineRecord
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", record.ID).
		Order("id").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	for i := range lines {
		order.Lines = append(order.Lines, domain.Line{
			ID:        lines[i].ID,
			ArticleID: lines[i].ArticleID,
			Quantity:  lines[i].Quantity,
		})
	}
	if depth == ports.FetchWithDeliveries {
		var deliveryIDs []int64
		if err := r.db.WithContext(ctx).Model(&deliveryOrderRecord{}).
			Where("order_id = ?", record.ID).
			Order("delivery_id").
			Pluck("delivery_id", &deliveryIDs).Error; err != nil {
			return nil, err
		}
		for _, deliveryID := range deliveryIDs {
			var delivery deliveryRecord
			if err := r.db.WithContext(ctx).First(&delivery, "id = ?", deliveryID).Error; err != nil {
				return nil, err
			}
			order.Deliveries = append(order.Deliveries, domain.Delivery{ID: delivery.ID, Number: delivery.Number})
		}
	}
	return order, nil
}
