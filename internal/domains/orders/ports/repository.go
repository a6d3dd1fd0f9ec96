package ports

import (
	"context"
	"errors"

	"github.com/shopkit/go-shop-api-server/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// FetchDepth selects which related collections are loaded with an order.
// Unknown values behave like FetchOrderOnly.
type FetchDepth int

const (
	FetchOrderOnly FetchDepth = iota
	FetchWithDeliveries
)

// Repository persists orders, their owned lines and their deliveries.
type Repository interface {
	// Insert allocates fresh ids for the order and all of its lines.
	Insert(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64, depth FetchDepth) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64, depth FetchDepth) ([]*domain.Order, error)
	// CustomerIDByOrder resolves the owning customer of an order.
	CustomerIDByOrder(ctx context.Context, orderID int64) (int64, error)

	InsertDelivery(ctx context.Context, delivery *domain.Delivery) (*domain.Delivery, error)
	FindDeliveriesByNumber(ctx context.Context, number string) ([]*domain.Delivery, error)
}
