package ports

import (
	"context"

	customersdomain "github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/orders/domain"
)

// Service defines the order use cases exposed to adapters (driving port).
// Any wrapper implementing this contract is substitutable for the base
// service; Create carries the extension seam for add-on behavior.
type Service interface {
	FindByID(ctx context.Context, id int64, depth FetchDepth) (*domain.Order, error)
	FindByCustomer(ctx context.Context, customer *customersdomain.Customer, depth FetchDepth) ([]*domain.Order, error)
	FindCustomerByOrder(ctx context.Context, orderID int64) (*customersdomain.Customer, error)

	// Create links the order to the customer and persists it with fresh ids.
	// A nil order or customer makes the call a silent no-op returning nil.
	Create(ctx context.Context, order *domain.Order, customer *customersdomain.Customer) (*domain.Order, error)
	CreateForUsername(ctx context.Context, order *domain.Order, username string) (*domain.Order, error)

	FindDeliveries(ctx context.Context, number string) ([]*domain.Delivery, error)
	CreateDelivery(ctx context.Context, delivery *domain.Delivery) (*domain.Delivery, error)
}
