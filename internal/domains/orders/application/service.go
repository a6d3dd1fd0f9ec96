package application

import (
	"context"
	"errors"
	"time"

	customersdomain "github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	customersports "github.com/shopkit/go-shop-api-server/internal/domains/customers/ports"
	"github.com/shopkit/go-shop-api-server/internal/domains/orders/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/orders/ports"
	"github.com/shopkit/go-shop-api-server/internal/events"
)

// Service orchestrates the orders bounded context use cases.
type Service struct {
	repo      ports.Repository
	customers customersports.Service
	bus       events.Publisher
}

// NewService wires the order service. The publisher may be nil; event
// emission then degrades to a no-op.
func NewService(repo ports.Repository, customers customersports.Service, bus events.Publisher) *Service {
	if bus == nil {
		bus = events.NoopPublisher{}
	}
	return &Service{repo: repo, customers: customers, bus: bus}
}

// FindByID loads an order; depth selects whether deliveries are materialized.
// A missing order is a normal nil result.
func (s *Service) FindByID(ctx context.Context, id int64, depth ports.FetchDepth) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id, depth)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	return order, err
}

// FindByCustomer lists the orders of a customer. A nil customer yields an
// empty result.
func (s *Service) FindByCustomer(ctx context.Context, customer *customersdomain.Customer, depth ports.FetchDepth) ([]*domain.Order, error) {
	if customer == nil {
		return nil, nil
	}
	return s.repo.ListByCustomer(ctx, customer.ID, depth)
}

// FindCustomerByOrder resolves the owning customer of an order by order id.
func (s *Service) FindCustomerByOrder(ctx context.Context, orderID int64) (*customersdomain.Customer, error) {
	customerID, err := s.repo.CustomerIDByOrder(ctx, orderID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	view, err := s.customers.FindByID(ctx, customerID, customersports.FetchCustomerOnly)
	if err != nil || view == nil {
		return nil, err
	}
	return view.Customer, nil
}

// CreateForUsername resolves the customer by login name and delegates to
// Create. An unknown username makes the call a silent no-op.
func (s *Service) CreateForUsername(ctx context.Context, order *domain.Order, username string) (*domain.Order, error) {
	if order == nil {
		return nil, nil
	}
	customer, err := s.customers.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, order, customer)
}

// Create links the order and the customer in both directions and persists it.
// The supplied customer is detached state; the authoritative instance is
// re-fetched (with its orders) so the link is established against current
// storage. All pre-supplied identities are cleared before the insert.
func (s *Service) Create(ctx context.Context, order *domain.Order, customer *customersdomain.Customer) (*domain.Order, error) {
	if order == nil || customer == nil {
		return nil, nil
	}
	if err := order.Validate(); err != nil {
		return nil, mapError(err)
	}

	view, err := s.customers.FindByID(ctx, customer.ID, customersports.FetchWithOrders)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, nil
	}
	order.CustomerID = view.Customer.ID

	// Ids may carry values replayed over an external channel; persistence
	// always allocates fresh ones.
	order.ClearIDs()

	created, err := s.repo.Insert(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}
	s.bus.Publish(ctx, domain.OrderCreated{
		OrderID:    created.ID,
		CustomerID: created.CustomerID,
		LineCount:  len(created.Lines),
		Timestamp:  time.Now(),
	})
	return created, nil
}

// FindDeliveries returns the deliveries registered under a delivery number,
// with their associated orders.
func (s *Service) FindDeliveries(ctx context.Context, number string) ([]*domain.Delivery, error) {
	return s.repo.FindDeliveriesByNumber(ctx, number)
}

// CreateDelivery persists a new delivery. The id is cleared first, mirroring
// order creation.
func (s *Service) CreateDelivery(ctx context.Context, delivery *domain.Delivery) (*domain.Delivery, error) {
	if delivery == nil {
		return nil, nil
	}
	delivery.ID = domain.NoID
	return s.repo.InsertDelivery(ctx, delivery)
}

var _ ports.Service = (*Service)(nil)
