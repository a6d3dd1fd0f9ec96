// Package giftwrap decorates the order service with packaging side effects
// around order creation. Every other call is forwarded unchanged, so the
// wrapper is substitutable wherever the order service contract is expected.
package giftwrap

import (
	"context"
	"log/slog"

	customersdomain "github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	ordersdomain "github.com/shopkit/go-shop-api-server/internal/domains/orders/domain"
	ordersports "github.com/shopkit/go-shop-api-server/internal/domains/orders/ports"
)

// Service wraps an order service and marks created orders for gift-wrapping.
type Service struct {
	inner  ordersports.Service
	logger *slog.Logger
	wrap   func(order *ordersdomain.Order)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithWrapper overrides the packaging hook applied after a successful create.
func WithWrapper(wrap func(order *ordersdomain.Order)) Option {
	return func(s *Service) { s.wrap = wrap }
}

// New wraps the given order service.
func New(inner ordersports.Service, opts ...Option) ordersports.Service {
	s := &Service{inner: inner}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) FindByID(ctx context.Context, id int64, depth ordersports.FetchDepth) (*ordersdomain.Order, error) {
	return s.inner.FindByID(ctx, id, depth)
}

func (s *Service) FindByCustomer(ctx context.Context, customer *customersdomain.Customer, depth ordersports.FetchDepth) ([]*ordersdomain.Order, error) {
	return s.inner.FindByCustomer(ctx, customer, depth)
}

func (s *Service) FindCustomerByOrder(ctx context.Context, orderID int64) (*customersdomain.Customer, error) {
	return s.inner.FindCustomerByOrder(ctx, orderID)
}

func (s *Service) Create(ctx context.Context, order *ordersdomain.Order, customer *customersdomain.Customer) (*ordersdomain.Order, error) {
	created, err := s.inner.Create(ctx, order, customer)
	if err != nil || created == nil {
		return created, err
	}
	s.applyWrapping(ctx, created)
	return created, nil
}

func (s *Service) CreateForUsername(ctx context.Context, order *ordersdomain.Order, username string) (*ordersdomain.Order, error) {
	created, err := s.inner.CreateForUsername(ctx, order, username)
	if err != nil || created == nil {
		return created, err
	}
	s.applyWrapping(ctx, created)
	return created, nil
}

func (s *Service) FindDeliveries(ctx context.Context, number string) ([]*ordersdomain.Delivery, error) {
	return s.inner.FindDeliveries(ctx, number)
}

func (s *Service) CreateDelivery(ctx context.Context, delivery *ordersdomain.Delivery) (*ordersdomain.Delivery, error) {
	return s.inner.CreateDelivery(ctx, delivery)
}

func (s *Service) applyWrapping(ctx context.Context, order *ordersdomain.Order) {
	if s.wrap != nil {
		s.wrap(order)
		return
	}
	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "gift-wrapping order", slog.Int64("order.id", order.ID))
	}
}

var _ ordersports.Service = (*Service)(nil)
