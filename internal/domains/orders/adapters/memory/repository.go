package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopkit/go-shop-api-server/internal/domains/orders/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu             sync.RWMutex
	orders         map[int64]*domain.Order
	deliveries     map[int64]*domain.Delivery
	nextOrderID    int64
	nextLineID     int64
	nextDeliveryID int64
}

func NewRepository() *Repository {
	return &Repository{
		orders:     map[int64]*domain.Order{},
		deliveries: map[int64]*domain.Delivery{},
	}
}

func (r *Repository) Insert(_ context.Context, order *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextOrderID++
	now := time.Now()
	stored := cloneOrder(order)
	stored.ID = r.nextOrderID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	for i := range stored.Lines {
		r.nextLineID++
		stored.Lines[i].ID = r.nextLineID
	}
	r.orders[stored.ID] = stored
	return cloneOrder(stored), nil
}

func (r *Repository) GetByID(_ context.Context, id int64, depth ports.FetchDepth) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.materializeLocked(order, depth), nil
}

func (r *Repository) ListByCustomer(_ context.Context, customerID int64, depth ports.FetchDepth) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Order
	for _, order := range r.orders {
		if order.CustomerID == customerID {
			result = append(result, r.materializeLocked(order, depth))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *Repository) CustomerIDByOrder(_ context.Context, orderID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[orderID]
	if !ok {
		return 0, ports.ErrNotFound
	}
	return order.CustomerID, nil
}

func (r *Repository) InsertDelivery(_ context.Context, delivery *domain.Delivery) (*domain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextDeliveryID++
	stored := cloneDelivery(delivery)
	stored.ID = r.nextDeliveryID
	r.deliveries[stored.ID] = stored
	return cloneDelivery(stored), nil
}

func (r *Repository) FindDeliveriesByNumber(_ context.Context, number string) ([]*domain.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Delivery
	for _, delivery := range r.deliveries {
		if delivery.Number == number {
			result = append(result, cloneDelivery(delivery))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// OrderIDsFor lists the order ids owned by a customer, ascending. It serves
// as the order index bound into the customers adapter.
func (r *Repository) OrderIDsFor(customerID int64) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []int64
	for id, order := range r.orders {
		if order.CustomerID == customerID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// UnitsOrderedFor sums the ordered quantity of an article across all orders.
// It serves as the sales index bound into the catalog adapter.
func (r *Repository) UnitsOrderedFor(articleID int64) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var units int64
	for _, order := range r.orders {
		for _, line := range order.Lines {
			if line.ArticleID == articleID {
				units += int64(line.Quantity)
			}
		}
	}
	return units
}

func (r *Repository) materializeLocked(order *domain.Order, depth ports.FetchDepth) *domain.Order {
	clone := cloneOrder(order)
	if depth == ports.FetchWithDeliveries {
		for _, delivery := range r.deliveries {
			for _, id := range delivery.OrderIDs {
				if id == order.ID {
					clone.Deliveries = append(clone.Deliveries, *cloneDelivery(delivery))
					break
				}
			}
		}
		sort.Slice(clone.Deliveries, func(i, j int) bool { return clone.Deliveries[i].ID < clone.Deliveries[j].ID })
	}
	return clone
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.Lines = append([]domain.Line(nil), order.Lines...)
	clone.Deliveries = nil
	return &clone
}

func cloneDelivery(delivery *domain.Delivery) *domain.Delivery {
	clone := *delivery
	clone.OrderIDs = append([]int64(nil), delivery.OrderIDs...)
	return &clone
}
