package mapper

import (
	"time"

	ordersdomain "github.com/shopkit/go-shop-api-server/internal/domains/orders/domain"
)

// Order represents the transport-level order payload.
type Order struct {
	ID         int64      `json:"id,omitempty"`
	CustomerID int64      `json:"customerId,omitempty"`
	Lines      []Line     `json:"lines"`
	Deliveries []Delivery `json:"deliveries,omitempty"`
	CreatedAt  time.Time  `json:"createdAt,omitempty"`
	UpdatedAt  time.Time  `json:"updatedAt,omitempty"`
}

// Line represents one transport-level order position.
type Line struct {
	ID        int64 `json:"id,omitempty"`
	ArticleID int64 `json:"articleId"`
	Quantity  int16 `json:"quantity"`
}

// Delivery represents the transport-level delivery payload.
type Delivery struct {
	ID       int64   `json:"id,omitempty"`
	Number   string  `json:"number"`
	OrderIDs []int64 `json:"orderIds,omitempty"`
}

// ToDomainOrder converts a transport order to its domain counterpart.
func ToDomainOrder(model Order) *ordersdomain.Order {
	order := &ordersdomain.Order{
		ID:         model.ID,
		CustomerID: model.CustomerID,
	}
	for _, line := range model.Lines {
		order.Lines = append(order.Lines, ordersdomain.Line{
			ID:        line.ID,
			ArticleID: line.ArticleID,
			Quantity:  line.Quantity,
		})
	}
	return order
}

// FromDomainOrder converts a domain order into a transport representation.
func FromDomainOrder(order *ordersdomain.Order) Order {
	if order == nil {
		return Order{}
	}
	model := Order{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
	for _, line := range order.Lines {
		model.Lines = append(model.Lines, Line{
			ID:        line.ID,
			ArticleID: line.ArticleID,
			Quantity:  line.Quantity,
		})
	}
	for _, delivery := range order.Deliveries {
		model.Deliveries = append(model.Deliveries, FromDomainDelivery(&delivery))
	}
	return model
}

// FromDomainOrders converts a slice of domain orders.
func FromDomainOrders(orders []*ordersdomain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromDomainOrder(order))
	}
	return result
}

// ToDomainDelivery converts a transport delivery to its domain counterpart.
func ToDomainDelivery(model Delivery) *ordersdomain.Delivery {
	return &ordersdomain.Delivery{
		ID:       model.ID,
		Number:   model.Number,
		OrderIDs: model.OrderIDs,
	}
}

// FromDomainDelivery converts a domain delivery into transport representation.
func FromDomainDelivery(delivery *ordersdomain.Delivery) Delivery {
	if delivery == nil {
		return Delivery{}
	}
	return Delivery{
		ID:       delivery.ID,
		Number:   delivery.Number,
		OrderIDs: delivery.OrderIDs,
	}
}

// FromDomainDeliveries converts a slice of domain deliveries.
func FromDomainDeliveries(deliveries []*ordersdomain.Delivery) []Delivery {
	result := make([]Delivery, 0, len(deliveries))
	for _, delivery := range deliveries {
		result = append(result, FromDomainDelivery(delivery))
	}
	return result
}
