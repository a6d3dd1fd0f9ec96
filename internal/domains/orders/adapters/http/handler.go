// Package http exposes the order use cases over gin.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	customersdomain "github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/orders/adapters/http/mapper"
	"github.com/shopkit/go-shop-api-server/internal/domains/orders/application"
	ordersports "github.com/shopkit/go-shop-api-server/internal/domains/orders/ports"
	sharederrors "github.com/shopkit/go-shop-api-server/internal/shared/errors"
)

// Handler serves the order HTTP endpoints.
type Handler struct {
	service   ordersports.Service
	responder *sharederrors.ChainedResponder
}

func NewHandler(service ordersports.Service) *Handler {
	return &Handler{
		service:   service,
		responder: sharederrors.NewChainedResponder("", MapServiceError),
	}
}

// Register mounts the order routes on the given router group.
func (h *Handler) Register(r gin.IRouter) {
	orders := r.Group("/orders")
	orders.GET("", h.list)
	orders.POST("", h.create)
	orders.GET("/:id", h.get)
	orders.GET("/:id/customer", h.customer)

	deliveries := r.Group("/deliveries")
	deliveries.GET("", h.findDeliveries)
	deliveries.POST("", h.createDelivery)
}

// MapServiceError translates order service errors into problem details.
func MapServiceError(err error) (sharederrors.ProblemDetail, bool) {
	if errors.Is(err, application.ErrInvalidInput) {
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	}
	return sharederrors.ProblemDetail{}, false
}

func (h *Handler) list(c *gin.Context) {
	raw := c.Query("customerId")
	if raw == "" {
		h.responder.BadRequest(c, "customerId query parameter is required")
		return
	}
	customerID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.responder.BadRequest(c, "customerId must be a decimal integer")
		return
	}
	orders, err := h.service.FindByCustomer(c.Request.Context(), &customersdomain.Customer{ID: customerID}, parseDepth(c.Query("with")))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainOrders(orders))
}

func (h *Handler) get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	order, err := h.service.FindByID(c.Request.Context(), id, parseDepth(c.Query("with")))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	if order == nil {
		h.responder.NotFound(c, "order", id)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainOrder(order))
}

func (h *Handler) customer(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	customer, err := h.service.FindCustomerByOrder(c.Request.Context(), id)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	if customer == nil {
		h.responder.NotFound(c, "order", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": customer.ID, "lastName": customer.LastName, "email": customer.Email})
}

type createOrderRequest struct {
	Order    mapper.Order `json:"order"`
	Username string       `json:"username,omitempty"`
}

func (h *Handler) create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	order := mapper.ToDomainOrder(req.Order)
	ctx := c.Request.Context()
	var created *mapper.Order
	if req.Username != "" {
		result, err := h.service.CreateForUsername(ctx, order, req.Username)
		if err != nil {
			h.responder.RespondError(c, err)
			return
		}
		if result == nil {
			h.responder.NotFound(c, "customer", req.Username)
			return
		}
		model := mapper.FromDomainOrder(result)
		created = &model
	} else {
		result, err := h.service.Create(ctx, order, &customersdomain.Customer{ID: req.Order.CustomerID})
		if err != nil {
			h.responder.RespondError(c, err)
			return
		}
		if result == nil {
			h.responder.NotFound(c, "customer", req.Order.CustomerID)
			return
		}
		model := mapper.FromDomainOrder(result)
		created = &model
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) findDeliveries(c *gin.Context) {
	number := c.Query("number")
	if number == "" {
		h.responder.BadRequest(c, "number query parameter is required")
		return
	}
	deliveries, err := h.service.FindDeliveries(c.Request.Context(), number)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainDeliveries(deliveries))
}

func (h *Handler) createDelivery(c *gin.Context) {
	var model mapper.Delivery
	if err := c.ShouldBindJSON(&model); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	created, err := h.service.CreateDelivery(c.Request.Context(), mapper.ToDomainDelivery(model))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromDomainDelivery(created))
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.responder.BadRequest(c, "id must be a decimal integer")
		return 0, false
	}
	return id, true
}

func parseDepth(value string) ordersports.FetchDepth {
	if value == "deliveries" {
		return ordersports.FetchWithDeliveries
	}
	return ordersports.FetchOrderOnly
}
