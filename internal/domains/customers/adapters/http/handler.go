// Package http exposes the customer use cases over gin.
package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shopkit/go-shop-api-server/internal/domains/customers/adapters/http/mapper"
	"github.com/shopkit/go-shop-api-server/internal/domains/customers/application"
	customersdomain "github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	customersports "github.com/shopkit/go-shop-api-server/internal/domains/customers/ports"
	sharederrors "github.com/shopkit/go-shop-api-server/internal/shared/errors"
)

// Handler serves the customer HTTP endpoints.
type Handler struct {
	service   customersports.Service
	responder *sharederrors.ChainedResponder
}

func NewHandler(service customersports.Service) *Handler {
	return &Handler{
		service:   service,
		responder: sharederrors.NewChainedResponder("", MapServiceError),
	}
}

// Register mounts the customer routes on the given router group.
func (h *Handler) Register(r gin.IRouter) {
	customers := r.Group("/customers")
	customers.GET("", h.list)
	customers.POST("", h.create)
	customers.GET("/by-email", h.findByEmail)
	customers.GET("/search", h.search)
	customers.GET("/autocomplete/ids", h.autocompleteIDs)
	customers.GET("/autocomplete/names", h.autocompleteNames)
	customers.GET("/:id", h.get)
	customers.PUT("/:id", h.update)
	customers.DELETE("/:id", h.delete)
	customers.PUT("/:id/file", h.setFile)
	customers.GET("/:id/contracts", h.listContracts)
	customers.POST("/:id/contracts", h.createContract)
}

// MapServiceError translates customer service errors into problem details.
func MapServiceError(err error) (sharederrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, application.ErrInvalidInput):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrEmailExists):
		return sharederrors.ErrEmailTaken.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrOptimisticConflict):
		return sharederrors.ErrStaleVersion.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrConcurrentlyDeleted):
		return sharederrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrHasOrders):
		return sharederrors.ErrHasOrders.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrUnknownMimeType):
		return sharederrors.ErrUnsupportedMedia.WithDetail(err.Error()), true
	}
	return sharederrors.ProblemDetail{}, false
}

func (h *Handler) list(c *gin.Context) {
	depth := parseDepth(c.Query("with"))
	if lastName := c.Query("lastName"); lastName != "" {
		views, err := h.service.FindByLastName(c.Request.Context(), lastName, depth)
		if err != nil {
			h.responder.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, mapper.FromViews(views))
		return
	}
	order := customersports.Unordered
	if c.Query("sort") == "id" {
		order = customersports.OrderByID
	}
	views, err := h.service.FindAll(c.Request.Context(), depth, order)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromViews(views))
}

func (h *Handler) get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	view, err := h.service.FindByID(c.Request.Context(), id, parseDepth(c.Query("with")))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	if view == nil {
		h.responder.NotFound(c, "customer", id)
		return
	}
	c.JSON(http.StatusOK, mapper.FromView(view))
}

func (h *Handler) findByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		h.responder.BadRequest(c, "email query parameter is required")
		return
	}
	customer, err := h.service.FindByEmail(c.Request.Context(), email)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	if customer == nil {
		h.responder.NotFound(c, "customer", email)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainCustomer(customer))
}

func (h *Handler) search(c *gin.Context) {
	ctx := c.Request.Context()
	switch {
	case c.Query("postalCode") != "":
		customers, err := h.service.FindByPostalCode(ctx, c.Query("postalCode"))
		h.respondCustomers(c, customers, err)
	case c.Query("since") != "":
		since, err := time.Parse(time.RFC3339, c.Query("since"))
		if err != nil {
			h.responder.BadRequest(c, "since must be an RFC 3339 timestamp")
			return
		}
		customers, err := h.service.FindBySince(ctx, since)
		h.respondCustomers(c, customers, err)
	case c.Query("gender") != "":
		customers, err := h.service.FindByGender(ctx, customersdomain.Gender(c.Query("gender")))
		h.respondCustomers(c, customers, err)
	default:
		customers, err := h.service.FindPrivateAndCorporate(ctx)
		h.respondCustomers(c, customers, err)
	}
}

func (h *Handler) autocompleteIDs(c *gin.Context) {
	ids, err := h.service.FindIDsByPrefix(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	c.JSON(http.StatusOK, ids)
}

func (h *Handler) autocompleteNames(c *gin.Context) {
	names, err := h.service.FindLastNamesByPrefix(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, names)
}

func (h *Handler) create(c *gin.Context) {
	var model mapper.Customer
	if err := c.ShouldBindJSON(&model); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	created, err := h.service.Create(c.Request.Context(), mapper.ToDomainCustomer(model))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromDomainCustomer(created))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var model mapper.Customer
	if err := c.ShouldBindJSON(&model); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	customer := mapper.ToDomainCustomer(model)
	customer.ID = id
	passwordChanged := c.Query("passwordChanged") == "true"
	updated, err := h.service.Update(c.Request.Context(), customer, passwordChanged)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainCustomer(updated))
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteByID(c.Request.Context(), id); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setFile(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.responder.BadRequest(c, "failed to read request body")
		return
	}
	ctx := c.Request.Context()
	var customer *customersdomain.Customer
	if contentType := c.ContentType(); contentType != "" && contentType != "application/octet-stream" {
		view, findErr := h.service.FindByID(ctx, id, customersports.FetchCustomerOnly)
		if findErr != nil {
			h.responder.RespondError(c, findErr)
			return
		}
		if view == nil {
			h.responder.NotFound(c, "customer", id)
			return
		}
		customer, err = h.service.SetFileWithType(ctx, view.Customer, data, contentType)
	} else {
		customer, err = h.service.SetFile(ctx, id, data)
	}
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	if customer == nil {
		h.responder.NotFound(c, "customer", id)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainCustomer(customer))
}

func (h *Handler) listContracts(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	contracts, err := h.service.FindMaintenanceContracts(c.Request.Context(), id)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainContracts(contracts))
}

func (h *Handler) createContract(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var model mapper.Contract
	if err := c.ShouldBindJSON(&model); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	contract := mapper.ToDomainContract(model)
	contract.CustomerID = id
	created, err := h.service.CreateMaintenanceContract(c.Request.Context(), contract, &customersdomain.Customer{ID: id})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	if created == nil {
		h.responder.NotFound(c, "customer", id)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromDomainContracts([]customersdomain.MaintenanceContract{*created})[0])
}

func (h *Handler) respondCustomers(c *gin.Context, customers []*customersdomain.Customer, err error) {
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainCustomers(customers))
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.responder.BadRequest(c, "id must be a decimal integer")
		return 0, false
	}
	return id, true
}

func parseDepth(value string) customersports.FetchDepth {
	switch value {
	case "orders":
		return customersports.FetchWithOrders
	case "contracts":
		return customersports.FetchWithContracts
	default:
		return customersports.FetchCustomerOnly
	}
}
