// Package http exposes the catalog use cases over gin.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shopkit/go-shop-api-server/internal/domains/catalog/application"
	catalogdomain "github.com/shopkit/go-shop-api-server/internal/domains/catalog/domain"
	catalogports "github.com/shopkit/go-shop-api-server/internal/domains/catalog/ports"
	sharederrors "github.com/shopkit/go-shop-api-server/internal/shared/errors"
)

// Article represents the transport-level article payload.
type Article struct {
	ID        int64   `json:"id,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// Handler serves the catalog HTTP endpoints.
type Handler struct {
	service   catalogports.Service
	responder *sharederrors.ChainedResponder
}

func NewHandler(service catalogports.Service) *Handler {
	return &Handler{
		service: service,
		responder: sharederrors.NewChainedResponder("", func(err error) (sharederrors.ProblemDetail, bool) {
			if errors.Is(err, application.ErrInvalidInput) {
				return sharederrors.ErrValidation.WithDetail(err.Error()), true
			}
			return sharederrors.ProblemDetail{}, false
		}),
	}
}

// Register mounts the catalog routes on the given router group.
func (h *Handler) Register(r gin.IRouter) {
	articles := r.Group("/articles")
	articles.GET("", h.list)
	articles.POST("", h.create)
	articles.GET("/slow-sellers", h.slowSellers)
	articles.GET("/:id", h.get)
}

func (h *Handler) list(c *gin.Context) {
	// A blank name lists the available catalog.
	articles, err := h.service.FindByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromDomain(articles))
}

func (h *Handler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.responder.BadRequest(c, "id must be a decimal integer")
		return
	}
	article, err := h.service.FindByID(c.Request.Context(), id)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	if article == nil {
		h.responder.NotFound(c, "article", id)
		return
	}
	c.JSON(http.StatusOK, fromDomainOne(article))
}

func (h *Handler) slowSellers(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.responder.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	articles, err := h.service.FindSlowSellers(c.Request.Context(), limit)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromDomain(articles))
}

func (h *Handler) create(c *gin.Context) {
	var model Article
	if err := c.ShouldBindJSON(&model); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	created, err := h.service.Create(c.Request.Context(), &catalogdomain.Article{
		Name:      model.Name,
		Price:     model.Price,
		Available: model.Available,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromDomainOne(created))
}

func fromDomainOne(article *catalogdomain.Article) Article {
	if article == nil {
		return Article{}
	}
	return Article{
		ID:        article.ID,
		Name:      article.Name,
		Price:     article.Price,
		Available: article.Available,
	}
}

func fromDomain(articles []*catalogdomain.Article) []Article {
	result := make([]Article, 0, len(articles))
	for _, article := range articles {
		result = append(result, fromDomainOne(article))
	}
	return result
}
