package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/outboardpro/catalog/internal/domain"
	"github.com/rs/zerolog/log"
)

// ProductReader is the product lookup the handlers depend on
type ProductReader interface {
	GetProduct(ctx context.Context, handle string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	products ProductReader
}

// NewHandler creates a new HTTP handler
func NewHandler(products ProductReader) *Handler {
	return &Handler{products: products}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "outboard-catalog",
		"version": "1.0.0",
	})
}

// ListProducts handles GET /api/v1/products
func (h *Handler) ListProducts(c *gin.Context) {
	if h.products == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "product catalog not configured"})
		return
	}

	var filter domain.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	if filter.MaxHorsepower > 0 && filter.MinHorsepower > filter.MaxHorsepower {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minHp must not exceed maxHp"})
		return
	}

	products, err := h.products.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct handles GET /api/v1/products/:handle
func (h *Handler) GetProduct(c *gin.Context) {
	if h.products == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "product catalog not configured"})
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), c.Param("handle"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// writeError maps domain errors onto HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUpstreamFailure):
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("upstream failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": "storefront unavailable"})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
