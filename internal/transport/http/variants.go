package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
)

type VariantCatalog interface {
	List(ctx context.Context) ([]domain.Variant, error)
	Get(ctx context.Context, name string) (domain.Variant, error)
	Create(ctx context.Context, v domain.Variant) (domain.Variant, error)
}

type VariantHandler struct {
	Catalog VariantCatalog
}

func NewVariantHandler(catalog VariantCatalog) *VariantHandler {
	return &VariantHandler{Catalog: catalog}
}

func (h *VariantHandler) List(c *gin.Context) {
	variants, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, variants)
}

func (h *VariantHandler) Get(c *gin.Context) {
	v, err := h.Catalog.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VariantHandler) Create(c *gin.Context) {
	var v domain.Variant
	if err := c.ShouldBindJSON(&v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	created, err := h.Catalog.Create(c.Request.Context(), v)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
