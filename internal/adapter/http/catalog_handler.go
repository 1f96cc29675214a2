package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ioproxxy/sahasexpress/internal/catalog"
	domain "github.com/ioproxxy/sahasexpress/internal/entity"
)

// CatalogHandler exposes the product read side plus the one write the variant
// engine owns: regenerating a product's variants after its options change.
type CatalogHandler struct {
	store *catalog.Store
}

func NewCatalogHandler(store *catalog.Store) *CatalogHandler {
	return &CatalogHandler{store: store}
}

func (h *CatalogHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": h.store.List()})
}

func (h *CatalogHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	p, ok := h.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

type setOptionsReq struct {
	VariantOptions []domain.VariantOption `json:"variantOptions"`
}

// SetOptions replaces a product's option lists. Stock entered for surviving
// combinations is preserved across the regeneration.
func (h *CatalogHandler) SetOptions(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	var req setOptionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	p, err := h.store.SetVariantOptions(id, req.VariantOptions)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusOK, p)
}
