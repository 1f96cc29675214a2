package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/ioproxxy/sahasexpress/internal/entity"
	"github.com/ioproxxy/sahasexpress/internal/usecase"
)

type CartHandler struct {
	cart    *usecase.CartService
	catalog usecase.ProductReader
}

func NewCartHandler(cart *usecase.CartService, catalog usecase.ProductReader) *CartHandler {
	return &CartHandler{cart: cart, catalog: catalog}
}

type addItemReq struct {
	ProductID       int               `json:"productId" binding:"required"`
	VariantID       string            `json:"variantId"`
	SelectedOptions map[string]string `json:"selectedOptions"`
	Quantity        int               `json:"quantity"`
}

// Add puts delta units in the cart. The UI may send either a resolved
// variantId or the raw option selection; only an unresolvable selection blocks
// the add, everything else clamps.
func (h *CartHandler) Add(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	variantID := req.VariantID
	if len(req.SelectedOptions) > 0 {
		p, ok := h.catalog.Get(req.ProductID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
			return
		}
		variant, err := p.ResolveVariant(req.SelectedOptions)
		switch {
		case errors.Is(err, domain.ErrIncompleteSelection):
			c.JSON(http.StatusBadRequest, gin.H{"error": "incomplete_selection"})
			return
		case errors.Is(err, domain.ErrVariantUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": "variant_unavailable"})
			return
		}
		variantID = variant.ID
	}

	res := h.cart.AddItem(req.ProductID, variantID, req.Quantity)
	c.JSON(http.StatusOK, h.envelope(res))
}

type setQuantityReq struct {
	ProductID int    `json:"productId" binding:"required"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) SetQuantity(c *gin.Context) {
	var req setQuantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	res := h.cart.SetQuantity(req.ProductID, req.VariantID, req.Quantity)
	c.JSON(http.StatusOK, h.envelope(res))
}

func (h *CartHandler) Remove(c *gin.Context) {
	productID, err := strconv.Atoi(c.Query("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	h.cart.Remove(productID, c.Query("variantId"))
	c.JSON(http.StatusOK, h.view())
}

func (h *CartHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.view())
}

func (h *CartHandler) envelope(res usecase.CartResult) gin.H {
	out := h.view()
	out["requested"] = res.Requested
	out["granted"] = res.Granted
	return out
}

func (h *CartHandler) view() gin.H {
	return gin.H{
		"items":    h.cart.Snapshot(),
		"subtotal": h.cart.Subtotal().String(),
		"count":    h.cart.Count(),
	}
}
