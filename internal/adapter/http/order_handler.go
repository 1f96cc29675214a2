package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ioproxxy/sahasexpress/internal/adapter/repo"
	domain "github.com/ioproxxy/sahasexpress/internal/entity"
	"github.com/ioproxxy/sahasexpress/internal/logging"
	"github.com/ioproxxy/sahasexpress/internal/usecase"
)

type OrderHandler struct {
	lifecycle *usecase.OrderLifecycle
}

func NewOrderHandler(lifecycle *usecase.OrderLifecycle) *OrderHandler {
	return &OrderHandler{lifecycle: lifecycle}
}

func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.lifecycle.List(c.Request.Context())
	if err != nil {
		logging.From(c).Error("order list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.lifecycle.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		logging.From(c).Error("order lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus is the manual path for transitions nothing schedules, Delivered
// in particular. Idempotent: re-applying the current status is a no-op.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_status"})
		return
	}

	if err := h.lifecycle.UpdateStatus(c.Request.Context(), c.Param("id"), status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		logging.From(c).Error("status update failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": c.Param("id"), "status": status})
}
