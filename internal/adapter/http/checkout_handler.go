package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ioproxxy/sahasexpress/internal/logging"
	"github.com/ioproxxy/sahasexpress/internal/usecase"
)

var checkoutAttempts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by outcome",
	},
	[]string{"outcome"},
)

type CheckoutHandler struct {
	checkout *usecase.Checkout
}

func NewCheckoutHandler(checkout *usecase.Checkout) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type beginCheckoutReq struct {
	Phone string `json:"phone" binding:"required"`
}

// Begin runs the whole attempt in the request: STK push, confirmation wait,
// order creation. The response carries the new order on success, or the
// shopper-facing failure text.
func (h *CheckoutHandler) Begin(c *gin.Context) {
	var req beginCheckoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	order, err := h.checkout.Begin(c.Request.Context(), req.Phone)
	if err != nil {
		h.respondError(c, err)
		return
	}

	checkoutAttempts.WithLabelValues("completed").Inc()
	c.JSON(http.StatusCreated, gin.H{
		"orderId": order.ID,
		"total":   order.Total.String(),
		"status":  order.Status,
	})
}

// State exposes the attempt projection for the UI: current state plus any
// failure text.
func (h *CheckoutHandler) State(c *gin.Context) {
	state, errText := h.checkout.State()
	out := gin.H{"state": state}
	if errText != "" {
		out["error"] = errText
	}
	c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) respondError(c *gin.Context, err error) {
	var ge *usecase.GatewayError
	switch {
	case errors.Is(err, usecase.ErrInvalidPhone), errors.Is(err, usecase.ErrEmptyCart):
		checkoutAttempts.WithLabelValues("rejected_validation").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrCheckoutInFlight):
		checkoutAttempts.WithLabelValues("rejected_inflight").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &ge):
		checkoutAttempts.WithLabelValues("failed_gateway").Inc()
		c.JSON(http.StatusBadGateway, gin.H{"error": ge.Message})
	default:
		checkoutAttempts.WithLabelValues("failed_transport").Inc()
		logging.From(c).Error("checkout failed", "error", err)
		_, errText := h.checkout.State()
		if errText == "" {
			errText = "checkout failed"
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": errText})
	}
}
