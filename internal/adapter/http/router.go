package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ioproxxy/sahasexpress/internal/adapter/daraja"
	"github.com/ioproxxy/sahasexpress/internal/adapter/http/middleware"
	"github.com/ioproxxy/sahasexpress/internal/logging"
)

type Handlers struct {
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrderHandler
	Catalog  *CatalogHandler
	Token    *TokenHandler
}

func NewRouter(h Handlers, authz *middleware.Authz, proxy *daraja.Proxy, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())
	r.Use(middleware.Logging(log))

	r.GET("/healthz", func(c *gin.Context) {
		logging.From(c).Info("health check")
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", h.Token.IssueToken)

	// Gateway side of the STK-push contract, under /api/mpesa.
	proxy.Register(r)

	v1 := r.Group("/v1")
	{
		v1.GET("/products", h.Catalog.List)
		v1.GET("/products/:id", h.Catalog.Get)
		v1.PUT("/products/:id/options", authz.Require("catalog.write"), h.Catalog.SetOptions)

		v1.GET("/cart", h.Cart.Get)
		v1.POST("/cart/items", h.Cart.Add)
		v1.PUT("/cart/items", h.Cart.SetQuantity)
		v1.DELETE("/cart/items", h.Cart.Remove)

		v1.POST("/checkout", h.Checkout.Begin)
		v1.GET("/checkout", h.Checkout.State)

		v1.GET("/orders", h.Orders.List)
		v1.GET("/orders/:id", h.Orders.Get)
		v1.PUT("/orders/:id/status", authz.Require("orders.write"), h.Orders.UpdateStatus)
	}

	return r
}
