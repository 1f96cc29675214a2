package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/ioproxxy/sahasexpress/internal/entity"
)

// ProductReader is the read-only view of the catalog collaborator. The
// checkout core never writes products.
type ProductReader interface {
	Get(id int) (domain.Product, bool)
	AvailableStock(productID int, variantID string) int
}

// STKPushResult mirrors the gateway's success payload field for field.
type STKPushResult struct {
	ResponseCode        string
	CheckoutRequestID   string
	ResponseDescription string
	CustomerMessage     string
	ErrorMessage        string
}

func (r STKPushResult) Accepted() bool { return r.ResponseCode == "0" }

// FailureText is the message surfaced to the shopper when the push was not
// accepted.
func (r STKPushResult) FailureText() string {
	if r.ErrorMessage != "" {
		return r.ErrorMessage
	}
	if r.ResponseDescription != "" {
		return r.ResponseDescription
	}
	return "Payment request was rejected"
}

// PaymentGateway initiates an STK push for the given amount.
type PaymentGateway interface {
	InitiateSTKPush(ctx context.Context, phone string, amount decimal.Decimal) (STKPushResult, error)
}

// OrderStore persists orders. Items and Total are written once at creation;
// only status updates follow.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
}

// StatusCache is a best-effort projection of order status for trackers.
type StatusCache interface {
	SetStatus(ctx context.Context, orderID, status string) error
}

// EventPublisher fans order events out to interested collaborators
// (notifications, analytics). Failures are logged, never propagated.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, msg OrderPlacedMsg) error
	PublishStatusChanged(ctx context.Context, msg StatusChangedMsg) error
}

// Scheduler runs fn once after d. The returned cancel stops the pending run;
// it is a no-op once the work fired.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}
