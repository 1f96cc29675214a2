package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/ioproxxy/sahasexpress/internal/entity"
)

// AttemptState is the observable state of the current checkout attempt.
type AttemptState string

const (
	StateIdle                 AttemptState = "Idle"
	StateInitiating           AttemptState = "Initiating"
	StateAwaitingConfirmation AttemptState = "AwaitingConfirmation"
	StateCompleted            AttemptState = "Completed"
	StateFailed               AttemptState = "Failed"
)

var (
	ErrCheckoutInFlight = errors.New("a checkout is already in progress")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidPhone     = errors.New("invalid phone number")
)

// GatewayError carries an error the payment gateway itself reported, as
// opposed to a transport failure reaching it.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string { return e.Message }

const connectivityErrText = "Could not reach the payment service. Please check your connection and try again."

// Checkout drives one payment attempt at a time:
// Idle -> Initiating -> AwaitingConfirmation -> Completed | Failed.
// A second Begin while an attempt is in flight is rejected. Failure leaves the
// cart untouched so the shopper can simply retry.
type Checkout struct {
	cart    *CartService
	gateway PaymentGateway
	orders  *OrderLifecycle
	log     *slog.Logger

	// No real payment callback exists; the confirmation wait is a fixed
	// delay standing in for one.
	confirmDelay time.Duration
	// When positive, this amount is sent to the gateway instead of the
	// subtotal (Daraja sandbox caps). The order total always stays the
	// displayed subtotal.
	sandboxAmount decimal.Decimal

	mu              sync.Mutex
	state           AttemptState
	lastError       string
	attemptID       string
	lastOrderMillis int64
}

func NewCheckout(cart *CartService, gateway PaymentGateway, orders *OrderLifecycle, confirmDelay time.Duration, sandboxAmount decimal.Decimal, log *slog.Logger) *Checkout {
	return &Checkout{
		cart:          cart,
		gateway:       gateway,
		orders:        orders,
		confirmDelay:  confirmDelay,
		sandboxAmount: sandboxAmount,
		log:           log,
		state:         StateIdle,
	}
}

// State reports the current attempt state and, after a failure, the message to
// show the shopper.
func (c *Checkout) State() (AttemptState, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.lastError
}

// Begin runs a full checkout attempt: STK push, confirmation wait, order
// creation. It blocks through both waits; cancel ctx to abandon the attempt.
func (c *Checkout) Begin(ctx context.Context, phone string) (*domain.Order, error) {
	if !validPhone(phone) {
		return nil, ErrInvalidPhone
	}
	if c.cart.Count() == 0 {
		return nil, ErrEmptyCart
	}

	c.mu.Lock()
	if c.state == StateInitiating || c.state == StateAwaitingConfirmation {
		c.mu.Unlock()
		return nil, ErrCheckoutInFlight
	}
	c.state = StateInitiating
	c.lastError = ""
	c.attemptID = uuid.NewString()
	attemptID := c.attemptID
	c.mu.Unlock()

	log := c.log.With("attempt_id", attemptID, "phone", phone)

	charge := c.cart.Subtotal()
	if c.sandboxAmount.IsPositive() {
		charge = c.sandboxAmount
	}

	log.Info("initiating stk push", "amount", charge.String())
	res, err := c.gateway.InitiateSTKPush(ctx, phone, charge)
	if err != nil {
		msg := connectivityErrText
		var ge *GatewayError
		if errors.As(err, &ge) {
			msg = ge.Message
		}
		c.fail(msg)
		log.Error("stk push failed", "error", err)
		return nil, err
	}
	if !res.Accepted() {
		msg := res.FailureText()
		c.fail(msg)
		log.Warn("stk push rejected", "response_code", res.ResponseCode, "message", msg)
		return nil, &GatewayError{Message: msg}
	}

	c.setState(StateAwaitingConfirmation)
	log.Info("stk push accepted", "checkout_request_id", res.CheckoutRequestID)

	select {
	case <-time.After(c.confirmDelay):
	case <-ctx.Done():
		c.fail("checkout was cancelled")
		return nil, ctx.Err()
	}

	// Commit point: taking the lines and freezing the total happen in one
	// step, so the order snapshot always matches what the shopper last saw.
	lines := c.cart.takeAll()
	order := &domain.Order{
		ID:            c.nextOrderID(),
		Items:         lines,
		Total:         domain.Subtotal(lines),
		CustomerPhone: phone,
		Status:        domain.StatusPlaced,
		CreatedAt:     time.Now(),
	}
	if err := c.orders.Place(ctx, order); err != nil {
		c.cart.restore(lines)
		c.fail("Could not record your order. Please try again.")
		log.Error("order creation failed", "error", err)
		return nil, err
	}

	c.setState(StateCompleted)
	log.Info("checkout completed", "order_id", order.ID, "total", order.Total.String())
	return order, nil
}

func (c *Checkout) setState(s AttemptState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Checkout) fail(msg string) {
	c.mu.Lock()
	c.state = StateFailed
	c.lastError = msg
	c.mu.Unlock()
}

// nextOrderID derives an opaque id from the current time, nudged forward on
// collision so ids stay unique within the process.
func (c *Checkout) nextOrderID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	millis := time.Now().UnixMilli()
	if millis <= c.lastOrderMillis {
		millis = c.lastOrderMillis + 1
	}
	c.lastOrderMillis = millis
	return "SE" + strconv.FormatInt(millis, 10)
}

// validPhone is deliberately superficial: at least ten digits. Carrier-level
// normalization happens on the gateway side.
func validPhone(phone string) bool {
	digits := 0
	for _, r := range strings.TrimSpace(phone) {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 10
}
