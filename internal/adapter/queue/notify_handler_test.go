package queue

import (
	"context"
	"io"
	"log/slog"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	phone   string
	message string
	calls   int
}

func (n *recordingNotifier) Notify(_ context.Context, phone, message string) error {
	n.calls++
	n.phone = phone
	n.message = message
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifyHandlerPlaced(t *testing.T) {
	n := &recordingNotifier{}
	h := NewNotifyHandler(n, discardLogger())

	d := amqp.Delivery{
		RoutingKey: "order.placed",
		Body:       []byte(`{"orderId":"SE1","customerPhone":"0712345678","total":"45.5","itemCount":2}`),
	}
	require.NoError(t, h.Handle(context.Background(), d))
	assert.Equal(t, 1, n.calls)
	assert.Equal(t, "0712345678", n.phone)
	assert.Contains(t, n.message, "SE1")
	assert.Contains(t, n.message, "45.5")
}

func TestNotifyHandlerStatusChanged(t *testing.T) {
	n := &recordingNotifier{}
	h := NewNotifyHandler(n, discardLogger())

	d := amqp.Delivery{
		RoutingKey: "order.status_changed",
		Body:       []byte(`{"orderId":"SE1","status":"Shipped"}`),
	}
	require.NoError(t, h.Handle(context.Background(), d))
	// Status changes are logged, not pushed to the customer.
	assert.Equal(t, 0, n.calls)
}

func TestNotifyHandlerBadPayload(t *testing.T) {
	h := NewNotifyHandler(&recordingNotifier{}, discardLogger())
	d := amqp.Delivery{RoutingKey: "order.placed", Body: []byte(`not json`)}
	assert.Error(t, h.Handle(context.Background(), d))
}

func TestNotifyHandlerUnknownKey(t *testing.T) {
	n := &recordingNotifier{}
	h := NewNotifyHandler(n, discardLogger())
	d := amqp.Delivery{RoutingKey: "order.refunded", Body: []byte(`{}`)}
	assert.NoError(t, h.Handle(context.Background(), d))
	assert.Equal(t, 0, n.calls)
}
