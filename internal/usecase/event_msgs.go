package usecase

// Published on RabbitMQ when checkout creates an order.
type OrderPlacedMsg struct {
	OrderID       string `json:"orderId"`
	CustomerPhone string `json:"customerPhone"`
	Total         string `json:"total"`
	ItemCount     int    `json:"itemCount"`
}

// Published on RabbitMQ on every status transition.
type StatusChangedMsg struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// Received on Kafka from fulfilment. This is the external path that can move
// an order to Delivered.
type OrderStatusUpdateMsg struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}
