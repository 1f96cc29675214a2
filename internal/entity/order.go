package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPlaced     Status = "Placed"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
)

var ErrUnknownStatus = errors.New("unknown order status")

// ParseStatus maps external status text onto the lifecycle states.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPlaced, StatusProcessing, StatusShipped, StatusDelivered:
		return Status(s), nil
	}
	return "", ErrUnknownStatus
}

// Order is the immutable snapshot produced by a successful checkout. Items and
// Total are frozen at creation; only Status changes afterwards.
type Order struct {
	ID            string          `json:"id"`
	Items         []CartLine      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	CustomerPhone string          `json:"customerPhone"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}
