package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ioproxxy/sahasexpress/internal/usecase"
)

// Client calls the STK-push gateway. The request and response shapes are a
// fixed contract with the existing backend and must not drift.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type stkPushReq struct {
	PhoneNumber string  `json:"phoneNumber"`
	Amount      float64 `json:"amount"`
}

type stkPushResp struct {
	ResponseCode        string `json:"ResponseCode"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
	ErrorMessage        string `json:"errorMessage"`
}

type errorResp struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

// InitiateSTKPush posts the push request. Gateway-reported failures come back
// as *usecase.GatewayError with the payload's message; transport failures are
// returned as-is so the caller can tell connectivity faults apart.
func (c *Client) InitiateSTKPush(ctx context.Context, phone string, amount decimal.Decimal) (usecase.STKPushResult, error) {
	body, err := json.Marshal(stkPushReq{PhoneNumber: phone, Amount: amount.InexactFloat64()})
	if err != nil {
		return usecase.STKPushResult{}, fmt.Errorf("marshal stk push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/mpesa/stk-push", bytes.NewReader(body))
	if err != nil {
		return usecase.STKPushResult{}, fmt.Errorf("build stk push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return usecase.STKPushResult{}, fmt.Errorf("stk push round trip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return usecase.STKPushResult{}, &usecase.GatewayError{Message: failureMessage(resp)}
	}

	var out stkPushResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return usecase.STKPushResult{}, fmt.Errorf("decode stk push response: %w", err)
	}
	return usecase.STKPushResult{
		ResponseCode:        out.ResponseCode,
		CheckoutRequestID:   out.CheckoutRequestID,
		ResponseDescription: out.ResponseDescription,
		CustomerMessage:     out.CustomerMessage,
		ErrorMessage:        out.ErrorMessage,
	}, nil
}

// failureMessage mirrors the frontend contract: prefer the payload's details,
// then its error field, else "HTTP <status>".
func failureMessage(resp *http.Response) string {
	var payload errorResp
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if len(payload.Details) > 0 {
			var s string
			if json.Unmarshal(payload.Details, &s) == nil && s != "" {
				return s
			}
			return string(payload.Details)
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}

var _ usecase.PaymentGateway = (*Client)(nil)
