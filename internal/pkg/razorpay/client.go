// Package razorpay talks to a Razorpay-compatible orders API and verifies
// checkout signatures.
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultCurrency = "INR"

var (
	ErrNotConfigured = errors.New("razorpay client is not configured")
	ErrTimeout       = errors.New("razorpay request timed out")
)

// Config holds Razorpay API configuration
type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// Client is a minimal Razorpay orders client
type Client struct {
	httpClient *http.Client
	config     Config
}

// OrderRequest is the body of POST /v1/orders. Amount is in minor units.
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the gateway's view of a created order
type Order struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// NewClient creates a Razorpay client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.razorpay.com"
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
	}
}

// KeyID is the public key the checkout widget needs
func (c *Client) KeyID() string {
	return c.config.KeyID
}

// CreateOrder registers an order with the gateway
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("validation error: amount must be > 0")
	}
	if strings.TrimSpace(req.Receipt) == "" {
		return nil, fmt.Errorf("validation error: receipt must be non-empty")
	}
	if c == nil || c.config.KeyID == "" || c.config.KeySecret == "" {
		return nil, ErrNotConfigured
	}
	if req.Currency == "" {
		req.Currency = defaultCurrency
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode razorpay request: %w", err)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/v1/orders"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("razorpay request build failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.config.KeyID, c.config.KeySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("razorpay api call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("razorpay response read failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("razorpay api error: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("failed to parse razorpay response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay response has no order id")
	}
	return &order, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
