package svea

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

// ErrConfiguration indicates missing required credentials at setup.
var ErrConfiguration = errors.New("svea: missing configuration")

// APIError is a normalized non-success response from the provider. It covers
// both transport-level failures (non-2xx) and logical failures reported via
// an embedded result code on an otherwise successful create.
type APIError struct {
	StatusCode int
	ResultCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.ResultCode != 0 {
		return fmt.Sprintf("svea: result code %d: %s", e.ResultCode, e.Message)
	}
	return fmt.Sprintf("svea: http %d: %s", e.StatusCode, e.Message)
}

// Config configures the checkout API client.
type Config struct {
	// MerchantID and Secret are the checkout credentials. Required.
	MerchantID string
	Secret     string

	// BaseURL is the checkout API base, e.g. https://checkoutapi.svea.com. Required.
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *http.Client

	// Timeout for requests (optional, defaults to 30s). Ignored when
	// HTTPClient is supplied.
	Timeout time.Duration
}

// Client calls the provider's create-order and fetch-order endpoints with
// signed requests.
type Client struct {
	merchantID string
	secret     string
	baseURL    string
	httpClient *http.Client
	nowFunc    func() time.Time
}

// NewClient validates the config and returns a checkout API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.MerchantID == "" || cfg.Secret == "" || cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: merchant id, secret and base url are required", ErrConfiguration)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		merchantID: cfg.MerchantID,
		secret:     cfg.Secret,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		nowFunc:    time.Now,
	}, nil
}

// CreateOrder creates a checkout order. A response with a non-success
// embedded result code is returned as *APIError even when the transport
// call succeeded.
func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CheckoutOrder, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal create order request: %w", err)
	}

	order, err := c.do(ctx, http.MethodPost, "/api/orders", body)
	if err != nil {
		return nil, err
	}
	if rc := order.ResultCode; rc != 0 && (rc < 200 || rc > 299) {
		return nil, &APIError{StatusCode: http.StatusOK, ResultCode: rc, Message: fmt.Sprintf("order creation rejected with result code %d", rc)}
	}
	return order, nil
}

// FetchOrder retrieves the live order record; the signing input body is the
// empty string.
func (c *Client) FetchOrder(ctx context.Context, orderID int64) (*CheckoutOrder, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*CheckoutOrder, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	ts := Timestamp(c.nowFunc())
	req.Header.Set("Authorization", "Svea "+AuthToken(c.merchantID, c.secret, body, ts))
	req.Header.Set("Timestamp", ts)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("svea request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read svea response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, normalizeError(resp, respBody)
	}

	var order CheckoutOrder
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("decode svea order: %w", err)
	}
	return &order, nil
}

// normalizeError extracts the best available message: a response header, a
// JSON error field, raw body text, then the status text.
func normalizeError(resp *http.Response, body []byte) *APIError {
	msg := resp.Header.Get("ErrorMessage")

	if msg == "" && len(body) > 0 {
		var fields struct {
			ErrorMessage string `json:"ErrorMessage"`
			Message      string `json:"Message"`
			Error        string `json:"error"`
		}
		if err := json.Unmarshal(body, &fields); err == nil {
			switch {
			case fields.ErrorMessage != "":
				msg = fields.ErrorMessage
			case fields.Message != "":
				msg = fields.Message
			case fields.Error != "":
				msg = fields.Error
			}
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
