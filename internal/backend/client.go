// Package backend is the typed client for the storefront REST API. It
// attaches the bearer token when one is present, instruments the transport,
// and fails fast through a circuit breaker; there is no automatic retry —
// every retry is a user action.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TokenSource yields the persisted auth token, when one exists. The guard
// in internal/auth implements it.
type TokenSource interface {
	Token() (string, bool)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
	breaker *gobreaker.CircuitBreaker[*apiResponse]
	log     *slog.Logger
}

type apiResponse struct {
	status int
	body   []byte
}

func New(cfg Config, tokens TokenSource, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*apiResponse](gobreaker.Settings{
		Name:    "backend",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens:  tokens,
		breaker: breaker,
		log:     log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// The breaker only counts transport failures and 5xx responses;
	// client errors are business rejections, not backend outage signals.
	res, err := c.breaker.Execute(func() (*apiResponse, error) {
		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, apiErrorFrom(resp.StatusCode, raw)
		}
		return &apiResponse{status: resp.StatusCode, body: raw}, nil
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		c.log.Warn("backend request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("backend request failed: %w", err)
	}

	if res.status >= http.StatusBadRequest {
		return apiErrorFrom(res.status, res.body)
	}
	if out != nil && len(res.body) > 0 {
		if err := json.Unmarshal(res.body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Login obtains a bearer token for the given credentials. Persisting it is
// the caller's concern.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	req := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var res struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/login/", nil, req, &res); err != nil {
		return "", err
	}
	if res.Access == "" {
		return "", errors.New("login response is missing a token")
	}
	return res.Access, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/user/", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CreateOrder(ctx context.Context, payload OrderPayload) error {
	return c.do(ctx, http.MethodPost, "/api/orders/create/", nil, payload, nil)
}

func (c *Client) InitiatePayment(ctx context.Context, amount float64) (*PaymentSession, error) {
	req := struct {
		Amount float64 `json:"amount"`
	}{Amount: amount}

	var session PaymentSession
	if err := c.do(ctx, http.MethodPost, "/api/orders/pay/initiate/", nil, req, &session); err != nil {
		return nil, err
	}
	if session.ID == "" {
		return nil, ErrNoPaymentSession
	}
	return &session, nil
}

func (c *Client) VerifyPayment(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	var res VerifyResult
	if err := c.do(ctx, http.MethodPost, "/api/orders/pay/verify/", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Products fetches one page of the product list. The backend answers
// either a {results, count} envelope or, for unpaginated deployments, a
// flat array; both are normalized here.
func (c *Client) Products(ctx context.Context, query url.Values) ([]Product, int, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/products/", query, nil, &raw); err != nil {
		return nil, 0, err
	}
	return decodeProductList(raw)
}

func decodeProductList(raw json.RawMessage) ([]Product, int, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var products []Product
		if err := json.Unmarshal(raw, &products); err != nil {
			return nil, 0, fmt.Errorf("failed to decode product list: %w", err)
		}
		return products, len(products), nil
	}

	var envelope struct {
		Results []Product `json:"results"`
		Count   int       `json:"count"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, 0, fmt.Errorf("failed to decode product list: %w", err)
	}
	return envelope.Results, envelope.Count, nil
}

func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	var product Product
	path := fmt.Sprintf("/api/products/%d/", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/api/categories/", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]OrderSummary, error) {
	var orders []OrderSummary
	if err := c.do(ctx, http.MethodGet, "/api/orders/my-orders/", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) Order(ctx context.Context, id int64) (*OrderDetail, error) {
	var order OrderDetail
	path := fmt.Sprintf("/api/orders/%d/", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
