// Package apiclient talks to the price-lookup HTTP API from a scan station.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"price-lookup/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeout is the budget of a single API call.
const DefaultTimeout = 12 * time.Second

// NetworkTimeoutError is returned when a call exceeds the client budget.
type NetworkTimeoutError struct {
	Path  string
	After time.Duration
}

func (e *NetworkTimeoutError) Error() string {
	return fmt.Sprintf("timeout querying the server (%s after %s)", e.Path, e.After)
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Code    string
	// DB is set by /api/db/health ("down")
	DB string
}

func (e *APIError) Error() string {
	return e.Message
}

// HealthStatus is the /api/health answer.
type HealthStatus struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

// DBHealth is the /api/db/health answer.
type DBHealth struct {
	DB     string                   `json:"db"`
	Result []map[string]interface{} `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

type Client struct {
	base    string
	timeout time.Duration
	http    *http.Client
	logger  *zap.Logger
}

// New creates a client for base (trailing slash ignored). timeout <= 0 uses DefaultTimeout.
func New(base string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		timeout: timeout,
		http:    &http.Client{},
		logger:  logger,
	}
}

// Search runs q against /api/buscar.
func (c *Client) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	params := url.Values{}
	if q.Barcode != "" {
		params.Set("barcode", q.Barcode)
	} else {
		params.Set("referencia", q.Reference)
	}
	if q.One {
		params.Set("one", "1")
	}

	var res models.SearchResult
	if err := c.get(ctx, "/api/buscar?"+params.Encode(), &res); err != nil {
		return nil, err
	}
	if res.Data == nil {
		res.Data = []models.InventoryItem{}
	}
	return &res, nil
}

func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var res HealthStatus
	if err := c.get(ctx, "/api/health", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) DBHealth(ctx context.Context) (*DBHealth, error) {
	var res DBHealth
	if err := c.get(ctx, "/api/db/health", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) RetailRate(ctx context.Context) (*models.RateQuote, error) {
	var res models.RateQuote
	if err := c.get(ctx, "/api/tasa-detal", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return &NetworkTimeoutError{Path: path, After: c.timeout}
		}
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return &NetworkTimeoutError{Path: path, After: c.timeout}
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	c.logger.Debug("API call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: fmt.Sprintf("Error %d", status)}

	var payload struct {
		Error string `json:"error"`
		Code  string `json:"code"`
		DB    string `json:"db"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			apiErr.Message = payload.Error
		}
		apiErr.Code = payload.Code
		apiErr.DB = payload.DB
	}
	return apiErr
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
