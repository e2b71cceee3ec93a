// Package rates proxies the external retail currency-rate endpoint.
package rates

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"price-lookup/internal/config"
	"price-lookup/internal/models"
	"price-lookup/pkg/errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// APIKeyHeader carries the rate provider key.
const APIKeyHeader = "x-api-key"

// maxBody bounds how much of the upstream response is read.
const maxBody = 1 << 20

// Bridge fetches the retail rate. Every call is a fresh upstream request.
type Bridge struct {
	url    string
	key    string
	client *http.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewBridge(cfg *config.Config, logger *zap.Logger) *Bridge {
	timeout := cfg.RateTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Bridge{
		url:    cfg.RateAPIURL,
		key:    cfg.RateAPIKey,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		now:    time.Now,
	}
}

// RetailRate returns the current retail rate.
// Missing configuration fails only the current call.
func (b *Bridge) RetailRate(ctx context.Context) (*models.RateQuote, error) {
	if b.url == "" || b.key == "" {
		return nil, errors.NewConfigError("TASA_API_URL or TASA_API_KEY is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("invalid TASA_API_URL: %v", err))
	}
	req.Header.Set(APIKeyHeader, b.key)
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Error("Rate upstream request failed", zap.String("url", b.url), zap.Error(err))
		return nil, errors.NewUpstreamFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b.logger.Warn("Rate upstream returned non-2xx", zap.Int("status", resp.StatusCode))
		return nil, errors.NewUpstreamError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errors.NewUpstreamFailure(err)
	}

	value, err := extractValue(body)
	if err != nil {
		return nil, err
	}

	f := value.InexactFloat64()
	b.logger.Debug("Retail rate fetched", zap.Float64("valor", f))
	return &models.RateQuote{Value: f, AsOf: b.now().UTC()}, nil
}

// extractValue reads Valor (or valor) from the first array element or the object body.
func extractValue(body []byte) (decimal.Decimal, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return decimal.Zero, errNoRate()
	}

	var first map[string]json.RawMessage
	if body[0] == '[' {
		var list []map[string]json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return decimal.Zero, errors.NewUpstreamFailure(fmt.Errorf("decode rate array: %w", err))
		}
		if len(list) == 0 {
			return decimal.Zero, errNoRate()
		}
		first = list[0]
	} else if err := json.Unmarshal(body, &first); err != nil {
		return decimal.Zero, errors.NewUpstreamFailure(fmt.Errorf("decode rate object: %w", err))
	}
	if first == nil {
		return decimal.Zero, errNoRate()
	}

	raw, ok := first["Valor"]
	if !ok || isNull(raw) {
		raw, ok = first["valor"]
	}
	if !ok || isNull(raw) {
		return decimal.Zero, errNoRate()
	}

	// decimal accepts both a JSON number and a quoted numeric string
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, errors.NewUpstreamFailure(fmt.Errorf("decode rate value: %w", err))
	}
	return d, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func errNoRate() *errors.StandardError {
	return errors.NewNotFoundError("no rate found")
}
