package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fulfillbridge/internal/retry"
)

const (
	DefaultBaseURL = "https://api.fastspring.com"
	DefaultTimeout = 5 * time.Second

	maxResponseBytes = 1 << 20
)

// Config holds FastSpring API access settings.
type Config struct {
	BaseURL  string            `koanf:"base_url"`
	Username string            `koanf:"username"`
	Password string            `koanf:"password"`
	Timeout  time.Duration     `koanf:"timeout"` // per attempt
	Retry    retry.RetryConfig `koanf:"retry"`
}

// Client verifies orders against the FastSpring API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a FastSpring client. Zero values in cfg fall back to defaults.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("component", "fastspring").Logger(),
	}
}

// GetOrder looks up orderID and returns the first order of the response.
// Infrastructure failures are retried with backoff; ErrOrderInvalid is not.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var order *Order
	result := retry.RetryIf(ctx, c.cfg.Retry, func() error {
		o, err := c.fetchOrder(ctx, orderID)
		if err != nil {
			return err
		}
		order = o
		return nil
	}, IsUnavailable, c.logger.With().Str("order_id", orderID).Logger())

	if !result.Success {
		if result.LastError == nil {
			return nil, &UnavailableError{Err: errors.New("order lookup made no attempt")}
		}
		return nil, result.LastError
	}
	if order == nil {
		return nil, fmt.Errorf("%w: empty lookup result", ErrOrderInvalid)
	}
	return order, nil
}

func (c *Client) fetchOrder(ctx context.Context, orderID string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/orders/%s", strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(orderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Err: fmt.Errorf("error making request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, &UnavailableError{StatusCode: resp.StatusCode, Err: fmt.Errorf("error reading response: %w", err)}
	}
	if len(body) > maxResponseBytes {
		return nil, &UnavailableError{StatusCode: resp.StatusCode, Err: fmt.Errorf("response exceeds %d bytes", maxResponseBytes)}
	}

	c.logger.Debug().
		Str("order_id", orderID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("order lookup")

	switch {
	case resp.StatusCode >= http.StatusInternalServerError, resp.StatusCode == http.StatusTooManyRequests:
		return nil, &UnavailableError{StatusCode: resp.StatusCode, Err: fmt.Errorf("fastspring API error: %s", truncate(body))}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrOrderInvalid, resp.StatusCode)
	}

	var list orderListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: error unmarshaling response: %v", ErrOrderInvalid, err)
	}
	if len(list.Orders) == 0 {
		return nil, fmt.Errorf("%w: no orders in response", ErrOrderInvalid)
	}

	return &list.Orders[0], nil
}

func truncate(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
