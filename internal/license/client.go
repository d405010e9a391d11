package license

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const maxResponseBytes = 1 << 20

// Client creates licenses through the licensing service API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.EffectiveTimeout()},
		logger: logger.With().Str("component", "keygen").Logger(),
	}
}

// CreateLicense creates a user-less license for req under the configured policy.
// Rejections come back as *APIError, transport failures as NetworkError.
// The call is made once; failed creations are never retried here.
func (c *Client) CreateLicense(ctx context.Context, req CreateRequest) (*License, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.EffectiveTimeout())
	defer cancel()

	payload, err := json.Marshal(c.newCreateDocument(req))
	if err != nil {
		return nil, fmt.Errorf("error marshaling license: %w", err)
	}

	endpoint := fmt.Sprintf("%s/accounts/%s/licenses", strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.AccountID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.ProductToken)
	httpReq.Header.Set("Content-Type", mediaType)
	httpReq.Header.Set("Accept", mediaType)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, NetworkError{Err: fmt.Errorf("error reading response: %w", err)}
	}

	c.logger.Debug().
		Str("order_id", req.OrderID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("license create")

	return decodeCreateResponse(resp.StatusCode, body)
}

func (c *Client) newCreateDocument(req CreateRequest) createDocument {
	return createDocument{Data: createResource{
		Type: typeLicenses,
		Attributes: createAttributes{
			Key:      req.Key,
			Metadata: map[string]string{MetadataOrderID: req.OrderID},
		},
		Relationships: createRelationships{
			Policy: relationship{Data: ResourceIdentifier{Type: typePolicies, ID: c.cfg.PolicyID}},
		},
	}}
}

func decodeCreateResponse(status int, body []byte) (*License, error) {
	success := status >= 200 && status < 300

	var doc responseDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		if success {
			return nil, fmt.Errorf("error unmarshaling response: %w", err)
		}
		return nil, statusError(status)
	}

	if len(doc.Errors) > 0 {
		return nil, &APIError{StatusCode: status, Errors: doc.Errors}
	}
	if !success {
		return nil, statusError(status)
	}
	if len(doc.Data) == 0 || string(doc.Data) == "null" {
		return nil, ErrEmptyDocument
	}

	var lic License
	if err := json.Unmarshal(doc.Data, &lic); err != nil {
		return nil, fmt.Errorf("error unmarshaling license: %w", err)
	}
	return &lic, nil
}

func statusError(status int) *APIError {
	return &APIError{
		StatusCode: status,
		Errors: []ErrorObject{{
			Detail: fmt.Sprintf("licensing service returned status %d", status),
		}},
	}
}
