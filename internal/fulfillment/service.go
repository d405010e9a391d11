package fulfillment

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fulfillbridge/internal/license"
	"github.com/fulfillbridge/internal/licensekey"
	"github.com/fulfillbridge/internal/payment"
)

// OrderVerifier looks an order up at the payment processor.
type OrderVerifier interface {
	GetOrder(ctx context.Context, orderID string) (*payment.Order, error)
}

// LicenseIssuer creates a license at the licensing service.
type LicenseIssuer interface {
	CreateLicense(ctx context.Context, req license.CreateRequest) (*license.License, error)
}

// Request is one inbound success callback.
type Request struct {
	OrderID string
	Query   url.Values // raw query, logged for remediation
}

// Outcome is the terminal result of a Fulfill call.
type Outcome struct {
	State   State
	Order   *payment.Order
	License *license.License
	Message string
}

// Service runs the verify-then-issue flow. It holds no per-request state and
// is safe for concurrent use.
type Service struct {
	orders   OrderVerifier
	licenses LicenseIssuer
	newKey   func() (string, error)
	now      func() time.Time
	logger   zerolog.Logger
}

type Option func(*Service)

// WithKeyFunc replaces the license key generator.
func WithKeyFunc(fn func() (string, error)) Option {
	return func(s *Service) { s.newKey = fn }
}

// WithClock replaces the clock used for diagnostics.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(orders OrderVerifier, licenses LicenseIssuer, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		orders:   orders,
		licenses: licenses,
		newKey:   licensekey.Generate,
		now:      time.Now,
		logger:   logger.With().Str("component", "fulfillment").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fulfill verifies the order and issues one license for it. Every failure is
// folded into the returned Outcome.
func (s *Service) Fulfill(ctx context.Context, req Request) Outcome {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return Outcome{State: StateInvalidInput, Message: MessageMissingOrder}
	}
	log := s.logger.With().Str("order_id", orderID).Logger()

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, payment.ErrOrderInvalid) {
			log.Warn().Err(err).Msg("order rejected by payment processor")
			return Outcome{State: StateOrderInvalid, Message: MessageInvalidOrder}
		}
		log.Error().Err(err).Msg("payment processor unavailable")
		return Outcome{State: StateOrderUnavailable, Message: MessageOrderUnavailable}
	}
	if order == nil {
		log.Error().Msg("payment processor returned no order")
		return Outcome{State: StateOrderInvalid, Message: MessageInvalidOrder}
	}

	key, err := s.newKey()
	if err != nil {
		s.logRemediation(log, req, "", nil, err)
		return Outcome{State: StateLicenseCreationFailed, Order: order, Message: MessageLicenseUnavailable}
	}

	lic, err := s.licenses.CreateLicense(ctx, license.CreateRequest{Key: key, OrderID: orderID})
	if err != nil {
		var apiErr *license.APIError
		if errors.As(err, &apiErr) {
			s.logRemediation(log, req, key, apiErr.Details(), err)
			return Outcome{State: StateLicenseCreationFailed, Order: order, Message: apiErr.Error()}
		}
		s.logRemediation(log, req, key, nil, err)
		return Outcome{State: StateLicenseCreationFailed, Order: order, Message: MessageLicenseUnavailable}
	}

	log.Info().
		Str("license_id", lic.ID).
		Str("order_reference", order.Reference).
		Msg("order fulfilled")

	return Outcome{State: StateFulfilled, Order: order, License: lic}
}

// logRemediation records a charged order that has no license. An operator has
// to issue the license by hand or refund the payment.
func (s *Service) logRemediation(log zerolog.Logger, req Request, key string, details []string, err error) {
	log.Error().
		Err(err).
		Time("failed_at", s.now()).
		Str("query", req.Query.Encode()).
		Str("license_key", key).
		Strs("details", details).
		Str("remediation", "manual").
		Msg("license creation failed for a paid order")
}
