package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fulfillbridge/internal/fulfillment"
)

const (
	messageTooManyRequests = "Too many requests. Please wait a moment and try again."
	messageInternal        = "Something went wrong. Please contact support with your order ID."
	messageNotFound        = "Page not found."
)

func (s *Server) handleIndex(c echo.Context) error {
	return c.Render(http.StatusOK, viewIndex, nil)
}

// handleSuccess is the redirect target of the checkout.
func (s *Server) handleSuccess(c echo.Context) error {
	query := c.QueryParams()

	// Once the processor confirms payment the license call must not be cut
	// short by the browser going away; each upstream call has its own timeout.
	ctx := context.WithoutCancel(c.Request().Context())

	out := s.fulfiller.Fulfill(ctx, fulfillment.Request{
		OrderID: query.Get("orderId"),
		Query:   query,
	})

	if out.State == fulfillment.StateFulfilled {
		return c.Render(http.StatusOK, viewSuccess, SuccessView{License: out.License, Order: out.Order})
	}
	return c.Render(statusFor(out.State), viewError, ErrorView{Error: out.Message})
}

func statusFor(state fulfillment.State) int {
	switch state {
	case fulfillment.StateInvalidInput:
		return http.StatusBadRequest
	case fulfillment.StateOrderInvalid:
		return http.StatusNotFound
	case fulfillment.StateOrderUnavailable:
		return http.StatusServiceUnavailable
	case fulfillment.StateLicenseCreationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleError renders the error page for anything that escaped a handler,
// including recovered panics and unknown routes.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := messageInternal
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch {
		case code == http.StatusNotFound:
			message = messageNotFound
		case code < http.StatusInternalServerError:
			message = http.StatusText(code) + "."
		}
	}

	if code >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.Render(code, viewError, ErrorView{Error: message})
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to render error page")
	}
}
