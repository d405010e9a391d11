package payment

import (
	"errors"
	"fmt"
)

// ErrOrderInvalid means the processor answered but did not confirm the order.
var ErrOrderInvalid = errors.New("payment: order invalid")

// UnavailableError wraps infrastructure failures (transport errors, timeouts,
// 5xx and 429 responses) that say nothing about the order itself.
type UnavailableError struct {
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("payment processor unavailable (status %d): %v", e.StatusCode, e.Err)
	}
	return "payment processor unavailable: " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// IsUnavailable reports whether err is an infrastructure failure worth retrying.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
