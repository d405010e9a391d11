package fulfillment

// State is a step of the fulfillment flow. The flow only moves forward:
// Start → InputValidated → OrderVerified → LicenseCreated → Fulfilled,
// or stops at one of the failure states.
type State string

const (
	StateStart          State = "start"
	StateInputValidated State = "input_validated"
	StateOrderVerified  State = "order_verified"
	StateLicenseCreated State = "license_created"
	StateFulfilled      State = "fulfilled"

	StateInvalidInput          State = "invalid_input"
	StateOrderInvalid          State = "order_invalid"
	StateOrderUnavailable      State = "order_unavailable"
	StateLicenseCreationFailed State = "license_creation_failed"
)

// Terminal reports whether the flow stops in s.
func (s State) Terminal() bool {
	switch s {
	case StateFulfilled, StateInvalidInput, StateOrderInvalid, StateOrderUnavailable, StateLicenseCreationFailed:
		return true
	}
	return false
}

// Failed reports whether s is a terminal failure.
func (s State) Failed() bool {
	return s.Terminal() && s != StateFulfilled
}

// NeedsRemediation is true only when the customer was charged but holds no license.
func (s State) NeedsRemediation() bool {
	return s == StateLicenseCreationFailed
}

// User-facing messages.
const (
	MessageMissingOrder       = "Missing order details."
	MessageInvalidOrder       = "Invalid order ID."
	MessageOrderUnavailable   = "We could not reach our payment processor to verify your order. Please try again in a few minutes."
	MessageLicenseUnavailable = "We could not issue your license. Our team has been notified."
)
