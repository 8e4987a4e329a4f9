package leads

import "errors"

var (
	// ErrLeadNotFound is returned when no lead exists for a phone number.
	ErrLeadNotFound = errors.New("leads: lead not found")

	// ErrMissingPhone is returned when an operation is attempted without a phone number.
	ErrMissingPhone = errors.New("leads: phone number is required")
)
