package backend

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoPaymentSession means the payment initiate response was malformed
// (missing the gateway order id), so the gateway must not be invoked.
var ErrNoPaymentSession = errors.New("payment session is missing an order id")

// APIError is a non-2xx response from the backend, carrying the
// backend-provided detail when one was present.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend: %s (status %d)", e.Detail, e.Status)
	}
	return fmt.Sprintf("backend: request failed with status %d", e.Status)
}

func apiErrorFrom(status int, body []byte) *APIError {
	var payload struct {
		Detail string `json:"detail"`
		Err    string `json:"error"`
	}
	// Best effort: an unparseable error body still yields a usable error.
	_ = json.Unmarshal(body, &payload)

	detail := payload.Detail
	if detail == "" {
		detail = payload.Err
	}
	return &APIError{Status: status, Detail: detail}
}
