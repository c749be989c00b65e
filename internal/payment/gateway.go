// Package payment wraps the third-party payment gateway as a single
// blocking operation with a discriminated result, instead of a set of
// callbacks: the customer either paid, dismissed the gateway, or the
// gateway could not be brought up at all (the error return).
package payment

import "context"

type Outcome int

const (
	// OutcomePaid means the gateway reported a successful payment and
	// Confirmation carries its signed fields.
	OutcomePaid Outcome = iota + 1
	// OutcomeDismissed means the customer closed the gateway without
	// paying. No order exists.
	OutcomeDismissed
)

// Confirmation is the gateway's signed proof of payment, forwarded to the
// backend verify endpoint as-is.
type Confirmation struct {
	OrderID   string
	PaymentID string
	Signature string
}

type Result struct {
	Outcome      Outcome
	Confirmation Confirmation
}

// Session is the payment handle obtained from the backend before the
// gateway is shown. Amount is in minor currency units.
type Session struct {
	Key      string
	Amount   int64
	Currency string
	OrderID  string
}

// Prefill seeds the gateway form with what the checkout already knows.
type Prefill struct {
	Name    string
	Email   string
	Contact string
	Notes   map[string]string
}

type Gateway interface {
	// Collect runs the gateway for the given session and blocks until
	// the customer pays or dismisses it, or ctx is cancelled. A non-nil
	// error means the gateway never became usable.
	Collect(ctx context.Context, session Session, prefill Prefill) (Result, error)
}
