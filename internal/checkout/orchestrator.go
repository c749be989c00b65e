// Package checkout coordinates placing an order: shipping validation,
// priority-delivery derivation, the cash-on-delivery and online payment
// branches, and the finalize step that clears the cart. Failures always
// leave the cart intact and the flow ready for a retry.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mekaroindia/mekaro/internal/backend"
	"github.com/mekaroindia/mekaro/internal/cart"
	"github.com/mekaroindia/mekaro/internal/eligibility"
	"github.com/mekaroindia/mekaro/internal/payment"
)

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentOnline PaymentMethod = "ONLINE"
)

// DefaultPriorityHours is the delivery window attached to priority orders.
const DefaultPriorityHours = 24

var (
	// ErrSubmissionInFlight rejects a second place-order while one is
	// already submitting or verifying.
	ErrSubmissionInFlight = errors.New("an order submission is already in flight")
	ErrEmptyCart          = errors.New("cart is empty")
	// ErrPaymentCancelled means the customer dismissed the gateway. No
	// order was created and the cart is unchanged.
	ErrPaymentCancelled = errors.New("payment cancelled")
	// ErrVerificationFailed means the gateway confirmation did not pass
	// the backend's signature check.
	ErrVerificationFailed = errors.New("payment verification failed")
)

// ValidationError lists the required shipping fields that are empty. The
// flow stays in READY; nothing was submitted.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Backend is the slice of the REST client the orchestrator needs.
type Backend interface {
	CurrentUser(ctx context.Context) (*backend.User, error)
	CreateOrder(ctx context.Context, payload backend.OrderPayload) error
	InitiatePayment(ctx context.Context, amount float64) (*backend.PaymentSession, error)
	VerifyPayment(ctx context.Context, req backend.VerifyRequest) (*backend.VerifyResult, error)
}

// Cart is the slice of the cart manager the orchestrator needs.
type Cart interface {
	Items() []cart.LineItem
	Clear() error
}

type Orchestrator struct {
	api     Backend
	cart    Cart
	gateway payment.Gateway
	// onFinalized is the navigation hook, invoked exactly once after the
	// cart has been cleared on a success path.
	onFinalized func()
	log         *slog.Logger

	mu         sync.Mutex
	status     Status
	submitting bool
	finalized  bool
	email      string
}

func New(api Backend, ct Cart, gw payment.Gateway, onFinalized func(), log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		api:         api,
		cart:        ct,
		gateway:     gw,
		onFinalized: onFinalized,
		log:         log,
		status:      StatusLoadingProfile,
	}
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Orchestrator) setStatus(s Status) {
	o.mu.Lock()
	o.status = s
	o.mu.Unlock()
	o.log.Debug("checkout status", "status", s)
}

// Begin loads the current user's profile and derives a prefilled shipping
// form from it. Prefill is best effort: on failure the flow still reaches
// READY with an empty form, and the error is surfaced for display only.
func (o *Orchestrator) Begin(ctx context.Context) (backend.ShippingAddress, error) {
	user, err := o.api.CurrentUser(ctx)
	if err != nil {
		o.log.Warn("profile prefill failed", "error", err)
		o.setStatus(StatusReady)
		return backend.ShippingAddress{}, fmt.Errorf("cannot load user info: %w", err)
	}

	form := backend.ShippingAddress{
		FullName: strings.TrimSpace(user.FirstName + " " + user.LastName),
	}
	if p := user.Profile; p != nil {
		form.AddressLine1 = p.AddressLine1
		form.City = p.City
		form.State = p.State
		form.Pincode = p.Pincode
		form.Phone = p.Phone
	}

	o.mu.Lock()
	o.email = user.Email
	o.mu.Unlock()

	o.setStatus(StatusReady)
	return form, nil
}

// PriorityOption reports whether the form's pincode is eligible for
// priority delivery and whether the customer's opt-in is effective.
func (o *Orchestrator) PriorityOption(form backend.ShippingAddress, selected bool) (eligible, effective bool) {
	return eligibility.PriorityOption(form.Pincode, selected)
}

// PlaceOrder runs the whole submission for the captured form. The cart is
// snapshotted up front; later cart mutations do not affect the payload.
// Only one submission may be in flight at a time.
func (o *Orchestrator) PlaceOrder(ctx context.Context, form backend.ShippingAddress, method PaymentMethod, prioritySelected bool) error {
	o.mu.Lock()
	if o.submitting {
		o.mu.Unlock()
		return ErrSubmissionInFlight
	}
	o.submitting = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.submitting = false
		o.mu.Unlock()
	}()

	o.setStatus(StatusValidating)

	items := o.cart.Items()
	if len(items) == 0 {
		o.setStatus(StatusReady)
		return ErrEmptyCart
	}
	if missing := missingFields(form); len(missing) > 0 {
		o.setStatus(StatusReady)
		return &ValidationError{Missing: missing}
	}

	payload := buildPayload(items, form, method, prioritySelected)

	switch method {
	case PaymentCOD:
		return o.submitCOD(ctx, payload)
	case PaymentOnline:
		return o.payOnline(ctx, payload, form)
	default:
		return fmt.Errorf("unknown payment method %q", method)
	}
}

func missingFields(form backend.ShippingAddress) []string {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"full_name", form.FullName},
		{"address_line1", form.AddressLine1},
		{"city", form.City},
		{"state", form.State},
		{"pincode", form.Pincode},
		{"phone", form.Phone},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// buildPayload snapshots the cart into the wire payload. The total is
// computed here, once, from the captured items. Priority fields are only
// set when the opt-in is effective for the form's pincode.
func buildPayload(items []cart.LineItem, form backend.ShippingAddress, method PaymentMethod, prioritySelected bool) backend.OrderPayload {
	total := decimal.Zero
	wireItems := make([]backend.OrderItemPayload, len(items))
	for i, li := range items {
		total = total.Add(li.Subtotal())
		wireItems[i] = backend.OrderItemPayload{
			ProductID: li.ProductID,
			Qty:       li.Quantity,
			Price:     li.UnitPrice.InexactFloat64(),
		}
	}

	_, effective := eligibility.PriorityOption(form.Pincode, prioritySelected)
	var hours *int
	if effective {
		h := DefaultPriorityHours
		hours = &h
	}

	return backend.OrderPayload{
		Items:           wireItems,
		ShippingAddress: form,
		TotalAmount:     total.InexactFloat64(),
		PaymentMethod:   string(method),
		IsPriority:      effective,
		PriorityHours:   hours,
	}
}

func (o *Orchestrator) submitCOD(ctx context.Context, payload backend.OrderPayload) error {
	o.setStatus(StatusCODSubmitting)

	if err := o.api.CreateOrder(ctx, payload); err != nil {
		return o.fail(fmt.Errorf("order creation failed: %w", err))
	}
	return o.finish()
}

func (o *Orchestrator) payOnline(ctx context.Context, payload backend.OrderPayload, form backend.ShippingAddress) error {
	o.setStatus(StatusInitiating)

	session, err := o.api.InitiatePayment(ctx, payload.TotalAmount)
	if err != nil {
		return o.fail(fmt.Errorf("could not initiate payment: %w", err))
	}

	o.setStatus(StatusAwaitingGateway)

	o.mu.Lock()
	email := o.email
	o.mu.Unlock()

	res, err := o.gateway.Collect(ctx, payment.Session{
		Key:      session.KeyID,
		Amount:   session.Amount,
		Currency: session.Currency,
		OrderID:  session.ID,
	}, payment.Prefill{
		Name:    form.FullName,
		Email:   email,
		Contact: form.Phone,
		Notes:   map[string]string{"address": form.AddressLine1 + ", " + form.City},
	})
	if err != nil {
		return o.fail(fmt.Errorf("payment gateway failed: %w", err))
	}

	switch res.Outcome {
	case payment.OutcomeDismissed:
		// No order exists; back to READY with the cart untouched.
		o.setStatus(StatusReady)
		return ErrPaymentCancelled
	case payment.OutcomePaid:
		return o.verify(ctx, payload, res.Confirmation)
	default:
		return o.fail(fmt.Errorf("unexpected gateway outcome %d", res.Outcome))
	}
}

func (o *Orchestrator) verify(ctx context.Context, payload backend.OrderPayload, conf payment.Confirmation) error {
	o.setStatus(StatusVerifying)

	result, err := o.api.VerifyPayment(ctx, backend.VerifyRequest{
		GatewayOrderID:   conf.OrderID,
		GatewayPaymentID: conf.PaymentID,
		GatewaySignature: conf.Signature,
		Items:            payload.Items,
		ShippingAddress:  payload.ShippingAddress,
		TotalAmount:      payload.TotalAmount,
		IsPriority:       payload.IsPriority,
		PriorityHours:    payload.PriorityHours,
	})
	if err != nil {
		return o.fail(fmt.Errorf("%w: %v", ErrVerificationFailed, err))
	}
	if !result.Success {
		return o.fail(ErrVerificationFailed)
	}
	return o.finish()
}

// fail records the failure and leaves the flow retry-ready: the cart is
// untouched and the next PlaceOrder is accepted.
func (o *Orchestrator) fail(err error) error {
	o.setStatus(StatusFailed)
	o.log.Warn("checkout failed", "error", err)
	return err
}

// finish clears the cart and fires the navigation hook. Idempotent: a
// repeated success path clears and navigates at most once.
func (o *Orchestrator) finish() error {
	o.setStatus(StatusFinalizing)

	o.mu.Lock()
	first := !o.finalized
	o.finalized = true
	o.mu.Unlock()

	// Clearing is idempotent; repeating it on a re-entered success path
	// is harmless. The navigation hook fires once per flow.
	if err := o.cart.Clear(); err != nil {
		// The order is placed; a stale local snapshot is not a
		// failure of the checkout.
		o.log.Warn("failed to clear cart after order", "error", err)
	}
	if first && o.onFinalized != nil {
		o.onFinalized()
	}

	o.setStatus(StatusDone)
	return nil
}
