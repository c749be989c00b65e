package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekaroindia/mekaro/internal/backend"
	"github.com/mekaroindia/mekaro/internal/cart"
	"github.com/mekaroindia/mekaro/internal/payment"
)

type memStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string][]byte)}
}

func (m *memStore) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type mockBackend struct {
	mu sync.Mutex

	user    *backend.User
	userErr error

	createOrderCalls []backend.OrderPayload
	createOrderErr   error
	// createOrderGate, when set, blocks CreateOrder until released.
	createOrderStarted chan struct{}
	createOrderGate    chan struct{}

	initiateCalls int
	session       *backend.PaymentSession
	initiateErr   error

	verifyCalls  []backend.VerifyRequest
	verifyResult *backend.VerifyResult
	verifyErr    error
}

func (m *mockBackend) CurrentUser(context.Context) (*backend.User, error) {
	if m.userErr != nil {
		return nil, m.userErr
	}
	return m.user, nil
}

func (m *mockBackend) CreateOrder(_ context.Context, payload backend.OrderPayload) error {
	m.mu.Lock()
	m.createOrderCalls = append(m.createOrderCalls, payload)
	started, gate := m.createOrderStarted, m.createOrderGate
	m.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		<-gate
	}
	return m.createOrderErr
}

func (m *mockBackend) InitiatePayment(context.Context, float64) (*backend.PaymentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initiateCalls++
	if m.initiateErr != nil {
		return nil, m.initiateErr
	}
	return m.session, nil
}

func (m *mockBackend) VerifyPayment(_ context.Context, req backend.VerifyRequest) (*backend.VerifyResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyCalls = append(m.verifyCalls, req)
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	return m.verifyResult, nil
}

func (m *mockBackend) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.createOrderCalls)
}

func validForm() backend.ShippingAddress {
	return backend.ShippingAddress{
		FullName:     "Asha Kumar",
		AddressLine1: "12 Anna Salai",
		City:         "Chennai",
		State:        "TN",
		Pincode:      "600001",
		Phone:        "9876543210",
	}
}

// setupCheckout builds an orchestrator over a real cart manager holding
// [{price:100, qty:2}, {price:50, qty:1}].
func setupCheckout(t *testing.T, api *mockBackend, gw payment.Gateway) (*Orchestrator, *cart.Manager, *int) {
	t.Helper()

	mgr := cart.NewManager(newMemStore(), slog.Default())
	require.NoError(t, mgr.Add(cart.Product{ID: 1, Title: "A", UnitPrice: decimal.NewFromInt(100)}, 2))
	require.NoError(t, mgr.Add(cart.Product{ID: 2, Title: "B", UnitPrice: decimal.NewFromInt(50)}, 1))

	finalized := 0
	orch := New(api, mgr, gw, func() { finalized++ }, slog.Default())
	return orch, mgr, &finalized
}

func TestBegin_PrefillsFromProfile(t *testing.T) {
	api := &mockBackend{user: &backend.User{
		FirstName: "Asha",
		LastName:  "Kumar",
		Email:     "asha@example.com",
		Profile: &backend.UserProfile{
			AddressLine1: "12 Anna Salai",
			City:         "Chennai",
			State:        "TN",
			Pincode:      "600001",
			Phone:        "9876543210",
		},
	}}
	orch, _, _ := setupCheckout(t, api, &payment.ScriptedGateway{})

	form, err := orch.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, validForm(), form)
	assert.Equal(t, StatusReady, orch.Status())
}

func TestBegin_ProfileFailureStillReady(t *testing.T) {
	api := &mockBackend{userErr: errors.New("boom")}
	orch, _, _ := setupCheckout(t, api, &payment.ScriptedGateway{})

	form, err := orch.Begin(context.Background())
	assert.Error(t, err)
	assert.Equal(t, backend.ShippingAddress{}, form)
	// Manual entry is still possible.
	assert.Equal(t, StatusReady, orch.Status())
}

func TestPlaceOrder_ValidationBlocksSubmission(t *testing.T) {
	api := &mockBackend{}
	orch, _, _ := setupCheckout(t, api, &payment.ScriptedGateway{})

	form := validForm()
	form.City = ""
	form.Phone = "  "

	err := orch.PlaceOrder(context.Background(), form, PaymentCOD, false)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"city", "phone"}, vErr.Missing)
	assert.Equal(t, 0, api.orderCount())
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	api := &mockBackend{}
	orch, mgr, _ := setupCheckout(t, api, &payment.ScriptedGateway{})
	require.NoError(t, mgr.Clear())

	err := orch.PlaceOrder(context.Background(), validForm(), PaymentCOD, false)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrder_CODHappyPath(t *testing.T) {
	api := &mockBackend{}
	orch, mgr, finalized := setupCheckout(t, api, &payment.ScriptedGateway{})

	err := orch.PlaceOrder(context.Background(), validForm(), PaymentCOD, false)
	require.NoError(t, err)

	require.Equal(t, 1, api.orderCount())
	payload := api.createOrderCalls[0]
	assert.Len(t, payload.Items, 2)
	assert.Equal(t, 250.0, payload.TotalAmount)
	assert.Equal(t, "COD", payload.PaymentMethod)

	assert.Empty(t, mgr.Items())
	assert.Equal(t, 1, *finalized)
	assert.Equal(t, StatusDone, orch.Status())
}

func TestPlaceOrder_CODFailureKeepsCart(t *testing.T) {
	api := &mockBackend{createOrderErr: &backend.APIError{Status: 400, Detail: "out of stock"}}
	orch, mgr, finalized := setupCheckout(t, api, &payment.ScriptedGateway{})

	err := orch.PlaceOrder(context.Background(), validForm(), PaymentCOD, false)
	require.Error(t, err)

	assert.Len(t, mgr.Items(), 2)
	assert.Equal(t, 0, *finalized)
	assert.Equal(t, StatusFailed, orch.Status())

	// Retry is accepted after a failure.
	api.createOrderErr = nil
	require.NoError(t, orch.PlaceOrder(context.Background(), validForm(), PaymentCOD, false))
	assert.Empty(t, mgr.Items())
}

func TestPlaceOrder_PriorityOnlyWhenEligibleAndSelected(t *testing.T) {
	api := &mockBackend{}
	orch, _, _ := setupCheckout(t, api, &payment.ScriptedGateway{})

	form := validForm() // pincode 600001, eligible
	require.NoError(t, orch.PlaceOrder(context.Background(), form, PaymentCOD, true))

	payload := api.createOrderCalls[0]
	assert.True(t, payload.IsPriority)
	require.NotNil(t, payload.PriorityHours)
	assert.Equal(t, DefaultPriorityHours, *payload.PriorityHours)
}

func TestPlaceOrder_PriorityDroppedForIneligiblePincode(t *testing.T) {
	api := &mockBackend{}
	orch, _, _ := setupCheckout(t, api, &payment.ScriptedGateway{})

	form := validForm()
	form.Pincode = "600100" // outside the service area
	require.NoError(t, orch.PlaceOrder(context.Background(), form, PaymentCOD, true))

	payload := api.createOrderCalls[0]
	assert.False(t, payload.IsPriority)
	assert.Nil(t, payload.PriorityHours)
}

func TestPlaceOrder_OnlineHappyPath(t *testing.T) {
	api := &mockBackend{
		session:      &backend.PaymentSession{ID: "order_abc", Amount: 25000, Currency: "INR", KeyID: "rzp_test"},
		verifyResult: &backend.VerifyResult{Success: true},
	}
	gw := &payment.ScriptedGateway{}
	gw.EnqueuePaid(payment.Confirmation{OrderID: "order_abc", PaymentID: "pay_1", Signature: "sig"})
	orch, mgr, finalized := setupCheckout(t, api, gw)

	err := orch.PlaceOrder(context.Background(), validForm(), PaymentOnline, false)
	require.NoError(t, err)

	require.Len(t, gw.Sessions, 1)
	assert.Equal(t, "order_abc", gw.Sessions[0].OrderID)

	require.Len(t, api.verifyCalls, 1)
	verify := api.verifyCalls[0]
	assert.Equal(t, "order_abc", verify.GatewayOrderID)
	assert.Equal(t, "sig", verify.GatewaySignature)
	assert.Equal(t, 250.0, verify.TotalAmount)
	assert.Len(t, verify.Items, 2)

	assert.Empty(t, mgr.Items())
	assert.Equal(t, 1, *finalized)
	assert.Equal(t, StatusDone, orch.Status())
}

func TestPlaceOrder_OnlineCancellation(t *testing.T) {
	api := &mockBackend{
		session: &backend.PaymentSession{ID: "order_abc", Amount: 25000, Currency: "INR", KeyID: "k"},
	}
	gw := &payment.ScriptedGateway{}
	gw.EnqueueDismissed()
	orch, mgr, finalized := setupCheckout(t, api, gw)

	err := orch.PlaceOrder(context.Background(), validForm(), PaymentOnline, false)
	assert.ErrorIs(t, err, ErrPaymentCancelled)

	// No verify, no order, cart unchanged, ready for another attempt.
	assert.Empty(t, api.verifyCalls)
	assert.Len(t, mgr.Items(), 2)
	assert.Equal(t, 0, *finalized)
	assert.Equal(t, StatusReady, orch.Status())
}

func TestPlaceOrder_OnlineGatewayLoadFailure(t *testing.T) {
	api := &mockBackend{
		session: &backend.PaymentSession{ID: "order_abc", Amount: 25000, Currency: "INR", KeyID: "k"},
	}
	gw := &payment.ScriptedGateway{}
	gw.EnqueueError(errors.New("script failed to load"))
	orch, mgr, _ := setupCheckout(t, api, gw)

	err := orch.PlaceOrder(context.Background(), validForm(), PaymentOnline, false)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPaymentCancelled)
	assert.Len(t, mgr.Items(), 2)
	assert.Equal(t, StatusFailed, orch.Status())
}

func TestPlaceOrder_OnlineInitiateFailureSkipsGateway(t *testing.T) {
	api := &mockBackend{initiateErr: backend.ErrNoPaymentSession}
	gw := &payment.ScriptedGateway{}
	orch, _, _ := setupCheckout(t, api, gw)

	err := orch.PlaceOrder(context.Background(), validForm(), PaymentOnline, false)
	require.Error(t, err)
	assert.Empty(t, gw.Sessions)
	assert.Equal(t, StatusFailed, orch.Status())
}

func TestPlaceOrder_VerificationFailure(t *testing.T) {
	api := &mockBackend{
		session:      &backend.PaymentSession{ID: "order_abc", Amount: 25000, Currency: "INR", KeyID: "k"},
		verifyResult: &backend.VerifyResult{Success: false},
	}
	gw := &payment.ScriptedGateway{}
	gw.EnqueuePaid(payment.Confirmation{OrderID: "order_abc"})
	orch, mgr, finalized := setupCheckout(t, api, gw)

	err := orch.PlaceOrder(context.Background(), validForm(), PaymentOnline, false)
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Len(t, mgr.Items(), 2)
	assert.Equal(t, 0, *finalized)
}

func TestPlaceOrder_DoubleSubmitGuard(t *testing.T) {
	api := &mockBackend{
		createOrderStarted: make(chan struct{}),
		createOrderGate:    make(chan struct{}),
	}
	orch, _, _ := setupCheckout(t, api, &payment.ScriptedGateway{})

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- orch.PlaceOrder(context.Background(), validForm(), PaymentCOD, false)
	}()

	// Wait for the first submission to reach the backend, then click again.
	<-api.createOrderStarted
	err := orch.PlaceOrder(context.Background(), validForm(), PaymentCOD, false)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(api.createOrderGate)
	require.NoError(t, <-firstDone)

	assert.Equal(t, 1, api.orderCount())
}

func TestFinalize_Idempotent(t *testing.T) {
	api := &mockBackend{}
	orch, mgr, finalized := setupCheckout(t, api, &payment.ScriptedGateway{})

	require.NoError(t, orch.PlaceOrder(context.Background(), validForm(), PaymentCOD, false))
	// A repeated success path on the same flow clears again but must not
	// fire the navigation hook twice.
	require.NoError(t, mgr.Add(cart.Product{ID: 3, UnitPrice: decimal.NewFromInt(10)}, 1))
	require.NoError(t, orch.PlaceOrder(context.Background(), validForm(), PaymentCOD, false))

	assert.Empty(t, mgr.Items())
	assert.Equal(t, 1, *finalized)
}
