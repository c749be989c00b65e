package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mekaroindia/mekaro/internal/store"
)

var (
	// ErrInvalidQuantity is returned for any quantity below one. The
	// floor is enforced here rather than in the UI so removal stays an
	// explicit operation.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotFound    = errors.New("item not found in cart")
)

// Manager owns the in-memory cart and mirrors every mutation into the
// durable store, so storage is never more than one mutation behind memory.
type Manager struct {
	store store.Store
	log   *slog.Logger

	mu    sync.Mutex
	items []LineItem
}

// NewManager rehydrates the cart from the store. A missing or corrupt
// snapshot yields an empty cart; it never fails construction.
func NewManager(st store.Store, log *slog.Logger) *Manager {
	m := &Manager{store: st, log: log}

	raw, ok, err := st.Get(store.KeyCart)
	if err != nil {
		log.Warn("failed to load cart snapshot, starting empty", "error", err)
		return m
	}
	if !ok {
		return m
	}

	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn("corrupt cart snapshot, starting empty", "error", err)
		return m
	}
	m.items = items
	return m
}

// Add inserts the product as a new line item, or increments the quantity
// of the existing line item for the same product.
func (m *Manager) Add(p Product, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].ProductID == p.ID {
			m.items[i].Quantity += qty
			return m.persist()
		}
	}
	m.items = append(m.items, lineItemFrom(p, qty))
	return m.persist()
}

// UpdateQuantity replaces the quantity of the matching line item.
func (m *Manager) UpdateQuantity(productID int64, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].ProductID == productID {
			m.items[i].Quantity = qty
			return m.persist()
		}
	}
	return ErrItemNotFound
}

// Remove deletes the matching line item. Removing an absent product is a
// no-op.
func (m *Manager) Remove(productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, li := range m.items {
		if li.ProductID == productID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return m.persist()
		}
	}
	return nil
}

// Clear empties the cart.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil
	return m.persist()
}

// ReplaceWithSingle discards the cart contents in favor of exactly one
// line item ("buy now").
func (m *Manager) ReplaceWithSingle(p Product, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = []LineItem{lineItemFrom(p, qty)}
	return m.persist()
}

// Items returns the line items in insertion order.
func (m *Manager) Items() []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]LineItem, len(m.items))
	copy(out, m.items)
	return out
}

// TotalCount is the sum of quantities across all line items.
func (m *Manager) TotalCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, li := range m.items {
		total += li.Quantity
	}
	return total
}

// TotalPrice is the sum of line item subtotals.
func (m *Manager) TotalPrice() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := decimal.Zero
	for _, li := range m.items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// persist serializes the full cart under the cart key. Callers must hold
// the mutex.
func (m *Manager) persist() error {
	raw, err := json.Marshal(m.items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := m.store.Set(store.KeyCart, raw); err != nil {
		m.log.Error("failed to persist cart", "error", err)
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}
