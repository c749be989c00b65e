// Package cart owns the client-side shopping cart: an insertion-ordered
// list of line items, at most one per product, persisted to the durable
// client store on every mutation.
package cart

import "github.com/shopspring/decimal"

// Product carries the fields the cart needs to display and price an item.
type Product struct {
	ID         int64
	Title      string
	UnitPrice  decimal.Decimal
	Image      string
	CategoryID int64
	Stock      int
}

// LineItem is one product entry in the cart.
type LineItem struct {
	ProductID  int64           `json:"product_id"`
	Title      string          `json:"title"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Image      string          `json:"image,omitempty"`
	CategoryID int64           `json:"category_id,omitempty"`
	Stock      int             `json:"stock,omitempty"`
}

// Subtotal is unit price times quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func lineItemFrom(p Product, qty int) LineItem {
	return LineItem{
		ProductID:  p.ID,
		Title:      p.Title,
		UnitPrice:  p.UnitPrice,
		Quantity:   qty,
		Image:      p.Image,
		CategoryID: p.CategoryID,
		Stock:      p.Stock,
	}
}
