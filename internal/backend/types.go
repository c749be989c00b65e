package backend

import (
	"time"

	"github.com/shopspring/decimal"
)

type UserProfile struct {
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Phone        string `json:"phone"`
}

type User struct {
	ID        int64        `json:"id"`
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Profile   *UserProfile `json:"profile,omitempty"`
}

type ProductImage struct {
	Image string `json:"image"`
}

type Product struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Images   []ProductImage  `json:"product_images,omitempty"`
	Category int64           `json:"category"`
	Stock    int             `json:"stock"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ShippingAddress is the checkout form state as the backend expects it.
// All fields are required for order submission.
type ShippingAddress struct {
	FullName     string `json:"full_name"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Phone        string `json:"phone"`
}

type OrderItemPayload struct {
	ProductID int64   `json:"product_id"`
	Qty       int     `json:"qty"`
	Price     float64 `json:"price"`
}

// OrderPayload is the outbound order contract. PriorityHours is present
// only when IsPriority is set.
type OrderPayload struct {
	Items           []OrderItemPayload `json:"items"`
	ShippingAddress ShippingAddress    `json:"shipping_address"`
	TotalAmount     float64            `json:"total_amount"`
	PaymentMethod   string             `json:"payment_method"`
	IsPriority      bool               `json:"is_priority"`
	PriorityHours   *int               `json:"priority_hours"`
}

// PaymentSession is the handle returned by the payment initiate endpoint.
// Amount is in minor currency units, as the gateway expects.
type PaymentSession struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

// VerifyRequest forwards the gateway's signed confirmation together with
// the original order payload to the verify endpoint.
type VerifyRequest struct {
	GatewayOrderID   string             `json:"razorpay_order_id"`
	GatewayPaymentID string             `json:"razorpay_payment_id"`
	GatewaySignature string             `json:"razorpay_signature"`
	Items            []OrderItemPayload `json:"items"`
	ShippingAddress  ShippingAddress    `json:"shipping_address"`
	TotalAmount      float64            `json:"total_amount"`
	IsPriority       bool               `json:"is_priority"`
	PriorityHours    *int               `json:"priority_hours"`
}

type VerifyResult struct {
	Success bool `json:"success"`
}

type OrderSummary struct {
	ID            int64           `json:"id"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	IsPriority    bool            `json:"is_priority"`
	CreatedAt     time.Time       `json:"created_at"`
}

type OrderDetailItem struct {
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price_at_purchase"`
}

type OrderDetail struct {
	OrderSummary
	Items           []OrderDetailItem `json:"items"`
	ShippingAddress ShippingAddress   `json:"shipping_address"`
}
