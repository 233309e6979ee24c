// Package domain defines orders, order items, and the append-only status
// history. Item rows snapshot the product at purchase time so later catalog
// edits never change what was sold.
package domain

import "time"

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusConfirmed  OrderStatus = "CONFIRMED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
	StatusReturned   OrderStatus = "RETURNED"
	StatusRefunded   OrderStatus = "REFUNDED"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusReturned, StatusRefunded:
		return true
	}
	return false
}

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "PENDING"
	PaymentCompleted         PaymentStatus = "COMPLETED"
	PaymentFailed            PaymentStatus = "FAILED"
	PaymentRefunded          PaymentStatus = "REFUNDED"
	PaymentPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

// Order is a placed purchase.
type Order struct {
	ID          string
	OrderNumber string
	UserID      string
	Status      OrderStatus

	SubtotalCents int64
	TaxCents      int64
	ShippingCents int64
	DiscountCents int64
	TotalCents    int64

	ShippingAddressID string
	BillingAddressID  string

	PaymentMethod        string
	PaymentStatus        PaymentStatus
	PaymentTransactionID string

	OrderDate     time.Time
	ShippedDate   *time.Time
	DeliveredDate *time.Time

	TrackingNumber string
	Notes          string

	Items   []Item
	History []StatusChange

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is a purchased product line. Name, SKU, description, and unit price are
// snapshots taken when the order was placed.
type Item struct {
	ID                 string
	OrderID            string
	ProductID          string
	Quantity           int
	UnitPriceCents     int64
	TotalPriceCents    int64
	ProductName        string
	ProductSKU         string
	ProductDescription string
	CreatedAt          time.Time
}

// RecomputeTotal derives the line total from quantity and unit price.
func (i *Item) RecomputeTotal() {
	i.TotalPriceCents = int64(i.Quantity) * i.UnitPriceCents
}

// StatusChange is one entry in the append-only status history.
type StatusChange struct {
	ID        string
	OrderID   string
	Status    OrderStatus
	Notes     string
	ChangedBy string
	CreatedAt time.Time
}

// CanBeCancelled reports whether the order may still be cancelled: only before
// it enters fulfillment.
func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// TotalItemsCount is the sum of item quantities.
func (o *Order) TotalItemsCount() int {
	var n int
	for i := range o.Items {
		n += o.Items[i].Quantity
	}
	return n
}

// RecomputeTotals rebuilds each line total, the subtotal, and the grand total
// from the items and the charge fields.
func (o *Order) RecomputeTotals() {
	var subtotal int64
	for i := range o.Items {
		o.Items[i].RecomputeTotal()
		subtotal += o.Items[i].TotalPriceCents
	}
	o.SubtotalCents = subtotal
	o.TotalCents = subtotal + o.TaxCents + o.ShippingCents - o.DiscountCents
}
