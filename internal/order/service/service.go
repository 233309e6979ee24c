// Package service implements the order lifecycle: placement from the cart in a
// single unit of work, permissive status updates with an append-only history,
// cancellation with stock restoration, and payment recording.
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	addressdomain "ecommerce-platform/backend/internal/address/domain"
	addressrepo "ecommerce-platform/backend/internal/address/repository"
	"ecommerce-platform/backend/internal/apperr"
	cartrepo "ecommerce-platform/backend/internal/cart/repository"
	"ecommerce-platform/backend/internal/db"
	"ecommerce-platform/backend/internal/email"
	"ecommerce-platform/backend/internal/events"
	"ecommerce-platform/backend/internal/order/domain"
	"ecommerce-platform/backend/internal/order/repository"
	productrepo "ecommerce-platform/backend/internal/product/repository"
	userrepo "ecommerce-platform/backend/internal/user/repository"
	"ecommerce-platform/backend/pkg/logkey"
)

// Service orchestrates orders across cart, catalog, and address data.
type Service struct {
	database  *sql.DB
	orders    repository.Repository
	carts     cartrepo.Repository
	products  productrepo.Repository
	addresses addressrepo.Repository
	users     userrepo.Repository
	mail      email.Sender
	emitter   events.Emitter
	now       func() time.Time
}

// NewService builds an order service. database may be nil in tests; the unit of
// work then runs without a transaction. emitter may be nil.
func NewService(
	database *sql.DB,
	orders repository.Repository,
	carts cartrepo.Repository,
	products productrepo.Repository,
	addresses addressrepo.Repository,
	users userrepo.Repository,
	mail email.Sender,
	emitter events.Emitter,
) *Service {
	return &Service{
		database:  database,
		orders:    orders,
		carts:     carts,
		products:  products,
		addresses: addresses,
		users:     users,
		mail:      mail,
		emitter:   emitter,
		now:       time.Now,
	}
}

func (s *Service) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if s.database == nil {
		return fn(nil)
	}
	return db.WithTx(ctx, s.database, fn)
}

func (s *Service) ordersTx(tx *sql.Tx) repository.Repository {
	if tx == nil {
		return s.orders
	}
	return s.orders.WithTx(tx)
}

func (s *Service) cartsTx(tx *sql.Tx) cartrepo.Repository {
	if tx == nil {
		return s.carts
	}
	return s.carts.WithTx(tx)
}

func (s *Service) productsTx(tx *sql.Tx) productrepo.Repository {
	if tx == nil {
		return s.products
	}
	return s.products.WithTx(tx)
}

// NewOrderNumber builds a public order number from a random fragment.
func NewOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// PlaceOrderInput carries the checkout fields.
type PlaceOrderInput struct {
	ShippingAddressID string
	// BillingAddressID defaults to the shipping address when empty.
	BillingAddressID string
	PaymentMethod    string
	Notes            string

	TaxCents      int64
	ShippingCents int64
	DiscountCents int64
}

// PlaceOrder turns the user's cart into an order. Stock decrement, order
// creation, sales counters, and cart clearing happen in one unit of work: any
// failure (including insufficient stock on any line) rolls everything back.
func (s *Service) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (*domain.Order, error) {
	if in.TaxCents < 0 || in.ShippingCents < 0 || in.DiscountCents < 0 {
		return nil, apperr.InvalidArgument("charges must not be negative")
	}

	shipping, err := s.checkAddress(ctx, userID, in.ShippingAddressID, addressdomain.TypeShipping)
	if err != nil {
		return nil, err
	}
	billingID := in.BillingAddressID
	if billingID == "" {
		billingID = shipping.ID
	} else if _, err := s.checkAddress(ctx, userID, billingID, addressdomain.TypeBilling); err != nil {
		return nil, err
	}

	var order *domain.Order
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		carts := s.cartsTx(tx)
		products := s.productsTx(tx)

		cart, err := carts.GetByUserID(ctx, userID)
		if err != nil {
			return apperr.Internal("loading cart", err)
		}
		if cart == nil || cart.IsEmpty() {
			return apperr.InvalidArgument("cart is empty")
		}

		now := s.now().UTC()
		o := &domain.Order{
			ID:                uuid.NewString(),
			OrderNumber:       NewOrderNumber(),
			UserID:            userID,
			Status:            domain.StatusPending,
			TaxCents:          in.TaxCents,
			ShippingCents:     in.ShippingCents,
			DiscountCents:     in.DiscountCents,
			ShippingAddressID: shipping.ID,
			BillingAddressID:  billingID,
			PaymentMethod:     in.PaymentMethod,
			PaymentStatus:     domain.PaymentPending,
			OrderDate:         now,
			Notes:             in.Notes,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		for i := range cart.Items {
			line := &cart.Items[i]
			p := line.Product
			if p == nil {
				return apperr.InvalidArgument("product no longer exists: %s", line.ProductID)
			}
			if !p.IsAvailable() {
				return apperr.InvalidArgument("product is not available: %s", p.Name)
			}
			ok, err := products.DecrementStock(ctx, p.ID, line.Quantity)
			if err != nil {
				return apperr.Internal("decrementing stock", err)
			}
			if !ok {
				return apperr.InvalidArgument("insufficient stock for product: %s", p.Name)
			}
			o.Items = append(o.Items, domain.Item{
				ID:                 uuid.NewString(),
				OrderID:            o.ID,
				ProductID:          p.ID,
				Quantity:           line.Quantity,
				UnitPriceCents:     p.PriceCents,
				ProductName:        p.Name,
				ProductSKU:         p.SKU,
				ProductDescription: p.Description,
				CreatedAt:          now,
			})
		}
		o.RecomputeTotals()
		if o.TotalCents < 0 {
			return apperr.InvalidArgument("discount exceeds order total")
		}
		o.History = []domain.StatusChange{{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			Status:    domain.StatusPending,
			Notes:     "Order placed",
			ChangedBy: userID,
			CreatedAt: now,
		}}

		if err := s.ordersTx(tx).Create(ctx, o); err != nil {
			return apperr.Internal("creating order", err)
		}
		for i := range o.Items {
			if err := products.IncrementSalesCount(ctx, o.Items[i].ProductID, o.Items[i].Quantity); err != nil {
				return apperr.Internal("updating sales count", err)
			}
		}
		if err := carts.Clear(ctx, cart.ID); err != nil {
			return apperr.Internal("clearing cart", err)
		}
		if err := carts.Touch(ctx, cart.ID); err != nil {
			return apperr.Internal("updating cart", err)
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendOrderEmail(ctx, order, func(to string) error {
		return s.mail.SendOrderConfirmationEmail(ctx, to, order.OrderNumber)
	})
	s.emitStatusEvent(order, "")

	return order, nil
}

func (s *Service) checkAddress(ctx context.Context, userID, id string, use addressdomain.AddressType) (*addressdomain.Address, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("address is required")
	}
	a, err := s.addresses.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("loading address", err)
	}
	if a == nil || !a.Active {
		return nil, apperr.NotFound("address not found: %s", id)
	}
	if a.UserID != userID {
		return nil, apperr.Forbidden("address belongs to another user")
	}
	if !a.UsableFor(use) {
		return nil, apperr.InvalidArgument("address %s cannot be used for %s", id, strings.ToLower(string(use)))
	}
	return a, nil
}

// Get returns the order for id. Callers enforce ownership where required.
func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("loading order", err)
	}
	if o == nil {
		return nil, apperr.NotFound("order not found: %s", id)
	}
	return o, nil
}

// GetForUser returns the order only if it belongs to userID.
func (s *Service) GetForUser(ctx context.Context, userID, id string) (*domain.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, apperr.Forbidden("order belongs to another user")
	}
	return o, nil
}

// GetByNumber returns the order by its public number.
func (s *Service) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	o, err := s.orders.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, apperr.Internal("loading order", err)
	}
	if o == nil {
		return nil, apperr.NotFound("order not found: %s", orderNumber)
	}
	return o, nil
}

// ListResult is an order page with the total match count.
type ListResult struct {
	Orders []*domain.Order
	Total  int
}

// List returns orders matching the filter and the total count.
func (s *Service) List(ctx context.Context, f repository.ListFilter) (*ListResult, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Status != "" && !domain.OrderStatus(f.Status).Valid() {
		return nil, apperr.InvalidArgument("unknown order status: %s", f.Status)
	}
	orders, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("listing orders", err)
	}
	total, err := s.orders.Count(ctx, f)
	if err != nil {
		return nil, apperr.Internal("counting orders", err)
	}
	return &ListResult{Orders: orders, Total: total}, nil
}

// UpdateStatusInput carries a status transition.
type UpdateStatusInput struct {
	Status         string
	Notes          string
	TrackingNumber string
	ChangedBy      string
}

// UpdateStatus moves the order to the given status and appends a history
// entry. Transitions are deliberately permissive so staff can correct
// mistakes; SHIPPED and DELIVERED stamp their date fields.
func (s *Service) UpdateStatus(ctx context.Context, id string, in UpdateStatusInput) (*domain.Order, error) {
	status := domain.OrderStatus(in.Status)
	if !status.Valid() {
		return nil, apperr.InvalidArgument("unknown order status: %s", in.Status)
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	previous := o.Status
	o.Status = status
	o.UpdatedAt = now
	switch status {
	case domain.StatusShipped:
		if o.ShippedDate == nil {
			t := now
			o.ShippedDate = &t
		}
		if in.TrackingNumber != "" {
			o.TrackingNumber = in.TrackingNumber
		}
	case domain.StatusDelivered:
		if o.DeliveredDate == nil {
			t := now
			o.DeliveredDate = &t
		}
	}

	change := domain.StatusChange{
		ID:        uuid.NewString(),
		OrderID:   o.ID,
		Status:    status,
		Notes:     in.Notes,
		ChangedBy: in.ChangedBy,
		CreatedAt: now,
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		orders := s.ordersTx(tx)
		if err := orders.Update(ctx, o); err != nil {
			return apperr.Internal("updating order", err)
		}
		if err := orders.AddHistory(ctx, &change); err != nil {
			return apperr.Internal("appending status history", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.History = append(o.History, change)

	if status == domain.StatusShipped {
		s.sendOrderEmail(ctx, o, func(to string) error {
			return s.mail.SendOrderShippedEmail(ctx, to, o.OrderNumber, o.TrackingNumber)
		})
	}
	s.emitStatusEvent(o, string(previous))

	return o, nil
}

// Cancel cancels the order and restores stock. Only orders that have not
// entered fulfillment can be cancelled; paid orders move to REFUNDED payment
// state.
func (s *Service) Cancel(ctx context.Context, id, reason, changedBy string) (*domain.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.CanBeCancelled() {
		return nil, apperr.InvalidArgument("order cannot be cancelled in status %s", o.Status)
	}

	now := s.now().UTC()
	previous := o.Status
	o.Status = domain.StatusCancelled
	if o.PaymentStatus == domain.PaymentCompleted {
		o.PaymentStatus = domain.PaymentRefunded
	}
	o.UpdatedAt = now

	notes := reason
	if notes == "" {
		notes = "Order cancelled"
	}
	change := domain.StatusChange{
		ID:        uuid.NewString(),
		OrderID:   o.ID,
		Status:    domain.StatusCancelled,
		Notes:     notes,
		ChangedBy: changedBy,
		CreatedAt: now,
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		products := s.productsTx(tx)
		for i := range o.Items {
			if err := products.IncrementStock(ctx, o.Items[i].ProductID, o.Items[i].Quantity); err != nil {
				return apperr.Internal("restoring stock", err)
			}
		}
		orders := s.ordersTx(tx)
		if err := orders.Update(ctx, o); err != nil {
			return apperr.Internal("updating order", err)
		}
		if err := orders.AddHistory(ctx, &change); err != nil {
			return apperr.Internal("appending status history", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.History = append(o.History, change)
	s.emitStatusEvent(o, string(previous))

	return o, nil
}

// RecordPayment marks the order paid with the gateway transaction id.
func (s *Service) RecordPayment(ctx context.Context, id, transactionID string) (*domain.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	o.PaymentStatus = domain.PaymentCompleted
	o.PaymentTransactionID = transactionID
	o.UpdatedAt = s.now().UTC()
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, apperr.Internal("updating order", err)
	}
	return o, nil
}

func (s *Service) sendOrderEmail(ctx context.Context, o *domain.Order, send func(to string) error) {
	if s.mail == nil || s.users == nil {
		return
	}
	u, err := s.users.GetByID(ctx, o.UserID)
	if err != nil || u == nil {
		slog.WarnContext(ctx, "order email skipped: user lookup failed",
			slog.String(logkey.OrderID, o.ID), slog.Any(logkey.Error, err))
		return
	}
	if err := send(u.Email); err != nil {
		slog.WarnContext(ctx, "order email failed",
			slog.String(logkey.OrderID, o.ID), slog.Any(logkey.Error, err))
	}
}

func (s *Service) emitStatusEvent(o *domain.Order, previous string) {
	payload := map[string]string{
		"order_number": o.OrderNumber,
		"status":       string(o.Status),
	}
	if previous != "" {
		payload["previous_status"] = previous
	}
	events.EmitAsync(s.emitter, &events.Event{
		ID:         uuid.NewString(),
		Type:       events.TypeOrderStatusChanged,
		Subject:    o.ID,
		OccurredAt: s.now().UTC(),
		Payload:    payload,
	})
}
