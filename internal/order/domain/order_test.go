package domain

import "testing"

func TestCanBeCancelled(t *testing.T) {
	cancellable := map[OrderStatus]bool{
		StatusPending:    true,
		StatusConfirmed:  true,
		StatusProcessing: false,
		StatusShipped:    false,
		StatusDelivered:  false,
		StatusCancelled:  false,
		StatusReturned:   false,
		StatusRefunded:   false,
	}
	for status, want := range cancellable {
		o := Order{Status: status}
		if got := o.CanBeCancelled(); got != want {
			t.Errorf("CanBeCancelled() with %s = %v, want %v", status, got, want)
		}
	}
}

func TestOrderStatusValid(t *testing.T) {
	known := []OrderStatus{
		StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusReturned, StatusRefunded,
	}
	for _, status := range known {
		if !status.Valid() {
			t.Errorf("Valid(%s) = false, want true", status)
		}
	}
	for _, status := range []OrderStatus{"UNKNOWN", "pending", ""} {
		if status.Valid() {
			t.Errorf("Valid(%q) = true, want false", status)
		}
	}
}

func TestPaymentStatusValues(t *testing.T) {
	want := map[PaymentStatus]string{
		PaymentPending:           "PENDING",
		PaymentCompleted:         "COMPLETED",
		PaymentFailed:            "FAILED",
		PaymentRefunded:          "REFUNDED",
		PaymentPartiallyRefunded: "PARTIALLY_REFUNDED",
	}
	for status, tag := range want {
		if string(status) != tag {
			t.Errorf("payment status = %q, want %q", status, tag)
		}
	}
}

func TestRecomputeTotals(t *testing.T) {
	o := Order{
		Items: []Item{
			{Quantity: 2, UnitPriceCents: 1500},
			{Quantity: 1, UnitPriceCents: 499},
		},
		TaxCents:      300,
		ShippingCents: 599,
		DiscountCents: 100,
	}
	o.RecomputeTotals()

	if o.Items[0].TotalPriceCents != 3000 {
		t.Errorf("line 0 total = %d, want 3000", o.Items[0].TotalPriceCents)
	}
	if o.Items[1].TotalPriceCents != 499 {
		t.Errorf("line 1 total = %d, want 499", o.Items[1].TotalPriceCents)
	}
	if o.SubtotalCents != 3499 {
		t.Errorf("subtotal = %d, want 3499", o.SubtotalCents)
	}
	if o.TotalCents != 3499+300+599-100 {
		t.Errorf("total = %d, want %d", o.TotalCents, 3499+300+599-100)
	}
	if o.TotalItemsCount() != 3 {
		t.Errorf("TotalItemsCount() = %d, want 3", o.TotalItemsCount())
	}
}

func TestRecomputeTotalsOverwritesStaleLineTotals(t *testing.T) {
	o := Order{Items: []Item{{Quantity: 3, UnitPriceCents: 100, TotalPriceCents: 999}}}
	o.RecomputeTotals()
	if o.Items[0].TotalPriceCents != 300 {
		t.Errorf("stale line total kept: %d, want 300", o.Items[0].TotalPriceCents)
	}
}
