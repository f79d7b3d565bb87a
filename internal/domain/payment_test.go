package domain

import (
	"testing"
	"time"
)

func TestPaymentValidate(t *testing.T) {
	paymentDate := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// Money payments require a positive amount
	payment := NewPayment(1, paymentDate, PaymentMoney)
	if err := payment.Validate(); err == nil {
		t.Errorf("expected error for money payment without amount")
	}

	amount := 150.0
	payment.Amount = &amount
	if err := payment.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	zero := 0.0
	payment.Amount = &zero
	if err := payment.Validate(); err == nil {
		t.Errorf("expected error for zero money amount")
	}

	// Supplements require a description, amount is optional
	payment = NewPayment(1, paymentDate, PaymentSupplements)
	if err := payment.Validate(); err == nil {
		t.Errorf("expected error for supplements without description")
	}

	payment.SupplementsDescription = "gym membership"
	if err := payment.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	negative := -5.0
	payment.Amount = &negative
	if err := payment.Validate(); err == nil {
		t.Errorf("expected error for negative amount")
	}

	payment = NewPayment(1, paymentDate, "barter")
	if err := payment.Validate(); err == nil {
		t.Errorf("expected error for unknown payment type")
	}
}

func TestPaymentPatchClearAmount(t *testing.T) {
	paymentDate := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	amount := 40.0

	payment := NewPayment(1, paymentDate, PaymentSupplements)
	payment.SupplementsDescription = "hosting credit"
	payment.Amount = &amount

	// Outer nil leaves the amount untouched
	patch := PaymentPatch{}
	patch.Apply(payment)
	if payment.Amount == nil || *payment.Amount != 40.0 {
		t.Errorf("amount changed by empty patch")
	}

	// Inner nil clears it
	var cleared *float64
	patch = PaymentPatch{Amount: &cleared}
	patch.Apply(payment)
	if payment.Amount != nil {
		t.Errorf("expected amount cleared, got %v", *payment.Amount)
	}
}

func TestPaymentTotalsAmountFor(t *testing.T) {
	totals := PaymentTotals{
		ClientID: 1,
		ByType: []PaymentTypeTotal{
			{Type: PaymentMoney, Count: 2, TotalAmount: 300},
			{Type: PaymentSupplements, Count: 1, TotalAmount: 40},
		},
	}

	if got := totals.AmountFor(PaymentMoney); got != 300 {
		t.Errorf("expected 300, got %v", got)
	}
	if got := totals.AmountFor(PaymentOther); got != 0 {
		t.Errorf("expected 0 for absent type, got %v", got)
	}
}
