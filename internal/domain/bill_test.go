package domain

import (
	"testing"
	"time"
)

func TestBillValidate(t *testing.T) {
	issueDate := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	bill := NewBill(1, "INV-2026-001", BillTypeInvoice, issueDate)
	if err := bill.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bill = NewBill(1, "", BillTypeInvoice, issueDate)
	if err := bill.Validate(); err == nil {
		t.Errorf("expected error for empty bill number")
	}

	bill = NewBill(1, "INV-2026-001", "receipt", issueDate)
	if err := bill.Validate(); err == nil {
		t.Errorf("expected error for unknown bill type")
	}

	bill = NewBill(1, "INV-2026-001", BillTypeInvoice, issueDate)
	bill.TotalMinutes = 60
	if err := bill.Validate(); err == nil {
		t.Errorf("expected error for unnormalized total minutes")
	}

	bill = NewBill(1, "INV-2026-001", BillTypeInvoice, issueDate)
	bill.PeriodFrom = issueDate
	bill.PeriodTo = issueDate.AddDate(0, 0, -5)
	if err := bill.Validate(); err == nil {
		t.Errorf("expected error for period end before start")
	}
}

func TestBillTypeNumberPrefix(t *testing.T) {
	if got := BillTypeInvoice.NumberPrefix(); got != "INV" {
		t.Errorf("expected INV, got %s", got)
	}
	if got := BillTypeAct.NumberPrefix(); got != "ACT" {
		t.Errorf("expected ACT, got %s", got)
	}
}

func TestBillPatchApply(t *testing.T) {
	issueDate := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	bill := NewBill(1, "INV-2026-001", BillTypeInvoice, issueDate)

	status := BillStatusPaid
	notes := "wire received"
	patch := BillPatch{Status: &status, Notes: &notes}
	patch.Apply(bill)

	if bill.Status != BillStatusPaid {
		t.Errorf("expected paid status, got %s", bill.Status)
	}
	if bill.Notes != "wire received" {
		t.Errorf("expected notes applied, got %q", bill.Notes)
	}
	if bill.BillNumber != "INV-2026-001" {
		t.Errorf("bill number changed unexpectedly")
	}
}
