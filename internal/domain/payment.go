package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PaymentType distinguishes money payments from in-kind ones
type PaymentType string

const (
	PaymentMoney       PaymentType = "money"
	PaymentSupplements PaymentType = "supplements"
	PaymentOther       PaymentType = "other"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentMoney, PaymentSupplements, PaymentOther:
		return true
	}
	return false
}

// Payment is a record of value received from a client. Payments have no
// relationship to bills or time entries.
type Payment struct {
	ID                     int64
	ClientID               int64
	PaymentDate            time.Time
	Type                   PaymentType
	Amount                 *float64 // required and positive for money payments
	SupplementsDescription string   // required for supplements payments
	Notes                  string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// NewPayment creates a payment of the given type
func NewPayment(clientID int64, paymentDate time.Time, paymentType PaymentType) *Payment {
	now := time.Now()
	return &Payment{
		ClientID:    clientID,
		PaymentDate: paymentDate,
		Type:        paymentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate returns an error if the payment is invalid
func (p *Payment) Validate() error {
	if p.ClientID <= 0 {
		return errors.New("client ID is required")
	}
	if p.PaymentDate.IsZero() {
		return errors.New("payment date is required")
	}
	if !p.Type.Valid() {
		return fmt.Errorf("invalid payment type %q", p.Type)
	}
	if p.Type == PaymentMoney {
		if p.Amount == nil || *p.Amount <= 0 {
			return errors.New("money payments require a positive amount")
		}
	}
	if p.Type == PaymentSupplements && strings.TrimSpace(p.SupplementsDescription) == "" {
		return errors.New("supplements payments require a description")
	}
	if p.Amount != nil && *p.Amount < 0 {
		return errors.New("amount cannot be negative")
	}
	return nil
}

// PaymentPatch carries optional field updates; only non-nil fields are applied.
type PaymentPatch struct {
	ClientID               *int64
	PaymentDate            *time.Time
	Type                   *PaymentType
	Amount                 **float64 // outer nil = untouched, inner nil = clear
	SupplementsDescription *string
	Notes                  *string
}

// Apply copies the present patch fields onto the payment
func (p PaymentPatch) Apply(pm *Payment) {
	if p.ClientID != nil {
		pm.ClientID = *p.ClientID
	}
	if p.PaymentDate != nil {
		pm.PaymentDate = *p.PaymentDate
	}
	if p.Type != nil {
		pm.Type = *p.Type
	}
	if p.Amount != nil {
		pm.Amount = *p.Amount
	}
	if p.SupplementsDescription != nil {
		pm.SupplementsDescription = *p.SupplementsDescription
	}
	if p.Notes != nil {
		pm.Notes = *p.Notes
	}
	pm.UpdatedAt = time.Now()
}

// PaymentTypeTotal is the per-type slice of a client's payment totals
type PaymentTypeTotal struct {
	Type        PaymentType
	Count       int
	TotalAmount float64
}

// PaymentTotals aggregates a client's payments by type plus overall
type PaymentTotals struct {
	ClientID      int64
	ByType        []PaymentTypeTotal
	OverallCount  int
	OverallAmount float64
}

// AmountFor returns the summed amount for one payment type
func (t *PaymentTotals) AmountFor(paymentType PaymentType) float64 {
	for _, tt := range t.ByType {
		if tt.Type == paymentType {
			return tt.TotalAmount
		}
	}
	return 0
}
