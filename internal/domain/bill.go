package domain

import (
	"errors"
	"fmt"
	"time"
)

// BillType selects the document kind; both share the same lifecycle
type BillType string

const (
	BillTypeInvoice BillType = "invoice"
	BillTypeAct     BillType = "act"
)

func (t BillType) Valid() bool {
	return t == BillTypeInvoice || t == BillTypeAct
}

// NumberPrefix returns the bill-number prefix for the type
func (t BillType) NumberPrefix() string {
	if t == BillTypeAct {
		return "ACT"
	}
	return "INV"
}

type BillStatus string

const (
	BillStatusDraft     BillStatus = "draft"
	BillStatusIssued    BillStatus = "issued"
	BillStatusPaid      BillStatus = "paid"
	BillStatusCancelled BillStatus = "cancelled"
)

// Valid reports whether the status is one of the known values. Transitions
// between statuses are caller-driven and not enforced: draft → issued → paid
// with cancelled reachable from any non-terminal state is the intended
// lifecycle, but nothing rejects a paid → draft patch.
func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusDraft, BillStatusIssued, BillStatusPaid, BillStatusCancelled:
		return true
	}
	return false
}

// Bill groups a frozen set of time entries with a computed total. The entry
// set is derived: entries point back via bill_id and the bill stores no entry
// list of its own. Totals are a snapshot taken at creation time — deleting a
// linked entry afterwards leaves them intentionally stale.
type Bill struct {
	ID           int64
	ClientID     int64
	BillNumber   string
	Type         BillType
	IssueDate    time.Time
	PeriodFrom   time.Time // min work date among the billed entries
	PeriodTo     time.Time // max work date among the billed entries
	TotalHours   int
	TotalMinutes int // normalized remainder, always < 60
	TotalAmount  float64
	Status       BillStatus
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Related data (populated by the service layer)
	Entries []*TimeEntry
	Client  *Client
}

// NewBill creates a draft bill shell; totals and period are set by the
// billing engine before persistence.
func NewBill(clientID int64, billNumber string, billType BillType, issueDate time.Time) *Bill {
	now := time.Now()
	return &Bill{
		ClientID:   clientID,
		BillNumber: billNumber,
		Type:       billType,
		IssueDate:  issueDate,
		Status:     BillStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate returns an error if the bill is invalid
func (b *Bill) Validate() error {
	if b.BillNumber == "" {
		return errors.New("bill number is required")
	}
	if b.ClientID <= 0 {
		return errors.New("client ID is required")
	}
	if !b.Type.Valid() {
		return fmt.Errorf("invalid bill type %q", b.Type)
	}
	if !b.Status.Valid() {
		return fmt.Errorf("invalid bill status %q", b.Status)
	}
	if b.IssueDate.IsZero() {
		return errors.New("issue date is required")
	}
	if b.TotalHours < 0 {
		return errors.New("total hours cannot be negative")
	}
	if b.TotalMinutes < 0 || b.TotalMinutes >= 60 {
		return errors.New("total minutes must be between 0 and 59")
	}
	if b.TotalAmount < 0 {
		return errors.New("total amount cannot be negative")
	}
	if !b.PeriodFrom.IsZero() && !b.PeriodTo.IsZero() && b.PeriodTo.Before(b.PeriodFrom) {
		return errors.New("period end must not be before period start")
	}
	return nil
}

// BillPatch carries optional field updates; only non-nil fields are applied.
// Consistency between the totals and the linked entries is not re-validated —
// that is the caller's responsibility.
type BillPatch struct {
	BillNumber   *string
	Type         *BillType
	IssueDate    *time.Time
	PeriodFrom   *time.Time
	PeriodTo     *time.Time
	TotalHours   *int
	TotalMinutes *int
	TotalAmount  *float64
	Status       *BillStatus
	Notes        *string
}

// Apply copies the present patch fields onto the bill
func (p BillPatch) Apply(b *Bill) {
	if p.BillNumber != nil {
		b.BillNumber = *p.BillNumber
	}
	if p.Type != nil {
		b.Type = *p.Type
	}
	if p.IssueDate != nil {
		b.IssueDate = *p.IssueDate
	}
	if p.PeriodFrom != nil {
		b.PeriodFrom = *p.PeriodFrom
	}
	if p.PeriodTo != nil {
		b.PeriodTo = *p.PeriodTo
	}
	if p.TotalHours != nil {
		b.TotalHours = *p.TotalHours
	}
	if p.TotalMinutes != nil {
		b.TotalMinutes = *p.TotalMinutes
	}
	if p.TotalAmount != nil {
		b.TotalAmount = *p.TotalAmount
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
	b.UpdatedAt = time.Now()
}
