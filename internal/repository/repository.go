package repository

import (
	"context"
	"errors"
	"time"

	"github.com/andy/hourtab/internal/domain"
)

var (
	// ErrNotFound is returned by writes that match no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateName is returned when a client name is already taken
	ErrDuplicateName = errors.New("client name already exists")

	// ErrInvalidClient is returned when a referenced client does not exist
	ErrInvalidClient = errors.New("referenced client does not exist")

	// ErrEntryBilled is returned when modifying an entry locked to a bill
	ErrEntryBilled = errors.New("time entry is billed and cannot be edited")

	// ErrEntryUnavailable is returned by atomic bill creation when an entry
	// is missing, already billed, or owned by another client at write time
	ErrEntryUnavailable = errors.New("time entry is not available for billing")

	// ErrDuplicateBillNumber is returned when the bill_number unique
	// constraint rejects an insert (lost race on number allocation)
	ErrDuplicateBillNumber = errors.New("bill number already exists")
)

// ClientRepository manages client persistence
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id int64) (*domain.Client, error) // nil, nil when missing
	GetByName(ctx context.Context, name string) (*domain.Client, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Deactivate(ctx context.Context, id int64) error
	Reactivate(ctx context.Context, id int64) error
}

// TimeEntryRepository manages time entry persistence
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *domain.TimeEntry) error
	GetByID(ctx context.Context, id int64) (*domain.TimeEntry, error) // nil, nil when missing
	Update(ctx context.Context, entry *domain.TimeEntry) error       // rejected once billed
	Delete(ctx context.Context, id int64) error                      // allowed even when billed
	List(ctx context.Context, clientID *int64, workDate *time.Time, isBilled *bool) ([]*domain.TimeEntry, error)
	ListUnbilled(ctx context.Context, clientID *int64) ([]*domain.TimeEntry, error)
	UnbilledInRange(ctx context.Context, clientID int64, from, to time.Time) ([]*domain.TimeEntry, error)
	ListByBill(ctx context.Context, billID int64) ([]*domain.TimeEntry, error)
	TotalsByClient(ctx context.Context, clientID int64) (*domain.EntryTotals, error)
}

// PaymentRepository manages payment persistence
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error) // nil, nil when missing
	Update(ctx context.Context, payment *domain.Payment) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, clientID *int64, paymentType *domain.PaymentType, from, to *time.Time) ([]*domain.Payment, error)
	TotalsByClient(ctx context.Context, clientID int64) (*domain.PaymentTotals, error)
}

// BillRepository manages bill persistence. Creation and deletion are atomic
// with the linked entries' billed-state flips.
type BillRepository interface {
	// CreateForEntries inserts the bill and marks the entries billed in one
	// transaction. The unbilled re-check runs inside the transaction, so a
	// concurrent request selecting overlapping entries cannot double-bill.
	CreateForEntries(ctx context.Context, bill *domain.Bill, entryIDs []int64) error
	GetByID(ctx context.Context, id int64) (*domain.Bill, error) // nil, nil when missing
	GetByNumber(ctx context.Context, number string) (*domain.Bill, error)
	List(ctx context.Context, clientID *int64, status *domain.BillStatus, billType *domain.BillType) ([]*domain.Bill, error)
	Update(ctx context.Context, bill *domain.Bill) error
	// Delete unlinks every entry pointing at the bill and removes the bill
	// row in one transaction.
	Delete(ctx context.Context, id int64) error
	// NextBillNumber counts existing bills of the prefix/year and adds one.
	// Count-then-insert is racy; the unique constraint on bill_number turns
	// a lost race into ErrDuplicateBillNumber instead of a duplicate.
	NextBillNumber(ctx context.Context, prefix string, year int) (string, error)
}
