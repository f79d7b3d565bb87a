package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/andy/hourtab/internal/domain"
	"github.com/andy/hourtab/internal/repository"
)

var (
	ErrClientNotFound     = errors.New("client not found")
	ErrBillNotFound       = errors.New("bill not found")
	ErrEntryNotFound      = errors.New("time entry not found")
	ErrEntryWrongClient   = errors.New("time entry belongs to a different client")
	ErrEntryAlreadyBilled = errors.New("time entry is already billed")
	ErrEmptySelection     = errors.New("no time entries selected")
	ErrNoUnbilledEntries  = errors.New("no unbilled time entries in date range")
)

// BillOptions are the caller-supplied attributes of a generated bill
type BillOptions struct {
	Type      domain.BillType   // defaults to invoice
	IssueDate time.Time         // zero value defaults to today
	Status    domain.BillStatus // defaults to draft
	Notes     string
}

// BillingService converts unbilled time entries into bills and back
type BillingService interface {
	// GenerateFromEntries bills an explicit set of entry IDs. Every entry
	// must exist, belong to the client, and be unbilled; any bad ID fails
	// the whole operation with no partial writes.
	GenerateFromEntries(ctx context.Context, clientID int64, entryIDs []int64, opts BillOptions) (*domain.Bill, error)

	// GenerateFromDateRange bills the client's unbilled entries with work
	// dates in [from, to] inclusive
	GenerateFromDateRange(ctx context.Context, clientID int64, from, to time.Time, opts BillOptions) (*domain.Bill, error)

	// GetBill retrieves a bill with its linked entries and client attached
	GetBill(ctx context.Context, id int64) (*domain.Bill, error)

	// ListBills lists bills with optional filters
	ListBills(ctx context.Context, clientID *int64, status *domain.BillStatus, billType *domain.BillType) ([]*domain.Bill, error)

	// UpdateBill patches mutable bill fields. Consistency between the
	// stored totals and the linked entries is not re-validated.
	UpdateBill(ctx context.Context, id int64, patch domain.BillPatch) (*domain.Bill, error)

	// DeleteBill releases every linked entry back to unbilled and removes
	// the bill, atomically
	DeleteBill(ctx context.Context, id int64) error
}

type billingService struct {
	billRepo   repository.BillRepository
	entryRepo  repository.TimeEntryRepository
	clientRepo repository.ClientRepository
}

// NewBillingService creates a new billing service
func NewBillingService(
	billRepo repository.BillRepository,
	entryRepo repository.TimeEntryRepository,
	clientRepo repository.ClientRepository,
) BillingService {
	return &billingService{
		billRepo:   billRepo,
		entryRepo:  entryRepo,
		clientRepo: clientRepo,
	}
}

func (s *billingService) GenerateFromEntries(
	ctx context.Context,
	clientID int64,
	entryIDs []int64,
	opts BillOptions,
) (*domain.Bill, error) {
	client, err := s.resolveClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	// Validate the selection up front: fail on the first bad ID, before
	// anything is written
	entries := make([]*domain.TimeEntry, 0, len(entryIDs))
	for _, entryID := range entryIDs {
		entry, err := s.entryRepo.GetByID(ctx, entryID)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, fmt.Errorf("%w: entry %d", ErrEntryNotFound, entryID)
		}
		if entry.ClientID != clientID {
			return nil, fmt.Errorf("%w: entry %d", ErrEntryWrongClient, entryID)
		}
		if entry.IsBilled {
			return nil, fmt.Errorf("%w: entry %d", ErrEntryAlreadyBilled, entryID)
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, ErrEmptySelection
	}

	// Sum durations and find the covered period
	totalMinutes := 0
	periodFrom := entries[0].WorkDate
	periodTo := entries[0].WorkDate
	for _, entry := range entries {
		totalMinutes += entry.TotalMinutes()
		if entry.WorkDate.Before(periodFrom) {
			periodFrom = entry.WorkDate
		}
		if entry.WorkDate.After(periodTo) {
			periodTo = entry.WorkDate
		}
	}

	billType := opts.Type
	if billType == "" {
		billType = domain.BillTypeInvoice
	}

	issueDate := opts.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	number, err := s.billRepo.NextBillNumber(ctx, billType.NumberPrefix(), issueDate.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to generate bill number: %w", err)
	}

	bill := domain.NewBill(clientID, number, billType, issueDate)
	bill.PeriodFrom = periodFrom
	bill.PeriodTo = periodTo
	bill.TotalHours = totalMinutes / 60
	bill.TotalMinutes = totalMinutes % 60
	bill.TotalAmount = round2(float64(totalMinutes) / 60 * client.HourlyRate)
	bill.Notes = opts.Notes
	if opts.Status != "" {
		bill.Status = opts.Status
	}

	// The repository re-checks the unbilled state of every entry inside the
	// same transaction as the bill insert, so a concurrent bill over
	// overlapping entries aborts instead of double-billing
	if err := s.billRepo.CreateForEntries(ctx, bill, entryIDs); err != nil {
		if errors.Is(err, repository.ErrEntryUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrEntryAlreadyBilled, err)
		}
		return nil, err
	}

	bill.Client = client
	bill.Entries, err = s.entryRepo.ListByBill(ctx, bill.ID)
	if err != nil {
		return nil, err
	}

	return bill, nil
}

func (s *billingService) GenerateFromDateRange(
	ctx context.Context,
	clientID int64,
	from, to time.Time,
	opts BillOptions,
) (*domain.Bill, error) {
	if _, err := s.resolveClient(ctx, clientID); err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.UnbilledInRange(ctx, clientID, from, to)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: client %d, %s to %s",
			ErrNoUnbilledEntries, clientID,
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	entryIDs := make([]int64, len(entries))
	for i, entry := range entries {
		entryIDs[i] = entry.ID
	}

	return s.GenerateFromEntries(ctx, clientID, entryIDs, opts)
}

func (s *billingService) GetBill(ctx context.Context, id int64) (*domain.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, fmt.Errorf("%w: bill %d", ErrBillNotFound, id)
	}

	if bill.Entries, err = s.entryRepo.ListByBill(ctx, id); err != nil {
		return nil, err
	}
	if bill.Client, err = s.clientRepo.GetByID(ctx, bill.ClientID); err != nil {
		return nil, err
	}

	return bill, nil
}

func (s *billingService) ListBills(
	ctx context.Context,
	clientID *int64,
	status *domain.BillStatus,
	billType *domain.BillType,
) ([]*domain.Bill, error) {
	return s.billRepo.List(ctx, clientID, status, billType)
}

func (s *billingService) UpdateBill(ctx context.Context, id int64, patch domain.BillPatch) (*domain.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, fmt.Errorf("%w: bill %d", ErrBillNotFound, id)
	}

	patch.Apply(bill)

	if err := s.billRepo.Update(ctx, bill); err != nil {
		return nil, err
	}

	return s.GetBill(ctx, id)
}

func (s *billingService) DeleteBill(ctx context.Context, id int64) error {
	bill, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bill == nil {
		return fmt.Errorf("%w: bill %d", ErrBillNotFound, id)
	}

	return s.billRepo.Delete(ctx, id)
}

func (s *billingService) resolveClient(ctx context.Context, clientID int64) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: client %d", ErrClientNotFound, clientID)
	}
	return client, nil
}

// round2 rounds a money amount to 2 decimal places, half away from zero
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
