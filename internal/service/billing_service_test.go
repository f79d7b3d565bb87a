package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/andy/hourtab/internal/domain"
	"github.com/andy/hourtab/internal/repository"
)

// mock implementations

type mockClientRepo struct {
	clients map[int64]*domain.Client
}

func (m *mockClientRepo) Create(ctx context.Context, client *domain.Client) error { return nil }
func (m *mockClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return nil, nil
}
func (m *mockClientRepo) GetByName(ctx context.Context, name string) (*domain.Client, error) {
	return nil, nil
}
func (m *mockClientRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Client, error) {
	return nil, nil
}
func (m *mockClientRepo) Update(ctx context.Context, client *domain.Client) error { return nil }
func (m *mockClientRepo) Deactivate(ctx context.Context, id int64) error          { return nil }
func (m *mockClientRepo) Reactivate(ctx context.Context, id int64) error          { return nil }

type mockEntryRepo struct {
	entries map[int64]*domain.TimeEntry
}

func (m *mockEntryRepo) Create(ctx context.Context, entry *domain.TimeEntry) error { return nil }
func (m *mockEntryRepo) GetByID(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, nil
}
func (m *mockEntryRepo) Update(ctx context.Context, entry *domain.TimeEntry) error { return nil }
func (m *mockEntryRepo) Delete(ctx context.Context, id int64) error                { return nil }
func (m *mockEntryRepo) List(ctx context.Context, clientID *int64, workDate *time.Time, isBilled *bool) ([]*domain.TimeEntry, error) {
	return nil, nil
}
func (m *mockEntryRepo) ListUnbilled(ctx context.Context, clientID *int64) ([]*domain.TimeEntry, error) {
	out := make([]*domain.TimeEntry, 0)
	for _, e := range m.entries {
		if e.IsBilled {
			continue
		}
		if clientID != nil && e.ClientID != *clientID {
			continue
		}
		out = append(out, e)
	}
	sortEntries(out)
	return out, nil
}
func (m *mockEntryRepo) UnbilledInRange(ctx context.Context, clientID int64, from, to time.Time) ([]*domain.TimeEntry, error) {
	out := make([]*domain.TimeEntry, 0)
	for _, e := range m.entries {
		if e.IsBilled || e.ClientID != clientID {
			continue
		}
		if e.WorkDate.Before(from) || e.WorkDate.After(to) {
			continue
		}
		out = append(out, e)
	}
	sortEntries(out)
	return out, nil
}
func (m *mockEntryRepo) ListByBill(ctx context.Context, billID int64) ([]*domain.TimeEntry, error) {
	out := make([]*domain.TimeEntry, 0)
	for _, e := range m.entries {
		if e.BillID != nil && *e.BillID == billID {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}
func (m *mockEntryRepo) TotalsByClient(ctx context.Context, clientID int64) (*domain.EntryTotals, error) {
	totals := &domain.EntryTotals{ClientID: clientID}
	for _, e := range m.entries {
		if e.ClientID != clientID {
			continue
		}
		totals.Entries++
		totals.TotalMinutes += e.TotalMinutes()
	}
	totals.Hours = totals.TotalMinutes / 60
	totals.Minutes = totals.TotalMinutes % 60
	return totals, nil
}

func sortEntries(entries []*domain.TimeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].WorkDate.Equal(entries[j].WorkDate) {
			return entries[i].WorkDate.Before(entries[j].WorkDate)
		}
		return entries[i].ID < entries[j].ID
	})
}

// mockBillRepo mimics the transactional behavior of the real repository:
// CreateForEntries validates every entry before flipping any of them, and
// Delete releases the linked entries together with the bill removal.
type mockBillRepo struct {
	bills   map[int64]*domain.Bill
	entries *mockEntryRepo
	nextID  int64
	updated *domain.Bill
}

func newMockBillRepo(entries *mockEntryRepo) *mockBillRepo {
	return &mockBillRepo{
		bills:   make(map[int64]*domain.Bill),
		entries: entries,
		nextID:  1,
	}
}

func (m *mockBillRepo) CreateForEntries(ctx context.Context, bill *domain.Bill, entryIDs []int64) error {
	for _, id := range entryIDs {
		e, ok := m.entries.entries[id]
		if !ok || e.IsBilled || e.ClientID != bill.ClientID {
			return fmt.Errorf("entry %d: %w", id, repository.ErrEntryUnavailable)
		}
	}
	billID := m.nextID
	m.nextID++
	for _, id := range entryIDs {
		e := m.entries.entries[id]
		e.IsBilled = true
		bid := billID
		e.BillID = &bid
	}
	bill.ID = billID
	m.bills[billID] = bill
	return nil
}
func (m *mockBillRepo) GetByID(ctx context.Context, id int64) (*domain.Bill, error) {
	if b, ok := m.bills[id]; ok {
		return b, nil
	}
	return nil, nil
}
func (m *mockBillRepo) GetByNumber(ctx context.Context, number string) (*domain.Bill, error) {
	for _, b := range m.bills {
		if b.BillNumber == number {
			return b, nil
		}
	}
	return nil, nil
}
func (m *mockBillRepo) List(ctx context.Context, clientID *int64, status *domain.BillStatus, billType *domain.BillType) ([]*domain.Bill, error) {
	out := make([]*domain.Bill, 0)
	for _, b := range m.bills {
		if clientID != nil && b.ClientID != *clientID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		if billType != nil && b.Type != *billType {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
func (m *mockBillRepo) Update(ctx context.Context, bill *domain.Bill) error {
	if _, ok := m.bills[bill.ID]; !ok {
		return fmt.Errorf("bill %d: %w", bill.ID, repository.ErrNotFound)
	}
	m.bills[bill.ID] = bill
	m.updated = bill
	return nil
}
func (m *mockBillRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.bills[id]; !ok {
		return fmt.Errorf("bill %d: %w", id, repository.ErrNotFound)
	}
	for _, e := range m.entries.entries {
		if e.BillID != nil && *e.BillID == id {
			e.IsBilled = false
			e.BillID = nil
		}
	}
	delete(m.bills, id)
	return nil
}
func (m *mockBillRepo) NextBillNumber(ctx context.Context, prefix string, year int) (string, error) {
	count := 0
	for _, b := range m.bills {
		if strings.HasPrefix(b.BillNumber, prefix+"-") && b.IssueDate.Year() == year {
			count++
		}
	}
	return fmt.Sprintf("%s-%d-%03d", prefix, year, count+1), nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func unbilledEntry(id, clientID int64, workDate time.Time, hours, minutes int) *domain.TimeEntry {
	e := domain.NewTimeEntry(clientID, workDate, hours, minutes)
	e.ID = id
	return e
}

func billedEntry(id, clientID int64, workDate time.Time, hours, minutes int, billID int64) *domain.TimeEntry {
	e := unbilledEntry(id, clientID, workDate, hours, minutes)
	e.IsBilled = true
	e.BillID = &billID
	return e
}

func newBillingFixture(clients ...*domain.Client) (*billingService, *mockClientRepo, *mockEntryRepo, *mockBillRepo) {
	clientRepo := &mockClientRepo{clients: make(map[int64]*domain.Client)}
	for _, c := range clients {
		clientRepo.clients[c.ID] = c
	}
	entryRepo := &mockEntryRepo{entries: make(map[int64]*domain.TimeEntry)}
	billRepo := newMockBillRepo(entryRepo)
	svc := &billingService{
		billRepo:   billRepo,
		entryRepo:  entryRepo,
		clientRepo: clientRepo,
	}
	return svc, clientRepo, entryRepo, billRepo
}

func TestGenerateFromEntries_Success(t *testing.T) {
	ctx := context.Background()

	client := &domain.Client{ID: 1, Name: "ACME", HourlyRate: 50}
	svc, _, entryRepo, _ := newBillingFixture(client)
	entryRepo.entries[100] = unbilledEntry(100, 1, date(2026, 3, 2), 2, 0)
	entryRepo.entries[101] = unbilledEntry(101, 1, date(2026, 3, 5), 1, 30)

	bill, err := svc.GenerateFromEntries(ctx, 1, []int64{100, 101}, BillOptions{
		IssueDate: date(2026, 3, 10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bill.BillNumber != "INV-2026-001" {
		t.Errorf("expected bill number INV-2026-001, got %s", bill.BillNumber)
	}
	if bill.TotalHours != 3 || bill.TotalMinutes != 30 {
		t.Errorf("expected 3h 30m, got %dh %dm", bill.TotalHours, bill.TotalMinutes)
	}
	// 210 minutes at 50/h
	if bill.TotalAmount != 175.00 {
		t.Errorf("expected total amount 175.00, got %v", bill.TotalAmount)
	}
	if !bill.PeriodFrom.Equal(date(2026, 3, 2)) || !bill.PeriodTo.Equal(date(2026, 3, 5)) {
		t.Errorf("expected period 2026-03-02..2026-03-05, got %s..%s",
			bill.PeriodFrom.Format("2006-01-02"), bill.PeriodTo.Format("2006-01-02"))
	}
	if bill.Status != domain.BillStatusDraft {
		t.Errorf("expected draft status, got %s", bill.Status)
	}
	if len(bill.Entries) != 2 {
		t.Fatalf("expected 2 linked entries, got %d", len(bill.Entries))
	}
	if bill.Client == nil || bill.Client.Name != "ACME" {
		t.Errorf("expected client attached to bill")
	}

	for _, id := range []int64{100, 101} {
		e := entryRepo.entries[id]
		if !e.IsBilled || e.BillID == nil || *e.BillID != bill.ID {
			t.Errorf("entry %d not marked billed by bill %d", id, bill.ID)
		}
	}
}

func TestGenerateFromEntries_AlreadyBilledAbortsAll(t *testing.T) {
	ctx := context.Background()

	client := &domain.Client{ID: 1, Name: "ACME", HourlyRate: 50}
	svc, _, entryRepo, billRepo := newBillingFixture(client)
	for i := int64(1); i <= 5; i++ {
		entryRepo.entries[i] = unbilledEntry(i, 1, date(2026, 4, int(i)), 1, 0)
	}
	entryRepo.entries[3] = billedEntry(3, 1, date(2026, 4, 3), 1, 0, 99)

	_, err := svc.GenerateFromEntries(ctx, 1, []int64{1, 2, 3, 4, 5}, BillOptions{})
	if !errors.Is(err, ErrEntryAlreadyBilled) {
		t.Fatalf("expected ErrEntryAlreadyBilled, got %v", err)
	}

	// Nothing may change for the other four entries
	for _, id := range []int64{1, 2, 4, 5} {
		e := entryRepo.entries[id]
		if e.IsBilled || e.BillID != nil {
			t.Errorf("entry %d was modified by a failed billing run", id)
		}
	}
	if len(billRepo.bills) != 0 {
		t.Errorf("expected no bill created, got %d", len(billRepo.bills))
	}
}

func TestGenerateFromEntries_WrongClient(t *testing.T) {
	ctx := context.Background()

	client := &domain.Client{ID: 1, Name: "ACME", HourlyRate: 50}
	svc, clientRepo, entryRepo, _ := newBillingFixture(client)
	clientRepo.clients[2] = &domain.Client{ID: 2, Name: "Globex", HourlyRate: 80}
	entryRepo.entries[100] = unbilledEntry(100, 2, date(2026, 5, 1), 1, 0)

	_, err := svc.GenerateFromEntries(ctx, 1, []int64{100}, BillOptions{})
	if !errors.Is(err, ErrEntryWrongClient) {
		t.Fatalf("expected ErrEntryWrongClient, got %v", err)
	}
}

func TestGenerateFromEntries_MissingEntry(t *testing.T) {
	ctx := context.Background()

	svc, _, _, _ := newBillingFixture(&domain.Client{ID: 1, Name: "ACME", HourlyRate: 50})

	_, err := svc.GenerateFromEntries(ctx, 1, []int64{404}, BillOptions{})
	if !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestGenerateFromEntries_EmptySelection(t *testing.T) {
	ctx := context.Background()

	svc, _, _, _ := newBillingFixture(&domain.Client{ID: 1, Name: "ACME", HourlyRate: 50})

	_, err := svc.GenerateFromEntries(ctx, 1, nil, BillOptions{})
	if !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
}

func TestGenerateFromEntries_ClientNotFound(t *testing.T) {
	ctx := context.Background()

	svc, _, _, _ := newBillingFixture()

	_, err := svc.GenerateFromEntries(ctx, 42, []int64{1}, BillOptions{})
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestGenerateFromDateRange(t *testing.T) {
	ctx := context.Background()

	client := &domain.Client{ID: 1, Name: "ACME", HourlyRate: 100}
	svc, _, entryRepo, _ := newBillingFixture(client)
	entryRepo.entries[1] = unbilledEntry(1, 1, date(2024, 6, 1), 1, 0)
	entryRepo.entries[2] = billedEntry(2, 1, date(2024, 6, 2), 4, 0, 77)
	entryRepo.entries[3] = unbilledEntry(3, 1, date(2024, 6, 3), 2, 0)

	bill, err := svc.GenerateFromDateRange(ctx, 1, date(2024, 6, 1), date(2024, 6, 3), BillOptions{
		IssueDate: date(2024, 6, 15),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The billed entry on June 2nd is skipped, not re-billed
	if len(bill.Entries) != 2 {
		t.Fatalf("expected 2 entries on bill, got %d", len(bill.Entries))
	}
	if bill.TotalHours != 3 || bill.TotalMinutes != 0 {
		t.Errorf("expected 3h 0m, got %dh %dm", bill.TotalHours, bill.TotalMinutes)
	}
	if !bill.PeriodFrom.Equal(date(2024, 6, 1)) || !bill.PeriodTo.Equal(date(2024, 6, 3)) {
		t.Errorf("expected period 2024-06-01..2024-06-03, got %s..%s",
			bill.PeriodFrom.Format("2006-01-02"), bill.PeriodTo.Format("2006-01-02"))
	}
	if e := entryRepo.entries[2]; e.BillID == nil || *e.BillID != 77 {
		t.Errorf("previously billed entry was reassigned")
	}
}

func TestGenerateFromDateRange_Empty(t *testing.T) {
	ctx := context.Background()

	client := &domain.Client{ID: 1, Name: "ACME", HourlyRate: 100}
	svc, _, entryRepo, _ := newBillingFixture(client)
	entryRepo.entries[1] = billedEntry(1, 1, date(2024, 6, 2), 4, 0, 77)

	_, err := svc.GenerateFromDateRange(ctx, 1, date(2024, 6, 1), date(2024, 6, 30), BillOptions{})
	if !errors.Is(err, ErrNoUnbilledEntries) {
		t.Fatalf("expected ErrNoUnbilledEntries, got %v", err)
	}
}

func TestBillNumbers_IndependentPerType(t *testing.T) {
	ctx := context.Background()

	client := &domain.Client{ID: 1, Name: "ACME", HourlyRate: 50}
	svc, _, entryRepo, _ := newBillingFixture(client)
	for i := int64(1); i <= 3; i++ {
		entryRepo.entries[i] = unbilledEntry(i, 1, date(2026, 7, int(i)), 1, 0)
	}

	issue := date(2026, 7, 31)

	inv1, err := svc.GenerateFromEntries(ctx, 1, []int64{1}, BillOptions{Type: domain.BillTypeInvoice, IssueDate: issue})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	act1, err := svc.GenerateFromEntries(ctx, 1, []int64{2}, BillOptions{Type: domain.BillTypeAct, IssueDate: issue})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inv2, err := svc.GenerateFromEntries(ctx, 1, []int64{3}, BillOptions{Type: domain.BillTypeInvoice, IssueDate: issue})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inv1.BillNumber != "INV-2026-001" {
		t.Errorf("expected INV-2026-001, got %s", inv1.BillNumber)
	}
	// Act numbering does not advance with invoices
	if act1.BillNumber != "ACT-2026-001" {
		t.Errorf("expected ACT-2026-001, got %s", act1.BillNumber)
	}
	if inv2.BillNumber != "INV-2026-002" {
		t.Errorf("expected INV-2026-002, got %s", inv2.BillNumber)
	}
}

func TestDeleteBill_ReleasesEntries(t *testing.T) {
	ctx := context.Background()

	client := &domain.Client{ID: 1, Name: "ACME", HourlyRate: 50}
	svc, _, entryRepo, _ := newBillingFixture(client)
	entryRepo.entries[1] = unbilledEntry(1, 1, date(2026, 8, 1), 2, 0)
	entryRepo.entries[2] = unbilledEntry(2, 1, date(2026, 8, 2), 3, 15)

	bill, err := svc.GenerateFromEntries(ctx, 1, []int64{1, 2}, BillOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteBill(ctx, bill.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []int64{1, 2} {
		e := entryRepo.entries[id]
		if e.IsBilled || e.BillID != nil {
			t.Errorf("entry %d still billed after bill deletion", id)
		}
	}
	if _, err := svc.GetBill(ctx, bill.ID); !errors.Is(err, ErrBillNotFound) {
		t.Errorf("expected ErrBillNotFound after deletion, got %v", err)
	}
}

func TestDeleteBill_NotFound(t *testing.T) {
	ctx := context.Background()

	svc, _, _, _ := newBillingFixture()

	if err := svc.DeleteBill(ctx, 404); !errors.Is(err, ErrBillNotFound) {
		t.Fatalf("expected ErrBillNotFound, got %v", err)
	}
}

func TestUpdateBill_PatchesStatus(t *testing.T) {
	ctx := context.Background()

	client := &domain.Client{ID: 1, Name: "ACME", HourlyRate: 50}
	svc, _, entryRepo, billRepo := newBillingFixture(client)
	entryRepo.entries[1] = unbilledEntry(1, 1, date(2026, 8, 1), 2, 0)

	bill, err := svc.GenerateFromEntries(ctx, 1, []int64{1}, BillOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	issued := domain.BillStatusIssued
	updated, err := svc.UpdateBill(ctx, bill.ID, domain.BillPatch{Status: &issued})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Status != domain.BillStatusIssued {
		t.Errorf("expected issued status, got %s", updated.Status)
	}
	if billRepo.updated == nil {
		t.Fatalf("expected repository update to be called")
	}
}
