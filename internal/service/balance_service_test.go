package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andy/hourtab/internal/domain"
)

type mockPaymentRepo struct {
	payments map[int64]*domain.Payment
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *domain.Payment) error { return nil }
func (m *mockPaymentRepo) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	if p, ok := m.payments[id]; ok {
		return p, nil
	}
	return nil, nil
}
func (m *mockPaymentRepo) Update(ctx context.Context, payment *domain.Payment) error { return nil }
func (m *mockPaymentRepo) Delete(ctx context.Context, id int64) error                { return nil }
func (m *mockPaymentRepo) List(ctx context.Context, clientID *int64, paymentType *domain.PaymentType, from, to *time.Time) ([]*domain.Payment, error) {
	out := make([]*domain.Payment, 0)
	for _, p := range m.payments {
		if clientID != nil && p.ClientID != *clientID {
			continue
		}
		if paymentType != nil && p.Type != *paymentType {
			continue
		}
		if from != nil && p.PaymentDate.Before(*from) {
			continue
		}
		if to != nil && p.PaymentDate.After(*to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
func (m *mockPaymentRepo) TotalsByClient(ctx context.Context, clientID int64) (*domain.PaymentTotals, error) {
	totals := &domain.PaymentTotals{ClientID: clientID}
	sums := make(map[domain.PaymentType]*domain.PaymentTypeTotal)
	for _, p := range m.payments {
		if p.ClientID != clientID {
			continue
		}
		tt, ok := sums[p.Type]
		if !ok {
			tt = &domain.PaymentTypeTotal{Type: p.Type}
			sums[p.Type] = tt
		}
		tt.Count++
		if p.Amount != nil {
			tt.TotalAmount += *p.Amount
		}
	}
	for _, tt := range sums {
		totals.ByType = append(totals.ByType, *tt)
		totals.OverallCount += tt.Count
		totals.OverallAmount += tt.TotalAmount
	}
	return totals, nil
}

func moneyPayment(id, clientID int64, paymentDate time.Time, amount float64) *domain.Payment {
	p := domain.NewPayment(clientID, paymentDate, domain.PaymentMoney)
	p.ID = id
	p.Amount = &amount
	return p
}

func supplementsPayment(id, clientID int64, paymentDate time.Time, amount float64, description string) *domain.Payment {
	p := domain.NewPayment(clientID, paymentDate, domain.PaymentSupplements)
	p.ID = id
	p.Amount = &amount
	p.SupplementsDescription = description
	return p
}

func newBalanceFixture(client *domain.Client) (*balanceService, *mockEntryRepo, *mockPaymentRepo) {
	clientRepo := &mockClientRepo{clients: make(map[int64]*domain.Client)}
	if client != nil {
		clientRepo.clients[client.ID] = client
	}
	entryRepo := &mockEntryRepo{entries: make(map[int64]*domain.TimeEntry)}
	paymentRepo := &mockPaymentRepo{payments: make(map[int64]*domain.Payment)}
	svc := &balanceService{
		clientRepo:  clientRepo,
		entryRepo:   entryRepo,
		paymentRepo: paymentRepo,
	}
	return svc, entryRepo, paymentRepo
}

func TestCalculate_ClientCredit(t *testing.T) {
	ctx := context.Background()

	client := &domain.Client{ID: 1, Name: "ACME", HourlyRate: 1800}
	svc, entryRepo, paymentRepo := newBalanceFixture(client)

	// 600 minutes of unbilled work
	entryRepo.entries[1] = unbilledEntry(1, 1, date(2026, 1, 5), 6, 0)
	entryRepo.entries[2] = unbilledEntry(2, 1, date(2026, 1, 6), 4, 0)
	paymentRepo.payments[1] = moneyPayment(1, 1, date(2026, 1, 10), 500000)

	report, err := svc.Calculate(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TimeWorked.TotalMinutes != 600 {
		t.Errorf("expected 600 worked minutes, got %d", report.TimeWorked.TotalMinutes)
	}
	if report.Earnings.TotalAmount != 18000.00 {
		t.Errorf("expected earnings 18000.00, got %v", report.Earnings.TotalAmount)
	}
	if report.Payments.Money != 500000 || report.Payments.TotalPaid != 500000 {
		t.Errorf("expected 500000 paid, got money=%v total=%v",
			report.Payments.Money, report.Payments.TotalPaid)
	}
	if report.Balance.Amount != 482000.00 {
		t.Errorf("expected balance 482000.00, got %v", report.Balance.Amount)
	}
	if report.Balance.Status != domain.BalanceClientCredit {
		t.Errorf("expected client_credit, got %s", report.Balance.Status)
	}
	if report.Unbilled.TotalMinutes != 600 || report.Unbilled.Entries != 2 {
		t.Errorf("expected 600 unbilled minutes over 2 entries, got %dm over %d",
			report.Unbilled.TotalMinutes, report.Unbilled.Entries)
	}
	if report.Unbilled.Amount != 18000.00 {
		t.Errorf("expected unbilled amount 18000.00, got %v", report.Unbilled.Amount)
	}
}

func TestCalculate_ClientOwes(t *testing.T) {
	ctx := context.Background()

	client := &domain.Client{ID: 1, Name: "ACME", HourlyRate: 100}
	svc, entryRepo, paymentRepo := newBalanceFixture(client)

	entryRepo.entries[1] = unbilledEntry(1, 1, date(2026, 2, 1), 5, 0)
	paymentRepo.payments[1] = moneyPayment(1, 1, date(2026, 2, 10), 200)

	report, err := svc.Calculate(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Balance.Amount != -300.00 {
		t.Errorf("expected balance -300.00, got %v", report.Balance.Amount)
	}
	if report.Balance.Status != domain.BalanceClientOwes {
		t.Errorf("expected client_owes, got %s", report.Balance.Status)
	}
}

func TestCalculate_TimeWorkedIncludesBilled(t *testing.T) {
	ctx := context.Background()

	client := &domain.Client{ID: 1, Name: "ACME", HourlyRate: 60}
	svc, entryRepo, _ := newBalanceFixture(client)

	entryRepo.entries[1] = billedEntry(1, 1, date(2026, 3, 1), 2, 0, 9)
	entryRepo.entries[2] = unbilledEntry(2, 1, date(2026, 3, 2), 1, 30)

	report, err := svc.Calculate(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Earnings span billed and unbilled; the unbilled block is the subset
	if report.TimeWorked.TotalMinutes != 210 {
		t.Errorf("expected 210 worked minutes, got %d", report.TimeWorked.TotalMinutes)
	}
	if report.Earnings.TotalAmount != 210.00 {
		t.Errorf("expected earnings 210.00, got %v", report.Earnings.TotalAmount)
	}
	if report.Unbilled.TotalMinutes != 90 || report.Unbilled.Entries != 1 {
		t.Errorf("expected 90 unbilled minutes over 1 entry, got %dm over %d",
			report.Unbilled.TotalMinutes, report.Unbilled.Entries)
	}
	if report.Unbilled.Amount != 90.00 {
		t.Errorf("expected unbilled amount 90.00, got %v", report.Unbilled.Amount)
	}
}

func TestCalculate_SupplementsBreakdown(t *testing.T) {
	ctx := context.Background()

	client := &domain.Client{ID: 1, Name: "ACME", HourlyRate: 100}
	svc, _, paymentRepo := newBalanceFixture(client)

	paymentRepo.payments[1] = moneyPayment(1, 1, date(2026, 4, 1), 100)
	paymentRepo.payments[2] = supplementsPayment(2, 1, date(2026, 4, 5), 40, "hosting credit")
	paymentRepo.payments[3] = supplementsPayment(3, 2, date(2026, 4, 6), 99, "other client")

	report, err := svc.Calculate(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Payments.Money != 100 {
		t.Errorf("expected money 100, got %v", report.Payments.Money)
	}
	if report.Payments.Supplements != 40 {
		t.Errorf("expected supplements 40, got %v", report.Payments.Supplements)
	}
	if report.Payments.TotalPaid != 140 {
		t.Errorf("expected total paid 140, got %v", report.Payments.TotalPaid)
	}
	if len(report.Payments.SupplementsList) != 1 {
		t.Fatalf("expected 1 supplement item, got %d", len(report.Payments.SupplementsList))
	}
	item := report.Payments.SupplementsList[0]
	if item.Description != "hosting credit" || item.Amount == nil || *item.Amount != 40 {
		t.Errorf("unexpected supplement item: %+v", item)
	}
}

func TestCalculate_EmptyClient(t *testing.T) {
	ctx := context.Background()

	client := &domain.Client{ID: 1, Name: "ACME", HourlyRate: 100}
	svc, _, _ := newBalanceFixture(client)

	report, err := svc.Calculate(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Earnings.TotalAmount != 0 || report.Payments.TotalPaid != 0 {
		t.Errorf("expected zero earnings and payments, got %v / %v",
			report.Earnings.TotalAmount, report.Payments.TotalPaid)
	}
	// A fully settled (empty) ledger reads as credit, not debt
	if report.Balance.Amount != 0 || report.Balance.Status != domain.BalanceClientCredit {
		t.Errorf("expected zero balance with client_credit, got %v %s",
			report.Balance.Amount, report.Balance.Status)
	}
}

func TestCalculate_ClientNotFound(t *testing.T) {
	ctx := context.Background()

	svc, _, _ := newBalanceFixture(nil)

	_, err := svc.Calculate(ctx, 42)
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}
