package service

import (
	"context"
	"fmt"

	"github.com/andy/hourtab/internal/domain"
	"github.com/andy/hourtab/internal/repository"
)

// BalanceService computes per-client financial summaries
type BalanceService interface {
	// Calculate builds a balance report for the client from current entry and
	// payment state. Nothing is cached; every call recomputes from the store.
	Calculate(ctx context.Context, clientID int64) (*domain.BalanceReport, error)
}

type balanceService struct {
	clientRepo  repository.ClientRepository
	entryRepo   repository.TimeEntryRepository
	paymentRepo repository.PaymentRepository
}

// NewBalanceService creates a new balance service
func NewBalanceService(
	clientRepo repository.ClientRepository,
	entryRepo repository.TimeEntryRepository,
	paymentRepo repository.PaymentRepository,
) BalanceService {
	return &balanceService{
		clientRepo:  clientRepo,
		entryRepo:   entryRepo,
		paymentRepo: paymentRepo,
	}
}

func (s *balanceService) Calculate(ctx context.Context, clientID int64) (*domain.BalanceReport, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: client %d", ErrClientNotFound, clientID)
	}

	// Time worked covers every entry, billed or not
	worked, err := s.entryRepo.TotalsByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	earnings := round2(float64(worked.TotalMinutes) / 60 * client.HourlyRate)

	payments, err := s.paymentBreakdown(ctx, clientID)
	if err != nil {
		return nil, err
	}

	unbilled, err := s.unbilledSummary(ctx, clientID, client.HourlyRate)
	if err != nil {
		return nil, err
	}

	// Positive means the client has paid ahead of the work delivered
	balance := round2(payments.TotalPaid - earnings)
	status := domain.BalanceClientCredit
	if balance < 0 {
		status = domain.BalanceClientOwes
	}

	return &domain.BalanceReport{
		Client: domain.ClientSummary{
			ID:         client.ID,
			Name:       client.Name,
			HourlyRate: client.HourlyRate,
		},
		TimeWorked: *worked,
		Earnings: domain.Earnings{
			TotalAmount: earnings,
			HourlyRate:  client.HourlyRate,
		},
		Payments: *payments,
		Unbilled: *unbilled,
		Balance: domain.BalanceLine{
			Amount: balance,
			Status: status,
		},
	}, nil
}

// paymentBreakdown splits payment totals into money and supplements buckets
// and itemizes the supplements
func (s *balanceService) paymentBreakdown(ctx context.Context, clientID int64) (*domain.PaymentBreakdown, error) {
	totals, err := s.paymentRepo.TotalsByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	breakdown := &domain.PaymentBreakdown{
		Money:           totals.AmountFor(domain.PaymentMoney),
		Supplements:     totals.AmountFor(domain.PaymentSupplements),
		SupplementsList: make([]domain.SupplementItem, 0),
	}
	breakdown.TotalPaid = round2(breakdown.Money + breakdown.Supplements)

	supplementsType := domain.PaymentSupplements
	supplements, err := s.paymentRepo.List(ctx, &clientID, &supplementsType, nil, nil)
	if err != nil {
		return nil, err
	}

	for _, payment := range supplements {
		breakdown.SupplementsList = append(breakdown.SupplementsList, domain.SupplementItem{
			ID:          payment.ID,
			PaymentDate: payment.PaymentDate,
			Amount:      payment.Amount,
			Description: payment.SupplementsDescription,
			Notes:       payment.Notes,
		})
	}

	return breakdown, nil
}

// unbilledSummary aggregates the entries not yet attached to a bill
func (s *balanceService) unbilledSummary(ctx context.Context, clientID int64, hourlyRate float64) (*domain.UnbilledSummary, error) {
	entries, err := s.entryRepo.ListUnbilled(ctx, &clientID)
	if err != nil {
		return nil, err
	}

	totalMinutes := 0
	for _, entry := range entries {
		totalMinutes += entry.TotalMinutes()
	}

	return &domain.UnbilledSummary{
		Hours:        totalMinutes / 60,
		Minutes:      totalMinutes % 60,
		TotalMinutes: totalMinutes,
		Amount:       round2(float64(totalMinutes) / 60 * hourlyRate),
		Entries:      len(entries),
	}, nil
}
