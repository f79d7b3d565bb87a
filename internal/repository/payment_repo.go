package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andy/hourtab/internal/db"
	"github.com/andy/hourtab/internal/domain"
)

// PaymentRepo is a SQLite implementation of PaymentRepository
type PaymentRepo struct {
	db *db.DB
}

// NewPaymentRepo creates a new PaymentRepo
func NewPaymentRepo(database *db.DB) *PaymentRepo {
	return &PaymentRepo{db: database}
}

const paymentColumns = `id, client_id, payment_date, payment_type, amount,
	       supplements_description, notes, created_at, updated_at`

// Create inserts a new payment. The referenced client must exist.
func (r *PaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	if err := payment.Validate(); err != nil {
		return fmt.Errorf("invalid payment: %w", err)
	}

	if err := r.checkClient(ctx, payment.ClientID); err != nil {
		return err
	}

	query := `
		INSERT INTO payments (
			client_id, payment_date, payment_type, amount,
			supplements_description, notes, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var amount interface{}
	if payment.Amount != nil {
		amount = *payment.Amount
	}

	result, err := r.db.ExecContext(ctx, query,
		payment.ClientID,
		payment.PaymentDate.Format(dateLayout),
		string(payment.Type),
		amount,
		payment.SupplementsDescription,
		payment.Notes,
		payment.CreatedAt.Format(timeLayout),
		payment.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get payment ID: %w", err)
	}

	payment.ID = id
	return nil
}

// GetByID retrieves a payment by ID, returning nil if it does not exist
func (r *PaymentRepo) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	query := "SELECT " + paymentColumns + " FROM payments WHERE id = ?"

	payment, err := scanPaymentRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

// Update rewrites an existing payment, re-checking the client reference
func (r *PaymentRepo) Update(ctx context.Context, payment *domain.Payment) error {
	if err := payment.Validate(); err != nil {
		return fmt.Errorf("invalid payment: %w", err)
	}

	if err := r.checkClient(ctx, payment.ClientID); err != nil {
		return err
	}

	query := `
		UPDATE payments
		SET client_id = ?, payment_date = ?, payment_type = ?, amount = ?,
		    supplements_description = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	var amount interface{}
	if payment.Amount != nil {
		amount = *payment.Amount
	}

	payment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		payment.ClientID,
		payment.PaymentDate.Format(dateLayout),
		string(payment.Type),
		amount,
		payment.SupplementsDescription,
		payment.Notes,
		payment.UpdatedAt.Format(timeLayout),
		payment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("payment %d: %w", payment.ID, ErrNotFound)
	}

	return nil
}

// Delete removes a payment
func (r *PaymentRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("payment %d: %w", id, ErrNotFound)
	}

	return nil
}

// List retrieves payments with optional filters, newest first
func (r *PaymentRepo) List(ctx context.Context, clientID *int64, paymentType *domain.PaymentType, from, to *time.Time) ([]*domain.Payment, error) {
	query := "SELECT " + paymentColumns + " FROM payments WHERE 1=1"
	args := make([]interface{}, 0)

	if clientID != nil {
		query += " AND client_id = ?"
		args = append(args, *clientID)
	}

	if paymentType != nil {
		query += " AND payment_type = ?"
		args = append(args, string(*paymentType))
	}

	if from != nil {
		query += " AND payment_date >= ?"
		args = append(args, from.Format(dateLayout))
	}

	if to != nil {
		query += " AND payment_date <= ?"
		args = append(args, to.Format(dateLayout))
	}

	query += " ORDER BY payment_date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*domain.Payment, 0)
	for rows.Next() {
		payment, err := scanPaymentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

// TotalsByClient returns per-type counts and sums plus overall totals
func (r *PaymentRepo) TotalsByClient(ctx context.Context, clientID int64) (*domain.PaymentTotals, error) {
	query := `
		SELECT payment_type, COUNT(*), COALESCE(SUM(amount), 0)
		FROM payments
		WHERE client_id = ?
		GROUP BY payment_type
	`

	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to total payments: %w", err)
	}
	defer rows.Close()

	totals := &domain.PaymentTotals{ClientID: clientID}
	for rows.Next() {
		var tt domain.PaymentTypeTotal
		var paymentType string

		if err := rows.Scan(&paymentType, &tt.Count, &tt.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan payment totals: %w", err)
		}
		tt.Type = domain.PaymentType(paymentType)

		totals.ByType = append(totals.ByType, tt)
		totals.OverallCount += tt.Count
		totals.OverallAmount += tt.TotalAmount
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment totals: %w", err)
	}

	return totals, nil
}

// checkClient verifies the referenced client exists
func (r *PaymentRepo) checkClient(ctx context.Context, clientID int64) error {
	var id int64
	err := r.db.QueryRowContext(ctx, "SELECT id FROM clients WHERE id = ?", clientID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("client %d: %w", clientID, ErrInvalidClient)
		}
		return fmt.Errorf("failed to check client: %w", err)
	}
	return nil
}

// scanPaymentRow scans one payment row
func scanPaymentRow(row rowScanner) (*domain.Payment, error) {
	payment := &domain.Payment{}
	var paymentDate, paymentType, createdAt, updatedAt string
	var amount sql.NullFloat64

	err := row.Scan(
		&payment.ID,
		&payment.ClientID,
		&paymentDate,
		&paymentType,
		&amount,
		&payment.SupplementsDescription,
		&payment.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.Type = domain.PaymentType(paymentType)

	if amount.Valid {
		payment.Amount = &amount.Float64
	}

	if payment.PaymentDate, err = parseDate(paymentDate); err != nil {
		return nil, fmt.Errorf("failed to parse payment_date: %w", err)
	}

	if payment.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	if payment.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return payment, nil
}
