package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andy/hourtab/internal/db"
	"github.com/andy/hourtab/internal/domain"
)

// BillRepo is a SQLite implementation of BillRepository
type BillRepo struct {
	db *db.DB
}

// NewBillRepo creates a new BillRepo
func NewBillRepo(database *db.DB) *BillRepo {
	return &BillRepo{db: database}
}

const billColumns = `id, client_id, bill_number, bill_type, issue_date,
	       period_from, period_to, total_hours, total_minutes, total_amount,
	       status, notes, created_at, updated_at`

// CreateForEntries inserts the bill and flips every selected entry to billed
// in one transaction. Each entry flip is a guarded update that re-checks the
// unbilled state inside the transaction; any entry that was billed, deleted,
// or reassigned since the caller read it aborts the whole operation with no
// partial writes.
func (r *BillRepo) CreateForEntries(ctx context.Context, bill *domain.Bill, entryIDs []int64) error {
	if err := bill.Validate(); err != nil {
		return fmt.Errorf("invalid bill: %w", err)
	}
	if len(entryIDs) == 0 {
		return errors.New("no entries to bill")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO bills (
			client_id, bill_number, bill_type, issue_date, period_from, period_to,
			total_hours, total_minutes, total_amount, status, notes, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, insert,
		bill.ClientID,
		bill.BillNumber,
		string(bill.Type),
		bill.IssueDate.Format(dateLayout),
		bill.PeriodFrom.Format(dateLayout),
		bill.PeriodTo.Format(dateLayout),
		bill.TotalHours,
		bill.TotalMinutes,
		bill.TotalAmount,
		string(bill.Status),
		bill.Notes,
		bill.CreatedAt.Format(timeLayout),
		bill.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: bills.bill_number") {
			return fmt.Errorf("bill number %s: %w", bill.BillNumber, ErrDuplicateBillNumber)
		}
		return fmt.Errorf("failed to create bill: %w", err)
	}

	billID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get bill ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE time_entries
		SET is_billed = 1, bill_id = ?, updated_at = ?
		WHERE id = ? AND client_id = ? AND is_billed = 0
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare entry update: %w", err)
	}
	defer stmt.Close()

	updateTime := formatTime()
	for _, entryID := range entryIDs {
		result, err := stmt.ExecContext(ctx, billID, updateTime, entryID, bill.ClientID)
		if err != nil {
			return fmt.Errorf("failed to mark entry %d billed: %w", entryID, err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected for entry %d: %w", entryID, err)
		}
		if rows == 0 {
			return fmt.Errorf("entry %d: %w", entryID, ErrEntryUnavailable)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bill creation: %w", err)
	}

	bill.ID = billID
	return nil
}

// GetByID retrieves a bill by ID, returning nil if it does not exist
func (r *BillRepo) GetByID(ctx context.Context, id int64) (*domain.Bill, error) {
	query := "SELECT " + billColumns + " FROM bills WHERE id = ?"

	bill, err := scanBillRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	return bill, nil
}

// GetByNumber retrieves a bill by its unique number, returning nil if it does
// not exist
func (r *BillRepo) GetByNumber(ctx context.Context, number string) (*domain.Bill, error) {
	query := "SELECT " + billColumns + " FROM bills WHERE bill_number = ?"

	bill, err := scanBillRow(r.db.QueryRowContext(ctx, query, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	return bill, nil
}

// List retrieves bills with optional filters, newest issue date first
func (r *BillRepo) List(ctx context.Context, clientID *int64, status *domain.BillStatus, billType *domain.BillType) ([]*domain.Bill, error) {
	query := "SELECT " + billColumns + " FROM bills WHERE 1=1"
	args := make([]interface{}, 0)

	if clientID != nil {
		query += " AND client_id = ?"
		args = append(args, *clientID)
	}

	if status != nil {
		query += " AND status = ?"
		args = append(args, string(*status))
	}

	if billType != nil {
		query += " AND bill_type = ?"
		args = append(args, string(*billType))
	}

	query += " ORDER BY issue_date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := make([]*domain.Bill, 0)
	for rows.Next() {
		bill, err := scanBillRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bills: %w", err)
	}

	return bills, nil
}

// Update rewrites an existing bill row
func (r *BillRepo) Update(ctx context.Context, bill *domain.Bill) error {
	if err := bill.Validate(); err != nil {
		return fmt.Errorf("invalid bill: %w", err)
	}

	query := `
		UPDATE bills
		SET client_id = ?, bill_number = ?, bill_type = ?, issue_date = ?,
		    period_from = ?, period_to = ?, total_hours = ?, total_minutes = ?,
		    total_amount = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	bill.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		bill.ClientID,
		bill.BillNumber,
		string(bill.Type),
		bill.IssueDate.Format(dateLayout),
		bill.PeriodFrom.Format(dateLayout),
		bill.PeriodTo.Format(dateLayout),
		bill.TotalHours,
		bill.TotalMinutes,
		bill.TotalAmount,
		string(bill.Status),
		bill.Notes,
		bill.UpdatedAt.Format(timeLayout),
		bill.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: bills.bill_number") {
			return fmt.Errorf("bill number %s: %w", bill.BillNumber, ErrDuplicateBillNumber)
		}
		return fmt.Errorf("failed to update bill: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("bill %d: %w", bill.ID, ErrNotFound)
	}

	return nil
}

// Delete releases every entry linked to the bill and removes the bill row in
// one transaction. The unlink runs first so no entry can be left pointing at
// a bill that no longer exists.
func (r *BillRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE time_entries
		SET is_billed = 0, bill_id = NULL, updated_at = ?
		WHERE bill_id = ?
	`, formatTime(), id)
	if err != nil {
		return fmt.Errorf("failed to release bill entries: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("bill %d: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bill deletion: %w", err)
	}

	return nil
}

// NextBillNumber allocates the next number for the prefix and year by
// counting existing bills of the same kind issued that year.
func (r *BillRepo) NextBillNumber(ctx context.Context, prefix string, year int) (string, error) {
	query := `
		SELECT COUNT(*)
		FROM bills
		WHERE bill_number LIKE ?
		  AND strftime('%Y', issue_date) = ?
	`

	var count int
	pattern := fmt.Sprintf("%s-%d-%%", prefix, year)
	err := r.db.QueryRowContext(ctx, query, pattern, fmt.Sprintf("%d", year)).Scan(&count)
	if err != nil {
		return "", fmt.Errorf("failed to count bills for numbering: %w", err)
	}

	return fmt.Sprintf("%s-%d-%03d", prefix, year, count+1), nil
}

// scanBillRow scans one bill row
func scanBillRow(row rowScanner) (*domain.Bill, error) {
	bill := &domain.Bill{}
	var billType, issueDate, periodFrom, periodTo, status, createdAt, updatedAt string

	err := row.Scan(
		&bill.ID,
		&bill.ClientID,
		&bill.BillNumber,
		&billType,
		&issueDate,
		&periodFrom,
		&periodTo,
		&bill.TotalHours,
		&bill.TotalMinutes,
		&bill.TotalAmount,
		&status,
		&bill.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	bill.Type = domain.BillType(billType)
	bill.Status = domain.BillStatus(status)

	if bill.IssueDate, err = parseDate(issueDate); err != nil {
		return nil, fmt.Errorf("failed to parse issue_date: %w", err)
	}

	if bill.PeriodFrom, err = parseDate(periodFrom); err != nil {
		return nil, fmt.Errorf("failed to parse period_from: %w", err)
	}

	if bill.PeriodTo, err = parseDate(periodTo); err != nil {
		return nil, fmt.Errorf("failed to parse period_to: %w", err)
	}

	if bill.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	if bill.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return bill, nil
}
