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

// EntryRepo is a SQLite implementation of TimeEntryRepository
type EntryRepo struct {
	db *db.DB
}

// NewEntryRepo creates a new EntryRepo
func NewEntryRepo(database *db.DB) *EntryRepo {
	return &EntryRepo{db: database}
}

const entryColumns = `id, client_id, work_date, hours, minutes, total_minutes,
	       source, exclude_afk, is_billed, bill_id, notes, created_at, updated_at`

// Create inserts a new time entry. The referenced client must exist.
func (r *EntryRepo) Create(ctx context.Context, entry *domain.TimeEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid time entry: %w", err)
	}

	if err := r.checkClient(ctx, entry.ClientID); err != nil {
		return err
	}

	query := `
		INSERT INTO time_entries (
			client_id, work_date, hours, minutes, total_minutes,
			source, exclude_afk, is_billed, bill_id, notes, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var billID interface{}
	if entry.BillID != nil {
		billID = *entry.BillID
	}

	result, err := r.db.ExecContext(ctx, query,
		entry.ClientID,
		entry.WorkDate.Format(dateLayout),
		entry.Hours,
		entry.Minutes,
		entry.TotalMinutes(),
		string(entry.Source),
		entry.ExcludeAFK,
		entry.IsBilled,
		billID,
		entry.Notes,
		entry.CreatedAt.Format(timeLayout),
		entry.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create time entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get time entry ID: %w", err)
	}

	entry.ID = id
	return nil
}

// GetByID retrieves a time entry by ID, returning nil if it does not exist
func (r *EntryRepo) GetByID(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	query := "SELECT " + entryColumns + " FROM time_entries WHERE id = ?"

	entry, err := scanEntryRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}

	return entry, nil
}

// Update rewrites an unbilled entry. Entries locked to a bill are rejected
// so a bill's frozen totals cannot drift through edits.
func (r *EntryRepo) Update(ctx context.Context, entry *domain.TimeEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid time entry: %w", err)
	}

	if err := r.checkClient(ctx, entry.ClientID); err != nil {
		return err
	}

	current, err := r.GetByID(ctx, entry.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("time entry %d: %w", entry.ID, ErrNotFound)
	}
	if current.IsBilled {
		return fmt.Errorf("time entry %d: %w", entry.ID, ErrEntryBilled)
	}

	query := `
		UPDATE time_entries
		SET client_id = ?, work_date = ?, hours = ?, minutes = ?, total_minutes = ?,
		    source = ?, exclude_afk = ?, notes = ?, updated_at = ?
		WHERE id = ? AND is_billed = 0
	`

	entry.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		entry.ClientID,
		entry.WorkDate.Format(dateLayout),
		entry.Hours,
		entry.Minutes,
		entry.TotalMinutes(),
		string(entry.Source),
		entry.ExcludeAFK,
		entry.Notes,
		entry.UpdatedAt.Format(timeLayout),
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update time entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("time entry %d: %w", entry.ID, ErrNotFound)
	}

	return nil
}

// Delete removes a time entry. Billed entries may be deleted too; the owning
// bill's stored totals are never adjusted (they are a historical snapshot).
func (r *EntryRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM time_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("time entry %d: %w", id, ErrNotFound)
	}

	return nil
}

// List retrieves time entries with optional filters, newest first
func (r *EntryRepo) List(ctx context.Context, clientID *int64, workDate *time.Time, isBilled *bool) ([]*domain.TimeEntry, error) {
	query := "SELECT " + entryColumns + " FROM time_entries WHERE 1=1"
	args := make([]interface{}, 0)

	if clientID != nil {
		query += " AND client_id = ?"
		args = append(args, *clientID)
	}

	if workDate != nil {
		query += " AND work_date = ?"
		args = append(args, workDate.Format(dateLayout))
	}

	if isBilled != nil {
		query += " AND is_billed = ?"
		args = append(args, *isBilled)
	}

	query += " ORDER BY work_date DESC, id DESC"

	return r.queryEntries(ctx, query, args...)
}

// ListUnbilled retrieves unbilled entries, optionally for one client
func (r *EntryRepo) ListUnbilled(ctx context.Context, clientID *int64) ([]*domain.TimeEntry, error) {
	query := "SELECT " + entryColumns + " FROM time_entries WHERE is_billed = 0"
	args := make([]interface{}, 0)

	if clientID != nil {
		query += " AND client_id = ?"
		args = append(args, *clientID)
	}

	query += " ORDER BY work_date DESC, id DESC"

	return r.queryEntries(ctx, query, args...)
}

// UnbilledInRange retrieves a client's unbilled entries with work dates in
// [from, to] inclusive, oldest first
func (r *EntryRepo) UnbilledInRange(ctx context.Context, clientID int64, from, to time.Time) ([]*domain.TimeEntry, error) {
	query := "SELECT " + entryColumns + ` FROM time_entries
		WHERE client_id = ?
		  AND work_date >= ?
		  AND work_date <= ?
		  AND is_billed = 0
		ORDER BY work_date ASC, id ASC`

	return r.queryEntries(ctx, query, clientID, from.Format(dateLayout), to.Format(dateLayout))
}

// ListByBill retrieves the entries linked to a bill, oldest first
func (r *EntryRepo) ListByBill(ctx context.Context, billID int64) ([]*domain.TimeEntry, error) {
	query := "SELECT " + entryColumns + " FROM time_entries WHERE bill_id = ? ORDER BY work_date ASC, id ASC"
	return r.queryEntries(ctx, query, billID)
}

// TotalsByClient sums worked minutes over all of a client's entries.
// Durations are stored as integer minutes, so the sum is exact.
func (r *EntryRepo) TotalsByClient(ctx context.Context, clientID int64) (*domain.EntryTotals, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total_minutes), 0)
		FROM time_entries
		WHERE client_id = ?
	`

	totals := &domain.EntryTotals{ClientID: clientID}
	err := r.db.QueryRowContext(ctx, query, clientID).Scan(&totals.Entries, &totals.TotalMinutes)
	if err != nil {
		return nil, fmt.Errorf("failed to total time entries: %w", err)
	}

	totals.Hours = totals.TotalMinutes / 60
	totals.Minutes = totals.TotalMinutes % 60

	return totals, nil
}

// checkClient verifies the referenced client exists
func (r *EntryRepo) checkClient(ctx context.Context, clientID int64) error {
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

func (r *EntryRepo) queryEntries(ctx context.Context, query string, args ...interface{}) ([]*domain.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.TimeEntry, 0)
	for rows.Next() {
		entry, err := scanEntryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entries: %w", err)
	}

	return entries, nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanEntryRow scans one time entry row
func scanEntryRow(row rowScanner) (*domain.TimeEntry, error) {
	entry := &domain.TimeEntry{}
	var workDate, source, createdAt, updatedAt string
	var totalMinutes int
	var billID sql.NullInt64

	err := row.Scan(
		&entry.ID,
		&entry.ClientID,
		&workDate,
		&entry.Hours,
		&entry.Minutes,
		&totalMinutes,
		&source,
		&entry.ExcludeAFK,
		&entry.IsBilled,
		&billID,
		&entry.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Source = domain.EntrySource(source)

	if billID.Valid {
		entry.BillID = &billID.Int64
	}

	if entry.WorkDate, err = parseDate(workDate); err != nil {
		return nil, fmt.Errorf("failed to parse work_date: %w", err)
	}

	if entry.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	if entry.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return entry, nil
}
