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

// ClientRepo is a SQLite implementation of ClientRepository
type ClientRepo struct {
	db *db.DB
}

// NewClientRepo creates a new ClientRepo
func NewClientRepo(database *db.DB) *ClientRepo {
	return &ClientRepo{db: database}
}

// Create inserts a new client. The name must be unique (case-sensitive).
func (r *ClientRepo) Create(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("invalid client: %w", err)
	}

	existing, err := r.GetByName(ctx, client.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("client %q: %w", client.Name, ErrDuplicateName)
	}

	query := `
		INSERT INTO clients (
			name, hourly_rate, contact_info, activity_category, is_active, notes,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		client.Name,
		client.HourlyRate,
		client.ContactInfo,
		client.ActivityCategory,
		client.IsActive,
		client.Notes,
		client.CreatedAt.Format(timeLayout),
		client.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get client ID: %w", err)
	}

	client.ID = id
	return nil
}

// GetByID retrieves a client by ID, returning nil if it does not exist
func (r *ClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByName retrieves a client by exact name, returning nil if it does not exist
func (r *ClientRepo) GetByName(ctx context.Context, name string) (*domain.Client, error) {
	return r.getOne(ctx, "name = ?", name)
}

func (r *ClientRepo) getOne(ctx context.Context, where string, arg interface{}) (*domain.Client, error) {
	query := `
		SELECT id, name, hourly_rate, contact_info, activity_category, is_active, notes,
		       created_at, updated_at
		FROM clients
		WHERE ` + where

	client := &domain.Client{}
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&client.ID,
		&client.Name,
		&client.HourlyRate,
		&client.ContactInfo,
		&client.ActivityCategory,
		&client.IsActive,
		&client.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	if err := scanClientTimes(client, createdAt, updatedAt); err != nil {
		return nil, err
	}

	return client, nil
}

// List retrieves clients ordered by name, optionally active ones only
func (r *ClientRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Client, error) {
	query := `
		SELECT id, name, hourly_rate, contact_info, activity_category, is_active, notes,
		       created_at, updated_at
		FROM clients
	`
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		client := &domain.Client{}
		var createdAt, updatedAt string

		err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.HourlyRate,
			&client.ContactInfo,
			&client.ActivityCategory,
			&client.IsActive,
			&client.Notes,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}

		if err := scanClientTimes(client, createdAt, updatedAt); err != nil {
			return nil, err
		}

		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

// Update updates an existing client, re-checking name uniqueness
func (r *ClientRepo) Update(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("invalid client: %w", err)
	}

	existing, err := r.GetByName(ctx, client.Name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != client.ID {
		return fmt.Errorf("client %q: %w", client.Name, ErrDuplicateName)
	}

	query := `
		UPDATE clients
		SET name = ?, hourly_rate = ?, contact_info = ?, activity_category = ?,
		    is_active = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	client.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		client.Name,
		client.HourlyRate,
		client.ContactInfo,
		client.ActivityCategory,
		client.IsActive,
		client.Notes,
		client.UpdatedAt.Format(timeLayout),
		client.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client %d: %w", client.ID, ErrNotFound)
	}

	return nil
}

// Deactivate soft-deletes a client; entries, payments, and bills that
// reference it are preserved
func (r *ClientRepo) Deactivate(ctx context.Context, id int64) error {
	return r.setActive(ctx, id, false)
}

// Reactivate restores a deactivated client
func (r *ClientRepo) Reactivate(ctx context.Context, id int64) error {
	return r.setActive(ctx, id, true)
}

func (r *ClientRepo) setActive(ctx context.Context, id int64, active bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE clients SET is_active = ?, updated_at = ? WHERE id = ?",
		active, formatTime(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client %d: %w", id, ErrNotFound)
	}

	return nil
}

// scanClientTimes parses the timestamp columns
func scanClientTimes(client *domain.Client, createdAt, updatedAt string) error {
	var err error

	if client.CreatedAt, err = parseTime(createdAt); err != nil {
		return fmt.Errorf("failed to parse created_at: %w", err)
	}

	if client.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return nil
}
