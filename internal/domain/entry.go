package domain

import (
	"errors"
	"fmt"
	"time"
)

// EntrySource identifies how a time entry was recorded
type EntrySource string

const (
	SourceManual         EntrySource = "manual"
	SourceActivityImport EntrySource = "activity-import"
	SourceCSVImport      EntrySource = "csv-import"
)

func (s EntrySource) Valid() bool {
	switch s {
	case SourceManual, SourceActivityImport, SourceCSVImport:
		return true
	}
	return false
}

// TimeEntry is a dated record of worked duration for a client.
// Duration is whole hours plus whole minutes (minutes < 60); the
// total_minutes column is always derived from the pair on write.
type TimeEntry struct {
	ID         int64
	ClientID   int64
	WorkDate   time.Time // calendar date, no time of day
	Hours      int
	Minutes    int
	Source     EntrySource
	ExcludeAFK bool   // only meaningful for activity-import entries
	IsBilled   bool
	BillID     *int64 // nil = unbilled, set iff IsBilled
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewTimeEntry creates a manual time entry
func NewTimeEntry(clientID int64, workDate time.Time, hours, minutes int) *TimeEntry {
	now := time.Now()
	return &TimeEntry{
		ClientID:  clientID,
		WorkDate:  workDate,
		Hours:     hours,
		Minutes:   minutes,
		Source:    SourceManual,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TotalMinutes returns the entry duration in minutes
func (e *TimeEntry) TotalMinutes() int {
	return e.Hours*60 + e.Minutes
}

// Amount returns the entry value at the given hourly rate
func (e *TimeEntry) Amount(hourlyRate float64) float64 {
	return float64(e.TotalMinutes()) / 60 * hourlyRate
}

// Validate returns an error if the entry is invalid
func (e *TimeEntry) Validate() error {
	if e.ClientID <= 0 {
		return errors.New("client ID is required")
	}
	if e.WorkDate.IsZero() {
		return errors.New("work date is required")
	}
	if e.Hours < 0 {
		return errors.New("hours cannot be negative")
	}
	if e.Minutes < 0 || e.Minutes >= 60 {
		return errors.New("minutes must be between 0 and 59")
	}
	if !e.Source.Valid() {
		return fmt.Errorf("invalid entry source %q", e.Source)
	}
	if e.IsBilled != (e.BillID != nil) {
		return errors.New("billed state and bill reference are out of sync")
	}
	return nil
}

// EntryTotals aggregates worked time for a client.
// Hours/Minutes are TotalMinutes normalized so Minutes < 60.
type EntryTotals struct {
	ClientID     int64
	Entries      int
	TotalMinutes int
	Hours        int
	Minutes      int
}

// FormattedTime renders the totals as "3h 20m"
func (t EntryTotals) FormattedTime() string {
	return fmt.Sprintf("%dh %dm", t.Hours, t.Minutes)
}

// TimeEntryPatch carries optional field updates; only non-nil fields are applied.
type TimeEntryPatch struct {
	ClientID   *int64
	WorkDate   *time.Time
	Hours      *int
	Minutes    *int
	Source     *EntrySource
	ExcludeAFK *bool
	Notes      *string
}

// Apply copies the present patch fields onto the entry
func (p TimeEntryPatch) Apply(e *TimeEntry) {
	if p.ClientID != nil {
		e.ClientID = *p.ClientID
	}
	if p.WorkDate != nil {
		e.WorkDate = *p.WorkDate
	}
	if p.Hours != nil {
		e.Hours = *p.Hours
	}
	if p.Minutes != nil {
		e.Minutes = *p.Minutes
	}
	if p.Source != nil {
		e.Source = *p.Source
	}
	if p.ExcludeAFK != nil {
		e.ExcludeAFK = *p.ExcludeAFK
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	e.UpdatedAt = time.Now()
}
