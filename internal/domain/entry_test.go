package domain

import (
	"testing"
	"time"
)

func TestTimeEntryValidate(t *testing.T) {
	workDate := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	entry := NewTimeEntry(1, workDate, 2, 30)
	if err := entry.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Minutes must stay below an hour
	entry = NewTimeEntry(1, workDate, 2, 60)
	if err := entry.Validate(); err == nil {
		t.Errorf("expected error for 60 minutes")
	}

	entry = NewTimeEntry(1, workDate, -1, 0)
	if err := entry.Validate(); err == nil {
		t.Errorf("expected error for negative hours")
	}

	entry = NewTimeEntry(0, workDate, 1, 0)
	if err := entry.Validate(); err == nil {
		t.Errorf("expected error for missing client")
	}

	entry = NewTimeEntry(1, workDate, 1, 0)
	entry.Source = "timer"
	if err := entry.Validate(); err == nil {
		t.Errorf("expected error for unknown source")
	}
}

func TestTimeEntryBilledStateSync(t *testing.T) {
	workDate := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	// Billed without a bill reference
	entry := NewTimeEntry(1, workDate, 1, 0)
	entry.IsBilled = true
	if err := entry.Validate(); err == nil {
		t.Errorf("expected error for billed entry without bill reference")
	}

	// Bill reference without billed flag
	entry = NewTimeEntry(1, workDate, 1, 0)
	billID := int64(7)
	entry.BillID = &billID
	if err := entry.Validate(); err == nil {
		t.Errorf("expected error for bill reference on unbilled entry")
	}

	// Both set is consistent
	entry.IsBilled = true
	if err := entry.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTimeEntryTotals(t *testing.T) {
	entry := NewTimeEntry(1, time.Now(), 3, 20)

	if got := entry.TotalMinutes(); got != 200 {
		t.Errorf("expected 200 total minutes, got %d", got)
	}
	// 200 minutes at 60/h
	if got := entry.Amount(60); got != 200.0 {
		t.Errorf("expected amount 200.0, got %v", got)
	}
}

func TestEntryTotalsFormattedTime(t *testing.T) {
	totals := EntryTotals{Hours: 3, Minutes: 20}
	if got := totals.FormattedTime(); got != "3h 20m" {
		t.Errorf("expected 3h 20m, got %s", got)
	}
}

func TestTimeEntryPatchApply(t *testing.T) {
	workDate := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	entry := NewTimeEntry(1, workDate, 2, 0)
	entry.Notes = "initial"

	hours := 4
	notes := "revised"
	patch := TimeEntryPatch{Hours: &hours, Notes: &notes}
	patch.Apply(entry)

	if entry.Hours != 4 || entry.Minutes != 0 {
		t.Errorf("expected 4h 0m, got %dh %dm", entry.Hours, entry.Minutes)
	}
	if entry.Notes != "revised" {
		t.Errorf("expected revised notes, got %q", entry.Notes)
	}
	// Untouched fields stay put
	if !entry.WorkDate.Equal(workDate) {
		t.Errorf("work date changed unexpectedly")
	}
}
