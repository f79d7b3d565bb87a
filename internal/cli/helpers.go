package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// resolveClientID accepts either a numeric ID or a client name
func resolveClientID(ctx context.Context, idOrName string) (int64, error) {
	if id, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		client, err := appInstance.ClientRepo.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		if client == nil {
			return 0, fmt.Errorf("client %d not found", id)
		}
		return id, nil
	}

	client, err := appInstance.ClientRepo.GetByName(ctx, idOrName)
	if err != nil {
		return 0, err
	}
	if client == nil {
		return 0, fmt.Errorf("client %q not found", idOrName)
	}
	return client.ID, nil
}

// parseDate parses a date string in various formats
func parseDate(s string) (time.Time, error) {
	switch s {
	case "today":
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	case "yesterday":
		y := time.Now().AddDate(0, 0, -1)
		return time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, time.UTC), nil
	default:
		// Try YYYY-MM-DD format
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("expected format: YYYY-MM-DD, 'today', or 'yesterday'")
		}
		return t, nil
	}
}

// parseWorkDuration parses a duration like "3h20m" or "45m" into whole hours
// and minutes
func parseWorkDuration(s string) (hours, minutes int, err error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, 0, fmt.Errorf("expected format like 3h20m or 45m")
	}
	if d <= 0 {
		return 0, 0, fmt.Errorf("duration must be positive")
	}

	total := int(d.Minutes())
	if time.Duration(total)*time.Minute != d {
		return 0, 0, fmt.Errorf("duration must be whole minutes")
	}

	return total / 60, total % 60, nil
}

func mustString(cmd *cobra.Command, flag string) string {
	s, _ := cmd.Flags().GetString(flag)
	return s
}
