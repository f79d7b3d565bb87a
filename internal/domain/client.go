package domain

import (
	"errors"
	"strings"
	"time"
)

type Client struct {
	ID               int64
	Name             string
	HourlyRate       float64
	ContactInfo      string
	ActivityCategory string // category key for externally tracked durations
	IsActive         bool
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewClient creates a new active client with required fields
func NewClient(name string, hourlyRate float64) *Client {
	now := time.Now()
	return &Client{
		Name:       strings.TrimSpace(name),
		HourlyRate: hourlyRate,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate returns an error if the client is invalid
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("client name is required")
	}
	if c.HourlyRate < 0 {
		return errors.New("hourly rate cannot be negative")
	}
	return nil
}

// ClientPatch carries optional field updates; only non-nil fields are applied.
type ClientPatch struct {
	Name             *string
	HourlyRate       *float64
	ContactInfo      *string
	ActivityCategory *string
	IsActive         *bool
	Notes            *string
}

// Apply copies the present patch fields onto the client
func (p ClientPatch) Apply(c *Client) {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.HourlyRate != nil {
		c.HourlyRate = *p.HourlyRate
	}
	if p.ContactInfo != nil {
		c.ContactInfo = *p.ContactInfo
	}
	if p.ActivityCategory != nil {
		c.ActivityCategory = *p.ActivityCategory
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	c.UpdatedAt = time.Now()
}
