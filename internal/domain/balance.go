package domain

import "time"

// BalanceStatus is the client's net position from the client's perspective
type BalanceStatus string

const (
	// BalanceClientCredit means payments cover the worked time (prepaid)
	BalanceClientCredit BalanceStatus = "client_credit"
	// BalanceClientOwes means worked time exceeds payments received
	BalanceClientOwes BalanceStatus = "client_owes"
)

// ClientSummary is the client slice of a balance report
type ClientSummary struct {
	ID         int64
	Name       string
	HourlyRate float64
}

// Earnings is the value of all worked time at the client's rate
type Earnings struct {
	TotalAmount float64
	HourlyRate  float64
}

// SupplementItem is one itemized supplements payment
type SupplementItem struct {
	ID          int64
	PaymentDate time.Time
	Amount      *float64
	Description string
	Notes       string
}

// PaymentBreakdown splits received payments into money and supplements.
// Other payment types count toward overall totals but get no named bucket.
type PaymentBreakdown struct {
	Money           float64
	Supplements     float64
	TotalPaid       float64
	SupplementsList []SupplementItem
}

// UnbilledSummary aggregates the unbilled subset of a client's entries
type UnbilledSummary struct {
	Hours        int
	Minutes      int
	TotalMinutes int
	Amount       float64
	Entries      int
}

// BalanceLine is the netted position: payments received minus earnings
type BalanceLine struct {
	Amount float64
	Status BalanceStatus
}

// BalanceReport is a point-in-time financial summary for one client,
// recomputed from entry and payment state on every call.
type BalanceReport struct {
	Client     ClientSummary
	TimeWorked EntryTotals
	Earnings   Earnings
	Payments   PaymentBreakdown
	Unbilled   UnbilledSummary
	Balance    BalanceLine
}
