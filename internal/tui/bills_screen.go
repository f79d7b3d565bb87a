package tui

import (
	"context"
	"fmt"

	"github.com/andy/hourtab/internal/app"
	"github.com/andy/hourtab/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BillsModel lists bills with a cursor and shows the selected bill's entries
type BillsModel struct {
	app *app.App

	bills       []*domain.Bill
	clientCache map[int64]*domain.Client
	cursor      int
	selected    *domain.Bill // with entries attached

	loading bool
	err     error
}

type billsDataMsg struct {
	bills       []*domain.Bill
	clientCache map[int64]*domain.Client
	err         error
}

type billDetailMsg struct {
	bill *domain.Bill
	err  error
}

// NewBillsModel creates a new bills screen model
func NewBillsModel(a *app.App) tea.Model {
	return &BillsModel{
		app:         a,
		loading:     true,
		clientCache: make(map[int64]*domain.Client),
	}
}

func (m *BillsModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *BillsModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		msg := billsDataMsg{
			clientCache: make(map[int64]*domain.Client),
		}

		bills, err := m.app.BillingService.ListBills(ctx, nil, nil, nil)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.bills = bills

		for _, bill := range bills {
			if _, ok := msg.clientCache[bill.ClientID]; !ok {
				client, err := m.app.ClientRepo.GetByID(ctx, bill.ClientID)
				if err == nil && client != nil {
					msg.clientCache[bill.ClientID] = client
				}
			}
		}

		return msg
	}
}

func (m *BillsModel) loadDetail(id int64) tea.Cmd {
	return func() tea.Msg {
		bill, err := m.app.BillingService.GetBill(context.Background(), id)
		return billDetailMsg{bill: bill, err: err}
	}
}

func (m *BillsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case billsDataMsg:
		m.loading = false
		m.err = msg.err
		m.bills = msg.bills
		m.clientCache = msg.clientCache
		m.cursor = 0
		m.selected = nil
		if len(m.bills) > 0 {
			return m, m.loadDetail(m.bills[0].ID)
		}
		return m, nil

	case billDetailMsg:
		if msg.err == nil {
			m.selected = msg.bill
		}
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
				return m, m.loadDetail(m.bills[m.cursor].ID)
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.bills)-1 {
				m.cursor++
				return m, m.loadDetail(m.bills[m.cursor].ID)
			}
		}
	}

	return m, nil
}

func (m *BillsModel) View() string {
	if m.loading {
		return "Loading bills..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	if len(m.bills) == 0 {
		return subtitleStyle.Render("  No bills yet")
	}

	var s string
	s += fmt.Sprintf("  %-15s %-20s %-23s %-9s %-12s %s\n",
		"Number", "Client", "Period", "Time", "Amount", "Status")

	for i, bill := range m.bills {
		clientName := fmt.Sprintf("Client #%d", bill.ClientID)
		if c, ok := m.clientCache[bill.ClientID]; ok {
			clientName = c.Name
		}

		period := fmt.Sprintf("%s - %s",
			bill.PeriodFrom.Format("2006-01-02"),
			bill.PeriodTo.Format("2006-01-02"),
		)

		line := fmt.Sprintf("  %-15s %-20s %-23s %-9s %-12s %s",
			bill.BillNumber,
			truncateStr(clientName, 20),
			period,
			formatMinutes(bill.TotalHours*60+bill.TotalMinutes),
			formatMoney(bill.TotalAmount),
			bill.Status,
		)

		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		s += line + "\n"
	}

	// Entries of the selected bill
	if m.selected != nil && len(m.selected.Entries) > 0 {
		s += "\n" + titleStyle.Render(fmt.Sprintf("  Entries on %s", m.selected.BillNumber)) + "\n"
		rate := 0.0
		if m.selected.Client != nil {
			rate = m.selected.Client.HourlyRate
		}
		for _, entry := range m.selected.Entries {
			s += fmt.Sprintf("  %-12s %7s %10s  %s\n",
				entry.WorkDate.Format("2006-01-02"),
				formatMinutes(entry.TotalMinutes()),
				formatMoney(entry.Amount(rate)),
				truncateStr(entry.Notes, 40),
			)
		}
	}

	return s
}
