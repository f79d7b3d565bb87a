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

// BalanceModel lists active clients and shows the selected client's balance
type BalanceModel struct {
	app *app.App

	clients []*domain.Client
	cursor  int
	report  *domain.BalanceReport

	loading bool
	err     error
}

type balanceClientsMsg struct {
	clients []*domain.Client
	err     error
}

type balanceReportMsg struct {
	report *domain.BalanceReport
	err    error
}

// NewBalanceModel creates a new balance screen model
func NewBalanceModel(a *app.App) tea.Model {
	return &BalanceModel{
		app:     a,
		loading: true,
	}
}

func (m *BalanceModel) Init() tea.Cmd {
	return m.loadClients()
}

func (m *BalanceModel) loadClients() tea.Cmd {
	return func() tea.Msg {
		clients, err := m.app.ClientRepo.List(context.Background(), true)
		return balanceClientsMsg{clients: clients, err: err}
	}
}

func (m *BalanceModel) loadReport(clientID int64) tea.Cmd {
	return func() tea.Msg {
		report, err := m.app.BalanceService.Calculate(context.Background(), clientID)
		return balanceReportMsg{report: report, err: err}
	}
}

func (m *BalanceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case balanceClientsMsg:
		m.loading = false
		m.err = msg.err
		m.clients = msg.clients
		m.cursor = 0
		m.report = nil
		if len(m.clients) > 0 {
			return m, m.loadReport(m.clients[0].ID)
		}
		return m, nil

	case balanceReportMsg:
		m.err = msg.err
		m.report = msg.report
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadClients()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
				return m, m.loadReport(m.clients[m.cursor].ID)
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.clients)-1 {
				m.cursor++
				return m, m.loadReport(m.clients[m.cursor].ID)
			}
		}
	}

	return m, nil
}

func (m *BalanceModel) View() string {
	if m.loading {
		return "Loading balance..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	if len(m.clients) == 0 {
		return subtitleStyle.Render("  No active clients")
	}

	var s string
	for i, client := range m.clients {
		line := fmt.Sprintf("  %-30s %10.2f/h", truncateStr(client.Name, 30), client.HourlyRate)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		s += line + "\n"
	}

	if m.report != nil {
		s += "\n" + m.renderReport()
	}

	return s
}

func (m *BalanceModel) renderReport() string {
	r := m.report

	var s string
	s += titleStyle.Render(fmt.Sprintf("  Balance: %s", r.Client.Name)) + "\n\n"

	s += fmt.Sprintf("  Time worked:   %s (%d entries)\n",
		r.TimeWorked.FormattedTime(), r.TimeWorked.Entries)
	s += fmt.Sprintf("  Earnings:      %s\n", formatMoney(r.Earnings.TotalAmount))
	s += fmt.Sprintf("  Payments:      %s  (money %s, supplements %s)\n",
		formatMoney(r.Payments.TotalPaid),
		formatMoney(r.Payments.Money),
		formatMoney(r.Payments.Supplements),
	)
	s += fmt.Sprintf("  Unbilled:      %s, %s (%d entries)\n",
		formatMinutes(r.Unbilled.TotalMinutes),
		formatMoney(r.Unbilled.Amount),
		r.Unbilled.Entries,
	)

	balanceLine := fmt.Sprintf("  Balance:       %s", formatMoney(r.Balance.Amount))
	if r.Balance.Status == domain.BalanceClientCredit {
		s += creditStyle.Render(balanceLine+"  (client credit)") + "\n"
	} else {
		s += owesStyle.Render(balanceLine+"  (client owes)") + "\n"
	}

	return s
}
