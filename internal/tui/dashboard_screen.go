package tui

import (
	"context"
	"fmt"

	"github.com/andy/hourtab/internal/app"
	"github.com/andy/hourtab/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DashboardModel represents the dashboard home screen
type DashboardModel struct {
	app *app.App

	// Data
	activeClients   int
	unbilledMinutes int
	unbilledAmount  float64
	unbilledEntries int
	recentEntries   []*domain.TimeEntry
	clientCache     map[int64]*domain.Client

	loading bool
	err     error
}

type dashboardDataMsg struct {
	activeClients   int
	unbilledMinutes int
	unbilledAmount  float64
	unbilledEntries int
	recentEntries   []*domain.TimeEntry
	clientCache     map[int64]*domain.Client
	err             error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(a *app.App) tea.Model {
	return &DashboardModel{
		app:         a,
		loading:     true,
		clientCache: make(map[int64]*domain.Client),
	}
}

func (m *DashboardModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *DashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		msg := dashboardDataMsg{
			clientCache: make(map[int64]*domain.Client),
		}

		clients, err := m.app.ClientRepo.List(ctx, true)
		if err != nil {
			msg.err = fmt.Errorf("clients: %w", err)
			return msg
		}
		msg.activeClients = len(clients)
		for _, client := range clients {
			msg.clientCache[client.ID] = client
		}

		// Unbilled work across all clients, valued at each client's rate
		unbilled, err := m.app.EntryRepo.ListUnbilled(ctx, nil)
		if err != nil {
			msg.err = fmt.Errorf("unbilled entries: %w", err)
			return msg
		}
		msg.unbilledEntries = len(unbilled)
		for _, entry := range unbilled {
			msg.unbilledMinutes += entry.TotalMinutes()
			if client, ok := msg.clientCache[entry.ClientID]; ok {
				msg.unbilledAmount += entry.Amount(client.HourlyRate)
			}
		}

		// Recent entries, newest first
		entries, err := m.app.EntryRepo.List(ctx, nil, nil, nil)
		if err == nil {
			msg.recentEntries = entries
			for _, entry := range entries {
				if _, ok := msg.clientCache[entry.ClientID]; !ok {
					client, err := m.app.ClientRepo.GetByID(ctx, entry.ClientID)
					if err == nil && client != nil {
						msg.clientCache[entry.ClientID] = client
					}
				}
			}
		}

		return msg
	}
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.activeClients = msg.activeClients
		m.unbilledMinutes = msg.unbilledMinutes
		m.unbilledAmount = msg.unbilledAmount
		m.unbilledEntries = msg.unbilledEntries
		m.recentEntries = msg.recentEntries
		m.clientCache = msg.clientCache
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()
	}

	return m, nil
}

func (m *DashboardModel) View() string {
	if m.loading {
		return "Loading dashboard..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	var s string

	s += fmt.Sprintf(
		"  Active Clients:  %-6d  Unbilled:  %s (%s, %d entries)\n",
		m.activeClients,
		formatMinutes(m.unbilledMinutes),
		amountStyle.Render(formatMoney(m.unbilledAmount)),
		m.unbilledEntries,
	)

	// Recent entries
	s += "\n" + m.renderRecentEntries()

	return s
}

func (m *DashboardModel) renderRecentEntries() string {
	header := "  Recent Entries\n"
	if len(m.recentEntries) == 0 {
		return header + subtitleStyle.Render("  No entries yet") + "\n"
	}

	s := header
	limit := 8
	if len(m.recentEntries) < limit {
		limit = len(m.recentEntries)
	}

	for i := 0; i < limit; i++ {
		entry := m.recentEntries[i]
		clientName := fmt.Sprintf("Client #%d", entry.ClientID)
		if c, ok := m.clientCache[entry.ClientID]; ok {
			clientName = c.Name
		}

		status := ""
		if entry.IsBilled {
			status = subtitleStyle.Render("billed")
		}

		s += fmt.Sprintf("  %-7s %-20s %7s  %-30s %s\n",
			entry.WorkDate.Format("Jan 2"),
			truncateStr(clientName, 20),
			formatMinutes(entry.TotalMinutes()),
			truncateStr(entry.Notes, 30),
			status,
		)
	}

	return s
}
