package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stride-cli/stride/internal/orchestrator"
	"github.com/stride-cli/stride/pkg/models"
)

// Row statuses for the item table.
const (
	rowPending = "pending"
	rowRunning = "running"
	rowDone    = "done"
	rowFailed  = "failed"
)

// itemRow is one item's display state.
type itemRow struct {
	Identifier string
	Title      string
	Status     string
	Duration   time.Duration
	Err        string
}

// eventMsg wraps an executor event for the tea loop.
type eventMsg orchestrator.Event

// eventsClosedMsg signals the bridge was closed: the run is over.
type eventsClosedMsg struct{}

// Model is the run dashboard.
type Model struct {
	spinner spinner.Model
	events  <-chan orchestrator.Event

	// onStop, when non-nil, is invoked when the user presses s.
	onStop func() error

	planName     string
	totalPhases  int
	currentPhase int
	phasesDone   int
	phasesFailed int

	rows  []itemRow
	index map[string]int

	width    int
	stopping bool
	finished bool

	headerStyle  lipgloss.Style
	labelStyle   lipgloss.Style
	valueStyle   lipgloss.Style
	runningStyle lipgloss.Style
	doneStyle    lipgloss.Style
	failedStyle  lipgloss.Style
	pendingStyle lipgloss.Style
	footerStyle  lipgloss.Style
}

// Options configures the dashboard.
type Options struct {
	// PlanName is shown in the header.
	PlanName string
	// TotalPhases is the number of phases in the plan.
	TotalPhases int
	// Events is the bridge channel carrying executor events.
	Events <-chan orchestrator.Event
	// OnStop is called when the user requests a stop. Optional.
	OnStop func() error
}

// NewModel creates the run dashboard model.
func NewModel(opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		spinner:     sp,
		events:      opts.Events,
		onStop:      opts.OnStop,
		planName:    opts.PlanName,
		totalPhases: opts.TotalPhases,
		index:       make(map[string]int),

		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("238")),

		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true),

		runningStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")),

		doneStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		failedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		pendingStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		footerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// Init starts the spinner and the event pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// waitForEvent blocks on the bridge channel and delivers the next event.
func waitForEvent(ch <-chan orchestrator.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// Update handles input and executor events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "s":
			if m.onStop != nil && !m.stopping {
				m.stopping = true
				// Errors here only mean the signal file could not be
				// written; the run itself is unaffected.
				_ = m.onStop()
			}
			return m, nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m.apply(orchestrator.Event(msg))
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		m.finished = true
		return m, tea.Quit
	}

	return m, nil
}

// apply folds one executor event into the display state.
func (m *Model) apply(ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventPhaseStart:
		if ev.Phase == nil {
			return
		}
		m.currentPhase = ev.Phase.Order
		m.rows = m.rows[:0]
		m.index = make(map[string]int, len(ev.Phase.Items))
		for i := range ev.Phase.Items {
			item := &ev.Phase.Items[i]
			m.index[item.Identifier] = len(m.rows)
			m.rows = append(m.rows, itemRow{
				Identifier: item.Identifier,
				Title:      item.Title,
				Status:     rowPending,
			})
		}

	case orchestrator.EventItemStart:
		if row := m.row(ev.Item); row != nil {
			row.Status = rowRunning
		}

	case orchestrator.EventItemComplete:
		if row := m.row(ev.Item); row != nil {
			row.Status = rowDone
			if ev.ItemResult != nil {
				row.Duration = ev.ItemResult.Duration
			}
		}

	case orchestrator.EventItemError:
		if row := m.row(ev.Item); row != nil {
			row.Status = rowFailed
			if ev.Err != nil {
				row.Err = ev.Err.Error()
			}
		}

	case orchestrator.EventPhaseComplete:
		if ev.PhaseResult != nil && ev.PhaseResult.Success {
			m.phasesDone++
		} else {
			m.phasesFailed++
		}
	}
}

func (m *Model) row(item *models.ExecutionItem) *itemRow {
	if item == nil {
		return nil
	}
	idx, ok := m.index[item.Identifier]
	if !ok {
		return nil
	}
	return &m.rows[idx]
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	title := "Stride"
	if m.planName != "" {
		title += "  ·  " + m.planName
	}
	b.WriteString(m.headerStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.labelStyle.Render("Phase: "))
	b.WriteString(m.valueStyle.Render(fmt.Sprintf("%d/%d", m.currentPhase, m.totalPhases)))
	if m.phasesFailed > 0 {
		b.WriteString("  ")
		b.WriteString(m.failedStyle.Render(fmt.Sprintf("%d failed", m.phasesFailed)))
	}
	if m.stopping {
		b.WriteString("  ")
		b.WriteString(m.failedStyle.Render("stopping after current items"))
	}
	b.WriteString("\n\n")

	for i := range m.rows {
		row := &m.rows[i]
		b.WriteString("  ")
		switch row.Status {
		case rowRunning:
			b.WriteString(m.spinner.View())
			b.WriteString(" ")
			b.WriteString(m.runningStyle.Render(row.Identifier))
		case rowDone:
			b.WriteString(m.doneStyle.Render("✓ " + row.Identifier))
			if row.Duration > 0 {
				b.WriteString(m.pendingStyle.Render(fmt.Sprintf("  (%s)", row.Duration.Round(time.Second))))
			}
		case rowFailed:
			b.WriteString(m.failedStyle.Render("✗ " + row.Identifier))
			if row.Err != "" {
				b.WriteString(m.pendingStyle.Render("  " + truncateErr(row.Err, m.width)))
			}
		default:
			b.WriteString(m.pendingStyle.Render("· " + row.Identifier))
		}
		b.WriteString("  ")
		b.WriteString(m.labelStyle.Render(row.Title))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.finished {
		b.WriteString(m.footerStyle.Render("run finished · q to exit"))
	} else {
		b.WriteString(m.footerStyle.Render("s stop after current items · q/ctrl+c quit"))
	}
	b.WriteString("\n")

	return b.String()
}

// truncateErr keeps error text on one line within the terminal width.
func truncateErr(s string, width int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	max := 60
	if width > 40 {
		max = width - 30
	}
	if len(s) > max {
		return s[:max] + "…"
	}
	return s
}
