package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"callview/presenter"
)

type (
	statusMsg presenter.CallStatus
	clearMsg  struct{}
	panelMsg  bool
	appendMsg presenter.TranscriptEntry
	scrollMsg struct{}
)

// View forwards presenter updates to a bubbletea program. Updates are
// queued so the presenter never waits on the terminal.
type View struct {
	updates chan tea.Msg
	logger  *log.Logger
}

func NewView(buffer int, logger *log.Logger) *View {
	return &View{updates: make(chan tea.Msg, buffer), logger: logger}
}

func (v *View) SetStatus(status presenter.CallStatus) { v.send(statusMsg(status)) }
func (v *View) ClearEntries()                         { v.send(clearMsg{}) }
func (v *View) SetPanelVisible(visible bool)          { v.send(panelMsg(visible)) }
func (v *View) ScrollToBottom()                       { v.send(scrollMsg{}) }

func (v *View) AppendEntry(entry presenter.TranscriptEntry) {
	v.send(appendMsg(entry))
}

func (v *View) send(msg tea.Msg) {
	select {
	case v.updates <- msg:
	default:
		v.logger.Warn("terminal view behind, update dropped", "msg", fmt.Sprintf("%T", msg))
	}
}

func (v *View) Model() Model {
	return NewModel(v.updates)
}

type Model struct {
	viewport     viewport.Model
	updates      <-chan tea.Msg
	status       presenter.CallStatus
	entries      []presenter.TranscriptEntry
	panelVisible bool
	ready        bool
}

func NewModel(updates <-chan tea.Msg) Model {
	return Model{updates: updates, status: presenter.Idle}
}

func (m Model) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func waitForUpdate(updates <-chan tea.Msg) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		return <-updates
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		verticalMarginHeight := headerHeight + footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-verticalMarginHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMarginHeight
		}
		m.viewport.SetContent(m.contentView())

	case statusMsg:
		m.status = presenter.CallStatus(msg)
		cmds = append(cmds, waitForUpdate(m.updates))

	case clearMsg:
		m.entries = nil
		m.viewport.SetContent(m.contentView())
		cmds = append(cmds, waitForUpdate(m.updates))

	case panelMsg:
		m.panelVisible = bool(msg)
		m.viewport.SetContent(m.contentView())
		cmds = append(cmds, waitForUpdate(m.updates))

	case appendMsg:
		m.entries = append(m.entries, presenter.TranscriptEntry(msg))
		m.viewport.SetContent(m.contentView())
		cmds = append(cmds, waitForUpdate(m.updates))

	case scrollMsg:
		m.viewport.GotoBottom()
		cmds = append(cmds, waitForUpdate(m.updates))
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	return fmt.Sprintf(
		"%s\n%s\n%s",
		m.headerView(),
		m.viewport.View(),
		m.footerView(),
	)
}

var (
	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1)
	statusStyles = map[presenter.CallStatus]lipgloss.Style{
		presenter.Idle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		presenter.Live:  lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")).Bold(true),
		presenter.Ended: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		presenter.Error: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),
	}
	roleStyles = map[presenter.Role]lipgloss.Style{
		presenter.Assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")),
		presenter.User:      lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
	}
)

func (m Model) headerView() string {
	title := barStyle.Render("Call Transcript")
	status := " " + statusStyles[m.status].Render(m.status.Label()) + " "
	line := strings.Repeat(
		"─",
		max(0, m.viewport.Width-lipgloss.Width(title)-lipgloss.Width(status)),
	)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, status, line)
}

func (m Model) footerView() string {
	info := barStyle.Render("Press q to quit")
	line := strings.Repeat("─", max(0, m.viewport.Width-lipgloss.Width(info)))
	return lipgloss.JoinHorizontal(lipgloss.Center, line, info)
}

func (m Model) contentView() string {
	if !m.panelVisible {
		return ""
	}
	var content strings.Builder
	for _, entry := range m.entries {
		content.WriteString(entry.Role.Icon())
		content.WriteString(" ")
		content.WriteString(roleStyles[entry.Role].Render(entry.Text))
		content.WriteString("\n")
	}
	return content.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
