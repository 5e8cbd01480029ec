// Package tui provides the interactive preview shown while an image is
// being processed.
//
// The model draws the latest preview frame and a progress bar, and sets the
// run's cancellation token when the user presses q, esc or ctrl+c.
//
// # Thread Safety
//
// The model is only touched by the bubbletea event loop. Workers talk to it
// through non-blocking mailboxes (see Session).
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wbrown/tilize"
)

// =============================================================================
// Messages
// =============================================================================

// FrameMsg carries a rendered preview frame.
type FrameMsg struct {
	View string
}

// ProgressMsg reports the number of tiles finished.
type ProgressMsg struct {
	Done, Total int
}

// DoneMsg signals that the run has finished.
type DoneMsg struct {
	Result *tilize.Result
	Err    error
}

// =============================================================================
// Model
// =============================================================================

// Model is the preview model.
type Model struct {
	title string
	token *tilize.CancellationToken

	frame    string
	done     int
	total    int
	progress progress.Model
	started  time.Time

	result    *tilize.Result
	err       error
	finished  bool
	cancelled bool
}

// NewModel creates a model for a run over total tiles. token is cancelled
// when the user quits.
func NewModel(title string, total int, token *tilize.CancellationToken) Model {
	return Model{
		title:    title,
		token:    token,
		total:    total,
		progress: progress.New(progress.WithDefaultGradient()),
		started:  time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = max(msg.Width-4, 10)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.token.Cancel()
			m.cancelled = true
			return m, tea.Quit
		}

	case FrameMsg:
		m.frame = msg.View

	case ProgressMsg:
		m.done, m.total = max(m.done, msg.Done), msg.Total

	case DoneMsg:
		m.result, m.err = msg.Result, msg.Err
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.frame)

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}
	b.WriteString(m.progress.ViewAs(pct))
	b.WriteString("\n")
	b.WriteString(statsStyle.Render(fmt.Sprintf("%d/%d tiles  %s",
		m.done, m.total, time.Since(m.started).Truncate(time.Millisecond))))
	b.WriteString("\n")

	switch {
	case m.cancelled:
		b.WriteString(cancelStyle.Render("cancelling..."))
	case m.finished && m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case m.finished && m.result != nil:
		b.WriteString(statsStyle.Render(m.result.Status.String()))
	default:
		b.WriteString(helpKeyStyle.Render("q") + helpDescStyle.Render(" cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

// Cancelled reports whether the user asked to quit.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Finished reports whether a DoneMsg was received.
func (m Model) Finished() bool {
	return m.finished
}

// =============================================================================
// Styles
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cancelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))
)
