package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/muurk/camlight/internal/status"
)

// StatusMsg delivers a status update to a running SpinnerModel
type StatusMsg status.Update

// doneMsg ends the spinner program once the operation returns
type doneMsg struct{}

// SpinnerModel shows a spinner next to the latest status label.
// It quits on doneMsg or ctrl+c.
type SpinnerModel struct {
	spinner     spinner.Model
	label       string
	level       status.Level
	history     []status.Update
	done        bool
	interrupted bool
}

// NewSpinnerModel creates a model showing label until the first update
func NewSpinnerModel(label string) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return SpinnerModel{
		spinner: s,
		label:   label,
		level:   status.Info,
	}
}

// Init implements tea.Model
func (m SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StatusMsg:
		m.label = msg.Label
		m.level = msg.Level
		m.history = append(m.history, status.Update(msg))
		return m, nil

	case doneMsg:
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.interrupted = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m SpinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("  %s %s\n", m.spinner.View(), labelStyle(m.level).Render(m.label))
}

// Label returns the latest status label
func (m SpinnerModel) Label() string {
	return m.label
}

// History returns every update received, in order
func (m SpinnerModel) History() []status.Update {
	return m.history
}

// Interrupted reports whether the user pressed ctrl+c
func (m SpinnerModel) Interrupted() bool {
	return m.interrupted
}

func labelStyle(level status.Level) lipgloss.Style {
	switch level {
	case status.Error:
		return StatusErrorStyle
	case status.Warn:
		return StatusWarnStyle
	default:
		return StatusInfoStyle
	}
}

// Operation is work run under a spinner. It reports progress through reporter.
type Operation func(ctx context.Context, reporter status.Reporter) error

// RunWithSpinner runs op while a spinner shows its latest status label on out.
// When out is not a terminal, op runs with a reporter that prints nothing.
// ctrl+c cancels the context passed to op.
func RunWithSpinner(ctx context.Context, out io.Writer, label string, op Operation) error {
	if !IsTerminal(out) {
		return op(ctx, status.Nop)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewSpinnerModel(label), tea.WithOutput(out), tea.WithoutSignalHandler())

	result := make(chan error, 1)
	go func() {
		err := op(ctx, status.ReporterFunc(func(u status.Update) {
			p.Send(StatusMsg(u))
		}))
		result <- err
		p.Send(doneMsg{})
	}()

	final, runErr := p.Run()
	if m, ok := final.(SpinnerModel); ok && m.Interrupted() {
		cancel()
	}

	err := <-result
	if err == nil && runErr != nil {
		return fmt.Errorf("spinner: %w", runErr)
	}
	return err
}

// IsTerminal reports whether w is a terminal file
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
