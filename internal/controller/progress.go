package controller

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var scanTitleStyle = lipgloss.NewStyle().Bold(true)

// TTYUI decorates the console UI with a live progress bar for the
// fingerprinting pass when stdout is an interactive terminal.
type TTYUI struct {
	*ConsoleUI

	out     io.Writer
	program *tea.Program
	done    chan struct{}
}

// NewTTYUI wraps console with an interactive progress display writing
// to out.
func NewTTYUI(console *ConsoleUI, out io.Writer) *TTYUI {
	return &TTYUI{ConsoleUI: console, out: out}
}

// ScanStarted launches the progress program.
func (t *TTYUI) ScanStarted(total int) {
	if total == 0 {
		t.ConsoleUI.ScanStarted(total)
		return
	}

	t.program = tea.NewProgram(newScanModel(total), tea.WithOutput(t.out))
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)

		if _, err := t.program.Run(); err != nil {
			// Fall back silently; progress display is cosmetic.
			fmt.Fprintf(t.out, "scanning %d file(s)...\n", total)
		}
	}()
}

// ScanProgress forwards progress into the running program. Safe to call
// from worker goroutines; bubbletea serializes messages.
func (t *TTYUI) ScanProgress(done, total int) {
	if t.program != nil {
		t.program.Send(scanProgressMsg{done: done, total: total})
	}
}

// ScanFinished stops the progress program and waits for the terminal to
// be released before regular printing resumes.
func (t *TTYUI) ScanFinished() {
	if t.program == nil {
		t.ConsoleUI.ScanFinished()
		return
	}

	t.program.Send(scanDoneMsg{})
	<-t.done
	t.program = nil
}

type scanProgressMsg struct {
	done  int
	total int
}

type scanDoneMsg struct{}

// scanModel renders the fingerprinting progress bar.
type scanModel struct {
	bar      progress.Model
	done     int
	total    int
	quitting bool
}

func newScanModel(total int) scanModel {
	bar := progress.New(progress.WithDefaultGradient())

	return scanModel{bar: bar, total: total}
}

func (s scanModel) Init() tea.Cmd {
	return nil
}

func (s scanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 6
		if width > 0 {
			s.bar.Width = width
		}

		return s, nil

	case scanProgressMsg:
		s.done = msg.done
		s.total = msg.total

		return s, nil

	case scanDoneMsg:
		s.done = s.total
		s.quitting = true

		return s, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			s.quitting = true
			return s, tea.Quit
		}
	}

	return s, nil
}

func (s scanModel) View() string {
	if s.quitting {
		return ""
	}

	percent := 0.0
	if s.total > 0 {
		percent = float64(s.done) / float64(s.total)
	}

	var b strings.Builder

	b.WriteString(scanTitleStyle.Render("Fingerprinting"))
	fmt.Fprintf(&b, " %d/%d\n", s.done, s.total)
	b.WriteString(s.bar.ViewAs(percent))
	b.WriteString("\n")

	return b.String()
}
