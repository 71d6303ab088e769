package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"imgmin/internal/minify"
)

// Model renders batch progress below the scrolling log output. Log lines
// arrive on the same channel as progress events and are printed above the
// UI so the two never interleave.
type Model struct {
	updates  <-chan minify.Progress
	cancel   context.CancelFunc
	spinner  spinner.Model
	progress progress.Model
	started  time.Time

	total       int
	index       int
	finished    int
	current     string
	tool        string
	toolElapsed time.Duration
	sum         minify.Summary

	interrupted bool
	quitting    bool
}

type doneMsg struct{}

type updateMsg minify.Progress

// NewModel listens on updates until it is closed. cancel is called when the
// user presses ctrl+c.
func NewModel(updates <-chan minify.Progress, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	prog := progress.New(progress.WithGradient(string(ColorAccentAlt), string(ColorSuccess)))
	prog.Width = 40

	return Model{
		updates:  updates,
		cancel:   cancel,
		spinner:  sp,
		progress: prog,
		started:  time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(listenForUpdates(m.updates), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		return m.apply(minify.Progress(msg))
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && !m.interrupted {
			m.interrupted = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.progress.Width = clamp(msg.Width-20, 20, 60)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd
	default:
		return m, nil
	}
}

func (m Model) apply(p minify.Progress) (tea.Model, tea.Cmd) {
	next := listenForUpdates(m.updates)

	switch p.Kind {
	case minify.ProgressLine:
		// Sequence keeps the line ahead of a later quit.
		return m, tea.Sequence(tea.Println(p.Line), next)
	case minify.ProgressBatchStart:
		m.total = p.Total
	case minify.ProgressFileStart:
		m.index, m.total, m.current = p.Index, p.Total, p.Name
		m.tool, m.toolElapsed = "", 0
	case minify.ProgressToolStart:
		m.tool, m.toolElapsed = p.Tool, 0
	case minify.ProgressHeartbeat:
		m.toolElapsed = p.Elapsed
	case minify.ProgressFileEnd:
		m.finished++
		m.sum.Add(p.Outcome)
		m.tool = ""
		if m.total > 0 {
			return m, tea.Batch(m.progress.SetPercent(float64(m.finished)/float64(m.total)), next)
		}
	}
	return m, next
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	header := titleStyle.Render("imgmin")
	if m.total > 0 {
		header += " " + labelStyle.Render(fmt.Sprintf("file %d/%d", m.index, m.total))
	}
	if m.current != "" {
		header += " " + dimStyle.Render(m.current)
	}
	b.WriteString(header + "\n")

	switch {
	case m.interrupted:
		b.WriteString(warnStyle.Render("Interrupted, cleaning up...") + "\n")
	case m.tool != "":
		b.WriteString(m.spinner.View() + " " + labelStyle.Render(m.tool))
		if m.toolElapsed > 0 {
			b.WriteString(" " + dimStyle.Render(minify.FormatElapsed(m.toolElapsed)))
		}
		b.WriteString("\n")
	default:
		b.WriteString(m.spinner.View() + "\n")
	}

	b.WriteString(m.progress.View() + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("done:%d  skipped:%d  failed:%d  elapsed %s",
		m.sum.Done, m.sum.Skipped, m.sum.Failed, time.Since(m.started).Round(time.Second))))
	return b.String()
}

func listenForUpdates(updates <-chan minify.Progress) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
)
