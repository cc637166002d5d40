package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"scrobvault/internal/canceltoken"
	"scrobvault/internal/downloader"
)

type progressModel struct {
	title      string
	events     <-chan downloader.Event
	token      canceltoken.Token
	spinner    spinner.Model
	prog       progress.Model
	items      []spanItem
	index      map[string]int
	stageLabel string
	width      int
	done       bool
	cancelling bool
}

type spanItem struct {
	label    string
	status   string
	fraction float64
}

type eventMsg downloader.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders an archive run.
// Spans are discovered from the event stream; pressing q or ctrl-c cancels
// the token and waits for the run to wind down.
func NewProgressModel(title string, events <-chan downloader.Event, token canceltoken.Token) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	return &progressModel{
		title:   title,
		events:  events,
		token:   token,
		spinner: sp,
		prog:    prog,
		index:   map[string]int{},
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		ev := downloader.Event(msg)
		cmd := m.applyEvent(ev)
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// The run observes the token between pages; keep reading
			// events until it winds down.
			m.cancelling = true
			m.token.Cancel()
		}
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	switch {
	case m.done:
		header = fmt.Sprintf("done: %s", header)
	case m.cancelling:
		header = fmt.Sprintf("%s stopping: %s", m.spinner.View(), header)
	default:
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 14
	nameWidth := m.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range m.items {
		name := truncate(item.label, nameWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%14s", item.status))
		line := fmt.Sprintf("  %s %s", statusStyled, name)
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev downloader.Event) tea.Cmd {
	if ev.Span == "" {
		if label := runLabel(ev); label != "" {
			m.stageLabel = label
		}
		return nil
	}

	idx, ok := m.index[ev.Span]
	if !ok {
		idx = len(m.items)
		m.items = append(m.items, spanItem{label: ev.Span, status: "queued"})
		m.index[ev.Span] = idx
	}

	item := &m.items[idx]
	item.status = spanStatus(ev)
	item.fraction = spanFraction(ev, item.fraction)

	if len(m.items) == 0 {
		return nil
	}
	total := 0.0
	for _, it := range m.items {
		total += it.fraction
	}
	return m.prog.SetPercent(total / float64(len(m.items)))
}

func runLabel(ev downloader.Event) string {
	if ev.Stage != downloader.StageScan {
		return ""
	}
	switch ev.Status {
	case downloader.StatusWorking:
		return "scanning archives"
	case downloader.StatusDone:
		return "downloading"
	case downloader.StatusError:
		return "scan failed"
	default:
		return ""
	}
}

func spanStatus(ev downloader.Event) string {
	switch ev.Status {
	case downloader.StatusQueued:
		return "queued"
	case downloader.StatusDone:
		return "done"
	case downloader.StatusError:
		return "error"
	case downloader.StatusCancelled:
		return "cancelled"
	}
	switch ev.Stage {
	case downloader.StageFetch:
		if ev.Pages > 0 {
			return fmt.Sprintf("page %d/%d", ev.Page, ev.Pages)
		}
		return "fetching"
	case downloader.StageWrite:
		return "writing"
	}
	return ""
}

// spanFraction estimates how far along a span is. Fetching walks from 0.1
// to 0.9 with the page counter, writing sits at 0.9 and terminal states
// count as complete.
func spanFraction(ev downloader.Event, prev float64) float64 {
	switch ev.Status {
	case downloader.StatusDone, downloader.StatusError, downloader.StatusCancelled:
		return 1.0
	}
	switch ev.Stage {
	case downloader.StageFetch:
		if ev.Pages > 0 {
			return 0.1 + 0.8*float64(ev.Page-1)/float64(ev.Pages)
		}
		return 0.1
	case downloader.StageWrite:
		return 0.9
	}
	return prev
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "cancelled":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case "queued":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
