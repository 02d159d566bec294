package progress

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"swissarchive/driver"
	L "swissarchive/logger"
)

const indeterminateScale = 100

var (
	briefStyle  = lipgloss.NewStyle().Bold(true)
	detailStyle = lipgloss.NewStyle().Faint(true)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

type statusMsg driver.UpdateStatus

type quitMsg struct{}

type barModel struct {
	brief         string
	detail        string
	done          uint64
	total         uint64
	indeterminate bool
	width         int
}

func (m barModel) Init() tea.Cmd {
	return nil
}

func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case statusMsg:
		// a new brief starts a new phase
		if msg.Brief != nil && *msg.Brief != m.brief {
			m.brief = *msg.Brief
			m.detail = ""
			m.done = 0
			m.total = 0
			m.indeterminate = false
		}
		if msg.Detail != nil {
			m.detail = *msg.Detail
		}
		if msg.Total != nil {
			m.total = *msg.Total
			m.indeterminate = false
		}
		if msg.Increment != nil {
			if m.total == 0 {
				m.indeterminate = true
				m.total = indeterminateScale
			}
			m.done += *msg.Increment
			// indeterminate ticks wrap around instead of completing
			if m.indeterminate && m.done >= m.total {
				m.done = 0
			}
		}

	case quitMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m barModel) View() string {
	if m.brief == "" {
		return ""
	}
	percentage := 0.0
	if m.total > 0 {
		percentage = float64(m.done) * 100.0 / float64(m.total)
	}
	counter := fmt.Sprintf("%d/%d", m.done, m.total)
	if m.indeterminate {
		counter = "..."
	}
	line := fmt.Sprintf("%s %s %s %s",
		briefStyle.Render(m.brief),
		barStyle.Render(L.ProgressBar(percentage)),
		counter,
		detailStyle.Render(L.TruncateString(m.detail, 40, L.TRUNC_CENTER)))
	if m.width > 0 {
		line = L.TruncateString(line, m.width, L.TRUNC_RIGHT)
	}
	return line + "\n"
}

// TUI drives a bubbletea program drawing a single live progress bar.
type TUI struct {
	program *tea.Program
	done    chan struct{}
}

func NewTUI() *TUI {
	t := &TUI{
		program: tea.NewProgram(barModel{}, tea.WithoutSignalHandler()),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		if _, err := t.program.Run(); err != nil {
			L.Debug(fmt.Sprintf("progress renderer exited: %v", err))
		}
	}()
	return t
}

func (t *TUI) Updater() driver.Updater {
	return func(status driver.UpdateStatus) {
		t.program.Send(statusMsg(status))
	}
}

func (t *TUI) Stop() {
	t.program.Send(quitMsg{})
	<-t.done
}
