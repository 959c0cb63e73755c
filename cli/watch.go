package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/yllada/nordvpn-manager/common"
	"github.com/yllada/nordvpn-manager/nordvpn"
	"github.com/yllada/nordvpn-manager/notify"
)

type statusMsg struct {
	status *nordvpn.Status
	err    error
	at     time.Time
}

type pollMsg time.Time

// watchModel polls the tool at a fixed interval and renders the session.
type watchModel struct {
	ctx      context.Context
	query    func(ctx context.Context) (*nordvpn.Status, error)
	notifier notify.Sender
	interval time.Duration
	palette  palette

	spinner  spinner.Model
	loading  bool
	sampled  bool
	status   *nordvpn.Status
	err      error
	updated  time.Time
	quitting bool
}

func newWatchModel(ctx context.Context, c *CLI) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = mutedStyle

	return watchModel{
		ctx:      ctx,
		query:    c.client.Status,
		notifier: c.notifier,
		interval: c.cfg.WatchInterval,
		palette:  c.palette,
		spinner:  s,
		loading:  true,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m watchModel) fetch() tea.Cmd {
	return func() tea.Msg {
		status, err := m.query(m.ctx)
		return statusMsg{status: status, err: err, at: time.Now()}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if !m.loading {
				m.loading = true
				return m, m.fetch()
			}
		}
		return m, nil

	case statusMsg:
		m.loading = false
		m.err = msg.err
		m.updated = msg.at
		if msg.err == nil {
			if m.sampled {
				notify.NotifyStatusChange(m.notifier, m.status, msg.status)
			}
			m.status = msg.status
			m.sampled = true
		}
		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg { return pollMsg(t) })

	case pollMsg:
		common.GetLogger().CheckRotation()
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.fetch()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.palette.title(common.AppName))
	b.WriteString("\n\n")

	switch {
	case !m.sampled && m.err == nil:
		b.WriteString("Waiting for the first status report...\n")
	case m.status == nil && m.sampled:
		b.WriteString(m.palette.failure("Disconnected"))
		b.WriteString("\n")
	case m.status != nil:
		b.WriteString(m.palette.success("Connected"))
		b.WriteString("\n\n")
		writeStatus(&b, m.status)
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.palette.failure(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.loading {
		b.WriteString(m.spinner.View())
		b.WriteString(" querying nordvpn")
	} else if !m.updated.IsZero() {
		b.WriteString(m.palette.muted("updated " + humanize.Time(m.updated)))
	}
	b.WriteString("\n")
	b.WriteString(m.palette.muted(fmt.Sprintf("refresh every %s • r: refresh • q: quit", m.interval)))
	b.WriteString("\n")
	return b.String()
}

func (c *CLI) watch(ctx context.Context, args []string) error {
	p := tea.NewProgram(newWatchModel(ctx, c), tea.WithContext(ctx), tea.WithOutput(c.out))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}
