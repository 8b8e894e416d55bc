// Package tui provides the Bubble Tea kitchen calculator and timer.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"kitchencalc/internal/history"
	"kitchencalc/internal/notifier"
	"kitchencalc/internal/session"
	"kitchencalc/internal/timer"
)

type mode int

const (
	modeCalc mode = iota
	modeTimerInput
	modeConfirmClear
)

const historyLines = 5

type tickMsg time.Time

type notifiedMsg struct{}

// Model implements the Bubble Tea calculator UI.
type Model struct {
	session  *session.Session
	timer    *timer.Timer
	notifier *notifier.Notifier
	interval time.Duration
	now      func() time.Time

	keys  keyMap
	mode  mode
	input textinput.Model
	bar   progress.Model

	// длительность последнего запуска, для полосы прогресса
	total   time.Duration
	ticking bool
	status  string

	width  int
	height int
}

// NewModel constructs the TUI model. interval <= 0 means timer.DefaultTickInterval.
func NewModel(s *session.Session, t *timer.Timer, n *notifier.Notifier, interval time.Duration) *Model {
	if interval <= 0 {
		interval = timer.DefaultTickInterval
	}
	input := textinput.New()
	input.Placeholder = "5m Eggs  |  4:30  |  90s"
	input.CharLimit = 64

	return &Model{
		session:  s,
		timer:    t,
		notifier: n,
		interval: interval,
		now:      time.Now,
		keys:     defaultKeyMap(),
		input:    input,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.ensureTick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = clamp(msg.Width-4, 10, 60)
		return m, nil
	case tickMsg:
		m.ticking = false
		return m, m.onTick()
	case notifiedMsg:
		return m, m.ensureTick()
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		switch m.mode {
		case modeTimerInput:
			return m, m.updateTimerInput(msg)
		case modeConfirmClear:
			m.updateConfirm(msg)
			return m, nil
		}
		return m, m.updateCalc(msg)
	}
	return m, nil
}

func (m *Model) updateCalc(msg tea.KeyMsg) tea.Cmd {
	m.status = ""

	if m.notifier.Overlay().Visible && (key.Matches(msg, m.keys.Dismiss) || key.Matches(msg, m.keys.Clear)) {
		m.notifier.Dismiss()
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		m.session.Press(session.KeyEquals)
	case key.Matches(msg, m.keys.Backspace):
		m.session.Backspace()
	case key.Matches(msg, m.keys.Clear):
		m.session.Clear()
	case key.Matches(msg, m.keys.Ans):
		m.session.Press(session.KeyAns)
	case key.Matches(msg, m.keys.Timer):
		m.mode = modeTimerInput
		m.input.SetValue("")
		return m.input.Focus()
	case key.Matches(msg, m.keys.PauseResume):
		return m.toggleTimer()
	case key.Matches(msg, m.keys.ResetTimer):
		m.timer.Reset()
		m.total = 0
	case key.Matches(msg, m.keys.ClearHistory):
		if m.session.History().Len() > 0 {
			m.mode = modeConfirmClear
		}
	case msg.Type == tea.KeyRunes:
		for _, r := range msg.Runes {
			if strings.ContainsRune(calcRunes, r) {
				m.session.Press(string(r))
			}
		}
	}
	return nil
}

func (m *Model) updateTimerInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeCalc
		m.input.Blur()
		return nil
	case tea.KeyEnter:
		err := m.startFromInput(m.input.Value())
		if err != nil {
			m.status = err.Error()
			return nil
		}
		m.mode = modeCalc
		m.input.Blur()
		return m.ensureTick()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.session.History().ClearAll()
		m.status = "history cleared"
	case key.Matches(msg, m.keys.Cancel):
	default:
		return
	}
	m.mode = modeCalc
}

// "5m Eggs": сначала длительность, остальное имя
func (m *Model) startFromInput(value string) error {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return fmt.Errorf("enter a duration")
	}
	d, err := timer.ParseDuration(fields[0])
	if err != nil {
		return err
	}
	if len(fields) > 1 {
		m.timer.SetName(strings.Join(fields[1:], " "))
	}
	m.timer.Start(d)
	m.total = d
	return nil
}

func (m *Model) toggleTimer() tea.Cmd {
	switch m.timer.Snapshot().State {
	case timer.Running:
		m.timer.Pause()
	case timer.Paused:
		m.timer.Resume()
		return m.ensureTick()
	}
	return nil
}

func (m *Model) onTick() tea.Cmd {
	_, done := m.timer.Tick()
	var cmds []tea.Cmd
	if done != nil {
		c := *done
		cmds = append(cmds, func() tea.Msg {
			m.notifier.Notify(context.Background(), c)
			return notifiedMsg{}
		})
	}
	cmds = append(cmds, m.ensureTick())
	return tea.Batch(cmds...)
}

// тикаем только пока идет отсчет или мигает уведомление
func (m *Model) ensureTick() tea.Cmd {
	if m.ticking {
		return nil
	}
	if !m.timer.Running() && !m.notifier.Overlay().Visible {
		return nil
	}
	m.ticking = true
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) historyTail() []history.Entry {
	entries := m.session.History().Entries()
	if len(entries) > historyLines {
		entries = entries[:historyLines]
	}
	return entries
}

func (m *Model) progressPercent(remaining time.Duration) float64 {
	if m.total <= 0 {
		return 0
	}
	p := 1 - float64(remaining)/float64(m.total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
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
