package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"kitchencalc/internal/timer"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	expressionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	previewStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	historyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	panelStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	overlayStyle    = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(1, 4).Bold(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{
		titleStyle.Render("kitchen calc"),
		m.renderCalculator(),
		m.renderHistory(),
		m.renderTimer(),
	}
	if o := m.renderOverlay(); o != "" {
		sections = append(sections, o)
	}
	if m.status != "" {
		sections = append(sections, errorStyle.Render(m.status))
	}
	sections = append(sections, m.renderFooter())

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m *Model) renderCalculator() string {
	st := m.session.State()

	expr := st.Expression
	if expr == "" {
		expr = "0"
	}
	lines := []string{expressionStyle.Render(expr)}

	switch {
	case st.Error != "":
		lines = append(lines, errorStyle.Render(st.Error))
	case st.Preview != "":
		lines = append(lines, previewStyle.Render("= "+st.Preview))
	default:
		lines = append(lines, "")
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderHistory() string {
	entries := m.historyTail()
	if len(entries) == 0 {
		return historyStyle.Render("no history yet")
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s = %s", e.Expression, e.Result))
	}
	return historyStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderTimer() string {
	if m.mode == modeTimerInput {
		return panelStyle.Render("timer: " + m.input.View())
	}

	snap := m.timer.Snapshot()
	remaining := time.Duration(snap.RemainingMs) * time.Millisecond

	name := snap.Name
	if name == "" {
		name = "timer"
	}
	head := fmt.Sprintf("%s  %s  %s", name, timer.FormatRemaining(remaining), snap.State)
	if snap.State == timer.Idle {
		return panelStyle.Render(head)
	}
	return panelStyle.Render(head + "\n" + m.bar.ViewAs(m.progressPercent(remaining)))
}

func (m *Model) renderOverlay() string {
	o := m.notifier.Overlay()
	if !o.Visible {
		return ""
	}
	pulse := m.notifier.Pulse(m.now())
	color := blend("#3A3A3A", "#FFB020", pulse)
	return overlayStyle.BorderForeground(lipgloss.Color(color)).Foreground(lipgloss.Color(color)).
		Render("⏰ " + o.Label + " is done")
}

func (m *Model) renderFooter() string {
	if m.mode == modeConfirmClear {
		return errorStyle.Render("clear all history? y/n")
	}
	parts := make([]string, 0, len(m.keys.help()))
	for _, b := range m.keys.help() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return footerStyle.Render(strings.Join(parts, " • "))
}

// blend mixes two #rrggbb colors, t in [0, 1].
func blend(from, to string, t float64) string {
	var r1, g1, b1, r2, g2, b2 int
	fmt.Sscanf(from, "#%02x%02x%02x", &r1, &g1, &b1)
	fmt.Sscanf(to, "#%02x%02x%02x", &r2, &g2, &b2)
	mix := func(a, b int) int { return a + int(float64(b-a)*t+0.5) }
	return fmt.Sprintf("#%02X%02X%02X", mix(r1, r2), mix(g1, g2), mix(b1, b2))
}
