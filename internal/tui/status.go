package tui

import (
	"fmt"
	"strings"
	"time"

	"insurabot/internal/tui/slash"

	"github.com/charmbracelet/lipgloss"
)

// waitTimer 记录当前请求已等待的时长。
type waitTimer struct {
	clock     func() time.Time
	startedAt time.Time
	running   bool
}

func newWaitTimer(clock func() time.Time) *waitTimer {
	if clock == nil {
		clock = time.Now
	}
	return &waitTimer{clock: clock}
}

func (t *waitTimer) Start() {
	t.startedAt = t.clock()
	t.running = true
}

func (t *waitTimer) Stop() {
	t.running = false
}

func (t *waitTimer) ElapsedSeconds() uint64 {
	if !t.running {
		return 0
	}
	d := t.clock().Sub(t.startedAt)
	if d < 0 {
		return 0
	}
	return uint64(d / time.Second)
}

func fmtElapsedCompact(elapsedSecs uint64) string {
	switch {
	case elapsedSecs < 60:
		return fmt.Sprintf("%ds", elapsedSecs)
	case elapsedSecs < 3600:
		return fmt.Sprintf("%dm %02ds", elapsedSecs/60, elapsedSecs%60)
	default:
		return fmt.Sprintf("%dh %02dm %02ds", elapsedSecs/3600, (elapsedSecs%3600)/60, elapsedSecs%60)
	}
}

var (
	accentColor = lipgloss.Color("#4F46E5")
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB454"))
	modalStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1).
			BorderForeground(lipgloss.Color("#FFB454"))
)

func (m *Model) View() string {
	banner := renderBanner(m.width)
	chatPane := renderPane(m.viewport.View(), m.width, m.viewport.Height)
	composer := renderPane(m.textarea.View(), m.width, m.textarea.Height())
	status := m.statusLine()
	hints := mutedStyle.Padding(0, 1).Width(maxInt(20, m.width)).Render(
		"Enter send • Alt+Enter newline • ↑/↓ history • PgUp/PgDn scroll • /help • Ctrl+C quit")
	content := lipgloss.JoinVertical(lipgloss.Left, banner, chatPane, composer, status, hints)
	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left, content, modalStyle.Render(helpText()))
	}
	return content
}

func (m *Model) statusLine() string {
	parts := []string{fmt.Sprintf("Endpoint: %s", m.endpoint)}
	if m.conv.Pending() {
		parts = append(parts, fmt.Sprintf("Waiting for reply %s %s", m.spin.View(), fmtElapsedCompact(m.timer.ElapsedSeconds())))
	}
	line := mutedStyle.Render(strings.Join(parts, " • "))
	if m.notice != "" {
		line += mutedStyle.Render(" • ") + noticeStyle.Render(m.notice)
	}
	return lipgloss.NewStyle().Padding(0, 1).Width(maxInt(20, m.width)).Render(line)
}

func renderBanner(width int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Render("✦ InsuraBot Assistant")
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("#C7D2FE")).Render("AI Insurance & Claim Support")
	return lipgloss.NewStyle().
		Background(accentColor).
		Padding(0, 1).
		Width(maxInt(20, width)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, sub))
}

func renderPane(body string, width, height int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#5E6472")).
		Padding(0, 1)
	if width > 2 {
		style = style.Width(width - 2)
	}
	if height > 0 {
		style = style.Height(height)
	}
	return style.Render(body)
}

func helpText() string {
	lines := []string{"Shortcuts", "Enter send • Alt+Enter newline • ↑/↓ recall prompts • Esc close", ""}
	for _, item := range slash.Builtins() {
		lines = append(lines, fmt.Sprintf("%-8s %s", item.Token(), item.Description))
	}
	return strings.Join(lines, "\n")
}
