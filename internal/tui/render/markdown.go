package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown 按宽度缓存 glamour 渲染器，渲染 Agent 文本。
type Markdown struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdown 使用固定的标准样式；不做终端背景探测，避免在 TUI 内阻塞。
func NewMarkdown(style string) *Markdown {
	if strings.TrimSpace(style) == "" {
		style = "dark"
	}
	return &Markdown{style: style}
}

// Render 返回渲染后的行；失败时 ok 为 false，调用方回退到纯文本换行。
func (m *Markdown) Render(text string, width int) ([]string, bool) {
	if m == nil || width <= 0 {
		return nil, false
	}
	if m.renderer == nil || m.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return nil, false
		}
		m.renderer = r
		m.width = width
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return nil, false
	}
	lines := strings.Split(strings.Trim(out, "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, false
	}
	return lines, true
}
