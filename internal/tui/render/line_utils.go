package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PrefixLines 为首行/续行添加前缀。
func PrefixLines(lines []Line, initial Span, subsequent Span) []Line {
	out := make([]Line, 0, len(lines))
	for i, l := range lines {
		spans := make([]Span, 0, len(l.Spans)+1)
		if i == 0 {
			spans = append(spans, initial)
		} else {
			spans = append(spans, subsequent)
		}
		spans = append(spans, l.Spans...)
		out = append(out, Line{Spans: spans, Style: l.Style})
	}
	return out
}

// AlignRight 在左侧补空格，使行右对齐到 width。
func AlignRight(lines []Line, width int) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		pad := width - l.Width()
		if pad <= 0 {
			out = append(out, l)
			continue
		}
		spans := append([]Span{{Text: strings.Repeat(" ", pad)}}, l.Spans...)
		out = append(out, Line{Spans: spans, Style: l.Style})
	}
	return out
}

// blockLines 将 lipgloss 渲染后的多行字符串拆成 Line。
func blockLines(block string) []Line {
	raw := strings.Split(strings.TrimRight(block, "\n"), "\n")
	out := make([]Line, 0, len(raw))
	for _, r := range raw {
		out = append(out, textLine(r, lipgloss.NewStyle()))
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
