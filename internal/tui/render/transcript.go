package render

import (
	"strings"

	"insurabot/internal/chat"

	"github.com/charmbracelet/lipgloss"
)

var (
	userBubbleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#4F46E5"))
	userPrefixStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4F46E5"))
	agentPrefixStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	agentTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#1F2937"))
	typingStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

// TypingIndicator 是 pending 时显示的默认提示。
const TypingIndicator = "● ● ●"

// Options 控制转录渲染。
type Options struct {
	Width    int
	Pending  bool
	Typing   string
	Markdown *Markdown
}

// RenderMessages 将消息序列渲染为行：用户消息右对齐，Agent 消息左对齐，
// pending 时在末尾追加输入中提示。
func RenderMessages(msgs []chat.Message, opts Options) []Line {
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	bubble := bubbleWidth(width)

	lines := []Line{}
	for i, msg := range msgs {
		if i > 0 {
			lines = append(lines, Line{})
		}
		switch {
		case msg.Sender == chat.SenderUser:
			lines = append(lines, renderUserLines(msg.Text, bubble, width)...)
		case msg.Kind == chat.KindClaim && msg.Claim != nil:
			card := RenderClaimCard(*msg.Claim, bubble)
			lines = append(lines, PrefixLines(card, Span{Text: "• ", Style: agentPrefixStyle}, Span{Text: "  "})...)
		default:
			lines = append(lines, renderAgentLines(msg.Text, bubble, opts.Markdown)...)
		}
	}
	if opts.Pending {
		typing := opts.Typing
		if strings.TrimSpace(typing) == "" {
			typing = TypingIndicator
		}
		if len(lines) > 0 {
			lines = append(lines, Line{})
		}
		lines = append(lines, Line{Spans: []Span{
			{Text: "• ", Style: agentPrefixStyle},
			{Text: typing, Style: typingStyle},
		}})
	}
	return lines
}

// bubbleWidth 对应消息最大占 75% 宽度。
func bubbleWidth(width int) int {
	w := width * 3 / 4
	if w < 20 {
		w = width
	}
	return w
}

func renderUserLines(content string, bubble, width int) []Line {
	wrapWidth := maxInt(1, bubble-4)
	body := wrapText(strings.TrimRight(content, "\n"), wrapWidth)
	out := make([]Line, 0, len(body))
	for _, l := range body {
		out = append(out, textLine(" "+l+" ", userBubbleStyle))
	}
	out = PrefixLines(out, Span{Text: "› ", Style: userPrefixStyle}, Span{Text: "  "})
	return AlignRight(out, width)
}

func renderAgentLines(content string, bubble int, md *Markdown) []Line {
	content = strings.TrimRight(content, "\n")
	wrapWidth := maxInt(1, bubble-2)
	var body []Line
	if md != nil {
		if rendered, ok := md.Render(content, wrapWidth); ok {
			for _, r := range rendered {
				body = append(body, textLine(r, lipgloss.NewStyle()))
			}
		}
	}
	if body == nil {
		for _, l := range wrapText(content, wrapWidth) {
			body = append(body, textLine(l, agentTextStyle))
		}
	}
	return PrefixLines(body, Span{Text: "• ", Style: agentPrefixStyle}, Span{Text: "  "})
}
