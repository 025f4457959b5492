package tui

import (
	"context"
	"fmt"
	"strings"

	"insurabot/internal/chat"
	"insurabot/internal/logger"
	"insurabot/internal/tui/render"
	"insurabot/internal/tui/slash"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const placeholder = "Ask about claim status or request human assistance..."

// Fetcher 抽象回复获取，实现必须把所有失败转换为兜底回复。
type Fetcher interface {
	Fetch(ctx context.Context, text string) chat.Payload
}

type Options struct {
	Fetcher        Fetcher
	Endpoint       string
	InitialPrompt  string
	Markdown       bool
	CopyableOutput bool
	Log            *logger.LogEntry
	// Clipboard 为空时使用系统剪贴板。
	Clipboard func(string) error
}

type replyMsg struct {
	Payload chat.Payload
	Err     error
}

type startPromptMsg struct {
	Text string
}

type Model struct {
	textarea        textarea.Model
	viewport        viewport.Model
	spin            spinner.Model
	conv            *chat.Conversation
	fetcher         Fetcher
	markdown        *render.Markdown
	history         promptHistory
	timer           *waitTimer
	log             *logger.LogEntry
	copyFn          func(string) error
	ctx             context.Context
	endpoint        string
	initSend        string
	notice          string
	showHelp        bool
	width           int
	height          int
	transcriptDirty bool
}

func New(opts Options) *Model {
	ti := textarea.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 0
	ti.SetWidth(80)
	ti.SetHeight(1)
	ti.ShowLineNumbers = false
	ti.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ti.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	log := opts.Log
	if log == nil {
		log = logger.Named("conversation")
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	m := &Model{
		textarea:        ti,
		viewport:        viewport.New(80, 12),
		spin:            spin,
		conv:            chat.New(),
		fetcher:         opts.Fetcher,
		timer:           newWaitTimer(nil),
		log:             log,
		copyFn:          copyFn,
		ctx:             context.Background(),
		endpoint:        opts.Endpoint,
		initSend:        opts.InitialPrompt,
		width:           80,
		height:          24,
		transcriptDirty: true,
	}
	if opts.Markdown {
		m.markdown = render.NewMarkdown("dark")
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, textarea.Blink}
	if prompt := strings.TrimSpace(m.initSend); prompt != "" {
		cmds = append(cmds, func() tea.Msg { return startPromptMsg{Text: prompt} })
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m.finish(cmds...)
	case startPromptMsg:
		if cmd := m.submit(msg.Text); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m.finish(cmds...)
	case replyMsg:
		m.resolve(msg.Payload, msg.Err)
		return m.finish(cmds...)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		if m.conv.Pending() {
			m.refreshTranscript()
		}
		return m.finish(cmds...)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return m.finish(cmds...)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "pgup":
			m.viewport.HalfPageUp()
			return m.finish(cmds...)
		case "pgdown":
			m.viewport.HalfPageDown()
			return m.finish(cmds...)
		case "esc":
			m.notice = ""
			m.showHelp = false
			return m.finish(cmds...)
		}
		// 等待回复期间输入框禁用。
		if m.conv.Pending() {
			return m.finish(cmds...)
		}
		switch msg.String() {
		case "enter":
			input := m.textarea.Value()
			if slash.IsCommand(input) {
				m.textarea.Reset()
				if cmd := m.handleSlash(input); cmd != nil {
					cmds = append(cmds, cmd)
				}
				return m.finish(cmds...)
			}
			if cmd := m.submit(input); cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m.finish(cmds...)
		case "up":
			if m.textarea.LineCount() <= 1 {
				if text, ok := m.history.Prev(m.textarea.Value()); ok {
					m.textarea.SetValue(text)
				}
				return m.finish(cmds...)
			}
		case "down":
			if m.textarea.LineCount() <= 1 {
				if text, ok := m.history.Next(); ok {
					m.textarea.SetValue(text)
				}
				return m.finish(cmds...)
			}
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.setComposerHeight()
	cmds = append(cmds, cmd)
	return m.finish(cmds...)
}

// submit 追加用户消息并返回取回复的命令；被拒绝时返回 nil。
func (m *Model) submit(input string) tea.Cmd {
	if !m.conv.Submit(input) {
		return nil
	}
	text := strings.TrimSpace(input)
	m.textarea.Reset()
	m.textarea.Blur()
	m.setComposerHeight()
	m.history.Add(text)
	m.notice = ""
	m.timer.Start()
	m.refreshTranscript()
	m.log.WithField("chars", len(text)).Info("user message submitted")
	return m.fetchReply(text)
}

func (m *Model) fetchReply(text string) tea.Cmd {
	fetcher := m.fetcher
	ctx := m.ctx
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = replyMsg{Err: fmt.Errorf("fetch panic: %v", r)}
			}
		}()
		if fetcher == nil {
			return replyMsg{Err: fmt.Errorf("reply fetcher not configured")}
		}
		return replyMsg{Payload: fetcher.Fetch(ctx, text)}
	}
}

func (m *Model) resolve(payload chat.Payload, err error) {
	m.conv.Resolve(payload, err)
	m.timer.Stop()
	m.textarea.Focus()
	m.refreshTranscript()
	entry := m.log.WithField("type", payload.Type)
	if err != nil {
		entry.Warnf("reply failed, showing fallback: %v", err)
		return
	}
	entry.Info("agent reply appended")
}

func (m *Model) handleSlash(input string) tea.Cmd {
	cmd, _, ok := slash.Parse(input)
	if !ok {
		if suggestions := slash.Suggest(input); len(suggestions) > 0 {
			m.notice = fmt.Sprintf("unknown command %s; did you mean %s?", strings.Fields(input)[0], suggestions[0].Token())
		} else {
			m.notice = fmt.Sprintf("unknown command %s; try /help", strings.Fields(input)[0])
		}
		return nil
	}
	switch cmd {
	case slash.CommandQuit:
		return tea.Quit
	case slash.CommandClear:
		m.conv.Reset()
		m.history.ResetBrowsing()
		m.notice = "conversation cleared"
		m.refreshTranscript()
	case slash.CommandCopy:
		text, ok := m.conv.LastAgentText()
		if !ok {
			m.notice = "nothing to copy"
			return nil
		}
		if err := m.copyFn(text); err != nil {
			m.log.Warnf("clipboard write failed: %v", err)
			m.notice = fmt.Sprintf("copy failed: %v", err)
			return nil
		}
		m.notice = "last reply copied to clipboard"
	case slash.CommandStatus:
		m.notice = fmt.Sprintf("endpoint=%s messages=%d pending=%t", m.endpoint, m.conv.Len(), m.conv.Pending())
	case slash.CommandHelp:
		m.showHelp = !m.showHelp
	}
	return nil
}

func (m *Model) finish(cmds ...tea.Cmd) (tea.Model, tea.Cmd) {
	m.flushTranscript()
	return m, tea.Batch(cmds...)
}

// Messages 返回会话消息的拷贝。
func (m *Model) Messages() []chat.Message {
	return m.conv.Messages()
}

// Pending 表示是否在等待回复。
func (m *Model) Pending() bool {
	return m.conv.Pending()
}

func (m *Model) refreshTranscript() {
	m.transcriptDirty = true
}

func (m *Model) flushTranscript() {
	if !m.transcriptDirty {
		return
	}
	m.transcriptDirty = false
	atBottom := m.viewport.AtBottom() || m.viewport.TotalLineCount() == 0
	m.viewport.SetContent(strings.Join(m.renderTranscriptLines(), "\n"))
	if atBottom || m.conv.Pending() {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderTranscriptLines() []string {
	lines := render.RenderMessages(m.conv.Messages(), render.Options{
		Width:    m.viewport.Width,
		Pending:  m.conv.Pending(),
		Typing:   m.spin.View() + " InsuraBot is typing",
		Markdown: m.markdown,
	})
	return render.LinesToStrings(lines)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.textarea.SetWidth(maxInt(10, width-4))

	headerHeight := lipgloss.Height(renderBanner(width))
	composerHeight := m.textarea.Height() + 2
	footerHeight := 2
	viewHeight := height - headerHeight - composerHeight - footerHeight - 2
	if viewHeight < 3 {
		viewHeight = 3
	}
	m.viewport.Width = maxInt(10, width-4)
	m.viewport.Height = viewHeight
	m.refreshTranscript()
}

func (m *Model) setComposerHeight() {
	lines := strings.Count(m.textarea.Value(), "\n") + 1
	if lines > 6 {
		lines = 6
	}
	if m.textarea.Height() != lines {
		m.textarea.SetHeight(lines)
		m.resize(m.width, m.height)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
