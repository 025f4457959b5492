package chat

import "strings"

// Greeting 是会话创建时的首条 Agent 消息。
const Greeting = "Hi — I'm InsuraBot. How can I help you today? Try asking for the status of **CLM1001**."

// FallbackText 在请求失败时作为 Agent 回复展示。
const FallbackText = "Backend error. Please ensure the API is running on :8000."

// Conversation 持有消息序列与 pending 标记。
// 仅由拥有它的组件在单一执行上下文中修改，不做同步。
type Conversation struct {
	messages []Message
	pending  bool
	fallback string
}

// Option 调整 Conversation 的初始化参数。
type Option func(*Conversation)

// WithFallback 替换失败时的兜底文本。
func WithFallback(text string) Option {
	return func(c *Conversation) {
		if strings.TrimSpace(text) != "" {
			c.fallback = text
		}
	}
}

// New 创建带问候语的会话。
func New(opts ...Option) *Conversation {
	c := &Conversation{fallback: FallbackText}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset()
	return c
}

// Reset 恢复到仅含问候语的状态。
func (c *Conversation) Reset() {
	c.messages = []Message{{Sender: SenderAgent, Kind: KindText, Text: Greeting}}
	c.pending = false
}

// Submit 追加一条用户消息并进入 pending。
// 文本为空白或已有请求在途时不做任何修改并返回 false。
func (c *Conversation) Submit(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || c.pending {
		return false
	}
	c.messages = append(c.messages, Message{Sender: SenderUser, Kind: KindText, Text: text})
	c.pending = true
	return true
}

// Resolve 追加 Agent 回复；err 非空时使用兜底文本。pending 无论如何都会被清除。
func (c *Conversation) Resolve(payload Payload, err error) {
	defer func() { c.pending = false }()
	if err != nil {
		c.messages = append(c.messages, TextPayload(c.fallback).AgentMessage())
		return
	}
	c.messages = append(c.messages, payload.AgentMessage())
}

// Pending 表示是否有请求在途。
func (c *Conversation) Pending() bool {
	return c.pending
}

// Messages 返回消息序列的拷贝。
func (c *Conversation) Messages() []Message {
	return append([]Message(nil), c.messages...)
}

// Len 返回消息数量。
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Last 返回最后一条消息。
func (c *Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// LastAgentText 返回最近一条 Agent 文本回复，供复制使用。
func (c *Conversation) LastAgentText() (string, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		msg := c.messages[i]
		if msg.Sender != SenderAgent {
			continue
		}
		if msg.Kind == KindClaim && msg.Claim != nil {
			return ClaimSummary(*msg.Claim), true
		}
		return msg.Text, true
	}
	return "", false
}
