package chat

import "strings"

// Sender 标识消息来源。
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// Kind 决定消息携带 Text 还是 Claim。
type Kind string

const (
	KindText  Kind = "text"
	KindClaim Kind = "claim"
)

// ClaimStatus 为理赔状态；未知字符串原样保留。
type ClaimStatus string

const (
	StatusUnderReview ClaimStatus = "Under Review"
	StatusApproved    ClaimStatus = "Approved"
	StatusRejected    ClaimStatus = "Rejected"
)

// Known 判断是否为三种已知状态之一。
func (s ClaimStatus) Known() bool {
	switch s {
	case StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Claim 是只读的理赔记录。
type Claim struct {
	ClaimID      string      `json:"claimId"`
	PolicyHolder string      `json:"policyHolder"`
	Status       ClaimStatus `json:"status"`
	SubmittedOn  string      `json:"submittedOn"`
	Amount       float64     `json:"amount"`
	Notes        string      `json:"notes"`
}

// Message 为会话中的一条消息，Kind 决定 Text/Claim 中哪个有效。
type Message struct {
	Sender Sender `json:"from"`
	Kind   Kind   `json:"type"`
	Text   string `json:"text,omitempty"`
	Claim  *Claim `json:"claim,omitempty"`
}

// Payload 是后端返回的回复体，字段与 Message 对齐（不含 Sender）。
type Payload struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Claim *Claim `json:"claim,omitempty"`
}

// Request 是发往 chat 接口的请求体。
type Request struct {
	Message string `json:"message"`
}

// TextPayload 构造纯文本回复。
func TextPayload(text string) Payload {
	return Payload{Type: string(KindText), Text: text}
}

// ClaimPayload 构造理赔卡片回复。
func ClaimPayload(c Claim) Payload {
	return Payload{Type: string(KindClaim), Claim: &c}
}

// AgentMessage 将回复体转换为 Agent 消息。
// 声明为 claim 却没有 claim 体时退化为文本，保证 Message 不变式成立。
func (p Payload) AgentMessage() Message {
	if strings.EqualFold(strings.TrimSpace(p.Type), string(KindClaim)) && p.Claim != nil {
		c := *p.Claim
		return Message{Sender: SenderAgent, Kind: KindClaim, Claim: &c}
	}
	return Message{Sender: SenderAgent, Kind: KindText, Text: p.Text}
}
