// Package llm 通过 OpenAI 兼容接口把检索到的资料改写成面向客户的回答。
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"insurabot/internal/config"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// SystemPrompt 约束模型只使用给定资料作答。
const SystemPrompt = "You are an expert insurance support agent. Answer using only the provided context. " +
	"If the answer is not present, say you cannot find it."

const (
	maxAnswerTokens = 256
	temperature     = 0.3
)

// Role 是对话角色。
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message 是一条发送给模型的消息。
type Message struct {
	Role    Role
	Content string
}

type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	// MaxRetries 为负数时使用 SDK 默认值。
	MaxRetries int
	HTTPClient option.HTTPClient
}

// OptionsFromConfig 由配置构造 Options。
func OptionsFromConfig(cfg config.LLMConfig) Options {
	return Options{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model, MaxRetries: -1}
}

type Client struct {
	api   *openai.Client
	model string
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("missing OPENAI_API_KEY")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("missing model")
	}
	cfg := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg = append(cfg, option.WithBaseURL(strings.TrimRight(normalizeBaseURL(base), "/")))
	}
	if opts.MaxRetries >= 0 {
		cfg = append(cfg, option.WithMaxRetries(opts.MaxRetries))
	}
	if opts.HTTPClient != nil {
		cfg = append(cfg, option.WithHTTPClient(opts.HTTPClient))
	}
	client := openai.NewClient(cfg...)
	return &Client{api: &client, model: opts.Model}, nil
}

// Complete 发送一轮对话并返回首个候选回答。
func (c *Client) Complete(ctx context.Context, msgs []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    toChatMessages(msgs),
		MaxTokens:   openai.Int(maxAnswerTokens),
		Temperature: openai.Float(temperature),
	}
	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", wrapHTTPError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Rephrase 基于检索到的 FAQ 问答回答用户提问。
func (c *Client) Rephrase(ctx context.Context, query, question, answer string) (string, error) {
	text, err := c.Complete(ctx, BuildPrompt(query, question, answer))
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New("empty completion")
	}
	return extractAnswer(text), nil
}

// BuildPrompt 组装系统提示和带上下文的用户消息。
func BuildPrompt(query, question, answer string) []Message {
	retrieved := strings.Join([]string{
		"Retrieved FAQ Question: " + strings.TrimSpace(question),
		"Retrieved FAQ Answer: " + strings.TrimSpace(answer),
	}, "\n")
	return []Message{
		{Role: RoleSystem, Content: SystemPrompt},
		{Role: RoleUser, Content: fmt.Sprintf("Context:\n%s\nQuery: %s\nAnswer:", retrieved, strings.TrimSpace(query))},
	}
}

// extractAnswer 去掉模型回显的 "Answer:" 前缀。
func extractAnswer(text string) string {
	if i := strings.LastIndex(text, "Answer:"); i >= 0 {
		if rest := strings.TrimSpace(text[i+len("Answer:"):]); rest != "" {
			return rest
		}
	}
	return strings.TrimSpace(text)
}

func toChatMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func wrapHTTPError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		raw := strings.TrimSpace(apiErr.RawJSON())
		if raw != "" {
			return fmt.Errorf("http_%d: %s", apiErr.StatusCode, raw)
		}
		return fmt.Errorf("http_%d: %v", apiErr.StatusCode, err)
	}
	return err
}
