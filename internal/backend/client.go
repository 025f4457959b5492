package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"insurabot/internal/chat"
	"insurabot/internal/config"
	"insurabot/internal/logger"

	"github.com/google/uuid"
)

// maxReplyBytes 限制单次回复体大小。
const maxReplyBytes = 1 << 20

type Options struct {
	Endpoint   string
	Timeout    time.Duration
	Fallback   string
	HTTPClient *http.Client
	Log        *logger.LogEntry
}

// Client 将一条用户消息发送到 chat 接口并返回回复体。
type Client struct {
	endpoint string
	timeout  time.Duration
	fallback string
	http     *http.Client
	log      *logger.LogEntry
}

func New(opts Options) *Client {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = config.DefaultAPIURL
	}
	fallback := opts.Fallback
	if strings.TrimSpace(fallback) == "" {
		fallback = chat.FallbackText
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	log := opts.Log
	if log == nil {
		log = logger.Named("fetcher")
	}
	return &Client{
		endpoint: endpoint,
		timeout:  opts.Timeout,
		fallback: fallback,
		http:     httpClient,
		log:      log,
	}
}

// Endpoint 返回实际请求地址。
func (c *Client) Endpoint() string {
	return c.endpoint
}

// FetchResult 是一次请求的完整结果。Fallback 为 true 时 Payload 是兜底文本，
// Err 保存导致兜底的原因。
type FetchResult struct {
	Payload  chat.Payload
	Fallback bool
	Err      error
}

// Fetch 发送 {"message": text}。任何失败（传输错误、非 2xx、无法解析的响应体）
// 都转换为兜底文本回复，从不向调用方返回错误。
func (c *Client) Fetch(ctx context.Context, text string) chat.Payload {
	return c.FetchResult(ctx, text).Payload
}

// FetchResult 与 Fetch 相同，但保留是否使用了兜底回复。
func (c *Client) FetchResult(ctx context.Context, text string) FetchResult {
	requestID := uuid.NewString()
	log := c.log.WithField("request_id", requestID)

	payload, err := c.do(ctx, requestID, text)
	if err != nil {
		log.Warnf("chat request failed: %v", err)
		return FetchResult{Payload: chat.TextPayload(c.fallback), Fallback: true, Err: err}
	}
	log.WithField("type", payload.Type).Debug("chat reply received")
	return FetchResult{Payload: payload}
}

func (c *Client) do(ctx context.Context, requestID, text string) (chat.Payload, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(chat.Request{Message: text})
	if err != nil {
		return chat.Payload{}, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return chat.Payload{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return chat.Payload{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return chat.Payload{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return chat.Payload{}, fmt.Errorf("http_%d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var payload chat.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return chat.Payload{}, fmt.Errorf("decode response: %w", err)
	}
	return payload, nil
}
