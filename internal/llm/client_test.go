package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type recordedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newCompletionServer(t *testing.T, status int, content string, seen *recordedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.Error(w, "bad path", http.StatusNotFound)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			http.Error(w, "missing auth", http.StatusUnauthorized)
			return
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRephrase_SendsContextAndStripsAnswerPrefix(t *testing.T) {
	var seen recordedRequest
	srv := newCompletionServer(t, http.StatusOK, "Answer: Renew online up to 30 days early.", &seen)

	client, err := New(Options{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini", MaxRetries: 0})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	got, err := client.Rephrase(ctx, "can I renew early?", "How do I renew my policy?", "Policies can be renewed online up to 30 days before expiry.")
	if err != nil {
		t.Fatalf("Rephrase() error: %v", err)
	}
	if got != "Renew online up to 30 days early." {
		t.Fatalf("Rephrase() = %q", got)
	}
	if seen.Model != "gpt-4o-mini" || len(seen.Messages) != 2 {
		t.Fatalf("unexpected request: %+v", seen)
	}
	if seen.Messages[0].Role != "system" || seen.Messages[0].Content != SystemPrompt {
		t.Fatalf("system message = %+v", seen.Messages[0])
	}
	user := seen.Messages[1].Content
	for _, want := range []string{"Retrieved FAQ Question: How do I renew my policy?", "Query: can I renew early?", "Answer:"} {
		if !strings.Contains(user, want) {
			t.Fatalf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestComplete_HTTPErrorIsWrapped(t *testing.T) {
	srv := newCompletionServer(t, http.StatusInternalServerError, "", nil)
	client, err := New(Options{APIKey: "test-key", BaseURL: srv.URL + "/v1/chat/completions", Model: "gpt-4o-mini", MaxRetries: 0})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	_, err = client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "http_500") {
		t.Fatalf("err = %v, want http_500", err)
	}
}

func TestNew_RequiresKeyAndModel(t *testing.T) {
	if _, err := New(Options{Model: "m"}); err == nil {
		t.Fatalf("expected error without api key")
	}
	if _, err := New(Options{APIKey: "k"}); err == nil {
		t.Fatalf("expected error without model")
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"http://localhost:11434", "http://localhost:11434/v1"},
		{"http://localhost:11434/v1/", "http://localhost:11434/v1"},
		{"https://api.example.com/v1/chat/completions", "https://api.example.com/v1"},
		{"https://api.example.com/proxy", "https://api.example.com/proxy/v1"},
		{"https://api.example.com/v1/v1", "https://api.example.com/v1"},
	}
	for _, tc := range cases {
		if got := normalizeBaseURL(tc.in); got != tc.want {
			t.Fatalf("normalizeBaseURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractAnswer(t *testing.T) {
	cases := map[string]string{
		"plain reply":             "plain reply",
		"Context...\nAnswer: yes": "yes",
		"Answer:":                 "Answer:",
	}
	for in, want := range cases {
		if got := extractAnswer(in); got != want {
			t.Fatalf("extractAnswer(%q) = %q, want %q", in, got, want)
		}
	}
}
