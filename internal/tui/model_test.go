package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"insurabot/internal/chat"
	"insurabot/internal/logger"

	tea "github.com/charmbracelet/bubbletea"
)

type stubFetcher struct {
	payload chat.Payload
	calls   []string
}

func (s *stubFetcher) Fetch(_ context.Context, text string) chat.Payload {
	s.calls = append(s.calls, text)
	return s.payload
}

func newTestModel(f Fetcher) *Model {
	m := New(Options{Fetcher: f, Endpoint: "http://localhost:8000/chat", Log: logger.Discard()})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func pressEnter(m *Model) {
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestModel_SubmitSetsPendingAndClearsInput(t *testing.T) {
	m := newTestModel(&stubFetcher{})
	m.textarea.SetValue("  status CLM1001  ")
	pressEnter(m)

	if !m.Pending() {
		t.Fatalf("expected pending after submit")
	}
	if got := m.textarea.Value(); got != "" {
		t.Fatalf("input not cleared: %q", got)
	}
	msgs := m.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[1].Sender != chat.SenderUser || msgs[1].Text != "status CLM1001" {
		t.Fatalf("unexpected user message: %+v", msgs[1])
	}
}

func TestModel_BlankInputIgnored(t *testing.T) {
	m := newTestModel(&stubFetcher{})
	m.textarea.SetValue("   ")
	pressEnter(m)
	if m.Pending() || len(m.Messages()) != 1 {
		t.Fatalf("blank input should be a no-op")
	}
}

func TestModel_SecondSubmitWhilePendingIgnored(t *testing.T) {
	m := newTestModel(&stubFetcher{})
	if cmd := m.submit("first"); cmd == nil {
		t.Fatalf("expected fetch command")
	}
	if cmd := m.submit("second"); cmd != nil {
		t.Fatalf("submit while pending should return nil")
	}
	m.textarea.SetValue("typed while waiting")
	pressEnter(m)
	if len(m.Messages()) != 2 {
		t.Fatalf("messages = %d, want 2", len(m.Messages()))
	}
}

func TestModel_ReplyResolvesPending(t *testing.T) {
	claim := chat.Claim{ClaimID: "CLM1002", PolicyHolder: "Rina Sharma", Status: chat.StatusApproved, SubmittedOn: "2025-08-18", Amount: 43000}
	f := &stubFetcher{payload: chat.ClaimPayload(claim)}
	m := newTestModel(f)

	cmd := m.submit("claim CLM1002")
	msg := cmd()
	m.Update(msg)

	if m.Pending() {
		t.Fatalf("pending not cleared")
	}
	if len(f.calls) != 1 || f.calls[0] != "claim CLM1002" {
		t.Fatalf("fetch calls = %v", f.calls)
	}
	last := m.Messages()[2]
	if last.Kind != chat.KindClaim || last.Claim == nil || last.Claim.ClaimID != "CLM1002" {
		t.Fatalf("unexpected reply: %+v", last)
	}
	if !strings.Contains(m.viewport.View(), "CLM1002") {
		t.Fatalf("claim card not rendered in transcript")
	}
}

func TestModel_ReplyErrorShowsFallback(t *testing.T) {
	m := newTestModel(&stubFetcher{})
	m.submit("hello")
	m.Update(replyMsg{Err: errors.New("boom")})

	if m.Pending() {
		t.Fatalf("pending not cleared")
	}
	last := m.Messages()[2]
	if last.Text != chat.FallbackText {
		t.Fatalf("text = %q, want fallback", last.Text)
	}
}

func TestModel_NilFetcherResolvesWithFallback(t *testing.T) {
	m := newTestModel(nil)
	cmd := m.submit("hello")
	m.Update(cmd())
	if m.Pending() {
		t.Fatalf("pending not cleared")
	}
	if got := m.Messages()[2].Text; got != chat.FallbackText {
		t.Fatalf("text = %q", got)
	}
}

func TestModel_SlashCopyUsesClipboard(t *testing.T) {
	var copied string
	m := New(Options{
		Fetcher:   &stubFetcher{},
		Log:       logger.Discard(),
		Clipboard: func(s string) error { copied = s; return nil },
	})
	m.textarea.SetValue("/copy")
	pressEnter(m)
	if copied != chat.Greeting {
		t.Fatalf("copied = %q, want greeting", copied)
	}
	if m.notice == "" {
		t.Fatalf("expected a notice")
	}
	if len(m.Messages()) != 1 {
		t.Fatalf("slash commands must not touch the conversation")
	}
}

func TestModel_SlashClearResets(t *testing.T) {
	m := newTestModel(&stubFetcher{payload: chat.TextPayload("ok")})
	m.Update(m.submit("hello")())
	if len(m.Messages()) != 3 {
		t.Fatalf("messages = %d", len(m.Messages()))
	}
	m.textarea.SetValue("/clear")
	pressEnter(m)
	if len(m.Messages()) != 1 {
		t.Fatalf("messages after clear = %d, want 1", len(m.Messages()))
	}
}

func TestModel_UnknownSlashSuggests(t *testing.T) {
	m := newTestModel(&stubFetcher{})
	m.textarea.SetValue("/cler")
	pressEnter(m)
	if !strings.Contains(m.notice, "/clear") {
		t.Fatalf("notice = %q, want suggestion", m.notice)
	}
}

func TestModel_HistoryRecall(t *testing.T) {
	m := newTestModel(&stubFetcher{payload: chat.TextPayload("ok")})
	m.Update(m.submit("first question")())
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.textarea.Value(); got != "first question" {
		t.Fatalf("recalled %q", got)
	}
}

func TestModel_ViewShowsBannerAndEndpoint(t *testing.T) {
	m := newTestModel(&stubFetcher{})
	view := m.View()
	for _, want := range []string{"InsuraBot Assistant", "AI Insurance & Claim Support", "localhost:8000"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestWaitTimer(t *testing.T) {
	now := time.Unix(1000, 0)
	timer := newWaitTimer(func() time.Time { return now })
	timer.Start()
	now = now.Add(75 * time.Second)
	if got := fmtElapsedCompact(timer.ElapsedSeconds()); got != "1m 15s" {
		t.Fatalf("elapsed = %q", got)
	}
	timer.Stop()
	if timer.ElapsedSeconds() != 0 {
		t.Fatalf("stopped timer should report 0")
	}
}

func TestFmtElapsedCompact(t *testing.T) {
	cases := map[uint64]string{0: "0s", 59: "59s", 60: "1m 00s", 3661: "1h 01m 01s"}
	for in, want := range cases {
		if got := fmtElapsedCompact(in); got != want {
			t.Fatalf("fmtElapsedCompact(%d) = %q, want %q", in, got, want)
		}
	}
}
