package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"insurabot/internal/chat"
	"insurabot/internal/config"
	"insurabot/internal/logger"
)

func TestRunPing_PrintsTextReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chat.Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chat.TextPayload("echo: " + req.Message))
	}))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	err := runPing(rootArgs{}, []string{"--config", cfgPath, "--url", srv.URL + "/chat", "hello", "there"}, &out)
	if err != nil {
		t.Fatalf("runPing error: %v", err)
	}
	if got := out.String(); got != "ok: echo: hello there\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestRunPing_ClaimReplyAndDefaultMessage(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chat.Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		seen = req.Message
		_ = json.NewEncoder(w).Encode(chat.ClaimPayload(chat.Claim{ClaimID: "CLM1001", Status: chat.StatusUnderReview, Amount: 12500}))
	}))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	root := rootArgs{overrides: []string{"api_url=" + srv.URL}}
	if err := runPing(root, []string{"--config", cfgPath}, &out); err != nil {
		t.Fatalf("runPing error: %v", err)
	}
	if seen != defaultPingMessage {
		t.Fatalf("sent %q, want default message", seen)
	}
	if !strings.Contains(out.String(), "CLM1001") || !strings.Contains(out.String(), "₹12,500") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunPing_FallbackIsAnError(t *testing.T) {
	logger.Root().SetOutput(&bytes.Buffer{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	err := runPing(rootArgs{}, []string{"--config", cfgPath, "--url", srv.URL}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "fallback") {
		t.Fatalf("err = %v, want fallback error", err)
	}
}

func TestRunPing_FallbackSentenceFromBackendIsOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chat.TextPayload(chat.FallbackText))
	}))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := runPing(rootArgs{}, []string{"--config", cfgPath, "--url", srv.URL}, &out); err != nil {
		t.Fatalf("runPing error: %v", err)
	}
	if got := out.String(); got != "ok: "+chat.FallbackText+"\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestRunPing_Unreachable(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	err := runPing(rootArgs{}, []string{"--config", cfgPath, "--url", "http://127.0.0.1:1/chat", "--timeout", "1"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "unreachable") {
		t.Fatalf("err = %v, want unreachable", err)
	}
}

func TestBuildBackend_SeedsImportsAndLoadsFAQs(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Server.DBPath = filepath.Join(dir, "db", "insurabot.db")
	cfg.Server.DataDir = dir
	cfg.LLM.APIKey = ""
	claimsCSV := "Claim_ID,Policy_Number,Customer_ID,Policy_Holder,Status,Submitted_On,Amount,Remarks\n" +
		"CLM3001,POL505E,CUST3001,Kiran Das,Approved,2025-05-05,7200,Paid\n"
	if err := os.WriteFile(filepath.Join(dir, "claims.csv"), []byte(claimsCSV), 0o644); err != nil {
		t.Fatalf("write claims.csv: %v", err)
	}

	repo, faqs, phraser, err := buildBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildBackend: %v", err)
	}
	defer repo.Close()
	if phraser != nil {
		t.Fatalf("phraser should be disabled without an api key")
	}
	if faqs.Len() == 0 {
		t.Fatalf("expected builtin faqs")
	}
	claim, err := repo.GetClaim(context.Background(), "CLM1003")
	if err != nil || claim.PolicyHolder != "Sahil Mehta" {
		t.Fatalf("GetClaim = (%+v, %v)", claim, err)
	}
	if _, err := repo.GetPolicy(context.Background(), "POL303C"); err != nil {
		t.Fatalf("sample policy missing: %v", err)
	}
	imported, err := repo.ClaimsByCustomer(context.Background(), "CUST3001")
	if err != nil || len(imported) != 1 || imported[0].ClaimID != "CLM3001" {
		t.Fatalf("imported claims = (%+v, %v)", imported, err)
	}
}
