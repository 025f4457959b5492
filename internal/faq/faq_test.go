package faq

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltinLoads(t *testing.T) {
	idx := Builtin()
	if idx.Len() == 0 {
		t.Fatalf("builtin faqs empty")
	}
}

func TestLookup(t *testing.T) {
	idx := Builtin()
	cases := []struct {
		query string
		want  string
	}{
		{"renew my policy", "How do I renew my policy?"},
		{"which documents are required?", "What documents are required for a claim?"},
		{"what's a deductible", "What is a deductible?"},
		{"claim processing time", "How long does claim processing take?"},
	}
	for _, tc := range cases {
		got, ok := idx.Lookup(tc.query)
		if !ok {
			t.Fatalf("Lookup(%q) found nothing", tc.query)
		}
		if got.Question != tc.want {
			t.Fatalf("Lookup(%q) = %q, want %q", tc.query, got.Question, tc.want)
		}
	}
}

func TestLookupMiss(t *testing.T) {
	idx := Builtin()
	for _, q := range []string{"", "   ", "zzz qqq xxx", "ok", "what's the status of my claim?", "claim 1001"} {
		if got, ok := idx.Lookup(q); ok {
			t.Fatalf("Lookup(%q) unexpectedly matched %q", q, got.Question)
		}
	}
}

func TestParseRequiresColumns(t *testing.T) {
	if _, err := Parse(strings.NewReader("Q,A\nx,y\n")); err == nil {
		t.Fatalf("expected error for missing columns")
	}
	entries, err := Parse(strings.NewReader("Answer,Question\nyes,Is it covered?\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 1 || entries[0].Question != "Is it covered?" || entries[0].Answer != "yes" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestLoadFileAndMissingFallsBack(t *testing.T) {
	dir := t.TempDir()
	idx, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("Load missing: %v", err)
	}
	if idx.Len() != Builtin().Len() {
		t.Fatalf("missing file should fall back to builtin faqs")
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("Question,Answer\nDo you cover floods?,Only with the flood add-on.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	idx, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := idx.Lookup("floods")
	if !ok || got.Answer != "Only with the flood add-on." {
		t.Fatalf("Lookup = (%+v, %v)", got, ok)
	}
}
