package main

import (
	"reflect"
	"testing"
)

func TestParseRootArgsAllowsUnknownFlags(t *testing.T) {
	orig := []string{"--prompt", "claim CLM1001"}
	root, rest, err := parseRootArgs(orig)
	if err != nil {
		t.Fatalf("parseRootArgs returned error: %v", err)
	}
	if len(root.overrides) != 0 {
		t.Fatalf("expected no overrides, got %v", root.overrides)
	}
	if !reflect.DeepEqual(rest, orig) {
		t.Fatalf("expected rest to preserve args %v, got %v", orig, rest)
	}
}

func TestParseRootArgsExtractsOverrides(t *testing.T) {
	args := []string{"-c", "api_url=http://127.0.0.1:9000/chat", "-c", "markdown=false", "serve", "-listen", ":9000"}
	root, rest, err := parseRootArgs(args)
	if err != nil {
		t.Fatalf("parseRootArgs returned error: %v", err)
	}
	want := []string{"api_url=http://127.0.0.1:9000/chat", "markdown=false"}
	if !reflect.DeepEqual(root.overrides, want) {
		t.Fatalf("unexpected overrides: got %v, want %v", root.overrides, want)
	}
	if !reflect.DeepEqual(rest, []string{"serve", "-listen", ":9000"}) {
		t.Fatalf("unexpected rest args: %v", rest)
	}
}

func TestParseRootArgsPassesWidgetFlagsThrough(t *testing.T) {
	cases := [][]string{
		{"--url", "http://127.0.0.1:9000/chat"},
		{"--no-markdown"},
		{"--copyable-output", "--prompt", "hi"},
		{"-c", "markdown=false", "--url", "http://127.0.0.1:9000/chat"},
	}
	for _, args := range cases {
		root, rest, err := parseRootArgs(args)
		if err != nil {
			t.Fatalf("parseRootArgs(%v) returned error: %v", args, err)
		}
		want := args
		if args[0] == "-c" {
			want = args[2:]
			if !reflect.DeepEqual(root.overrides, []string{"markdown=false"}) {
				t.Fatalf("overrides = %v", root.overrides)
			}
		}
		if !reflect.DeepEqual(rest, want) {
			t.Fatalf("parseRootArgs(%v) rest = %v, want %v", args, rest, want)
		}
	}
}

func TestParseRootArgsInlineValues(t *testing.T) {
	root, rest, err := parseRootArgs([]string{"-c=api_url=http://x/chat", "--c", "markdown=true", "ping"})
	if err != nil {
		t.Fatalf("parseRootArgs returned error: %v", err)
	}
	if !reflect.DeepEqual(root.overrides, []string{"api_url=http://x/chat", "markdown=true"}) {
		t.Fatalf("overrides = %v", root.overrides)
	}
	if !reflect.DeepEqual(rest, []string{"ping"}) {
		t.Fatalf("rest = %v", rest)
	}
}

func TestParseRootArgsMissingValue(t *testing.T) {
	if _, _, err := parseRootArgs([]string{"-c"}); err == nil {
		t.Fatalf("expected error for -c without a value")
	}
}

func TestPrependOverridesKeepsOrder(t *testing.T) {
	got := prependOverrides([]string{"a=1"}, []string{"a=2"})
	if !reflect.DeepEqual(got, []string{"a=1", "a=2"}) {
		t.Fatalf("got %v", got)
	}
}
