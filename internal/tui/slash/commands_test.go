package slash

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		input  string
		want   Command
		args   int
		wantOK bool
	}{
		{"/clear", CommandClear, 0, true},
		{"  /COPY  ", CommandCopy, 0, true},
		{"/exit", CommandQuit, 0, true},
		{"/status now", CommandStatus, 1, true},
		{"/unknown", Command("unknown"), 0, false},
		{"hello", "", 0, false},
	}
	for _, tc := range cases {
		got, args, ok := Parse(tc.input)
		if got != tc.want || ok != tc.wantOK || len(args) != tc.args {
			t.Errorf("Parse(%q) = (%q, %v, %v), want (%q, %d args, %v)", tc.input, got, args, ok, tc.want, tc.args, tc.wantOK)
		}
	}
}

func TestIsCommand(t *testing.T) {
	if !IsCommand(" /help") {
		t.Fatalf("IsCommand(/help) = false")
	}
	if IsCommand("status of CLM1001") {
		t.Fatalf("plain text treated as command")
	}
}

func TestSuggest(t *testing.T) {
	if got := Suggest("/"); len(got) != len(Builtins()) {
		t.Fatalf("Suggest(/) = %d items, want all", len(got))
	}
	got := Suggest("/cl")
	if len(got) == 0 || got[0].Command != CommandClear {
		t.Fatalf("Suggest(/cl) = %+v, want clear first", got)
	}
	if got := Suggest("/zzz"); len(got) != 0 {
		t.Fatalf("Suggest(/zzz) = %+v, want none", got)
	}
}
