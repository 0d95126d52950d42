package shell

import "testing"

func TestMatchCommandClass_TokenBoundary(t *testing.T) {
	tests := []struct {
		command string
		class   string
		want    bool
	}{
		{command: "git status", class: "version-control", want: true},
		{command: "git", class: "version-control", want: true},
		{command: "gitattack --now", want: false},
		{command: "npm install", class: "package-manager", want: true},
		{command: "pytest -q tests/x.py", class: "test-runner", want: true},
		{command: "pytest-evil", want: false},
		{command: "ls -la", class: "read-only-utility", want: true},
		{command: "echo hello", class: "read-only-utility", want: true},
		{command: "rm -rf /", want: false},
		{command: "curl http://example.com", want: false},
		{command: "", want: false},
		{command: "   ", want: false},
	}

	for _, tt := range tests {
		class, ok := MatchCommandClass(tt.command)
		if ok != tt.want {
			t.Errorf("MatchCommandClass(%q) matched=%v, want %v", tt.command, ok, tt.want)
			continue
		}
		if ok && class.Name != tt.class {
			t.Errorf("MatchCommandClass(%q) class=%q, want %q", tt.command, class.Name, tt.class)
		}
	}
}

func TestShellControlReason_OperatorsOutsideQuotes(t *testing.T) {
	tests := []struct {
		command string
		want    bool
	}{
		{command: "git status", want: false},
		{command: "git status; rm -rf /", want: true},
		{command: "ls && rm x", want: true},
		{command: "cat a > b", want: true},
		{command: "ls | wc -l", want: true},
		{command: "git log $(whoami)", want: true},
		{command: "git log `whoami`", want: true},
		{command: "git commit -m 'fix; cleanup'", want: false},
		{command: `git commit -m "note: $(date)"`, want: true},
		{command: `grep -r "plain text" .`, want: false},
	}

	for _, tt := range tests {
		_, found := shellControlReason(tt.command)
		if found != tt.want {
			t.Errorf("shellControlReason(%q) found=%v, want %v", tt.command, found, tt.want)
		}
	}
}

func TestCommandClasses_ReturnsCopy(t *testing.T) {
	classes := CommandClasses()
	if len(classes) == 0 {
		t.Fatal("expected compiled-in command classes")
	}
	classes[0].Name = "mutated"

	if commandClasses[0].Name == "mutated" {
		t.Fatal("expected CommandClasses to return a copy")
	}
}
