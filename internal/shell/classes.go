package shell

import (
	"fmt"
	"strings"
)

// CommandClass is one compiled-in category of shell command permitted to
// run at all, independent of the workspace policy. The set is a closed
// constant, never loaded from configuration.
type CommandClass struct {
	Name     string
	Prefixes []string
}

var commandClasses = []CommandClass{
	{
		Name:     "version-control",
		Prefixes: []string{"git", "hg", "svn"},
	},
	{
		Name:     "package-manager",
		Prefixes: []string{"npm", "pnpm", "yarn", "pip", "pip3", "go", "cargo", "brew", "bundle"},
	},
	{
		Name:     "test-runner",
		Prefixes: []string{"pytest", "jest", "vitest", "rspec", "tox"},
	},
	{
		Name:     "read-only-utility",
		Prefixes: []string{"ls", "cat", "head", "tail", "grep", "find", "wc", "pwd", "echo", "which", "du", "df", "ps", "stat", "file", "lsof"},
	},
}

// CommandClasses returns a copy of the compiled-in class table.
func CommandClasses() []CommandClass {
	out := make([]CommandClass, len(commandClasses))
	copy(out, commandClasses)
	return out
}

// MatchCommandClass returns the class covering the command, if any.
// Matching is case-sensitive and token-boundary aware: the prefix "git"
// covers "git push" but not "gitattack".
func MatchCommandClass(command string) (CommandClass, bool) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return CommandClass{}, false
	}

	for _, class := range commandClasses {
		for _, prefix := range class.Prefixes {
			want := strings.Fields(prefix)
			if len(want) == 0 || len(want) > len(fields) {
				continue
			}
			matched := true
			for i, token := range want {
				if fields[i] != token {
					matched = false
					break
				}
			}
			if matched {
				return class, true
			}
		}
	}
	return CommandClass{}, false
}

// shellControlReason scans for operators that would chain, redirect, or
// substitute beyond the whitelisted program. Single-quoted text is
// literal; double quotes still expand `$` and backticks, so those stay
// forbidden inside them.
func shellControlReason(command string) (string, bool) {
	var inSingle, inDouble bool
	for i := 0; i < len(command); i++ {
		c := command[i]
		switch {
		case inSingle:
			if c == '\'' {
				inSingle = false
			}
		case inDouble:
			switch c {
			case '"':
				inDouble = false
			case '$', '`':
				return fmt.Sprintf("substitution operator %q inside double quotes", string(c)), true
			}
		default:
			switch c {
			case '\'':
				inSingle = true
			case '"':
				inDouble = true
			case ';', '&', '|', '<', '>', '`', '$', '(', ')', '\n':
				return fmt.Sprintf("shell control operator %q", string(c)), true
			}
		}
	}
	return "", false
}
