package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Evaluator decides whether a proposed command or file mutation is
// permitted by the workspace policy document.
//
// The document is re-read on every call so decisions always reflect the
// current on-disk state. Any failure to locate, read, or parse the
// document denies the action; an unreadable policy never grants more
// than an empty one would.
type Evaluator struct{}

// NewEvaluator builds a deterministic, side-effect free evaluator.
func NewEvaluator() Evaluator {
	return Evaluator{}
}

// Evaluate returns the decision for the given input. The result is a pure
// function of the document contents, the command, and the file list.
func (e Evaluator) Evaluate(input Input) Decision {
	doc, err := LoadDocument(input.WorkspaceRoot)
	if err != nil {
		return Decision{Reason: fmt.Sprintf("policy unavailable, denying action: %v", err)}
	}

	if command := strings.TrimSpace(input.Command); command != "" {
		if d := evaluateCommand(doc, command); !d.Allowed {
			return d
		}
	}

	if len(input.Files) > 0 {
		if d := evaluateFiles(doc, input.Files); !d.Allowed {
			return d
		}
	}

	return Decision{Allowed: true}
}

// LoadDocument reads the policy file under the workspace root. Every
// failure path is an error; evaluating callers treat errors as denial.
func LoadDocument(workspaceRoot string) (Document, error) {
	root := strings.TrimSpace(workspaceRoot)
	if root == "" {
		return Document{}, fmt.Errorf("workspace root is required")
	}

	info, err := os.Stat(root)
	if err != nil {
		return Document{}, fmt.Errorf("stat workspace root: %w", err)
	}
	if !info.IsDir() {
		return Document{}, fmt.Errorf("workspace root %q is not a directory", root)
	}

	data, err := os.ReadFile(filepath.Join(root, DocumentFileName))
	if err != nil {
		return Document{}, fmt.Errorf("read policy document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse policy document: %w", err)
	}
	return doc, nil
}

func evaluateCommand(doc Document, command string) Decision {
	for _, entry := range doc.Deny.Commands {
		if entry == "" {
			continue
		}
		if strings.HasPrefix(command, entry) {
			return Decision{Reason: fmt.Sprintf("command matches denied prefix %q", entry)}
		}
	}

	if len(doc.Allow.Commands) == 0 {
		return Decision{Allowed: true}
	}

	for _, entry := range doc.Allow.Commands {
		if allowEntryMatches(entry, command) {
			return Decision{Allowed: true}
		}
	}
	return Decision{Reason: "command does not match any allowed command"}
}

func evaluateFiles(doc Document, files []string) Decision {
	if len(doc.Allow.Paths) == 0 {
		return Decision{Allowed: true}
	}

	matchers := make([]Matcher, 0, len(doc.Allow.Paths))
	for _, pattern := range doc.Allow.Paths {
		matchers = append(matchers, CompileGlob(pattern))
	}

	for _, file := range files {
		candidate := filepath.ToSlash(file)
		matched := false
		for _, m := range matchers {
			if m.Match(candidate) {
				matched = true
				break
			}
		}
		if !matched {
			return Decision{Reason: fmt.Sprintf("path %q does not match any allowed path pattern", file)}
		}
	}
	return Decision{Allowed: true}
}

// allowEntryMatches applies allow-list entries with a token boundary: an
// entry "git" covers "git push" but not "gitattack". An entry with a
// trailing space keeps literal prefix semantics. Deny entries stay plain
// prefixes so denials never narrow.
func allowEntryMatches(entry, command string) bool {
	if entry == "" {
		return false
	}
	if strings.HasSuffix(entry, " ") {
		return strings.HasPrefix(command, entry)
	}
	if !strings.HasPrefix(command, entry) {
		return false
	}
	if len(command) == len(entry) {
		return true
	}
	return command[len(entry)] == ' '
}
