package edit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PartialError reports a multi-file edit that failed partway. Files in
// Applied were already mutated and are not rolled back; callers must
// surface this distinctly from a clean failure.
type PartialError struct {
	Applied []string
	Failed  string
	Err     error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("edit applied to %d file(s) then failed at %q: %v", len(e.Applied), e.Failed, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

// Report summarizes a completed edit.
type Report struct {
	Applied []string
	Created []string
}

// Applier appends one sanitized annotation line per file, creating
// missing parents. Operations are sequential and not transactional.
type Applier struct{}

// NewApplier builds a stateless applier.
func NewApplier() Applier {
	return Applier{}
}

// Apply annotates each file in order under workspaceRoot. Absent files
// are treated as empty and created. When file k fails, files 1..k-1 stay
// mutated and the error is a *PartialError naming them.
func (a Applier) Apply(ctx context.Context, workspaceRoot string, files []string, note string) (Report, error) {
	if len(files) == 0 {
		return Report{}, fmt.Errorf("no files to edit")
	}

	var report Report
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, a.failure(report, file, err)
		}
		created, err := a.applyOne(workspaceRoot, file, note)
		if err != nil {
			return report, a.failure(report, file, err)
		}
		report.Applied = append(report.Applied, file)
		if created {
			report.Created = append(report.Created, file)
		}
	}
	return report, nil
}

func (a Applier) failure(report Report, file string, err error) error {
	if len(report.Applied) == 0 {
		return fmt.Errorf("edit %q: %w", file, err)
	}
	return &PartialError{
		Applied: append([]string(nil), report.Applied...),
		Failed:  file,
		Err:     err,
	}
}

func (a Applier) applyOne(workspaceRoot, file, note string) (created bool, err error) {
	path, err := resolveUnderRoot(workspaceRoot, file)
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("create parent directories: %w", err)
	}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
	case os.IsNotExist(err):
		created = true
	default:
		return false, fmt.Errorf("read file: %w", err)
	}

	content := string(existing)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += annotationLine(file, note) + "\n"

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("write file: %w", err)
	}
	return created, nil
}

// resolveUnderRoot resolves file against the workspace root and rejects
// paths that escape it.
func resolveUnderRoot(workspaceRoot, file string) (string, error) {
	root, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return "", fmt.Errorf("resolve workspace root: %w", err)
	}
	root = filepath.Clean(root)

	candidate := file
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(root, candidate)
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	abs = filepath.Clean(abs)

	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside workspace %q", file, root)
	}
	return abs, nil
}

// annotationLine wraps the sanitized note in the comment syntax matching
// the file extension.
func annotationLine(file, note string) string {
	note = sanitizeNote(note)
	var line string
	switch strings.ToLower(filepath.Ext(file)) {
	case ".py", ".rb", ".sh", ".bash", ".yml", ".yaml", ".toml", ".mk":
		line = "# " + note
	case ".sql", ".lua":
		line = "-- " + note
	case ".html", ".htm", ".xml", ".md", ".svg":
		line = "<!-- " + note + " -->"
	case ".css":
		line = "/* " + note + " */"
	default:
		line = "// " + note
	}
	return strings.TrimRight(line, " ")
}

// sanitizeNote collapses newlines to spaces and strips comment
// terminator sequences so free text cannot break out of the host file's
// comment syntax.
func sanitizeNote(note string) string {
	note = strings.ReplaceAll(note, "\r\n", " ")
	note = strings.ReplaceAll(note, "\n", " ")
	note = strings.ReplaceAll(note, "\r", " ")
	note = strings.ReplaceAll(note, "*/", "")
	note = strings.ReplaceAll(note, "-->", "")
	return strings.TrimSpace(note)
}
