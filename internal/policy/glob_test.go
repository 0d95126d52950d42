package policy

import "testing"

func TestCompileGlob_DoubleStarSpansSegments(t *testing.T) {
	tests := []struct {
		pattern   string
		candidate string
		want      bool
	}{
		{pattern: "src/**/*.ts", candidate: "src/a/b/c.ts", want: true},
		{pattern: "src/**/*.ts", candidate: "src/a.ts", want: true},
		{pattern: "src/**/*.ts", candidate: "lib/a.ts", want: false},
		{pattern: "**/*.go", candidate: "main.go", want: true},
		{pattern: "**/*.go", candidate: "internal/pkg/main.go", want: true},
		{pattern: "docs/**", candidate: "docs/guide/intro.md", want: true},
		{pattern: "docs/**", candidate: "docs", want: false},
	}

	for _, tt := range tests {
		m := CompileGlob(tt.pattern)
		if got := m.Match(tt.candidate); got != tt.want {
			t.Errorf("CompileGlob(%q).Match(%q) = %v, want %v", tt.pattern, tt.candidate, got, tt.want)
		}
	}
}

func TestCompileGlob_SingleStarStaysInSegment(t *testing.T) {
	m := CompileGlob("src/*.ts")

	if !m.Match("src/a.ts") {
		t.Fatal("expected src/a.ts to match src/*.ts")
	}
	if m.Match("src/a/b.ts") {
		t.Fatal("expected src/a/b.ts not to match src/*.ts")
	}
}

func TestCompileGlob_QuestionMarkMatchesOneNonSeparator(t *testing.T) {
	m := CompileGlob("file?.txt")

	if !m.Match("file1.txt") {
		t.Fatal("expected file1.txt to match file?.txt")
	}
	if m.Match("file.txt") {
		t.Fatal("expected file.txt not to match file?.txt")
	}
	if m.Match("file/.txt") {
		t.Fatal("expected file/.txt not to match file?.txt")
	}
}

func TestCompileGlob_MetacharactersAreLiteral(t *testing.T) {
	m := CompileGlob("a.b")

	if !m.Match("a.b") {
		t.Fatal("expected literal a.b to match")
	}
	if m.Match("axb") {
		t.Fatal("expected dot to match only a literal dot")
	}

	m = CompileGlob("cfg[0]")
	if !m.Match("cfg[0]") {
		t.Fatal("expected brackets to match literally")
	}
}

func TestCompileGlob_EmptyPatternMatchesOnlyEmptyString(t *testing.T) {
	m := CompileGlob("")

	if !m.Match("") {
		t.Fatal("expected empty pattern to match empty string")
	}
	if m.Match("a") {
		t.Fatal("expected empty pattern not to match non-empty string")
	}
}

func TestCompileGlob_CaseSensitive(t *testing.T) {
	m := CompileGlob("README.md")

	if m.Match("readme.md") {
		t.Fatal("expected matching to be case-sensitive")
	}
}

func TestCompileGlob_ZeroValueMatcherMatchesNothing(t *testing.T) {
	var m Matcher

	if m.Match("") || m.Match("anything") {
		t.Fatal("expected zero-value matcher to match nothing")
	}
}
