package policy

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Matcher tests candidate paths against one compiled glob pattern.
type Matcher struct {
	re *regexp.Regexp
}

// CompileGlob compiles a glob pattern into a Matcher. Every string is a
// valid pattern; compilation never fails.
//
// Semantics: `**` matches any characters including path separators, `*`
// matches any characters except the separator, `?` matches exactly one
// non-separator character. Everything else is literal, including regexp
// metacharacters. A `**/` that forms a whole segment also matches zero
// segments, so "src/**/*.ts" covers "src/a.ts" as well as "src/a/b.ts".
// Matching is case-sensitive; the empty pattern matches only the empty
// string.
func CompileGlob(pattern string) Matcher {
	var b strings.Builder
	b.WriteString("^")

	atSegmentStart := true
	i := 0
	for i < len(pattern) {
		switch pattern[i] {
		case '*':
			j := i
			for j < len(pattern) && pattern[j] == '*' {
				j++
			}
			if j-i >= 2 {
				if atSegmentStart && j < len(pattern) && pattern[j] == '/' {
					// whole "**/" segment: zero or more directories
					b.WriteString("(?:.*/)?")
					j++
				} else {
					b.WriteString(".*")
					atSegmentStart = false
				}
			} else {
				b.WriteString("[^/]*")
				atSegmentStart = false
			}
			i = j
		case '?':
			b.WriteString("[^/]")
			atSegmentStart = false
			i++
		case '/':
			b.WriteByte('/')
			atSegmentStart = true
			i++
		default:
			_, size := utf8.DecodeRuneInString(pattern[i:])
			b.WriteString(regexp.QuoteMeta(pattern[i : i+size]))
			atSegmentStart = false
			i += size
		}
	}

	b.WriteString("$")
	return Matcher{re: regexp.MustCompile(b.String())}
}

// Match reports whether the candidate matches the compiled pattern.
func (m Matcher) Match(candidate string) bool {
	if m.re == nil {
		return false
	}
	return m.re.MatchString(candidate)
}
