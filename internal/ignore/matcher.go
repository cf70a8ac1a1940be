// Package ignore decides which paths a workspace scan skips, using
// gitignore-style rules.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// FileName is the per-project rules file read by Load.
const FileName = ".mistignore"

// DefaultRules are applied before user rules, so a user negation can
// re-include them.
var DefaultRules = []string{
	".git/",
	".mistlens/",
	"node_modules/",
	"Pods/",
	"DerivedData/",
	"build/",
	"dist/",
}

type rule struct {
	pattern  string
	negated  bool
	dirOnly  bool
	anchored bool
	nested   bool
	re       *regexp.Regexp
}

// Matcher applies gitignore-like rules. The last matching rule wins.
type Matcher struct {
	rules []rule
}

// NewMatcher builds a matcher from DefaultRules followed by userRules.
// Blank lines and # comments are skipped.
func NewMatcher(userRules []string) *Matcher {
	m := &Matcher{}
	for _, line := range append(append([]string{}, DefaultRules...), userRules...) {
		if parsed, ok := parseRule(line); ok {
			m.rules = append(m.rules, parsed)
		}
	}
	return m
}

// Load reads FileName under root and combines it with extra rules. A
// missing file is not an error.
func Load(root string, extra []string) (*Matcher, error) {
	rules, err := ReadRules(filepath.Join(root, FileName))
	if err != nil {
		return nil, err
	}
	return NewMatcher(append(rules, extra...)), nil
}

// ReadRules returns the non-empty, non-comment lines of a rules file.
func ReadRules(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var rules []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return rules, nil
}

// ShouldIgnore reports whether relPath, relative to the scan root, is
// excluded.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	relPath = normalizePath(relPath)
	ignored := false
	for _, r := range m.rules {
		if r.matches(relPath, isDir) {
			ignored = !r.negated
		}
	}
	return ignored
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	var r rule
	if strings.HasPrefix(line, "!") {
		r.negated = true
		line = line[1:]
	}
	if strings.HasPrefix(line, "/") {
		r.anchored = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	line = normalizePath(line)
	if line == "" {
		return rule{}, false
	}
	r.pattern = line
	r.nested = strings.Contains(line, "/")
	r.re = regexp.MustCompile("^" + globToRegex(line) + "$")
	return r, true
}

func (r rule) matches(relPath string, isDir bool) bool {
	segments := strings.Split(relPath, "/")

	if r.dirOnly {
		if r.anchored {
			return relPath == r.pattern || strings.HasPrefix(relPath, r.pattern+"/")
		}
		for i := range segments {
			if r.re.MatchString(strings.Join(segments[:i+1], "/")) {
				return i < len(segments)-1 || isDir
			}
			if !r.nested && r.re.MatchString(segments[i]) {
				return i < len(segments)-1 || isDir
			}
		}
		return false
	}

	if r.anchored {
		return r.re.MatchString(relPath)
	}
	if r.nested {
		for i := range segments {
			if r.re.MatchString(strings.Join(segments[i:], "/")) {
				return true
			}
		}
		return false
	}
	for _, segment := range segments {
		if r.re.MatchString(segment) {
			return true
		}
	}
	return false
}

func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			b.WriteString(".*")
			i++
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	return b.String()
}

func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	return strings.TrimPrefix(path, "/")
}
