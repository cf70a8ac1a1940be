package semantics

import (
	"regexp"
	"strings"

	"github.com/mistkit/mistlens/internal/jsonc"
)

// Lines gives line-oriented access to the text a tree was parsed from.
type Lines interface {
	LineAt(line int) string
	LineOf(offset int) int
}

var (
	fullLineSlashComment = regexp.MustCompile(`^\s*//`)
	fullLineBlockComment = regexp.MustCompile(`^\s*/\*.*\*/\s*$`)
	tailSlashComment     = regexp.MustCompile(`//.*$`)
	tailBlockComment     = regexp.MustCompile(`/\*.*\*/\s*$`)
)

// Comment finds the comment attached to node. Candidate lines are the
// node's first line, the line of its first child and the line of its type
// value. For each candidate a comment filling the line above wins over a
// comment trailing the line itself.
func Comment(node *jsonc.Node, text Lines) string {
	if node == nil || text == nil {
		return ""
	}
	for _, line := range commentLines(node, text) {
		if comment := fullLineComment(text, line-1); comment != "" {
			return comment
		}
		if comment := trailingComment(text, line); comment != "" {
			return comment
		}
	}
	return ""
}

func commentLines(node *jsonc.Node, text Lines) []int {
	lines := []int{text.LineOf(node.Offset)}
	if len(node.Children) > 0 {
		lines = append(lines, text.LineOf(node.Children[0].Offset))
	}
	if typeNode := Property(node, "type"); typeNode != nil {
		lines = append(lines, text.LineOf(typeNode.Offset))
	}

	seen := make(map[int]bool, len(lines))
	out := lines[:0]
	for _, line := range lines {
		if seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}

func fullLineComment(text Lines, line int) string {
	if line < 0 {
		return ""
	}
	content := text.LineAt(line)
	if fullLineSlashComment.MatchString(content) || fullLineBlockComment.MatchString(content) {
		return strings.TrimSpace(content)
	}
	return ""
}

func trailingComment(text Lines, line int) string {
	if line < 0 {
		return ""
	}
	content := text.LineAt(line)
	if match := tailSlashComment.FindString(content); match != "" {
		return strings.TrimRight(match, " \t")
	}
	if match := tailBlockComment.FindString(content); match != "" {
		return strings.TrimRight(match, " \t")
	}
	return ""
}
