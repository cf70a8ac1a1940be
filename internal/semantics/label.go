package semantics

import (
	"strings"

	"github.com/mistkit/mistlens/internal/jsonc"
)

const (
	boldLowerBase = 0x1D5EE
	boldUpperBase = 0x1D5D4
	labelSep      = " ∙ "
)

// Stylize maps ASCII letters to the Unicode mathematical bold sans-serif
// block. Other runes are left alone.
func Stylize(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 4)
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			r += boldLowerBase - 'a'
		case r >= 'A' && r <= 'Z':
			r += boldUpperBase - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Unstylize reverses Stylize.
func Unstylize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= boldLowerBase && r < boldLowerBase+26:
			r -= boldLowerBase - 'a'
		case r >= boldUpperBase && r < boldUpperBase+26:
			r -= boldUpperBase - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Label renders the outline label of a node: the stylized kind, followed
// by the description and comment when either is present.
func Label(node *jsonc.Node, text Lines) string {
	label := Stylize(Classify(node).String())
	detail := joinNonEmpty(" ", Describe(node), Comment(node, text))
	if detail == "" {
		return label
	}
	return label + labelSep + detail
}

// IconKey names the icon for a node. Stacks resolve to stack_v or stack_h
// by their style direction.
func IconKey(node *jsonc.Node) string {
	kind := Classify(node)
	if kind != KindStack {
		return kind.String()
	}
	switch stringOr(Property(node, "style"), "direction") {
	case "vertical", "vertical-reverse":
		return "stack_v"
	default:
		return "stack_h"
	}
}
