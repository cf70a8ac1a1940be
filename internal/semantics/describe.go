package semantics

import (
	"strings"

	"github.com/mistkit/mistlens/internal/jsonc"
)

const eventPrefix = "on-"

// Describe returns the one-line description of a node. Scalars describe as
// their literal value. Objects describe by kind from their style, then get
// their event handler keys and a repeat marker prefixed.
func Describe(node *jsonc.Node) string {
	if node == nil {
		return ""
	}
	if node.Type != jsonc.TypeObject {
		return node.Text()
	}

	style := Property(node, "style")
	var desc string
	switch Classify(node) {
	case KindStack:
		wrap := stringOr(style, "wrap")
		if wrap != "wrap" && wrap != "wrap-reverse" {
			wrap = ""
		} else {
			wrap = "[" + wrap + "]"
		}
		desc = joinNonEmpty(" - ", wrap, stringOr(style, "background-color"))
	case KindText:
		desc = quote(firstNonEmpty(stringOr(style, "html-text"), stringOr(style, "text")))
	case KindButton:
		desc = joinNonEmpty(" - ", quote(stringOr(style, "title")), quote(stringOr(style, "image")))
	case KindImage:
		desc = quote(firstNonEmpty(stringOr(style, "image-url"), stringOr(style, "image")))
	case KindScroll:
		desc = stringOr(style, "scroll-direction")
	case KindPaging:
		desc = stringOr(style, "direction")
	case KindIndicator, KindLine:
		desc = stringOr(style, "color")
	case KindImport:
		desc = stringOr(node, "import")
	default:
		desc = stringOr(style, "background-color")
	}

	var repeat string
	if Property(node, "repeat") != nil {
		repeat = "[repeat]"
	}
	return joinNonEmpty(" ", repeat, strings.Join(EventKeys(node), " "), desc)
}

// EventKeys returns the bracketed event handler keys of an object node in
// declaration order.
func EventKeys(node *jsonc.Node) []string {
	if node == nil || node.Type != jsonc.TypeObject {
		return nil
	}
	var events []string
	for _, prop := range node.Children {
		if key, ok := prop.Key(); ok && strings.HasPrefix(key, eventPrefix) {
			events = append(events, "["+key+"]")
		}
	}
	return events
}

func quote(s string) string {
	if s == "" {
		return ""
	}
	return `"` + s + `"`
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
