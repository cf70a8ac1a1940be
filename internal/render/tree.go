package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mistkit/mistlens/internal/jsonc"
	"github.com/mistkit/mistlens/internal/outline"
	"github.com/mistkit/mistlens/internal/symbols"
)

// EntryLine renders one outline entry: glyph, kind, then description and
// comment. Plain ASCII kind names are used instead of the stylized label so
// lipgloss can apply bold.
func EntryLine(theme Theme, entry outline.Entry) string {
	var b strings.Builder
	b.WriteString(theme.Glyph(entry.IconKey).Render())
	b.WriteString(" ")
	b.WriteString(KindStyle.Render(entry.Kind))
	if entry.Description != "" {
		b.WriteString(" ")
		b.WriteString(DetailStyle.Render(entry.Description))
	}
	if entry.Comment != "" {
		b.WriteString(" ")
		b.WriteString(CommentStyle.Render(entry.Comment))
	}
	return b.String()
}

// Tree prints the whole outline of m with box-drawing guides.
func Tree(w io.Writer, m *outline.Model, theme Theme) error {
	roots := m.Roots()
	if len(roots) == 0 {
		_, err := fmt.Fprintln(w, GuideStyle.Render("(no layout)"))
		return err
	}
	for _, root := range roots {
		if err := writeNode(w, m, theme, root, "", "", ""); err != nil {
			return err
		}
	}
	return nil
}

func writeNode(w io.Writer, m *outline.Model, theme Theme, node *jsonc.Node, prefix, branch, childPrefix string) error {
	entry := m.Entry(node)
	line := GuideStyle.Render(prefix+branch) + EntryLine(theme, entry)
	if _, err := fmt.Fprintf(w, "%s %s\n", line, GuideStyle.Render(fmt.Sprintf(":%d", entry.Range.Start.Line+1))); err != nil {
		return err
	}

	children := m.Children(node)
	for i, child := range children {
		nextBranch, nextChild := "├── ", "│   "
		if i == len(children)-1 {
			nextBranch, nextChild = "└── ", "    "
		}
		if err := writeNode(w, m, theme, child, prefix+childPrefix, nextBranch, nextChild); err != nil {
			return err
		}
	}
	return nil
}

// Symbols prints a symbol list, one per line, indented by depth.
func Symbols(w io.Writer, path string, syms []symbols.Symbol) error {
	if path != "" {
		if _, err := fmt.Fprintln(w, PathStyle.Render(path)); err != nil {
			return err
		}
	}
	for _, sym := range syms {
		_, err := fmt.Fprintf(w, "%s%-8s %s %s %s\n",
			strings.Repeat("  ", sym.Depth()+1),
			symbols.KindName(sym.Kind),
			sym.Title(),
			ContainerStyle.Render(sym.Container),
			GuideStyle.Render(fmt.Sprintf(":%d:%d", sym.Position.Line+1, sym.Position.Character+1)),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
