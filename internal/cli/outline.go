package cli

import (
	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"

	"github.com/mistkit/mistlens/internal/fileutil"
	"github.com/mistkit/mistlens/internal/jsonc"
	"github.com/mistkit/mistlens/internal/outline"
	"github.com/mistkit/mistlens/internal/render"
	"github.com/mistkit/mistlens/internal/workspace"
)

type outlineNode struct {
	outline.Entry
	Children []outlineNode `json:"children,omitempty"`
}

type outlineOutput struct {
	URI   protocol.DocumentURI `json:"uri"`
	State string               `json:"state"`
	Roots []outlineNode        `json:"roots"`
}

func RunOutline(cmd *cobra.Command, args []string) error {
	ctx, cfg := commandContext(cmd)
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	doc, err := workspace.Load(args[0], cfg.LanguageID)
	if err != nil {
		return err
	}
	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	store.Open(doc)
	store.SetActive(doc.URI)

	model := outline.New(cfg.LanguageID, outline.WithHost(store), outline.WithResolver(store))
	model.Refresh()

	if asJSON {
		return fileutil.PrintJSON(cmd.OutOrStdout(), outlineOutput{
			URI:   doc.URI,
			State: model.State().String(),
			Roots: outlineNodes(model, model.Roots()),
		})
	}
	return render.Tree(cmd.OutOrStdout(), model, themeFor(cfg))
}

func outlineNodes(model *outline.Model, nodes []*jsonc.Node) []outlineNode {
	out := make([]outlineNode, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, outlineNode{
			Entry:    model.Entry(node),
			Children: outlineNodes(model, model.Children(node)),
		})
	}
	return out
}
