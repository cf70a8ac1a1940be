package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"

	"github.com/mistkit/mistlens/internal/fileutil"
	"github.com/mistkit/mistlens/internal/render"
	"github.com/mistkit/mistlens/internal/search"
)

func RunFind(cmd *cobra.Command, args []string) error {
	ctx, _ := commandContext(cmd)
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return errors.Errorf("failed to read --limit flag: %w", err)
	}
	if limit <= 0 {
		return errors.New("--limit must be > 0")
	}
	useIndex, err := OptionalBoolFlag(cmd, "index")
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	query := args[0]
	target := "."
	if len(args) > 1 {
		target = args[1]
	}

	var index *search.Index
	if useIndex {
		root, err := projectRoot(target)
		if err != nil {
			return err
		}
		index, err = search.Load(root)
		if err != nil {
			return err
		}
		slogctx.Debug(ctx, "Loaded search index", "root", root, "documents", index.DocumentCount)
	} else {
		result, err := scanWorkspace(cmd, target, asJSON)
		if err != nil {
			return err
		}
		index = search.Build(result.Sources())
	}

	hits := search.Search(index, query, limit)
	out := cmd.OutOrStdout()
	if asJSON {
		if hits == nil {
			hits = []search.Result{}
		}
		return fileutil.PrintJSON(out, hits)
	}
	if len(hits) == 0 {
		_, err := fmt.Fprintf(out, "no matches for %q\n", query)
		return err
	}
	for _, hit := range hits {
		doc := hit.Document
		_, err := fmt.Fprintf(out, "%s %-8s %s %s\n",
			render.PathStyle.Render(fmt.Sprintf("%s:%d:%d", doc.File, doc.Line, doc.Column)),
			doc.Kind,
			doc.Name,
			render.ContainerStyle.Render(doc.Container),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func RunIndex(cmd *cobra.Command, args []string) error {
	ctx, _ := commandContext(cmd)
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	root, err := projectRoot(target)
	if err != nil {
		return err
	}

	result, err := scanWorkspace(cmd, root, false)
	if err != nil {
		return err
	}
	index := search.Build(result.Sources())
	changed, err := search.Write(root, index)
	if err != nil {
		return err
	}
	slogctx.Info(ctx, "Search index written", "root", root, "changed", changed)

	status := "updated"
	if !changed {
		status = "unchanged"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d symbols from %d files (%s)\n", index.DocumentCount, len(result.Files), status)
	return err
}
