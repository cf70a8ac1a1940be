package cli

import (
	"context"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/mistkit/mistlens/internal/config"
	"github.com/mistkit/mistlens/internal/document"
	"github.com/mistkit/mistlens/internal/ignore"
	"github.com/mistkit/mistlens/internal/jsonc"
	"github.com/mistkit/mistlens/internal/render"
	"github.com/mistkit/mistlens/internal/workspace"
)

// newStore builds a document store whose parse issues are logged as
// warnings.
func newStore(ctx context.Context, cfg *config.Config) (*document.Store, error) {
	return document.NewStore(cfg.LanguageID, cfg.CacheSize, document.SinkFunc(func(doc *document.Document, issues []jsonc.Issue) {
		for _, issue := range issues {
			pos := doc.PositionAt(issue.Offset)
			slogctx.Warn(ctx, "json parse error",
				"uri", doc.URI,
				"line", pos.Line+1,
				"column", pos.Character+1,
				"message", issue.Message,
			)
		}
	}))
}

func themeFor(cfg *config.Config) render.Theme {
	return render.DefaultTheme().WithOverrides(cfg.Icons)
}

// scanWorkspace scans target, a template or a directory of templates,
// with the ignore rules of the directory it lives in.
func scanWorkspace(cmd *cobra.Command, target string, quiet bool) (*workspace.Result, error) {
	ctx, cfg := commandContext(cmd)
	root, err := projectRoot(target)
	if err != nil {
		return nil, err
	}
	matcher, err := ignore.Load(root, cfg.Ignore)
	if err != nil {
		return nil, err
	}

	progress := newScanProgressReporter(cmd.ErrOrStderr(), "scan", quiet)
	scanner := workspace.NewScanner(workspace.Options{
		LanguageID: cfg.LanguageID,
		Extensions: cfg.Extensions,
		Ignore:     matcher,
		Progress:   progress.Update,
	})
	result, err := scanner.Scan(ctx, target)
	if err != nil {
		return nil, err
	}
	progress.Done(len(result.Files))
	ReportScanIssues(ctx, result)
	return result, nil
}

func ReportScanIssues(ctx context.Context, result *workspace.Result) {
	for _, issue := range result.Issues {
		slogctx.Warn(ctx, "Scan issue", "file", issue.File, "severity", issue.Severity, "message", issue.Message)
	}
	for _, file := range result.Files {
		for _, issue := range file.Issues {
			slogctx.Warn(ctx, "json parse error", "file", file.Path, "offset", issue.Offset, "message", issue.Message)
		}
	}
}
