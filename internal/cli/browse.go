package cli

import (
	"github.com/spf13/cobra"

	"github.com/mistkit/mistlens/internal/browse"
	"github.com/mistkit/mistlens/internal/document"
	"github.com/mistkit/mistlens/internal/lsp"
	"github.com/mistkit/mistlens/internal/workspace"
)

// fileLoader rereads path on every call and numbers the snapshots.
func fileLoader(path, languageID string) browse.Loader {
	var version int32
	return func() (*document.Document, error) {
		doc, err := workspace.Load(path, languageID)
		if err != nil {
			return nil, err
		}
		version++
		return document.New(doc.URI, doc.LanguageID, version, doc.Text), nil
	}
}

func RunBrowse(cmd *cobra.Command, args []string) error {
	ctx, cfg := commandContext(cmd)
	// No sink: log lines would draw over the alternate screen.
	store, err := document.NewStore(cfg.LanguageID, cfg.CacheSize, nil)
	if err != nil {
		return err
	}
	return browse.Run(ctx, browse.New(store, fileLoader(args[0], cfg.LanguageID), themeFor(cfg)))
}

func RunServe(cmd *cobra.Command, version string) error {
	ctx, cfg := commandContext(cmd)
	srv, err := lsp.NewServer(lsp.Options{
		LanguageID: cfg.LanguageID,
		CacheSize:  cfg.CacheSize,
		Version:    version,
	})
	if err != nil {
		return err
	}
	return srv.Serve(ctx, lsp.Stdio())
}
