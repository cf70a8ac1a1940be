package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mistlens",
		Short: "Outline, index and browse mist UI templates",
		Long: `Mistlens reads mist templates (JSON with comments) and recovers their
layout tree: which component each node is, a one-line description of it
and the comment that belongs to it.

It prints outlines and symbol lists, searches a workspace, browses an
outline in the terminal and serves all of it to editors over LSP.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./"+configFileHint+")")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored log output")

	// Inspect Commands
	outlineCmd := &cobra.Command{
		Use:   "outline <file>",
		Short: "Print the layout outline of a template",
		Args:  cobra.ExactArgs(1),
		RunE:  RunOutline,
	}
	outlineCmd.Flags().Bool("json", false, "Print the outline as JSON")

	symbolsCmd := &cobra.Command{
		Use:   "symbols [file|dir]",
		Short: "List the symbols of a template or of every template under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunSymbols,
	}
	symbolsCmd.Flags().String("format", string(FormatText), "Output format: text|jsonl|json")

	// Search Commands
	findCmd := &cobra.Command{
		Use:   "find <query> [path]",
		Short: "Search template symbols by name, description or path",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  RunFind,
	}
	findCmd.Flags().Int("limit", 10, "Maximum number of matches to return")
	findCmd.Flags().Bool("index", false, "Search the index written by 'mistlens index' instead of rescanning")
	findCmd.Flags().Bool("json", false, "Print machine-readable matches")

	indexCmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Write the search index to .mistlens/",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunIndex,
	}

	// Interactive Commands
	browseCmd := &cobra.Command{
		Use:   "browse <file>",
		Short: "Browse the outline of a template in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  RunBrowse,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the language server on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunServe(cmd, version)
		},
	}

	// Additional Commands
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create " + configFileHint + " and .mistignore in a project",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunInit,
	}

	installHookCmd := &cobra.Command{
		Use:   "install-hook",
		Short: "Install a git pre-commit hook that refreshes the search index",
		Args:  cobra.NoArgs,
		RunE:  RunInstallHook,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mistlens %s\n", version)
		},
	}

	rootCmd.AddCommand(
		outlineCmd,
		symbolsCmd,
		findCmd,
		indexCmd,
		browseCmd,
		serveCmd,
		initCmd,
		installHookCmd,
		versionCmd,
	)

	return rootCmd
}
