package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/mistkit/mistlens/internal/config"
	"github.com/mistkit/mistlens/internal/fileutil"
	"github.com/mistkit/mistlens/internal/ignore"
	"github.com/mistkit/mistlens/internal/search"
)

func defaultIgnoreFile() []byte {
	var b strings.Builder
	b.WriteString("# Paths mistlens skips when scanning, in .gitignore syntax.\n")
	b.WriteString("# Always skipped: " + strings.Join(ignore.DefaultRules, " ") + "\n")
	b.WriteString("# Prefix a rule with ! to include a path again.\n")
	return []byte(b.String())
}

func RunInit(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		rootPath, err = filepath.Abs(args[0])
		if err != nil {
			return errors.Errorf("failed to resolve %s: %w", args[0], err)
		}
	}

	configData, err := config.Defaults().Marshal()
	if err != nil {
		return err
	}

	files := []struct {
		name string
		data []byte
	}{
		{name: config.FileName, data: configData},
		{name: ignore.FileName, data: defaultIgnoreFile()},
		{name: filepath.Join(search.IndexDir, ".gitignore"), data: []byte("*\n")},
	}

	out := cmd.OutOrStdout()
	for _, file := range files {
		path := filepath.Join(rootPath, file.name)
		created, err := fileutil.WriteIfMissing(path, file.data, 0o644)
		if err != nil {
			return err
		}
		status := "Created"
		if !created {
			status = "Kept existing"
		}
		fmt.Fprintf(out, "%s %s\n", status, path)
	}
	return nil
}
