package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/mistkit/mistlens/internal/fileutil"
	"github.com/mistkit/mistlens/internal/search"
)

const (
	HookStart = "# >>> mistlens index hook >>>"
	HookEnd   = "# <<< mistlens index hook <<<"
)

func RunInstallHook(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}

	repoRoot, gitDir, err := ResolveGitPaths(rootPath)
	if err != nil {
		return err
	}

	hookPath := filepath.Join(gitDir, "hooks", "pre-commit")
	if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
		return errors.Errorf("failed to create hook directory: %w", err)
	}

	existing := ""
	if data, err := os.ReadFile(hookPath); err == nil {
		existing = string(data)
	} else if !os.IsNotExist(err) {
		return errors.Errorf("failed to read existing hook: %w", err)
	}

	updated := UpsertIndexHook(existing, repoRoot)
	if err := os.WriteFile(hookPath, []byte(updated), 0o755); err != nil {
		return errors.Errorf("failed to write hook: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Installed pre-commit hook at %s\n", hookPath)
	return nil
}

func ResolveGitPaths(workingDir string) (repoRoot string, gitDir string, err error) {
	repoRootOut, err := exec.Command("git", "-C", workingDir, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", "", errors.New("not inside a git repository")
	}

	gitDirOut, err := exec.Command("git", "-C", workingDir, "rev-parse", "--git-dir").Output()
	if err != nil {
		return "", "", errors.Errorf("failed to resolve git directory: %w", err)
	}

	repoRoot = strings.TrimSpace(string(repoRootOut))
	gitDir = strings.TrimSpace(string(gitDirOut))
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(repoRoot, gitDir)
	}
	return repoRoot, gitDir, nil
}

// UpsertIndexHook adds the index block to a pre-commit hook, replacing an
// earlier copy and keeping everything else.
func UpsertIndexHook(existingHook, repoRoot string) string {
	block := BuildIndexHookBlock(repoRoot)

	if existingHook == "" {
		return "#!/bin/sh\n\n" + block + "\n"
	}

	start := strings.Index(existingHook, HookStart)
	end := strings.Index(existingHook, HookEnd)
	if start >= 0 && end >= start {
		end += len(HookEnd)
		return fileutil.EnsureTrailingNewline(existingHook[:start] + block + existingHook[end:])
	}

	base := fileutil.EnsureTrailingNewline(existingHook)
	if !strings.HasPrefix(base, "#!") {
		base = "#!/bin/sh\n" + base
	}
	return base + "\n" + block + "\n"
}

// BuildIndexHookBlock refreshes the search index only in checkouts that
// already have one.
func BuildIndexHookBlock(repoRoot string) string {
	return fmt.Sprintf(
		"%s\nrepo_root=%q\nindex_file=\"$repo_root/%s/%s\"\nif command -v mistlens >/dev/null 2>&1 && [ -f \"$index_file\" ]; then\n  (cd \"$repo_root\" && mistlens index) || exit 1\nfi\n%s",
		HookStart,
		repoRoot,
		search.IndexDir,
		search.IndexFile,
		HookEnd,
	)
}
