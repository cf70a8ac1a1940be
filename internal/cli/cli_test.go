package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistkit/mistlens/internal/config"
	"github.com/mistkit/mistlens/internal/ignore"
	"github.com/mistkit/mistlens/internal/search"
)

const homeTemplate = `{
  "state": {"title": "Home"},
  "layout": {
    "type": "stack",
    "children": [
      {"type": "text", "style": {"text": "hi"}}, // greeting
      {"type": "image", "style": {"image-url": "logo.png"}}
    ]
  }
}
`

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// project creates a temp project holding home.mist and makes it the
// working directory.
func project(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	mustWriteFile(t, filepath.Join(root, "home.mist"), homeTemplate)
	t.Chdir(root)
	return root
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand("test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestOutlineCommandPrintsTree(t *testing.T) {
	project(t)

	out, _, err := run(t, "outline", "home.mist")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"▥ stack :3",
		`├── T text "hi" // greeting :6`,
		`└── ▣ image "logo.png" :7`,
	}, "\n")+"\n", out)
}

func TestOutlineCommandJSON(t *testing.T) {
	project(t)

	out, _, err := run(t, "outline", "home.mist", "--json")
	require.NoError(t, err)

	var decoded struct {
		URI   string `json:"uri"`
		State string `json:"state"`
		Roots []struct {
			Kind     string `json:"kind"`
			Children []struct {
				Kind    string `json:"kind"`
				Comment string `json:"comment"`
			} `json:"children"`
		} `json:"roots"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.True(t, strings.HasSuffix(decoded.URI, "/home.mist"))
	assert.Equal(t, "has-document", decoded.State)
	require.Len(t, decoded.Roots, 1)
	assert.Equal(t, "stack", decoded.Roots[0].Kind)
	require.Len(t, decoded.Roots[0].Children, 2)
	assert.Equal(t, "// greeting", decoded.Roots[0].Children[0].Comment)
	assert.Equal(t, "image", decoded.Roots[0].Children[1].Kind)
}

func TestOutlineCommandWithoutLayout(t *testing.T) {
	root := project(t)
	mustWriteFile(t, filepath.Join(root, "empty.mist"), "")

	out, stderr, err := run(t, "outline", "empty.mist")
	require.NoError(t, err)
	assert.Equal(t, "(no layout)\n", out)
	assert.Contains(t, stderr, "json parse error")
}

func TestOutlineCommandMissingFile(t *testing.T) {
	project(t)
	_, _, err := run(t, "outline", "missing.mist")
	assert.Error(t, err)
}

func TestSymbolsCommandFormats(t *testing.T) {
	root := project(t)
	mustWriteFile(t, filepath.Join(root, "cells", "card.mist.json"), `{"layout": {"type": "button", "style": {"title": "Go"}}}`)
	mustWriteFile(t, filepath.Join(root, "node_modules", "x.mist"), `{"layout": {"type": "line"}}`)

	out, _, err := run(t, "symbols")
	require.NoError(t, err)
	assert.Contains(t, out, "cells/card.mist.json\n")
	assert.Contains(t, out, "property state <template> :2:3")
	assert.NotContains(t, out, "node_modules")

	out, _, err = run(t, "symbols", "--format", "jsonl")
	require.NoError(t, err)
	var records []map[string]any
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var record map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		records = append(records, record)
	}
	require.Len(t, records, 8)
	assert.Equal(t, "cells/card.mist.json", records[0]["file"])
	assert.Equal(t, "layout", records[0]["name"])
	assert.Equal(t, "home.mist", records[2]["file"])
	assert.Equal(t, "state", records[2]["name"])

	out, _, err = run(t, "symbols", "home.mist", "--format", "json")
	require.NoError(t, err)
	var result struct {
		Files []struct {
			Path    string            `json:"path"`
			Symbols []json.RawMessage `json:"symbols"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Files, 1)
	assert.Equal(t, "home.mist", result.Files[0].Path)
	assert.Len(t, result.Files[0].Symbols, 6)

	_, _, err = run(t, "symbols", "--format", "xml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestFindCommand(t *testing.T) {
	root := project(t)
	mustWriteFile(t, filepath.Join(root, "cells", "card.mist"), `{"layout": {"type": "button", "style": {"title": "Checkout"}}}`)

	out, _, err := run(t, "find", "logo")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "home.mist:7:"), lines[0])
	assert.Contains(t, lines[0], "image")

	out, _, err = run(t, "find", "buton", "--json")
	require.NoError(t, err)
	var hits []search.Result
	require.NoError(t, json.Unmarshal([]byte(out), &hits))
	require.NotEmpty(t, hits)
	assert.Equal(t, "cells/card.mist", hits[0].Document.File)

	out, _, err = run(t, "find", "zzzzzzzz")
	require.NoError(t, err)
	assert.Equal(t, "no matches for \"zzzzzzzz\"\n", out)

	_, _, err = run(t, "find", "logo", "--limit", "0")
	assert.Error(t, err)
}

func TestIndexThenFindFromIndex(t *testing.T) {
	root := project(t)

	_, _, err := run(t, "find", "logo", "--index")
	assert.ErrorContains(t, err, "run mistlens index")

	out, _, err := run(t, "index")
	require.NoError(t, err)
	assert.Equal(t, "Indexed 6 symbols from 1 files (updated)\n", out)
	assert.FileExists(t, filepath.Join(root, search.IndexDir, search.IndexFile))

	out, _, err = run(t, "index")
	require.NoError(t, err)
	assert.Contains(t, out, "(unchanged)")

	out, _, err = run(t, "find", "logo", "--index")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "home.mist:7:"), out)
}

func TestInitCommand(t *testing.T) {
	root := project(t)

	out, _, err := run(t, "init")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "Created "))

	data, err := os.ReadFile(filepath.Join(root, config.FileName))
	require.NoError(t, err)
	cfg, err := config.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "mist", cfg.LanguageID)
	assert.FileExists(t, filepath.Join(root, ignore.FileName))

	out, _, err = run(t, "init")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "Kept existing "))
}

func TestConfigFileChangesExtensionsAndIgnores(t *testing.T) {
	root := project(t)
	mustWriteFile(t, filepath.Join(root, "views", "list.tpl"), `{"layout": {"type": "scroll"}}`)
	mustWriteFile(t, filepath.Join(root, "drafts", "old.tpl"), `{"layout": {"type": "line"}}`)
	mustWriteFile(t, filepath.Join(root, config.FileName), "extensions: [tpl]\nignore: [drafts/]\n")

	out, _, err := run(t, "symbols", "--format", "jsonl")
	require.NoError(t, err)
	assert.Contains(t, out, `"file":"views/list.tpl"`)
	assert.NotContains(t, out, "home.mist")
	assert.NotContains(t, out, "drafts")
}

func TestGlobalFlags(t *testing.T) {
	project(t)

	_, _, err := run(t, "version", "--log-level", "loud")
	assert.ErrorContains(t, err, "unsupported log level")

	_, _, err = run(t, "version", "--config", "missing.yaml")
	assert.ErrorContains(t, err, "failed to read config")

	out, _, err := run(t, "version", "--log-level", "debug")
	require.NoError(t, err)
	assert.Equal(t, "mistlens test\n", out)

	out, _, err = run(t, "version", "--log-level", " DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, "mistlens test\n", out)
}

func TestInitCommandIntoSubdirectory(t *testing.T) {
	root := project(t)

	out, _, err := run(t, "init", "app")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "Created "))
	assert.FileExists(t, filepath.Join(root, "app", config.FileName))
	assert.FileExists(t, filepath.Join(root, "app", search.IndexDir, ".gitignore"))
}
