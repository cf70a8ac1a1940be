package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	slogctx "github.com/veqryn/slog-context"
)

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetupJSONCarriesContextAttrs(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	ctx, err := Setup(context.Background(), &buf, Options{Level: "debug", Format: "json"})
	require.NoError(t, err)

	ctx = slogctx.With(ctx, "uri", "file:///a.mist")
	slogctx.Debug(ctx, "parsed document", "issues", 2)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "parsed document", record["msg"])
	assert.Equal(t, "file:///a.mist", record["uri"])
	assert.Equal(t, float64(2), record["issues"])
}

func TestSetupTextFiltersByLevel(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	ctx, err := Setup(context.Background(), &buf, Options{Level: "warn"})
	require.NoError(t, err)

	slogctx.Info(ctx, "hidden")
	slogctx.Warn(ctx, "shown", "file", "a.mist")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "file=a.mist")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestSetupRejectsUnknownFormat(t *testing.T) {
	_, err := Setup(context.Background(), &bytes.Buffer{}, Options{Format: "xml"})
	assert.Error(t, err)
}
