package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"

	"github.com/mistkit/mistlens/internal/config"
	"github.com/mistkit/mistlens/internal/logging"
)

const configFileHint = config.FileName

type configKey struct{}

// setup loads the config and installs the logger for every command.
func setup(cmd *cobra.Command, _ []string) error {
	path, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	level, err := OptionalStringFlag(cmd, "log-level")
	if err != nil {
		return err
	}
	if level = strings.ToLower(strings.TrimSpace(level)); level != "" {
		cfg.Log.Level = level
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	noColor, err := OptionalBoolFlag(cmd, "no-color")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, err = logging.Setup(ctx, cmd.ErrOrStderr(), logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		NoColor: noColor,
	})
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		slogctx.Debug(ctx, "Loaded config", "path", cfg.Path)
	}
	cmd.SetContext(context.WithValue(ctx, configKey{}, cfg))
	return nil
}

// configFrom returns the config setup stored in ctx, or the defaults.
func configFrom(ctx context.Context) *config.Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
			return cfg
		}
	}
	return config.Defaults()
}

func commandContext(cmd *cobra.Command) (context.Context, *config.Config) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, configFrom(ctx)
}

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", errors.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

// projectRoot returns target when it is a directory, else its directory.
func projectRoot(target string) (string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return "", errors.Errorf("failed to inspect %s: %w", target, err)
	}
	if info.IsDir() {
		return target, nil
	}
	return filepath.Dir(target), nil
}
