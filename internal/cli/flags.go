package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// Format selects how symbol lists are printed.
type Format string

const (
	FormatText  Format = "text"
	FormatJSONL Format = "jsonl"
	FormatJSON  Format = "json"
)

func ParseFormatValue(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSONL:
		return FormatJSONL, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", errors.Errorf("unsupported format %q (supported: text, jsonl, json)", value)
	}
}

func ParseOutputFormat(cmd *cobra.Command) (Format, error) {
	value, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", errors.Errorf("failed to read --format flag: %w", err)
	}
	return ParseFormatValue(value)
}

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", errors.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return false, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, errors.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}
