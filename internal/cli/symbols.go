package cli

import (
	"github.com/spf13/cobra"

	"github.com/mistkit/mistlens/internal/fileutil"
	"github.com/mistkit/mistlens/internal/render"
	"github.com/mistkit/mistlens/internal/symbols"
	"github.com/mistkit/mistlens/internal/workspace"
)

type symbolRecord struct {
	File string `json:"file"`
	symbols.Symbol
}

func RunSymbols(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(cmd)
	if err != nil {
		return err
	}
	target := "."
	if len(args) > 0 {
		target = args[0]
	}

	result, err := scanWorkspace(cmd, target, format != FormatText)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case FormatJSON:
		return fileutil.PrintJSON(out, result)
	case FormatJSONL:
		return fileutil.WriteJSONL(out, symbolRecords(result))
	default:
		for _, file := range result.Files {
			if err := render.Symbols(out, file.Path, file.Symbols); err != nil {
				return err
			}
		}
		return nil
	}
}

func symbolRecords(result *workspace.Result) []symbolRecord {
	records := make([]symbolRecord, 0)
	for _, file := range result.Files {
		for _, sym := range file.Symbols {
			records = append(records, symbolRecord{File: file.Path, Symbol: sym})
		}
	}
	return records
}
