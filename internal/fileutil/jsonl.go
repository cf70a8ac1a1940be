package fileutil

import (
	"encoding/json"
	"io"

	"gitlab.com/tozd/go/errors"
)

// WriteJSONL streams records to w, one JSON object per line.
func WriteJSONL[T any](w io.Writer, records []T) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	for i, record := range records {
		if err := encoder.Encode(record); err != nil {
			return errors.Errorf("failed to encode record %d: %w", i, err)
		}
	}
	return nil
}
