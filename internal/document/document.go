package document

import (
	"sort"
	"strings"
	"unicode/utf16"

	"go.lsp.dev/protocol"
)

// Document is an immutable snapshot of one text document. Every edit
// produces a new Document.
type Document struct {
	URI        protocol.DocumentURI
	LanguageID string
	Version    int32
	Text       string

	lineStarts []int
}

func New(uri protocol.DocumentURI, languageID string, version int32, text string) *Document {
	d := &Document{
		URI:        uri,
		LanguageID: languageID,
		Version:    version,
		Text:       text,
		lineStarts: []int{0},
	}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			d.lineStarts = append(d.lineStarts, i+1)
		}
	}
	return d
}

func (d *Document) LineCount() int {
	return len(d.lineStarts)
}

// LineAt returns the text of a zero-based line without its terminator.
// Lines outside the document read as "".
func (d *Document) LineAt(line int) string {
	if line < 0 || line >= len(d.lineStarts) {
		return ""
	}
	start := d.lineStarts[line]
	end := len(d.Text)
	if line+1 < len(d.lineStarts) {
		end = d.lineStarts[line+1] - 1
	}
	return strings.TrimSuffix(d.Text[start:end], "\r")
}

// LineOf returns the zero-based line holding the byte offset.
func (d *Document) LineOf(offset int) int {
	offset = d.clamp(offset)
	return sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1
}

// PositionAt converts a byte offset into an LSP position. Characters are
// counted in UTF-16 code units.
func (d *Document) PositionAt(offset int) protocol.Position {
	offset = d.clamp(offset)
	line := d.LineOf(offset)
	column := 0
	for _, r := range d.Text[d.lineStarts[line]:offset] {
		column += utf16.RuneLen(r)
	}
	return protocol.Position{Line: uint32(line), Character: uint32(column)}
}

// OffsetAt converts an LSP position back into a byte offset.
func (d *Document) OffsetAt(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(d.lineStarts) {
		return len(d.Text)
	}
	offset := d.lineStarts[line]
	text := d.LineAt(line)
	units := 0
	for i, r := range text {
		if units >= int(pos.Character) {
			return offset + i
		}
		units += utf16.RuneLen(r)
	}
	return offset + len(text)
}

// RangeOf returns the range covering length bytes starting at offset.
func (d *Document) RangeOf(offset, length int) protocol.Range {
	return protocol.Range{
		Start: d.PositionAt(offset),
		End:   d.PositionAt(offset + length),
	}
}

func (d *Document) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(d.Text) {
		return len(d.Text)
	}
	return offset
}
