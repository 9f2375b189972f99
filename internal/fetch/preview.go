package fetch

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"

	"github.com/ytget/soql-studio/internal/model"
)

// HeaderErrorCell replaces the header when it cannot be parsed.
const HeaderErrorCell = "Error"

// ParsePreview parses a CSV payload into a header row followed by at most
// limit data rows. A header that fails to parse becomes a single "Error"
// cell; data rows that fail to parse, including rows whose field count
// differs from the first parsed record, are passed to skipped and left out.
// An empty payload yields a table with an empty header.
func ParsePreview(data []byte, limit int, skipped func(line int, err error)) model.Table {
	r := csv.NewReader(bytes.NewReader(data))

	table := make(model.Table, 0, limit+1)

	header, err := r.Read()
	switch {
	case errors.Is(err, io.EOF):
		header = []string{}
	case err != nil:
		header = []string{HeaderErrorCell}
		// The reader fixed the width from the partial header; let the
		// first data record set it instead.
		r.FieldsPerRecord = 0
	}
	table = append(table, header)

	for len(table)-1 < limit {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			if skipped != nil {
				skipped(line, err)
			}
			continue
		}
		table = append(table, row)
	}
	return table
}
