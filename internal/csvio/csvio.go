// Package csvio turns raw delimited text into rows of string fields and
// back. It owns no interpretation of the data: every field stays a string
// and downstream normalizers do all coercion.
package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MinRows is the smallest row count that constitutes usable input:
// one header row plus at least one data row. Parse itself does not
// enforce this; callers decide how to report degenerate input.
const MinRows = 2

// Parse reads CSV text into rows of fields.
//
// Quoting follows RFC 4180: fields may be wrapped in double quotes, an
// escaped quote inside a quoted field is "", and both \n and \r\n
// terminate a record when outside quotes. A trailing record without a
// terminator is still emitted. Rows may have differing field counts;
// the caller pads or truncates as needed.
func Parse(text string) ([][]string, error) {
	return ParseReader(strings.NewReader(text))
}

// ParseReader is Parse over an arbitrary reader. The input is assumed
// to already be clean UTF-8; wrap file or network input with Sanitize
// first.
func ParseReader(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Serialize renders rows back to CSV text, quoting and escaping per the
// same RFC 4180 rules Parse accepts. Parse(Serialize(rows)) reproduces
// rows exactly.
func Serialize(rows [][]string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		// Write never fails on a bytes.Buffer.
		w.Write(row)
	}
	w.Flush()
	return buf.String()
}

// PadRow returns row extended with empty fields to width n, or
// truncated to n if longer. The input slice is not modified.
func PadRow(row []string, n int) []string {
	if len(row) == n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
