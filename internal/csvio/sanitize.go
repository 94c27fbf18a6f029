package csvio

// sanitize.go cleans raw upload bytes before parsing. Roster exports
// routinely arrive from Windows spreadsheets with a UTF-8 BOM and the
// occasional invalid byte from a mis-declared encoding; both would
// otherwise corrupt the first header or a name field.

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Sanitize strips a leading UTF-8 BOM and replaces invalid UTF-8
// sequences with the Unicode replacement character, returning text
// safe to hand to Parse.
func Sanitize(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	var b strings.Builder
	b.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.Write(data[:size])
		}
		data = data[size:]
	}
	return b.String()
}

// CleanCell removes common spreadsheet artifacts from a single field:
// surrounding whitespace, an Excel formula prefix (="value"), and any
// leftover wrapping quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}
	return strings.Trim(s, `"'`)
}
