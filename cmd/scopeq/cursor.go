package main

import (
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// cursorOffset resolves the cursor flags to a byte offset in text. An offset
// of -1 means the position is given by line and column, both starting at 1.
func cursorOffset(text string, offset, line, column int) (int, error) {
	if offset >= 0 {
		if line != 0 || column != 0 {
			return 0, errors.New("use --offset or --line/--column, not both")
		}
		if offset > len(text) {
			return 0, errors.Newf("offset %d is past the end of the file (%d bytes)", offset, len(text))
		}
		return offset, nil
	}
	if line < 1 || column < 1 {
		return 0, errors.WithHint(
			errors.New("no cursor position"),
			"pass --offset, or --line and --column starting at 1",
		)
	}

	start := 0
	for l := 1; l < line; l++ {
		nl := strings.IndexByte(text[start:], '\n')
		if nl < 0 {
			return 0, errors.Newf("line %d is past the end of the file", line)
		}
		start += nl + 1
	}
	pos := start
	for c := 1; c < column; c++ {
		if pos >= len(text) || text[pos] == '\n' {
			return 0, errors.Newf("column %d is past the end of line %d", column, line)
		}
		_, size := utf8.DecodeRuneInString(text[pos:])
		pos += size
	}
	return pos, nil
}
