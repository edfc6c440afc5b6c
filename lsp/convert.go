package lsp

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/cockroachdb/errors"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// uriToPath converts a file URI to a local path.
func uriToPath(uri protocol.DocumentUri) (string, error) {
	u, err := url.Parse(string(uri))
	if err != nil {
		return "", errors.Wrapf(err, "parse uri %q", uri)
	}
	if u.Scheme != "file" {
		return "", errors.Newf("unsupported uri scheme %q", u.Scheme)
	}
	path := u.Path
	if isDrivePath(path) {
		// "/C:/dir" names the drive C: on Windows.
		path = strings.ToUpper(path[1:2]) + path[2:]
	}
	return filepath.FromSlash(path), nil
}

// isDrivePath reports whether path starts with a slash and a drive letter.
func isDrivePath(path string) bool {
	if len(path) < 3 || path[0] != '/' || path[2] != ':' {
		return false
	}
	c := path[1]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// positionAt converts a byte offset into a line and UTF-16 column. Offsets
// past the end map to the end of the text.
func positionAt(text string, offset int) protocol.Position {
	if offset > len(text) {
		offset = len(text)
	}
	var line, col protocol.UInteger
	for i, r := range text {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
			col = 0
			continue
		}
		col += protocol.UInteger(utf16.RuneLen(r))
	}
	return protocol.Position{Line: line, Character: col}
}

// toSnippet turns "${}" and "${name}" placeholders into numbered snippet
// tabstops and escapes everything else the snippet syntax would interpret.
func toSnippet(apply string) string {
	var b strings.Builder
	n := 0
	for i := 0; i < len(apply); i++ {
		if strings.HasPrefix(apply[i:], "${") {
			if end := strings.IndexByte(apply[i:], '}'); end >= 0 {
				n++
				b.WriteString("${")
				b.WriteString(strconv.Itoa(n))
				if name := apply[i+2 : i+end]; name != "" {
					b.WriteByte(':')
					b.WriteString(name)
				}
				b.WriteByte('}')
				i += end
				continue
			}
		}
		switch c := apply[i]; c {
		case '$', '}', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
