package source

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodingReader wraps r so that data files exported with a UTF-8 BOM
// or as UTF-16 (both seen in spreadsheet exports) read as plain UTF-8.
func decodingReader(r io.Reader) io.Reader {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return transform.NewReader(r, dec)
}
