package core

// text.go prepares delimited-text payloads for the CSV reader.
//
// Windows tools commonly prefix UTF-8 files with a byte order mark, which would
// otherwise end up glued to the first header name. Bytes that are not valid
// UTF-8 are rejected rather than replaced so a file saved in a legacy code page
// is reported to the uploader instead of being stored with mangled text.

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// prepareText strips a leading UTF-8 BOM and verifies the remainder is UTF-8.
func prepareText(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}

	offset := invalidUTF8Offset(data)
	line := 1 + bytes.Count(data[:offset], []byte{'\n'})
	return nil, fmt.Errorf("invalid UTF-8 byte 0x%02x at line %d (offset %d)", data[offset], line, offset)
}

// invalidUTF8Offset returns the offset of the first invalid UTF-8 sequence,
// or len(data) if there is none.
func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		if data[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(data)
}
