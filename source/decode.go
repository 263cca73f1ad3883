package source

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"

	apperrors "github.com/kbukum/tabkit/errors"
)

// DefaultEncoding is used when a request names no encoding.
const DefaultEncoding = "utf8"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts b from the named character encoding to a string. Labels
// follow the WHATWG encoding names ("utf8", "gbk", "shift_jis", "big5",
// "euc-kr", "windows-1252", ...), case-insensitively. A leading UTF-8 byte
// order mark is removed from the result.
func Decode(b []byte, label string) (string, error) {
	if label == "" {
		label = DefaultEncoding
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", apperrors.DecodeFailed(label, err)
	}

	name, _ := htmlindex.Name(enc)
	if name != "utf-8" {
		out, err := enc.NewDecoder().Bytes(b)
		if err != nil {
			return "", apperrors.DecodeFailed(label, err)
		}
		b = out
	} else if !utf8.Valid(bytes.TrimPrefix(b, utf8BOM)) {
		b = bytes.ToValidUTF8(b, []byte(string(utf8.RuneError)))
	}
	return string(bytes.TrimPrefix(b, utf8BOM)), nil
}
