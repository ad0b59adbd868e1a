package engine

import (
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// FlattenNewlines replaces every line break in s with a single space so a
// comment always fits on one output row.
func FlattenNewlines(s string) string {
	return newlineReplacer.Replace(s)
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
