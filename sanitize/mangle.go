package sanitize

import (
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// maxLength bounds the logged part of a single user supplied value
const maxLength = 256

// UserInputString strips control characters (CR, LF, ...) and truncates the value
// to avoid log injection / CWE-117
func UserInputString(key string, value string) zapcore.Field {
	return zap.String(key, Clean(value))
}

// Clean removes all control characters and cuts the value after maxLength runes
func Clean(value string) string {
	out := make([]rune, 0, len(value))
	for _, r := range value {
		if r == utf8.RuneError || unicode.IsControl(r) {
			continue
		}
		if len(out) == maxLength {
			return string(out) + "..."
		}
		out = append(out, r)
	}
	return string(out)
}
