package common

import (
	"path"
	"strings"
)

// ToPascalCase converts an underscore or dash separated name to PascalCase.
// Letters after a separator or a digit are upper-cased, all other letters
// keep their case: "foo_bar2baz" -> "FooBar2Baz".
func ToPascalCase(s string) string {
	var b strings.Builder
	upper := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isLower(c):
			if upper {
				c -= 'a' - 'A'
			}
			b.WriteByte(c)
			upper = false
		case isUpper(c):
			b.WriteByte(c)
			upper = false
		case isDigit(c):
			b.WriteByte(c)
			upper = true
		default:
			upper = true
		}
	}
	return b.String()
}

// BaseName strips the directory and the ".proto" extension from a schema
// file path.
func BaseName(file string) string {
	return strings.TrimSuffix(path.Base(file), ".proto")
}

// SanitizeIdentifier replaces every byte that cannot appear in an identifier
// with '_' and prefixes a leading digit.
func SanitizeIdentifier(s string) string {
	b := []byte(s)
	for i, c := range b {
		if !isLower(c) && !isUpper(c) && !isDigit(c) {
			b[i] = '_'
		}
	}
	if len(b) > 0 && isDigit(b[0]) {
		return "_" + string(b)
	}
	return string(b)
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
func isLower(b byte) bool { return b >= 'a' && b <= 'z' }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }
