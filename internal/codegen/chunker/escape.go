package chunker

import "strings"

// Escaper renders raw bytes as the body of a host-language string literal,
// without the surrounding quotes.
type Escaper func([]byte) string

const hexdigits = "0123456789abcdef"

// CEscape escapes like C: named escapes for newline, carriage return, tab,
// quotes and backslash, three-digit octal for every other non-printable
// byte. The result is valid in Java string literals, where each octal escape
// decodes to one char in 0..255.
func CEscape(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		switch c {
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '"':
			sb.WriteString(`\"`)
		case '\'':
			sb.WriteString(`\'`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			if c < 0x20 || c >= 0x7f {
				sb.WriteByte('\\')
				sb.WriteByte('0' + c>>6)
				sb.WriteByte('0' + (c>>3)&7)
				sb.WriteByte('0' + c&7)
				continue
			}
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// GoEscape escapes for an interpreted Go string literal. Non-printable bytes
// become \xNN so the literal holds exactly the original bytes.
func GoEscape(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		switch c {
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			if c < 0x20 || c >= 0x7f {
				sb.WriteString(`\x`)
				sb.WriteByte(hexdigits[c>>4])
				sb.WriteByte(hexdigits[c&0x0f])
				continue
			}
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
