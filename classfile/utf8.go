package classfile

import (
	"unicode/utf16"
	"unicode/utf8"
)

// decodeModifiedUtf8 decodes the class-file flavour of UTF-8: NUL is encoded
// as C0 80 and supplementary characters as two encoded surrogates.
// Malformed bytes are passed through one at a time.
func decodeModifiedUtf8(b []byte) string {
	units := make([]uint16, 0, len(b))
	ascii := true
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c&0x80 == 0:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b) && b[i+1]&0xC0 == 0x80:
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
			ascii = false
		case c&0xF0 == 0xE0 && i+2 < len(b) && b[i+1]&0xC0 == 0x80 && b[i+2]&0xC0 == 0x80:
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
			ascii = false
		default:
			units = append(units, uint16(c))
			i++
			ascii = false
		}
	}
	if ascii {
		return string(b)
	}
	runes := utf16.Decode(units)
	out := make([]byte, 0, len(b))
	for _, r := range runes {
		out = utf8.AppendRune(out, r)
	}
	return string(out)
}
