package kcdc

import "strconv"

// A TextEncoder produces a human-readable representation of the LZ77
// compression. Literal bytes are copied through (quoted with strconv when
// Quote is set); matches are replaced with <Length,Distance> symbols, and
// with <Length,Distance:Bits> when Classes is set, Bits being the payload
// width of the offset class the distance is encoded with.
type TextEncoder struct {
	Quote   bool
	Classes bool
}

// Encode appends the text form of src, as described by matches, to dst.
func (t TextEncoder) Encode(dst []byte, src []byte, matches []Match) []byte {
	pos := 0
	for _, m := range matches {
		if m.Unmatched > 0 {
			dst = t.appendLiterals(dst, src[pos:pos+m.Unmatched])
			pos += m.Unmatched
		}
		if m.Length > 0 {
			dst = append(dst, '<')
			dst = strconv.AppendInt(dst, int64(m.Length), 10)
			dst = append(dst, ',')
			dst = strconv.AppendInt(dst, int64(m.Distance), 10)
			if t.Classes {
				dst = append(dst, ':')
				dst = strconv.AppendUint(dst, uint64(classes[classify(m.Distance)].bits), 10)
			}
			dst = append(dst, '>')
			pos += m.Length
		}
	}
	if pos < len(src) {
		dst = t.appendLiterals(dst, src[pos:])
	}
	return dst
}

func (t TextEncoder) appendLiterals(dst, lit []byte) []byte {
	if t.Quote {
		return strconv.AppendQuote(dst, string(lit))
	}
	return append(dst, lit...)
}
