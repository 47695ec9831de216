package kcdc

import (
	"encoding/binary"
	"math/bits"
)

// checkStream validates the framing of a compressed stream: a zero flags
// byte at the front and the 0xFF tail at the back. Once it passes, every
// decoder in this package is guaranteed to reach an end-of-stream marker.
func checkStream(fp *params, src []byte) error {
	if len(src) <= fp.tailSize+flagsSize {
		return ErrSourceTooShort
	}
	for _, b := range src[len(src)-fp.tailSize:] {
		if b != 0xFF {
			return ErrCorruptTail
		}
	}
	if src[0] != 0 {
		return ErrUnknownFlags
	}
	return nil
}

// window returns the 32 bits of src starting at byte pos. Bytes past the
// end of src read as 0xFF, an extension of the tail.
func window(src []byte, pos int) uint32 {
	if pos+4 <= len(src) {
		return binary.LittleEndian.Uint32(src[pos:])
	}
	w := ^uint32(0)
	for i := 3; i >= 0; i-- {
		w <<= 8
		if pos+i < len(src) {
			w |= uint32(src[pos+i])
		} else {
			w |= 0xFF
		}
	}
	return w
}

// ones returns the number of consecutive 1 bits in w starting at phase.
func ones(w uint32, phase uint) int {
	return bits.TrailingZeros32(^(w >> phase))
}

// Decode decompresses src into dst and returns the number of bytes written.
func (p *Program) Decode(dst, src []byte) (int, error) {
	if err := checkStream(p.params, src); err != nil {
		return 0, err
	}
	if p.params.lengthFirst {
		return p.decodeLengthFirst(dst, src)
	}
	return p.decodeOffsetFirst(dst, src)
}

// decodeOffsetFirst runs the Kauai token loop: literal/offset tag, then the
// length code for matches.
func (p *Program) decodeOffsetFirst(dst, src []byte) (int, error) {
	pos := flagsSize
	phase := uint(0)
	w := window(src, pos)
	out := 0

	for {
		t := &p.blocks[phase].dispatch[w>>phase&(1<<dispatchBits-1)]
		if t.op == opLiteral {
			if out >= len(dst) {
				return out, ErrOutputOverrun
			}
			dst[out] = byte(w >> t.shift)
			out++
			pos += int(t.advance)
			phase = uint(t.next)
			w = window(src, pos)
			continue
		}

		payload := w >> t.shift & t.mask
		if t.end && payload == t.mask {
			return out, nil
		}
		dist := int(payload + t.base)
		pos += int(t.advance)
		phase = uint(t.next)
		w = window(src, pos)

		cbit := ones(w, phase)
		if cbit > maxLenBits {
			return out, ErrBadLength
		}
		ls := &p.blocks[phase].lengths[cbit]
		length := int(ls.base|w>>ls.shift&ls.mask) + int(t.bias)
		pos += int(ls.advance)
		phase = uint(ls.next)
		w = window(src, pos)

		var err error
		if out, err = copyBackRef(dst, out, dist, length); err != nil {
			return out, err
		}
	}
}

// decodeLengthFirst runs the Kauai2 token loop: length code, then the
// literal-run/offset tag.
func (p *Program) decodeLengthFirst(dst, src []byte) (int, error) {
	pos := flagsSize
	phase := uint(0)
	w := window(src, pos)
	out := 0
	limit := len(src) - p.params.tailSize

	for {
		cbit := ones(w, phase)
		if cbit > maxLenBits {
			// The padding and tail end the stream.
			return out, nil
		}
		ls := &p.blocks[phase].lengths[cbit]
		length := int(ls.base | w>>ls.shift&ls.mask)
		pos += int(ls.advance)
		phase = uint(ls.next)
		w = window(src, pos)

		t := &p.blocks[phase].dispatch[w>>phase&(1<<dispatchBits-1)]
		if t.op == opMatch {
			dist := int(w>>t.shift&t.mask + t.base)
			pos += int(t.advance)
			phase = uint(t.next)
			w = window(src, pos)

			var err error
			if out, err = copyBackRef(dst, out, dist, length+int(t.bias)); err != nil {
				return out, err
			}
			continue
		}

		// Literal run: skip the tag bit, pick up the low bits of the last
		// byte from the rest of the current byte, copy the aligned bytes,
		// then take the high bits of the last byte.
		pos += int(t.advance)
		phase = uint(t.next)
		var lo byte
		if phase > 0 {
			lo = src[pos] >> phase
			pos++
		}
		if pos+length > limit {
			return out, ErrInputOverrun
		}
		if length > len(dst)-out {
			return out, ErrOutputOverrun
		}
		out += copy(dst[out:], src[pos:pos+length-1])
		pos += length - 1
		if phase > 0 {
			dst[out] = lo | src[pos]<<(8-phase)
		} else {
			dst[out] = src[pos]
			pos++
		}
		out++
		w = window(src, pos)
	}
}
