package kcdc

// A BitReader reads LSB-first bit fields from a byte slice. Reads past the
// end of the slice return 1 bits, the same value as the tail padding every
// stream ends with, so a decoder driven by a BitReader always reaches an
// end-of-stream marker.
type BitReader struct {
	buf []byte
	pos int // absolute bit position
}

// Reset points r at buf, starting at byte off.
func (r *BitReader) Reset(buf []byte, off int) {
	r.buf = buf
	r.pos = off * 8
}

// BitsRead returns the number of bits consumed since Reset, counting the
// skipped leading bytes.
func (r *BitReader) BitsRead() int {
	return r.pos
}

// BitOffset returns the position within the current byte (0..7).
func (r *BitReader) BitOffset() uint {
	return uint(r.pos & 7)
}

// ByteOffset returns the index of the byte holding the next bit.
func (r *BitReader) ByteOffset() int {
	return r.pos >> 3
}

func (r *BitReader) readBit() uint32 {
	i := r.pos >> 3
	r.pos++
	if i >= len(r.buf) {
		return 1
	}
	return uint32(r.buf[i]>>(uint(r.pos-1)&7)) & 1
}

// ReadBits returns the next n bits (n <= 32).
func (r *BitReader) ReadBits(n uint) uint32 {
	var v uint32
	for k := uint(0); k < n; k++ {
		v |= r.readBit() << k
	}
	return v
}

// ReadLogEncoded reads a length code written by BitWriter.WriteLogEncoded.
// It returns false, having consumed maxBits+1 bits, if the code starts with
// more than maxBits 1 bits.
func (r *BitReader) ReadLogEncoded(maxBits uint) (uint32, bool) {
	cbit := uint(0)
	for r.readBit() != 0 {
		cbit++
		if cbit > maxBits {
			return 0, false
		}
	}
	return 1<<cbit | r.ReadBits(cbit), true
}
