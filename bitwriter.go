package kcdc

import "math/bits"

// A BitWriter packs variable-width bit fields into a fixed-capacity byte
// buffer, least significant bit first. The buffer is never grown: a write
// that does not fit returns ErrIncompressible and the caller abandons the
// whole stream.
type BitWriter struct {
	buf  []byte
	ib   int  // index of the byte being filled
	ibit uint // number of bits already used in buf[ib]
}

// Reset points w at buf. The capacity of the stream is len(buf).
func (w *BitWriter) Reset(buf []byte) {
	w.buf = buf
	w.ib = 0
	w.ibit = 0
}

// Len returns the number of bytes touched so far, counting a partially
// filled last byte.
func (w *BitWriter) Len() int {
	if w.ibit > 0 {
		return w.ib + 1
	}
	return w.ib
}

// BitOffset returns the number of bits used in the last, partially filled
// byte (0 when the stream is byte aligned).
func (w *BitWriter) BitOffset() uint {
	return w.ibit
}

// Bytes returns the completed part of the stream.
func (w *BitWriter) Bytes() []byte {
	return w.buf[:w.Len()]
}

// WriteBits appends the low n bits of v (n <= 32).
func (w *BitWriter) WriteBits(v uint32, n uint) error {
	lu := uint64(v) & (1<<n - 1)

	// Merge into the partial byte.
	if w.ibit > 0 {
		w.buf[w.ib] = w.buf[w.ib]&(1<<w.ibit-1) | byte(lu<<w.ibit)
		if w.ibit+n < 8 {
			w.ibit += n
			return nil
		}
		n -= 8 - w.ibit
		lu >>= 8 - w.ibit
		w.ib++
		w.ibit = 0
	}

	cb := int(n >> 3)
	n &= 7
	extra := 0
	if n > 0 {
		extra = 1
	}
	if w.ib+cb+extra > len(w.buf) {
		return ErrIncompressible
	}

	for ; cb > 0; cb-- {
		w.buf[w.ib] = byte(lu)
		w.ib++
		lu >>= 8
	}
	if n > 0 {
		w.buf[w.ib] = byte(lu)
		w.ibit = n
	}
	return nil
}

// WriteLogEncoded appends v (0 < v < 1<<31) as a length code: cbit 1 bits,
// a 0 bit, then the low cbit bits of v, where cbit is one less than the bit
// length of v. The leading 1 bit of v is implicit.
func (w *BitWriter) WriteLogEncoded(v uint32) error {
	if v == 0 || v&0x80000000 != 0 {
		panic("kcdc: bad value to encode logarithmically")
	}
	cbit := logBits(v)
	if cbit > 0 {
		if err := w.WriteBits(0xFFFFFFFF, cbit); err != nil {
			return err
		}
	}
	return w.WriteBits(v<<1, cbit+1)
}

// logBits returns the number of 1 bits that prefix the length code of v.
func logBits(v uint32) uint {
	return uint(bits.Len32(v)) - 1
}
