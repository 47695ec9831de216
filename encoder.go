package kcdc

// A KauaiEncoder implements the Encoder interface, writing the Kauai
// (KCDC) format. Each literal is a 0 bit followed by the byte; each match is
// an offset class tag and payload followed by a length code. The stream
// ends with a largest-class offset of all 1 bits, supplied by the padding
// and tail.
type KauaiEncoder struct{}

func (KauaiEncoder) Reset() {}

func (KauaiEncoder) Header(w *BitWriter) error {
	return w.WriteBits(0, 8)
}

func (KauaiEncoder) Encode(w *BitWriter, src []byte, matches []Match) error {
	pos := 0
	for _, m := range matches {
		for _, b := range src[pos : pos+m.Unmatched] {
			if err := w.WriteBits(uint32(b)<<1, 9); err != nil {
				return err
			}
		}
		pos += m.Unmatched
		if m.Length == 0 {
			continue
		}

		code, n, length := offsetCode(m.Distance, m.Length)
		if err := w.WriteBits(code, n); err != nil {
			return err
		}
		if err := w.WriteLogEncoded(length); err != nil {
			return err
		}
		pos += m.Length
	}
	return finish(w, formats[Kauai].tailSize)
}

// A Kauai2Encoder implements the Encoder interface, writing the Kauai2
// (KCD2) format. Every token starts with a length code; a following 0 bit
// introduces a run of literal bytes, anything else is an offset class tag.
// The stream ends with a length code that is too long, supplied by the
// padding and tail.
type Kauai2Encoder struct{}

func (Kauai2Encoder) Reset() {}

func (Kauai2Encoder) Header(w *BitWriter) error {
	return w.WriteBits(0, 8)
}

func (Kauai2Encoder) Encode(w *BitWriter, src []byte, matches []Match) error {
	pos := 0
	for _, m := range matches {
		for run := src[pos : pos+m.Unmatched]; len(run) > 0; {
			n := min(len(run), maxRunLength)
			if err := writeRun(w, run[:n]); err != nil {
				return err
			}
			run = run[n:]
		}
		pos += m.Unmatched
		if m.Length == 0 {
			continue
		}

		code, n, length := offsetCode(m.Distance, m.Length)
		if err := w.WriteLogEncoded(length); err != nil {
			return err
		}
		if err := w.WriteBits(code, n); err != nil {
			return err
		}
		pos += m.Length
	}
	return finish(w, formats[Kauai2].tailSize)
}

// writeRun writes a literal run. The bytes are laid out so that all but the
// last are byte aligned in the stream: the low bits of the last byte fill
// out the current partial byte, and its high bits follow the aligned bytes.
func writeRun(w *BitWriter, run []byte) error {
	if err := w.WriteLogEncoded(uint32(len(run))); err != nil {
		return err
	}
	if err := w.WriteBits(0, 1); err != nil {
		return err
	}

	last := run[len(run)-1]
	ibit := w.BitOffset()
	if ibit > 0 {
		if err := w.WriteBits(uint32(last), 8-ibit); err != nil {
			return err
		}
	} else {
		ibit = 8
	}
	for _, b := range run[:len(run)-1] {
		if err := w.WriteBits(uint32(b), 8); err != nil {
			return err
		}
	}
	return w.WriteBits(uint32(last)>>(8-ibit), ibit)
}

// offsetCode returns the tag and payload for a match as one field of n bits,
// and the value to store in the length code.
func offsetCode(distance, length int) (code uint32, n uint, lengthCode uint32) {
	c := &classes[classify(distance)]
	code = uint32(distance-c.min)<<c.tagBits | c.tag
	return code, c.tagBits + c.bits, uint32(length - c.bias)
}

// finish fills the last partial byte with 1 bits and appends the tail of
// 0xFF bytes.
func finish(w *BitWriter, tailSize int) error {
	if ibit := w.BitOffset(); ibit > 0 {
		if err := w.WriteBits(0xFF, 8-ibit); err != nil {
			return err
		}
	}
	for n := 0; n < tailSize; n += 4 {
		if err := w.WriteBits(0xFFFFFFFF, uint(min(4, tailSize-n))*8); err != nil {
			return err
		}
	}
	return nil
}
