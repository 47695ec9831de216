package kcdc

// decodeBitLoop is the straightforward decoder: one BitReader, one field at
// a time, with the bit offset carried explicitly. It produces the same
// output and the same errors as the generated Program, and is kept as the
// reference the Program is tested against.
func decodeBitLoop(fp *params, dst, src []byte) (int, error) {
	if err := checkStream(fp, src); err != nil {
		return 0, err
	}

	var r BitReader
	r.Reset(src, flagsSize)
	out := 0
	limit := len(src) - fp.tailSize

	for {
		var length int
		if fp.lengthFirst {
			v, ok := r.ReadLogEncoded(maxLenBits)
			if !ok {
				return out, nil
			}
			length = int(v)
		}

		if r.ReadBits(1) == 0 {
			if !fp.lengthFirst {
				if out >= len(dst) {
					return out, ErrOutputOverrun
				}
				dst[out] = byte(r.ReadBits(8))
				out++
				continue
			}

			phase := r.BitOffset()
			used := length
			if phase > 0 {
				used++
			}
			if r.ByteOffset()+used > limit {
				return out, ErrInputOverrun
			}
			if length > len(dst)-out {
				return out, ErrOutputOverrun
			}
			var lo uint32
			if phase > 0 {
				lo = r.ReadBits(8 - phase)
			}
			for i := 0; i < length-1; i++ {
				dst[out] = byte(r.ReadBits(8))
				out++
			}
			if phase > 0 {
				dst[out] = byte(lo | r.ReadBits(phase)<<(8-phase))
			} else {
				dst[out] = byte(r.ReadBits(8))
			}
			out++
			continue
		}

		k := 0
		for k < numClasses-1 && r.ReadBits(1) != 0 {
			k++
		}
		c := &classes[k]
		payload := r.ReadBits(c.bits)
		if fp.sentinel && k == numClasses-1 && payload == 1<<c.bits-1 {
			return out, nil
		}

		if !fp.lengthFirst {
			v, ok := r.ReadLogEncoded(maxLenBits)
			if !ok {
				return out, ErrBadLength
			}
			length = int(v)
		}

		var err error
		if out, err = copyBackRef(dst, out, int(payload)+c.min, length+c.bias); err != nil {
			return out, err
		}
	}
}
