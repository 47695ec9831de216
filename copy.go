package kcdc

// copyBackRef copies length bytes from dst[out-dist:] to dst[out:] and
// returns the new output position. If dist < length the regions overlap and
// the copy runs forward one byte at a time, so a short pattern repeats.
func copyBackRef(dst []byte, out, dist, length int) (int, error) {
	from := out - dist
	if from < 0 {
		return out, ErrLookBehindUnderrun
	}
	if length > len(dst)-out {
		return out, ErrOutputOverrun
	}

	if dist >= length {
		copy(dst[out:out+length], dst[from:from+length])
		return out + length, nil
	}

	for i := 0; i < length; i++ {
		dst[out+i] = dst[from+i]
	}
	return out + length, nil
}
