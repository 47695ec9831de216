package kcdc

import (
	"bytes"
	"math/rand"
)

// filler returns n pseudo-random bytes, all with the high bit set so they
// never match the low-valued marker patterns the tests embed.
func filler(n int, seed uint32) []byte {
	b := make([]byte, n)
	x := seed
	for i := range b {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		b[i] = byte(x) | 0x80
	}
	return b
}

var words = []string{
	"the ", "light ", "of ", "rays ", "refracted ", "colours ", "prism ", "and ",
	"which ", "is ", "in ", "that ", "by ", "Experiment ", "glass ", "\n",
}

// corpus returns n bytes of repetitive text.
func corpus(n int, seed int64) []byte {
	rnd := rand.New(rand.NewSource(seed))
	var b bytes.Buffer
	for b.Len() < n {
		b.WriteString(words[rnd.Intn(len(words))])
	}
	return b.Bytes()[:n]
}

// noise returns n uniformly random bytes.
func noise(n int, seed int64) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(b)
	return b
}

// matchAt returns the match that starts at pos, if any.
func matchAt(matches []Match, pos int) (Match, bool) {
	i := 0
	for _, m := range matches {
		i += m.Unmatched
		if i == pos && m.Length > 0 {
			return m, true
		}
		if i > pos {
			break
		}
		i += m.Length
	}
	return Match{}, false
}

func encodeAlloc(f Format, src []byte) ([]byte, error) {
	dst := make([]byte, MaxEncodedLen(len(src)))
	n, err := Encode(f, src, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

var allFormats = []Format{Kauai, Kauai2}
