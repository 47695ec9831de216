package kcdc

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var golden = []struct {
	src    string
	kauai  string
	kauai2 string
}{
	{
		src:    "a",
		kauai:  "00c2feffffffffffff",
		kauai2: "0084fdffff",
	},
	{
		src:    "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		kauai:  "00c202bef1ffffffffffff",
		kauai2: "00847d23e0ffff",
	},
	{
		src:    "abaabaaabaaaab",
		kauai:  "00c288094b68c388f0ffffffffffff",
		kauai2: "00156162d684d120e2ffff",
	},
	{
		src:    "hello, hello, hello world",
		kauai:  "00d09461c3e60d0b908c1b1077dec86143f6ffffffffffff",
		kauai2: "001b68656c6c6f2cc82d632220776f726cfbffff",
	},
}

func TestGolden(t *testing.T) {
	for _, g := range golden {
		for _, f := range allFormats {
			want := g.kauai
			if f == Kauai2 {
				want = g.kauai2
			}
			t.Run(fmt.Sprintf("%v/%q", f, g.src), func(t *testing.T) {
				enc, err := encodeAlloc(f, []byte(g.src))
				require.NoError(t, err)
				assert.Equal(t, want, hex.EncodeToString(enc))

				// The golden stream decodes with both interpreters.
				wantBytes, _ := hex.DecodeString(want)
				for _, c := range []*Codec{New(nil), New(&Options{Interpreter: BitLoop})} {
					dst := make([]byte, len(g.src))
					n, err := c.Decode(f, wantBytes, dst)
					require.NoError(t, err)
					assert.Equal(t, g.src, string(dst[:n]))
				}
			})
		}
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"single":   {0x42},
		"zeros":    make([]byte, 10000),
		"text":     corpus(200000, 5),
		"noise":    noise(3000, 6),
		"longrun":  append(noise(5000, 7), corpus(9000, 8)...),
		"mixed":    append(append(corpus(3000, 9), noise(300, 10)...), corpus(3000, 9)...),
		"allbytes": allBytes(),
	}
	for name, src := range inputs {
		for _, f := range allFormats {
			for _, in := range []Interpreter{PhaseTable, BitLoop} {
				t.Run(fmt.Sprintf("%s/%v/%d", name, f, in), func(t *testing.T) {
					enc, err := encodeAlloc(f, src)
					require.NoError(t, err)
					assert.Equal(t, byte(0), enc[0], "flags byte")
					assert.LessOrEqual(t, len(enc), MaxEncodedLen(len(src)))

					dst := make([]byte, len(src))
					n, err := New(&Options{Interpreter: in}).Decode(f, enc, dst)
					require.NoError(t, err)
					require.Equal(t, len(src), n)
					assert.True(t, bytes.Equal(src, dst), "decoded output doesn't match")
				})
			}
		}
	}
}

func allBytes() []byte {
	b := make([]byte, 0, 1024)
	for i := 0; i < 4; i++ {
		for c := 0; c < 256; c++ {
			b = append(b, byte(c))
		}
	}
	return b
}

func TestOverlappingMatch(t *testing.T) {
	// 37 bytes compress to one literal and a 36-byte copy at distance 1.
	src := bytes.Repeat([]byte{'a'}, 37)
	var q HashChain
	matches := q.FindMatches(nil, src)
	assert.Equal(t, []Match{{Unmatched: 1, Length: 36, Distance: 1}, {}}, matches)
}

func TestRepetitiveInputCompresses(t *testing.T) {
	src := []byte("abaabaaabaaaab")
	enc, err := encodeAlloc(Kauai2, src)
	require.NoError(t, err)
	assert.Less(t, len(enc), len(src))
}

func TestKauai2LongLiteralRun(t *testing.T) {
	// Longer than one run token can hold.
	src := noise(3*maxRunLength+17, 11)
	var q HashChain
	matches := q.FindMatches(nil, src)

	var w BitWriter
	dst := make([]byte, MaxEncodedLen(len(src)))
	w.Reset(dst)
	var e Kauai2Encoder
	require.NoError(t, e.Header(&w))
	require.NoError(t, e.Encode(&w, src, matches))

	for _, in := range []Interpreter{PhaseTable, BitLoop} {
		out := make([]byte, len(src))
		n, err := New(&Options{Interpreter: in}).Decode(Kauai2, w.Bytes(), out)
		require.NoError(t, err)
		assert.Equal(t, src, out[:n])
	}
}

func TestEncodeErrors(t *testing.T) {
	src := corpus(1000, 12)

	_, err := Encode(Kauai, src, nil)
	assert.ErrorIs(t, err, ErrIncompressible)

	_, err = Encode(Kauai2, src, make([]byte, TailSize(Kauai2)+1))
	assert.ErrorIs(t, err, ErrIncompressible)

	_, err = Encode(Kauai, nil, make([]byte, 100))
	assert.ErrorIs(t, err, ErrSourceSize)
	assert.ErrorIs(t, err, ErrParameter)

	_, err = Encode(Format(9), src, make([]byte, 2000))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	// Random data does not shrink.
	rnd := noise(4096, 13)
	for _, f := range allFormats {
		_, err = Encode(f, rnd, make([]byte, len(rnd)))
		assert.ErrorIs(t, err, ErrIncompressible, "%v", f)
		assert.ErrorIs(t, err, ErrCapacity, "%v", f)
	}
}

func TestEncodeExactFit(t *testing.T) {
	src := corpus(5000, 14)
	for _, f := range allFormats {
		enc, err := encodeAlloc(f, src)
		require.NoError(t, err)

		dst := make([]byte, len(enc))
		n, err := Encode(f, src, dst)
		require.NoError(t, err)
		assert.Equal(t, enc, dst[:n])

		_, err = Encode(f, src, make([]byte, len(enc)-1))
		assert.ErrorIs(t, err, ErrIncompressible)
	}
}

func TestDecodeErrors(t *testing.T) {
	src := corpus(2000, 15)
	for _, f := range allFormats {
		for _, in := range []Interpreter{PhaseTable, BitLoop} {
			c := New(&Options{Interpreter: in})
			name := fmt.Sprintf("%v/%d", f, in)
			enc, err := encodeAlloc(f, src)
			require.NoError(t, err)
			dst := make([]byte, len(src))

			bad := bytes.Clone(enc)
			bad[len(bad)-1] = 0xFE
			_, err = c.Decode(f, bad, dst)
			assert.ErrorIs(t, err, ErrCorruptTail, name)
			assert.ErrorIs(t, err, ErrCorrupt, name)

			bad = bytes.Clone(enc)
			bad[0] = 1
			_, err = c.Decode(f, bad, dst)
			assert.ErrorIs(t, err, ErrUnknownFlags, name)

			_, err = c.Decode(f, enc[:TailSize(f)], dst)
			assert.ErrorIs(t, err, ErrSourceTooShort, name)

			_, err = c.Decode(f, nil, dst)
			assert.ErrorIs(t, err, ErrSourceSize, name)

			n, err := c.Decode(f, enc, dst[:len(src)-1])
			assert.ErrorIs(t, err, ErrOutputOverrun, name)
			assert.Zero(t, n)

			_, err = c.Decode(Format(0), enc, dst)
			assert.ErrorIs(t, err, ErrUnknownFormat, name)
		}
	}
}

func TestDecodeLookBehindUnderrun(t *testing.T) {
	// A match before any output.
	var w BitWriter
	buf := make([]byte, 32)
	for _, f := range allFormats {
		w.Reset(buf)
		require.NoError(t, w.WriteBits(0, 8))
		code, n, length := offsetCode(5, 4)
		if f == Kauai {
			require.NoError(t, w.WriteBits(code, n))
			require.NoError(t, w.WriteLogEncoded(length))
		} else {
			require.NoError(t, w.WriteLogEncoded(length))
			require.NoError(t, w.WriteBits(code, n))
		}
		require.NoError(t, finish(&w, TailSize(f)))

		for _, in := range []Interpreter{PhaseTable, BitLoop} {
			_, err := New(&Options{Interpreter: in}).Decode(f, w.Bytes(), make([]byte, 16))
			assert.ErrorIs(t, err, ErrLookBehindUnderrun, "%v", f)
		}
	}
}

func TestDecodeBadLength(t *testing.T) {
	// A Kauai match whose length code is all 1 bits.
	stream := []byte{0x00, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	for _, in := range []Interpreter{PhaseTable, BitLoop} {
		_, err := New(&Options{Interpreter: in}).Decode(Kauai, stream, make([]byte, 16))
		assert.ErrorIs(t, err, ErrBadLength)
	}
}

func TestDecodeInputOverrun(t *testing.T) {
	// A Kauai2 literal run of 100 bytes in a 10-byte stream.
	var w BitWriter
	buf := make([]byte, 16)
	w.Reset(buf)
	require.NoError(t, w.WriteBits(0, 8))
	require.NoError(t, w.WriteLogEncoded(100))
	require.NoError(t, w.WriteBits(0, 1))
	require.NoError(t, w.WriteBits(0, 8))
	require.NoError(t, finish(&w, TailSize(Kauai2)))

	for _, in := range []Interpreter{PhaseTable, BitLoop} {
		_, err := New(&Options{Interpreter: in}).Decode(Kauai2, w.Bytes(), make([]byte, 200))
		assert.ErrorIs(t, err, ErrInputOverrun)
	}
}

func TestInterpretersAgreeOnCorruptInput(t *testing.T) {
	src := corpus(4000, 16)
	for _, f := range allFormats {
		enc, err := encodeAlloc(f, src)
		require.NoError(t, err)
		for i := 1; i < len(enc)-TailSize(f); i += 7 {
			bad := bytes.Clone(enc)
			bad[i] ^= 1 << (i % 8)

			d1 := make([]byte, len(src))
			d2 := make([]byte, len(src))
			n1, err1 := New(nil).Decode(f, bad, d1)
			n2, err2 := New(&Options{Interpreter: BitLoop}).Decode(f, bad, d2)
			require.Equal(t, err1, err2, "%v: flipped byte %d", f, i)
			require.Equal(t, n1, n2)
			require.Equal(t, d1[:n1], d2[:n2])
		}
	}
}

func TestConvert(t *testing.T) {
	src := corpus(10000, 17)
	enc := make([]byte, MaxEncodedLen(len(src)))
	n, err := Convert(true, Kauai, src, enc)
	require.NoError(t, err)

	dst := make([]byte, len(src))
	m, err := Convert(false, Kauai, enc[:n], dst)
	require.NoError(t, err)
	assert.Equal(t, src, dst[:m])
}

func TestParseFormat(t *testing.T) {
	for s, want := range map[string]Format{"kauai": Kauai, "kcdc": Kauai, "A": Kauai, "kauai2": Kauai2, "kcd2": Kauai2, "b": Kauai2} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, want, f)
	}
	_, err := ParseFormat("lzo")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, "kauai2", Kauai2.String())
}

func TestTextEncoder(t *testing.T) {
	src := []byte("abaabaaabaaaab")
	var q HashChain
	matches := q.FindMatches(nil, src)
	assert.Equal(t, "aba<4,3><5,4><2,5>", string(TextEncoder{}.Encode(nil, src, matches)))
	assert.Equal(t, `"aba"<4,3:6><5,4:6><2,5:6>`, string(TextEncoder{Quote: true, Classes: true}.Encode(nil, src, matches)))
}

func TestCodecConcurrentUse(t *testing.T) {
	c := New(nil)
	src := corpus(30000, 18)
	done := make(chan error, 8)
	for i := 0; i < cap(done); i++ {
		go func() {
			enc := make([]byte, MaxEncodedLen(len(src)))
			n, err := c.Encode(Kauai2, src, enc)
			if err != nil {
				done <- err
				return
			}
			dst := make([]byte, len(src))
			m, err := c.Decode(Kauai2, enc[:n], dst)
			if err == nil && !bytes.Equal(src, dst[:m]) {
				err = fmt.Errorf("round trip mismatch")
			}
			done <- err
		}()
	}
	for i := 0; i < cap(done); i++ {
		assert.NoError(t, <-done)
	}
}
