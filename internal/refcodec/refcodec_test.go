package refcodec

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/kauai/kcdc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []byte {
	var b bytes.Buffer
	rnd := rand.New(rand.NewSource(1))
	words := []string{"light ", "prism ", "colour ", "ray ", "the ", "of ", "\n"}
	for b.Len() < 64<<10 {
		b.WriteString(words[rnd.Intn(len(words))])
	}
	return b.Bytes()
}

func TestRoundTrip(t *testing.T) {
	codecs, err := All()
	require.NoError(t, err)
	data := sample()
	sum := Checksum(data)

	var buf, back []byte
	for _, c := range codecs {
		buf, err = c.Compress(buf, data)
		require.NoError(t, err, c.Name())
		assert.Less(t, len(buf), len(data), c.Name())

		back, err = c.Decompress(back, buf, len(data))
		require.NoError(t, err, c.Name())
		assert.Equal(t, sum, Checksum(back), c.Name())
	}
}

func TestLookup(t *testing.T) {
	c, err := Lookup("kauai2")
	require.NoError(t, err)
	assert.Equal(t, Kauai{Format: kcdc.Kauai2}, c)

	c, err = Lookup("zstd")
	require.NoError(t, err)
	assert.Equal(t, "zstd", c.Name())

	_, err = Lookup("lzma")
	assert.Error(t, err)
}

func TestKauaiWorstCase(t *testing.T) {
	data := make([]byte, 4096)
	rand.New(rand.NewSource(2)).Read(data)
	// The Kauai adapter always sizes its buffer for the worst case.
	buf, err := Kauai{Format: kcdc.Kauai}.Compress(nil, data)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(buf), kcdc.MaxEncodedLen(len(data)))
}

func TestChecksum(t *testing.T) {
	// Reference value of xxHash32 with seed 0.
	assert.Equal(t, uint32(0x02cc5d05), Checksum(nil))
}
