// Package refcodec wraps the Kauai codecs and a set of well-known
// compressors behind one interface, so they can be compared on the same
// data.
package refcodec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/kauai/kcdc"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pierrec/xxHash/xxHash32"
)

// ErrIncompressible is returned by Compress when a block codec produces no
// output for src.
var ErrIncompressible = errors.New("refcodec: incompressible")

// A Codec compresses whole buffers.
type Codec interface {
	Name() string

	// Compress appends the compressed form of src to dst[:0].
	Compress(dst, src []byte) ([]byte, error)

	// Decompress decompresses src, whose uncompressed size is size, into
	// dst[:0].
	Decompress(dst, src []byte, size int) ([]byte, error)
}

// All returns the Kauai codecs followed by the reference codecs, in a fixed
// order.
func All() ([]Codec, error) {
	z, err := NewZstd()
	if err != nil {
		return nil, err
	}
	return []Codec{
		Kauai{Format: kcdc.Kauai},
		Kauai{Format: kcdc.Kauai2},
		Snappy{},
		LZ4{},
		Flate{Level: flate.BestCompression},
		z,
		Brotli{Level: brotli.BestCompression},
	}, nil
}

// Lookup returns the codec called name from All.
func Lookup(name string) (Codec, error) {
	all, err := All()
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("refcodec: unknown codec %q", name)
}

// Kauai adapts the kcdc package.
type Kauai struct {
	Format kcdc.Format
	Codec  *kcdc.Codec
}

func (k Kauai) Name() string { return k.Format.String() }

func (k Kauai) codec() *kcdc.Codec {
	if k.Codec == nil {
		return kcdc.New(nil)
	}
	return k.Codec
}

func (k Kauai) Compress(dst, src []byte) ([]byte, error) {
	dst = grow(dst, kcdc.MaxEncodedLen(len(src)))
	n, err := k.codec().Encode(k.Format, src, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

func (k Kauai) Decompress(dst, src []byte, size int) ([]byte, error) {
	dst = grow(dst, size)
	n, err := k.codec().Decode(k.Format, src, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// Snappy is the snappy block format.
type Snappy struct{}

func (Snappy) Name() string { return "snappy" }

func (Snappy) Compress(dst, src []byte) ([]byte, error) {
	return snappy.Encode(dst[:cap(dst)], src), nil
}

func (Snappy) Decompress(dst, src []byte, size int) ([]byte, error) {
	return snappy.Decode(grow(dst, size), src)
}

// LZ4 is the LZ4 block format.
type LZ4 struct{}

func (LZ4) Name() string { return "lz4" }

func (LZ4) Compress(dst, src []byte) ([]byte, error) {
	dst = grow(dst, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, dst, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrIncompressible
	}
	return dst[:n], nil
}

func (LZ4) Decompress(dst, src []byte, size int) ([]byte, error) {
	dst = grow(dst, size)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// Flate is raw DEFLATE.
type Flate struct {
	Level int
}

func (Flate) Name() string { return "flate" }

func (f Flate) Compress(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst[:0])
	w, err := flate.NewWriter(buf, f.Level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Flate) Decompress(dst, src []byte, size int) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(src))
	defer r.Close()
	return readAll(dst, r, size)
}

// Zstd is the Zstandard frame format. The encoder and decoder are created
// once and reused; both are safe for concurrent EncodeAll/DecodeAll calls.
type Zstd struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewZstd returns a Zstd codec at the default speed.
func NewZstd() (*Zstd, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &Zstd{enc: enc, dec: dec}, nil
}

func (*Zstd) Name() string { return "zstd" }

func (z *Zstd) Compress(dst, src []byte) ([]byte, error) {
	return z.enc.EncodeAll(src, dst[:0]), nil
}

func (z *Zstd) Decompress(dst, src []byte, size int) ([]byte, error) {
	return z.dec.DecodeAll(src, dst[:0])
}

// Brotli is the Brotli format.
type Brotli struct {
	Level int
}

func (Brotli) Name() string { return "brotli" }

func (b Brotli) Compress(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst[:0])
	w := brotli.NewWriterLevel(buf, b.Level)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Brotli) Decompress(dst, src []byte, size int) ([]byte, error) {
	return readAll(dst, brotli.NewReader(bytes.NewReader(src)), size)
}

// Checksum returns the xxHash32 digest used to verify round trips.
func Checksum(b []byte) uint32 {
	return xxHash32.Checksum(b, 0)
}

// grow returns dst resized to n bytes, reallocating if needed.
func grow(dst []byte, n int) []byte {
	if cap(dst) < n {
		return make([]byte, n)
	}
	return dst[:n]
}

func readAll(dst []byte, r io.Reader, size int) ([]byte, error) {
	buf := bytes.NewBuffer(grow(dst, size)[:0])
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
