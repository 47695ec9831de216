package kcdc

import (
	"sync"

	"github.com/rs/zerolog"
)

// An Interpreter selects how a Codec decodes.
type Interpreter int

const (
	// PhaseTable runs the generated per-phase dispatch tables. It is the
	// default.
	PhaseTable Interpreter = iota

	// BitLoop reads one bit field at a time with an explicit bit cursor.
	// It is slower and produces identical results.
	BitLoop
)

// Options configures a Codec.
type Options struct {
	// Interpreter selects the decoder implementation.
	Interpreter Interpreter

	// Fast selects the FastHash match finder instead of HashChain. The
	// output is smaller to compute and larger to store, and is no longer
	// byte-identical with other encoders of the format.
	Fast bool

	// Logger receives a Debug event for every failed call. The zero value
	// discards everything.
	Logger zerolog.Logger
}

// DefaultOptions returns options for the phase-table decoder with logging
// disabled.
func DefaultOptions() *Options {
	return &Options{
		Interpreter: PhaseTable,
		Logger:      zerolog.Nop(),
	}
}

// A Codec compresses and decompresses buffers in the Kauai formats. A Codec
// has no mutable state; it is safe for concurrent use.
type Codec struct {
	opts Options
}

// New returns a Codec. opts may be nil (uses DefaultOptions).
func New(opts *Options) *Codec {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Codec{opts: *opts}
}

var defaultCodec = New(nil)

// Convert encodes (encode == true) or decodes src into dst using the
// package's default Codec, and returns the number of bytes written to dst.
func Convert(encode bool, f Format, src, dst []byte) (int, error) {
	return defaultCodec.Convert(encode, f, src, dst)
}

// Encode compresses src into dst using the default Codec.
func Encode(f Format, src, dst []byte) (int, error) {
	return defaultCodec.Encode(f, src, dst)
}

// Decode decompresses src into dst using the default Codec.
func Decode(f Format, src, dst []byte) (int, error) {
	return defaultCodec.Decode(f, src, dst)
}

// Convert encodes or decodes src into dst and returns the number of bytes
// written. On error the contents of dst are unspecified and the count is 0.
func (c *Codec) Convert(encode bool, f Format, src, dst []byte) (int, error) {
	if encode {
		return c.Encode(f, src, dst)
	}
	return c.Decode(f, src, dst)
}

// Encode compresses src into dst. It returns ErrIncompressible if the
// compressed stream does not fit; dst is never grown. MaxEncodedLen gives a
// capacity that always suffices.
func (c *Codec) Encode(f Format, src, dst []byte) (int, error) {
	n, err := c.encode(f, src, dst)
	if err != nil {
		c.opts.Logger.Debug().Err(err).Stringer("format", f).
			Int("src", len(src)).Int("dst", len(dst)).Msg("encode failed")
		return 0, err
	}
	return n, nil
}

func (c *Codec) encode(f Format, src, dst []byte) (int, error) {
	fp, err := lookupFormat(f)
	if err != nil {
		return 0, err
	}
	if len(src) < 1 || len(src) > MaxBufferSize {
		return 0, ErrSourceSize
	}
	if len(dst)-fp.tailSize <= flagsSize {
		return 0, ErrIncompressible
	}

	var e Encoder = KauaiEncoder{}
	if fp.lengthFirst {
		e = Kauai2Encoder{}
	}

	sc := acquireScratch()
	defer releaseScratch(sc)
	var mf MatchFinder = &sc.chain
	if c.opts.Fast {
		mf = &sc.fast
	}
	matches := mf.FindMatches(sc.matches[:0], src)
	sc.matches = matches[:0]

	var w BitWriter
	w.Reset(dst)
	if err := e.Header(&w); err != nil {
		return 0, err
	}
	if err := e.Encode(&w, src, matches); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

// Decode decompresses src into dst and returns the decompressed length.
// Any malformed input is reported; the output is never silently truncated.
func (c *Codec) Decode(f Format, src, dst []byte) (int, error) {
	n, err := c.decode(f, src, dst)
	if err != nil {
		c.opts.Logger.Debug().Err(err).Stringer("format", f).
			Int("src", len(src)).Int("dst", len(dst)).Int("decoded", n).Msg("decode failed")
		return 0, err
	}
	return n, nil
}

func (c *Codec) decode(f Format, src, dst []byte) (int, error) {
	p, ok := programs[f]
	if !ok {
		return 0, ErrUnknownFormat
	}
	if len(src) < 1 || len(src) > MaxBufferSize {
		return 0, ErrSourceSize
	}
	if c.opts.Interpreter == BitLoop {
		return decodeBitLoop(p.params, dst, src)
	}
	return p.Decode(dst, src)
}

// MaxEncodedLen returns the largest compressed size of an n-byte buffer in
// either format. The most expensive token is a 1-byte Kauai2 literal run at
// 10 bits; a Kauai literal costs 9.
func MaxEncodedLen(n int) int {
	return flagsSize + (10*n+7)/8 + formats[Kauai].tailSize
}

// scratch holds the match finders and match buffer for one Encode call.
// Their 256 KiB tables are worth reusing between calls; a scratch is only
// ever used by one call at a time.
type scratch struct {
	chain   HashChain
	fast    FastHash
	matches []Match
}

var scratchPool = sync.Pool{
	New: func() any {
		return &scratch{}
	},
}

func acquireScratch() *scratch {
	return scratchPool.Get().(*scratch)
}

func releaseScratch(sc *scratch) {
	sc.chain.Reset()
	sc.fast.src = nil
	scratchPool.Put(sc)
}
