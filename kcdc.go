// Package kcdc implements the Kauai codecs, a family of LZ77 compressors
// for whole in-memory buffers.
//
// Compression is split into two stages, the same way a modular LZ77
// system is:
//   - a MatchFinder (HashChain) that looks for repeated byte sequences, and
//   - an Encoder that writes the matches in one of the two bit-packed wire
//     formats (Kauai and Kauai2).
//
// Decompression runs a table-driven state machine built once per format by
// Generate. The tables hold one dispatch block for each of the 8 bit phases
// a token can start at, so the decoder never re-aligns its bit cursor.
//
// Most callers only need Convert, Encode and Decode:
//
//	n, err := kcdc.Encode(kcdc.Kauai2, src, dst)
//	if errors.Is(err, kcdc.ErrIncompressible) {
//		// store src uncompressed
//	}
package kcdc

// A Match is the basic unit of LZ77 compression.
type Match struct {
	Unmatched int // the number of unmatched bytes since the previous match
	Length    int // the number of bytes in the matched string; it may be 0 at the end of the input
	Distance  int // how far back in the stream to copy from
}

// A MatchFinder performs the LZ77 stage of compression, looking for matches.
type MatchFinder interface {
	// FindMatches looks for matches in src, appends them to dst, and returns dst.
	FindMatches(dst []Match, src []byte) []Match

	// Reset clears any internal state, preparing the MatchFinder to be used with
	// a new buffer.
	Reset()
}

// An Encoder encodes the data in its final format.
type Encoder interface {
	// Header writes the stream header (the flags byte) to w.
	Header(w *BitWriter) error

	// Encode writes src to w, using the match information from matches,
	// and terminates the stream.
	Encode(w *BitWriter, src []byte, matches []Match) error

	// Reset clears any internal state, preparing the Encoder to be used with
	// a new buffer.
	Reset()
}
