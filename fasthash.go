package kcdc

import (
	"encoding/binary"
	"math/bits"
)

const (
	fastTableBits = 16
	fastTableSize = 1 << fastTableBits
	fastTableMask = fastTableSize - 1
)

// FastHash is an implementation of the MatchFinder interface that keeps a
// single candidate per 4-byte hash, the way snappy does. It finds fewer and
// shorter matches than HashChain in a fraction of the time. Its output is a
// valid stream for either format, but not the same bytes HashChain produces.
type FastHash struct {
	// MaxDistance is the maximum distance (in bytes) to look back for
	// a match. The default (and maximum) is the largest encodable distance.
	MaxDistance int

	Parser Parser

	table [fastTableSize]uint32

	src []byte
}

func (q *FastHash) Reset() {
	q.table = [fastTableSize]uint32{}
	q.src = nil
}

// FindMatches looks for matches in src, appends them to dst, and returns dst.
func (q *FastHash) FindMatches(dst []Match, src []byte) []Match {
	if q.MaxDistance == 0 || q.MaxDistance > maxDistance {
		q.MaxDistance = maxDistance
	}
	if q.Parser == nil {
		q.Parser = &GreedyParser{}
	}
	q.table = [fastTableSize]uint32{}
	q.src = src
	dst = q.Parser.Parse(dst, q, 0, len(src))
	q.src = nil
	return dst
}

func (q *FastHash) Search(dst []AbsoluteMatch, pos, min, max int) []AbsoluteMatch {
	if pos+4 > len(q.src) {
		return dst
	}
	src := q.src

	h := fastHash(binary.LittleEndian.Uint32(src[pos:]))
	candidate := int(q.table[h&fastTableMask])
	q.table[h&fastTableMask] = uint32(pos)

	// Position 0 doubles as the empty slot; a match there is lost.
	if candidate == 0 || pos-candidate > q.MaxDistance {
		return dst
	}
	if binary.LittleEndian.Uint32(src[pos:]) != binary.LittleEndian.Uint32(src[candidate:]) {
		return dst
	}

	start := pos
	match := candidate
	end := extendMatch(src[:max], match+4, start+4)
	for start > min && match > 0 && src[start-1] == src[match-1] {
		start--
		match--
	}
	if end-start > MaxMatchLength {
		end = start + MaxMatchLength
	}

	return append(dst, AbsoluteMatch{
		Start: start,
		End:   end,
		Match: match,
	})
}

func fastHash(u uint32) uint32 {
	return (u * 0x1e35a7bd) >> (32 - fastTableBits)
}

// extendMatch returns the largest k such that k <= len(src) and that
// src[i:i+k-j] and src[j:k] have the same contents.
//
// It assumes that:
//
//	0 <= i && i < j && j <= len(src)
func extendMatch(src []byte, i, j int) int {
	// Compare 8 bytes at a time while there is room.
	for j+8 < len(src) {
		iBytes := binary.LittleEndian.Uint64(src[i:])
		jBytes := binary.LittleEndian.Uint64(src[j:])
		if iBytes != jBytes {
			return j + bits.TrailingZeros64(iBytes^jBytes)>>3
		}
		i, j = i+8, j+8
	}
	for ; j < len(src) && src[i] == src[j]; i, j = i+1, j+1 {
	}
	return j
}
