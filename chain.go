package kcdc

// HashChain is an implementation of the MatchFinder interface that indexes
// every position of the buffer by the 2 bytes starting there and walks the
// resulting chains, newest first, looking for the longest match.
//
// The search is exhaustive within the largest encodable distance, so the
// output depends only on the input: the same buffer always produces the
// same matches, and therefore the same compressed bytes.
type HashChain struct {
	// MaxLength is the longest match to look for. The default (and
	// maximum) is MaxMatchLength.
	MaxLength int

	Parser Parser

	// head maps a 2-byte context to the most recent position starting with it.
	head [1 << 16]int32

	// link holds, for each position, the previous position with the same
	// context, or noPosition.
	link []int32

	src []byte
}

// noPosition marks the end of a chain. It is far enough below zero that
// pos - noPosition never looks like an encodable distance, and far enough
// above the int32 minimum that the subtraction cannot overflow.
const noPosition = -0x33333334

func (q *HashChain) Reset() {
	q.link = q.link[:0]
	q.src = nil
}

// FindMatches looks for matches in src, appends them to dst, and returns dst.
// Unlike a streaming match finder, each call indexes src from scratch; no
// history is carried between calls.
func (q *HashChain) FindMatches(dst []Match, src []byte) []Match {
	if q.MaxLength == 0 || q.MaxLength > MaxMatchLength {
		q.MaxLength = MaxMatchLength
	}
	if q.Parser == nil {
		q.Parser = &GreedyParser{}
	}

	q.index(src)
	dst = q.Parser.Parse(dst, q, 0, len(src))

	// The index is only valid for this buffer.
	q.src = nil
	return dst
}

// index builds the hash chains for src.
func (q *HashChain) index(src []byte) {
	q.src = src
	for i := range q.head {
		q.head[i] = noPosition
	}
	if cap(q.link) >= len(src) {
		q.link = q.link[:len(src)]
	} else {
		q.link = make([]int32, len(src))
	}

	for i := 0; i < len(src)-1; i++ {
		h := uint16(src[i])<<8 | uint16(src[i+1])
		q.link[i] = q.head[h]
		q.head[h] = int32(i)
	}
	if len(src) > 0 {
		q.link[len(src)-1] = noPosition
	}
}

// Search looks for a match at pos. Each candidate that replaces the current
// best is appended to dst, so the last (and longest) entry is the one to use.
//
// A longer candidate only replaces the current best if it does not cost a
// larger offset class for a single extra byte: a match needing the largest
// class must beat a 6- or 9-bit match by at least 2 bytes.
func (q *HashChain) Search(dst []AbsoluteMatch, pos, min, max int) []AbsoluteMatch {
	src := q.src
	if pos >= len(q.link) || pos+1 >= max {
		return dst
	}

	candidate := int(q.link[pos])
	limit := pos - maxDistance - 1
	if candidate <= limit {
		return dst
	}

	maxLength := max - pos
	if maxLength > q.MaxLength {
		maxLength = q.MaxLength
	}

	length := 1
	match := pos
	next := src[pos+1]
	last := src[pos]
	for ; candidate > limit; candidate = int(q.link[candidate]) {
		if src[candidate+length] != next || src[candidate+length-1] != last {
			continue
		}
		n := equalLen(src[candidate:], src[pos:], maxLength)
		if n <= length {
			continue
		}

		if pos-candidate < classes[numClasses-1].min || n-length > 1 || pos-match >= classes[2].min {
			length = n
			match = candidate
			dst = append(dst, AbsoluteMatch{
				Start: pos,
				End:   pos + length,
				Match: match,
			})
			if length == maxLength {
				break
			}
			next = src[pos+length]
			last = src[pos+length-1]
		}
	}

	return dst
}

// equalLen returns the length of the common prefix of a and b, up to max.
func equalLen(a, b []byte, max int) int {
	a, b = a[:max], b[:max]
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return max
}
