package kcdc

import "fmt"

// A Format selects one of the Kauai wire formats.
type Format int

const (
	// Kauai is the first codec (Format A): every literal byte carries its
	// own tag bit, and match tokens are offset first, length second.
	Kauai Format = iota + 1

	// Kauai2 (Format B) batches literal bytes into runs and writes match
	// tokens length first, offset second.
	Kauai2
)

func (f Format) String() string {
	switch f {
	case Kauai:
		return "kauai"
	case Kauai2:
		return "kauai2"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat returns the Format named s ("kauai", "kauai2", or the
// four-character codes "kcdc", "kcd2").
func ParseFormat(s string) (Format, error) {
	switch s {
	case "kauai", "kcdc", "a", "A":
		return Kauai, nil
	case "kauai2", "kcd2", "b", "B":
		return Kauai2, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

const (
	// MaxBufferSize is the largest source buffer Convert accepts.
	MaxBufferSize = 0x08000000

	// MaxMatchLength is the longest back-reference the encoder emits.
	MaxMatchLength = 1 << (maxLenBits + 1)

	// maxLenBits is the longest run of 1 bits a length code may start with.
	maxLenBits = 11

	// maxRunLength is the longest literal run a single Kauai2 token carries.
	maxRunLength = 1<<(maxLenBits+1) - 1

	// flagsSize is the size of the leading flags byte.
	flagsSize = 1
)

// numClasses is the number of offset classes.
const numClasses = 4

// classBits holds the payload width of each offset class. Everything else
// about the offset encoding (tags, minimum distances) is derived from it.
var classBits = [numClasses]uint{6, 9, 12, 20}

// offsetClass describes how one range of match distances is encoded.
type offsetClass struct {
	bits    uint   // payload width
	tagBits uint   // width of the unary tag, including the leading match bit
	tag     uint32 // tag value, LSB first
	min     int    // smallest distance in the class
	bias    int    // added to the decoded length code to get the match length
}

// classes is the offset class table shared by both formats.
var classes = buildClasses(classBits)

// buildClasses derives the offset class table from the payload widths. The
// minimum distance of each class is the exclusive upper bound of the
// previous one, so the classes partition the distance range without gaps.
func buildClasses(widths [numClasses]uint) [numClasses]offsetClass {
	var cs [numClasses]offsetClass
	lo := 1
	for k, w := range widths {
		tagBits := uint(k + 2)
		if k == numClasses-1 {
			// The largest class ends its tag on the fourth 1 bit instead of a zero.
			tagBits = numClasses
		}
		cs[k] = offsetClass{
			bits:    w,
			tagBits: tagBits,
			tag:     1<<(k+1) - 1,
			min:     lo,
			bias:    1,
		}
		lo += 1 << w
	}
	// Matches in the largest class are at least 3 bytes long; the length
	// code stores the excess over that.
	cs[numClasses-1].bias = 2
	return cs
}

// maxDistance is the largest distance the encoder emits. The all-ones
// payload of the largest class is reserved as the Kauai end-of-stream
// marker, so it is excluded for both formats.
var maxDistance = classes[numClasses-1].min + 1<<classes[numClasses-1].bits - 2

// classify returns the offset class for a match distance.
func classify(distance int) int {
	for k := 0; k < numClasses-1; k++ {
		if distance < classes[k+1].min {
			return k
		}
	}
	return numClasses - 1
}

// params holds the per-format constants.
type params struct {
	format Format
	name   string

	// tailSize is the number of 0xFF bytes every stream ends with.
	tailSize int

	// lengthFirst is set when match tokens carry their length code before
	// the offset tag (Kauai2).
	lengthFirst bool

	// sentinel is set when the all-ones payload of the largest offset class
	// ends the stream (Kauai). Kauai2 ends on an over-long length code.
	sentinel bool
}

var formats = map[Format]*params{
	Kauai: {
		format:   Kauai,
		name:     "KCDC",
		tailSize: 6,
		sentinel: true,
	},
	Kauai2: {
		format:      Kauai2,
		name:        "KCD2",
		tailSize:    2,
		lengthFirst: true,
	},
}

func lookupFormat(f Format) (*params, error) {
	p, ok := formats[f]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	return p, nil
}

// TailSize returns the number of trailing 0xFF bytes in a stream of format f,
// or 0 for an unknown format.
func TailSize(f Format) int {
	if p, ok := formats[f]; ok {
		return p.tailSize
	}
	return 0
}
