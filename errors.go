package kcdc

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by this package wraps exactly one of
// them, so callers can test with errors.Is(err, kcdc.ErrCorrupt).
var (
	// ErrCapacity is returned when the destination buffer is too small.
	ErrCapacity = errors.New("kcdc: destination too small")
	// ErrCorrupt is returned when compressed data fails validation.
	ErrCorrupt = errors.New("kcdc: corrupt compressed data")
	// ErrParameter is returned for an unknown format or a source size out of range.
	ErrParameter = errors.New("kcdc: bad parameter")
)

var (
	// ErrIncompressible is returned by Encode when the compressed stream does
	// not fit in dst. Callers are expected to store the data uncompressed.
	ErrIncompressible = fmt.Errorf("%w: data does not compress into the destination", ErrCapacity)
	// ErrOutputOverrun is returned when decoding would write past the end of dst.
	ErrOutputOverrun = fmt.Errorf("%w: output overrun", ErrCapacity)

	// ErrSourceTooShort is returned when the compressed stream cannot hold a flags byte and a tail.
	ErrSourceTooShort = fmt.Errorf("%w: source stream too short", ErrCorrupt)
	// ErrCorruptTail is returned when the trailing 0xFF padding is missing.
	ErrCorruptTail = fmt.Errorf("%w: bad tail of compressed data", ErrCorrupt)
	// ErrUnknownFlags is returned when the leading flags byte is not zero.
	ErrUnknownFlags = fmt.Errorf("%w: unknown flag byte", ErrCorrupt)
	// ErrBadLength is returned when a length code is longer than the format allows.
	ErrBadLength = fmt.Errorf("%w: bad length code", ErrCorrupt)
	// ErrLookBehindUnderrun is returned when a back-reference points before the start of the output.
	ErrLookBehindUnderrun = fmt.Errorf("%w: lookbehind underrun", ErrCorrupt)
	// ErrInputOverrun is returned when a literal run extends into the tail padding.
	ErrInputOverrun = fmt.Errorf("%w: input overrun", ErrCorrupt)

	// ErrUnknownFormat is returned for a Format value this package does not implement.
	ErrUnknownFormat = fmt.Errorf("%w: unknown format", ErrParameter)
	// ErrSourceSize is returned when len(src) is outside [1, MaxBufferSize].
	ErrSourceSize = fmt.Errorf("%w: source size out of range", ErrParameter)
)
