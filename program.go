package kcdc

import (
	"bufio"
	"fmt"
	"io"
)

// The decoder reads the stream through a 32-bit little-endian window that
// starts at a byte boundary. A token can start at any of the 8 bit phases
// of that byte, so a Program holds one block of precomputed transitions per
// phase. Each transition records where its payload sits in the window, how
// many whole bytes to advance and which phase the next field starts at;
// the decoder never tracks a bit offset of its own.
//
// The widest field is a largest-class offset (4 tag bits and 20 payload
// bits) at phase 7, which ends at bit 31 of the window.

const numPhases = 8

// dispatchBits is the number of window bits that select a transition: the
// literal/match bit plus up to 3 more bits of offset class tag.
const dispatchBits = 4

type opcode uint8

const (
	// opLiteral is a single literal byte (Kauai) or a literal run (Kauai2).
	opLiteral opcode = iota
	opMatch
)

// A transition decodes one token field starting at a known phase.
type transition struct {
	op    opcode
	class uint8

	shift uint8  // position of the payload in the window
	mask  uint32 // payload mask, after shifting
	base  uint32 // added to the payload
	bias  uint8  // added to the length code to get the match length
	end   bool   // an all-ones payload ends the stream

	width   uint8 // bits consumed, tag included
	advance uint8 // whole bytes consumed
	next    uint8 // phase of the following field
}

// A lengthStep decodes a length code whose prefix has a known number of 1
// bits, starting at a known phase.
type lengthStep struct {
	shift uint8  // position of the low bits in the window
	mask  uint32 // mask for the low bits
	base  uint32 // the implicit leading 1 bit

	width   uint8
	advance uint8
	next    uint8
}

// A block holds every transition that can start at one phase.
type block struct {
	phase    uint8
	dispatch [1 << dispatchBits]transition
	lengths  [maxLenBits + 1]lengthStep
}

// A Program is the decoding state machine for one format. Programs are
// immutable once generated and may be shared between goroutines.
type Program struct {
	Format Format

	params *params
	blocks [numPhases]block
}

var programs = map[Format]*Program{}

func init() {
	for f := range formats {
		p, err := Generate(f)
		if err != nil {
			panic(err)
		}
		programs[f] = p
	}
}

// Generate builds the decoding program for f from the offset class widths
// and the format parameters. The result is deterministic: the same format
// always yields the same program.
func Generate(f Format) (*Program, error) {
	fp, err := lookupFormat(f)
	if err != nil {
		return nil, err
	}

	p := &Program{
		Format: f,
		params: fp,
	}
	for phase := range p.blocks {
		b := &p.blocks[phase]
		b.phase = uint8(phase)
		for bits := range b.dispatch {
			b.dispatch[bits] = fp.transition(uint(phase), uint32(bits))
		}
		for cbit := range b.lengths {
			b.lengths[cbit] = newLengthStep(uint(phase), uint(cbit))
		}
	}
	return p, nil
}

// transition returns the transition for a token field that starts at phase
// with the given dispatch bits.
func (fp *params) transition(phase uint, bits uint32) transition {
	if bits&1 == 0 {
		t := transition{
			op:    opLiteral,
			shift: uint8(phase + 1),
			width: 1,
		}
		if !fp.lengthFirst {
			// The literal byte follows its tag bit.
			t.mask = 0xFF
			t.width += 8
		}
		return t.at(phase)
	}

	k := 0
	for k < numClasses-1 && bits>>(k+1)&1 != 0 {
		k++
	}
	c := &classes[k]
	t := transition{
		op:    opMatch,
		class: uint8(k),
		shift: uint8(phase + c.tagBits),
		mask:  1<<c.bits - 1,
		base:  uint32(c.min),
		bias:  uint8(c.bias),
		end:   fp.sentinel && k == numClasses-1,
		width: uint8(c.tagBits + c.bits),
	}
	return t.at(phase)
}

func (t transition) at(phase uint) transition {
	end := phase + uint(t.width)
	t.advance = uint8(end >> 3)
	t.next = uint8(end & 7)
	return t
}

func newLengthStep(phase, cbit uint) lengthStep {
	end := phase + 2*cbit + 1
	return lengthStep{
		shift:   uint8(phase + cbit + 1),
		mask:    1<<cbit - 1,
		base:    1 << cbit,
		width:   uint8(2*cbit + 1),
		advance: uint8(end >> 3),
		next:    uint8(end & 7),
	}
}

// WriteListing writes a human-readable listing of the program, one labelled
// section per phase block, in the style of generated assembly.
func (p *Program) WriteListing(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "; %s decoder (%v), %d-byte tail\n", p.params.name, p.Format, p.params.tailSize)
	fmt.Fprintf(bw, "; offset classes:")
	for _, c := range classes {
		fmt.Fprintf(bw, " %d bits from %#x;", c.bits, c.min)
	}
	fmt.Fprintln(bw)
	for i := range p.blocks {
		p.blocks[i].writeListing(bw, p.params)
	}
	fmt.Fprintln(bw, "\nLDone:")
	if !p.params.lengthFirst {
		fmt.Fprintln(bw, "LFail:")
	}
	return bw.Flush()
}

func (b *block) writeListing(w io.Writer, fp *params) {
	if fp.lengthFirst {
		b.writeLengths(w, "LBlock", "LTag", "LDone")
		b.writeDispatch(w, fp, "LTag", "LBlock", "LBlock")
		return
	}
	b.writeDispatch(w, fp, "LBlock", "LBlock", "LLen")
	b.writeLengths(w, "LLen", "LBlock", "LFail")
}

// writeDispatch lists the tag tests of the block and the code for each
// distinct transition; the dispatch table repeats a transition for every
// value of the bits beyond its tag.
func (b *block) writeDispatch(w io.Writer, fp *params, label, literalNext, matchNext string) {
	fmt.Fprintf(w, "\n%s%d:\n", label, b.phase)
	var distinct []transition
	seen := map[transition]bool{}
	for bits, t := range b.dispatch {
		if seen[t] {
			continue
		}
		seen[t] = true
		distinct = append(distinct, t)
		tagBits := uint(1)
		if t.op == opMatch {
			tagBits = classes[t.class].tagBits
		}
		fmt.Fprintf(w, "\ttag %0*b: goto %s\n", int(tagBits), uint32(bits)&(1<<tagBits-1), t.label(b.phase))
	}

	for _, t := range distinct {
		fmt.Fprintf(w, "%s:\n", t.label(b.phase))
		next := matchNext
		switch {
		case t.op == opLiteral && !fp.lengthFirst:
			fmt.Fprintf(w, "\t*out++ = window >> %d\n", t.shift)
			next = literalNext
		case t.op == opLiteral:
			fmt.Fprintf(w, "\tcopy run of len bytes starting at phase %d\n", t.next)
			next = literalNext
		default:
			fmt.Fprintf(w, "\tdist = (window >> %d) & %#x\n", t.shift, t.mask)
			if t.end {
				fmt.Fprintf(w, "\tif dist == %#x: goto LDone\n", t.mask)
			}
			fmt.Fprintf(w, "\tdist += %#x; len += %d\n", t.base, t.bias)
			if fp.lengthFirst {
				fmt.Fprintf(w, "\tcopy len bytes from out - dist\n")
			}
		}
		fmt.Fprintf(w, "\tadvance %d; goto %s%d\n", t.advance, next, t.next)
	}
}

// writeLengths lists the length code steps of the block.
func (b *block) writeLengths(w io.Writer, label, next, overflow string) {
	fmt.Fprintf(w, "\n%s%d:\n", label, b.phase)
	for cbit, ls := range b.lengths {
		fmt.Fprintf(w, "\tones == %d: len = %#x | (window >> %d) & %#x; advance %d; goto %s%d\n",
			cbit, ls.base, ls.shift, ls.mask, ls.advance, next, ls.next)
	}
	fmt.Fprintf(w, "\tones > %d: goto %s\n", maxLenBits, overflow)
}

func (t transition) label(phase uint8) string {
	if t.op == opLiteral {
		return fmt.Sprintf("LLiteral%d", phase)
	}
	return fmt.Sprintf("L%dBit%d", classes[t.class].bits, phase)
}
