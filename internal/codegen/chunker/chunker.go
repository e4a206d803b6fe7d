// Package chunker splits an embedded payload into bounded string literals.
//
// A payload is cut into lines of at most BytesPerLine bytes. Consecutive
// lines are concatenated into one literal part; every LinesPerPart lines a
// new part starts, emitted as a separate array element. This keeps every
// compiled constant below the host platform's size limit (64k for Java).
package chunker

import (
	"fmt"
	"iter"
)

// Kind tells an emitter what to do with an Instruction.
type Kind int

const (
	// StartPart opens a new literal part (a new array element).
	StartPart Kind = iota
	// Line continues the current part with one escaped line.
	Line
)

func (k Kind) String() string {
	switch k {
	case StartPart:
		return "start-part"
	case Line:
		return "line"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Instruction is one emission step.
type Instruction struct {
	Kind Kind
	// Part is the index of the part being started or continued.
	Part int
	// Index is the global line index. Zero for StartPart.
	Index int
	// Raw holds the line bytes and Text their escaped form. Both are empty
	// for StartPart.
	Raw  []byte
	Text string
}

// FirstInPart reports whether a Line instruction opens its part.
func (in Instruction) FirstInPart(linesPerPart int) bool {
	return in.Kind == Line && in.Index%linesPerPart == 0
}

// Chunker cuts payloads with fixed limits.
type Chunker struct {
	bytesPerLine int
	linesPerPart int
	escape       Escaper
}

// New creates a Chunker. Both limits must be positive.
func New(bytesPerLine, linesPerPart int, escape Escaper) *Chunker {
	if bytesPerLine <= 0 || linesPerPart <= 0 {
		panic(fmt.Sprintf("chunker: invalid limits %d/%d", bytesPerLine, linesPerPart))
	}
	return &Chunker{bytesPerLine: bytesPerLine, linesPerPart: linesPerPart, escape: escape}
}

// BytesPerLine returns the line limit.
func (c *Chunker) BytesPerLine() int { return c.bytesPerLine }

// LinesPerPart returns the part limit.
func (c *Chunker) LinesPerPart() int { return c.linesPerPart }

// BytesPerPart is the maximum number of raw bytes in a single part.
func (c *Chunker) BytesPerPart() int { return c.bytesPerLine * c.linesPerPart }

// Chunks returns the emission sequence for data. The sequence is lazy and can
// be ranged over any number of times; an empty payload yields nothing.
func (c *Chunker) Chunks(data []byte) iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		for i, line := 0, 0; i < len(data); i, line = i+c.bytesPerLine, line+1 {
			part := line / c.linesPerPart
			if line%c.linesPerPart == 0 {
				if !yield(Instruction{Kind: StartPart, Part: part}) {
					return
				}
			}
			raw := data[i:min(i+c.bytesPerLine, len(data))]
			if !yield(Instruction{Kind: Line, Part: part, Index: line, Raw: raw, Text: c.escape(raw)}) {
				return
			}
		}
	}
}
