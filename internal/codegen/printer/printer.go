// Package printer writes generated source text with variable substitution,
// indentation and annotation of substituted spans.
package printer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Alia5/protoembed/internal/codegen/annotate"
)

type span struct{ begin, end int }

// Printer accumulates generated text in memory.
//
// Templates passed to Print reference variables as $name$; "$$" prints a
// literal dollar sign. Indentation is applied at the start of every
// non-empty line.
type Printer struct {
	buf         bytes.Buffer
	delim       byte
	unit        string
	indent      string
	atLineStart bool

	collector annotate.Collector
	spans     map[string]span
}

// New creates a Printer. unit is one indentation level. c may be nil, in
// which case no span bookkeeping happens at all.
func New(delim byte, unit string, c annotate.Collector) *Printer {
	p := &Printer{delim: delim, unit: unit, atLineStart: true, collector: c}
	if c != nil {
		p.spans = make(map[string]span)
	}
	return p
}

// Print writes text, substituting the variables given as name/value pairs.
func (p *Printer) Print(text string, vars ...string) {
	if len(vars)%2 != 0 {
		panic(fmt.Sprintf("printer: odd number of variable arguments for %q", text))
	}
	for len(text) > 0 {
		i := strings.IndexByte(text, p.delim)
		if i < 0 {
			p.write(text)
			return
		}
		p.write(text[:i])
		text = text[i+1:]

		j := strings.IndexByte(text, p.delim)
		if j < 0 {
			panic(fmt.Sprintf("printer: unterminated variable in %q", text))
		}
		name := text[:j]
		text = text[j+1:]
		if name == "" {
			p.write(string(p.delim))
			continue
		}
		value, ok := lookup(vars, name)
		if !ok {
			panic(fmt.Sprintf("printer: undefined variable %q", name))
		}
		// Indent before measuring so the span covers only the value.
		if p.atLineStart && value != "" {
			p.buf.WriteString(p.indent)
			p.atLineStart = false
		}
		begin := p.buf.Len()
		p.write(value)
		if p.spans != nil {
			p.spans[name] = span{begin: begin, end: p.buf.Len()}
		}
	}
}

func lookup(vars []string, name string) (string, bool) {
	for i := 0; i < len(vars); i += 2 {
		if vars[i] == name {
			return vars[i+1], true
		}
	}
	return "", false
}

func (p *Printer) write(s string) {
	for len(s) > 0 {
		nl := strings.IndexByte(s, '\n')
		line := s
		if nl >= 0 {
			line = s[:nl]
		}
		if line != "" {
			if p.atLineStart {
				p.buf.WriteString(p.indent)
			}
			p.buf.WriteString(line)
			p.atLineStart = false
		}
		if nl < 0 {
			return
		}
		p.buf.WriteByte('\n')
		p.atLineStart = true
		s = s[nl+1:]
	}
}

// Indent increases the indentation by one unit.
func (p *Printer) Indent() { p.indent += p.unit }

// Outdent decreases the indentation by one unit.
func (p *Printer) Outdent() {
	if len(p.indent) < len(p.unit) {
		panic("printer: outdent without matching indent")
	}
	p.indent = p.indent[:len(p.indent)-len(p.unit)]
}

// Annotate records the span of the last substitution of variable name as
// generated from the element at path in sourceFile.
func (p *Printer) Annotate(name, sourceFile string, path []int32) {
	if p.collector == nil {
		return
	}
	s, ok := p.spans[name]
	if !ok {
		panic(fmt.Sprintf("printer: annotating variable %q that was never printed", name))
	}
	p.collector.Add(path, sourceFile, s.begin, s.end)
}

// Bytes returns the text printed so far.
func (p *Printer) Bytes() []byte { return p.buf.Bytes() }

// String returns the text printed so far.
func (p *Printer) String() string { return p.buf.String() }
