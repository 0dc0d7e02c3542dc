// This file is part of intcode - https://github.com/db47h/intcode
//
// Copyright 2019 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package asm

import (
	"io"
	"sort"
	"strconv"
	"text/scanner"
	"unicode"

	"github.com/db47h/intcode/vm"
)

const maxErrors = 10

func isIdentRune(ch rune, i int) bool {
	return unicode.IsLetter(ch) || unicode.IsSymbol(ch) || unicode.IsPunct(ch) || unicode.IsDigit(ch)
}

type labelSite struct {
	pos     scanner.Position
	address int
}

type label struct {
	labelSite
	uses []labelSite
}

type parser struct {
	img    vm.Image
	pc     int
	size   int
	s      scanner.Scanner
	labels map[string]*label
	consts map[string]labelSite
	errs   ErrAsm

	// instruction being assembled
	opPC   int
	opPos  scanner.Position
	opInfo vm.OpInfo
	argN   int
}

func newParser() *parser {
	p := new(parser)
	p.labels = make(map[string]*label)
	p.consts = make(map[string]labelSite)
	return p
}

func (p *parser) write(v vm.Cell) {
	for p.pc >= len(p.img) {
		p.img = append(p.img, make(vm.Image, 1024)...)
	}
	p.img[p.pc] = v
	p.pc++
	if p.pc > p.size {
		p.size = p.pc
	}
}

func (p *parser) error(msg string) {
	pos := p.s.Position
	if !pos.IsValid() {
		pos = p.s.Pos()
	}
	p.errorAt(pos, msg)
}

func (p *parser) errorAt(pos scanner.Position, msg string) {
	if len(p.errs) >= maxErrors {
		return
	}
	p.errs = append(p.errs, AsmError{pos, msg})
}

func (p *parser) pending() bool {
	return p.argN < p.opInfo.Operands
}

// number parses an integer or character literal, or a constant name.
func (p *parser) number(s string) (vm.Cell, bool) {
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return vm.Cell(n), true
	}
	if len(s) > 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		r, _, tail, err := strconv.UnquoteChar(s[1:len(s)-1], '\'')
		if err != nil || tail != "" {
			p.error("invalid character literal " + s)
			return 0, true
		}
		return vm.Cell(r), true
	}
	if c, ok := p.consts[s]; ok {
		return vm.Cell(c.address), true
	}
	return 0, false
}

func (p *parser) useLabel(name string) {
	lbl := p.labels[name]
	if lbl == nil {
		lbl = &label{labelSite{p.s.Position, -1}, nil}
		p.labels[name] = lbl
	}
	lbl.uses = append(lbl.uses, labelSite{p.s.Position, p.pc})
}

func (p *parser) defineLabel(n string) {
	if len(n) == 0 {
		p.error("empty label name")
		return
	}
	if _, ok := vm.LookupOpcode(n); ok {
		p.error("label name is a mnemonic: " + n)
		return
	}
	if cst, ok := p.consts[n]; ok {
		p.error("label redefinition: " + n + ", previously defined as a constant here: " + cst.pos.String())
		return
	}
	if l, ok := p.labels[n]; ok {
		if l.address != -1 {
			p.error("label redefinition: " + n + ", previous definition here: " + l.pos.String())
			return
		}
		l.address = p.pc
		l.pos = p.s.Position
		return
	}
	p.labels[n] = &label{labelSite{p.s.Position, p.pc}, nil}
}

// value writes an operand or data word. Operands may carry a mode prefix.
func (p *parser) value(s string) {
	mode := vm.Position
	if len(s) > 1 {
		switch s[0] {
		case '#':
			mode, s = vm.Immediate, s[1:]
		case '@':
			mode, s = vm.Relative, s[1:]
		}
	}
	if p.pending() {
		if mode == vm.Immediate && p.opInfo.Writes && p.argN == p.opInfo.Operands-1 {
			p.error("immediate mode write target: #" + s)
		}
		f := vm.Cell(100)
		for k := 0; k < p.argN; k++ {
			f *= 10
		}
		p.img[p.opPC] += vm.Cell(mode) * f
		p.argN++
	} else if mode != vm.Position {
		p.error("addressing mode outside of an instruction operand: " + p.s.TokenText())
	}
	if v, ok := p.number(s); ok {
		p.write(v)
		return
	}
	p.useLabel(s)
	p.write(0)
}

func (p *parser) directive(s string) {
	switch s {
	case ".dat":
		// data words need no marker, .dat only helps readability
	case ".org":
		if p.s.Scan() == scanner.EOF {
			p.error(".org: missing address")
			return
		}
		v, ok := p.number(p.s.TokenText())
		if !ok || v < 0 {
			p.error(".org: invalid address " + p.s.TokenText())
			return
		}
		p.pc = int(v)
		for p.pc > len(p.img) {
			p.img = append(p.img, make(vm.Image, 1024)...)
		}
		if p.pc > p.size {
			p.size = p.pc
		}
	case ".equ":
		if p.s.Scan() == scanner.EOF {
			p.error(".equ: missing name")
			return
		}
		name, pos := p.s.TokenText(), p.s.Position
		if l, ok := p.labels[name]; ok {
			p.error(".equ: redefinition of " + name + ", previously defined/used as a label here: " + l.pos.String())
			return
		}
		if p.s.Scan() == scanner.EOF {
			p.error(".equ: missing value")
			return
		}
		v, ok := p.number(p.s.TokenText())
		if !ok {
			p.error(".equ: invalid value " + p.s.TokenText())
			return
		}
		p.consts[name] = labelSite{pos, int(v)}
	default:
		p.error("unknown dot directive: " + s)
	}
}

// Parse does the parsing and compiling.
func (p *parser) Parse(name string, r io.Reader) error {
	p.s.Init(r)
	p.s.Error = func(s *scanner.Scanner, msg string) {
		p.error(msg)
	}
	p.s.IsIdentRune = isIdentRune
	p.s.Mode = scanner.ScanIdents
	p.s.Filename = name

	for tok := p.s.Scan(); tok != scanner.EOF && len(p.errs) < maxErrors; tok = p.s.Scan() {
		s := p.s.TokenText()
		if tok != scanner.Ident {
			p.error("unexpected character " + strconv.QuoteRune(tok))
			continue
		}
		switch {
		case s == "(":
			// skip comments
			for tok = p.s.Scan(); tok != scanner.EOF && p.s.TokenText() != ")"; tok = p.s.Scan() {
			}
			if tok == scanner.EOF {
				p.error("unterminated comment")
			}
		case s[0] == ':' && !p.pending():
			p.defineLabel(s[1:])
		case s[0] == '.' && len(s) > 1 && !p.pending():
			p.directive(s)
		default:
			if op, ok := vm.LookupOpcode(s); ok {
				if p.pending() {
					p.error("missing operand for " + p.opInfo.Name + ", got " + s)
				}
				p.opPC = p.pc
				p.opPos = p.s.Position
				p.opInfo, _ = op.Info()
				p.argN = 0
				p.write(vm.Cell(op))
				continue
			}
			p.value(s)
		}
	}
	if p.pending() {
		p.errorAt(p.opPos, "missing operand for "+p.opInfo.Name+" at end of input")
	}

	// resolve labels in a stable order so that errors are reproducible
	names := make([]string, 0, len(p.labels))
	for n := range p.labels {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		l := p.labels[n]
		if l.address == -1 {
			p.errorAt(l.uses[0].pos, "undefined label "+n)
			continue
		}
		for _, u := range l.uses {
			p.img[u.address] = vm.Cell(l.address)
		}
	}
	if len(p.errs) > 0 {
		return p.errs
	}
	return nil
}
