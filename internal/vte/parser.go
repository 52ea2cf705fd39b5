// Package vte is a standalone ECMA-48 / VT500-style byte classifier: it
// tokenizes a raw terminal byte stream into print/execute/csi/esc/hook/put/
// unhook/osc callbacks without attaching any meaning to them. It is
// adapted from cliofy/govte (itself a Go port of the Rust `vte` crate),
// with one behavioral change from upstream: DEL (0x7F) in ground state is
// delivered to Performer.Execute instead of being silently dropped, since
// the input-event performer built on top of this package needs it to
// recognize the legacy backspace convention.
package vte

import (
	"unicode/utf8"
)

// MaxIntermediates is the maximum number of intermediate bytes collected
// for a single escape or CSI sequence before the classifier starts
// ignoring the rest.
const MaxIntermediates = 2

// Parser is the byte classifier state machine. It is not safe for
// concurrent use.
type Parser struct {
	state           State
	intermediates   []byte
	params          *Params
	currentParam    uint16
	hasCurrentParam bool
	inSubparam      bool
	ignoring        bool
	pendingESC      bool // DCS passthrough ESC-vs-ST disambiguation
	partialUTF8     [4]byte
	partialUTF8Len  int
}

// NewParser returns a Parser ready to Advance from ground state.
func NewParser() *Parser {
	return &Parser{
		state:         StateGround,
		params:        NewParams(),
		intermediates: make([]byte, 0, MaxIntermediates),
	}
}

// State returns the parser's current state.
func (p *Parser) State() State {
	return p.state
}

// Reset returns the parser to ground state and clears all pending
// parameter/intermediate accumulation. Used by a host that wants to
// recover from a stuck pending escape sequence (see Parser.Flush in the
// root package).
func (p *Parser) Reset() {
	p.state = StateGround
	p.resetParams()
	p.pendingESC = false
	p.partialUTF8Len = 0
}

// Advance feeds bytes through the state machine, invoking performer's
// callbacks as sequences are recognized. Partial multi-byte sequences
// (UTF-8 continuations, incomplete escape sequences) are remembered across
// calls.
func (p *Parser) Advance(performer Performer, bytes []byte) {
	i := 0

	if p.partialUTF8Len > 0 {
		consumed := p.advancePartialUTF8(performer, bytes)
		i += consumed
		if i >= len(bytes) {
			return
		}
	}

	for i < len(bytes) {
		switch p.state {
		case StateGround:
			i += p.advanceGround(performer, bytes[i:])
		case StateEscape:
			p.advanceEscape(performer, bytes[i])
			i++
		case StateEscapeIntermediate:
			p.advanceEscapeIntermediate(performer, bytes[i])
			i++
		case StateCSIEntry:
			p.advanceCSIEntry(performer, bytes[i])
			i++
		case StateCSIParam:
			p.advanceCSIParam(performer, bytes[i])
			i++
		case StateCSIIntermediate:
			p.advanceCSIIntermediate(performer, bytes[i])
			i++
		case StateCSIIgnore:
			p.advanceCSIIgnore(performer, bytes[i])
			i++
		case StateOSCString:
			p.advanceOSCString(performer, bytes[i])
			i++
		case StateDCSEntry:
			p.advanceDCSEntry(performer, bytes[i])
			i++
		case StateDCSParam:
			p.advanceDCSParam(performer, bytes[i])
			i++
		case StateDCSIntermediate:
			p.advanceDCSIntermediate(performer, bytes[i])
			i++
		case StateDCSPassthrough:
			p.advanceDCSPassthrough(performer, bytes[i])
			i++
		case StateDCSIgnore:
			p.advanceDCSIgnore(performer, bytes[i])
			i++
		case StateSOSPMApcString:
			p.advanceSOSPMApcString(performer, bytes[i])
			i++
		default:
			i++
		}
	}
}

func (p *Parser) advanceGround(performer Performer, bytes []byte) int {
	for i, b := range bytes {
		switch {
		case b == 0x1B:
			p.state = StateEscape
			p.resetParams()
			return i + 1
		case b == 0x7F:
			performer.Execute(b)
		case b < 0x20:
			performer.Execute(b)
		case b >= 0x20 && b < 0x7F:
			performer.Print(rune(b))
		case b >= 0x80:
			if b >= 0xC0 {
				return i + p.handleUTF8(performer, bytes[i:])
			} else if b == 0x90 {
				p.state = StateDCSEntry
				p.resetParams()
				return i + 1
			} else if b == 0x9B {
				p.state = StateCSIEntry
				p.resetParams()
				return i + 1
			} else if b == 0x9D {
				p.state = StateOSCString
				p.resetParams()
				return i + 1
			}
			performer.Print(utf8.RuneError)
		}
	}
	return len(bytes)
}

func (p *Parser) advanceEscape(performer Performer, b byte) {
	switch {
	case b < 0x20:
		performer.Execute(b)
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = StateEscapeIntermediate
	case b >= 0x30 && b <= 0x4F:
		performer.EscDispatch(p.intermediates, p.ignoring, b)
		p.state = StateGround
	case b == 0x5B:
		p.state = StateCSIEntry
	case b == 0x5D:
		p.state = StateOSCString
	case b == 0x50:
		p.state = StateDCSEntry
	case b == 0x58 || b == 0x5E || b == 0x5F:
		p.state = StateSOSPMApcString
	case b >= 0x51 && b <= 0x57 || b >= 0x59 && b <= 0x5A || b == 0x5C || b >= 0x60 && b <= 0x7E:
		performer.EscDispatch(p.intermediates, p.ignoring, b)
		p.state = StateGround
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceEscapeIntermediate(performer Performer, b byte) {
	switch {
	case b < 0x20:
		performer.Execute(b)
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
	case b >= 0x30 && b <= 0x7E:
		performer.EscDispatch(p.intermediates, p.ignoring, b)
		p.state = StateGround
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceCSIEntry(performer Performer, b byte) {
	switch {
	case b < 0x20:
		performer.Execute(b)
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = StateCSIIntermediate
	case b >= 0x30 && b <= 0x39:
		p.paramDigit(b)
		p.state = StateCSIParam
	case b == 0x3A:
		p.paramSubparam()
		p.state = StateCSIParam
	case b == 0x3B:
		p.paramSeparator()
		p.state = StateCSIParam
	case b >= 0x3C && b <= 0x3F:
		p.collectIntermediate(b)
		p.state = StateCSIParam
	case b >= 0x40 && b <= 0x7E:
		p.csiDispatch(performer, b)
		p.state = StateGround
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceCSIParam(performer Performer, b byte) {
	switch {
	case b < 0x20:
		performer.Execute(b)
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = StateCSIIntermediate
	case b >= 0x30 && b <= 0x39:
		p.paramDigit(b)
	case b == 0x3A:
		p.paramSubparam()
	case b == 0x3B:
		p.paramSeparator()
	case b >= 0x3C && b <= 0x3F:
		p.state = StateCSIIgnore
	case b >= 0x40 && b <= 0x7E:
		p.csiDispatch(performer, b)
		p.state = StateGround
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceCSIIntermediate(performer Performer, b byte) {
	switch {
	case b < 0x20:
		performer.Execute(b)
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
	case b >= 0x30 && b <= 0x3F:
		p.state = StateCSIIgnore
	case b >= 0x40 && b <= 0x7E:
		p.csiDispatch(performer, b)
		p.state = StateGround
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceCSIIgnore(performer Performer, b byte) {
	switch {
	case b < 0x20:
		performer.Execute(b)
	case b >= 0x20 && b <= 0x3F:
		// Ignore
	case b >= 0x40 && b <= 0x7E:
		p.state = StateGround
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceOSCString(performer Performer, b byte) {
	switch {
	case b == 0x07:
		performer.OscDispatch(nil, true)
		p.state = StateGround
	case b == 0x1B:
		// Might be the start of ST ("ESC \"); wait for the next byte.
		p.pendingESC = true
	case b == '\\' && p.pendingESC:
		performer.OscDispatch(nil, false)
		p.state = StateGround
		p.pendingESC = false
	default:
		// OSC payload is intentionally dropped: this module never
		// inspects OSC strings (spec scope excludes them).
		p.pendingESC = false
	}
}

func (p *Parser) advanceDCSEntry(performer Performer, b byte) {
	switch {
	case b < 0x20:
		// Ignore
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = StateDCSIntermediate
	case b >= 0x30 && b <= 0x39:
		p.paramDigit(b)
		p.state = StateDCSParam
	case b == 0x3A:
		p.paramSubparam()
		p.state = StateDCSParam
	case b == 0x3B:
		p.paramSeparator()
		p.state = StateDCSParam
	case b >= 0x3C && b <= 0x3F:
		p.collectIntermediate(b)
		p.state = StateDCSParam
	case b >= 0x40 && b <= 0x7E:
		p.finalizeCurrentParam()
		performer.Hook(p.params, p.intermediates, p.ignoring, rune(b))
		p.state = StateDCSPassthrough
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceDCSParam(performer Performer, b byte) {
	switch {
	case b < 0x20:
		// Ignore
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
		p.state = StateDCSIntermediate
	case b >= 0x30 && b <= 0x39:
		p.paramDigit(b)
	case b == 0x3A:
		p.paramSubparam()
	case b == 0x3B:
		p.paramSeparator()
	case b >= 0x3C && b <= 0x3F:
		p.state = StateDCSIgnore
	case b >= 0x40 && b <= 0x7E:
		p.finalizeCurrentParam()
		performer.Hook(p.params, p.intermediates, p.ignoring, rune(b))
		p.state = StateDCSPassthrough
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceDCSIntermediate(performer Performer, b byte) {
	switch {
	case b < 0x20:
		// Ignore
	case b >= 0x20 && b <= 0x2F:
		p.collectIntermediate(b)
	case b >= 0x30 && b <= 0x3F:
		p.state = StateDCSIgnore
	case b >= 0x40 && b <= 0x7E:
		p.finalizeCurrentParam()
		performer.Hook(p.params, p.intermediates, p.ignoring, rune(b))
		p.state = StateDCSPassthrough
	case b == 0x7F:
		// Ignore
	}
}

func (p *Parser) advanceDCSPassthrough(performer Performer, b byte) {
	switch {
	case b == 0x1B:
		p.pendingESC = true
		return
	case b == '\\' && p.pendingESC:
		p.pendingESC = false
		performer.Unhook()
		p.state = StateGround
	case b == 0x07:
		performer.Unhook()
		p.state = StateGround
	case b == 0x18 || b == 0x1A:
		performer.Unhook()
		performer.Execute(b)
		p.state = StateGround
	default:
		if p.pendingESC {
			performer.Put(0x1B)
			p.pendingESC = false
		}
		performer.Put(b)
	}
}

func (p *Parser) advanceDCSIgnore(performer Performer, b byte) {
	switch {
	case b == 0x18 || b == 0x1A:
		p.state = StateGround
	}
}

func (p *Parser) advanceSOSPMApcString(performer Performer, b byte) {
	if b == '\\' {
		p.state = StateGround
	}
}

func (p *Parser) resetParams() {
	p.params.Clear()
	p.intermediates = p.intermediates[:0]
	p.ignoring = false
	p.currentParam = 0
	p.hasCurrentParam = false
	p.inSubparam = false
}

func (p *Parser) collectIntermediate(b byte) {
	if len(p.intermediates) < MaxIntermediates {
		p.intermediates = append(p.intermediates, b)
	} else {
		p.ignoring = true
	}
}

func (p *Parser) paramDigit(b byte) {
	digit := uint16(b - '0')
	if !p.hasCurrentParam {
		p.currentParam = digit
		p.hasCurrentParam = true
	} else {
		p.currentParam = p.currentParam*10 + digit
		if p.currentParam > 9999 {
			p.currentParam = 9999
		}
	}
}

func (p *Parser) paramSeparator() {
	if p.hasCurrentParam {
		p.pushOrExtend(p.currentParam)
	} else if !p.inSubparam {
		p.pushOrExtend(0)
	}
	p.currentParam = 0
	p.hasCurrentParam = false
	p.inSubparam = false
}

func (p *Parser) paramSubparam() {
	if p.hasCurrentParam {
		if !p.inSubparam {
			if p.params.IsFull() {
				p.ignoring = true
			} else {
				p.params.Push(p.currentParam)
				p.inSubparam = true
			}
		} else if p.params.IsFull() {
			p.ignoring = true
		} else {
			p.params.Extend(p.currentParam)
		}
		p.currentParam = 0
		p.hasCurrentParam = false
		return
	}
	if !p.inSubparam {
		if p.params.IsFull() {
			p.ignoring = true
		} else {
			p.params.Push(0)
			p.inSubparam = true
		}
	} else if p.params.IsFull() {
		p.ignoring = true
	} else {
		p.params.Extend(0)
	}
}

func (p *Parser) pushOrExtend(v uint16) {
	if p.params.IsFull() {
		p.ignoring = true
		return
	}
	if p.inSubparam {
		p.params.Extend(v)
	} else {
		p.params.Push(v)
	}
}

func (p *Parser) finalizeCurrentParam() {
	if p.hasCurrentParam {
		p.pushOrExtend(p.currentParam)
	}
}

func (p *Parser) csiDispatch(performer Performer, action byte) {
	p.finalizeCurrentParam()
	performer.CsiDispatch(p.params, p.intermediates, p.ignoring, rune(action))
	p.resetParams()
}

func (p *Parser) handleUTF8(performer Performer, bytes []byte) int {
	if len(bytes) == 0 {
		return 0
	}
	r, size := utf8.DecodeRune(bytes)
	if r == utf8.RuneError {
		if size == 1 && !utf8.FullRune(bytes) {
			n := copy(p.partialUTF8[:], bytes)
			p.partialUTF8Len = n
			return len(bytes)
		}
		performer.Print(utf8.RuneError)
		return 1
	}
	performer.Print(r)
	return size
}

func (p *Parser) advancePartialUTF8(performer Performer, bytes []byte) int {
	if len(bytes) == 0 {
		return 0
	}
	if bytes[0] < 0x20 || bytes[0] == 0x7F || bytes[0] == 0x1B {
		performer.Print(utf8.RuneError)
		p.partialUTF8Len = 0
		return 0
	}
	needed := utf8.UTFMax - p.partialUTF8Len
	n := needed
	if len(bytes) < n {
		n = len(bytes)
	}
	copy(p.partialUTF8[p.partialUTF8Len:], bytes[:n])
	r, size := utf8.DecodeRune(p.partialUTF8[:p.partialUTF8Len+n])
	if r != utf8.RuneError {
		performer.Print(r)
		bytesFromInput := size - p.partialUTF8Len
		p.partialUTF8Len = 0
		return bytesFromInput
	}
	if size == 1 && !utf8.FullRune(p.partialUTF8[:p.partialUTF8Len+n]) {
		p.partialUTF8Len += n
		return n
	}
	// The buffered bytes are malformed; this call's input is left for the
	// ground state to decode.
	performer.Print(utf8.RuneError)
	p.partialUTF8Len = 0
	return 0
}
