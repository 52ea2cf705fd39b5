package vtinput

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/unxed/vtinput/internal/vte"
)

// performerState is the small cross-call state spec.md §3 calls
// PerformerState: the last printable character (for the CSI 'b' repeat
// trick), the in-progress bracketed-paste buffer, and whether an SS3
// introducer (ESC O) is waiting for its final byte.
type performerState struct {
	precedingChar   rune
	hasPreceding    bool
	pasteBuffer     *strings.Builder
	pasteActive     bool
	pendingSS3      bool
}

// performer implements vte.Performer and turns classifier callbacks into
// Events, following the rules in spec.md §4.2 through §4.7.
type performer struct {
	state  *performerState
	events []Event
}

func newPerformer(state *performerState) *performer {
	return &performer{state: state}
}

func (p *performer) emit(e Event) {
	p.events = append(p.events, e)
}

// Print handles §4.2: ground-state printable characters. A pending SS3
// dispatch is resolved before the paste buffer is consulted, per
// original_source/ext/vtx_parser/src/lib.rs's Performer::print: ESC O
// latches pendingSS3 regardless of paste state, so its completion takes
// the very next printed character even while a paste is open.
func (p *performer) Print(c rune) {
	if p.state.pendingSS3 {
		p.state.pendingSS3 = false
		p.dispatchSS3(c)
		return
	}
	if p.state.pasteActive {
		p.state.pasteBuffer.WriteRune(c)
		return
	}
	p.state.precedingChar = c
	p.state.hasPreceding = true
	if c == 0x7F {
		p.emit(KeyEvent{Code: KeyBackspace})
		return
	}
	p.emit(KeyEvent{Code: KeyChar, Char: c})
}

// Execute handles §4.3: C0 controls (and DEL). The classifier also delivers
// C0 bytes that arrive in the middle of an ESC or CSI sequence here, and
// they are decoded the same way.
func (p *performer) Execute(b byte) {
	if p.state.pasteActive {
		p.state.pasteBuffer.WriteRune(rune(b))
		return
	}
	switch {
	case b == 0x00:
		p.emit(KeyEvent{Code: KeyChar, Char: ' ', Ctrl: true})
	case b == 0x08:
		p.emit(KeyEvent{Code: KeyBackspace})
	case b == 0x09:
		p.emit(KeyEvent{Code: KeyTab})
	case b == 0x0D:
		p.emit(KeyEvent{Code: KeyEnter})
	case b == 0x7F:
		p.emit(KeyEvent{Code: KeyBackspace})
	case b >= 0x01 && b <= 0x1A:
		p.emit(KeyEvent{Code: KeyChar, Char: rune(b + 0x60), Ctrl: true})
	default:
		// No event.
	}
}

// dispatchSS3 handles the SS3 final byte described in spec.md §4.3: ESC O
// has already set pendingSS3, and the immediately following printed
// character selects the key.
func (p *performer) dispatchSS3(final rune) {
	var code KeyCode
	switch final {
	case 'A':
		code = KeyUp
	case 'B':
		code = KeyDown
	case 'C':
		code = KeyRight
	case 'D':
		code = KeyLeft
	case 'F':
		code = KeyEnd
	case 'H':
		code = KeyHome
	case 'P':
		code = KeyF1
	case 'Q':
		code = KeyF2
	case 'R':
		code = KeyF3
	case 'S':
		code = KeyF4
	default:
		return
	}
	p.emit(KeyEvent{Code: code})
}

// EscDispatch handles §4.7: bare ESC X with no CSI introducer.
func (p *performer) EscDispatch(intermediates []byte, ignore bool, final byte) {
	if len(intermediates) != 0 {
		return
	}
	if final == 'O' {
		p.state.pendingSS3 = true
		return
	}
	if final >= 0x20 && final <= 0x7E {
		p.emit(KeyEvent{Code: KeyChar, Char: rune(final), Alt: true})
	}
}

// flattenParams concatenates every parameter group's values, in order,
// into one flat sequence — spec.md §4.4's "sub-parameter groups are
// concatenated" rule.
func flattenParams(params *vte.Params) []uint16 {
	if params == nil {
		return nil
	}
	groups := params.Iter()
	flat := make([]uint16, 0, len(groups))
	for _, g := range groups {
		flat = append(flat, g...)
	}
	return flat
}

func paramAt(flat []uint16, i int, def uint16) uint16 {
	if i < 0 || i >= len(flat) {
		return def
	}
	return flat[i]
}

// decodeModifiers implements spec.md §4.4's parse_modifiers: saturating
// subtract 1, then bit 0 = shift, bit 1 = alt, bit 2 = ctrl. p == 0 means
// no modifiers.
func decodeModifiers(p uint16) (shift, alt, ctrl bool) {
	if p == 0 {
		return false, false, false
	}
	bits := p - 1
	return bits&0x1 != 0, bits&0x2 != 0, bits&0x4 != 0
}

// CsiDispatch handles §4.4: the bulk of the escape-sequence dispatch
// table, plus the bracketed-paste boundary rules that take precedence
// over it.
func (p *performer) CsiDispatch(params *vte.Params, intermediates []byte, ignore bool, final rune) {
	flat := flattenParams(params)

	if final == '~' && len(intermediates) == 0 && paramAt(flat, 0, 0) == 201 {
		// Matches lib.rs's `if let Some(content) = paste_buffer.take()`:
		// a close marker with no paste in progress emits nothing.
		if p.state.pasteActive {
			p.emit(PasteEvent{Content: p.state.pasteBuffer.String()})
		}
		p.state.pasteActive = false
		p.state.pasteBuffer = nil
		return
	}

	if p.state.pasteActive {
		p.reserializeIntoPaste(flat, intermediates, final)
		return
	}

	if ignore || len(intermediates) > 2 {
		return
	}

	switch {
	case len(intermediates) == 0:
		p.dispatchPlainCSI(flat, final)
	case len(intermediates) == 1 && intermediates[0] == '<' && (final == 'M' || final == 'm'):
		p.dispatchSGRMouse(flat, final)
	}
}

// reserializeIntoPaste implements spec.md §4.4's "inside a paste region"
// rule: any CSI other than the close marker is re-serialized back into the
// paste buffer verbatim, sub-parameter structure lost (';'-joined even if
// the wire used ':').
func (p *performer) reserializeIntoPaste(flat []uint16, intermediates []byte, final rune) {
	buf := p.state.pasteBuffer
	buf.WriteByte(0x1B)
	buf.WriteByte('[')
	for _, b := range intermediates {
		buf.WriteByte(b)
	}
	nonZero := false
	for _, v := range flat {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if nonZero {
		for i, v := range flat {
			if i > 0 {
				buf.WriteByte(';')
			}
			fmt.Fprintf(buf, "%d", v)
		}
	}
	buf.WriteRune(final)
}

func (p *performer) dispatchPlainCSI(flat []uint16, final rune) {
	switch final {
	case 'A':
		p.emitArrow(KeyUp, flat)
	case 'B':
		p.emitArrow(KeyDown, flat)
	case 'C':
		p.emitArrow(KeyRight, flat)
	case 'D':
		p.emitArrow(KeyLeft, flat)
	case 'F':
		p.emitArrow(KeyEnd, flat)
	case 'H':
		p.emitArrow(KeyHome, flat)
	case 'Z':
		p.emit(KeyEvent{Code: KeyTab, Shift: true})
	case 'I':
		p.emit(FocusEvent{Focused: true})
	case 'O':
		p.emit(FocusEvent{Focused: false})
	case 'u':
		p.dispatchKitty(flat)
	case 'b':
		p.dispatchRepeat(flat)
	case '~':
		p.dispatchTilde(flat)
	}
}

func (p *performer) emitArrow(code KeyCode, flat []uint16) {
	shift, alt, ctrl := decodeModifiers(paramAt(flat, 1, 0))
	p.emit(KeyEvent{Code: code, Shift: shift, Alt: alt, Ctrl: ctrl})
}

// dispatchRepeat implements the CSI 'b' repeat-character trick.
func (p *performer) dispatchRepeat(flat []uint16) {
	if !p.state.hasPreceding {
		return
	}
	count := int(paramAt(flat, 0, 0))
	if count < 1 {
		count = 1
	}
	for i := 0; i < count; i++ {
		p.emit(KeyEvent{Code: KeyChar, Char: p.state.precedingChar})
	}
}

// dispatchTilde implements spec.md §4.4's numeric-keypad / function-key
// table, keyed on the first CSI parameter.
func (p *performer) dispatchTilde(flat []uint16) {
	code := paramAt(flat, 0, 0)
	mods := func() KeyEvent {
		shift, alt, ctrl := decodeModifiers(paramAt(flat, 1, 0))
		return KeyEvent{Shift: shift, Alt: alt, Ctrl: ctrl}
	}
	switch code {
	case 1, 7:
		k := mods()
		k.Code = KeyHome
		p.emit(k)
	case 2:
		k := mods()
		k.Code = KeyInsert
		p.emit(k)
	case 3:
		k := mods()
		k.Code = KeyDelete
		p.emit(k)
	case 4, 8:
		k := mods()
		k.Code = KeyEnd
		p.emit(k)
	case 5:
		k := mods()
		k.Code = KeyPageUp
		p.emit(k)
	case 6:
		k := mods()
		k.Code = KeyPageDown
		p.emit(k)
	case 15:
		k := mods()
		k.Code = KeyF5
		p.emit(k)
	case 17:
		k := mods()
		k.Code = KeyF6
		p.emit(k)
	case 18:
		k := mods()
		k.Code = KeyF7
		p.emit(k)
	case 19:
		k := mods()
		k.Code = KeyF8
		p.emit(k)
	case 20:
		k := mods()
		k.Code = KeyF9
		p.emit(k)
	case 21:
		k := mods()
		k.Code = KeyF10
		p.emit(k)
	case 23:
		k := mods()
		k.Code = KeyF11
		p.emit(k)
	case 24:
		k := mods()
		k.Code = KeyF12
		p.emit(k)
	case 200:
		p.state.pasteActive = true
		p.state.pasteBuffer = &strings.Builder{}
	default:
		// No event: includes the historical gap at 16 and 22.
	}
}

// dispatchKitty implements spec.md §4.6's simplified Kitty keyboard table.
func (p *performer) dispatchKitty(flat []uint16) {
	k := paramAt(flat, 0, 0)
	shift, alt, ctrl := decodeModifiers(paramAt(flat, 1, 0))
	switch k {
	case 9:
		p.emit(KeyEvent{Code: KeyTab, Shift: shift, Alt: alt, Ctrl: ctrl})
	case 13:
		p.emit(KeyEvent{Code: KeyEnter, Shift: shift, Alt: alt, Ctrl: ctrl})
	case 27:
		p.emit(KeyEvent{Code: KeyEscape, Shift: shift, Alt: alt, Ctrl: ctrl})
	case 127:
		p.emit(KeyEvent{Code: KeyBackspace, Shift: shift, Alt: alt, Ctrl: ctrl})
	default:
		if k <= utf8.MaxRune && utf8.ValidRune(rune(k)) {
			p.emit(KeyEvent{Code: KeyChar, Char: rune(k), Shift: shift, Alt: alt, Ctrl: ctrl})
		}
	}
}

// dispatchSGRMouse implements spec.md §4.5.
func (p *performer) dispatchSGRMouse(flat []uint16, final rune) {
	b := paramAt(flat, 0, 0)
	col := saturatingSub1(paramAt(flat, 1, 0))
	row := saturatingSub1(paramAt(flat, 2, 0))
	pressed := final == 'M'

	shift := b&0x04 != 0
	alt := b&0x08 != 0
	ctrl := b&0x10 != 0
	motion := b&0x20 != 0
	scroll := b&0x40 != 0

	ev := MouseEvent{Row: row, Col: col, Shift: shift, Alt: alt, Ctrl: ctrl}

	if scroll {
		ev.Button = MouseButtonNone
		if b&0x01 == 0 {
			ev.Kind = MouseScrollUp
		} else {
			ev.Kind = MouseScrollDown
		}
		p.emit(ev)
		return
	}

	switch b & 0x03 {
	case 0:
		ev.Button = MouseButtonLeft
	case 1:
		ev.Button = MouseButtonMiddle
	case 2:
		ev.Button = MouseButtonRight
	default:
		ev.Button = MouseButtonNone
	}

	switch {
	case motion && pressed:
		ev.Kind = MouseDrag
	case motion && !pressed:
		ev.Kind = MouseMove
	case !motion && pressed:
		ev.Kind = MousePress
	default:
		ev.Kind = MouseRelease
	}
	p.emit(ev)
}

func saturatingSub1(v uint16) uint16 {
	if v == 0 {
		return 0
	}
	return v - 1
}

// Hook, Put, Unhook, and OscDispatch are no-ops: DCS and OSC sequences
// carry no input-event meaning (spec.md §4.1/§7, "unrecognized sequences
// are silently consumed").
func (p *performer) Hook(params *vte.Params, intermediates []byte, ignore bool, action rune) {}
func (p *performer) Put(b byte)                                                               {}
func (p *performer) Unhook()                                                                  {}
func (p *performer) OscDispatch(params [][]byte, bellTerminated bool)                          {}
