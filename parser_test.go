package vtinput

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlainChar(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte("a"))
	require.Len(t, events, 1)
	assert.Equal(t, KeyEvent{Code: KeyChar, Char: 'a'}, events[0])
}

func TestParseUTF8Char(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte("é"))
	require.Len(t, events, 1)
	assert.Equal(t, KeyEvent{Code: KeyChar, Char: 'é'}, events[0])
}

func TestParseUTF8SplitAcrossCalls(t *testing.T) {
	p := NewParser()
	full := []byte("é")
	require.Len(t, full, 2)

	events := p.Parse(full[:1])
	assert.Empty(t, events)
	// A split UTF-8 continuation byte is buffered inside the classifier,
	// not the pending-escape latch: it did not end in a bare ESC.
	assert.False(t, p.Pending())

	events = p.Parse(full[1:])
	require.Len(t, events, 1)
	assert.Equal(t, KeyEvent{Code: KeyChar, Char: 'é'}, events[0])
}

func TestParseC0Controls(t *testing.T) {
	tests := []struct {
		name  string
		input byte
		want  KeyEvent
	}{
		{"ctrl+space/NUL", 0x00, KeyEvent{Code: KeyChar, Char: ' ', Ctrl: true}},
		{"ctrl+a", 0x01, KeyEvent{Code: KeyChar, Char: 'a', Ctrl: true}},
		{"tab", 0x09, KeyEvent{Code: KeyTab}},
		{"enter", 0x0D, KeyEvent{Code: KeyEnter}},
		{"backspace BS", 0x08, KeyEvent{Code: KeyBackspace}},
		{"backspace DEL", 0x7F, KeyEvent{Code: KeyBackspace}},
		{"ctrl+z", 0x1A, KeyEvent{Code: KeyChar, Char: 'z', Ctrl: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser()
			events := p.Parse([]byte{tt.input})
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0])
		})
	}
}

func TestParseArrowKeysLegacyAndModified(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  KeyEvent
	}{
		{"plain up", "\x1b[A", KeyEvent{Code: KeyUp}},
		{"plain down SS3-free", "\x1b[B", KeyEvent{Code: KeyDown}},
		{"shift+right", "\x1b[1;2C", KeyEvent{Code: KeyRight, Shift: true}},
		{"ctrl+alt+left", "\x1b[1;7D", KeyEvent{Code: KeyLeft, Alt: true, Ctrl: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser()
			events := p.Parse([]byte(tt.input))
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0])
		})
	}
}

func TestParseSS3ArrowsAndFunctionKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  KeyEvent
	}{
		{"SS3 up", "\x1bOA", KeyEvent{Code: KeyUp}},
		{"SS3 F1", "\x1bOP", KeyEvent{Code: KeyF1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser()
			events := p.Parse([]byte(tt.input))
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0])
		})
	}
}

func TestParseTildeFunctionKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  KeyEvent
	}{
		{"home", "\x1b[1~", KeyEvent{Code: KeyHome}},
		{"delete", "\x1b[3~", KeyEvent{Code: KeyDelete}},
		{"page up", "\x1b[5~", KeyEvent{Code: KeyPageUp}},
		{"f5", "\x1b[15~", KeyEvent{Code: KeyF5}},
		{"f12 with ctrl", "\x1b[24;5~", KeyEvent{Code: KeyF12, Ctrl: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser()
			events := p.Parse([]byte(tt.input))
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0])
		})
	}
}

func TestParseEscapeAsAlt(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte("\x1bf"))
	require.Len(t, events, 1)
	assert.Equal(t, KeyEvent{Code: KeyChar, Char: 'f', Alt: true}, events[0])
}

func TestParseLoneEscapeIsPendingUntilFlush(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte{0x1B})
	assert.Empty(t, events)
	assert.True(t, p.Pending())

	flushed := p.Flush()
	require.Len(t, flushed, 1)
	assert.Equal(t, KeyEvent{Code: KeyEscape}, flushed[0])
	assert.False(t, p.Pending())
}

func TestFlushIsNoopInGroundState(t *testing.T) {
	p := NewParser()
	p.Parse([]byte("x"))
	assert.False(t, p.Pending())
	assert.Nil(t, p.Flush())
}

func TestParseSGRMousePressAndRelease(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte("\x1b[<0;10;20M"))
	require.Len(t, events, 1)
	assert.Equal(t, MouseEvent{Kind: MousePress, Button: MouseButtonLeft, Col: 9, Row: 19}, events[0])

	events = p.Parse([]byte("\x1b[<0;10;20m"))
	require.Len(t, events, 1)
	assert.Equal(t, MouseEvent{Kind: MouseRelease, Button: MouseButtonLeft, Col: 9, Row: 19}, events[0])
}

func TestParseSGRMouseScroll(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte("\x1b[<64;5;5M"))
	require.Len(t, events, 1)
	assert.Equal(t, MouseEvent{Kind: MouseScrollUp, Button: MouseButtonNone, Col: 4, Row: 4}, events[0])
}

func TestParseSGRMouseDragWithModifiers(t *testing.T) {
	p := NewParser()
	// button 0 + motion(0x20) + shift(0x04) + ctrl(0x10) = 0x34 = 52
	events := p.Parse([]byte("\x1b[<52;1;1M"))
	require.Len(t, events, 1)
	assert.Equal(t, MouseEvent{Kind: MouseDrag, Button: MouseButtonLeft, Shift: true, Ctrl: true, Col: 0, Row: 0}, events[0])
}

func TestParseKittyKeyboard(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  KeyEvent
	}{
		{"plain a via kitty", "\x1b[97u", KeyEvent{Code: KeyChar, Char: 'a'}},
		{"ctrl+a via kitty", "\x1b[97;5u", KeyEvent{Code: KeyChar, Char: 'a', Ctrl: true}},
		{"escape via kitty", "\x1b[27u", KeyEvent{Code: KeyEscape}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser()
			events := p.Parse([]byte(tt.input))
			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0])
		})
	}
}

func TestParseBracketedPaste(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte("\x1b[200~hello\nworld\x1b[201~"))
	require.Len(t, events, 1)
	assert.Equal(t, PasteEvent{Content: "hello\nworld"}, events[0])
}

func TestParseBracketedPasteReserializesEmbeddedCSI(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte("\x1b[200~ab\x1b[1;3Ccd\x1b[201~"))
	require.Len(t, events, 1)
	assert.Equal(t, PasteEvent{Content: "ab\x1b[1;3Ccd"}, events[0])
}

func TestParseBracketedPasteSplitAcrossCalls(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte("\x1b[200~hel"))
	assert.Empty(t, events)
	events = p.Parse([]byte("lo\x1b[201~"))
	require.Len(t, events, 1)
	assert.Equal(t, PasteEvent{Content: "hello"}, events[0])
}

func TestParseSS3InsidePasteTakesPrecedence(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte("\x1b[200~ab\x1bOAcd\x1b[201~"))
	require.Len(t, events, 2)
	assert.Equal(t, KeyEvent{Code: KeyUp}, events[0])
	assert.Equal(t, PasteEvent{Content: "abcd"}, events[1])
}

func TestParsePasteCloseWithoutOpenPasteEmitsNothing(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte("\x1b[201~"))
	assert.Empty(t, events)
}

func TestParseFocusEvents(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte("\x1b[I"))
	require.Len(t, events, 1)
	assert.Equal(t, FocusEvent{Focused: true}, events[0])

	events = p.Parse([]byte("\x1b[O"))
	require.Len(t, events, 1)
	assert.Equal(t, FocusEvent{Focused: false}, events[0])
}

func TestParseRepeatCharacter(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte("x\x1b[3b"))
	require.Len(t, events, 4)
	for _, e := range events {
		assert.Equal(t, KeyEvent{Code: KeyChar, Char: 'x'}, e)
	}
}

func TestParseMultipleEventsInOneBuffer(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte("ab\x1b[A"))
	require.Len(t, events, 3)
	assert.Equal(t, KeyEvent{Code: KeyChar, Char: 'a'}, events[0])
	assert.Equal(t, KeyEvent{Code: KeyChar, Char: 'b'}, events[1])
	assert.Equal(t, KeyEvent{Code: KeyUp}, events[2])
}

func TestParseUnknownSequenceIsSilentlyConsumed(t *testing.T) {
	p := NewParser()
	events := p.Parse([]byte("\x1b[999;999q"))
	assert.Empty(t, events)
	assert.False(t, p.Pending())
}

func TestParseDoesNotPanicOnMalformedInput(t *testing.T) {
	inputs := [][]byte{
		{0x1B, '['},
		{0x1B, '[', '<'},
		{0x1B, 'O'},
		{0x1B, '[', '2', '0', '0', '~', 0x1B},
		{0x9B, 'A'},
		{0xC0},
		{0xFF, 0xFE, 0xFD},
	}
	for _, in := range inputs {
		p := NewParser()
		assert.NotPanics(t, func() {
			p.Parse(in)
			p.Flush()
		})
	}
}
