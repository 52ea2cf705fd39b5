// Package vtinput decodes a terminal emulator's raw input byte stream into
// a typed sequence of user-input events: key presses, mouse actions,
// bracketed-paste payloads, and focus gain/loss notifications.
//
// The hard work is done in two layers. internal/vte is a reusable
// ECMA-48/VT500 byte classifier that turns bytes into print/execute/csi/esc
// callbacks without attaching any meaning to them. Parser (this package)
// is the event performer: it consumes those callbacks and applies the
// application-level rules — bracketed paste, SS3, SGR mouse, Kitty
// keyboard, the CSI 'b' repeat-character trick, and ESC-as-alt — to
// produce Events.
package vtinput

import "fmt"

// Event is the tagged union of everything this package can emit. The
// concrete types are KeyEvent, MouseEvent, PasteEvent, and FocusEvent.
type Event interface {
	isEvent()
}

// KeyCode enumerates the recognized key identities. When Code is KeyChar,
// Char carries the Unicode scalar; for every other code Char is zero.
type KeyCode int

const (
	KeyChar KeyCode = iota
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

var keyCodeNames = map[KeyCode]string{
	KeyChar:      "char",
	KeyEnter:     "enter",
	KeyEscape:    "escape",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "page_up",
	KeyPageDown:  "page_down",
	KeyInsert:    "insert",
	KeyF1:        "f1",
	KeyF2:        "f2",
	KeyF3:        "f3",
	KeyF4:        "f4",
	KeyF5:        "f5",
	KeyF6:        "f6",
	KeyF7:        "f7",
	KeyF8:        "f8",
	KeyF9:        "f9",
	KeyF10:       "f10",
	KeyF11:       "f11",
	KeyF12:       "f12",
}

// String returns a human-readable key name, e.g. "f2" or "char".
func (k KeyCode) String() string {
	if s, ok := keyCodeNames[k]; ok {
		return s
	}
	return "unknown"
}

// MouseKind identifies the nature of a mouse event.
type MouseKind int

const (
	MousePress MouseKind = iota
	MouseRelease
	MouseDrag
	MouseMove
	MouseScrollUp
	MouseScrollDown
)

var mouseKindNames = map[MouseKind]string{
	MousePress:      "press",
	MouseRelease:    "release",
	MouseDrag:       "drag",
	MouseMove:       "move",
	MouseScrollUp:   "scroll_up",
	MouseScrollDown: "scroll_down",
}

func (k MouseKind) String() string {
	if s, ok := mouseKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// MouseButton identifies which button a mouse event refers to. Scroll
// events always carry MouseButtonNone.
type MouseButton int

const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonMiddle
	MouseButtonRight
)

var mouseButtonNames = map[MouseButton]string{
	MouseButtonNone:   "none",
	MouseButtonLeft:   "left",
	MouseButtonMiddle: "middle",
	MouseButtonRight:  "right",
}

func (b MouseButton) String() string {
	if s, ok := mouseButtonNames[b]; ok {
		return s
	}
	return "unknown"
}

// KeyEvent reports a key press.
type KeyEvent struct {
	Code  KeyCode
	Char  rune // valid only when Code == KeyChar
	Ctrl  bool
	Alt   bool
	Shift bool
}

func (KeyEvent) isEvent() {}

// String renders the key for debugging, e.g. "ctrl+alt+f2" or "char 'a'".
func (k KeyEvent) String() string {
	mods := ""
	if k.Ctrl {
		mods += "ctrl+"
	}
	if k.Alt {
		mods += "alt+"
	}
	if k.Shift {
		mods += "shift+"
	}
	if k.Code == KeyChar {
		return fmt.Sprintf("%schar %q", mods, k.Char)
	}
	return mods + k.Code.String()
}

// MouseEvent reports a mouse action. Row and Col are zero-based.
type MouseEvent struct {
	Kind   MouseKind
	Button MouseButton
	Row    uint16
	Col    uint16
	Ctrl   bool
	Alt    bool
	Shift  bool
}

func (MouseEvent) isEvent() {}

func (m MouseEvent) String() string {
	return fmt.Sprintf("mouse %s %s @(%d,%d)", m.Kind, m.Button, m.Row, m.Col)
}

// PasteEvent carries the full content of a bracketed-paste region.
type PasteEvent struct {
	Content string
}

func (PasteEvent) isEvent() {}

func (p PasteEvent) String() string {
	return fmt.Sprintf("paste %d bytes", len(p.Content))
}

// FocusEvent reports a terminal focus gain or loss.
type FocusEvent struct {
	Focused bool
}

func (FocusEvent) isEvent() {}

func (f FocusEvent) String() string {
	if f.Focused {
		return "focus gained"
	}
	return "focus lost"
}
