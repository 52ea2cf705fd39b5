package vte

// State enumerates the byte classifier's states, following the Williams
// VT500 parser state diagram (ground, escape, CSI entry/param/intermediate/
// ignore, OSC string, DCS entry/param/intermediate/passthrough/ignore, and
// the SOS/PM/APC catch-all).
type State int

const (
	StateGround State = iota
	StateEscape
	StateEscapeIntermediate
	StateCSIEntry
	StateCSIParam
	StateCSIIntermediate
	StateCSIIgnore
	StateOSCString
	StateDCSEntry
	StateDCSParam
	StateDCSIntermediate
	StateDCSPassthrough
	StateDCSIgnore
	StateSOSPMApcString
)

// Performer receives the classifier's callbacks. Hook/Put/Unhook/
// OscDispatch exist so the state machine stays a complete ECMA-48
// tokenizer; callers that only care about input-event decoding (this
// module) implement them as no-ops.
type Performer interface {
	Print(c rune)
	Execute(b byte)
	CsiDispatch(params *Params, intermediates []byte, ignore bool, final rune)
	EscDispatch(intermediates []byte, ignore bool, final byte)
	Hook(params *Params, intermediates []byte, ignore bool, action rune)
	Put(b byte)
	Unhook()
	OscDispatch(params [][]byte, bellTerminated bool)
}
