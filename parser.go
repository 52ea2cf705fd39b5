package vtinput

import "github.com/unxed/vtinput/internal/vte"

// Parser turns a raw terminal input byte stream into Events. It wraps the
// byte-level internal/vte classifier with the input-event performer and
// owns the pending-escape latch that disambiguates a lone, trailing ESC
// byte (an Escape keypress) from the first byte of a sequence whose
// continuation just hasn't arrived yet.
//
// A Parser is not safe for concurrent use; callers own an entire read/parse
// cycle before touching it again.
type Parser struct {
	classifier *vte.Parser
	perf       *performer
	state      *performerState
	pendingEsc bool
}

// NewParser returns a Parser ready to consume bytes from Parse.
func NewParser() *Parser {
	state := &performerState{}
	return &Parser{
		classifier: vte.NewParser(),
		perf:       newPerformer(state),
		state:      state,
	}
}

// Parse feeds input through the classifier and returns every Event it
// produced. Bytes belonging to an incomplete sequence are buffered
// internally by the classifier and surface on a later Parse call. After
// feeding, the pending-escape latch is recomputed: it is set when this
// call's input ended in a bare ESC that produced no events, or when an
// SS3 introducer (ESC O) is still waiting for its final byte.
func (p *Parser) Parse(input []byte) []Event {
	p.perf.events = nil
	p.classifier.Advance(p.perf, input)
	events := p.perf.events
	p.perf.events = nil

	endsWithEsc := len(input) > 0 && input[len(input)-1] == 0x1B
	p.pendingEsc = (endsWithEsc && len(events) == 0) || p.state.pendingSS3
	return events
}

// Pending reports the pending-escape latch set by the most recent Parse
// call. A caller doing blocking reads with a read timeout uses this to
// decide whether a timeout should be interpreted as "the user pressed a
// lone Escape key".
func (p *Parser) Pending() bool {
	return p.pendingEsc
}

// Flush resolves the pending-escape latch after a read timeout. If
// pending, it clears the latch, resets the classifier to its initial
// state, clears pending_ss3, and returns exactly one Key{escape} event.
// Otherwise it returns nil and leaves everything untouched — in
// particular it never touches the paste buffer or preceding_char.
func (p *Parser) Flush() []Event {
	if !p.pendingEsc {
		return nil
	}
	p.pendingEsc = false
	p.classifier.Reset()
	p.state.pendingSS3 = false
	return []Event{KeyEvent{Code: KeyEscape}}
}
