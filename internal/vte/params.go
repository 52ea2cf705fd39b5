package vte

// MaxParams bounds how many top-level parameter groups a single escape
// sequence may carry before the classifier starts ignoring the rest.
const MaxParams = 32

// Params holds the ordered parameter groups collected for one CSI or DCS
// sequence. A group is a top-level parameter plus any sub-parameters
// attached to it with ':' (e.g. "38:2:255:0:0" is one group of five
// values). Most sequences have one value per group.
type Params struct {
	groups [][]uint16
}

// NewParams returns an empty, ready-to-reuse Params.
func NewParams() *Params {
	return &Params{groups: make([][]uint16, 0, 8)}
}

// Clear resets Params for reuse without reallocating the backing array.
func (p *Params) Clear() {
	p.groups = p.groups[:0]
}

// IsFull reports whether Params has reached MaxParams top-level groups.
func (p *Params) IsFull() bool {
	return len(p.groups) >= MaxParams
}

// Push starts a new top-level parameter group with value v.
func (p *Params) Push(v uint16) {
	p.groups = append(p.groups, []uint16{v})
}

// Extend appends a sub-parameter to the current (most recent) group. If
// there is no current group yet, it behaves like Push.
func (p *Params) Extend(v uint16) {
	if len(p.groups) == 0 {
		p.Push(v)
		return
	}
	last := len(p.groups) - 1
	p.groups[last] = append(p.groups[last], v)
}

// Iter returns the parameter groups in order. The returned slices must not
// be mutated by callers.
func (p *Params) Iter() [][]uint16 {
	return p.groups
}

// Len returns the number of top-level parameter groups.
func (p *Params) Len() int {
	return len(p.groups)
}
