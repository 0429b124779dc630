package textdoc

// Bias controls how an offset sitting exactly at an insertion point is
// mapped: BiasBefore keeps it before the inserted text, BiasAfter moves
// it past the inserted text.
type Bias uint8

const (
	BiasBefore Bias = iota
	BiasAfter
)

// mapEdit is a single edit step in a PositionMap: oldLen bytes at pos
// were replaced by newLen bytes.
type mapEdit struct {
	pos    Offset
	oldLen Offset
	newLen Offset
}

// PositionMap translates offsets valid in a document's old version to
// offsets valid in its new version after one or more edits.
//
// The remapping rule is the minimal interval transform: an insert of
// length L at P shifts offsets >= P by +L; a delete of [P, Q) collapses
// offsets inside the range to P and shifts offsets >= Q by -(Q-P).
type PositionMap struct {
	edits []mapEdit
}

// newPositionMap creates a map for a single replacement edit.
func newPositionMap(pos Offset, oldLen, newLen Offset) *PositionMap {
	return &PositionMap{edits: []mapEdit{{pos: pos, oldLen: oldLen, newLen: newLen}}}
}

// IdentityMap returns a map that leaves every offset unchanged.
func IdentityMap() *PositionMap {
	return &PositionMap{}
}

// Then returns a map that applies m followed by next.
func (m *PositionMap) Then(next *PositionMap) *PositionMap {
	combined := make([]mapEdit, 0, len(m.edits)+len(next.edits))
	combined = append(combined, m.edits...)
	combined = append(combined, next.edits...)
	return &PositionMap{edits: combined}
}

// Map translates a single offset through the map.
func (m *PositionMap) Map(off Offset, bias Bias) Offset {
	for _, e := range m.edits {
		off = mapThrough(off, e, bias)
	}
	return off
}

// MapRange translates a range through the map. The start is mapped with
// BiasAfter and the end with BiasBefore, so text inserted exactly at a
// boundary falls outside the range while text inserted strictly inside
// grows it.
func (m *PositionMap) MapRange(r Range) Range {
	start := m.Map(r.Start, BiasAfter)
	end := m.Map(r.End, BiasBefore)
	if end < start {
		end = start
	}
	return Range{Start: start, End: end}
}

// Deleted returns true if the offset fell strictly inside a deleted or
// replaced span.
func (m *PositionMap) Deleted(off Offset) bool {
	for _, e := range m.edits {
		if e.oldLen > 0 && off > e.pos && off < e.pos+e.oldLen {
			return true
		}
		off = mapThrough(off, e, BiasBefore)
	}
	return false
}

func mapThrough(off Offset, e mapEdit, bias Bias) Offset {
	switch {
	case off < e.pos:
		return off
	case off == e.pos:
		if e.oldLen == 0 && bias == BiasAfter {
			return off + e.newLen
		}
		return off
	case off < e.pos+e.oldLen:
		// Inside the removed span: collapse to its start.
		return e.pos
	default:
		return off + e.newLen - e.oldLen
	}
}
