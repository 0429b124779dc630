package suggest

import (
	"fmt"

	"github.com/dshills/inkstorm/internal/textdoc"
)

// Modification is a pending range replacement proposed for the
// document. Its range is always expressed in the coordinates of the
// current document revision; the store remaps every entry through each
// transaction before the entry is used again.
type Modification struct {
	// ID is assigned at insertion and never reused within a session.
	ID uint64

	// Range is the document span to be replaced.
	Range textdoc.Range

	// NewText is the proposed replacement text.
	NewText string
}

// String returns a description of the modification.
func (m Modification) String() string {
	return fmt.Sprintf("mod#%d %s -> %q", m.ID, m.Range, m.NewText)
}

// WidenedRange is the span considered "near" the modification for
// accept resolution: the replaced range extended by the length of the
// replacement text, so a caret sitting where the inserted text would
// end still resolves the suggestion.
func (m Modification) WidenedRange() textdoc.Range {
	return textdoc.Range{
		Start: m.Range.Start,
		End:   m.Range.End + textdoc.Offset(len(m.NewText)),
	}
}

// store is the insertion-ordered collection of pending modifications.
// It has a single writer, the owning engine, and is not safe for
// concurrent use on its own.
type store struct {
	mods   []Modification
	nextID uint64
}

func newStore() *store {
	return &store{nextID: 1}
}

// add appends a modification and assigns it a fresh id.
func (s *store) add(r textdoc.Range, newText string) uint64 {
	id := s.nextID
	s.nextID++
	s.mods = append(s.mods, Modification{ID: id, Range: r, NewText: newText})
	return id
}

// remove deletes the modification with the given id, preserving order.
func (s *store) remove(id uint64) bool {
	for i, m := range s.mods {
		if m.ID == id {
			s.mods = append(s.mods[:i], s.mods[i+1:]...)
			return true
		}
	}
	return false
}

// clear empties the store and resets the id counter.
func (s *store) clear() {
	s.mods = nil
	s.nextID = 1
}

func (s *store) len() int {
	return len(s.mods)
}

// all returns a copy of the modifications in insertion order.
func (s *store) all() []Modification {
	out := make([]Modification, len(s.mods))
	copy(out, s.mods)
	return out
}

// mapThrough remaps every modification's range through a position map.
// Ranges fully inside a deletion collapse to an empty range at the
// deletion point; such entries are kept when they still carry
// replacement text (they become pure insertions) and dropped otherwise.
func (s *store) mapThrough(pm *textdoc.PositionMap) {
	kept := s.mods[:0]
	for _, m := range s.mods {
		m.Range = pm.MapRange(m.Range)
		if m.Range.IsEmpty() && m.NewText == "" {
			continue
		}
		kept = append(kept, m)
	}
	s.mods = kept
}
