package textdoc

import (
	"sync"
)

// Document is a revisioned plain-text buffer with style marks.
// All methods are thread-safe, though the editor mutates it from a
// single event loop; the lock exists so async consumers can read
// snapshots safely.
type Document struct {
	mu       sync.RWMutex
	text     string
	revision Revision
	marks    []Mark
}

// Option configures a Document at creation.
type Option func(*Document)

// WithMarks sets the initial style marks.
func WithMarks(marks []Mark) Option {
	return func(d *Document) {
		d.marks = append([]Mark(nil), marks...)
	}
}

// New creates a document with the given initial content.
func New(text string, opts ...Option) *Document {
	d := &Document{text: text, revision: 1}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Text returns the full document content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Len returns the byte length of the document.
func (d *Document) Len() Offset {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Offset(len(d.text))
}

// Revision returns the current document revision.
func (d *Document) Revision() Revision {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// TextRange returns the text in [start, end).
func (d *Document) TextRange(r Range) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !r.IsValid() || r.Start < 0 || r.End > Offset(len(d.text)) {
		return "", ErrRangeInvalid
	}
	return d.text[r.Start:r.End], nil
}

// Marks returns a copy of the document's style marks.
func (d *Document) Marks() []Mark {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Mark(nil), d.marks...)
}

// MarksActiveBefore returns the mark types covering the character
// immediately before the given offset.
func (d *Document) MarksActiveBefore(at Offset) []MarkType {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return marksActiveBefore(d.marks, at)
}

// Insert inserts text at the given offset.
func (d *Document) Insert(at Offset, text string) (Transaction, error) {
	return d.edit(Range{Start: at, End: at}, text, nil, false)
}

// Delete removes the text in the given range.
func (d *Document) Delete(r Range) (Transaction, error) {
	return d.edit(r, "", nil, false)
}

// Replace replaces the text in the given range.
func (d *Document) Replace(r Range, text string) (Transaction, error) {
	return d.edit(r, text, nil, false)
}

// ReplaceWithMarks replaces the text in the given range and, in the same
// transaction, strips residual marks from the inserted span and applies
// the given mark types across it. This is the accept path: the inserted
// text carries exactly the style that was active before the insertion
// point, never formatting remnants of the deleted span.
func (d *Document) ReplaceWithMarks(r Range, text string, marks []MarkType) (Transaction, error) {
	return d.edit(r, text, marks, true)
}

// edit performs the replacement under one lock acquisition so the text
// mutation, mark remapping, and mark rewrite are atomic.
func (d *Document) edit(r Range, text string, applyMarks []MarkType, rewriteMarks bool) (Transaction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !r.IsValid() || r.Start < 0 || r.End > Offset(len(d.text)) {
		return Transaction{}, ErrRangeInvalid
	}

	oldText := d.text[r.Start:r.End]
	d.text = d.text[:r.Start] + text + d.text[r.End:]
	d.revision++

	change := Change{
		Type:     changeTypeFor(oldText, text),
		Range:    r,
		NewRange: Range{Start: r.Start, End: r.Start + Offset(len(text))},
		OldText:  oldText,
		NewText:  text,
	}
	pm := newPositionMap(r.Start, r.Len(), Offset(len(text)))

	d.marks = mapMarks(d.marks, pm)
	if rewriteMarks {
		inserted := change.NewRange
		d.marks = stripMarks(d.marks, inserted)
		if !inserted.IsEmpty() {
			for _, mt := range applyMarks {
				d.marks = append(d.marks, Mark{Type: mt, Range: inserted})
			}
		}
	}

	return Transaction{Change: change, Map: pm, Revision: d.revision}, nil
}

func changeTypeFor(oldText, newText string) ChangeType {
	switch {
	case oldText == "":
		return ChangeInsert
	case newText == "":
		return ChangeDelete
	default:
		return ChangeReplace
	}
}

// Snapshot returns an immutable view of the current document state.
func (d *Document) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return &Snapshot{
		text:     d.text,
		revision: d.revision,
		marks:    append([]Mark(nil), d.marks...),
	}
}
