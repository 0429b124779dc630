package textdoc

import "fmt"

// Revision is a monotonically increasing document version number.
type Revision uint64

// ChangeType categorizes the type of a change.
type ChangeType uint8

const (
	// ChangeInsert indicates text was inserted (OldText is empty).
	ChangeInsert ChangeType = iota

	// ChangeDelete indicates text was deleted (NewText is empty).
	ChangeDelete

	// ChangeReplace indicates text was replaced (both texts present).
	ChangeReplace
)

// String returns a human-readable representation of the change type.
func (ct ChangeType) String() string {
	switch ct {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change records a single mutation of the document text.
type Change struct {
	// Type indicates whether this is an insert, delete, or replace.
	Type ChangeType

	// Range is the affected range in the OLD text (before the change).
	// For inserts, Start == End.
	Range Range

	// NewRange is the affected range in the NEW text (after the change).
	// For deletes, Start == End.
	NewRange Range

	// OldText is the text that was removed (empty for inserts).
	OldText string

	// NewText is the text that was added (empty for deletes).
	NewText string
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	switch c.Type {
	case ChangeInsert:
		return fmt.Sprintf("Insert %q at %d", truncate(c.NewText, 20), c.Range.Start)
	case ChangeDelete:
		return fmt.Sprintf("Delete %q at %v", truncate(c.OldText, 20), c.Range)
	case ChangeReplace:
		return fmt.Sprintf("Replace %q with %q at %v", truncate(c.OldText, 10), truncate(c.NewText, 10), c.Range)
	default:
		return "Unknown change"
	}
}

// Delta returns the byte delta of this change.
func (c Change) Delta() int {
	return len(c.NewText) - len(c.OldText)
}

// Transaction is the result of a document mutation: the change itself,
// the position map that carries old offsets into the new document, and
// the revision the document reached.
type Transaction struct {
	Change   Change
	Map      *PositionMap
	Revision Revision
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
