package overlay

import (
	"fmt"
	"sort"

	"github.com/dshills/inkstorm/internal/textdoc"
)

// Replacement is the projector's view of a pending range modification.
type Replacement struct {
	// ID is the modification's store id.
	ID uint64

	// Range is the document span proposed for replacement. It must be
	// valid in the snapshot being projected against.
	Range textdoc.Range

	// NewText is the proposed replacement text.
	NewText string
}

// Ghost is the projector's view of a pending inline completion.
type Ghost struct {
	// Anchor is the caret offset the completion was produced at.
	Anchor textdoc.Offset

	// Text is the completion text.
	Text string
}

// Set is an immutable collection of decorations projected from one
// document snapshot. Rendering always consumes the set built from the
// newest snapshot; the revision lets callers discard stale sets.
type Set struct {
	revision    textdoc.Revision
	decorations []Decoration
}

// EmptySet returns a set with no decorations.
func EmptySet(rev textdoc.Revision) *Set {
	return &Set{revision: rev}
}

// Revision returns the snapshot revision the set was projected from.
func (s *Set) Revision() textdoc.Revision {
	return s.revision
}

// Count returns the number of decorations in the set.
func (s *Set) Count() int {
	return len(s.decorations)
}

// Decorations returns the decorations sorted by priority.
func (s *Set) Decorations() []Decoration {
	return s.decorations
}

// SpansForLine returns all decoration spans for a line, in priority
// order.
func (s *Set) SpansForLine(line int) []Span {
	var spans []Span
	for _, d := range s.decorations {
		first, last := d.Lines()
		if line < first || line > last {
			continue
		}
		spans = append(spans, d.SpansForLine(line)...)
	}
	return spans
}

// Project derives the decoration set for a snapshot from the pending
// modifications and the pending completion, if any. It is a pure
// function: no state is retained between calls, and every span is
// positioned with the snapshot's own line geometry so decorations can
// never refer to a document version other than the one rendered.
func Project(snap *textdoc.Snapshot, reps []Replacement, ghost *Ghost, cfg Config) *Set {
	set := &Set{revision: snap.Revision()}

	if cfg.ShowDiffPreview {
		for _, rep := range reps {
			if strike := projectStrike(snap, rep, cfg); strike != nil {
				set.decorations = append(set.decorations, strike)
			}
			if widget := projectWidget(snap, rep, cfg); widget != nil {
				set.decorations = append(set.decorations, widget)
			}
		}
	}

	if cfg.ShowGhostText && ghost != nil && ghost.Text != "" {
		set.decorations = append(set.decorations, projectGhost(snap, *ghost, cfg))
	}

	sort.SliceStable(set.decorations, func(i, j int) bool {
		return set.decorations[i].Priority() < set.decorations[j].Priority()
	})

	return set
}

// projectStrike builds the delete-strike decoration for a replacement,
// one span per touched line. A collapsed range produces no strike.
func projectStrike(snap *textdoc.Snapshot, rep Replacement, cfg Config) *DeleteStrike {
	r := clampRange(snap, rep.Range)
	if r.IsEmpty() {
		return nil
	}

	firstLine := snap.LineAt(r.Start)
	lastLine := snap.LineAt(r.End - 1)

	var spans []Span
	for line := firstLine; line <= lastLine; line++ {
		lr := snap.LineRange(line)
		seg := lr.Intersect(r)
		if seg.IsEmpty() {
			continue // strike touched only the newline
		}
		spans = append(spans, Span{
			Line:     line,
			StartCol: int(seg.Start - lr.Start),
			EndCol:   int(seg.End - lr.Start),
			Style:    cfg.DeleteStyle,
		})
	}

	return &DeleteStrike{
		baseDecoration: baseDecoration{
			id:        fmt.Sprintf("diff-del-%d", rep.ID),
			typ:       TypeDeleteStrike,
			priority:  PriorityHigh,
			firstLine: firstLine,
			lastLine:  lastLine,
		},
		spans: spans,
	}
}

// projectWidget builds the insert widget showing the replacement text
// immediately after the replaced span.
func projectWidget(snap *textdoc.Snapshot, rep Replacement, cfg Config) *InsertWidget {
	if rep.NewText == "" {
		return nil
	}

	r := clampRange(snap, rep.Range)
	line := snap.LineAt(r.End)
	col := snap.ColumnAt(r.End)

	return &InsertWidget{
		baseDecoration: baseDecoration{
			id:        fmt.Sprintf("diff-ins-%d", rep.ID),
			typ:       TypeInsertWidget,
			priority:  PriorityHigh,
			firstLine: line,
			lastLine:  line,
		},
		span: Span{
			Line:     line,
			StartCol: col,
			Text:     flattenDisplay(rep.NewText),
			Style:    cfg.InsertStyle,
			Insert:   true,
		},
	}
}

// projectGhost builds the ghost-text decoration at the completion anchor.
func projectGhost(snap *textdoc.Snapshot, ghost Ghost, cfg Config) *GhostText {
	anchor := ghost.Anchor
	if anchor < 0 {
		anchor = 0
	}
	if anchor > snap.Len() {
		anchor = snap.Len()
	}
	line := snap.LineAt(anchor)
	col := snap.ColumnAt(anchor)

	return &GhostText{
		baseDecoration: baseDecoration{
			id:        "ghost",
			typ:       TypeGhostText,
			priority:  PriorityNormal,
			firstLine: line,
			lastLine:  line,
		},
		span: Span{
			Line:     line,
			StartCol: col,
			Text:     flattenDisplay(ghost.Text),
			Style:    cfg.GhostStyle,
			Insert:   true,
		},
	}
}

// clampRange bounds a range to the snapshot.
func clampRange(snap *textdoc.Snapshot, r textdoc.Range) textdoc.Range {
	docLen := snap.Len()
	if r.Start < 0 {
		r.Start = 0
	}
	if r.End > docLen {
		r.End = docLen
	}
	if r.End < r.Start {
		r.End = r.Start
	}
	return r
}
