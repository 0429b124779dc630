package textdoc

import "strings"

// Snapshot is an immutable view of a document at one revision. It is
// safe to share across goroutines and carries the line index used by
// the decoration projector.
type Snapshot struct {
	text     string
	revision Revision
	marks    []Mark

	lineStarts []Offset
}

// Text returns the snapshot content.
func (s *Snapshot) Text() string {
	return s.text
}

// Len returns the byte length of the snapshot.
func (s *Snapshot) Len() Offset {
	return Offset(len(s.text))
}

// Revision returns the revision this snapshot was taken at.
func (s *Snapshot) Revision() Revision {
	return s.revision
}

// TextRange returns the text in [start, end), clamped to the snapshot.
func (s *Snapshot) TextRange(r Range) string {
	if r.Start < 0 {
		r.Start = 0
	}
	if r.End > Offset(len(s.text)) {
		r.End = Offset(len(s.text))
	}
	if r.End <= r.Start {
		return ""
	}
	return s.text[r.Start:r.End]
}

// Marks returns the style marks captured by the snapshot.
func (s *Snapshot) Marks() []Mark {
	return s.marks
}

// lineIndex returns the byte offsets at which each line starts.
func (s *Snapshot) lineIndex() []Offset {
	if s.lineStarts != nil {
		return s.lineStarts
	}
	starts := []Offset{0}
	for i := 0; i < len(s.text); i++ {
		if s.text[i] == '\n' {
			starts = append(starts, Offset(i+1))
		}
	}
	s.lineStarts = starts
	return starts
}

// LineCount returns the number of lines in the snapshot.
func (s *Snapshot) LineCount() int {
	return len(s.lineIndex())
}

// LineRange returns the byte range of the given line, excluding the
// trailing newline.
func (s *Snapshot) LineRange(line int) Range {
	starts := s.lineIndex()
	if line < 0 || line >= len(starts) {
		return Range{}
	}
	start := starts[line]
	end := Offset(len(s.text))
	if line+1 < len(starts) {
		end = starts[line+1] - 1
	}
	return Range{Start: start, End: end}
}

// LineText returns the text of the given line without its newline.
func (s *Snapshot) LineText(line int) string {
	r := s.LineRange(line)
	return s.text[r.Start:r.End]
}

// LineAt returns the line number containing the given offset.
func (s *Snapshot) LineAt(off Offset) int {
	starts := s.lineIndex()
	lo, hi := 0, len(starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if starts[mid] <= off {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// ColumnAt returns the byte column of the offset within its line.
func (s *Snapshot) ColumnAt(off Offset) int {
	line := s.LineAt(off)
	return int(off - s.lineIndex()[line])
}

// NodeKindAt returns the block kind of the line containing the offset.
// Code fences are tracked from the start of the document so interior
// fence lines classify as code.
func (s *Snapshot) NodeKindAt(off Offset) NodeKind {
	if off < 0 {
		off = 0
	}
	if off > Offset(len(s.text)) {
		off = Offset(len(s.text))
	}
	target := s.LineAt(off)

	inFence := false
	for line := 0; line <= target; line++ {
		text := s.LineText(line)
		kind := classifyLine(text, inFence)
		if strings.HasPrefix(strings.TrimRight(text, " \t"), "```") {
			inFence = !inFence
		}
		if line == target {
			return kind
		}
	}
	return KindParagraph
}
