package textdoc

// MarkType identifies a style mark applied to a span of text.
type MarkType uint8

const (
	MarkBold MarkType = iota
	MarkItalic
	MarkUnderline
	MarkCode
)

// String returns the string representation of the mark type.
func (mt MarkType) String() string {
	switch mt {
	case MarkBold:
		return "bold"
	case MarkItalic:
		return "italic"
	case MarkUnderline:
		return "underline"
	case MarkCode:
		return "code"
	default:
		return "unknown"
	}
}

// Mark is a style mark covering a byte range of the document.
type Mark struct {
	Type  MarkType
	Range Range
}

// mapMarks remaps all marks through a position map, dropping marks that
// collapsed to nothing.
func mapMarks(marks []Mark, pm *PositionMap) []Mark {
	out := marks[:0]
	for _, m := range marks {
		r := pm.MapRange(m.Range)
		if r.IsEmpty() {
			continue
		}
		m.Range = r
		out = append(out, m)
	}
	return out
}

// stripMarks removes mark coverage from the given range, splitting marks
// that extend past either side of it.
func stripMarks(marks []Mark, r Range) []Mark {
	var out []Mark
	for _, m := range marks {
		if !m.Range.Overlaps(r) {
			out = append(out, m)
			continue
		}
		if m.Range.Start < r.Start {
			out = append(out, Mark{Type: m.Type, Range: Range{Start: m.Range.Start, End: r.Start}})
		}
		if m.Range.End > r.End {
			out = append(out, Mark{Type: m.Type, Range: Range{Start: r.End, End: m.Range.End}})
		}
	}
	return out
}

// marksActiveBefore returns the mark types covering the character
// immediately before the given offset. At offset zero there is no
// preceding character and no active marks.
func marksActiveBefore(marks []Mark, at Offset) []MarkType {
	if at <= 0 {
		return nil
	}
	var types []MarkType
	for _, m := range marks {
		if m.Range.Contains(at - 1) {
			types = append(types, m.Type)
		}
	}
	return types
}
