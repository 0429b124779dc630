package overlay

import "strings"

// DeleteStrike styles an existing document span as pending deletion.
// The span may cross line boundaries; one Span is produced per line.
type DeleteStrike struct {
	baseDecoration

	// spans are the precomputed per-line runs, in line order.
	spans []Span
}

// SpansForLine returns the strike spans for a specific line.
func (d *DeleteStrike) SpansForLine(line int) []Span {
	var out []Span
	for _, s := range d.spans {
		if s.Line == line {
			out = append(out, s)
		}
	}
	return out
}

// InsertWidget displays proposed replacement text immediately after the
// replaced span. The widget is display-only; multi-line replacement text
// is flattened for presentation.
type InsertWidget struct {
	baseDecoration

	span Span
}

// Text returns the widget's display text.
func (w *InsertWidget) Text() string {
	return w.span.Text
}

// SpansForLine returns the widget span for a specific line.
func (w *InsertWidget) SpansForLine(line int) []Span {
	if line != w.span.Line {
		return nil
	}
	return []Span{w.span}
}

// GhostText displays a pending inline completion at the caret.
type GhostText struct {
	baseDecoration

	span Span
}

// Text returns the ghost's display text.
func (g *GhostText) Text() string {
	return g.span.Text
}

// SpansForLine returns the ghost span for a specific line.
func (g *GhostText) SpansForLine(line int) []Span {
	if line != g.span.Line {
		return nil
	}
	return []Span{g.span}
}

// flattenDisplay sanitizes injected text for single-line presentation.
// Newlines render as a visible return symbol so the decoration cannot
// disturb line layout.
func flattenDisplay(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	return strings.ReplaceAll(s, "\n", "⏎")
}
