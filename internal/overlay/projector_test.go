package overlay

import (
	"testing"

	"github.com/dshills/inkstorm/internal/textdoc"
)

func snapFor(t *testing.T, text string) *textdoc.Snapshot {
	t.Helper()
	return textdoc.New(text).Snapshot()
}

func TestProjectEmpty(t *testing.T) {
	snap := snapFor(t, "Hello")
	set := Project(snap, nil, nil, DefaultConfig())

	if set.Count() != 0 {
		t.Errorf("Count() = %d, want 0", set.Count())
	}
	if set.Revision() != snap.Revision() {
		t.Errorf("Revision() = %d, want %d", set.Revision(), snap.Revision())
	}
	if spans := set.SpansForLine(0); spans != nil {
		t.Errorf("SpansForLine(0) = %v, want nil", spans)
	}
}

func TestProjectReplacement(t *testing.T) {
	snap := snapFor(t, "Hello World")
	reps := []Replacement{
		{ID: 1, Range: textdoc.Range{Start: 0, End: 5}, NewText: "Hi"},
	}
	set := Project(snap, reps, nil, DefaultConfig())

	// One strike plus one insert widget.
	if set.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", set.Count())
	}

	spans := set.SpansForLine(0)
	if len(spans) != 2 {
		t.Fatalf("SpansForLine(0) returned %d spans, want 2", len(spans))
	}

	var strike, widget *Span
	for i := range spans {
		if spans[i].Insert {
			widget = &spans[i]
		} else {
			strike = &spans[i]
		}
	}
	if strike == nil || widget == nil {
		t.Fatalf("expected one strike and one insert span, got %v", spans)
	}
	if strike.StartCol != 0 || strike.EndCol != 5 {
		t.Errorf("strike cols = [%d, %d), want [0, 5)", strike.StartCol, strike.EndCol)
	}
	if widget.StartCol != 5 || widget.Text != "Hi" {
		t.Errorf("widget = col %d text %q, want col 5 text \"Hi\"", widget.StartCol, widget.Text)
	}
}

func TestProjectMultilineStrike(t *testing.T) {
	snap := snapFor(t, "first\nsecond\nthird")
	// Strike from mid first line to mid third line.
	reps := []Replacement{
		{ID: 7, Range: textdoc.Range{Start: 3, End: 15}, NewText: ""},
	}
	set := Project(snap, reps, nil, DefaultConfig())

	// Empty replacement text produces no widget, only the strike.
	if set.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", set.Count())
	}

	tests := []struct {
		line      int
		wantStart int
		wantEnd   int
	}{
		{0, 3, 5},
		{1, 0, 6},
		{2, 0, 2},
	}
	for _, tt := range tests {
		spans := set.SpansForLine(tt.line)
		if len(spans) != 1 {
			t.Fatalf("line %d: got %d spans, want 1", tt.line, len(spans))
		}
		if spans[0].StartCol != tt.wantStart || spans[0].EndCol != tt.wantEnd {
			t.Errorf("line %d: cols [%d, %d), want [%d, %d)",
				tt.line, spans[0].StartCol, spans[0].EndCol, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestProjectCollapsedRangeIsInsertOnly(t *testing.T) {
	snap := snapFor(t, "abc")
	reps := []Replacement{
		{ID: 2, Range: textdoc.Range{Start: 1, End: 1}, NewText: "XYZ"},
	}
	set := Project(snap, reps, nil, DefaultConfig())

	if set.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 (widget only)", set.Count())
	}
	spans := set.SpansForLine(0)
	if len(spans) != 1 || !spans[0].Insert || spans[0].StartCol != 1 {
		t.Errorf("spans = %v, want one insert at col 1", spans)
	}
}

func TestProjectGhost(t *testing.T) {
	snap := snapFor(t, "line one\nline two")
	ghost := &Ghost{Anchor: 13, Text: "continued\nhere"}
	set := Project(snap, nil, ghost, DefaultConfig())

	if set.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", set.Count())
	}
	spans := set.SpansForLine(1)
	if len(spans) != 1 {
		t.Fatalf("SpansForLine(1) = %v, want one span", spans)
	}
	sp := spans[0]
	if !sp.Insert || sp.StartCol != 4 {
		t.Errorf("ghost span = %+v, want insert at col 4", sp)
	}
	if sp.Text != "continued⏎here" {
		t.Errorf("ghost text = %q, newlines must be flattened", sp.Text)
	}
}

func TestProjectConfigToggles(t *testing.T) {
	snap := snapFor(t, "Hello")
	reps := []Replacement{{ID: 1, Range: textdoc.Range{Start: 0, End: 5}, NewText: "Hi"}}
	ghost := &Ghost{Anchor: 5, Text: "!"}

	cfg := DefaultConfig()
	cfg.ShowDiffPreview = false
	set := Project(snap, reps, ghost, cfg)
	if set.Count() != 1 {
		t.Errorf("with diff preview off, Count() = %d, want 1 (ghost)", set.Count())
	}

	cfg = DefaultConfig()
	cfg.ShowGhostText = false
	set = Project(snap, reps, ghost, cfg)
	for _, d := range set.Decorations() {
		if d.Type() == TypeGhostText {
			t.Error("ghost text projected despite being disabled")
		}
	}
}

func TestProjectPriorityOrder(t *testing.T) {
	snap := snapFor(t, "Hello")
	reps := []Replacement{{ID: 1, Range: textdoc.Range{Start: 0, End: 5}, NewText: "Hi"}}
	ghost := &Ghost{Anchor: 5, Text: "!"}

	set := Project(snap, reps, ghost, DefaultConfig())
	decs := set.Decorations()
	for i := 1; i < len(decs); i++ {
		if decs[i-1].Priority() > decs[i].Priority() {
			t.Errorf("decorations out of priority order: %v before %v",
				decs[i-1].Priority(), decs[i].Priority())
		}
	}
	// Ghost is normal priority and sorts before the high-priority diff
	// decorations.
	if decs[0].Type() != TypeGhostText {
		t.Errorf("first decoration = %v, want ghost-text", decs[0].Type())
	}
}

func TestProjectOutOfBoundsClamped(t *testing.T) {
	snap := snapFor(t, "abc")
	reps := []Replacement{{ID: 9, Range: textdoc.Range{Start: 1, End: 99}, NewText: "x"}}
	set := Project(snap, reps, nil, DefaultConfig())

	spans := set.SpansForLine(0)
	for _, sp := range spans {
		if !sp.Insert && sp.EndCol > 3 {
			t.Errorf("strike extends past line end: %+v", sp)
		}
	}
}
