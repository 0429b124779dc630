package app

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/inkstorm/internal/overlay"
)

// cell is one styled screen rune.
type cell struct {
	r     rune
	style tcell.Style
}

// render paints the visible document lines with their decorations and
// the status bar. Decorations always come from the newest snapshot; the
// projector guarantees the set's revision matches it.
func (a *App) render() {
	if a.screen == nil {
		return
	}
	width, height := a.screen.Size()
	if width < 1 || height < 2 {
		return
	}
	textRows := height - 1

	snap := a.doc.Snapshot()
	set := a.engine.Decorations()

	caretLine := snap.LineAt(a.caret)
	caretCol := snap.ColumnAt(a.caret)
	if caretLine < a.scroll {
		a.scroll = caretLine
	}
	if caretLine >= a.scroll+textRows {
		a.scroll = caretLine - textRows + 1
	}

	a.screen.Clear()
	for row := 0; row < textRows; row++ {
		line := a.scroll + row
		if line >= snap.LineCount() {
			break
		}
		cells := composeLine(snap.LineText(line), set.SpansForLine(line))
		for x, c := range cells {
			if x >= width {
				break
			}
			a.screen.SetContent(x, row, c.r, nil, c.style)
		}
	}

	a.drawStatus(width, height-1)
	a.screen.ShowCursor(caretCol, caretLine-a.scroll)
	a.screen.Show()
}

func (a *App) drawStatus(width, row int) {
	comp := a.engine.Completion()
	left := fmt.Sprintf(" %d pending | completion %s (%d/%d) ",
		a.engine.PendingCount(), comp.State(), comp.Shown(), a.cfg.Completion.Budget)
	if msg := a.getStatus(); msg != "" {
		left += "| " + msg
	}

	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range left {
		if x >= width {
			break
		}
		a.screen.SetContent(x, row, r, nil, style)
		x++
	}
	for ; x < width; x++ {
		a.screen.SetContent(x, row, ' ', nil, style)
	}
}

// composeLine merges a line's text with its decoration spans into
// styled cells. Styling spans restyle existing runs; insert spans
// splice display text in at their column. Span columns are byte
// offsets into the original line, so inserts are applied right to left
// after all restyling.
func composeLine(text string, spans []overlay.Span) []cell {
	cells := make([]cell, 0, len(text))
	for _, r := range text {
		cells = append(cells, cell{r: r, style: tcell.StyleDefault})
	}

	var inserts []overlay.Span
	for _, sp := range spans {
		if sp.Insert {
			inserts = append(inserts, sp)
			continue
		}
		start := runeIndex(text, sp.StartCol)
		end := runeIndex(text, sp.EndCol)
		style := toTcellStyle(sp.Style)
		for i := start; i < end && i < len(cells); i++ {
			cells[i].style = style
		}
	}

	sort.SliceStable(inserts, func(i, j int) bool {
		return inserts[i].StartCol > inserts[j].StartCol
	})
	for _, sp := range inserts {
		at := runeIndex(text, sp.StartCol)
		if at > len(cells) {
			at = len(cells)
		}
		style := toTcellStyle(sp.Style)
		ins := make([]cell, 0, len(sp.Text))
		for _, r := range sp.Text {
			ins = append(ins, cell{r: r, style: style})
		}
		merged := make([]cell, 0, len(cells)+len(ins))
		merged = append(merged, cells[:at]...)
		merged = append(merged, ins...)
		merged = append(merged, cells[at:]...)
		cells = merged
	}

	return cells
}

// runeIndex converts a byte column into a rune index within text.
func runeIndex(text string, byteCol int) int {
	idx := 0
	for i := range text {
		if i >= byteCol {
			return idx
		}
		idx++
	}
	return idx
}

// toTcellStyle converts an overlay style into a tcell style.
func toTcellStyle(s overlay.Style) tcell.Style {
	style := tcell.StyleDefault
	if r, g, b, ok := s.Foreground.RGBA(); ok {
		style = style.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	}
	if r, g, b, ok := s.Background.RGBA(); ok {
		style = style.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	}
	if s.Attrs&overlay.AttrBold != 0 {
		style = style.Bold(true)
	}
	if s.Attrs&overlay.AttrItalic != 0 {
		style = style.Italic(true)
	}
	if s.Attrs&overlay.AttrUnderline != 0 {
		style = style.Underline(true)
	}
	if s.Attrs&overlay.AttrStrikethrough != 0 {
		style = style.StrikeThrough(true)
	}
	if s.Attrs&overlay.AttrDim != 0 {
		style = style.Dim(true)
	}
	return style
}
