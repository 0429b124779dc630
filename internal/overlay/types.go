// Package overlay renders pending AI suggestions as visual decorations:
// strikethrough spans over text proposed for deletion, insert widgets
// showing replacement text, and ghost text for inline completions.
// Decorations are purely presentational and never editable.
package overlay

// Type represents the kind of decoration.
type Type uint8

const (
	// TypeGhostText is for inline completion suggestions shown as dim text.
	TypeGhostText Type = iota

	// TypeDeleteStrike marks a span proposed for deletion.
	TypeDeleteStrike

	// TypeInsertWidget shows proposed replacement text after a span.
	TypeInsertWidget
)

// String returns the string representation of the decoration type.
func (t Type) String() string {
	switch t {
	case TypeGhostText:
		return "ghost-text"
	case TypeDeleteStrike:
		return "delete-strike"
	case TypeInsertWidget:
		return "insert-widget"
	default:
		return "unknown"
	}
}

// Priority represents the rendering priority of decorations.
// Higher priority decorations are rendered on top.
type Priority uint8

const (
	PriorityLow      Priority = 50
	PriorityNormal   Priority = 100
	PriorityHigh     Priority = 150
	PriorityCritical Priority = 200
)

// Color is a 24-bit RGB color. The zero value means "terminal default".
type Color uint32

// ColorDefault is the unset color.
const ColorDefault Color = 0

// RGB builds a color from components.
func RGB(r, g, b uint8) Color {
	return Color(1<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// RGBA returns the color components. ok is false for ColorDefault.
func (c Color) RGBA() (r, g, b uint8, ok bool) {
	if c == ColorDefault {
		return 0, 0, 0, false
	}
	return uint8(c >> 16), uint8(c >> 8), uint8(c), true
}

// Attr is a set of text attribute flags.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrItalic
	AttrUnderline
	AttrStrikethrough
	AttrDim
)

// Style is the visual style applied to a decoration span.
type Style struct {
	Foreground Color
	Background Color
	Attrs      Attr
}

// Config holds decoration rendering configuration.
type Config struct {
	// GhostStyle is the style for inline completion ghost text.
	GhostStyle Style

	// DeleteStyle is the style for delete-strike spans.
	DeleteStyle Style

	// InsertStyle is the style for insert widgets.
	InsertStyle Style

	// ShowGhostText enables ghost text rendering.
	ShowGhostText bool

	// ShowDiffPreview enables delete-strike and insert widgets.
	ShowDiffPreview bool
}

// DefaultConfig returns the default decoration configuration.
func DefaultConfig() Config {
	return Config{
		GhostStyle:      Style{Foreground: RGB(128, 128, 128), Attrs: AttrItalic | AttrDim},
		DeleteStyle:     Style{Foreground: RGB(200, 80, 80), Background: RGB(60, 30, 30), Attrs: AttrStrikethrough},
		InsertStyle:     Style{Foreground: RGB(80, 200, 80), Background: RGB(30, 60, 30)},
		ShowGhostText:   true,
		ShowDiffPreview: true,
	}
}

// Span is a styled run on a single line.
type Span struct {
	// Line is the line number (0-indexed).
	Line int

	// StartCol is the starting byte column (0-indexed).
	StartCol int

	// EndCol is the ending byte column (exclusive). Only meaningful
	// when Insert is false.
	EndCol int

	// Text is injected display text (insert widgets and ghost text).
	// Empty for spans that only restyle existing content.
	Text string

	// Style is the visual style for this span.
	Style Style

	// Insert indicates the span injects Text at StartCol instead of
	// styling the existing [StartCol, EndCol) run.
	Insert bool
}

// Decoration is a visual overlay projected from a pending suggestion.
type Decoration interface {
	// ID returns the unique identifier for this decoration.
	ID() string

	// Type returns the kind of decoration.
	Type() Type

	// Priority returns the rendering priority.
	Priority() Priority

	// Lines returns the first and last line the decoration touches.
	Lines() (first, last int)

	// SpansForLine returns the decoration spans for a specific line.
	// Returns nil if this decoration does not affect the line.
	SpansForLine(line int) []Span
}

// baseDecoration provides common fields for decoration implementations.
type baseDecoration struct {
	id        string
	typ       Type
	priority  Priority
	firstLine int
	lastLine  int
}

func (d *baseDecoration) ID() string               { return d.id }
func (d *baseDecoration) Type() Type               { return d.typ }
func (d *baseDecoration) Priority() Priority       { return d.priority }
func (d *baseDecoration) Lines() (first, last int) { return d.firstLine, d.lastLine }
