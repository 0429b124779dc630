package textdoc

import "strings"

// NodeKind classifies the block a document offset falls in. The set is
// closed: suggestion insertion consults IsTextInsertable rather than
// matching on block names.
type NodeKind uint8

const (
	KindParagraph NodeKind = iota
	KindHeading
	KindListItem
	KindBlockquote
	KindCodeBlock
	KindRule
)

// String returns the string representation of the node kind.
func (k NodeKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindListItem:
		return "list-item"
	case KindBlockquote:
		return "blockquote"
	case KindCodeBlock:
		return "code-block"
	case KindRule:
		return "rule"
	default:
		return "unknown"
	}
}

// IsTextInsertable returns true if suggestion text may be inserted into
// a block of this kind. Rules are atomic and never take text.
func IsTextInsertable(k NodeKind) bool {
	return k != KindRule
}

// classifyLine determines the block kind of a single line. inFence
// tracks whether the line sits inside a ``` code fence.
func classifyLine(line string, inFence bool) NodeKind {
	trimmed := strings.TrimRight(line, " \t")
	if inFence || strings.HasPrefix(trimmed, "```") {
		return KindCodeBlock
	}
	switch {
	case isHeadingLine(trimmed):
		return KindHeading
	case strings.HasPrefix(trimmed, "> "):
		return KindBlockquote
	case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "), strings.HasPrefix(trimmed, "+ "):
		return KindListItem
	case isRuleLine(trimmed):
		return KindRule
	default:
		return KindParagraph
	}
}

func isHeadingLine(line string) bool {
	i := 0
	for i < len(line) && line[i] == '#' {
		i++
	}
	return i >= 1 && i <= 6 && i < len(line) && line[i] == ' '
}

func isRuleLine(line string) bool {
	if len(line) < 3 {
		return false
	}
	c := line[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	for i := 1; i < len(line); i++ {
		if line[i] != c {
			return false
		}
	}
	return true
}
