package textdoc

import "testing"

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		inFence bool
		want    NodeKind
	}{
		{"plain text", "just some words", false, KindParagraph},
		{"heading", "# Title", false, KindHeading},
		{"deep heading", "###### Six", false, KindHeading},
		{"too many hashes", "####### Seven", false, KindParagraph},
		{"hash without space", "#tag", false, KindParagraph},
		{"blockquote", "> quoted", false, KindBlockquote},
		{"dash list", "- item", false, KindListItem},
		{"star list", "* item", false, KindListItem},
		{"plus list", "+ item", false, KindListItem},
		{"rule dashes", "---", false, KindRule},
		{"rule stars", "*****", false, KindRule},
		{"rule underscores", "___", false, KindRule},
		{"short rule is paragraph", "--", false, KindParagraph},
		{"fence opener", "```go", false, KindCodeBlock},
		{"inside fence", "- not a list here", true, KindCodeBlock},
		{"empty", "", false, KindParagraph},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyLine(tt.line, tt.inFence); got != tt.want {
				t.Errorf("classifyLine(%q, %v) = %v, want %v", tt.line, tt.inFence, got, tt.want)
			}
		})
	}
}

func TestNodeKindAt(t *testing.T) {
	text := "# Title\npara\n```\ncode\n```\n---\nend"
	snap := New(text).Snapshot()

	tests := []struct {
		name string
		off  Offset
		want NodeKind
	}{
		{"heading line", 2, KindHeading},
		{"paragraph line", 9, KindParagraph},
		{"fence interior", 17, KindCodeBlock},
		{"rule line", 27, KindRule},
		{"after fence closes", 31, KindParagraph},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := snap.NodeKindAt(tt.off); got != tt.want {
				t.Errorf("NodeKindAt(%d) = %v, want %v", tt.off, got, tt.want)
			}
		})
	}
}

func TestIsTextInsertable(t *testing.T) {
	insertable := []NodeKind{KindParagraph, KindHeading, KindListItem, KindBlockquote, KindCodeBlock}
	for _, k := range insertable {
		if !IsTextInsertable(k) {
			t.Errorf("IsTextInsertable(%v) = false, want true", k)
		}
	}
	if IsTextInsertable(KindRule) {
		t.Error("IsTextInsertable(rule) = true, want false")
	}
}
