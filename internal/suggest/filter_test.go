package suggest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/inkstorm/internal/textdoc"
)

const testFilterScript = `
function filter_modification(from, to, new_text)
  if string.find(new_text, "bad") then
    return false
  end
  if new_text == "rewrite me" then
    return "rewritten"
  end
  return true
end
`

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filter.lua")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return path
}

func TestLoadFilterErrors(t *testing.T) {
	if _, err := LoadFilter(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("LoadFilter with missing file must fail")
	}

	path := writeScript(t, `x = 1`)
	if _, err := LoadFilter(path); err == nil {
		t.Error("LoadFilter without filter_modification must fail")
	}
}

func TestFilterApply(t *testing.T) {
	f, err := LoadFilter(writeScript(t, testFilterScript))
	if err != nil {
		t.Fatalf("LoadFilter failed: %v", err)
	}
	defer f.Close()

	r := textdoc.Range{Start: 2, End: 6}

	tests := []struct {
		name     string
		newText  string
		wantText string
		wantOK   bool
	}{
		{"accepted unchanged", "fine text", "fine text", true},
		{"vetoed", "bad word", "bad word", false},
		{"rewritten", "rewrite me", "rewritten", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotR, gotText, ok, err := f.Apply(r, tt.newText)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if gotText != tt.wantText {
				t.Errorf("text = %q, want %q", gotText, tt.wantText)
			}
			if gotR != r {
				t.Errorf("range = %v, want %v", gotR, r)
			}
		})
	}
}

func TestEngineAppliesFilter(t *testing.T) {
	f, err := LoadFilter(writeScript(t, testFilterScript))
	if err != nil {
		t.Fatalf("LoadFilter failed: %v", err)
	}

	doc := textdoc.New("some document text")
	e := New(doc, WithFilter(f))
	defer e.Dispose()

	// Vetoed modification: no id, no store entry, no error.
	id, err := e.AddDiff(0, 4, "bad word")
	if err != nil {
		t.Fatalf("AddDiff failed: %v", err)
	}
	if id != 0 || e.PendingCount() != 0 {
		t.Errorf("vetoed modification entered the store: id %d, count %d", id, e.PendingCount())
	}

	// Rewritten modification keeps the range with new text.
	id, err = e.AddDiff(0, 4, "rewrite me")
	if err != nil {
		t.Fatalf("AddDiff failed: %v", err)
	}
	if id == 0 {
		t.Fatal("rewritten modification must be admitted")
	}
	pending := e.Pending()
	if len(pending) != 1 || pending[0].NewText != "rewritten" {
		t.Errorf("pending = %v, want one 'rewritten' entry", pending)
	}
}

func TestFilterRuntimeErrorAdmitsUnfiltered(t *testing.T) {
	f, err := LoadFilter(writeScript(t, `
function filter_modification(from, to, new_text)
  error("scripted failure")
end
`))
	if err != nil {
		t.Fatalf("LoadFilter failed: %v", err)
	}

	doc := textdoc.New("text body")
	e := New(doc, WithFilter(f))
	defer e.Dispose()

	id, err := e.AddDiff(0, 4, "anything")
	if err != nil {
		t.Fatalf("AddDiff failed: %v", err)
	}
	if id == 0 || e.PendingCount() != 1 {
		t.Errorf("broken filter must not block suggestions: id %d, count %d", id, e.PendingCount())
	}
}
