package ai

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/tidwall/gjson"
)

// ParseModifications extracts a ModificationResponse from raw model
// output. Models frequently wrap JSON in code fences or prose, so the
// parser locates the outermost JSON object before reading it.
func ParseModifications(raw string) (*ModificationResponse, error) {
	payload := extractJSONObject(raw)
	if payload == "" || !gjson.Valid(payload) {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	if mods := gjson.Get(payload, "modifications"); mods.Exists() {
		if !mods.IsArray() {
			return nil, fmt.Errorf("%w: modifications is not an array", ErrMalformedResponse)
		}
		resp := &ModificationResponse{}
		var parseErr error
		mods.ForEach(func(_, m gjson.Result) bool {
			from := m.Get("from")
			to := m.Get("to")
			newText := m.Get("newText")
			if !from.Exists() || !to.Exists() || !newText.Exists() {
				parseErr = fmt.Errorf("%w: modification missing from/to/newText", ErrMalformedResponse)
				return false
			}
			if from.Int() < 0 || to.Int() < from.Int() {
				parseErr = fmt.Errorf("%w: modification range [%d, %d) invalid", ErrMalformedResponse, from.Int(), to.Int())
				return false
			}
			resp.Modifications = append(resp.Modifications, Modification{
				From:    int(from.Int()),
				To:      int(to.Int()),
				NewText: newText.String(),
			})
			return true
		})
		if parseErr != nil {
			return nil, parseErr
		}
		return resp, nil
	}

	if rt := gjson.Get(payload, "replacementText"); rt.Exists() {
		return &ModificationResponse{ReplacementText: rt.String()}, nil
	}

	return nil, fmt.Errorf("%w: neither modifications nor replacementText present", ErrMalformedResponse)
}

// extractJSONObject returns the outermost {...} object in the text, or
// empty string when none is found.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// DiffReplacement converts a whole-selection replacement into range
// modifications by diffing the selection's current text against the
// replacement. Offsets in the result are document offsets.
func DiffReplacement(sel Selection, replacement string) []Modification {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(sel.Text, replacement, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var mods []Modification
	oldPos := sel.From

	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldPos += len(d.Text)
		case diffmatchpatch.DiffDelete:
			from, to := oldPos, oldPos+len(d.Text)
			oldPos = to
			newText := ""
			// A delete immediately followed by an insert is one
			// replacement.
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				newText = diffs[i+1].Text
				i++
			}
			mods = append(mods, Modification{From: from, To: to, NewText: newText})
		case diffmatchpatch.DiffInsert:
			mods = append(mods, Modification{From: oldPos, To: oldPos, NewText: d.Text})
		}
	}

	return mods
}
