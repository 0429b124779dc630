package ai

import (
	"errors"
	"strings"
	"testing"
)

func TestParseModifications(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantMods []Modification
		wantText string
		wantErr  bool
	}{
		{
			name: "plain modifications",
			raw:  `{"modifications": [{"from": 0, "to": 5, "newText": "Hi"}]}`,
			wantMods: []Modification{
				{From: 0, To: 5, NewText: "Hi"},
			},
		},
		{
			name: "multiple modifications",
			raw:  `{"modifications": [{"from": 0, "to": 2, "newText": "a"}, {"from": 4, "to": 4, "newText": "b"}]}`,
			wantMods: []Modification{
				{From: 0, To: 2, NewText: "a"},
				{From: 4, To: 4, NewText: "b"},
			},
		},
		{
			name: "fenced JSON",
			raw:  "Here you go:\n```json\n{\"modifications\": [{\"from\": 1, \"to\": 3, \"newText\": \"x\"}]}\n```",
			wantMods: []Modification{
				{From: 1, To: 3, NewText: "x"},
			},
		},
		{
			name:     "replacement text",
			raw:      `{"replacementText": "the whole new passage"}`,
			wantText: "the whole new passage",
		},
		{
			name:    "no JSON at all",
			raw:     "sorry, I cannot help with that",
			wantErr: true,
		},
		{
			name:    "missing newText",
			raw:     `{"modifications": [{"from": 0, "to": 5}]}`,
			wantErr: true,
		},
		{
			name:    "inverted range",
			raw:     `{"modifications": [{"from": 5, "to": 0, "newText": "x"}]}`,
			wantErr: true,
		},
		{
			name:    "negative offset",
			raw:     `{"modifications": [{"from": -1, "to": 3, "newText": "x"}]}`,
			wantErr: true,
		},
		{
			name:    "neither field present",
			raw:     `{"answer": 42}`,
			wantErr: true,
		},
		{
			name:    "modifications not an array",
			raw:     `{"modifications": "nope"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseModifications(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("error = %v, want ErrMalformedResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseModifications failed: %v", err)
			}
			if resp.ReplacementText != tt.wantText {
				t.Errorf("ReplacementText = %q, want %q", resp.ReplacementText, tt.wantText)
			}
			if len(resp.Modifications) != len(tt.wantMods) {
				t.Fatalf("got %d modifications, want %d", len(resp.Modifications), len(tt.wantMods))
			}
			for i, want := range tt.wantMods {
				if resp.Modifications[i] != want {
					t.Errorf("modification %d = %+v, want %+v", i, resp.Modifications[i], want)
				}
			}
		})
	}
}

func TestDiffReplacement(t *testing.T) {
	tests := []struct {
		name        string
		sel         Selection
		replacement string
		want        []Modification
	}{
		{
			name:        "identical text yields nothing",
			sel:         Selection{From: 10, To: 15, Text: "hello"},
			replacement: "hello",
			want:        nil,
		},
		{
			name:        "pure insertion",
			sel:         Selection{From: 0, To: 5, Text: "hello"},
			replacement: "hello!",
			want: []Modification{
				{From: 5, To: 5, NewText: "!"},
			},
		},
		{
			name:        "pure deletion",
			sel:         Selection{From: 4, To: 15, Text: "hello there"},
			replacement: "hello",
			want: []Modification{
				{From: 9, To: 15, NewText: ""},
			},
		},
		{
			name:        "tail replacement coalesces delete and insert",
			sel:         Selection{From: 2, To: 7, Text: "hello"},
			replacement: "help",
			want: []Modification{
				{From: 5, To: 7, NewText: "p"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffReplacement(tt.sel, tt.replacement)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d modifications %v, want %d", len(got), got, len(tt.want))
			}
			for i, want := range tt.want {
				if got[i] != want {
					t.Errorf("modification %d = %+v, want %+v", i, got[i], want)
				}
			}
		})
	}
}

func TestDiffReplacementOffsetsApply(t *testing.T) {
	// Applying the produced modifications right to left over the
	// original document must reproduce the replacement.
	doc := "prefix MIDDLE suffix"
	sel := Selection{From: 7, To: 13, Text: "MIDDLE"}
	replacement := "center point"

	mods := DiffReplacement(sel, replacement)
	out := doc
	for i := len(mods) - 1; i >= 0; i-- {
		m := mods[i]
		out = out[:m.From] + m.NewText + out[m.To:]
	}
	want := "prefix center point suffix"
	if out != want {
		t.Errorf("applied result = %q, want %q", out, want)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantErr  error
		wantName string
	}{
		{"missing key", Options{Provider: "anthropic"}, ErrMissingAPIKey, ""},
		{"unknown provider", Options{Provider: "cohere", APIKey: "k"}, ErrUnknownProvider, ""},
		{"anthropic", Options{Provider: "anthropic", APIKey: "k"}, nil, "anthropic"},
		{"openai", Options{Provider: "openai", APIKey: "k"}, nil, "openai"},
		{"gemini", Options{Provider: "gemini", APIKey: "k"}, nil, "gemini"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

func TestBuildModificationPayload(t *testing.T) {
	payload := buildModificationPayload("fix grammar", "full doc", []Selection{
		{From: 0, To: 4, Text: "teh "},
	})

	for _, want := range []string{`"message":"fix grammar"`, `"documentContext":"full doc"`, `"from":0`, `"text":"teh "`} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload missing %s: %s", want, payload)
		}
	}

	empty := buildModificationPayload("m", "d", nil)
	if !strings.Contains(empty, `"selections":[]`) {
		t.Errorf("empty selections must serialize as an array: %s", empty)
	}
}
