package ai

import (
	"fmt"

	"github.com/tidwall/sjson"
)

// completionSystemPrompt instructs the model to continue text at the
// caret. The model must answer with the continuation only.
const completionSystemPrompt = `You are an inline writing assistant embedded in a text editor.
Continue the user's text naturally from where it stops. Respond with the
continuation text only: no preamble, no quotation marks, no markdown
fences. Keep the continuation short, at most one or two sentences.`

// modificationSystemPrompt instructs the model to answer with a JSON
// object the parser understands: either targeted range edits or a full
// replacement for the selection.
const modificationSystemPrompt = `You are an editing assistant embedded in a text editor.
The user message is a JSON object with the fields "message" (the editing
instruction), "documentContext" (the surrounding document), and
"selections" (the spans to edit, with byte offsets "from"/"to" and their
current "text").

Respond with a single JSON object in one of two shapes:
  {"modifications": [{"from": <int>, "to": <int>, "newText": "<string>"}, ...]}
or
  {"replacementText": "<string>"}

Offsets refer to the current document. Respond with JSON only.`

// buildCompletionPrompt assembles the user content for a completion
// request.
func buildCompletionPrompt(textBeforeCaret, documentContext string) string {
	if documentContext == "" {
		return textBeforeCaret
	}
	return fmt.Sprintf("Document context:\n%s\n\nText to continue:\n%s", documentContext, textBeforeCaret)
}

// buildModificationPayload assembles the JSON user content for a
// modification request.
func buildModificationPayload(message, documentContext string, selections []Selection) string {
	payload, _ := sjson.Set("", "message", message)
	payload, _ = sjson.Set(payload, "documentContext", documentContext)
	if len(selections) == 0 {
		payload, _ = sjson.SetRaw(payload, "selections", "[]")
	}
	for i, sel := range selections {
		payload, _ = sjson.Set(payload, fmt.Sprintf("selections.%d.from", i), sel.From)
		payload, _ = sjson.Set(payload, fmt.Sprintf("selections.%d.to", i), sel.To)
		payload, _ = sjson.Set(payload, fmt.Sprintf("selections.%d.text", i), sel.Text)
	}
	return payload
}
