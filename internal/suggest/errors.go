package suggest

import "errors"

var (
	// ErrDisposed is returned when an operation is invoked on a disposed
	// engine.
	ErrDisposed = errors.New("suggestion engine is disposed")

	// ErrNoProvider is returned when a backend request is made but no
	// provider was configured.
	ErrNoProvider = errors.New("no AI provider configured")

	// ErrStaleResponse is returned when a backend response arrives after
	// the document has changed and can no longer be applied.
	ErrStaleResponse = errors.New("backend response is stale")

	// ErrNoSelections is returned when a modification request is made
	// without any selections.
	ErrNoSelections = errors.New("no selections for modification request")
)
