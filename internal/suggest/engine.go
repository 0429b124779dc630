package suggest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/inkstorm/internal/ai"
	"github.com/dshills/inkstorm/internal/event"
	"github.com/dshills/inkstorm/internal/logging"
	"github.com/dshills/inkstorm/internal/overlay"
	"github.com/dshills/inkstorm/internal/suggest/completion"
	"github.com/dshills/inkstorm/internal/textdoc"
)

// DefaultRequestTimeout bounds a modification request to the backend.
const DefaultRequestTimeout = 30 * time.Second

// Engine owns the suggestion state for one document session. It is the
// single writer of its store: asynchronous producers hand results back
// through engine methods, which re-validate against the document
// revision captured at request time before touching anything.
type Engine struct {
	mu    sync.Mutex
	doc   *textdoc.Document
	st    *store
	comp  *completion.Controller
	caret textdoc.Offset

	provider ai.Provider
	filter   *Filter
	bus      *event.Bus
	logger   *logging.Logger

	overlayCfg     overlay.Config
	compOpts       []completion.Option
	requestTimeout time.Duration
	disposed       bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithProvider sets the AI backend.
func WithProvider(p ai.Provider) Option {
	return func(e *Engine) { e.provider = p }
}

// WithFilter sets the Lua modification filter.
func WithFilter(f *Filter) Option {
	return func(e *Engine) { e.filter = f }
}

// WithBus sets the event bus change signals are published on.
func WithBus(b *event.Bus) Option {
	return func(e *Engine) { e.bus = b }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l.WithComponent("suggest")
		}
	}
}

// WithOverlayConfig sets the decoration styling used by Decorations.
func WithOverlayConfig(cfg overlay.Config) Option {
	return func(e *Engine) { e.overlayCfg = cfg }
}

// WithRequestTimeout bounds each modification request.
func WithRequestTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.requestTimeout = d
		}
	}
}

// WithCompletionOptions configures the inline completion controller.
func WithCompletionOptions(opts ...completion.Option) Option {
	return func(e *Engine) { e.compOpts = opts }
}

// New creates an engine bound to one document. Dispose must be called
// when the session ends.
func New(doc *textdoc.Document, opts ...Option) *Engine {
	e := &Engine{
		doc:            doc,
		st:             newStore(),
		logger:         logging.Null,
		overlayCfg:     overlay.DefaultConfig(),
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	var fetcher completion.Fetcher
	if e.provider != nil {
		fetcher = e.provider
	}
	compOpts := append([]completion.Option{
		completion.WithLogger(e.logger),
		completion.WithBus(e.bus),
	}, e.compOpts...)
	e.comp = completion.New(fetcher, e.caretPosition, compOpts...)

	return e
}

// Completion returns the inline completion controller.
func (e *Engine) Completion() *completion.Controller {
	return e.comp
}

// Document returns the document the engine is bound to.
func (e *Engine) Document() *textdoc.Document {
	return e.doc
}

// PendingCount returns the number of pending modifications.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.len()
}

// Pending returns a copy of the pending modifications in insertion
// order.
func (e *Engine) Pending() []Modification {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.all()
}

// AddDiff registers a pending range modification and returns its id.
// The range must be valid in the current document. The Lua filter, when
// configured, may veto or rewrite the modification; a vetoed
// modification returns id 0 with no error.
func (e *Engine) AddDiff(from, to textdoc.Offset, newText string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return 0, ErrDisposed
	}
	r := textdoc.Range{Start: from, End: to}
	if !r.IsValid() || r.Start < 0 || r.End > e.doc.Len() {
		return 0, fmt.Errorf("%w: %s against document length %d", textdoc.ErrRangeInvalid, r, e.doc.Len())
	}

	r, newText, ok := e.runFilter(r, newText)
	if !ok {
		return 0, nil
	}

	id := e.st.add(r, newText)
	e.logger.Debug("added modification #%d %s", id, r)
	e.publishChanged()
	return id, nil
}

// ClearDiffs empties the store. Calling it on an empty store is a
// no-op; either way no stale overlay survives.
func (e *Engine) ClearDiffs() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	had := e.st.len() > 0
	e.st.clear()
	if had {
		e.publishChanged()
	}
}

// AcceptDiff resolves the pending modification nearest the caret. A
// modification matches when the caret lies within its widened range
// [from, to+len(newText)], inclusive. When several match, the one whose
// end is nearest the caret wins; ties go to insertion order. On a match
// the document span is replaced by the new text in one atomic mutation,
// with the style marks active immediately before the span re-applied
// across the inserted text, and the modification leaves the store. It
// returns false when nothing matches.
func (e *Engine) AcceptDiff(caret textdoc.Offset) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return false, ErrDisposed
	}

	best := -1
	bestDist := textdoc.Offset(-1)
	for i, m := range e.st.mods {
		w := m.WidenedRange()
		if caret < w.Start || caret > w.End {
			continue
		}
		dist := caret - m.Range.End
		if dist < 0 {
			dist = -dist
		}
		if best < 0 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	if best < 0 {
		return false, nil
	}
	m := e.st.mods[best]

	marks := e.doc.MarksActiveBefore(m.Range.Start)
	tx, err := e.doc.ReplaceWithMarks(m.Range, m.NewText, marks)
	if err != nil {
		return false, fmt.Errorf("accept modification #%d: %w", m.ID, err)
	}

	// One transaction, one store removal: the remaining entries are
	// remapped through the same position map so no intermediate state
	// is ever observable.
	e.st.remove(m.ID)
	e.st.mapThrough(tx.Map)
	e.comp.Invalidate()
	e.logger.Info("accepted modification #%d %s", m.ID, m.Range)
	e.publishChanged()
	return true, nil
}

// ApplyTransaction remaps the store through a document change that did
// not originate from the engine (typing, deletes). Any shown completion
// is invalidated, since the document moved under it.
func (e *Engine) ApplyTransaction(tx textdoc.Transaction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || tx.Map == nil {
		return
	}
	e.st.mapThrough(tx.Map)
	e.comp.Invalidate()
	e.publishChanged()
}

// Decorations projects the pending state against the newest document
// snapshot. The returned set carries the snapshot's revision so callers
// can verify it matches what they render.
func (e *Engine) Decorations() *overlay.Set {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.doc.Snapshot()
	if e.disposed {
		return overlay.EmptySet(snap.Revision())
	}

	reps := make([]overlay.Replacement, 0, e.st.len())
	for _, m := range e.st.mods {
		reps = append(reps, overlay.Replacement{ID: m.ID, Range: m.Range, NewText: m.NewText})
	}

	var ghost *overlay.Ghost
	if p, ok := e.comp.Pending(); ok && p.Revision == snap.Revision() {
		ghost = &overlay.Ghost{Anchor: p.Anchor, Text: p.Text}
	}

	return overlay.Project(snap, reps, ghost, e.overlayCfg)
}

// RequestModifications asks the backend for edits satisfying message
// over the given selections, replacing the store's contents with the
// parsed batch. The request runs outside the engine lock; a result
// arriving after the document changed is discarded with
// ErrStaleResponse. A transport failure is logged and returns nil (no
// suggestion); a malformed response returns an error wrapping
// ai.ErrMalformedResponse and leaves the store untouched.
func (e *Engine) RequestModifications(ctx context.Context, message string, selections []textdoc.Range) error {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return ErrDisposed
	}
	if e.provider == nil {
		e.mu.Unlock()
		return ErrNoProvider
	}
	if len(selections) == 0 {
		e.mu.Unlock()
		return ErrNoSelections
	}
	snap := e.doc.Snapshot()
	provider := e.provider
	timeout := e.requestTimeout
	e.mu.Unlock()

	sels := make([]ai.Selection, 0, len(selections))
	for _, r := range selections {
		if !r.IsValid() || r.Start < 0 || r.End > snap.Len() {
			return fmt.Errorf("%w: selection %s against document length %d", textdoc.ErrRangeInvalid, r, snap.Len())
		}
		sels = append(sels, ai.Selection{
			From: int(r.Start),
			To:   int(r.End),
			Text: snap.TextRange(r),
		})
	}

	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	resp, err := provider.RequestModifications(rctx, message, snap.Text(), sels)
	if err != nil {
		if errors.Is(err, ai.ErrMalformedResponse) {
			e.publishError(err)
			return fmt.Errorf("modification request: %w", err)
		}
		// Transient backend failure: no suggestion this round.
		e.logger.Warn("modification request failed: %v", err)
		return nil
	}

	mods := resp.Modifications
	if len(mods) == 0 && resp.ReplacementText != "" {
		mods = ai.DiffReplacement(sels[0], resp.ReplacementText)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return ErrDisposed
	}
	if e.doc.Revision() != snap.Revision() {
		e.logger.Debug("modification batch discarded as stale (rev %d -> %d)", snap.Revision(), e.doc.Revision())
		return ErrStaleResponse
	}

	// A fresh batch replaces whatever was pending.
	e.st.clear()
	admitted := 0
	for _, m := range mods {
		r := textdoc.Range{Start: textdoc.Offset(m.From), End: textdoc.Offset(m.To)}
		if !r.IsValid() || r.Start < 0 || r.End > snap.Len() {
			e.logger.Warn("dropping out-of-bounds modification %s", r)
			continue
		}
		fr, ft, ok := e.runFilter(r, m.NewText)
		if !ok {
			continue
		}
		e.st.add(fr, ft)
		admitted++
	}
	e.logger.Info("modification batch installed: %d of %d admitted", admitted, len(mods))
	e.publishChanged()
	return nil
}

// SetOverlayConfig replaces the decoration styling. Used by config
// live reload.
func (e *Engine) SetOverlayConfig(cfg overlay.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.overlayCfg = cfg
}

// Dispose ends the session. The completion controller is stopped and
// further engine operations fail with ErrDisposed.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.disposed = true
	e.st.clear()
	e.comp.Dispose()
	if e.filter != nil {
		e.filter.Close()
	}
}

// SetCaret records the caret position used for completion anchoring and
// staleness checks.
func (e *Engine) SetCaret(off textdoc.Offset) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.caret = off
}

// Caret returns the last recorded caret position.
func (e *Engine) Caret() textdoc.Offset {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.caret
}

// caretPosition feeds the completion controller the newest snapshot and
// caret. Called from the controller's timer goroutine.
func (e *Engine) caretPosition() (*textdoc.Snapshot, textdoc.Offset) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Snapshot(), e.caret
}

// runFilter applies the Lua filter to one modification. A filter error
// never blocks suggestions; the modification is admitted unfiltered.
func (e *Engine) runFilter(r textdoc.Range, newText string) (textdoc.Range, string, bool) {
	if e.filter == nil {
		return r, newText, true
	}
	fr, ft, ok, err := e.filter.Apply(r, newText)
	if err != nil {
		e.logger.Warn("filter error, admitting unfiltered: %v", err)
		return r, newText, true
	}
	if !ok {
		e.logger.Debug("filter vetoed modification %s", r)
		return r, newText, false
	}
	return fr, ft, true
}

func (e *Engine) publishChanged() {
	if e.bus != nil {
		e.bus.Publish(event.TopicStoreChanged, e.st.len())
	}
}

func (e *Engine) publishError(err error) {
	e.logger.Error("suggestion error: %v", err)
	if e.bus != nil {
		e.bus.Publish(event.TopicSuggestError, err)
	}
}
