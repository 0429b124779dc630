// Package completion implements the single-slot inline completion
// controller: a debounced fetch/show/accept state machine that proposes
// at most one ghost-text continuation at the caret.
package completion

import (
	"context"
	"sync"
	"time"

	"github.com/dshills/inkstorm/internal/event"
	"github.com/dshills/inkstorm/internal/logging"
	"github.com/dshills/inkstorm/internal/textdoc"
)

// Defaults for the controller.
const (
	DefaultDebounce     = 2000 * time.Millisecond
	DefaultBudget       = 5
	DefaultFetchTimeout = 10 * time.Second
	DefaultContextBytes = 2048
)

// State is the controller's position in its lifecycle.
type State int

const (
	// StateIdle means no fetch is pending and nothing is shown.
	StateIdle State = iota
	// StateFetching means a backend request is in flight.
	StateFetching
	// StateShowing means a completion is rendered as ghost text.
	StateShowing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateShowing:
		return "showing"
	default:
		return "unknown"
	}
}

// Fetcher is the completion backend the controller consumes.
type Fetcher interface {
	RequestCompletion(ctx context.Context, textBeforeCaret, documentContext string) (string, error)
}

// Position reports the document snapshot and caret offset at a point in
// time. The controller calls it when a debounce window fires and again
// when a response arrives, to discard stale results.
type Position func() (*textdoc.Snapshot, textdoc.Offset)

// Pending is an installed completion awaiting accept or invalidation.
type Pending struct {
	// Anchor is the caret offset the completion was produced at.
	Anchor textdoc.Offset

	// Text is the proposed continuation.
	Text string

	// Revision is the document revision the completion is valid for.
	Revision textdoc.Revision
}

// Controller owns the inline completion slot. All state transitions
// happen under its mutex; the only suspending operation is the backend
// fetch, which runs outside the lock and re-validates on return.
type Controller struct {
	mu      sync.Mutex
	state   State
	pending *Pending

	fetcher  Fetcher
	position Position
	logger   *logging.Logger
	bus      *event.Bus

	debounce     time.Duration
	fetchTimeout time.Duration
	budget       int
	shown        int
	contextBytes int

	// epoch invalidates outstanding timers and in-flight fetches.
	// Bumping it makes any callback captured under an older value a
	// no-op.
	epoch uint64
	timer *time.Timer

	ctx      context.Context
	cancel   context.CancelFunc
	disposed bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the caret-inactivity window before a fetch.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithBudget sets how many completions may be shown per session.
func WithBudget(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.budget = n
		}
	}
}

// WithFetchTimeout bounds each backend request.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithContextBytes sets how much surrounding document text accompanies
// a request.
func WithContextBytes(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.contextBytes = n
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l.WithComponent("completion")
		}
	}
}

// WithBus sets the event bus lifecycle events are published on.
func WithBus(b *event.Bus) Option {
	return func(c *Controller) {
		c.bus = b
	}
}

// New creates a controller. The position callback must be safe to call
// from the controller's timer goroutine.
func New(fetcher Fetcher, position Position, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		state:        StateIdle,
		fetcher:      fetcher,
		position:     position,
		logger:       logging.Null,
		debounce:     DefaultDebounce,
		fetchTimeout: DefaultFetchTimeout,
		budget:       DefaultBudget,
		contextBytes: DefaultContextBytes,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Shown returns how many completions have been accepted this session.
func (c *Controller) Shown() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shown
}

// Pending returns the installed completion, if one is showing.
func (c *Controller) Pending() (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateShowing || c.pending == nil {
		return Pending{}, false
	}
	return *c.pending, true
}

// Schedule starts or resets the debounce window. Callers invoke it when
// the selection is (or remains) a collapsed caret; a later call within
// the window supersedes the earlier one, so rapid typing never issues a
// fetch.
func (c *Controller) Schedule() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed || c.fetcher == nil || c.shown >= c.budget || c.state == StateShowing {
		return
	}

	c.epoch++
	epoch := c.epoch
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.fire(epoch)
	})
}

// Invalidate discards the pending completion and cancels any waiting
// debounce timer. It has no effect on the document.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

func (c *Controller) invalidateLocked() {
	c.epoch++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	wasShowing := c.state == StateShowing
	c.pending = nil
	c.state = StateIdle
	if wasShowing && c.bus != nil {
		c.bus.Publish(event.TopicCompletionCleared, nil)
	}
}

// Accept inserts the pending completion at its anchor as one document
// mutation. It refuses when nothing is showing, when the document moved
// past the completion's revision, or when the caret's node kind does
// not take text. It returns the transaction on success.
func (c *Controller) Accept(doc *textdoc.Document) (textdoc.Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateShowing || c.pending == nil {
		return textdoc.Transaction{}, false
	}
	p := *c.pending

	if doc.Revision() != p.Revision {
		c.invalidateLocked()
		return textdoc.Transaction{}, false
	}
	snap := doc.Snapshot()
	if !textdoc.IsTextInsertable(snap.NodeKindAt(p.Anchor)) {
		c.invalidateLocked()
		return textdoc.Transaction{}, false
	}

	tx, err := doc.Insert(p.Anchor, p.Text)
	if err != nil {
		c.logger.Warn("completion insert failed: %v", err)
		c.invalidateLocked()
		return textdoc.Transaction{}, false
	}

	c.shown++
	c.epoch++
	c.pending = nil
	c.state = StateIdle
	if c.bus != nil {
		c.bus.Publish(event.TopicCompletionAccepted, p)
	}
	c.logger.Debug("completion accepted at %d (%d/%d shown)", p.Anchor, c.shown, c.budget)
	return tx, true
}

// Dispose stops the controller. In-flight fetches are abandoned via
// context cancellation and the stale-epoch check.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	c.invalidateLocked()
	c.cancel()
}

// fire runs when a debounce window elapses. It issues the fetch outside
// the lock and installs the result only when both the epoch and the
// document position are unchanged. The position callback is never
// invoked while the lock is held, so callers may serve it from under
// their own locks.
func (c *Controller) fire(epoch uint64) {
	c.mu.Lock()
	if c.disposed || epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.state = StateFetching
	fetcher := c.fetcher
	timeout := c.fetchTimeout
	bytes := c.contextBytes
	c.mu.Unlock()

	snap, caret := c.position()
	if snap == nil || caret < 0 || caret > snap.Len() {
		c.settle(epoch)
		return
	}
	before, docContext := requestContext(snap, caret, bytes)

	ctx, cancel := context.WithTimeout(c.ctx, timeout)
	text, err := fetcher.RequestCompletion(ctx, before, docContext)
	cancel()

	// Re-read the position before taking the lock: the check must see
	// the document as it is now, not as it was at fetch time.
	cur, curCaret := c.position()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed || epoch != c.epoch {
		return
	}
	if c.state == StateFetching {
		c.state = StateIdle
	}
	if err != nil {
		// Transient failure: log and drop, the next debounce window
		// retries naturally.
		c.logger.Debug("completion fetch failed: %v", err)
		return
	}
	if text == "" {
		return
	}

	// Discard stale responses: the document or caret moved while the
	// request was in flight.
	if cur == nil || cur.Revision() != snap.Revision() || curCaret != caret {
		c.logger.Debug("completion discarded as stale (rev %d)", snap.Revision())
		return
	}

	c.pending = &Pending{Anchor: caret, Text: text, Revision: snap.Revision()}
	c.state = StateShowing
	if c.bus != nil {
		c.bus.Publish(event.TopicCompletionShown, *c.pending)
	}
	c.logger.Debug("completion showing at %d (%d bytes)", caret, len(text))
}

// settle returns the controller to idle when the given epoch is still
// current.
func (c *Controller) settle(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch == c.epoch && c.state == StateFetching {
		c.state = StateIdle
	}
}

// requestContext splits the snapshot into the text before the caret and
// a bounded window of surrounding document context.
func requestContext(snap *textdoc.Snapshot, caret textdoc.Offset, contextBytes int) (before, docContext string) {
	text := snap.Text()
	before = text[:caret]

	start := 0
	if len(text) > contextBytes {
		start = int(caret) - contextBytes/2
		if start < 0 {
			start = 0
		}
		end := start + contextBytes
		if end > len(text) {
			end = len(text)
			start = end - contextBytes
		}
		return before, text[start:end]
	}
	return before, text
}
