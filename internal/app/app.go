// Package app wires the document, the suggestion engine, and the
// terminal screen into an interactive editor session.
package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/inkstorm/internal/ai"
	"github.com/dshills/inkstorm/internal/config"
	"github.com/dshills/inkstorm/internal/event"
	"github.com/dshills/inkstorm/internal/logging"
	"github.com/dshills/inkstorm/internal/overlay"
	"github.com/dshills/inkstorm/internal/suggest"
	"github.com/dshills/inkstorm/internal/suggest/completion"
	"github.com/dshills/inkstorm/internal/textdoc"
)

// rewriteMessage is the instruction sent with the demo rewrite command.
const rewriteMessage = "Rewrite this text more clearly, keeping its meaning."

// Options configures the application from the command line.
type Options struct {
	// ConfigPath is the configuration file. Empty uses defaults.
	ConfigPath string

	// FilePath is the document to open. Empty opens an empty buffer.
	FilePath string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// Debug forces debug logging.
	Debug bool
}

// App is one editor session.
type App struct {
	opts    Options
	cfg     config.Config
	logger  *logging.Logger
	logFile *os.File

	screen  tcell.Screen
	doc     *textdoc.Document
	engine  *suggest.Engine
	bus     *event.Bus
	watcher *config.Watcher

	caret  textdoc.Offset
	scroll int

	statusMu sync.Mutex
	status   string

	shutdownOnce sync.Once
}

// New builds the application: configuration, logging, document, AI
// backend, and the suggestion engine.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a := &App{opts: opts, cfg: cfg}
	a.logger = a.buildLogger()

	content := ""
	if opts.FilePath != "" {
		data, err := os.ReadFile(opts.FilePath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("opening %s: %w", opts.FilePath, err)
		}
		content = string(data)
	}
	a.doc = textdoc.New(content)
	a.caret = a.doc.Len()

	a.bus = event.NewBus()
	a.bus.Subscribe("suggest.*", func(event.Event) { a.wake() })

	engineOpts := []suggest.Option{
		suggest.WithBus(a.bus),
		suggest.WithLogger(a.logger),
		suggest.WithOverlayConfig(overlayConfig(cfg)),
		suggest.WithRequestTimeout(cfg.RequestTimeout()),
		suggest.WithCompletionOptions(
			completion.WithDebounce(cfg.Debounce()),
			completion.WithBudget(cfg.Completion.Budget),
			completion.WithContextBytes(cfg.Completion.ContextBytes),
		),
	}

	if cfg.AI.Provider != "" {
		provider, err := ai.New(ai.Options{
			Provider: cfg.AI.Provider,
			Model:    cfg.AI.Model,
			APIKey:   cfg.APIKey(),
			Logger:   a.logger,
		})
		if err != nil {
			a.logger.Warn("AI backend unavailable: %v", err)
		} else {
			engineOpts = append(engineOpts, suggest.WithProvider(provider))
		}
	}

	if cfg.Filter.Script != "" {
		filter, err := suggest.LoadFilter(cfg.Filter.Script)
		if err != nil {
			a.logger.Warn("suggestion filter disabled: %v", err)
		} else {
			engineOpts = append(engineOpts, suggest.WithFilter(filter))
		}
	}

	a.engine = suggest.New(a.doc, engineOpts...)
	a.engine.SetCaret(a.caret)

	if opts.ConfigPath != "" {
		w, err := config.Watch(opts.ConfigPath, a.onConfigReload, config.WithWatchLogger(a.logger))
		if err != nil {
			a.logger.Warn("config watch disabled: %v", err)
		} else {
			a.watcher = w
		}
	}

	return a, nil
}

// buildLogger sets up diagnostics. Without a log file everything is
// discarded: writing to stderr would corrupt the terminal screen.
func (a *App) buildLogger() *logging.Logger {
	if a.cfg.Log.File == "" {
		return logging.Null
	}
	f, err := os.OpenFile(a.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return logging.Null
	}
	a.logFile = f

	level := logging.ParseLevel(a.cfg.Log.Level)
	if a.opts.LogLevel != "" {
		level = logging.ParseLevel(a.opts.LogLevel)
	}
	if a.opts.Debug {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{Level: level, Output: f, Prefix: "inkstorm"})
}

// Run enters the event loop. It returns ErrQuit on a normal exit.
func (a *App) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	a.screen = screen

	for {
		a.render()
		ev := screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if err := a.handleKey(ev); err != nil {
				return err
			}
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventInterrupt:
			// Posted by wake; the next loop iteration re-renders.
		}
	}
}

// Shutdown releases the screen and all engine resources. Safe to call
// more than once and from any goroutine.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		if a.watcher != nil {
			_ = a.watcher.Close()
		}
		a.engine.Dispose()
		if a.screen != nil {
			a.screen.Fini()
		}
		if a.logFile != nil {
			_ = a.logFile.Close()
		}
	})
}

// wake interrupts the poll loop so engine events repaint promptly.
func (a *App) wake() {
	if a.screen != nil {
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

func (a *App) handleKey(ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlQ:
		return ErrQuit
	case tcell.KeyTab:
		a.acceptPending()
	case tcell.KeyEscape:
		a.engine.ClearDiffs()
		a.engine.Completion().Invalidate()
		a.setStatus("")
	case tcell.KeyCtrlR:
		a.requestRewrite()
	case tcell.KeyEnter:
		a.insertText("\n")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.deleteBack()
	case tcell.KeyLeft:
		a.moveCaret(-1)
	case tcell.KeyRight:
		a.moveCaret(1)
	case tcell.KeyRune:
		a.insertText(string(ev.Rune()))
	}
	return nil
}

// acceptPending resolves Tab: first a pending diff near the caret, then
// a shown completion, otherwise a literal tab.
func (a *App) acceptPending() {
	ok, err := a.engine.AcceptDiff(a.caret)
	if err != nil {
		a.setStatus(err.Error())
		return
	}
	if ok {
		if a.caret > a.doc.Len() {
			a.caret = a.doc.Len()
		}
		a.engine.SetCaret(a.caret)
		a.setStatus("suggestion accepted")
		return
	}

	if tx, ok := a.engine.Completion().Accept(a.doc); ok {
		a.engine.ApplyTransaction(tx)
		a.caret = tx.Change.NewRange.End
		a.engine.SetCaret(a.caret)
		return
	}

	a.insertText("\t")
}

func (a *App) insertText(s string) {
	tx, err := a.doc.Insert(a.caret, s)
	if err != nil {
		a.logger.Warn("insert failed: %v", err)
		return
	}
	a.engine.ApplyTransaction(tx)
	a.caret += textdoc.Offset(len(s))
	a.engine.SetCaret(a.caret)
	a.scheduleCompletion()
}

func (a *App) deleteBack() {
	if a.caret == 0 {
		return
	}
	text := a.doc.Text()
	_, size := utf8.DecodeLastRuneInString(text[:a.caret])
	r := textdoc.Range{Start: a.caret - textdoc.Offset(size), End: a.caret}
	tx, err := a.doc.Delete(r)
	if err != nil {
		a.logger.Warn("delete failed: %v", err)
		return
	}
	a.engine.ApplyTransaction(tx)
	a.caret = r.Start
	a.engine.SetCaret(a.caret)
	a.scheduleCompletion()
}

func (a *App) moveCaret(dir int) {
	text := a.doc.Text()
	if dir < 0 && a.caret > 0 {
		_, size := utf8.DecodeLastRuneInString(text[:a.caret])
		a.caret -= textdoc.Offset(size)
	}
	if dir > 0 && a.caret < a.doc.Len() {
		_, size := utf8.DecodeRuneInString(text[a.caret:])
		a.caret += textdoc.Offset(size)
	}
	a.engine.SetCaret(a.caret)
	a.engine.Completion().Invalidate()
	a.scheduleCompletion()
}

func (a *App) scheduleCompletion() {
	if a.cfg.Completion.Enabled {
		a.engine.Completion().Schedule()
	}
}

// requestRewrite sends the caret's line to the backend for rewriting.
// The request runs off the event loop; the store-changed event repaints
// when results land.
func (a *App) requestRewrite() {
	snap := a.doc.Snapshot()
	line := snap.LineAt(a.caret)
	r := snap.LineRange(line)
	if r.IsEmpty() {
		a.setStatus("nothing to rewrite on this line")
		return
	}
	a.setStatus("requesting rewrite...")

	go func() {
		if err := a.engine.RequestModifications(context.Background(), rewriteMessage, []textdoc.Range{r}); err != nil {
			a.setStatus(fmt.Sprintf("rewrite failed: %v", err))
		} else {
			a.setStatus("rewrite suggestions ready (Tab to accept, Esc to clear)")
		}
		a.wake()
	}()
}

// onConfigReload applies the live-reloadable settings: log level and
// overlay presentation.
func (a *App) onConfigReload(cfg config.Config) {
	a.cfg.Overlay = cfg.Overlay
	a.cfg.Completion.Enabled = cfg.Completion.Enabled
	a.engine.SetOverlayConfig(overlayConfig(cfg))
	if a.logFile != nil {
		a.logger.SetLevel(logging.ParseLevel(cfg.Log.Level))
	}
	a.wake()
}

func (a *App) setStatus(s string) {
	a.statusMu.Lock()
	a.status = s
	a.statusMu.Unlock()
}

func (a *App) getStatus() string {
	a.statusMu.Lock()
	defer a.statusMu.Unlock()
	return a.status
}

// overlayConfig translates configuration toggles into the projector's
// config, keeping the default styles.
func overlayConfig(cfg config.Config) overlay.Config {
	oc := overlay.DefaultConfig()
	oc.ShowGhostText = cfg.Overlay.ShowGhostText
	oc.ShowDiffPreview = cfg.Overlay.ShowDiffPreview
	return oc
}
