// Package app owns the application state: the loaded collection, the
// active-list pointer and the running session. Every state-changing
// operation ends by handing the full collection to the persistence
// coordinator. Operations are serialized; there is exactly one writer at
// any time.
package app

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/domain"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/persist"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/scheduler"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/session"
)

// ErrCancelled is returned when the user declines a confirmation prompt.
// The operation leaves no state change behind.
var ErrCancelled = errors.New("cancelled by user")

// ErrNoSuchList is returned for operations naming an unknown list.
var ErrNoSuchList = errors.New("no such list")

// ErrNoSuchCard is returned for operations naming an unknown card.
var ErrNoSuchCard = errors.New("no such card")

// Confirmer gates destructive or replacing operations behind an explicit
// user confirmation.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// Callbacks are the outward collaborator interfaces: the dashboard, the
// summary view and the bound-file status chrome. Nil funcs are skipped.
type Callbacks struct {
	ReadinessChanged         func(counts scheduler.Counts)
	SessionCompleted         func(typ scheduler.SessionType, correct, total int)
	FileBindingStatusChanged func(bound bool)
}

// Options configures an App. Zero values get sensible defaults; Confirm
// defaults to declining everything so destructive operations are inert
// until a real port is wired.
type Options struct {
	Confirm   Confirmer
	Callbacks Callbacks
	Rand      *rand.Rand
	Now       func() time.Time
	Logger    *slog.Logger
}

// App is the application context.
type App struct {
	mu      sync.Mutex
	coord   *persist.Coordinator
	logger  *slog.Logger
	confirm Confirmer
	cb      Callbacks
	rng     *rand.Rand
	now     func() time.Time

	col         domain.Collection
	session     *session.Session
	lastSummary *Summary
}

// New wires an App over the persistence coordinator. Call Load before use.
func New(coord *persist.Coordinator, opts Options) *App {
	a := &App{
		coord:   coord,
		logger:  opts.Logger,
		confirm: opts.Confirm,
		cb:      opts.Callbacks,
		rng:     opts.Rand,
		now:     opts.Now,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.confirm == nil {
		a.confirm = ConfirmerFunc(func(string) bool { return false })
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if a.now == nil {
		a.now = func() time.Time { return time.Now().UTC() }
	}
	coord.SetBindingStatusFunc(func(bound bool) {
		if a.cb.FileBindingStatusChanged != nil {
			a.cb.FileBindingStatusChanged(bound)
		}
	})
	return a
}

// Load restores the bound-file handle, reads the collection through the
// tier fallback and guarantees that at least one list exists and that the
// active-list pointer names an existing list.
func (a *App) Load() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.coord.RestoreHandle()

	col, err := a.coord.LoadCollection()
	if err != nil {
		return err
	}
	a.col = col

	if a.ensureCurrentList() {
		a.save()
	}
	a.notifyReadiness()
	return nil
}

// ensureCurrentList enforces the at-least-one-list guarantee and repairs a
// dangling pointer. Reports whether it changed anything.
func (a *App) ensureCurrentList() bool {
	changed := false
	if len(a.col.Lists) == 0 {
		a.col.Lists = []*domain.List{domain.NewList(domain.DefaultListName)}
		changed = true
	}
	if a.col.FindList(a.col.CurrentListID) == nil {
		a.col.CurrentListID = a.col.Lists[0].ID
		changed = true
	}
	return changed
}

// save pushes the full collection through the coordinator. Storage failures
// beyond the primary tier are the coordinator's to log; a primary failure
// is logged here and not surfaced, the next mutation simply retries with
// newer state.
func (a *App) save() {
	if err := a.coord.SaveCollection(a.col); err != nil {
		a.logger.Warn("save failed", "error", err)
	}
}

func (a *App) notifyReadiness() {
	if a.cb.ReadinessChanged != nil {
		a.cb.ReadinessChanged(scheduler.Count(a.activeCards(), a.now()))
	}
}

func (a *App) activeCards() []*domain.Card {
	return a.col.CardsForList(a.col.CurrentListID)
}

// Cards returns the active list's cards.
func (a *App) Cards() []*domain.Card {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeCards()
}

// Lists returns a snapshot of every list. The internal slice is filtered
// in place on deletion, so callers must not see its backing array.
func (a *App) Lists() []*domain.List {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*domain.List(nil), a.col.Lists...)
}

// CurrentList returns the active list.
func (a *App) CurrentList() *domain.List {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.col.FindList(a.col.CurrentListID)
}

// Counts returns the dashboard numbers for the active list.
func (a *App) Counts() scheduler.Counts {
	a.mu.Lock()
	defer a.mu.Unlock()
	return scheduler.Count(a.activeCards(), a.now())
}

// CardCount counts a list's cards over the whole collection, not just the
// loaded view.
func (a *App) CardCount(listID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.col.CardsForList(listID))
}

// FileBound reports whether an auto-save file is bound.
func (a *App) FileBound() bool {
	return a.coord.Bound()
}

// Close flushes pending mirror writes.
func (a *App) Close() {
	a.coord.Close()
}
