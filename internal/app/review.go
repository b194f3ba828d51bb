package app

import (
	"errors"
	"fmt"

	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/scheduler"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/session"
)

// ErrNoSession is returned by session operations when none is running.
var ErrNoSession = errors.New("no session in progress")

// StartLearn begins a learning session over never-practiced cards of the
// active list. session.ErrNoCards is returned when there is nothing new.
func (a *App) StartLearn(batchSize int, direction session.Direction) error {
	return a.startSession(batchSize, direction, scheduler.Learn)
}

// StartPractice begins a practice session over cards that are ready per the
// scheduler. session.ErrNoCards is returned when nothing is due or
// struggling.
func (a *App) StartPractice(batchSize int, direction session.Direction) error {
	return a.startSession(batchSize, direction, scheduler.Practice)
}

func (a *App) startSession(batchSize int, direction session.Direction, typ scheduler.SessionType) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := session.New(a.activeCards(), batchSize, direction, typ, a.rng, a.now())
	if err != nil {
		return err
	}
	a.session = s
	a.logger.Info("session started", "type", typ, "cards", s.Total())
	return nil
}

// InSession reports whether a session is running.
func (a *App) InSession() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session != nil
}

// Question returns the current prompt.
func (a *App) Question() (session.Question, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return session.Question{}, ErrNoSession
	}
	q, ok := a.session.Question()
	if !ok {
		return session.Question{}, ErrNoSession
	}
	return q, nil
}

// SubmitAnswer grades the selected option, persists the rescheduled card
// and advances. When the batch is exhausted the session ends and the
// summary callback fires.
func (a *App) SubmitAnswer(selected string) (session.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return session.Result{}, ErrNoSession
	}
	res, ok := a.session.Submit(selected, a.now())
	if !ok {
		return session.Result{}, ErrNoSession
	}
	a.save()

	if !a.session.Advance() {
		a.endSession()
	}
	return res, nil
}

// MarkCurrentKnown marks the active card known and resumes on the next
// remaining card, ending the session if none remain.
func (a *App) MarkCurrentKnown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return ErrNoSession
	}
	if a.session.MarkKnown() == nil {
		return ErrNoSession
	}
	a.save()
	a.notifyReadiness()

	if a.session.Done() {
		a.endSession()
	}
	return nil
}

// DeleteCurrentCard removes the active card from both the session and the
// store after confirmation, then resumes on the next remaining card or ends
// the session.
func (a *App) DeleteCurrentCard() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return ErrNoSession
	}
	card := a.session.Current()
	if card == nil {
		return ErrNoSession
	}
	if !a.confirm.Confirm(fmt.Sprintf("Are you sure you want to delete the card %q?", card.Word)) {
		return ErrCancelled
	}

	a.session.RemoveCurrent()
	a.removeCard(card.ID)
	a.save()
	a.notifyReadiness()

	if a.session.Done() {
		a.endSession()
	}
	return nil
}

// Summary is the result of a finished session.
type Summary struct {
	Type     scheduler.SessionType
	Correct  int
	Total    int
	Accuracy float64
}

// endSession fires the completion callback and discards the session.
// Caller holds the lock.
func (a *App) endSession() {
	s := a.session
	a.session = nil
	a.lastSummary = &Summary{
		Type:     s.Type(),
		Correct:  s.Correct(),
		Total:    s.Total(),
		Accuracy: s.Accuracy(),
	}
	if a.cb.SessionCompleted != nil {
		a.cb.SessionCompleted(s.Type(), s.Correct(), s.Total())
	}
	a.notifyReadiness()
	a.logger.Info("session complete",
		"type", s.Type(), "correct", s.Correct(), "total", s.Total())
}

// LastSummary returns the most recent completed session's result, or nil.
func (a *App) LastSummary() *Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSummary
}
