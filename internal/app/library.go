package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/csvio"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/domain"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/parser"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/persist"
)

// ErrEmptyInput is returned when a required field is blank.
var ErrEmptyInput = errors.New("word and meaning are required")

// AddCard adds a single card to the active list. If the word already exists
// there, its meaning is updated in place instead. Reports whether a new
// card was created.
func (a *App) AddCard(word, meaning string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	word = strings.TrimSpace(word)
	meaning = strings.TrimSpace(meaning)
	if word == "" || meaning == "" {
		return false, ErrEmptyInput
	}

	created := a.upsertCard(word, meaning)
	a.save()
	a.notifyReadiness()
	return created, nil
}

// upsertCard applies the shared single-add/bulk-import rule. Caller holds
// the lock and saves.
func (a *App) upsertCard(word, meaning string) bool {
	for _, c := range a.col.Cards {
		if c.ListID == a.col.CurrentListID && c.Word == word {
			c.Meaning = meaning
			return false
		}
	}
	a.col.Cards = append(a.col.Cards, domain.NewCard(word, meaning, a.col.CurrentListID))
	return true
}

// ImportBulk parses pasted or uploaded word/meaning lines into the active
// list. Malformed lines are skipped, never fatal. Returns how many cards
// were created and how many existing ones were updated.
func (a *App) ImportBulk(content string) (imported, updated int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, e := range parser.ParseString(content) {
		if a.upsertCard(e.Word, e.Meaning) {
			imported++
		} else {
			updated++
		}
	}
	a.save()
	a.notifyReadiness()
	a.logger.Info("bulk import complete", "imported", imported, "updated", updated)
	return imported, updated
}

// CreateList creates a named list and switches to it.
func (a *App) CreateList(name string) (*domain.List, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("list name is required")
	}

	list := domain.NewList(name)
	a.col.Lists = append(a.col.Lists, list)
	a.col.CurrentListID = list.ID
	a.save()
	a.notifyReadiness()
	return list, nil
}

// SwitchList makes the given list active.
func (a *App) SwitchList(listID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.col.FindList(listID) == nil {
		return ErrNoSuchList
	}
	a.col.CurrentListID = listID
	a.save()
	a.notifyReadiness()
	return nil
}

// DeleteList removes a list and all its cards after confirmation. The
// sequence is transactional at the application level only: the list
// removal, the card removal and any pointer reassignment are each
// independently persisted, so a crash mid-way can leave orphaned cards
// behind (inaccessible, never corrupt) but never a dangling pointer that
// survives the next load.
func (a *App) DeleteList(listID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	list := a.col.FindList(listID)
	if list == nil {
		return ErrNoSuchList
	}
	prompt := fmt.Sprintf("Delete the list %q and ALL its cards? This action cannot be undone.", list.Name)
	if !a.confirm.Confirm(prompt) {
		return ErrCancelled
	}

	lists := a.col.Lists[:0]
	for _, l := range a.col.Lists {
		if l.ID != listID {
			lists = append(lists, l)
		}
	}
	a.col.Lists = lists
	a.save()

	cards := a.col.Cards[:0]
	for _, c := range a.col.Cards {
		if c.ListID != listID {
			cards = append(cards, c)
		}
	}
	a.col.Cards = cards
	a.save()

	if a.col.CurrentListID == listID {
		a.ensureCurrentList()
		a.save()
	}
	a.notifyReadiness()
	return nil
}

// ToggleKnown flips a card's known flag without touching its schedule.
func (a *App) ToggleKnown(cardID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range a.col.Cards {
		if c.ID == cardID {
			c.Known = !c.Known
			a.save()
			a.notifyReadiness()
			return nil
		}
	}
	return ErrNoSuchCard
}

// DeleteCard removes a card from the store after confirmation.
func (a *App) DeleteCard(cardID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	card := a.findCard(cardID)
	if card == nil {
		return ErrNoSuchCard
	}
	if !a.confirm.Confirm(fmt.Sprintf("Are you sure you want to delete the card %q?", card.Word)) {
		return ErrCancelled
	}
	a.removeCard(cardID)
	a.save()
	a.notifyReadiness()
	return nil
}

func (a *App) findCard(cardID string) *domain.Card {
	for _, c := range a.col.Cards {
		if c.ID == cardID {
			return c
		}
	}
	return nil
}

func (a *App) removeCard(cardID string) {
	cards := a.col.Cards[:0]
	for _, c := range a.col.Cards {
		if c.ID != cardID {
			cards = append(cards, c)
		}
	}
	a.col.Cards = cards
}

// WipeCards deletes every card in the active list after confirmation.
func (a *App) WipeCards() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.confirm.Confirm("Are you sure you want to delete all cards in this list? This action cannot be undone.") {
		return ErrCancelled
	}
	cards := a.col.Cards[:0]
	for _, c := range a.col.Cards {
		if c.ListID != a.col.CurrentListID {
			cards = append(cards, c)
		}
	}
	a.col.Cards = cards
	a.save()
	a.notifyReadiness()
	return nil
}

// ExportCSV renders the whole collection in the 16-column backup format.
func (a *App) ExportCSV() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return csvio.Export(a.col)
}

// ImportCSV replaces the whole collection with a parsed CSV backup after
// confirmation.
func (a *App) ImportCSV(r io.Reader) error {
	col, err := csvio.Import(r)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.confirm.Confirm("Importing metadata will replace your current data. Continue?") {
		return ErrCancelled
	}
	a.col = col
	a.ensureCurrentList()
	a.save()
	a.notifyReadiness()
	return nil
}

// BindFile adopts path as the auto-save target and writes the current
// collection to it immediately.
func (a *App) BindFile(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.coord.BindFile(path, a.col)
}

// OpenFromFile loads a snapshot file, and after confirmation replaces the
// current data with it and adopts the file for auto-save. Declining leaves
// no state change, not even the binding.
func (a *App) OpenFromFile(path string) error {
	snap, err := persist.ReadSnapshot(path)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.confirm.Confirm("Load data from this file and replace your current data?") {
		return ErrCancelled
	}
	a.col = snap.Collection()
	a.ensureCurrentList()
	if err := a.coord.BindFile(path, a.col); err != nil {
		a.logger.Warn("could not bind opened file for auto-save", "path", path, "error", err)
	}
	a.save()
	a.notifyReadiness()
	return nil
}
