package app

import (
	"sort"
	"time"

	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/domain"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/scheduler"
)

// Filter selects a subset of the active list for the statistics table.
type Filter string

const (
	FilterAvailableNow   Filter = "availableNow"
	FilterNeverPracticed Filter = "neverPracticed"
	FilterKnownWords     Filter = "knownWords"
	FilterAll            Filter = "all"
)

// Statistics returns the active list's cards matching the filter, sorted by
// the given column. An unknown column leaves the order as stored; an
// unknown filter behaves like FilterAll.
func (a *App) Statistics(filter Filter, sortBy string, descending bool) []*domain.Card {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	var out []*domain.Card
	for _, c := range a.activeCards() {
		switch filter {
		case FilterAvailableNow:
			if !scheduler.Ready(c, now) {
				continue
			}
		case FilterNeverPracticed:
			if !scheduler.NeverPracticed(c) {
				continue
			}
		case FilterKnownWords:
			if !c.Known {
				continue
			}
		}
		out = append(out, c)
	}

	sortCards(out, sortBy, descending)
	return out
}

func sortCards(cards []*domain.Card, sortBy string, descending bool) {
	var less func(a, b *domain.Card) bool
	switch sortBy {
	case "word":
		less = func(a, b *domain.Card) bool { return a.Word < b.Word }
	case "meaning":
		less = func(a, b *domain.Card) bool { return a.Meaning < b.Meaning }
	case "practiced":
		less = func(a, b *domain.Card) bool { return !a.Practiced && b.Practiced }
	case "successRate":
		less = func(a, b *domain.Card) bool { return a.SuccessRate < b.SuccessRate }
	case "nextDueAt":
		less = func(a, b *domain.Card) bool { return dueTime(a).Before(dueTime(b)) }
	case "known":
		less = func(a, b *domain.Card) bool { return !a.Known && b.Known }
	default:
		return
	}
	sort.SliceStable(cards, func(i, j int) bool {
		if descending {
			return less(cards[j], cards[i])
		}
		return less(cards[i], cards[j])
	})
}

// dueTime sorts unscheduled cards before everything else, matching a zero
// timestamp.
func dueTime(c *domain.Card) time.Time {
	if c.NextDueAt == nil {
		return time.Time{}
	}
	return *c.NextDueAt
}
