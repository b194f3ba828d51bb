package scheduler

import (
	"time"

	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/domain"
)

// SessionType distinguishes first-exposure learning from scheduled practice.
type SessionType string

const (
	Learn    SessionType = "learn"
	Practice SessionType = "practice"
)

// Intervals is the review ladder, in minutes, indexed by a card's
// ScheduleIndex. A correct practice answer climbs one rung, an incorrect
// one falls back one rung.
var Intervals = []time.Duration{
	60 * time.Minute,
	300 * time.Minute,
	720 * time.Minute,
	1440 * time.Minute,
	2880 * time.Minute,
	4320 * time.Minute,
	10080 * time.Minute,
	20160 * time.Minute,
	43200 * time.Minute,
	129600 * time.Minute,
	172800 * time.Minute,
	216000 * time.Minute,
	259200 * time.Minute,
}

// readinessThreshold is the success rate below which a card is always
// eligible for practice, even before its due time.
const readinessThreshold = 0.7

// ApplyOutcome records an answer on the card and reschedules it.
//
// A learn outcome marks the card practiced and moves it to box 1 whether or
// not the answer was correct: the first exposure always seeds the second
// box. A practice outcome moves one box up on a correct answer and one box
// down on an incorrect one, clamped to the ladder. In both cases the answer
// counters, the derived success rate, the last-asked time and the next due
// time are updated.
func ApplyOutcome(card *domain.Card, sessionType SessionType, correct bool, now time.Time) {
	card.TimesShown++
	if correct {
		card.CorrectCount++
	} else {
		card.WrongCount++
	}
	card.RecomputeSuccessRate()

	if sessionType == Learn {
		card.Practiced = true
		card.ScheduleIndex = 1
	} else if correct {
		if card.ScheduleIndex < len(Intervals)-1 {
			card.ScheduleIndex++
		}
	} else if card.ScheduleIndex > 0 {
		card.ScheduleIndex--
	}

	asked := now
	due := now.Add(Intervals[card.ScheduleIndex])
	card.LastAskedAt = &asked
	card.NextDueAt = &due
}

// ClampIndex forces a card's schedule index back onto the ladder.
// User-supplied backups can carry arbitrary values; every card must satisfy
// 0 <= ScheduleIndex < len(Intervals) before it reaches ApplyOutcome.
func ClampIndex(card *domain.Card) {
	if card.ScheduleIndex < 0 {
		card.ScheduleIndex = 0
	}
	if card.ScheduleIndex >= len(Intervals) {
		card.ScheduleIndex = len(Intervals) - 1
	}
}

// Ready reports whether a card is eligible for a practice session: it must
// have been practiced, not be marked known, and either be struggling
// (success rate below the threshold, which overrides the due-date gate) or
// have reached its due time. A card without a due time counts as due.
func Ready(card *domain.Card, now time.Time) bool {
	if !card.Practiced || card.Known {
		return false
	}
	if card.SuccessRate < readinessThreshold {
		return true
	}
	return card.NextDueAt == nil || !now.Before(*card.NextDueAt)
}

// NeverPracticed reports whether a card still awaits its first exposure.
func NeverPracticed(card *domain.Card) bool {
	return !card.Practiced && !card.Known
}

// Counts summarises a card set for the dashboard.
type Counts struct {
	Total          int
	NeverPracticed int
	Ready          int
	Known          int
}

// Count tallies the dashboard numbers for the given cards.
func Count(cards []*domain.Card, now time.Time) Counts {
	var c Counts
	c.Total = len(cards)
	for _, card := range cards {
		switch {
		case card.Known:
			c.Known++
		case !card.Practiced:
			c.NeverPracticed++
		}
		if Ready(card, now) {
			c.Ready++
		}
	}
	return c
}
