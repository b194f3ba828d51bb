// Package session runs a single multiple-choice review session over a
// batch of cards selected from the active list.
package session

import (
	"errors"
	"math/rand"
	"time"

	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/domain"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/scheduler"
)

// ErrNoCards is returned when the candidate pool for the requested session
// type is empty.
var ErrNoCards = errors.New("no cards available for this session")

// Direction controls which side of the card is shown as the question.
type Direction string

const (
	WordToMeaning Direction = "wordToMeaning"
	MeaningToWord Direction = "meaningToWord"
)

const maxDistractors = 3

// Session is a transient run over a shuffled batch of cards. It mutates the
// cards it holds (they are shared with the card store) and is discarded when
// it ends; it is never persisted itself.
type Session struct {
	cards     []*domain.Card
	deck      []*domain.Card
	typ       scheduler.SessionType
	direction Direction
	index     int
	correct   int
	rng       *rand.Rand
}

// New selects a batch for the given session type from deck, which must hold
// the active list's cards. Learn sessions draw from cards never practiced;
// practice sessions draw from cards ready per the scheduler. The pool is
// shuffled with the supplied source and truncated to batchSize.
func New(deck []*domain.Card, batchSize int, direction Direction, typ scheduler.SessionType, rng *rand.Rand, now time.Time) (*Session, error) {
	var pool []*domain.Card
	for _, c := range deck {
		switch typ {
		case scheduler.Learn:
			if scheduler.NeverPracticed(c) {
				pool = append(pool, c)
			}
		case scheduler.Practice:
			if scheduler.Ready(c, now) {
				pool = append(pool, c)
			}
		}
	}
	if len(pool) == 0 {
		return nil, ErrNoCards
	}

	shuffleCards(pool, rng)
	if batchSize > 0 && len(pool) > batchSize {
		pool = pool[:batchSize]
	}

	return &Session{
		cards:     pool,
		deck:      deck,
		typ:       typ,
		direction: direction,
		rng:       rng,
	}, nil
}

// Question is one rendered multiple-choice prompt.
type Question struct {
	CardID  string
	Prompt  string
	Answer  string
	Options []string
	Number  int
	Total   int
}

// Current returns the card the session is positioned on, or nil when the
// session is done.
func (s *Session) Current() *domain.Card {
	if s.Done() {
		return nil
	}
	return s.cards[s.index]
}

// Question builds the prompt for the current card: the asked side, plus a
// shuffled option set of the correct answer and up to three distractors
// drawn from non-known cards elsewhere in the deck. With a small deck the
// option set simply shrinks; a single option is valid.
func (s *Session) Question() (Question, bool) {
	card := s.Current()
	if card == nil {
		return Question{}, false
	}

	prompt, answer := card.Word, card.Meaning
	if s.direction == MeaningToWord {
		prompt, answer = card.Meaning, card.Word
	}

	options := append(s.distractors(card), answer)
	shuffleStrings(options, s.rng)

	return Question{
		CardID:  card.ID,
		Prompt:  prompt,
		Answer:  answer,
		Options: options,
		Number:  s.index + 1,
		Total:   len(s.cards),
	}, true
}

func (s *Session) distractors(target *domain.Card) []string {
	var others []*domain.Card
	for _, c := range s.deck {
		if c.ID != target.ID && !c.Known {
			others = append(others, c)
		}
	}
	shuffleCards(others, s.rng)
	if len(others) > maxDistractors {
		others = others[:maxDistractors]
	}

	opts := make([]string, 0, len(others)+1)
	for _, c := range others {
		if s.direction == MeaningToWord {
			opts = append(opts, c.Word)
		} else {
			opts = append(opts, c.Meaning)
		}
	}
	return opts
}

// Result reports a graded answer.
type Result struct {
	Correct bool
	Answer  string
}

// Submit grades the selected option against the current card and applies
// the outcome to the card's schedule. It does not advance; the caller
// persists the mutation first and then calls Advance.
func (s *Session) Submit(selected string, now time.Time) (Result, bool) {
	card := s.Current()
	if card == nil {
		return Result{}, false
	}

	answer := card.Meaning
	if s.direction == MeaningToWord {
		answer = card.Word
	}
	correct := selected == answer

	scheduler.ApplyOutcome(card, s.typ, correct, now)
	if correct {
		s.correct++
	}
	return Result{Correct: correct, Answer: answer}, true
}

// Advance moves to the next card and reports whether one remains.
func (s *Session) Advance() bool {
	if !s.Done() {
		s.index++
	}
	return !s.Done()
}

// MarkKnown marks the current card known, removing it from every readiness
// aggregate without touching its schedule, and steps past it. The marked
// card is returned so the caller can persist.
func (s *Session) MarkKnown() *domain.Card {
	card := s.Current()
	if card == nil {
		return nil
	}
	card.Known = true
	s.index++
	return card
}

// RemoveCurrent drops the current card from the session, for example after
// it is deleted from the store, and returns it. The position then points at
// the next remaining card; when none remain the session is done.
func (s *Session) RemoveCurrent() *domain.Card {
	card := s.Current()
	if card == nil {
		return nil
	}
	s.cards = append(s.cards[:s.index], s.cards[s.index+1:]...)
	return card
}

// Done reports whether every card in the batch has been dealt with.
func (s *Session) Done() bool {
	return s.index >= len(s.cards)
}

// Type returns the session type.
func (s *Session) Type() scheduler.SessionType {
	return s.typ
}

// Correct returns how many answers were graded correct so far.
func (s *Session) Correct() int {
	return s.correct
}

// Total returns the batch size.
func (s *Session) Total() int {
	return len(s.cards)
}

// Accuracy is correct answers over batch size, 0 for an empty batch.
func (s *Session) Accuracy() float64 {
	if len(s.cards) == 0 {
		return 0
	}
	return float64(s.correct) / float64(len(s.cards))
}

func shuffleCards(cards []*domain.Card, rng *rand.Rand) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

func shuffleStrings(ss []string, rng *rand.Rand) {
	rng.Shuffle(len(ss), func(i, j int) {
		ss[i], ss[j] = ss[j], ss[i]
	})
}
