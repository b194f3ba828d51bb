package domain

import (
	"time"

	"github.com/google/uuid"
)

// Card is a single word/meaning pair together with its review statistics
// and scheduling state. All timestamps are UTC; LastAskedAt and NextDueAt
// are nil until the card has been asked at least once.
type Card struct {
	ID            string     `json:"id"`
	Word          string     `json:"word" validate:"required"`
	Meaning       string     `json:"meaning" validate:"required"`
	ListID        string     `json:"listId" validate:"required"`
	Practiced     bool       `json:"practiced"`
	Known         bool       `json:"known"`
	TimesShown    int        `json:"timesShown" validate:"min=0"`
	CorrectCount  int        `json:"correctCount" validate:"min=0"`
	WrongCount    int        `json:"wrongCount" validate:"min=0"`
	SuccessRate   float64    `json:"successRate"`
	LastAskedAt   *time.Time `json:"lastAskedAt"`
	ScheduleIndex int        `json:"scheduleIndex" validate:"min=0"`
	NextDueAt     *time.Time `json:"nextDueAt"`
}

// NewCard creates an unpracticed card in the given list with all counters
// zeroed and no schedule.
func NewCard(word, meaning, listID string) *Card {
	return &Card{
		ID:      uuid.NewString(),
		Word:    word,
		Meaning: meaning,
		ListID:  listID,
	}
}

// RecomputeSuccessRate rederives SuccessRate from the answer counters.
// It must be called whenever CorrectCount or WrongCount change; the rate
// is never stored independently of them.
func (c *Card) RecomputeSuccessRate() {
	attempts := c.CorrectCount + c.WrongCount
	if attempts == 0 {
		c.SuccessRate = 0
		return
	}
	c.SuccessRate = float64(c.CorrectCount) / float64(attempts)
}

// List is a named group of cards.
type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewList creates a list with a fresh ID.
func NewList(name string) *List {
	return &List{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// DefaultListName is used when the system has to guarantee that at least
// one list exists.
const DefaultListName = "Default List"
