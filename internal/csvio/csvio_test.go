package csvio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/domain"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/scheduler"
)

func TestExportImportRoundTrip(t *testing.T) {
	spanish := domain.NewList("Spanish")
	idioms := domain.NewList(`Idioms, "quoted" ones`)

	due := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	card := domain.NewCard("ser", "to be, to exist", spanish.ID)
	card.Practiced = true
	card.TimesShown = 4
	card.CorrectCount = 3
	card.WrongCount = 1
	card.RecomputeSuccessRate()
	card.ScheduleIndex = 2
	card.LastAskedAt = &due
	card.NextDueAt = &due

	fresh := domain.NewCard("echar de menos", "to miss \"someone\"", idioms.ID)

	col := domain.Collection{
		Lists:         []*domain.List{spanish, idioms},
		Cards:         []*domain.Card{card, fresh},
		CurrentListID: idioms.ID,
	}

	data, err := Export(col)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 5, "header + 2 list rows + 2 card rows")
	assert.True(t, strings.HasPrefix(lines[0], "type,id,word,meaning,practiced,known"), "fixed header row")

	got, err := Import(bytes.NewReader(data))
	require.NoError(t, err)

	require.Len(t, got.Lists, 2)
	assert.Equal(t, idioms.Name, got.Lists[1].Name, "quoted fields survive")
	assert.Equal(t, idioms.ID, got.CurrentListID, "current-list pointer is reconstructed from the listId column")

	require.Len(t, got.Cards, 2)
	assert.Equal(t, card.Word, got.Cards[0].Word)
	assert.Equal(t, card.Meaning, got.Cards[0].Meaning)
	assert.Equal(t, card.SuccessRate, got.Cards[0].SuccessRate)
	assert.Equal(t, card.ScheduleIndex, got.Cards[0].ScheduleIndex)
	require.NotNil(t, got.Cards[0].NextDueAt)
	assert.True(t, got.Cards[0].NextDueAt.Equal(due))
	assert.Nil(t, got.Cards[1].NextDueAt, "unscheduled cards stay unscheduled")
}

func TestImportDefaultsAndDispatch(t *testing.T) {
	csv := strings.Join([]string{
		"type,id,word,meaning,practiced,known,timesShown,correctCount,wrongCount,successRate,lastAskedAt,scheduleIndex,nextDueAt,listId,listName,createdAt",
		`list,l1,,,,,,,,,,,,l1,Default List,2026-01-01T00:00:00Z`,
		`card,c1,hola,hello,maybe,nope,abc,-3,,,garbage,,,l1,Default List,`,
		`note,x1,ignored row`,
		`card,c2,,missing word is invalid,,,,,,,,,,l1,,`,
	}, "\n")

	got, err := Import(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, got.Lists, 1)
	assert.Equal(t, "l1", got.CurrentListID)

	require.Len(t, got.Cards, 1, "unknown types and invalid rows are skipped")
	c := got.Cards[0]
	assert.False(t, c.Practiced, "malformed booleans default to false")
	assert.False(t, c.Known)
	assert.Zero(t, c.TimesShown, "malformed numerics default to 0")
	assert.Zero(t, c.CorrectCount, "negative counters default to 0")
	assert.Zero(t, c.SuccessRate)
	assert.Nil(t, c.LastAskedAt)
	assert.Zero(t, c.ScheduleIndex)
}

func TestImportClampsScheduleIndex(t *testing.T) {
	csv := strings.Join([]string{
		"type,id,word,meaning,practiced,known,timesShown,correctCount,wrongCount,successRate,lastAskedAt,scheduleIndex,nextDueAt,listId,listName,createdAt",
		`list,l1,,,,,,,,,,,,l1,Default List,2026-01-01T00:00:00Z`,
		`card,c1,hola,hello,true,false,5,2,3,,,50,,l1,Default List,`,
	}, "\n")

	got, err := Import(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, got.Cards, 1)

	c := got.Cards[0]
	assert.Equal(t, len(scheduler.Intervals)-1, c.ScheduleIndex,
		"an out-of-range index from a hand-edited backup is clamped onto the ladder")

	// The card must be safe to practice immediately after import.
	scheduler.ApplyOutcome(c, scheduler.Practice, true, time.Now().UTC())
	assert.Equal(t, len(scheduler.Intervals)-1, c.ScheduleIndex)
}

func TestExportQuoting(t *testing.T) {
	list := domain.NewList("L")
	card := domain.NewCard("a,b", "says \"hi\"\nthere", list.ID)
	col := domain.Collection{
		Lists:         []*domain.List{list},
		Cards:         []*domain.Card{card},
		CurrentListID: list.ID,
	}

	data, err := Export(col)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"a,b"`, "fields with commas are quoted")
	assert.Contains(t, out, `"says ""hi""`, "internal quotes are doubled")

	got, err := Import(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, got.Cards, 1)
	assert.Equal(t, card.Word, got.Cards[0].Word)
	assert.Equal(t, card.Meaning, got.Cards[0].Meaning)
}
