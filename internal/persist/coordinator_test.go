package persist

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/domain"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/scheduler"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/store"
)

func testCollection() domain.Collection {
	list := domain.NewList("Spanish")
	due := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	asked := due.Add(-300 * time.Minute)

	practiced := domain.NewCard("ser", "to be", list.ID)
	practiced.Practiced = true
	practiced.TimesShown = 1
	practiced.CorrectCount = 1
	practiced.RecomputeSuccessRate()
	practiced.ScheduleIndex = 1
	practiced.LastAskedAt = &asked
	practiced.NextDueAt = &due

	fresh := domain.NewCard("ir", "to go", list.ID) // nil timestamps on purpose

	return domain.Collection{
		Lists:         []*domain.List{list},
		Cards:         []*domain.Card{practiced, fresh},
		CurrentListID: list.ID,
	}
}

func newTestCoordinator() (*Coordinator, *store.Memory, *store.Memory) {
	primary := store.NewMemory()
	secondary := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(primary, secondary, logger), primary, secondary
}

func TestSaveAndLoad(t *testing.T) {
	c, primary, secondary := newTestCoordinator()
	defer c.Close()
	col := testCollection()

	require.NoError(t, c.SaveCollection(col))

	// The primary tier reflects the save before SaveCollection returns.
	data, err := primary.Get(keyCards)
	require.NoError(t, err)
	require.NotNil(t, data, "primary tier must be written synchronously")

	c.Flush()
	data, err = secondary.Get(keyBackup)
	require.NoError(t, err)
	require.NotNil(t, data, "secondary tier holds the combined backup record")

	got, err := c.LoadCollection()
	require.NoError(t, err)
	assert.Equal(t, col.CurrentListID, got.CurrentListID)
	require.Len(t, got.Cards, 2)
	assert.Equal(t, col.Cards[0], got.Cards[0])
	assert.Nil(t, got.Cards[1].NextDueAt)
}

func TestMirrorSnapshotIsDetached(t *testing.T) {
	c, _, secondary := newTestCoordinator()
	defer c.Close()
	col := testCollection()

	require.NoError(t, c.SaveCollection(col))

	// Mutate the live cards while the mirror may still be in flight. The
	// worker owns a deep copy, so the backup reflects the state at save
	// time, never a half-applied answer.
	scheduler.ApplyOutcome(col.Cards[1], scheduler.Practice, true, time.Now().UTC())
	col.Cards[0].Word = "mutated"
	c.Flush()

	data, err := secondary.Get(keyBackup)
	require.NoError(t, err)
	var got domain.Collection
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "ser", got.Cards[0].Word)
	assert.Zero(t, got.Cards[1].TimesShown)
	assert.Nil(t, got.Cards[1].NextDueAt)
}

func TestLoadFallsBackToSecondary(t *testing.T) {
	c, primary, secondary := newTestCoordinator()
	defer c.Close()
	col := testCollection()

	// Seed only the durable tier, as if the fast tier was cleared.
	data, err := json.Marshal(col)
	require.NoError(t, err)
	require.NoError(t, secondary.Put(keyBackup, data))

	got, err := c.LoadCollection()
	require.NoError(t, err)
	require.Len(t, got.Cards, 2)
	assert.Equal(t, col.CurrentListID, got.CurrentListID)

	// The fallback re-populates the primary tier with the full collection.
	repopulated, err := primary.Get(keyCards)
	require.NoError(t, err)
	assert.NotNil(t, repopulated)
}

func TestLoadEmptyStores(t *testing.T) {
	c, _, _ := newTestCoordinator()
	defer c.Close()

	got, err := c.LoadCollection()
	require.NoError(t, err, "an empty store is not an error")
	assert.Empty(t, got.Lists)
	assert.Empty(t, got.Cards)
}

func TestSecondaryFailureIsSwallowed(t *testing.T) {
	c, _, secondary := newTestCoordinator()
	defer c.Close()
	secondary.FailPut = true

	require.NoError(t, c.SaveCollection(testCollection()),
		"a failing mirror must not surface to the caller")
	c.Flush()
}

func TestPrimaryFailureStillMirrors(t *testing.T) {
	primary := store.NewMemory()
	primary.FailPut = true
	secondary := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	c := New(primary, secondary, logger)
	defer c.Close()

	err := c.SaveCollection(testCollection())
	require.Error(t, err, "a primary-tier failure is surfaced")

	c.Flush()
	data, gerr := secondary.Get(keyBackup)
	require.NoError(t, gerr)
	assert.NotNil(t, data, "the durable tier still converges")
}

func TestBoundFileRoundTrip(t *testing.T) {
	c, _, _ := newTestCoordinator()
	defer c.Close()
	col := testCollection()
	path := filepath.Join(t.TempDir(), "flashcards.json")

	require.NoError(t, c.BindFile(path, col))
	assert.True(t, c.Bound())

	snap, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.False(t, snap.ExportedAt.IsZero())

	got := snap.Collection()
	assert.Equal(t, col.Lists, got.Lists)
	assert.Equal(t, col.Cards, got.Cards, "every card field survives the round trip, nil due dates included")
	assert.Equal(t, col.CurrentListID, got.CurrentListID)
}

func TestBoundFileWrittenOnSave(t *testing.T) {
	c, _, _ := newTestCoordinator()
	defer c.Close()
	col := testCollection()
	path := filepath.Join(t.TempDir(), "flashcards.json")

	require.NoError(t, c.BindFile(path, domain.Collection{Cards: []*domain.Card{}}))
	require.NoError(t, c.SaveCollection(col))
	c.Flush()

	snap, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Len(t, snap.Cards, 2, "each save overwrites the bound file with the full collection")
}

func TestReadSnapshotClampsScheduleIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edited.json")
	raw := `{
		"lists": [{"id": "l1", "name": "Spanish", "createdAt": "2026-01-01T00:00:00Z"}],
		"cards": [
			{"id": "c1", "word": "ser", "meaning": "to be", "listId": "l1", "practiced": true, "scheduleIndex": 50},
			{"id": "c2", "word": "ir", "meaning": "to go", "listId": "l1", "practiced": true, "scheduleIndex": -5}
		],
		"currentListId": "l1",
		"exportedAt": "2026-03-01T12:00:00Z"
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	snap, err := ReadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, snap.Cards, 2)
	assert.Equal(t, len(scheduler.Intervals)-1, snap.Cards[0].ScheduleIndex)
	assert.Zero(t, snap.Cards[1].ScheduleIndex)

	// Practicing a card from a hand-edited file must not step off the ladder.
	scheduler.ApplyOutcome(snap.Cards[0], scheduler.Practice, true, time.Now().UTC())
	assert.Equal(t, len(scheduler.Intervals)-1, snap.Cards[0].ScheduleIndex)
}

func TestRevokedFileClearsHandle(t *testing.T) {
	c, _, secondary := newTestCoordinator()

	var statusChanges []bool
	c.SetBindingStatusFunc(func(bound bool) { statusChanges = append(statusChanges, bound) })

	dir := t.TempDir()
	path := filepath.Join(dir, "bound.json")
	require.NoError(t, c.BindFile(path, testCollection()))

	// Make the next snapshot write fail, like a revoked authorization.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { os.Chmod(dir, 0o700) })

	require.NoError(t, c.SaveCollection(testCollection()))
	c.Close()

	assert.False(t, c.Bound())
	data, err := secondary.Get(keyFileHandle)
	require.NoError(t, err)
	assert.Nil(t, data, "the cached handle is cleared alongside the in-memory one")
	assert.Equal(t, []bool{true, false}, statusChanges)
}

func TestRestoreHandle(t *testing.T) {
	c, _, secondary := newTestCoordinator()
	defer c.Close()
	path := filepath.Join(t.TempDir(), "restored.json")

	data, err := json.Marshal(path)
	require.NoError(t, err)
	require.NoError(t, secondary.Put(keyFileHandle, data))

	var bound bool
	c.SetBindingStatusFunc(func(b bool) { bound = b })

	c.RestoreHandle()
	assert.True(t, c.Bound())
	assert.True(t, bound)
}
