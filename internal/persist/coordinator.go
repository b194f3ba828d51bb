// Package persist keeps the full card/list collection consistent across the
// three storage tiers: the fast synchronous primary store, the durable
// asynchronous secondary store, and an optional user-bound snapshot file.
package persist

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/domain"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/store"
)

// Logical keys. The primary tier carries the collection under the first
// three; the secondary tier carries the combined backup record and the
// cached bound-file handle.
const (
	keyCards       = "cards"
	keyLists       = "lists"
	keyCurrentList = "current-list"
	keyBackup      = "backup"
	keyFileHandle  = "file-handle"
)

// BindingStatusFunc is notified whenever the bound-file status changes.
type BindingStatusFunc func(bound bool)

// Coordinator fans every save out across the tiers and reads back with the
// primary-then-secondary fallback. The primary write completes before
// SaveCollection returns; the secondary and tertiary mirrors run on a single
// background worker, so sequential snapshots land in order and each mirror
// converges to the latest full collection.
type Coordinator struct {
	primary   store.KV
	secondary store.KV
	logger    *slog.Logger

	mu        sync.Mutex
	handle    string
	onBinding BindingStatusFunc

	jobs      chan domain.Collection
	pending   sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

// New builds a coordinator over the two tier adapters and starts the mirror
// worker. Call Close to drain it.
func New(primary, secondary store.KV, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
		jobs:      make(chan domain.Collection, 16),
		done:      make(chan struct{}),
	}
	go c.mirrorLoop()
	return c
}

// SetBindingStatusFunc registers the status callback for the bound file.
func (c *Coordinator) SetBindingStatusFunc(fn BindingStatusFunc) {
	c.mu.Lock()
	c.onBinding = fn
	c.mu.Unlock()
}

// SaveCollection overwrites the whole collection in the primary tier
// synchronously, then hands the same snapshot to the mirror worker for the
// secondary tier and, when a file is bound, the tertiary file. Mirror
// failures are logged and swallowed; only a primary-tier failure is
// returned.
func (c *Coordinator) SaveCollection(col domain.Collection) error {
	var firstErr error
	put := func(key string, v any) {
		data, err := json.Marshal(v)
		if err == nil {
			err = c.primary.Put(key, data)
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("primary tier %s: %w", key, err)
		}
	}
	put(keyCards, col.Cards)
	put(keyLists, col.Lists)
	put(keyCurrentList, col.CurrentListID)

	if firstErr != nil {
		c.logger.Error("primary tier write failed", "error", firstErr)
	}

	// The mirrors still run on a primary failure: each carries the full
	// collection, so the durable tier converges even when the fast tier
	// is out of capacity. The worker gets its own deep copy; the caller
	// keeps mutating the live collection after this returns.
	c.pending.Add(1)
	c.jobs <- col.Clone()

	return firstErr
}

// LoadCollection reads the collection from the primary tier. When the
// primary tier has no collection at all it falls back to the secondary
// backup record and, if found, re-populates the primary tier so future
// reads are fast. An empty store yields an empty collection, not an error.
func (c *Coordinator) LoadCollection() (domain.Collection, error) {
	var col domain.Collection

	data, err := c.primary.Get(keyCards)
	if err != nil {
		return col, fmt.Errorf("primary tier read: %w", err)
	}
	if data == nil {
		return c.loadFromBackup()
	}

	if err := json.Unmarshal(data, &col.Cards); err != nil {
		return col, fmt.Errorf("decode cards: %w", err)
	}
	if data, err = c.primary.Get(keyLists); err != nil {
		return col, fmt.Errorf("primary tier read: %w", err)
	}
	if data != nil {
		if err := json.Unmarshal(data, &col.Lists); err != nil {
			return col, fmt.Errorf("decode lists: %w", err)
		}
	}
	if data, err = c.primary.Get(keyCurrentList); err != nil {
		return col, fmt.Errorf("primary tier read: %w", err)
	}
	if data != nil {
		if err := json.Unmarshal(data, &col.CurrentListID); err != nil {
			return col, fmt.Errorf("decode current list: %w", err)
		}
	}
	return col, nil
}

func (c *Coordinator) loadFromBackup() (domain.Collection, error) {
	var col domain.Collection
	data, err := c.secondary.Get(keyBackup)
	if err != nil {
		c.logger.Warn("secondary tier fallback failed", "error", err)
		return col, nil
	}
	if data == nil {
		return col, nil
	}
	if err := json.Unmarshal(data, &col); err != nil {
		c.logger.Warn("secondary tier backup is unreadable", "error", err)
		return domain.Collection{}, nil
	}

	c.logger.Info("restored collection from secondary tier",
		"lists", len(col.Lists), "cards", len(col.Cards))

	// Re-populate the fast tier with the full collection.
	if err := c.SaveCollection(col); err != nil {
		c.logger.Warn("failed to re-populate primary tier", "error", err)
	}
	return col, nil
}

// mirrorLoop drains snapshot jobs one at a time. Running on a single
// goroutine keeps mirrors monotonic by call order.
func (c *Coordinator) mirrorLoop() {
	defer close(c.done)
	for col := range c.jobs {
		c.mirror(col)
		c.pending.Done()
	}
}

func (c *Coordinator) mirror(col domain.Collection) {
	data, err := json.Marshal(col)
	if err != nil {
		c.logger.Error("could not encode backup record", "error", err)
		return
	}
	if err := c.secondary.Put(keyBackup, data); err != nil {
		c.logger.Warn("secondary tier mirror failed", "error", err)
	}

	if path := c.boundPath(); path != "" {
		if err := c.writeSnapshot(path, col); err != nil {
			c.logger.Warn("bound file write failed, unbinding", "path", path, "error", err)
			c.clearHandle()
		}
	}
}

// Flush blocks until every queued mirror has completed.
func (c *Coordinator) Flush() {
	c.pending.Wait()
}

// Close drains the mirror worker and shuts it down. Safe to call more than
// once. The tier adapters are closed by their owner.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.pending.Wait()
		close(c.jobs)
		<-c.done
	})
}
