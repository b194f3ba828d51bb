package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/domain"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/scheduler"
)

// Bound-file handle lifecycle. The handle is a user-authorized file path,
// cached in memory and persisted in the secondary tier so it survives
// restarts. Any failed write to the bound file is treated as a revoked
// authorization: the handle is dropped from both places and the status
// callback fires.

// RestoreHandle re-acquires the bound-file handle from the secondary tier.
// Called once at startup, before the first load.
func (c *Coordinator) RestoreHandle() {
	data, err := c.secondary.Get(keyFileHandle)
	if err != nil {
		c.logger.Warn("could not restore bound-file handle", "error", err)
		return
	}
	if len(data) == 0 {
		return
	}
	var path string
	if err := json.Unmarshal(data, &path); err != nil || path == "" {
		return
	}
	c.mu.Lock()
	c.handle = path
	fn := c.onBinding
	c.mu.Unlock()
	c.logger.Info("restored bound-file handle", "path", path)
	if fn != nil {
		fn(true)
	}
}

// Bound reports whether a file is currently bound for auto-save.
func (c *Coordinator) Bound() bool {
	return c.boundPath() != ""
}

// BindFile adopts path as the auto-save target, caches the handle in the
// secondary tier and immediately writes the current collection to it. A
// failed initial write aborts the binding.
func (c *Coordinator) BindFile(path string, col domain.Collection) error {
	if err := c.writeSnapshot(path, col); err != nil {
		return fmt.Errorf("bind file: %w", err)
	}

	c.mu.Lock()
	c.handle = path
	fn := c.onBinding
	c.mu.Unlock()

	if data, err := json.Marshal(path); err == nil {
		if err := c.secondary.Put(keyFileHandle, data); err != nil {
			c.logger.Warn("could not persist bound-file handle", "error", err)
		}
	}
	if fn != nil {
		fn(true)
	}
	return nil
}

// ReadSnapshot parses a snapshot file without touching any tier. The caller
// decides, after confirmation, whether to adopt it.
func ReadSnapshot(path string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("not a valid export file: %w", err)
	}
	if snap.Cards == nil {
		return snap, fmt.Errorf("not a valid export file: no cards field")
	}
	for _, card := range snap.Cards {
		scheduler.ClampIndex(card)
	}
	return snap, nil
}

func (c *Coordinator) boundPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle != "" {
		return c.handle
	}
	// Not cached in memory; try re-acquiring from the secondary tier.
	data, err := c.secondary.Get(keyFileHandle)
	if err != nil || len(data) == 0 {
		return ""
	}
	var path string
	if json.Unmarshal(data, &path) == nil {
		c.handle = path
	}
	return c.handle
}

func (c *Coordinator) clearHandle() {
	c.mu.Lock()
	c.handle = ""
	fn := c.onBinding
	c.mu.Unlock()

	if err := c.secondary.Delete(keyFileHandle); err != nil {
		c.logger.Warn("could not clear cached bound-file handle", "error", err)
	}
	if fn != nil {
		fn(false)
	}
}

func (c *Coordinator) writeSnapshot(path string, col domain.Collection) error {
	snap := domain.NewSnapshot(col, time.Now().UTC())
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
