package console

import (
	"sync"
	"time"

	"synapse-console/src/models"
)

// Console is the append-only running log shown to the user.
// With maxEntries > 0 the oldest lines are rotated out; 0 keeps everything.
type Console struct {
	mu         sync.RWMutex
	entries    []models.MLogEntry
	maxEntries int
	now        func() time.Time
}

func NewConsole(maxEntries int) *Console {
	return &Console{
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Append stamps and stores a line, returning the stored entry.
func (c *Console) Append(logType models.LogType, message string) models.MLogEntry {
	entry := models.MLogEntry{
		Timestamp: c.now().UTC().Format(time.RFC3339Nano),
		Type:      logType,
		Message:   message,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, entry)
	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		// copy so the dropped prefix can be collected
		kept := make([]models.MLogEntry, c.maxEntries)
		copy(kept, c.entries[len(c.entries)-c.maxEntries:])
		c.entries = kept
	}
	return entry
}

// Entries returns a copy in append order.
func (c *Console) Entries() []models.MLogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.MLogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Console) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
