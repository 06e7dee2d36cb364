package console

import (
	"fmt"
	"testing"
	"time"

	"synapse-console/src/models"
)

func TestAppendKeepsOrder(t *testing.T) {
	c := NewConsole(0)
	c.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	c.Append(models.LogInfo, "first")
	c.Append(models.LogSuccess, "second")
	c.Append(models.LogError, "third")

	entries := c.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"first", "second", "third"}
	for i, e := range entries {
		if e.Message != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], e.Message)
		}
	}
	if entries[0].Timestamp != "2024-01-01T00:00:00Z" {
		t.Errorf("unexpected timestamp %q", entries[0].Timestamp)
	}
}

func TestUnboundedByDefault(t *testing.T) {
	c := NewConsole(0)
	for i := 0; i < 1000; i++ {
		c.Append(models.LogInfo, fmt.Sprintf("line %d", i))
	}
	if c.Len() != 1000 {
		t.Errorf("expected 1000 entries, got %d", c.Len())
	}
}

func TestRotationDropsOldest(t *testing.T) {
	c := NewConsole(3)
	for i := 0; i < 5; i++ {
		c.Append(models.LogInfo, fmt.Sprintf("line %d", i))
	}

	entries := c.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Message != "line 2" || entries[2].Message != "line 4" {
		t.Errorf("unexpected window: %+v", entries)
	}
}

func TestEntriesIsACopy(t *testing.T) {
	c := NewConsole(0)
	c.Append(models.LogInfo, "original")

	snapshot := c.Entries()
	snapshot[0].Message = "mutated"

	if c.Entries()[0].Message != "original" {
		t.Error("mutating a snapshot changed the console")
	}
}
