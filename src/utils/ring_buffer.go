package utils

import (
	"sync"
	"time"

	"synapse-console/src/models"
)

// ChartCapacity is the number of points kept for the live chart.
const ChartCapacity = 30

// -----------------------------------------------------------------------------
// ChartBuffer is a fixed-size circular buffer of chart points.
// Insertion order is arrival order and eviction is strictly oldest-first.
// -----------------------------------------------------------------------------

type ChartBuffer struct {
	mu       sync.RWMutex
	data     []models.MChartPoint
	capacity int
	index    int // Next write position
	size     int // Current number of elements
	location *time.Location
}

// -----------------------------------------------------------------------------

// NewChartBuffer creates a buffer holding ChartCapacity points.
// Labels are rendered in loc; nil means time.Local.
func NewChartBuffer(loc *time.Location) *ChartBuffer {
	if loc == nil {
		loc = time.Local
	}

	return &ChartBuffer{
		data:     make([]models.MChartPoint, ChartCapacity),
		capacity: ChartCapacity,
		location: loc,
	}
}

// -----------------------------------------------------------------------------

// Append projects the tick into a point, evicts the oldest point when full
// and returns a fresh snapshot. Earlier snapshots are never touched.
func (rb *ChartBuffer) Append(tick models.MPriceTick) []models.MChartPoint {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.data[rb.index] = models.MChartPoint{
		Label: HumanTime(tick.Timestamp, rb.location),
		Price: tick.Price,
	}
	rb.index = (rb.index + 1) % rb.capacity

	// Update size (never exceeds capacity)
	if rb.size < rb.capacity {
		rb.size++
	}

	return rb.snapshotLocked()
}

// -----------------------------------------------------------------------------

// Snapshot returns all points in insertion order (oldest to newest)
func (rb *ChartBuffer) Snapshot() []models.MChartPoint {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.snapshotLocked()
}

// -----------------------------------------------------------------------------

func (rb *ChartBuffer) snapshotLocked() []models.MChartPoint {
	result := make([]models.MChartPoint, rb.size)

	// Buffer is full: oldest is at current index (wrap-around)
	startIdx := 0
	if rb.size == rb.capacity {
		startIdx = rb.index
	}

	for i := 0; i < rb.size; i++ {
		result[i] = rb.data[(startIdx+i)%rb.capacity]
	}
	return result
}

// -----------------------------------------------------------------------------
// Helper function
// -----------------------------------------------------------------------------

// Zone-less timestamps are read as local to loc.
const (
	isoLocal        = "2006-01-02T15:04:05.999999999"
	isoCompactShift = "2006-01-02T15:04:05.999999999-0700"
)

// HumanTime renders an ISO-8601 timestamp as a wall-clock label in loc.
// Timestamps that do not parse are returned unchanged.
func HumanTime(ts string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		t, err = time.ParseInLocation(isoLocal, ts, loc)
	}
	if err != nil {
		t, err = time.Parse(isoCompactShift, ts)
	}
	if err != nil {
		return ts
	}
	return t.In(loc).Format("15:04:05")
}
