// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Borrow metrics
	IncBorrowCreated()
	IncBorrowRejected(reason string) // reason: "not_found", "borrowed", "age", "error"
	ObserveBorrowDuration(duration time.Duration)

	// Account metrics
	IncUserFieldUpdated(field string)
	IncUserDeleted()

	// Search metrics
	IncMiniSearch(kind string) // kind: "author" or "media"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
