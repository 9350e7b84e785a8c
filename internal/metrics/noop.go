package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncBorrowCreated is a no-op.
func (n *NoopRecorder) IncBorrowCreated() {}

// IncBorrowRejected is a no-op.
func (n *NoopRecorder) IncBorrowRejected(reason string) {}

// ObserveBorrowDuration is a no-op.
func (n *NoopRecorder) ObserveBorrowDuration(duration time.Duration) {}

// IncUserFieldUpdated is a no-op.
func (n *NoopRecorder) IncUserFieldUpdated(field string) {}

// IncUserDeleted is a no-op.
func (n *NoopRecorder) IncUserDeleted() {}

// IncMiniSearch is a no-op.
func (n *NoopRecorder) IncMiniSearch(kind string) {}
