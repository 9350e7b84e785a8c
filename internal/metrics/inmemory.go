package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	BorrowsCreated        uint64
	BorrowsRejected       map[string]uint64
	BorrowDurationCount   uint64
	BorrowDurationTotalNs int64
	UserFieldsUpdated     map[string]uint64
	UsersDeleted          uint64
	MiniSearches          map[string]uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	borrowsCreated        uint64
	borrowDurationCount   uint64
	borrowDurationTotalNs int64
	usersDeleted          uint64

	mu                sync.Mutex
	borrowsRejected   map[string]uint64
	userFieldsUpdated map[string]uint64
	miniSearches      map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		borrowsRejected:   make(map[string]uint64),
		userFieldsUpdated: make(map[string]uint64),
		miniSearches:      make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		BorrowsCreated:        atomic.LoadUint64(&m.borrowsCreated),
		BorrowsRejected:       copyCounts(m.borrowsRejected),
		BorrowDurationCount:   atomic.LoadUint64(&m.borrowDurationCount),
		BorrowDurationTotalNs: atomic.LoadInt64(&m.borrowDurationTotalNs),
		UserFieldsUpdated:     copyCounts(m.userFieldsUpdated),
		UsersDeleted:          atomic.LoadUint64(&m.usersDeleted),
		MiniSearches:          copyCounts(m.miniSearches),
	}
}

// IncBorrowCreated increments the borrow created counter.
func (m *InMemoryRecorder) IncBorrowCreated() {
	atomic.AddUint64(&m.borrowsCreated, 1)
}

// IncBorrowRejected increments the rejection counter for reason.
func (m *InMemoryRecorder) IncBorrowRejected(reason string) {
	m.inc(m.borrowsRejected, reason)
}

// ObserveBorrowDuration records borrow handling duration.
func (m *InMemoryRecorder) ObserveBorrowDuration(duration time.Duration) {
	atomic.AddUint64(&m.borrowDurationCount, 1)
	atomic.AddInt64(&m.borrowDurationTotalNs, duration.Nanoseconds())
}

// IncUserFieldUpdated increments the update counter for field.
func (m *InMemoryRecorder) IncUserFieldUpdated(field string) {
	m.inc(m.userFieldsUpdated, field)
}

// IncUserDeleted increments the user deleted counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}

// IncMiniSearch increments the search counter for kind.
func (m *InMemoryRecorder) IncMiniSearch(kind string) {
	m.inc(m.miniSearches, kind)
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, label string) {
	m.mu.Lock()
	counts[label]++
	m.mu.Unlock()
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
