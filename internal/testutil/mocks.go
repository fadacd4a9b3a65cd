package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/poyrazK/nsec3gen/internal/core/domain"
)

// StaticSource implements ports.LabelSource over a fixed slice.
type StaticSource struct {
	Items []string
	Fail  bool
	Calls int
}

func (s *StaticSource) Labels(_ context.Context) ([]string, error) {
	s.Calls++
	if s.Fail {
		return nil, errors.New("source failed")
	}
	return s.Items, nil
}

func (s *StaticSource) Describe() string { return "static" }

// GenerateLabels returns n distinct labels.
func GenerateLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("host-%d", i)
	}
	return labels
}

// MemoryStore implements ports.CacheWriter and ports.CacheReader in memory.
type MemoryStore struct {
	mu      sync.Mutex
	Records map[string]*domain.CacheRecord
	Writes  int
	FailIDs map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Records: map[string]*domain.CacheRecord{}, FailIDs: map[string]bool{}}
}

func (m *MemoryStore) Write(_ context.Context, id string, record *domain.CacheRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes++
	if m.FailIDs[id] {
		return "", errors.New("write failed")
	}
	m.Records[id] = record
	return "memory:" + id, nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*domain.CacheRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[id]
	if !ok {
		return nil, domain.ErrCacheNotFound
	}
	return rec, nil
}

// RecordingReporter implements ports.ProgressReporter and remembers the
// final counter it saw.
type RecordingReporter struct {
	Started  int
	Stopped  int
	Titles   []string
	progress *domain.Progress
	Final    int64
}

func (r *RecordingReporter) Start(p *domain.Progress, title string) {
	r.Started++
	r.Titles = append(r.Titles, title)
	r.progress = p
}

func (r *RecordingReporter) Stop() {
	r.Stopped++
	if r.progress != nil {
		r.Final = r.progress.Completed()
	}
}
