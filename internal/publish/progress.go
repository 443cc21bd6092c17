package publish

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Progress tags recorded during a publish attempt, in the order a
// successful run emits them.
const (
	TagPrepare = "prepare"
	TagRender  = "render"
	TagData    = "data"
	TagUpload  = "upload"
	TagDone    = "done"

	TagErrorVisNotSupported = "error-vis-not-supported"
	TagErrorData            = "error-data"
	TagErrorRender          = "error-render"
	TagErrorUpload          = "error-upload"
)

// ProgressEntry is one step of a publish attempt. Entries are append-only
// and ordered by when they were recorded.
type ProgressEntry struct {
	Tag        string
	RecordedAt time.Time
}

// ProgressRepository persists the per-attempt publish log. Keys follow
// the chart/{id}/publish/{version} convention.
type ProgressRepository interface {
	Append(ctx context.Context, key string, entry ProgressEntry) error
	List(ctx context.Context, key string) ([]ProgressEntry, error)
}

// JoinTags renders a log in the legacy comma-joined format older status
// consumers still parse.
func JoinTags(entries []ProgressEntry) string {
	tags := make([]string, 0, len(entries))
	for _, entry := range entries {
		tags = append(tags, entry.Tag)
	}
	return strings.Join(tags, ",")
}

// MemoryProgressRepository is an in-memory progress log for tests and
// single-process deployments.
type MemoryProgressRepository struct {
	mu      sync.RWMutex
	entries map[string][]ProgressEntry
}

// NewMemoryProgressRepository constructs an empty in-memory log.
func NewMemoryProgressRepository() *MemoryProgressRepository {
	return &MemoryProgressRepository{entries: map[string][]ProgressEntry{}}
}

func (r *MemoryProgressRepository) Append(_ context.Context, key string, entry ProgressEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = append(r.entries[key], entry)
	return nil
}

func (r *MemoryProgressRepository) List(_ context.Context, key string) ([]ProgressEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := append([]ProgressEntry{}, r.entries[key]...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RecordedAt.Before(entries[j].RecordedAt)
	})
	return entries, nil
}
