package themes

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryThemeRepository provides an in-memory implementation of ThemeRepository.
type MemoryThemeRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Theme
	byName map[string]uuid.UUID
}

// NewMemoryThemeRepository constructs an empty memory-backed theme repository.
func NewMemoryThemeRepository() *MemoryThemeRepository {
	return &MemoryThemeRepository{
		byID:   make(map[uuid.UUID]*Theme),
		byName: make(map[string]uuid.UUID),
	}
}

func (r *MemoryThemeRepository) Create(_ context.Context, theme *Theme) (*Theme, error) {
	if theme == nil {
		return nil, nil
	}
	cloned := cloneTheme(theme)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[cloned.ID] = cloned
	r.byName[cloned.Name] = cloned.ID

	return cloneTheme(cloned), nil
}

func (r *MemoryThemeRepository) Update(_ context.Context, theme *Theme) (*Theme, error) {
	if theme == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[theme.ID]; !ok {
		return nil, &NotFoundError{Resource: "theme", Key: theme.ID.String()}
	}

	cloned := cloneTheme(theme)
	r.byID[cloned.ID] = cloned
	r.byName[cloned.Name] = cloned.ID

	return cloneTheme(cloned), nil
}

func (r *MemoryThemeRepository) GetByID(_ context.Context, id uuid.UUID) (*Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "theme", Key: id.String()}
	}
	return cloneTheme(record), nil
}

func (r *MemoryThemeRepository) GetByName(_ context.Context, name string) (*Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return nil, &NotFoundError{Resource: "theme", Key: name}
	}
	return cloneTheme(r.byID[id]), nil
}

func (r *MemoryThemeRepository) List(_ context.Context) ([]*Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Theme, 0, len(r.byID))
	for _, record := range r.byID {
		out = append(out, cloneTheme(record))
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}
