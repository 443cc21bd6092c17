package themes

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ThemeRepository exposes persistence operations for themes.
type ThemeRepository interface {
	Create(ctx context.Context, theme *Theme) (*Theme, error)
	Update(ctx context.Context, theme *Theme) (*Theme, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Theme, error)
	GetByName(ctx context.Context, name string) (*Theme, error)
	List(ctx context.Context) ([]*Theme, error)
}

// NotFoundError is returned when a theme resource cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewThemeRepository creates a bun-backed repository for themes.
func NewThemeRepository(db *bun.DB) repository.Repository[*Theme] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Theme]{
		NewRecord:          func() *Theme { return &Theme{} },
		GetID:              func(theme *Theme) uuid.UUID { return theme.ID },
		SetID:              func(theme *Theme, id uuid.UUID) { theme.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(theme *Theme) string { return theme.Name },
	})
}
