package themes

import (
	"context"
	"errors"
	"strings"
	"time"

	slug "github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// Service exposes theme management and resolution capabilities.
type Service interface {
	RegisterTheme(ctx context.Context, input RegisterThemeInput) (*Theme, error)
	GetTheme(ctx context.Context, id uuid.UUID) (*Theme, error)
	GetThemeByName(ctx context.Context, name string) (*Theme, error)
	ListThemes(ctx context.Context) ([]*Theme, error)

	// Resolve loads a theme by name and folds its parent chain into a single
	// rendering-ready theme: data deep-merges with the child winning, fonts
	// shallow-merge, and LESS concatenates parent-first so child rules win
	// the cascade.
	Resolve(ctx context.Context, name string) (*Theme, error)
}

var (
	ErrThemeRepositoryRequired = errors.New("themes: theme repository required")

	ErrThemeNameRequired = errors.New("themes: name required")
	ErrThemeNameInvalid  = errors.New("themes: name must be a valid slug")
	ErrThemeExists       = errors.New("themes: theme already exists")
	ErrThemeNotFound     = errors.New("themes: theme not found")
	ErrThemeCycle        = errors.New("themes: extends chain contains a cycle")
)

// RegisterThemeInput carries the fields accepted at theme registration.
type RegisterThemeInput struct {
	Name    string
	Title   string
	Extends *string
	LESS    string
	Fonts   map[string]FontAsset
	Data    map[string]any
}

// IDGenerator produces unique identifiers.
type IDGenerator func() uuid.UUID

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithThemeIDGenerator overrides the default ID generator.
func WithThemeIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type service struct {
	themes ThemeRepository
	id     IDGenerator
	now    func() time.Time
}

// NewService constructs a theme service instance.
func NewService(themeRepo ThemeRepository, opts ...ServiceOption) Service {
	if themeRepo == nil {
		panic(ErrThemeRepositoryRequired)
	}

	s := &service{
		themes: themeRepo,
		id:     uuid.New,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) RegisterTheme(ctx context.Context, input RegisterThemeInput) (*Theme, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrThemeNameRequired
	}
	if !slug.IsValid(name) {
		normalized, err := slug.Normalize(name)
		if err != nil || normalized == "" {
			return nil, ErrThemeNameInvalid
		}
		name = normalized
	}

	if existing, err := s.themes.GetByName(ctx, name); err == nil && existing != nil {
		return nil, ErrThemeExists
	} else if err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}
	}

	if parent := input.Extends; parent != nil && strings.TrimSpace(*parent) != "" {
		if _, err := s.themes.GetByName(ctx, strings.TrimSpace(*parent)); err != nil {
			return nil, translateRepoError(err, ErrThemeNotFound)
		}
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = name
	}

	record := &Theme{
		ID:        s.id(),
		Name:      name,
		Title:     title,
		Extends:   cloneString(input.Extends),
		LESS:      input.LESS,
		Fonts:     cloneFonts(input.Fonts),
		Data:      deepCloneMap(input.Data),
		CreatedAt: s.now().UTC(),
		UpdatedAt: s.now().UTC(),
	}

	created, err := s.themes.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return cloneTheme(created), nil
}

func (s *service) GetTheme(ctx context.Context, id uuid.UUID) (*Theme, error) {
	if id == uuid.Nil {
		return nil, ErrThemeNotFound
	}
	theme, err := s.themes.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, ErrThemeNotFound)
	}
	return cloneTheme(theme), nil
}

func (s *service) GetThemeByName(ctx context.Context, name string) (*Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrThemeNotFound
	}
	theme, err := s.themes.GetByName(ctx, name)
	if err != nil {
		return nil, translateRepoError(err, ErrThemeNotFound)
	}
	return cloneTheme(theme), nil
}

func (s *service) ListThemes(ctx context.Context) ([]*Theme, error) {
	records, err := s.themes.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Theme, len(records))
	for i, record := range records {
		out[i] = cloneTheme(record)
	}
	return out, nil
}

func (s *service) Resolve(ctx context.Context, name string) (*Theme, error) {
	child, err := s.GetThemeByName(ctx, name)
	if err != nil {
		return nil, err
	}

	// Walk the extends chain root-first. The chain is single-level in
	// practice; the visited set guards against misconfigured cycles.
	chain := []*Theme{child}
	visited := map[string]struct{}{child.Name: {}}
	current := child
	for current.Extends != nil {
		parentName := strings.TrimSpace(*current.Extends)
		if parentName == "" {
			break
		}
		if _, seen := visited[parentName]; seen {
			return nil, ErrThemeCycle
		}
		parent, err := s.GetThemeByName(ctx, parentName)
		if err != nil {
			return nil, err
		}
		visited[parent.Name] = struct{}{}
		chain = append(chain, parent)
		current = parent
	}

	resolved := &Theme{
		ID:        child.ID,
		Name:      child.Name,
		Title:     child.Title,
		CreatedAt: child.CreatedAt,
		UpdatedAt: child.UpdatedAt,
	}
	var lessParts []string
	for i := len(chain) - 1; i >= 0; i-- {
		layer := chain[i]
		resolved.Data = deepMergeMaps(resolved.Data, layer.Data)
		resolved.Fonts = mergeFonts(resolved.Fonts, layer.Fonts)
		if strings.TrimSpace(layer.LESS) != "" {
			lessParts = append(lessParts, layer.LESS)
		}
	}
	resolved.LESS = strings.Join(lessParts, "\n")
	return resolved, nil
}

func translateRepoError(err error, fallback error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return fallback
	}
	return err
}
