package category

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lostfound-api/internal/domain"
	"github.com/lostfound-api/internal/pkg/id"
	"github.com/lostfound-api/internal/pkg/validate"
)

// DynamoDB attribute name used in partial update maps.
const fieldName = "name"

type Service interface {
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, categoryID string, input domain.CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, categoryID string) error // hard delete
}

type categoryStore interface {
	Scan(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	Put(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, categoryID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, categoryID string) error
}

type service struct {
	repo categoryStore
}

func NewService(repo categoryStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.Scan(ctx)
}

func (s *service) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.repo.Get(ctx, categoryID)
}

func (s *service) Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if err := s.ensureUnique(ctx, input.Name, ""); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &domain.Category{
		CategoryID: id.New(),
		Name:       strings.TrimSpace(input.Name),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Update(ctx context.Context, categoryID string, input domain.CategoryInput) (*domain.Category, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if err := s.ensureUnique(ctx, input.Name, categoryID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, categoryID, map[string]interface{}{fieldName: strings.TrimSpace(input.Name)}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, categoryID)
}

func (s *service) Delete(ctx context.Context, categoryID string) error {
	return s.repo.HardDelete(ctx, categoryID)
}

// ensureUnique rejects a name already used by a different category,
// compared case-insensitively.
func (s *service) ensureUnique(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.Scan(ctx)
	if err != nil {
		return err
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for i := range existing {
		if existing[i].CategoryID != selfID && strings.ToLower(existing[i].Name) == want {
			return fmt.Errorf("category %q already exists: %w", name, domain.ErrConflict)
		}
	}
	return nil
}
