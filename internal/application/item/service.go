package item

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lostfound-api/internal/domain"
	"github.com/lostfound-api/internal/pkg/id"
	"github.com/lostfound-api/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTitle         = "title"
	fieldDescription   = "description"
	fieldCategory      = "category"
	fieldLocation      = "location"
	fieldDateLostFound = "date_lost_found"
	fieldImages        = "images"
	fieldContactEmail  = "contact_email"
	fieldContactPhone  = "contact_phone"
)

type Service interface {
	Create(ctx context.Context, owner domain.Actor, req domain.CreateItemRequest) (*domain.Item, error)
	Get(ctx context.Context, itemID string) (*domain.Item, error)
	// List returns the public browse listing, newest first.
	List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Item, error)
	Update(ctx context.Context, itemID, requesterID string, req domain.UpdateItemRequest) (*domain.Item, error)
	// Delete removes the item and every claim on it. Owner only.
	Delete(ctx context.Context, itemID, requesterID string) error
}

type itemStore interface {
	Put(ctx context.Context, it *domain.Item) error
	Get(ctx context.Context, itemID string) (*domain.Item, error)
	Update(ctx context.Context, itemID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, itemID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Item, error)
	Scan(ctx context.Context, f domain.ItemFilter) ([]domain.Item, error)
}

type claimStore interface {
	ListByItem(ctx context.Context, itemID string) ([]domain.Claim, error)
	HardDelete(ctx context.Context, claimID string) error
}

type projectionCache interface {
	Invalidate(userIDs ...string)
	InvalidateAll()
}

type service struct {
	repo        itemStore
	claimRepo   claimStore
	projections projectionCache
	now         func() time.Time
}

type ServiceDeps struct {
	ItemRepo        itemStore
	ClaimRepo       claimStore
	ProjectionCache projectionCache
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:        deps.ItemRepo,
		claimRepo:   deps.ClaimRepo,
		projections: deps.ProjectionCache,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, owner domain.Actor, req domain.CreateItemRequest) (*domain.Item, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if err := validate.ItemTitle(req.Title); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if err := validate.ItemDescription(req.Description); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if err := validate.ItemLocation(req.Location); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	now := s.now()
	date, err := validate.PastDate(req.DateLostFound, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}

	it := &domain.Item{
		ItemID:        id.New(),
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		Category:      req.Category,
		Location:      strings.TrimSpace(req.Location),
		DateLostFound: date,
		Type:          req.Type,
		Status:        req.Type, // starts in its reporting state
		Images:        req.Images,
		UserID:        owner.ID,
		UserEmail:     owner.Email,
		UserName:      owner.Name,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Put(ctx, it); err != nil {
		return nil, err
	}
	s.projections.InvalidateAll()
	return it, nil
}

func (s *service) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	return s.repo.Get(ctx, itemID)
}

func (s *service) List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	items, err := s.repo.Scan(ctx, filter)
	if err != nil {
		return nil, err
	}
	// Free-text search is applied here; the store only pushes down the
	// structured parts of the filter.
	if q := strings.ToLower(strings.TrimSpace(filter.Search)); q != "" {
		matched := items[:0]
		for i := range items {
			it := &items[i]
			hay := strings.ToLower(it.Title + " " + it.Description + " " + it.Category + " " + it.Location)
			if strings.Contains(hay, q) {
				matched = append(matched, *it)
			}
		}
		items = matched
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (s *service) ListByOwner(ctx context.Context, userID string) ([]domain.Item, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (s *service) Update(ctx context.Context, itemID, requesterID string, req domain.UpdateItemRequest) (*domain.Item, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	it, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.UserID != requesterID {
		return nil, fmt.Errorf("only the item owner may update it: %w", domain.ErrForbidden)
	}
	if it.Status == domain.ItemStatusClaimed {
		return nil, fmt.Errorf("claimed items cannot be edited: %w", domain.ErrConflict)
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		if err := validate.ItemTitle(*req.Title); err != nil {
			return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
		}
		updates[fieldTitle] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		if err := validate.ItemDescription(*req.Description); err != nil {
			return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
		}
		updates[fieldDescription] = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		updates[fieldCategory] = *req.Category
	}
	if req.Location != nil {
		if err := validate.ItemLocation(*req.Location); err != nil {
			return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
		}
		updates[fieldLocation] = strings.TrimSpace(*req.Location)
	}
	if req.DateLostFound != nil {
		date, err := validate.PastDate(*req.DateLostFound, s.now())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
		}
		updates[fieldDateLostFound] = date
	}
	if req.Images != nil {
		updates[fieldImages] = req.Images
	}
	if req.ContactEmail != nil {
		updates[fieldContactEmail] = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		updates[fieldContactPhone] = *req.ContactPhone
	}
	if len(updates) == 0 {
		return it, nil
	}
	if err := s.repo.Update(ctx, itemID, updates); err != nil {
		return nil, err
	}
	s.projections.InvalidateAll()
	return s.repo.Get(ctx, itemID)
}

func (s *service) Delete(ctx context.Context, itemID, requesterID string) error {
	it, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return err
	}
	if it.UserID != requesterID {
		return fmt.Errorf("only the item owner may delete it: %w", domain.ErrForbidden)
	}

	claims, err := s.claimRepo.ListByItem(ctx, itemID)
	if err != nil {
		return err
	}
	for i := range claims {
		if err := s.claimRepo.HardDelete(ctx, claims[i].ClaimID); err != nil {
			return fmt.Errorf("delete of item %s left claim %s behind: %v: %w",
				itemID, claims[i].ClaimID, err, domain.ErrInconsistent)
		}
	}
	if err := s.repo.HardDelete(ctx, itemID); err != nil {
		return fmt.Errorf("delete purged claims but item %s remains: %v: %w", itemID, err, domain.ErrInconsistent)
	}
	s.projections.InvalidateAll()
	return nil
}
