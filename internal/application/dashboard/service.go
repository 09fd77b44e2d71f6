package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/lostfound-api/internal/domain"
	"github.com/lostfound-api/internal/pkg/querycache"
)

// Dashboard is the per-user projection served to the account page: the
// user's own reports, the claims they filed elsewhere, the claims other
// people filed on their items, what everyone else has listed and their
// unread notification count.
type Dashboard struct {
	Items       []domain.Item  `json:"items"`
	Claims      []domain.Claim `json:"claims"`
	ItemClaims  []domain.Claim `json:"item_claims"`
	PublicItems []domain.Item  `json:"public_items"`
	UnreadCount int            `json:"unread_count"`
	GeneratedAt time.Time      `json:"generated_at"`
}

type Service interface {
	Get(ctx context.Context, userID string) (*Dashboard, error)
	// Invalidate drops the cached projection for the given users.
	Invalidate(userIDs ...string)
	// InvalidateAll drops every cached projection. Used after mutations
	// that change what any user might see.
	InvalidateAll()
}

type itemStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Item, error)
	Scan(ctx context.Context, f domain.ItemFilter) ([]domain.Item, error)
}

type claimStore interface {
	ListByClaimer(ctx context.Context, claimerID string) ([]domain.Claim, error)
	ListByItem(ctx context.Context, itemID string) ([]domain.Claim, error)
}

type notificationCounter interface {
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type service struct {
	items         itemStore
	claims        claimStore
	notifications notificationCounter
	cache         *querycache.Cache
	now           func() time.Time
}

type ServiceDeps struct {
	ItemRepo        itemStore
	ClaimRepo       claimStore
	NotificationSvc notificationCounter
	CacheTTL        time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		items:         deps.ItemRepo,
		claims:        deps.ClaimRepo,
		notifications: deps.NotificationSvc,
		cache:         querycache.New(deps.CacheTTL),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func cacheKey(userID string) string { return "dashboard:" + userID }

func (s *service) Get(ctx context.Context, userID string) (*Dashboard, error) {
	now := s.now()
	if cached, ok := s.cache.Get(cacheKey(userID), now); ok {
		return cached.(*Dashboard), nil
	}

	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	claims, err := s.claims.ListByClaimer(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Claims filed by others on this user's items.
	itemClaims := make([]domain.Claim, 0)
	for _, it := range items {
		cs, err := s.claims.ListByItem(ctx, it.ItemID)
		if err != nil {
			return nil, err
		}
		itemClaims = append(itemClaims, cs...)
	}

	all, err := s.items.Scan(ctx, domain.ItemFilter{})
	if err != nil {
		return nil, err
	}
	public := make([]domain.Item, 0, len(all))
	for _, it := range all {
		if it.UserID != userID {
			public = append(public, it)
		}
	}
	sort.Slice(public, func(i, j int) bool {
		return public[i].CreatedAt.After(public[j].CreatedAt)
	})

	unread, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Items:       items,
		Claims:      claims,
		ItemClaims:  itemClaims,
		PublicItems: public,
		UnreadCount: unread,
		GeneratedAt: now,
	}
	s.cache.Set(cacheKey(userID), d, now)
	return d, nil
}

func (s *service) Invalidate(userIDs ...string) {
	keys := make([]string, 0, len(userIDs))
	for _, uid := range userIDs {
		keys = append(keys, cacheKey(uid))
	}
	s.cache.Invalidate(keys...)
}

func (s *service) InvalidateAll() {
	s.cache.InvalidateAll()
}
