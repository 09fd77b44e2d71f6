package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lostfound-api/internal/domain"
	"github.com/lostfound-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, userID, title, body string) (*domain.Notification, error)
	// CreateBatch writes one notification per user in a single batch.
	CreateBatch(ctx context.Context, userIDs []string, title, body string) error
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, notificationID, requesterID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	BatchPut(ctx context.Context, ns []domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
}

// eventPublisher pushes created notifications onto the realtime feed.
// A nil publisher disables the feed; persistence is unaffected.
type eventPublisher interface {
	PublishNotification(ctx context.Context, n *domain.Notification) error
}

type service struct {
	repo      notificationStore
	publisher eventPublisher
	now       func() time.Time
}

type ServiceDeps struct {
	NotificationRepo notificationStore
	Publisher        eventPublisher
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:      deps.NotificationRepo,
		publisher: deps.Publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, userID, title, body string) (*domain.Notification, error) {
	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         userID,
		Title:          title,
		Body:           body,
		Read:           0,
		CreatedAt:      s.now(),
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}
	s.publish(ctx, n)
	return n, nil
}

func (s *service) CreateBatch(ctx context.Context, userIDs []string, title, body string) error {
	if len(userIDs) == 0 {
		return nil
	}
	now := s.now()
	ns := make([]domain.Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		ns = append(ns, domain.Notification{
			NotificationID: id.New(),
			UserID:         uid,
			Title:          title,
			Body:           body,
			Read:           0,
			CreatedAt:      now,
		})
	}
	if err := s.repo.BatchPut(ctx, ns); err != nil {
		return err
	}
	for i := range ns {
		s.publish(ctx, &ns[i])
	}
	return nil
}

func (s *service) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	if unreadOnly {
		return s.repo.ListUnread(ctx, userID)
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	unread, err := s.repo.ListUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

func (s *service) MarkRead(ctx context.Context, notificationID, requesterID string) error {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != requesterID {
		return fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	if n.Read == 1 {
		return nil
	}
	return s.repo.MarkAsRead(ctx, notificationID)
}

func (s *service) MarkAllRead(ctx context.Context, userID string) error {
	unread, err := s.repo.ListUnread(ctx, userID)
	if err != nil {
		return err
	}
	for i := range unread {
		if err := s.repo.MarkAsRead(ctx, unread[i].NotificationID); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) publish(ctx context.Context, n *domain.Notification) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishNotification(ctx, n); err != nil {
		slog.Warn("notification not published to feed", "notification_id", n.NotificationID, "err", err)
	}
}
