package http

import (
	"context"
	"io"
	"time"

	"github.com/lostfound-api/internal/domain"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}

// SessionRepository is the minimal interface the router requires from a session store.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
	SoftDeleteByUser(ctx context.Context, userID string) error
}

// ItemRepository is the minimal interface the router requires from an item store.
type ItemRepository interface {
	Put(ctx context.Context, it *domain.Item) error
	Get(ctx context.Context, itemID string) (*domain.Item, error)
	Update(ctx context.Context, itemID string, updates map[string]interface{}) error
	// UpdateStatusIf performs a conditional write and fails with
	// domain.ErrConflict when the current status differs from expectedStatus.
	UpdateStatusIf(ctx context.Context, itemID, expectedStatus, newStatus string) error
	HardDelete(ctx context.Context, itemID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Item, error)
	Scan(ctx context.Context, f domain.ItemFilter) ([]domain.Item, error)
}

// ClaimRepository is the minimal interface the router requires from a claim store.
type ClaimRepository interface {
	Put(ctx context.Context, c *domain.Claim) error
	Get(ctx context.Context, claimID string) (*domain.Claim, error)
	Update(ctx context.Context, claimID string, updates map[string]interface{}) error
	MarkRejected(ctx context.Context, claimID string, respondedAt time.Time) error
	HardDelete(ctx context.Context, claimID string) error
	ListByItem(ctx context.Context, itemID string) ([]domain.Claim, error)
	ListByClaimer(ctx context.Context, claimerID string) ([]domain.Claim, error)
}

// NotificationRepository is the minimal interface the router requires from a notification store.
type NotificationRepository interface {
	Put(ctx context.Context, n *domain.Notification) error
	BatchPut(ctx context.Context, ns []domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
}

// CategoryRepository is the minimal interface the router requires from a category store.
type CategoryRepository interface {
	Scan(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	Put(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, categoryID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, categoryID string) error
}

// ImageRepository is the minimal interface the router requires from an image store.
type ImageRepository interface {
	Put(ctx context.Context, img *domain.Image) error
	Get(ctx context.Context, imageID string) (*domain.Image, error)
	HardDelete(ctx context.Context, imageID string) error
}

// ObjectStore is the minimal interface the router requires from an object storage backend.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// EventPublisher pushes created notifications to the realtime feed.
type EventPublisher interface {
	PublishNotification(ctx context.Context, n *domain.Notification) error
}

// Mailer delivers transactional email.
type Mailer interface {
	SendEmail(to, subject, body string) error
}
