package claim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lostfound-api/internal/domain"
	"github.com/lostfound-api/internal/pkg/id"
	"github.com/lostfound-api/internal/pkg/validate"
)

// Notification copy. The approval body carries the owner's contact email so
// the claimer can arrange the handover.
const (
	titleNewClaim      = "New claim on your item"
	titleClaimApproved = "Claim approved"
	titleClaimRejected = "Claim rejected"
	titleItemReunited  = "Item reunited"
)

type Service interface {
	// Submit creates a pending claim on an item. The item's status is not
	// touched; the item owner is notified.
	Submit(ctx context.Context, itemID string, claimer domain.Actor, req domain.SubmitClaimRequest) (*domain.Claim, error)
	// Respond approves or rejects a pending claim. Only the item owner may
	// respond. Approval marks the item claimed and cascade-rejects every
	// other pending claim on it.
	Respond(ctx context.Context, claimID, requesterID, decision string) (*domain.Claim, error)
	// Remove deletes the requester's own claim and reverts the item's status
	// when the removed claim was the last approved one.
	Remove(ctx context.Context, claimID, requesterID string) error
	// MarkReunited notifies every claimer, purges all claims on the item and
	// deletes the item itself. Terminal and irreversible.
	MarkReunited(ctx context.Context, itemID, claimID, requesterID string) error

	ListForItem(ctx context.Context, itemID, requesterID string) ([]domain.Claim, error)
	ListByClaimer(ctx context.Context, claimerID string) ([]domain.Claim, error)
}

type itemStore interface {
	Get(ctx context.Context, itemID string) (*domain.Item, error)
	// UpdateStatusIf must fail with domain.ErrConflict when the item's status
	// no longer equals expectedStatus. Racing approvals serialize on it.
	UpdateStatusIf(ctx context.Context, itemID, expectedStatus, newStatus string) error
	HardDelete(ctx context.Context, itemID string) error
}

type claimStore interface {
	Put(ctx context.Context, c *domain.Claim) error
	Get(ctx context.Context, claimID string) (*domain.Claim, error)
	Update(ctx context.Context, claimID string, updates map[string]interface{}) error
	MarkRejected(ctx context.Context, claimID string, respondedAt time.Time) error
	HardDelete(ctx context.Context, claimID string) error
	ListByItem(ctx context.Context, itemID string) ([]domain.Claim, error)
	ListByClaimer(ctx context.Context, claimerID string) ([]domain.Claim, error)
}

type notificationSender interface {
	Create(ctx context.Context, userID, title, body string) (*domain.Notification, error)
	CreateBatch(ctx context.Context, userIDs []string, title, body string) error
}

type mailSender interface {
	SendEmail(to, subject, body string) error
}

// projectionCache lets the engine drop stale dashboard projections after a
// mutation so the next read hits the authoritative store.
type projectionCache interface {
	Invalidate(userIDs ...string)
	InvalidateAll()
}

// Claim status and response-time attribute names in the claims table.
const (
	fieldStatus      = "status"
	fieldRespondedAt = "responded_at"
)

type service struct {
	items         itemStore
	claims        claimStore
	notifications notificationSender
	mailer        mailSender
	projections   projectionCache
	now           func() time.Time
}

type ServiceDeps struct {
	ItemRepo        itemStore
	ClaimRepo       claimStore
	NotificationSvc notificationSender
	Mailer          mailSender
	ProjectionCache projectionCache
}

func NewService(deps ServiceDeps) Service {
	return &service{
		items:         deps.ItemRepo,
		claims:        deps.ClaimRepo,
		notifications: deps.NotificationSvc,
		mailer:        deps.Mailer,
		projections:   deps.ProjectionCache,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Submit(ctx context.Context, itemID string, claimer domain.Actor, req domain.SubmitClaimRequest) (*domain.Claim, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}

	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID == claimer.ID {
		return nil, fmt.Errorf("cannot claim your own item: %w", domain.ErrForbidden)
	}
	if item.Status == domain.ItemStatusClaimed {
		return nil, fmt.Errorf("item is already claimed: %w", domain.ErrConflict)
	}

	// The store does not enforce the one-active-claim rule; this check is the
	// only place it exists.
	existing, err := s.claims.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].ClaimerID == claimer.ID && existing[i].Active() {
			return nil, fmt.Errorf("you already have an active claim on this item: %w", domain.ErrConflict)
		}
	}

	c := &domain.Claim{
		ClaimID:           id.New(),
		ItemID:            itemID,
		ClaimerID:         claimer.ID,
		ClaimerEmail:      claimer.Email,
		ClaimerName:       claimer.Name,
		Reason:            validate.Sanitize(req.Reason),
		UniqueIdentifiers: validate.Sanitize(req.UniqueIdentifiers),
		Status:            domain.ClaimStatusPending,
		CreatedAt:         s.now(),
	}
	if err := s.claims.Put(ctx, c); err != nil {
		return nil, err
	}

	s.notify(ctx, item.UserID, titleNewClaim,
		fmt.Sprintf("%s claimed “%s”.", claimer.Name, item.Title))
	s.projections.Invalidate(item.UserID, claimer.ID)
	return c, nil
}

func (s *service) Respond(ctx context.Context, claimID, requesterID, decision string) (*domain.Claim, error) {
	if decision != domain.ClaimStatusApproved && decision != domain.ClaimStatusRejected {
		return nil, fmt.Errorf("decision must be approved or rejected: %w", domain.ErrBadRequest)
	}

	c, err := s.claims.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.Get(ctx, c.ItemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != requesterID {
		return nil, fmt.Errorf("only the item owner may respond to claims: %w", domain.ErrForbidden)
	}
	if c.Status != domain.ClaimStatusPending {
		return nil, fmt.Errorf("claim already resolved: %w", domain.ErrConflict)
	}

	if decision == domain.ClaimStatusRejected {
		return s.reject(ctx, c, item)
	}
	return s.approve(ctx, c, item)
}

// reject deletes the claim outright and tells the claimer.
func (s *service) reject(ctx context.Context, c *domain.Claim, item *domain.Item) (*domain.Claim, error) {
	if err := s.claims.HardDelete(ctx, c.ClaimID); err != nil {
		return nil, err
	}
	now := s.now()
	c.Status = domain.ClaimStatusRejected
	c.RespondedAt = &now

	s.notify(ctx, c.ClaimerID, titleClaimRejected,
		fmt.Sprintf("Your claim on “%s” was rejected by the owner.", item.Title))
	s.projections.Invalidate(item.UserID, c.ClaimerID)
	return c, nil
}

// approve applies the four-step transition. The conditional item write runs
// first: it is the serialization point, so a racing approval loses with
// ErrConflict before any claim state has changed. Failures after that point
// surface as ErrInconsistent and must not be reported as success.
func (s *service) approve(ctx context.Context, c *domain.Claim, item *domain.Item) (*domain.Claim, error) {
	if err := s.items.UpdateStatusIf(ctx, item.ItemID, item.Type, domain.ItemStatusClaimed); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.claims.Update(ctx, c.ClaimID, map[string]interface{}{
		fieldStatus:      domain.ClaimStatusApproved,
		fieldRespondedAt: now.Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("item %s marked claimed but claim %s not approved: %v: %w",
			item.ItemID, c.ClaimID, err, domain.ErrInconsistent)
	}
	c.Status = domain.ClaimStatusApproved
	c.RespondedAt = &now

	siblings, err := s.claims.ListByItem(ctx, c.ItemID)
	if err != nil {
		return nil, fmt.Errorf("claim %s approved but siblings not listed: %v: %w", c.ClaimID, err, domain.ErrInconsistent)
	}
	rejected := make([]string, 0, len(siblings))
	for i := range siblings {
		sib := &siblings[i]
		if sib.ClaimID == c.ClaimID || sib.Status != domain.ClaimStatusPending {
			continue
		}
		if err := s.claims.MarkRejected(ctx, sib.ClaimID, now); err != nil {
			return nil, fmt.Errorf("claim %s approved but sibling %s not rejected: %v: %w",
				c.ClaimID, sib.ClaimID, err, domain.ErrInconsistent)
		}
		rejected = append(rejected, sib.ClaimerID)
	}

	for _, claimerID := range rejected {
		s.notify(ctx, claimerID, titleClaimRejected,
			fmt.Sprintf("Your claim on “%s” was rejected: another claim was approved.", item.Title))
	}
	s.notify(ctx, c.ClaimerID, titleClaimApproved,
		fmt.Sprintf("Your claim on “%s” was approved. Contact %s to arrange the handover.",
			item.Title, item.ContactEmail))

	if s.mailer != nil {
		if err := s.mailer.SendEmail(c.ClaimerEmail, titleClaimApproved,
			fmt.Sprintf("Your claim on %q was approved. The owner can be reached at %s.",
				item.Title, item.ContactEmail)); err != nil {
			slog.Warn("approval email not sent", "claim_id", c.ClaimID, "err", err)
		}
	}

	// Item status changed: every browse projection is stale now.
	s.projections.InvalidateAll()
	return c, nil
}

func (s *service) Remove(ctx context.Context, claimID, requesterID string) error {
	c, err := s.claims.Get(ctx, claimID)
	if err != nil {
		return err
	}
	if c.ClaimerID != requesterID {
		return fmt.Errorf("only the claimer may remove their claim: %w", domain.ErrForbidden)
	}
	if err := s.claims.HardDelete(ctx, claimID); err != nil {
		return err
	}

	if c.Status == domain.ClaimStatusApproved {
		if err := s.revertIfUnclaimed(ctx, c.ItemID); err != nil {
			return err
		}
		s.projections.InvalidateAll()
		return nil
	}
	s.projections.Invalidate(requesterID)
	return nil
}

// revertIfUnclaimed puts a claimed item back to its reporting type when no
// approved claim remains. An item must never stay claimed with zero approved
// claims outstanding.
func (s *service) revertIfUnclaimed(ctx context.Context, itemID string) error {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return fmt.Errorf("claim removed but item %s not re-read: %v: %w", itemID, err, domain.ErrInconsistent)
	}
	if item.Status != domain.ItemStatusClaimed {
		return nil
	}
	remaining, err := s.claims.ListByItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("claim removed but remaining claims not listed: %v: %w", err, domain.ErrInconsistent)
	}
	for i := range remaining {
		if remaining[i].Status == domain.ClaimStatusApproved {
			return nil
		}
	}
	if err := s.items.UpdateStatusIf(ctx, itemID, domain.ItemStatusClaimed, item.Type); err != nil {
		return fmt.Errorf("claim removed but item %s not reverted: %v: %w", itemID, err, domain.ErrInconsistent)
	}
	return nil
}

func (s *service) MarkReunited(ctx context.Context, itemID, claimID, requesterID string) error {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return err
	}
	if item.UserID != requesterID {
		return fmt.Errorf("only the item owner may mark it reunited: %w", domain.ErrForbidden)
	}
	c, err := s.claims.Get(ctx, claimID)
	if err != nil {
		return err
	}
	if c.ItemID != itemID {
		return fmt.Errorf("claim does not reference this item: %w", domain.ErrBadRequest)
	}

	all, err := s.claims.ListByItem(ctx, itemID)
	if err != nil {
		return err
	}

	recipients := make([]string, 0, len(all))
	seen := make(map[string]bool, len(all))
	for i := range all {
		if !seen[all[i].ClaimerID] {
			seen[all[i].ClaimerID] = true
			recipients = append(recipients, all[i].ClaimerID)
		}
	}
	if err := s.notifications.CreateBatch(ctx, recipients, titleItemReunited,
		fmt.Sprintf("“%s” has been reunited with its owner and is no longer available.", item.Title)); err != nil {
		slog.Warn("reunited notifications not delivered", "item_id", itemID, "err", err)
	}

	if s.mailer != nil {
		mailed := make(map[string]bool, len(all))
		for i := range all {
			email := all[i].ClaimerEmail
			if email == "" || mailed[email] {
				continue
			}
			mailed[email] = true
			if err := s.mailer.SendEmail(email, titleItemReunited,
				fmt.Sprintf("%q has been reunited with its owner and is no longer available.", item.Title)); err != nil {
				slog.Warn("reunited email not sent", "item_id", itemID, "err", err)
			}
		}
	}

	for i := range all {
		if err := s.claims.HardDelete(ctx, all[i].ClaimID); err != nil {
			return fmt.Errorf("reunite of item %s left claim %s behind: %v: %w",
				itemID, all[i].ClaimID, err, domain.ErrInconsistent)
		}
	}
	if err := s.items.HardDelete(ctx, itemID); err != nil {
		return fmt.Errorf("reunite purged claims but item %s remains: %v: %w", itemID, err, domain.ErrInconsistent)
	}

	s.projections.InvalidateAll()
	return nil
}

func (s *service) ListForItem(ctx context.Context, itemID, requesterID string) ([]domain.Claim, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != requesterID {
		return nil, fmt.Errorf("only the item owner may list its claims: %w", domain.ErrForbidden)
	}
	return s.claims.ListByItem(ctx, itemID)
}

func (s *service) ListByClaimer(ctx context.Context, claimerID string) ([]domain.Claim, error) {
	return s.claims.ListByClaimer(ctx, claimerID)
}

// notify records a notification; delivery problems are logged, never fatal.
func (s *service) notify(ctx context.Context, userID, title, body string) {
	if _, err := s.notifications.Create(ctx, userID, title, body); err != nil {
		slog.Warn("notification not delivered", "user_id", userID, "title", title, "err", err)
	}
}
