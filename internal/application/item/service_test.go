package item

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lostfound-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockItemStore struct{ mock.Mock }

func (m *mockItemStore) Put(ctx context.Context, it *domain.Item) error {
	return m.Called(ctx, it).Error(0)
}
func (m *mockItemStore) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	args := m.Called(ctx, itemID)
	if it, _ := args.Get(0).(*domain.Item); it != nil {
		return it, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockItemStore) Update(ctx context.Context, itemID string, updates map[string]interface{}) error {
	return m.Called(ctx, itemID, updates).Error(0)
}
func (m *mockItemStore) HardDelete(ctx context.Context, itemID string) error {
	return m.Called(ctx, itemID).Error(0)
}
func (m *mockItemStore) ListByUser(ctx context.Context, userID string) ([]domain.Item, error) {
	args := m.Called(ctx, userID)
	if items, _ := args.Get(0).([]domain.Item); items != nil {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockItemStore) Scan(ctx context.Context, f domain.ItemFilter) ([]domain.Item, error) {
	args := m.Called(ctx, f)
	if items, _ := args.Get(0).([]domain.Item); items != nil {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockClaimStore struct{ mock.Mock }

func (m *mockClaimStore) ListByItem(ctx context.Context, itemID string) ([]domain.Claim, error) {
	args := m.Called(ctx, itemID)
	if cs, _ := args.Get(0).([]domain.Claim); cs != nil {
		return cs, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockClaimStore) HardDelete(ctx context.Context, claimID string) error {
	return m.Called(ctx, claimID).Error(0)
}

type mockProjections struct{ mock.Mock }

func (m *mockProjections) Invalidate(userIDs ...string) { m.Called(userIDs) }
func (m *mockProjections) InvalidateAll()               { m.Called() }

// --- helpers ---

func newSvc(is *mockItemStore, cs *mockClaimStore, pc *mockProjections) Service {
	return NewService(ServiceDeps{ItemRepo: is, ClaimRepo: cs, ProjectionCache: pc})
}

func validCreateReq() domain.CreateItemRequest {
	return domain.CreateItemRequest{
		Title:         "Blue Backpack",
		Description:   "Has a laptop sticker on the front",
		Category:      "bags",
		Location:      "Central Library",
		DateLostFound: "2026-08-20",
		Type:          domain.ItemTypeLost,
		ContactEmail:  "alice@example.com",
	}
}

func storedItem() *domain.Item {
	return &domain.Item{
		ItemID:   "item-1",
		Title:    "Blue Backpack",
		Type:     domain.ItemTypeLost,
		Status:   domain.ItemStatusLost,
		UserID:   "owner-1",
		Category: "bags",
	}
}

// --- Create tests ---

func TestCreate_StatusStartsEqualToType(t *testing.T) {
	is, cs, pc := &mockItemStore{}, &mockClaimStore{}, &mockProjections{}
	is.On("Put", mock.Anything, mock.AnythingOfType("*domain.Item")).Return(nil)
	pc.On("InvalidateAll").Return()

	owner := domain.Actor{ID: "owner-1", Email: "alice@example.com", Name: "Alice"}
	req := validCreateReq()
	req.Type = domain.ItemTypeFound

	it, err := newSvc(is, cs, pc).Create(context.Background(), owner, req)

	require.NoError(t, err)
	assert.Equal(t, domain.ItemTypeFound, it.Type)
	assert.Equal(t, domain.ItemStatusFound, it.Status)
	assert.Equal(t, "owner-1", it.UserID)
	assert.NotEmpty(t, it.ItemID)
	assert.Equal(t, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), it.DateLostFound)
}

func TestCreate_MostlyNumericTitleRejected(t *testing.T) {
	is, cs, pc := &mockItemStore{}, &mockClaimStore{}, &mockProjections{}

	req := validCreateReq()
	req.Title = "12345678a"

	_, err := newSvc(is, cs, pc).Create(context.Background(), domain.Actor{ID: "owner-1"}, req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	is.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCreate_FutureDateRejected(t *testing.T) {
	is, cs, pc := &mockItemStore{}, &mockClaimStore{}, &mockProjections{}

	req := validCreateReq()
	req.DateLostFound = time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")

	_, err := newSvc(is, cs, pc).Create(context.Background(), domain.Actor{ID: "owner-1"}, req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_RestrictedLocationCharsRejected(t *testing.T) {
	is, cs, pc := &mockItemStore{}, &mockClaimStore{}, &mockProjections{}

	req := validCreateReq()
	req.Location = "Library <script>"

	_, err := newSvc(is, cs, pc).Create(context.Background(), domain.Actor{ID: "owner-1"}, req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_InvalidTypeRejected(t *testing.T) {
	is, cs, pc := &mockItemStore{}, &mockClaimStore{}, &mockProjections{}

	req := validCreateReq()
	req.Type = "misplaced"

	_, err := newSvc(is, cs, pc).Create(context.Background(), domain.Actor{ID: "owner-1"}, req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- List tests ---

func TestList_SearchMatchesTitleCaseInsensitive(t *testing.T) {
	is, cs, pc := &mockItemStore{}, &mockClaimStore{}, &mockProjections{}

	a := *storedItem()
	b := *storedItem()
	b.ItemID = "item-2"
	b.Title = "Red Umbrella"
	is.On("Scan", mock.Anything, mock.Anything).Return([]domain.Item{a, b}, nil)

	items, err := newSvc(is, cs, pc).List(context.Background(), domain.ItemFilter{Search: "BACKPACK"})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "item-1", items[0].ItemID)
}

func TestList_NewestFirst(t *testing.T) {
	is, cs, pc := &mockItemStore{}, &mockClaimStore{}, &mockProjections{}

	old := *storedItem()
	old.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := *storedItem()
	recent.ItemID = "item-2"
	recent.CreatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	is.On("Scan", mock.Anything, mock.Anything).Return([]domain.Item{old, recent}, nil)

	items, err := newSvc(is, cs, pc).List(context.Background(), domain.ItemFilter{})

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "item-2", items[0].ItemID)
}

// --- Update tests ---

func TestUpdate_NonOwnerForbidden(t *testing.T) {
	is, cs, pc := &mockItemStore{}, &mockClaimStore{}, &mockProjections{}

	is.On("Get", mock.Anything, "item-1").Return(storedItem(), nil)

	title := "New Title"
	_, err := newSvc(is, cs, pc).Update(context.Background(), "item-1", "stranger",
		domain.UpdateItemRequest{Title: &title})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	is.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_ClaimedItemConflict(t *testing.T) {
	is, cs, pc := &mockItemStore{}, &mockClaimStore{}, &mockProjections{}

	it := storedItem()
	it.Status = domain.ItemStatusClaimed
	is.On("Get", mock.Anything, "item-1").Return(it, nil)

	title := "New Title"
	_, err := newSvc(is, cs, pc).Update(context.Background(), "item-1", "owner-1",
		domain.UpdateItemRequest{Title: &title})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUpdate_PartialUpdateOnlySendsChangedFields(t *testing.T) {
	is, cs, pc := &mockItemStore{}, &mockClaimStore{}, &mockProjections{}

	is.On("Get", mock.Anything, "item-1").Return(storedItem(), nil)
	is.On("Update", mock.Anything, "item-1", map[string]interface{}{fieldTitle: "Navy Backpack"}).Return(nil)
	pc.On("InvalidateAll").Return()

	title := "Navy Backpack"
	_, err := newSvc(is, cs, pc).Update(context.Background(), "item-1", "owner-1",
		domain.UpdateItemRequest{Title: &title})

	require.NoError(t, err)
	is.AssertExpectations(t)
}

func TestUpdate_NoFieldsReturnsCurrentItem(t *testing.T) {
	is, cs, pc := &mockItemStore{}, &mockClaimStore{}, &mockProjections{}

	is.On("Get", mock.Anything, "item-1").Return(storedItem(), nil)

	it, err := newSvc(is, cs, pc).Update(context.Background(), "item-1", "owner-1", domain.UpdateItemRequest{})

	require.NoError(t, err)
	assert.Equal(t, "item-1", it.ItemID)
	is.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// --- Delete tests ---

func TestDelete_PurgesClaimsThenItem(t *testing.T) {
	is, cs, pc := &mockItemStore{}, &mockClaimStore{}, &mockProjections{}

	is.On("Get", mock.Anything, "item-1").Return(storedItem(), nil)
	cs.On("ListByItem", mock.Anything, "item-1").Return([]domain.Claim{
		{ClaimID: "claim-1"}, {ClaimID: "claim-2"},
	}, nil)
	cs.On("HardDelete", mock.Anything, "claim-1").Return(nil)
	cs.On("HardDelete", mock.Anything, "claim-2").Return(nil)
	is.On("HardDelete", mock.Anything, "item-1").Return(nil)
	pc.On("InvalidateAll").Return()

	err := newSvc(is, cs, pc).Delete(context.Background(), "item-1", "owner-1")

	require.NoError(t, err)
	cs.AssertExpectations(t)
	is.AssertCalled(t, "HardDelete", mock.Anything, "item-1")
}

func TestDelete_NonOwnerForbidden(t *testing.T) {
	is, cs, pc := &mockItemStore{}, &mockClaimStore{}, &mockProjections{}

	is.On("Get", mock.Anything, "item-1").Return(storedItem(), nil)

	err := newSvc(is, cs, pc).Delete(context.Background(), "item-1", "stranger")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestDelete_ClaimDeleteFailureIsInconsistent(t *testing.T) {
	is, cs, pc := &mockItemStore{}, &mockClaimStore{}, &mockProjections{}

	is.On("Get", mock.Anything, "item-1").Return(storedItem(), nil)
	cs.On("ListByItem", mock.Anything, "item-1").Return([]domain.Claim{{ClaimID: "claim-1"}}, nil)
	cs.On("HardDelete", mock.Anything, "claim-1").Return(errors.New("dynamo down"))

	err := newSvc(is, cs, pc).Delete(context.Background(), "item-1", "owner-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInconsistent))
	is.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
}
