package user

import (
	"context"
	"errors"
	"testing"

	"github.com/lostfound-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) SoftDelete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *mockUserStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	if us, _ := args.Get(0).([]domain.User); us != nil {
		return us, args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) SoftDeleteByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// --- helpers ---

func newSvc(us *mockUserStore, ss *mockSessionStore) Service {
	return NewService(ServiceDeps{UserRepo: us, SessionRepo: ss})
}

// --- Register tests ---

func TestRegister_HashesPasswordAndDefaultsRole(t *testing.T) {
	us, ss := &mockUserStore{}, &mockSessionStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	u, err := newSvc(us, ss).Register(context.Background(), domain.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "s3cretpass",
		Name:     "Alice",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.True(t, u.Enable)
	assert.NotEqual(t, "s3cretpass", u.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cretpass")))
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	us, ss := &mockUserStore{}, &mockSessionStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{UserID: "u1"}, nil)

	_, err := newSvc(us, ss).Register(context.Background(), domain.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "s3cretpass",
		Name:     "Alice",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_ShortPasswordBadRequest(t *testing.T) {
	us, ss := &mockUserStore{}, &mockSessionStore{}

	_, err := newSvc(us, ss).Register(context.Background(), domain.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "short",
		Name:     "Alice",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestRegister_NameSanitized(t *testing.T) {
	us, ss := &mockUserStore{}, &mockSessionStore{}
	us.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	u, err := newSvc(us, ss).Register(context.Background(), domain.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "s3cretpass",
		Name:     "Alice<script>",
	})

	require.NoError(t, err)
	assert.Equal(t, "Alicescript", u.Name)
}

// --- Update tests ---

func TestUpdate_EmailTakenByOtherUserConflict(t *testing.T) {
	us, ss := &mockUserStore{}, &mockSessionStore{}
	us.On("GetByEmail", mock.Anything, "taken@example.com").Return(&domain.User{UserID: "u2"}, nil)

	email := "taken@example.com"
	_, err := newSvc(us, ss).Update(context.Background(), "u1", domain.UpdateUserRequest{Email: &email})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUpdate_SameUserKeepsOwnEmail(t *testing.T) {
	us, ss := &mockUserStore{}, &mockSessionStore{}
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{UserID: "u1"}, nil)
	us.On("Update", mock.Anything, "u1", mock.Anything).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	email := "alice@example.com"
	_, err := newSvc(us, ss).Update(context.Background(), "u1", domain.UpdateUserRequest{Email: &email})

	require.NoError(t, err)
}

func TestUpdate_NoFieldsReturnsCurrentUser(t *testing.T) {
	us, ss := &mockUserStore{}, &mockSessionStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	u, err := newSvc(us, ss).Update(context.Background(), "u1", domain.UpdateUserRequest{})

	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// --- Delete tests ---

func TestDelete_DisablesUserAndSessions(t *testing.T) {
	us, ss := &mockUserStore{}, &mockSessionStore{}
	us.On("SoftDelete", mock.Anything, "u1").Return(nil)
	ss.On("SoftDeleteByUser", mock.Anything, "u1").Return(nil)

	err := newSvc(us, ss).Delete(context.Background(), "u1")

	require.NoError(t, err)
	ss.AssertCalled(t, "SoftDeleteByUser", mock.Anything, "u1")
}

// --- ChangePassword tests ---

func TestChangePassword_WrongCurrentUnauthorized(t *testing.T) {
	us, ss := &mockUserStore{}, &mockSessionStore{}
	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.DefaultCost)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)

	err := newSvc(us, ss).ChangePassword(context.Background(), "u1", "wrongpass", "newsecret")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_Success(t *testing.T) {
	us, ss := &mockUserStore{}, &mockSessionStore{}
	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.DefaultCost)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)
	us.On("Update", mock.Anything, "u1", mock.Anything).Return(nil)

	err := newSvc(us, ss).ChangePassword(context.Background(), "u1", "rightpass", "newsecret")

	require.NoError(t, err)
	us.AssertCalled(t, "Update", mock.Anything, "u1", mock.Anything)
}

// --- SetRole tests ---

func TestSetRole_InvalidRoleBadRequest(t *testing.T) {
	us, ss := &mockUserStore{}, &mockSessionStore{}

	_, err := newSvc(us, ss).SetRole(context.Background(), "u1", "superadmin")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}
