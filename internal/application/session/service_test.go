package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lostfound-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return m.Called(ctx, sessionID, newToken, newExpiry).Error(0)
}
func (m *mockSessionStore) Update(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	return m.Called(ctx, sessionID, updates).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, email, name, role, sessionID string) (string, error) {
	args := m.Called(userID, email, name, role, sessionID)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func newSvc(us *mockUserStore, ss *mockSessionStore, jwt *mockJWTSigner) Service {
	return NewService(ServiceDeps{
		UserRepo:        us,
		SessionRepo:     ss,
		JWTProvider:     jwt,
		RefreshTokenDur: 24 * time.Hour,
	})
}

func enabledUser() *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	return &domain.User{
		UserID:       "user-1",
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Enable:       true,
	}
}

// --- Login tests ---

func TestLogin_Success(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}

	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(enabledUser(), nil)
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	jwt.On("Sign", "user-1", "alice@example.com", "Alice", domain.RoleUser, mock.Anything).Return("bearer", nil)

	result, err := newSvc(us, ss, jwt).Login(context.Background(), "alice@example.com", "s3cretpass")

	require.NoError(t, err)
	assert.Equal(t, "bearer", result.Bearer)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "user-1", result.Session.UserID)
	assert.Equal(t, "Alice", result.Session.User.Name)
}

func TestLogin_UnknownEmailUnauthorized(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}

	us.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	_, err := newSvc(us, ss, jwt).Login(context.Background(), "ghost@example.com", "whatever")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_WrongPasswordUnauthorized(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}

	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(enabledUser(), nil)

	_, err := newSvc(us, ss, jwt).Login(context.Background(), "alice@example.com", "wrongpass")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	ss.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestLogin_DisabledAccountUnauthorized(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}

	u := enabledUser()
	u.Enable = false
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(u, nil)

	_, err := newSvc(us, ss, jwt).Login(context.Background(), "alice@example.com", "s3cretpass")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// --- Refresh tests ---

func activeSession() *domain.Session {
	return &domain.Session{
		SessionID:        "sess-1",
		UserID:           "user-1",
		Enable:           true,
		RefreshToken:     "old-token",
		RefreshExpiresAt: time.Now().UTC().Add(time.Hour).Unix(),
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}

	ss.On("GetByRefreshToken", mock.Anything, "old-token").Return(activeSession(), nil)
	us.On("Get", mock.Anything, "user-1").Return(enabledUser(), nil)
	ss.On("RotateRefreshToken", mock.Anything, "sess-1", mock.Anything, mock.Anything).Return(nil)
	jwt.On("Sign", "user-1", "alice@example.com", "Alice", domain.RoleUser, "sess-1").Return("new-bearer", nil)

	result, err := newSvc(us, ss, jwt).Refresh(context.Background(), "old-token")

	require.NoError(t, err)
	assert.Equal(t, "new-bearer", result.Bearer)
	assert.NotEqual(t, "old-token", result.RefreshToken)
	ss.AssertCalled(t, "RotateRefreshToken", mock.Anything, "sess-1", mock.Anything, mock.Anything)
}

func TestRefresh_ExpiredTokenUnauthorized(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}

	sess := activeSession()
	sess.RefreshExpiresAt = time.Now().UTC().Add(-time.Hour).Unix()
	ss.On("GetByRefreshToken", mock.Anything, "old-token").Return(sess, nil)

	_, err := newSvc(us, ss, jwt).Refresh(context.Background(), "old-token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	ss.AssertNotCalled(t, "RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefresh_ClosedSessionUnauthorized(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}

	sess := activeSession()
	sess.Enable = false
	ss.On("GetByRefreshToken", mock.Anything, "old-token").Return(sess, nil)

	_, err := newSvc(us, ss, jwt).Refresh(context.Background(), "old-token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestRefresh_UnknownTokenUnauthorized(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}

	ss.On("GetByRefreshToken", mock.Anything, "bogus").Return(nil, domain.ErrNotFound)

	_, err := newSvc(us, ss, jwt).Refresh(context.Background(), "bogus")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// --- GetCurrent tests ---

func TestGetCurrent_AttachesUser(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}

	ss.On("Get", mock.Anything, "sess-1").Return(activeSession(), nil)
	us.On("Get", mock.Anything, "user-1").Return(enabledUser(), nil)

	sess, err := newSvc(us, ss, jwt).GetCurrent(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "sess-1", sess.SessionID)
	assert.Equal(t, "Alice", sess.User.Name)
}

func TestGetCurrent_ClosedSessionUnauthorized(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}

	sess := activeSession()
	sess.Enable = false
	ss.On("Get", mock.Anything, "sess-1").Return(sess, nil)

	_, err := newSvc(us, ss, jwt).GetCurrent(context.Background(), "sess-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	us.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

// --- Logout tests ---

func TestLogout_DisablesSession(t *testing.T) {
	us, ss, jwt := &mockUserStore{}, &mockSessionStore{}, &mockJWTSigner{}

	ss.On("Update", mock.Anything, "sess-1", map[string]interface{}{"enable": false}).Return(nil)

	err := newSvc(us, ss, jwt).Logout(context.Background(), "sess-1")

	require.NoError(t, err)
	ss.AssertExpectations(t)
}
