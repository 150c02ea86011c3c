package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rajasekharstrikes1/society-pay/domain"
)

type fakeUserStore struct {
	users map[string]*domain.User
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) Upsert(_ context.Context, user *domain.User) error {
	f.users[user.ID] = user
	return nil
}

type fakeSessionStore struct {
	sessions map[string]*domain.Session
	extended map[string]int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: make(map[string]*domain.Session),
		extended: make(map[string]int),
	}
}

func (f *fakeSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeSessionStore) Save(_ context.Context, session *domain.Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionStore) Extend(_ context.Context, id string, ttlSeconds int) error {
	if _, ok := f.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	f.extended[id] = ttlSeconds
	return nil
}

func newAuthFixture() (*UseCase, *fakeUserStore, *fakeSessionStore) {
	users := &fakeUserStore{users: map[string]*domain.User{
		"user_1": {
			ID:          "user_1",
			Email:       "admin@greenmeadows.in",
			Role:        domain.RoleCommunityAdmin,
			Status:      "active",
			CommunityID: "comm_1",
		},
		"user_blocked": {
			ID:     "user_blocked",
			Role:   domain.RoleCommunityAdmin,
			Status: "suspended",
		},
	}}
	sessions := newFakeSessionStore()
	return New(users, sessions, zap.NewNop()), users, sessions
}

func TestCreateSession(t *testing.T) {
	uc, _, sessions := newAuthFixture()

	session, err := uc.CreateSession(context.Background(), "user_1", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "user_1", session.UserID)
	assert.Equal(t, domain.RoleCommunityAdmin, session.Metadata["role"])
	assert.Equal(t, "comm_1", session.Metadata["community_id"])
	assert.Contains(t, sessions.sessions, session.ID)
}

func TestCreateSessionInactiveUser(t *testing.T) {
	uc, _, _ := newAuthFixture()

	_, err := uc.CreateSession(context.Background(), "user_blocked", time.Hour)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreateSessionUnknownUser(t *testing.T) {
	uc, _, _ := newAuthFixture()

	_, err := uc.CreateSession(context.Background(), "nobody", time.Hour)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetSessionDropsExpired(t *testing.T) {
	uc, _, sessions := newAuthFixture()
	sessions.sessions["sess_1"] = &domain.Session{
		ID:        "sess_1",
		UserID:    "user_1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	_, err := uc.GetSession(context.Background(), "sess_1")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.NotContains(t, sessions.sessions, "sess_1")
}

func TestRefreshSession(t *testing.T) {
	uc, _, sessions := newAuthFixture()
	sessions.sessions["sess_1"] = &domain.Session{
		ID:        "sess_1",
		UserID:    "user_1",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}

	session, err := uc.RefreshSession(context.Background(), "sess_1", 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 7200, sessions.extended["sess_1"])
	assert.True(t, session.ExpiresAt.After(time.Now().Add(time.Hour)))
}

func TestRevokeSession(t *testing.T) {
	uc, _, sessions := newAuthFixture()
	sessions.sessions["sess_1"] = &domain.Session{ID: "sess_1", UserID: "user_1"}

	require.NoError(t, uc.RevokeSession(context.Background(), "sess_1"))
	assert.Empty(t, sessions.sessions)
}
