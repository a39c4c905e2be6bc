package usecase

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mclrc/microblog/internal/config"
	"github.com/mclrc/microblog/internal/domain"
	"github.com/mclrc/microblog/internal/repository/memory"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Name == user.Name {
			return &domain.DuplicateError{Field: "username"}
		}
		if u.Email == user.Email {
			return &domain.DuplicateError{Field: "email"}
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.Name] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByName(name string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[name]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) DeleteByName(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, name)
	return nil
}

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "access-test-secret",
		RefreshSecret: "refresh-test-secret",
		AccessExpiry:  30 * time.Minute,
	}
}

func newTestAuthUsecase() (*AuthUsecase, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewAuthUsecase(repo, memory.NewTokenStore(), testJWTConfig()), repo
}

func TestHashPassword(t *testing.T) {
	assert.Equal(t, HashPassword("longpass1"), HashPassword("longpass1"))
	assert.NotEqual(t, HashPassword("longpass1"), HashPassword("longpass2"))
	// sha256 hex digest is always 64 characters
	assert.Len(t, HashPassword(""), 64)
}

func TestVerifyPassword(t *testing.T) {
	auth, _ := newTestAuthUsecase()
	_, _, err := auth.Register("alice", "a@a.com", "longpass1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		query    domain.UserQuery
		password string
		want     bool
	}{
		{"by name, correct", domain.UserQuery{Name: "alice"}, "longpass1", true},
		{"by name, wrong password", domain.UserQuery{Name: "alice"}, "wrong", false},
		{"by email, correct", domain.UserQuery{Email: "a@a.com"}, "longpass1", true},
		{"unknown user", domain.UserQuery{Name: "bob"}, "longpass1", false},
		{"empty query", domain.UserQuery{}, "longpass1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.VerifyPassword(tt.query, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	auth, _ := newTestAuthUsecase()

	token, err := auth.CreateAccessToken("alice", time.Minute)
	require.NoError(t, err)

	claims, err := auth.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestAccessTokenZeroTTLIsExpired(t *testing.T) {
	auth, _ := newTestAuthUsecase()

	token, err := auth.CreateAccessToken("alice", 0)
	require.NoError(t, err)

	_, err = auth.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessTokenRejectsGarbage(t *testing.T) {
	auth, _ := newTestAuthUsecase()

	for _, token := range []string{"", "garbage", "a.b.c", "ey.ey.ey"} {
		_, err := auth.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestRefreshIssuesTokenForSameUser(t *testing.T) {
	auth, _ := newTestAuthUsecase()

	refreshToken, err := auth.CreateRefreshToken("alice")
	require.NoError(t, err)

	accessToken, err := auth.Refresh(refreshToken, time.Minute)
	require.NoError(t, err)

	claims, err := auth.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestRefreshTokenNotRotatedByRefresh(t *testing.T) {
	auth, _ := newTestAuthUsecase()

	refreshToken, err := auth.CreateRefreshToken("alice")
	require.NoError(t, err)

	// The same refresh token stays valid for repeated use.
	for i := 0; i < 3; i++ {
		_, err := auth.Refresh(refreshToken, time.Minute)
		require.NoError(t, err)
	}
}

func TestRefreshSupersession(t *testing.T) {
	auth, _ := newTestAuthUsecase()

	first, err := auth.CreateRefreshToken("alice")
	require.NoError(t, err)
	second, err := auth.CreateRefreshToken("alice")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = auth.Refresh(first, time.Minute)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.Refresh(second, time.Minute)
	assert.NoError(t, err)
}

func TestRefreshRejectsMalformedAndForeignTokens(t *testing.T) {
	auth, _ := newTestAuthUsecase()

	// A structurally valid token signed with the wrong key must fail the
	// same way garbage does.
	accessSigned, err := auth.CreateAccessToken("alice", time.Minute)
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", "a.b.c", accessSigned} {
		_, err := auth.Refresh(token, time.Minute)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestRefreshUnknownUser(t *testing.T) {
	auth, _ := newTestAuthUsecase()

	// Valid signature, but nothing registered in the store.
	token, err := auth.CreateRefreshToken("alice")
	require.NoError(t, err)
	auth.tokens.Delete("alice")

	_, err = auth.Refresh(token, time.Minute)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterLoginScenario(t *testing.T) {
	auth, _ := newTestAuthUsecase()

	_, registered, err := auth.Register("alice", "a@a.com", "longpass1")
	require.NoError(t, err)
	require.NotEmpty(t, registered.Token)
	require.NotEmpty(t, registered.RefreshToken)

	_, loggedIn, err := auth.Login("alice", "longpass1")
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, loggedIn.RefreshToken)

	// Registration's refresh token was superseded by the login.
	_, err = auth.Refresh(registered.RefreshToken, time.Minute)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.Refresh(loggedIn.RefreshToken, time.Minute)
	assert.NoError(t, err)

	_, _, err = auth.Login("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicate(t *testing.T) {
	auth, _ := newTestAuthUsecase()

	_, _, err := auth.Register("alice", "a@a.com", "longpass1")
	require.NoError(t, err)

	_, _, err = auth.Register("alice", "other@a.com", "longpass1")
	var dup *domain.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)

	_, _, err = auth.Register("bob1", "a@a.com", "longpass1")
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
}

func TestDeleteUser(t *testing.T) {
	auth, repo := newTestAuthUsecase()

	_, pair, err := auth.Register("alice", "a@a.com", "longpass1")
	require.NoError(t, err)

	err = auth.DeleteUser("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = auth.DeleteUser("alice", "longpass1")
	require.NoError(t, err)

	user, err := repo.GetByName("alice")
	require.NoError(t, err)
	assert.Nil(t, user)

	// The account's refresh token dies with it.
	_, err = auth.Refresh(pair.RefreshToken, time.Minute)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConcurrentTokenIssuance(t *testing.T) {
	auth, _ := newTestAuthUsecase()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			username := fmt.Sprintf("user%02d", i)
			token, err := auth.CreateRefreshToken(username)
			assert.NoError(t, err)
			_, err = auth.Refresh(token, time.Minute)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}
