package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mpurcell/contentapi/storage"
	"github.com/mpurcell/contentapi/utils"
)

func newAuthRepo(t *testing.T) (*AuthRepository, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	files := storage.New(t.TempDir(), "/storage")
	return NewAuthRepository(db, files), db
}

func TestRegisterIssuesTokenAndEnqueuesWelcomeEmail(t *testing.T) {
	testRedis.FlushAll()
	repo, _ := newAuthRepo(t)

	user, token, err := repo.Register(RegisterInput{
		Name:     "John Doe",
		Email:    "john@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.True(t, utils.CheckPassword(user.PasswordHash, "password123"))

	claims, err := utils.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "john@example.com", claims.Email)

	queued, err := testRedis.List("jobs:welcome_email")
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Contains(t, queued[0], "john@example.com")
}

func TestRegisterDuplicateEmailFails(t *testing.T) {
	repo, _ := newAuthRepo(t)

	_, _, err := repo.Register(RegisterInput{Name: "A", Email: "dup@example.com", Password: "password123"})
	require.NoError(t, err)

	_, _, err = repo.Register(RegisterInput{Name: "B", Email: "dup@example.com", Password: "password456"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRegistrationFailed))
}

func TestLogin(t *testing.T) {
	repo, _ := newAuthRepo(t)
	registered, _, err := repo.Register(RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "password123"})
	require.NoError(t, err)

	user, token, err := repo.Login("jane@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	_, _, err = repo.Login("jane@example.com", "wrong-password")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, _, err = repo.Login("nobody@example.com", "password123")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLogoutRevokesOnlyPresentedToken(t *testing.T) {
	repo, _ := newAuthRepo(t)
	user, first, err := repo.Register(RegisterInput{Name: "Jo", Email: "jo@example.com", Password: "password123"})
	require.NoError(t, err)
	// A second session with a distinct expiry so the tokens differ.
	second, err := utils.GenerateToken(user.ID, user.Email, TokenTTL+time.Minute)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	repo.Logout(first)

	assert.True(t, utils.IsTokenBlacklisted(first))
	assert.False(t, utils.IsTokenBlacklisted(second))
}

func TestLogoutIgnoresGarbageTokens(t *testing.T) {
	repo, _ := newAuthRepo(t)
	repo.Logout("not-a-jwt")
	assert.False(t, utils.IsTokenBlacklisted("not-a-jwt"))
}

func TestCurrentUser(t *testing.T) {
	repo, _ := newAuthRepo(t)
	registered, _, err := repo.Register(RegisterInput{Name: "Cur", Email: "cur@example.com", Password: "password123"})
	require.NoError(t, err)

	user, err := repo.CurrentUser(registered.ID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "cur@example.com", user.Email)

	user, err = repo.CurrentUser(9999)
	require.NoError(t, err)
	assert.Nil(t, user)
}
