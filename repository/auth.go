package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mpurcell/contentapi/jobs"
	"github.com/mpurcell/contentapi/models"
	"github.com/mpurcell/contentapi/storage"
	"github.com/mpurcell/contentapi/utils"
)

// TokenTTL is the lifetime of issued access tokens.
const TokenTTL = 72 * time.Hour

var (
	// ErrRegistrationFailed hides persistence detail from registration callers.
	ErrRegistrationFailed = errors.New("registration failed")
	// ErrInvalidCredentials is returned on any login mismatch, independent of
	// whether the account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthRepository handles account registration and token-based sessions on
// top of the generic user repository.
type AuthRepository struct {
	*Repository[models.User]
}

// NewAuthRepository creates an AuthRepository.
func NewAuthRepository(db *gorm.DB, files *storage.Service) *AuthRepository {
	return &AuthRepository{Repository: New[models.User](db, files)}
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates the account with a bcrypt-hashed password, issues an
// access token and enqueues a welcome notification. The notification is
// fire-and-forget: enqueue failures are logged, never surfaced.
func (a *AuthRepository) Register(in RegisterInput) (*models.User, string, error) {
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		utils.Sugar.Errorf("password hashing failed: %v", err)
		return nil, "", ErrRegistrationFailed
	}

	user := models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := a.Save(&user, nil); err != nil {
		utils.Sugar.Errorf("user registration failed for email %s: %v", in.Email, err)
		return nil, "", ErrRegistrationFailed
	}

	token, err := utils.GenerateToken(user.ID, user.Email, TokenTTL)
	if err != nil {
		utils.Sugar.Errorf("token generation failed for user %d: %v", user.ID, err)
		return nil, "", ErrRegistrationFailed
	}

	if err := jobs.EnqueueWelcomeEmail(user.Email, user.Name); err != nil {
		utils.Sugar.Warnf("welcome email enqueue failed for %s: %v", user.Email, err)
	}

	return &user, token, nil
}

// Login verifies credentials and issues a fresh token. Previously issued
// tokens stay valid until they expire or are revoked.
func (a *AuthRepository) Login(email, password string) (*models.User, string, error) {
	var user models.User
	if err := a.DB().Where("email = ?", email).First(&user).Error; err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Email, TokenTTL)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Logout revokes only the presented token, keeping the user's other
// sessions intact.
func (a *AuthRepository) Logout(token string) {
	claims, err := utils.ParseToken(token)
	if err != nil {
		return
	}
	utils.BlacklistToken(token, claims.ExpiresAt.Time)
}

// CurrentUser loads the user bound to the authenticated request.
func (a *AuthRepository) CurrentUser(id uint) (*models.User, error) {
	return a.Find(id)
}
