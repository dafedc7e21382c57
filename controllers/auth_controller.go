package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mpurcell/contentapi/middleware"
	"github.com/mpurcell/contentapi/models"
	"github.com/mpurcell/contentapi/repository"
	"github.com/mpurcell/contentapi/resources"
	"github.com/mpurcell/contentapi/storage"
	"github.com/mpurcell/contentapi/utils"
)

// AuthController handles registration, login and session endpoints.
type AuthController struct {
	repo *repository.AuthRepository
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB, files *storage.Service) *AuthController {
	return &AuthController{repo: repository.NewAuthRepository(db, files)}
}

// Register creates an account and returns a fresh access token.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Name                 string `json:"name" binding:"required,max=255"`
		Email                string `json:"email" binding:"required,email,max=255"`
		Password             string `json:"password" binding:"required,min=8"`
		PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(ctx, "", utils.ValidationMessages(err))
		return
	}

	// Uniqueness is validated up front for a 422; the unique index remains
	// the backstop under concurrent registration.
	var count int64
	if err := a.repo.DB().Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		utils.Sugar.Errorf("email lookup failed: %v", err)
		utils.InternalErrorResponse(ctx, "")
		return
	}
	if count > 0 {
		utils.ValidationErrorResponse(ctx, "", map[string]string{
			"email": "The email has already been taken.",
		})
		return
	}

	user, token, err := a.repo.Register(repository.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		utils.InternalErrorResponse(ctx, "Registration failed. Please try again later.")
		return
	}

	utils.CreatedResponse(ctx, "User registered successfully!", gin.H{
		"user":         resources.UserResource(user),
		"access_token": token,
		"token_type":   "Bearer",
	})
}

// Login verifies credentials and issues a token. Mismatches map to 401, not
// 422, regardless of whether the account exists.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(ctx, "", utils.ValidationMessages(err))
		return
	}

	user, token, err := a.repo.Login(req.Email, req.Password)
	if err != nil {
		utils.UnauthorizedResponse(ctx, "Invalid credentials")
		return
	}

	utils.SuccessResponse(ctx, "Login successful", gin.H{
		"user":         resources.UserResource(user),
		"access_token": token,
		"token_type":   "Bearer",
	})
}

// Logout revokes the presented token only.
func (a *AuthController) Logout(ctx *gin.Context) {
	if token, ok := middleware.Token(ctx); ok {
		a.repo.Logout(token)
	}
	utils.SuccessResponse(ctx, "Logout successful", nil)
}

// Me returns the authenticated user.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.UnauthorizedResponse(ctx, "")
		return
	}
	user, err := a.repo.CurrentUser(userID)
	if err != nil {
		utils.Sugar.Errorf("current user lookup failed: %v", err)
		utils.InternalErrorResponse(ctx, "")
		return
	}
	if user == nil {
		utils.UnauthorizedResponse(ctx, "")
		return
	}
	utils.SuccessResponse(ctx, "User retrieved successfully", resources.UserResource(user))
}

// Show returns a user by id.
func (a *AuthController) Show(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.NotFoundResponse(ctx, "User not found")
		return
	}
	user, err := a.repo.Find(uint(id))
	if err != nil {
		utils.Sugar.Errorf("user lookup failed: %v", err)
		utils.InternalErrorResponse(ctx, "")
		return
	}
	if user == nil {
		utils.NotFoundResponse(ctx, "User not found")
		return
	}
	utils.SuccessResponse(ctx, "User retrieved successfully", resources.UserResource(user))
}
