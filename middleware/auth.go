package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mpurcell/contentapi/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextTokenKey stores the raw bearer token for logout.
	ContextTokenKey = "token"
)

// AuthRequired ensures the request carries a valid, unrevoked bearer token.
// Rejections use a fixed 401 body independent of the controller envelope
// logic.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(ctx, "")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.UnauthorizedResponse(ctx, "")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" || utils.IsTokenBlacklisted(tokenString) {
			utils.UnauthorizedResponse(ctx, "")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.UnauthorizedResponse(ctx, "")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextTokenKey, tokenString)
		ctx.Next()
	}
}

// UserID returns the authenticated user ID stored by AuthRequired.
func UserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// Token returns the raw bearer token stored by AuthRequired.
func Token(ctx *gin.Context) (string, bool) {
	v, ok := ctx.Get(ContextTokenKey)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}
