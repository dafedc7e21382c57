package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpurcell/contentapi/config"
	"github.com/mpurcell/contentapi/utils"
)

func TestMain(m *testing.M) {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		panic(err)
	}
	config.Set(config.AppConfig{
		JWTSecret:          "middleware-test-secret",
		RateLimitPerMinute: 2,
		RedisHost:          mr.Host(),
		RedisPort:          port,
	})

	code := m.Run()
	mr.Close()
	os.Exit(code)
}

func limitedEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RateLimitMiddleware(), func(ctx *gin.Context) {
		utils.SuccessResponse(ctx, "pong", nil)
	})
	return r
}

func hit(r http.Handler, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitRejectsBurstOverflow(t *testing.T) {
	r := limitedEngine()

	// RateLimitPerMinute 2 gives a burst of one token.
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.0.1"))
}

func TestRateLimitIsPerClient(t *testing.T) {
	r := limitedEngine()

	require.Equal(t, http.StatusOK, hit(r, "10.0.0.2"))
	require.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.0.2"))
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.3"), "a different client has its own bucket")
}

func TestAuthRequiredAcceptsValidBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/secret", AuthRequired(), func(ctx *gin.Context) {
		id, _ := UserID(ctx)
		utils.SuccessResponse(ctx, "", gin.H{"user_id": id})
	})

	token, err := utils.GenerateToken(7, "auth@example.com", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	for _, header := range []string{"", "Bearer ", "Basic abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/secret", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthRequiredRejectsBlacklistedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/secret", AuthRequired(), func(ctx *gin.Context) {
		utils.SuccessResponse(ctx, "", nil)
	})

	token, err := utils.GenerateToken(8, "revoked@example.com", time.Hour)
	require.NoError(t, err)
	utils.BlacklistToken(token, time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
