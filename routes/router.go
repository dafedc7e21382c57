package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mpurcell/contentapi/config"
	"github.com/mpurcell/contentapi/controllers"
	"github.com/mpurcell/contentapi/middleware"
	"github.com/mpurcell/contentapi/models"
	"github.com/mpurcell/contentapi/resources"
	"github.com/mpurcell/contentapi/storage"
	"github.com/mpurcell/contentapi/utils"
	"github.com/mpurcell/contentapi/weather"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, files *storage.Service) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	resources.Register(&models.Post{}, resources.PostResource(files))

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl))
		r.Use(utils.RecoveryWithZap(gl))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Uploaded files are served directly from disk.
	r.Static(cfg.UploadsBaseURL, cfg.UploadsDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.SuccessResponse(ctx, "", gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db, files)
	postController := controllers.NewPostController(db, files)
	weatherController := controllers.NewWeatherController(weather.NewService(cfg))

	api := r.Group("/api")

	public := api.Group("")
	public.Use(middleware.RateLimitMiddleware())
	public.POST("/register", authController.Register)
	public.POST("/login", authController.Login)
	public.GET("/weather", weatherController.Get)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.POST("/logout", authController.Logout)
	protected.GET("/user", authController.Me)
	protected.GET("/user/:id", authController.Show)
	protected.GET("/posts", postController.List)
	protected.POST("/posts", postController.Create)
	protected.GET("/posts/:id", postController.Show)
	protected.PUT("/posts/:id", postController.Update)
	protected.PATCH("/posts/:id", postController.Update)
	protected.DELETE("/posts/:id", postController.Delete)

	r.NoRoute(func(ctx *gin.Context) {
		utils.ErrorResponse(ctx, http.StatusNotFound, "api route not found")
	})

	return r
}
