package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"recipes-backend/internal/recipes"
	"recipes-backend/internal/services/health"
	"recipes-backend/internal/shared/config"
	"recipes-backend/internal/shared/metrics"
	"recipes-backend/internal/shared/server/middleware"
	"recipes-backend/internal/shared/server/respond"
	"recipes-backend/internal/uploads"
	"recipes-backend/internal/users"
)

// RouterDeps holds the handlers mounted by NewRouter. Nil handlers are skipped.
type RouterDeps struct {
	Config        config.Config
	Health        *health.Service
	RecipeHandler *recipes.Handler
	UserHandler   *users.Handler
	UploadHandler *uploads.Handler
	// Gatherer backs /metrics when set.
	Gatherer prometheus.Gatherer
	// StaticDir is served under Config.LocalPublicPath when set.
	StaticDir string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	cfg := deps.Config

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)
	if cfg.UploadRateLimit > 0 && cfg.UploadRateBurst > 0 {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.UploadRateLimitGroup: {Rate: cfg.UploadRateLimit, Burst: cfg.UploadRateBurst},
			},
			GroupFor: middleware.UploadGroup,
		}))
	}

	if deps.Gatherer != nil {
		r.GET("/metrics", metrics.Handler(deps.Gatherer))
	}
	if deps.StaticDir != "" && strings.TrimSpace(cfg.LocalPublicPath) != "" {
		r.Static(cfg.LocalPublicPath, deps.StaticDir)
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		status := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	if deps.RecipeHandler != nil {
		deps.RecipeHandler.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
