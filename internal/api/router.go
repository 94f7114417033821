package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/MoonrakerAI/coliving-backend/internal/dbpool"
	"github.com/MoonrakerAI/coliving-backend/internal/kv"
	"github.com/MoonrakerAI/coliving-backend/internal/middleware"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Pool        *dbpool.Pool
	KV          kv.Store
	Audit       AuditLog
	Auditor     AuditRecorder
	Settings    SettingsManager
	Runner      ReminderRunner
	Deliveries  DeliveryLog
	CORSOrigins []string
	Version     string
	AdminAPIKey string
	CronSecret  string
}

// Router-level limits.
const (
	maxBodySize = 1 << 20 // 1 MB
	rateLimit   = 100     // requests per second per IP
	rateBurst   = 200     // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, deps.KV, log, deps.Version)
	audit := NewAuditHandler(deps.Audit, log)
	settings := NewSettingsHandler(deps.Settings, deps.Auditor, log)
	cron := NewCronHandler(deps.Runner, log)
	webhooks := NewWebhookHandler(deps.Deliveries, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Provider callbacks carry no bearer credential; signature checks live
	// at the edge. Rate limiting still applies.
	api.POST("/webhooks/email", webhooks.EmailEvent)

	// One lockout tracker covers both credentials.
	guard := middleware.NewFailureLockout(ctx, log)

	// Scheduler trigger, authenticated by its own shared secret.
	api.POST("/cron/reminders", middleware.BearerSecret("cron", deps.CronSecret, log, guard), cron.RunReminders)

	// Admin surface.
	admin := api.Group("", middleware.BearerSecret("admin", deps.AdminAPIKey, log, guard))
	admin.GET("/audit", audit.Query)
	admin.GET("/audit/users/:id/trail", audit.UserTrail)
	admin.GET("/reminders/settings", settings.Get)
	admin.POST("/reminders/settings", settings.Create)
	admin.PATCH("/reminders/settings/:propertyID", settings.Update)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
