package http

import (
	"time"

	"telegram_arcade/internal/config"
	"telegram_arcade/internal/game"
	"telegram_arcade/internal/http/handlers"
	"telegram_arcade/internal/http/middleware"
	"telegram_arcade/internal/service"
	"telegram_arcade/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes wires the read-only game API, the admin surface and the
// spectator websocket feed.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, db *pgxpool.Pool, scores *service.ScoreService, arcade *game.Arcade, hub *ws.Hub, version string) {
	h := handlers.NewHandler(db, scores, arcade, cfg.AdminKey)
	healthHandler := handlers.NewHealthHandler(db, version)

	apiRateWindow := time.Duration(cfg.APIRateWindow) * time.Second

	// Health checks and metrics (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, apiRateWindow))

	api.GET("/leaderboard/:chat_id", h.GetLeaderboard)
	api.GET("/score/:chat_id/:user_id", h.GetScore)
	api.GET("/sessions/:chat_id", h.GetSessions)

	// Login gets a tighter window than the rest of the API.
	api.POST("/admin/login", middleware.RedisRateLimit(5, time.Minute), h.AdminLogin)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminJWT())
	admin.POST("/sessions/:chat_id/stop", h.AdminStopSession)

	// Spectator feed
	r.GET("/ws/feed/:chat_id", ws.HandleFeed(hub))
}
