package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram_arcade/internal/config"
	"telegram_arcade/internal/db"
	"telegram_arcade/internal/game"
	httpServer "telegram_arcade/internal/http"
	"telegram_arcade/internal/http/middleware"
	"telegram_arcade/internal/logger"
	"telegram_arcade/internal/service"
	"telegram_arcade/internal/telegram"
	"telegram_arcade/internal/ws"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
)

const version = "1.2.0"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	redisClient := service.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	middleware.InitRedisRateLimiter(redisClient)

	scores := service.NewScoreService(dbPool, redisClient)

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("telegram authorization failed", "error", err)
	}

	hub := ws.NewHub()
	gateway := ws.NewGatewayTap(telegram.NewGateway(botAPI), hub)
	arcade := game.NewArcade(gateway, scores, game.SystemClock(), logger.Get())

	bot := telegram.NewBot(botAPI, arcade, scores)
	go bot.Start()

	r := gin.Default()
	httpServer.RegisterRoutes(r, cfg, dbPool, scores, arcade, hub, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	bot.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
