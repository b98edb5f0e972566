package handlers

import (
	"telegram_arcade/internal/game"
	"telegram_arcade/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB       *pgxpool.Pool
	Scores   *service.ScoreService
	Arcade   *game.Arcade
	AdminKey string
}

func NewHandler(db *pgxpool.Pool, scores *service.ScoreService, arcade *game.Arcade, adminKey string) *Handler {
	return &Handler{
		DB:       db,
		Scores:   scores,
		Arcade:   arcade,
		AdminKey: adminKey,
	}
}
