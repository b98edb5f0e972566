package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"telegram_arcade/internal/domain"
	"telegram_arcade/internal/logger"
	"telegram_arcade/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

// ScoreService is the point ledger shared by every game engine. Postgres is
// the source of truth; a Redis sorted set per chat mirrors totals so the
// leaderboard endpoint can be served from cache. Redis is strictly optional:
// every cache failure falls back to Postgres.
type ScoreService struct {
	repo *repository.ScoreRepository
	rdb  *redis.Client // nil when Redis is not configured
	log  *slog.Logger
}

func NewScoreService(db *pgxpool.Pool, rdb *redis.Client) *ScoreService {
	return &ScoreService{
		repo: repository.NewScoreRepository(db),
		rdb:  rdb,
		log:  logger.With("component", "score_service"),
	}
}

func lbKey(chatID int64) string {
	return "lb:" + strconv.FormatInt(chatID, 10)
}

// AddPoints applies a delta and mirrors the resulting total into the cache.
func (s *ScoreService) AddPoints(ctx context.Context, chatID, userID int64, delta int) error {
	total, err := s.repo.AddPoints(ctx, chatID, userID, delta)
	if err != nil {
		return err
	}

	if s.rdb != nil {
		member := strconv.FormatInt(userID, 10)
		if err := s.rdb.ZAdd(ctx, lbKey(chatID), redis.Z{Score: float64(total), Member: member}).Err(); err != nil {
			s.log.Debug("leaderboard cache update failed", "chat_id", chatID, "error", err)
		}
	}
	return nil
}

func (s *ScoreService) GetPoints(ctx context.Context, chatID, userID int64) (int, error) {
	return s.repo.GetPoints(ctx, chatID, userID)
}

// TopPoints serves from the Redis mirror when possible and falls back to
// Postgres on any cache miss or error.
func (s *ScoreService) TopPoints(ctx context.Context, chatID int64, limit int) ([]domain.ScoreEntry, error) {
	if s.rdb != nil {
		zs, err := s.rdb.ZRevRangeWithScores(ctx, lbKey(chatID), 0, int64(limit-1)).Result()
		if err == nil && len(zs) > 0 {
			out := make([]domain.ScoreEntry, 0, len(zs))
			for _, z := range zs {
				uid, perr := strconv.ParseInt(z.Member.(string), 10, 64)
				if perr != nil {
					out = nil
					break
				}
				out = append(out, domain.ScoreEntry{UserID: uid, Points: int(z.Score)})
			}
			if out != nil {
				return out, nil
			}
		}
		if err != nil {
			s.log.Debug("leaderboard cache read failed", "chat_id", chatID, "error", err)
		}
	}

	return s.repo.TopPoints(ctx, chatID, limit)
}

// NewRedisClient connects to Redis, returning nil (cache disabled) when the
// address is empty or the server is unreachable.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, leaderboard cache disabled", "addr", addr, "error", err)
		return nil
	}
	logger.Info("redis connected", "addr", addr)
	return client
}
