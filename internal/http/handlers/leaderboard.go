package handlers

import (
	"net/http"
	"strconv"

	"telegram_arcade/internal/domain"

	"github.com/gin-gonic/gin"
)

type leaderboardRow struct {
	Place  int    `json:"place"`
	UserID int64  `json:"user_id"`
	Points int    `json:"points"`
	Rank   string `json:"rank"`
}

// GetLeaderboard returns the top scorers of a chat with their rank titles.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat_id"})
		return
	}

	limit := 10
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	top, err := h.Scores.TopPoints(c.Request.Context(), chatID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
		return
	}

	rows := make([]leaderboardRow, 0, len(top))
	for i, e := range top {
		rows = append(rows, leaderboardRow{
			Place:  i + 1,
			UserID: e.UserID,
			Points: e.Points,
			Rank:   domain.RankTitle(e.Points),
		})
	}

	c.JSON(http.StatusOK, gin.H{"chat_id": chatID, "leaderboard": rows})
}
