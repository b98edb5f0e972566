package handlers

import (
	"net/http"
	"strconv"

	"telegram_arcade/internal/domain"

	"github.com/gin-gonic/gin"
)

// GetScore returns one member's points and rank title in a chat.
func (h *Handler) GetScore(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat_id"})
		return
	}
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	pts, err := h.Scores.GetPoints(c.Request.Context(), chatID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load score"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chat_id": chatID,
		"user_id": userID,
		"points":  pts,
		"rank":    domain.RankTitle(pts),
	})
}
