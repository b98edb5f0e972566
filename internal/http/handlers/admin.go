package handlers

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	"telegram_arcade/internal/game"
	"telegram_arcade/internal/service"

	"github.com/gin-gonic/gin"
)

type adminLoginRequest struct {
	Key string `json:"key" binding:"required"`
}

// AdminLogin exchanges the configured admin key for a short-lived JWT.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key required"})
		return
	}

	if h.AdminKey == "" || subtle.ConstantTimeCompare([]byte(req.Key), []byte(h.AdminKey)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid key"})
		return
	}

	token, err := service.GenerateAdminJWT("admin")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// AdminStopSession force-stops game sessions in a chat. The optional kind
// query narrows it to duel, guess or battle.
func (h *Handler) AdminStopSession(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat_id"})
		return
	}

	kind := game.Kind(c.Query("kind"))
	switch kind {
	case "", game.KindDuel, game.KindGuess, game.KindBattle:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown kind"})
		return
	}

	stopped := h.Arcade.Halt(c.Request.Context(), chatID, kind)
	c.JSON(http.StatusOK, gin.H{"chat_id": chatID, "stopped": stopped})
}
