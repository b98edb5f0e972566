package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type sessionRow struct {
	Kind    string `json:"kind"`
	Summary string `json:"summary"`
}

// GetSessions lists the live game sessions of a chat.
func (h *Handler) GetSessions(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat_id"})
		return
	}

	sessions := h.Arcade.Registry.Snapshot(chatID)
	rows := make([]sessionRow, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, sessionRow{Kind: string(s.Kind()), Summary: s.Summary()})
	}

	c.JSON(http.StatusOK, gin.H{"chat_id": chatID, "sessions": rows})
}
