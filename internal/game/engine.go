package game

import (
	"context"
	"log/slog"
	"time"
)

// Shared tuning for all games.
const (
	progressTick    = 5 * time.Second
	interRoundDelay = time.Second
)

// core carries the collaborators every engine needs. All engines built from
// the same Registry share the one-session-per-kind rule and the score ledger.
type core struct {
	reg    *Registry
	gw     Gateway
	scores ScoreStore
	clock  Clock
	log    *slog.Logger
}

// announce posts to the chat, swallowing delivery failures per the
// best-effort contract.
func (c *core) announce(chatID int64, text string) {
	if _, err := c.gw.SendToChannel(context.Background(), chatID, text); err != nil {
		deliveryFailures.Inc()
		c.log.Warn("channel send failed", "chat_id", chatID, "error", err)
	}
}

// postOrEditTimer keeps a single countdown message per session up to date,
// falling back to a fresh message when the edit target is gone.
func (c *core) postOrEditTimer(chatID int64, msgID *int, text string) {
	ctx := context.Background()

	if *msgID != 0 {
		if err := c.gw.EditMessage(ctx, chatID, *msgID, text); err == nil {
			return
		}
		*msgID = 0
	}

	id, err := c.gw.SendToChannel(ctx, chatID, text)
	if err != nil {
		deliveryFailures.Inc()
		c.log.Warn("timer message send failed", "chat_id", chatID, "error", err)
		return
	}
	*msgID = id
}

// award applies a point delta, degrading gracefully when the ledger is
// unreachable: the session keeps going and the chat is told once.
func (c *core) award(chatID, userID int64, delta int) {
	if err := c.scores.AddPoints(context.Background(), chatID, userID, delta); err != nil {
		c.log.Error("score update failed", "chat_id", chatID, "user_id", userID, "delta", delta, "error", err)
		c.announce(chatID, "⚠️ Score service hiccup — points were not recorded.")
	}
}
