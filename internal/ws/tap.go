package ws

import (
	"context"

	"telegram_arcade/internal/game"
)

// GatewayTap decorates a gateway so every public channel announcement is
// mirrored into the spectator feed. Direct messages are never mirrored:
// duel moves travel through them and must stay hidden.
type GatewayTap struct {
	next game.Gateway
	hub  *Hub
}

func NewGatewayTap(next game.Gateway, hub *Hub) *GatewayTap {
	return &GatewayTap{next: next, hub: hub}
}

func (t *GatewayTap) SendToChannel(ctx context.Context, chatID int64, text string) (int, error) {
	msgID, err := t.next.SendToChannel(ctx, chatID, text)
	if err == nil {
		t.hub.Publish(chatID, text)
	}
	return msgID, err
}

func (t *GatewayTap) SendDirect(ctx context.Context, userID int64, text string) bool {
	return t.next.SendDirect(ctx, userID, text)
}

func (t *GatewayTap) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	// Timer-bar edits are too chatty for the feed.
	return t.next.EditMessage(ctx, chatID, messageID, text)
}
