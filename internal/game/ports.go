package game

import (
	"context"

	"telegram_arcade/internal/domain"
)

// Participant identifies a player. Name is a display name captured from the
// inbound update; ID is the Telegram user id.
type Participant struct {
	ID   int64
	Name string
}

// Gateway delivers engine output to chats and users. All calls are
// best-effort: a failed delivery is logged by the caller and never aborts a
// state transition.
type Gateway interface {
	// SendToChannel posts text to a group chat and returns the message id.
	SendToChannel(ctx context.Context, chatID int64, text string) (int, error)
	// SendDirect sends a private message and reports whether delivery worked.
	SendDirect(ctx context.Context, userID int64, text string) bool
	// EditMessage replaces the text of a previously sent message.
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error
}

// ScoreStore is the per-chat point ledger shared by all games. Adds must be
// atomic under concurrent callers and totals never drop below zero.
type ScoreStore interface {
	AddPoints(ctx context.Context, chatID, userID int64, delta int) error
	GetPoints(ctx context.Context, chatID, userID int64) (int, error)
	TopPoints(ctx context.Context, chatID int64, limit int) ([]domain.ScoreEntry, error)
}
