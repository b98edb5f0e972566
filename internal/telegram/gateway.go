package telegram

import (
	"context"
	"log/slog"

	"telegram_arcade/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Gateway adapts the Telegram Bot API to the engine's best-effort delivery
// contract. A private chat shares its id with the user, so direct messages
// are plain sends to the user id.
type Gateway struct {
	bot *tgbotapi.BotAPI
	log *slog.Logger
}

func NewGateway(bot *tgbotapi.BotAPI) *Gateway {
	return &Gateway{bot: bot, log: logger.With("component", "telegram_gateway")}
}

func (g *Gateway) SendToChannel(_ context.Context, chatID int64, text string) (int, error) {
	sent, err := g.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		g.log.Warn("send to chat failed", "chat_id", chatID, "error", err)
		return 0, err
	}
	return sent.MessageID, nil
}

func (g *Gateway) SendDirect(_ context.Context, userID int64, text string) bool {
	if _, err := g.bot.Send(tgbotapi.NewMessage(userID, text)); err != nil {
		// Users who never opened a private chat with the bot land here.
		g.log.Warn("direct message failed", "user_id", userID, "error", err)
		return false
	}
	return true
}

func (g *Gateway) EditMessage(_ context.Context, chatID int64, messageID int, text string) error {
	if _, err := g.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		g.log.Debug("edit message failed", "chat_id", chatID, "message_id", messageID, "error", err)
		return err
	}
	return nil
}
