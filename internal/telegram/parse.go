package telegram

import (
	"strconv"
	"strings"

	"telegram_arcade/internal/game"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// parseIntArg converts an optional numeric argument, falling back to def.
func parseIntArg(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// displayName picks the friendliest available name for a user.
func displayName(u *tgbotapi.User) string {
	if u == nil {
		return "someone"
	}
	name := strings.TrimSpace(u.FirstName)
	if u.LastName != "" {
		name = strings.TrimSpace(name + " " + u.LastName)
	}
	if name == "" {
		name = u.UserName
	}
	if name == "" {
		name = "user " + strconv.FormatInt(u.ID, 10)
	}
	return name
}

// participant builds a game participant from a Telegram user.
func participant(u *tgbotapi.User) game.Participant {
	return game.Participant{ID: u.ID, Name: displayName(u)}
}

// opponentFromMessage resolves the challenged user: either the author of the
// replied-to message or a text-mention entity in the command arguments.
// Plain @username mentions carry no user id in the Bot API and cannot be
// resolved here.
func opponentFromMessage(msg *tgbotapi.Message) (*tgbotapi.User, bool) {
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		return msg.ReplyToMessage.From, true
	}
	for _, ent := range msg.Entities {
		if ent.Type == "text_mention" && ent.User != nil {
			return ent.User, true
		}
	}
	return nil, false
}

// stripMovePrefix extracts the move argument from a private-chat message
// ("move strike", "!duelmove guard", "/move feint").
func stripMovePrefix(text string) (string, bool) {
	t := strings.TrimSpace(strings.ToLower(text))
	t = strings.TrimPrefix(t, "!")
	t = strings.TrimPrefix(t, "/")
	for _, prefix := range []string{"move ", "duelmove "} {
		if strings.HasPrefix(t, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(t, prefix)), true
		}
	}
	return "", false
}
