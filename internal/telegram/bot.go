package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"telegram_arcade/internal/domain"
	"telegram_arcade/internal/game"
	"telegram_arcade/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot is the command surface in front of the game engines: it parses group
// commands and private-chat duel moves, feeds them to the engines and turns
// engine errors into user-facing replies.
type Bot struct {
	api    *tgbotapi.BotAPI
	arcade *game.Arcade
	scores game.ScoreStore
	stopCh chan struct{}
	wg     sync.WaitGroup
	log    *slog.Logger
}

func NewBot(api *tgbotapi.BotAPI, arcade *game.Arcade, scores game.ScoreStore) *Bot {
	log := logger.With("component", "bot")
	log.Info("bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:    api,
		arcade: arcade,
		scores: scores,
		stopCh: make(chan struct{}),
		log:    log,
	}
}

// Start runs the long-poll update loop until Stop is called.
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("starting update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil || update.Message.From.IsBot {
				continue
			}

			msg := update.Message
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleMessage(msg)
			}()
		}
	}
}

// Stop shuts the loop down and waits for in-flight handlers.
func (b *Bot) Stop() {
	close(b.stopCh)
	b.api.StopReceivingUpdates()
	b.wg.Wait()
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.Chat.IsPrivate() {
		b.handleDirect(msg)
		return
	}
	if msg.IsCommand() {
		b.handleCommand(msg)
	}
}

// handleDirect routes private-chat duel moves so the opponent never sees
// them before the reveal.
func (b *Bot) handleDirect(msg *tgbotapi.Message) {
	raw, ok := stripMovePrefix(msg.Text)
	if !ok {
		return
	}

	mv, ok := game.ParseMove(raw)
	if !ok {
		b.send(msg.Chat.ID, "Invalid move. Use: move strike, move guard, or move feint.")
		return
	}

	err := b.arcade.Duel.SubmitMove(context.Background(), msg.From.ID, mv)
	switch {
	case err == nil:
		b.send(msg.Chat.ID, "✅ Move received (hidden).")
	case errors.Is(err, game.ErrAlreadyMoved):
		b.send(msg.Chat.ID, "You already submitted a move for this round.")
	case errors.Is(err, game.ErrNoActiveDuel):
		b.send(msg.Chat.ID, "No active duel found. Start one with /duel in a group chat.")
	default:
		b.send(msg.Chat.ID, "Could not take that move, try again.")
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	ctx := context.Background()

	switch msg.Command() {
	case "duel":
		b.cmdDuel(ctx, msg)
	case "duelaccept":
		b.replyErr(msg, b.arcade.Duel.Accept(ctx, msg.Chat.ID, msg.From.ID))
	case "dueldecline":
		b.replyErr(msg, b.arcade.Duel.Decline(ctx, msg.Chat.ID, msg.From.ID))
	case "duelcancel":
		b.replyErr(msg, b.arcade.Duel.Cancel(ctx, msg.Chat.ID, msg.From.ID))
	case "duelmove":
		b.reply(msg, "🕵️ Duel moves are DM-only.\nDM the bot: move strike / move guard / move feint")
	case "duelstatus":
		if status, ok := b.arcade.Duel.Status(msg.Chat.ID); ok {
			b.reply(msg, status)
		} else {
			b.reply(msg, "🗡️ No duel is pending or active here.")
		}

	case "foodgame":
		rounds := parseIntArg(msg.CommandArguments(), 0)
		if err := b.arcade.Guess.Start(ctx, msg.Chat.ID, rounds); err != nil {
			b.replyErr(msg, err)
			return
		}
		b.reply(msg, "🍜 Game started!")
	case "foodstop":
		b.replyErr(msg, b.arcade.Guess.Stop(ctx, msg.Chat.ID))
	case "foodstatus":
		if status, ok := b.arcade.Guess.Status(msg.Chat.ID); ok {
			b.reply(msg, status)
		} else {
			b.reply(msg, "🍜 No active food game. Start with /foodgame.")
		}
	case "guess":
		b.cmdGuess(ctx, msg)
	case "hint":
		text, err := b.arcade.Guess.Hint(ctx, msg.Chat.ID)
		if err != nil {
			b.replyErr(msg, err)
			return
		}
		b.reply(msg, "🍜 "+text)

	case "battle":
		b.cmdBattle(ctx, msg)
	case "battlestatus":
		if status, ok := b.arcade.Battle.Status(msg.Chat.ID); ok {
			b.reply(msg, status)
		} else {
			b.reply(msg, "🏮 No active battle. Start with /battle start.")
		}
	case "buzz":
		b.cmdBuzz(ctx, msg)

	case "games":
		b.cmdGames(msg)
	case "myscore":
		b.cmdMyScore(ctx, msg)
	case "leaderboard":
		b.cmdLeaderboard(ctx, msg)
	}
}

func (b *Bot) cmdDuel(ctx context.Context, msg *tgbotapi.Message) {
	opp, ok := opponentFromMessage(msg)
	if !ok {
		b.reply(msg, "🗡️ Usage: reply to your opponent with /duel [bo3], or mention them by name.")
		return
	}
	if opp.IsBot {
		b.reply(msg, "🗡️ You can't duel a bot.")
		return
	}

	mode := game.ParseDuelMode(lastField(msg.CommandArguments()))
	_, err := b.arcade.Duel.Challenge(ctx, msg.Chat.ID, participant(msg.From), participant(opp), mode)
	b.replyErr(msg, err)
}

func (b *Bot) cmdGuess(ctx context.Context, msg *tgbotapi.Message) {
	answer := strings.TrimSpace(msg.CommandArguments())
	if answer == "" {
		b.reply(msg, "🍜 Usage: /guess <answer>")
		return
	}

	err := b.arcade.Guess.Guess(ctx, msg.Chat.ID, participant(msg.From), answer)
	switch {
	case err == nil:
		// Engine announces the win.
	case errors.Is(err, game.ErrWrongGuess):
		b.reply(msg, "❌ Nope — try again!")
	case errors.Is(err, game.ErrGuessCooldown):
		// Deliberately silent: rapid repeats are dropped.
	default:
		b.replyErr(msg, err)
	}
}

func (b *Bot) cmdBattle(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	action := ""
	if len(args) > 0 {
		action = strings.ToLower(args[0])
	}

	switch action {
	case "start":
		n, seconds := 0, 0
		if len(args) > 1 {
			n = parseIntArg(args[1], 0)
		}
		if len(args) > 2 {
			seconds = parseIntArg(args[2], 0)
		}
		b.replyErr(msg, b.arcade.Battle.Start(ctx, msg.Chat.ID, msg.From.ID, n, seconds))
	case "stop":
		b.replyErr(msg, b.arcade.Battle.Stop(ctx, msg.Chat.ID))
	default:
		b.reply(msg, "🏮 Usage: /battle start [n] [seconds] • /battle stop")
	}
}

func (b *Bot) cmdBuzz(ctx context.Context, msg *tgbotapi.Message) {
	answer := strings.TrimSpace(msg.CommandArguments())
	if answer == "" {
		b.reply(msg, "🏮 Usage: /buzz <answer>")
		return
	}

	err := b.arcade.Battle.Buzz(ctx, msg.Chat.ID, participant(msg.From), answer)
	switch {
	case err == nil:
		// Engine announces the verdict.
	case errors.Is(err, game.ErrNotAccepting):
		// Lost the race or between questions: rejected silently.
	default:
		b.replyErr(msg, err)
	}
}

func (b *Bot) cmdGames(msg *tgbotapi.Message) {
	sessions := b.arcade.Registry.Snapshot(msg.Chat.ID)
	if len(sessions) == 0 {
		b.reply(msg, "🎮 Nothing is running here. Try /duel, /foodgame or /battle start.")
		return
	}

	var lines []string
	for _, s := range sessions {
		lines = append(lines, "• "+s.Summary())
	}
	b.reply(msg, "🎮 Live games:\n"+strings.Join(lines, "\n"))
}

func (b *Bot) cmdMyScore(ctx context.Context, msg *tgbotapi.Message) {
	pts, err := b.scores.GetPoints(ctx, msg.Chat.ID, msg.From.ID)
	if err != nil {
		b.reply(msg, "⚠️ Scores are unavailable right now, try again later.")
		return
	}
	b.reply(msg, fmt.Sprintf("🧠 %s score: %d pts — %s", displayName(msg.From), pts, domain.RankTitle(pts)))
}

func (b *Bot) cmdLeaderboard(ctx context.Context, msg *tgbotapi.Message) {
	top, err := b.scores.TopPoints(ctx, msg.Chat.ID, 10)
	if err != nil {
		b.reply(msg, "⚠️ Scores are unavailable right now, try again later.")
		return
	}
	if len(top) == 0 {
		b.reply(msg, "🧠 Leaderboard is empty for this chat. Win some games first 😈")
		return
	}

	var sb strings.Builder
	sb.WriteString("🧠 Chat Leaderboard\n")
	for i, e := range top {
		fmt.Fprintf(&sb, "%d. %s — %d pts — %s\n", i+1, b.memberName(msg.Chat.ID, e.UserID), e.Points, domain.RankTitle(e.Points))
	}
	b.reply(msg, sb.String())
}

// memberName resolves a chat member's display name, falling back to the id.
func (b *Bot) memberName(chatID, userID int64) string {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil || member.User == nil {
		return "user " + strconv.FormatInt(userID, 10)
	}
	return displayName(member.User)
}

// replyErr maps engine errors to user-facing replies. A nil error means the
// engine already announced whatever needed announcing.
func (b *Bot) replyErr(msg *tgbotapi.Message, err error) {
	switch {
	case err == nil:
	case errors.Is(err, game.ErrSessionExists):
		b.reply(msg, "⚠️ A game of that kind is already running here. Finish or stop it first.")
	case errors.Is(err, game.ErrNoDuel):
		b.reply(msg, "🗡️ No duel is pending. Start one with /duel.")
	case errors.Is(err, game.ErrDuelActive):
		b.reply(msg, "🗡️ Duel already active. Submit moves by DM: move strike/guard/feint.")
	case errors.Is(err, game.ErrSelfDuel):
		b.reply(msg, "🗡️ You can't duel yourself.")
	case errors.Is(err, game.ErrNotChallenged):
		b.reply(msg, "🗡️ Only the challenged opponent can do that.")
	case errors.Is(err, game.ErrNotParticipant):
		b.reply(msg, "🗡️ Only duel participants can do that.")
	case errors.Is(err, game.ErrNoGuessGame):
		b.reply(msg, "🍜 No active food game. Start with /foodgame.")
	case errors.Is(err, game.ErrNoBattle):
		b.reply(msg, "🏮 No active battle. Start with /battle start.")
	default:
		b.log.Warn("command failed", "error", err)
		b.reply(msg, "⚠️ Something went wrong, try again.")
	}
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(out); err != nil {
		b.log.Warn("reply failed", "chat_id", msg.Chat.ID, "error", err)
	}
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("send failed", "chat_id", chatID, "error", err)
	}
}

func lastField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
