package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"telegram_arcade/internal/content"
)

const (
	battleDefaultQuestions = 5
	battleMaxQuestions     = 50
	battleDefaultSeconds   = 20
	battleMinSeconds       = 8
	battleMaxSeconds       = 60
)

// BuzzerBattle is the live state of a first-responder trivia battle. All
// mutable fields are guarded by mu; the claim race is settled entirely under
// that lock.
type BuzzerBattle struct {
	chatID    int64
	startedBy int64

	mu           sync.Mutex
	closed       bool
	queue        []content.Question
	current      *content.Question
	askedAt      time.Time
	perQuestion  time.Duration
	accepting    bool
	buzzWinnerID int64
	gen          uint64
	timer        Timer
	timerMsgID   int
}

func (b *BuzzerBattle) Kind() Kind { return KindBattle }

func (b *BuzzerBattle) Expired(time.Time) bool { return false }

func (b *BuzzerBattle) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.accepting = false
	b.stopTimerLocked()
}

func (b *BuzzerBattle) Summary() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "battle ended"
	}
	left := len(b.queue)
	if b.current != nil {
		left++
	}
	return fmt.Sprintf("trivia battle, %d questions remaining", left)
}

func (b *BuzzerBattle) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// BattleEngine runs the first-responder trivia game.
type BattleEngine struct {
	core
}

func NewBattleEngine(reg *Registry, gw Gateway, scores ScoreStore, clock Clock, log *slog.Logger) *BattleEngine {
	return &BattleEngine{core{reg: reg, gw: gw, scores: scores, clock: clock, log: log.With("engine", "battle")}}
}

// Start launches a battle with n questions (clamped to the bank size, max
// 50) and the given per-question budget in seconds (clamped to 8..60).
func (e *BattleEngine) Start(ctx context.Context, chatID, startedBy int64, n, seconds int) error {
	if n <= 0 {
		n = battleDefaultQuestions
	}
	if n > battleMaxQuestions {
		n = battleMaxQuestions
	}
	if seconds <= 0 {
		seconds = battleDefaultSeconds
	}
	if seconds < battleMinSeconds {
		seconds = battleMinSeconds
	}
	if seconds > battleMaxSeconds {
		seconds = battleMaxSeconds
	}

	return e.startWithQuestions(ctx, chatID, startedBy, content.ShuffledQuestions(n), seconds)
}

func (e *BattleEngine) startWithQuestions(ctx context.Context, chatID, startedBy int64, qs []content.Question, seconds int) error {
	s, err := e.reg.Create(chatID, KindBattle, func() Session {
		return &BuzzerBattle{
			chatID:      chatID,
			startedBy:   startedBy,
			queue:       qs,
			perQuestion: time.Duration(seconds) * time.Second,
		}
	})
	if err != nil {
		return err
	}
	b := s.(*BuzzerBattle)

	e.announce(chatID, fmt.Sprintf(
		"🏮 Culture Trivia Battle started! (%d questions)\nRules: first /buzz <answer> gets checked. Correct = +2. Wrong = -1 (min 0).\nTime per question: %ds",
		len(qs), seconds,
	))
	e.log.Info("battle started", "chat_id", chatID, "questions", len(qs), "seconds", seconds)

	b.mu.Lock()
	defer b.mu.Unlock()
	e.askNextLocked(b)
	return nil
}

// Stop ends the battle immediately.
func (e *BattleEngine) Stop(ctx context.Context, chatID int64) error {
	s := e.reg.Get(chatID, KindBattle)
	if s == nil {
		return ErrNoBattle
	}
	b := s.(*BuzzerBattle)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrNoBattle
	}
	e.teardownLocked(b)
	e.announce(chatID, "🛑 Battle stopped.")
	return nil
}

// Halt force-stops the battle (admin path).
func (e *BattleEngine) Halt(ctx context.Context, chatID int64) bool {
	return e.Stop(ctx, chatID) == nil
}

// Buzz claims the current question for a user. Claims serialize through the
// battle mutex: the first one flips accepting off and is judged; everyone
// after that is rejected outright.
func (e *BattleEngine) Buzz(ctx context.Context, chatID int64, user Participant, answer string) error {
	s := e.reg.Get(chatID, KindBattle)
	if s == nil {
		return ErrNoBattle
	}
	b := s.(*BuzzerBattle)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || b.current == nil {
		return ErrNoBattle
	}
	if !b.accepting {
		return ErrNotAccepting
	}

	b.accepting = false
	b.buzzWinnerID = user.ID
	b.stopTimerLocked()
	b.gen++

	correct := b.current.Answer
	if normalizeAnswer(answer) == normalizeAnswer(correct) {
		e.award(chatID, user.ID, 2)
		e.announce(chatID, fmt.Sprintf("✅ Correct! %s gains +2 points!", user.Name))
	} else {
		// Floored at zero by the ledger.
		e.award(chatID, user.ID, -1)
		e.announce(chatID, fmt.Sprintf("❌ Wrong! %s loses -1 point. Correct answer was %s.", user.Name, correct))
	}
	roundsResolved.WithLabelValues(string(KindBattle)).Inc()

	e.scheduleNextLocked(b)
	return nil
}

// Status returns the live battle info for the chat.
func (e *BattleEngine) Status(chatID int64) (string, bool) {
	s := e.reg.Get(chatID, KindBattle)
	if s == nil {
		return "", false
	}
	b := s.(*BuzzerBattle)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", false
	}

	left := len(b.queue)
	remaining := time.Duration(0)
	if b.current != nil {
		left++
		remaining = b.perQuestion - e.clock.Now().Sub(b.askedAt)
		if remaining < 0 {
			remaining = 0
		}
	}
	return fmt.Sprintf("🏮 Battle active | Questions remaining: %d | ⏱️ %ds left.",
		left, int(remaining.Seconds())), true
}

// askNextLocked deals the next question or finishes the battle when the
// queue is empty. Caller holds b.mu.
func (e *BattleEngine) askNextLocked(b *BuzzerBattle) {
	b.stopTimerLocked()
	b.gen++

	if len(b.queue) == 0 {
		e.teardownLocked(b)
		e.announce(b.chatID, "🏁 Battle finished! Check /leaderboard.")
		e.log.Info("battle finished", "chat_id", b.chatID)
		return
	}

	q := b.queue[0]
	b.queue = b.queue[1:]
	b.current = &q
	b.askedAt = e.clock.Now()
	b.accepting = true
	b.buzzWinnerID = 0
	gen := b.gen

	e.announce(b.chatID, fmt.Sprintf(
		"🎌 Question: %s\nAnswer with /buzz <answer> (first buzz only, %ds)",
		q.Prompt, int(b.perQuestion.Seconds()),
	))

	b.timer = e.clock.AfterFunc(progressTick, func() { e.battleTick(b, gen) })
}

// battleTick re-renders the countdown and times the question out when the
// budget is spent.
func (e *BattleEngine) battleTick(b *BuzzerBattle, gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || gen != b.gen || b.current == nil || !b.accepting {
		return
	}

	elapsed := e.clock.Now().Sub(b.askedAt)
	remaining := b.perQuestion - elapsed
	if remaining < 0 {
		remaining = 0
	}
	left := len(b.queue) + 1

	e.postOrEditTimer(b.chatID, &b.timerMsgID, fmt.Sprintf(
		"%s %ds left | Questions remaining: %d\nAnswer with /buzz <answer> (first buzz only)",
		timerBar(elapsed, b.perQuestion, 12), int(remaining.Seconds()), left,
	))

	if elapsed >= b.perQuestion {
		e.questionTimeoutLocked(b)
		return
	}

	b.timer = e.clock.AfterFunc(progressTick, func() { e.battleTick(b, gen) })
}

// questionTimeoutLocked reveals an unclaimed question and advances. Caller
// holds b.mu.
func (e *BattleEngine) questionTimeoutLocked(b *BuzzerBattle) {
	b.accepting = false
	b.buzzWinnerID = 0
	b.stopTimerLocked()
	b.gen++
	roundsResolved.WithLabelValues(string(KindBattle)).Inc()

	e.announce(b.chatID, fmt.Sprintf("⏱️ Time! The answer was %s.", b.current.Answer))
	e.scheduleNextLocked(b)
}

// scheduleNextLocked queues the next question after a short breather. Caller
// holds b.mu.
func (e *BattleEngine) scheduleNextLocked(b *BuzzerBattle) {
	gen := b.gen
	b.timer = e.clock.AfterFunc(interRoundDelay, func() { e.nextQuestion(b, gen) })
}

func (e *BattleEngine) nextQuestion(b *BuzzerBattle, gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || gen != b.gen {
		return
	}
	e.askNextLocked(b)
}

// teardownLocked closes the battle and removes it from the registry. Caller
// holds b.mu.
func (e *BattleEngine) teardownLocked(b *BuzzerBattle) {
	b.closed = true
	b.accepting = false
	b.current = nil
	b.stopTimerLocked()
	b.gen++
	e.reg.drop(b.chatID, KindBattle, b)
}
