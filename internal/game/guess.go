package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"telegram_arcade/internal/content"
)

const (
	guessDefaultRounds = 1
	guessMaxRounds     = 20
	guessRoundTotal    = 30 * time.Second
	guessSpeedWindow   = 10 * time.Second
	guessCooldown      = 1250 * time.Millisecond
	guessMaxHints      = 3
)

// GuessRound is the live state of an emoji guessing game. One session covers
// the whole requested round sequence; each round re-deals in place. All
// mutable fields are guarded by mu.
type GuessRound struct {
	chatID int64

	mu          sync.Mutex
	closed      bool
	answer      string
	emoji       string
	roundIndex  int
	roundsTotal int
	startedAt   time.Time
	hintsUsed   int
	accepting   bool
	lastGuessAt map[int64]time.Time
	gen         uint64
	timer       Timer
}

func (g *GuessRound) Kind() Kind { return KindGuess }

// Guessing games have no pending phase, so they never expire passively.
func (g *GuessRound) Expired(time.Time) bool { return false }

func (g *GuessRound) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.accepting = false
	g.stopTimerLocked()
}

func (g *GuessRound) Summary() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return "guessing game ended"
	}
	return fmt.Sprintf("guessing round %d/%d, emoji %s, hints used %d",
		g.roundIndex, g.roundsTotal, g.emoji, g.hintsUsed)
}

func (g *GuessRound) stopTimerLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// GuessEngine runs the timed single-answer guessing game.
type GuessEngine struct {
	core
}

func NewGuessEngine(reg *Registry, gw Gateway, scores ScoreStore, clock Clock, log *slog.Logger) *GuessEngine {
	return &GuessEngine{core{reg: reg, gw: gw, scores: scores, clock: clock, log: log.With("engine", "guess")}}
}

// Start launches a new guessing game with the requested number of rounds
// (clamped to 1..20; zero means the default single round).
func (e *GuessEngine) Start(ctx context.Context, chatID int64, rounds int) error {
	if rounds <= 0 {
		rounds = guessDefaultRounds
	}
	if rounds > guessMaxRounds {
		rounds = guessMaxRounds
	}

	s, err := e.reg.Create(chatID, KindGuess, func() Session {
		return &GuessRound{
			chatID:      chatID,
			roundsTotal: rounds,
			lastGuessAt: make(map[int64]time.Time),
		}
	})
	if err != nil {
		return err
	}
	g := s.(*GuessRound)

	g.mu.Lock()
	defer g.mu.Unlock()
	e.dealRoundLocked(g, 1)

	e.log.Info("guessing game started", "chat_id", chatID, "rounds", rounds)
	return nil
}

// Stop ends the game immediately.
func (e *GuessEngine) Stop(ctx context.Context, chatID int64) error {
	s := e.reg.Get(chatID, KindGuess)
	if s == nil {
		return ErrNoGuessGame
	}
	g := s.(*GuessRound)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrNoGuessGame
	}
	e.teardownLocked(g)
	e.announce(chatID, "🍜 Food game stopped.")
	return nil
}

// Halt force-stops the game (admin path).
func (e *GuessEngine) Halt(ctx context.Context, chatID int64) bool {
	return e.Stop(ctx, chatID) == nil
}

// Hint reveals progressively more of the answer: first letter and length,
// then the vowel mask, then the first two letters. The counter never passes
// the cap, so late hint spam cannot inflate the penalty.
func (e *GuessEngine) Hint(ctx context.Context, chatID int64) (string, error) {
	s := e.reg.Get(chatID, KindGuess)
	if s == nil {
		return "", ErrNoGuessGame
	}
	g := s.(*GuessRound)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || !g.accepting {
		return "", ErrNoGuessGame
	}

	if g.hintsUsed >= guessMaxHints {
		return "No more hints 😈", nil
	}
	text := foodHint(g.answer, g.hintsUsed)
	g.hintsUsed++
	return text, nil
}

// Guess checks a submission against the secret answer. Correct guesses
// resolve the round exactly once; rapid repeat guesses from the same user
// inside the cooldown are dropped without touching round state.
func (e *GuessEngine) Guess(ctx context.Context, chatID int64, user Participant, answer string) error {
	s := e.reg.Get(chatID, KindGuess)
	if s == nil {
		return ErrNoGuessGame
	}
	g := s.(*GuessRound)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || !g.accepting {
		return ErrNoGuessGame
	}

	now := e.clock.Now()
	if last, ok := g.lastGuessAt[user.ID]; ok && now.Sub(last) < guessCooldown {
		return ErrGuessCooldown
	}
	g.lastGuessAt[user.ID] = now

	if strings.ToLower(strings.TrimSpace(answer)) != g.answer {
		return ErrWrongGuess
	}

	// First correct guess wins the resolution; the lock makes the
	// near-simultaneous case unambiguous and the accepting flag keeps any
	// later caller out.
	g.accepting = false
	g.stopTimerLocked()
	g.gen++

	elapsed := now.Sub(g.startedAt)
	speedBonus := 0
	if elapsed <= guessSpeedWindow {
		speedBonus = 1
	}
	hintPenalty := g.hintsUsed
	if hintPenalty > 2 {
		hintPenalty = 2
	}
	pts := 2 + speedBonus - hintPenalty
	if pts < 1 {
		pts = 1
	}

	e.award(chatID, user.ID, pts)
	e.announce(chatID, fmt.Sprintf("✅ Correct! It was %s. %s gains +%d points!", g.answer, user.Name, pts))
	roundsResolved.WithLabelValues(string(KindGuess)).Inc()

	e.advanceOrFinishLocked(g)
	return nil
}

// Status returns the live round info for the chat.
func (e *GuessEngine) Status(chatID int64) (string, bool) {
	s := e.reg.Get(chatID, KindGuess)
	if s == nil {
		return "", false
	}
	g := s.(*GuessRound)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || !g.accepting {
		return "", false
	}

	remaining := guessRoundTotal - e.clock.Now().Sub(g.startedAt)
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("🍜 Round %d/%d | Emoji: %s | ⏱️ %ds left | Hints used: %d",
		g.roundIndex, g.roundsTotal, g.emoji, int(remaining.Seconds()), g.hintsUsed), true
}

// dealRoundLocked picks a fresh riddle and arms the round timer. Caller
// holds g.mu.
func (e *GuessEngine) dealRoundLocked(g *GuessRound, index int) {
	item := content.RandomFood()
	g.answer = item.Answer
	g.emoji = item.Emoji
	g.roundIndex = index
	g.startedAt = e.clock.Now()
	g.hintsUsed = 0
	g.accepting = true
	g.stopTimerLocked()
	g.gen++
	gen := g.gen

	e.announce(g.chatID, fmt.Sprintf(
		"🍜 Food Emoji Guessing! (Round %d/%d)\nGuess the food: %s\nAnswer with /guess <answer> • Hint: /hint • Stop: /foodstop\n⏱️ You have %ds",
		g.roundIndex, g.roundsTotal, g.emoji, int(guessRoundTotal.Seconds()),
	))

	g.timer = e.clock.AfterFunc(guessRoundTotal, func() { e.roundExpired(g, gen) })
}

// roundExpired is the timeout path: reveal the answer and move on. A stale
// generation means a correct guess already resolved the round.
func (e *GuessEngine) roundExpired(g *GuessRound, gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed || gen != g.gen || !g.accepting {
		return
	}

	g.accepting = false
	g.gen++
	roundsResolved.WithLabelValues(string(KindGuess)).Inc()

	e.announce(g.chatID, fmt.Sprintf("⏱️ Time! The answer was %s.", g.answer))
	e.advanceOrFinishLocked(g)
}

// advanceOrFinishLocked deals the next round after a short breather, or ends
// the session when the sequence is done. Caller holds g.mu.
func (e *GuessEngine) advanceOrFinishLocked(g *GuessRound) {
	if g.roundIndex < g.roundsTotal {
		next := g.roundIndex + 1
		gen := g.gen
		g.timer = e.clock.AfterFunc(interRoundDelay, func() { e.dealNext(g, gen, next) })
		return
	}
	e.teardownLocked(g)
	e.log.Info("guessing game finished", "chat_id", g.chatID, "rounds", g.roundsTotal)
}

func (e *GuessEngine) dealNext(g *GuessRound, gen uint64, index int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed || gen != g.gen {
		return
	}
	e.dealRoundLocked(g, index)
}

// teardownLocked closes the session and removes it from the registry.
// Caller holds g.mu.
func (e *GuessEngine) teardownLocked(g *GuessRound) {
	g.closed = true
	g.accepting = false
	g.stopTimerLocked()
	g.gen++
	e.reg.drop(g.chatID, KindGuess, g)
}

// foodHint renders the nth hint (0-based) for an answer.
func foodHint(answer string, used int) string {
	a := strings.ToLower(strings.TrimSpace(answer))
	switch used {
	case 0:
		return fmt.Sprintf("Hint: starts with %s and has %d letters.", strings.ToUpper(a[:1]), len(a))
	case 1:
		var b strings.Builder
		for _, ch := range a {
			if strings.ContainsRune("aeiou", ch) {
				b.WriteRune(ch)
			} else {
				b.WriteRune('•')
			}
		}
		return fmt.Sprintf("Hint: vowels revealed → %s", b.String())
	case 2:
		return fmt.Sprintf("Hint: first 2 letters → %s", strings.ToUpper(a[:2]))
	}
	return "No more hints 😈"
}
