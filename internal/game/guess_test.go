package game

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func startedGuess(t *testing.T, env *testEnv, rounds int) *GuessRound {
	t.Helper()
	if err := env.guess.Start(context.Background(), testChat, rounds); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s := env.reg.Get(testChat, KindGuess)
	if s == nil {
		t.Fatal("no guess session registered")
	}
	return s.(*GuessRound)
}

func currentAnswer(g *GuessRound) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.answer
}

func TestGuessAcceptsTrimmedMixedCase(t *testing.T) {
	env := newTestEnv()
	g := startedGuess(t, env, 1)

	ans := currentAnswer(g)
	sloppy := " " + strings.ToUpper(ans[:1]) + ans[1:] + " "

	if err := env.guess.Guess(context.Background(), testChat, alice, sloppy); err != nil {
		t.Fatalf("Guess(%q) = %v; want accepted", sloppy, err)
	}
	// Fast, hintless solve: 2 base + 1 speed bonus.
	if got := env.store.points(testChat, alice.ID); got != 3 {
		t.Errorf("points = %d; want 3", got)
	}
}

func TestGuessWrongAnswer(t *testing.T) {
	env := newTestEnv()
	startedGuess(t, env, 1)

	err := env.guess.Guess(context.Background(), testChat, alice, "definitely-not-food")
	if !errors.Is(err, ErrWrongGuess) {
		t.Errorf("err = %v; want ErrWrongGuess", err)
	}
}

func TestGuessCooldownDropsRapidGuesses(t *testing.T) {
	env := newTestEnv()
	startedGuess(t, env, 1)
	ctx := context.Background()

	if err := env.guess.Guess(ctx, testChat, alice, "nope"); !errors.Is(err, ErrWrongGuess) {
		t.Fatalf("first guess err = %v", err)
	}
	if err := env.guess.Guess(ctx, testChat, alice, "nope"); !errors.Is(err, ErrGuessCooldown) {
		t.Errorf("rapid second guess err = %v; want ErrGuessCooldown", err)
	}

	env.clock.Advance(2 * time.Second)
	if err := env.guess.Guess(ctx, testChat, alice, "nope"); !errors.Is(err, ErrWrongGuess) {
		t.Errorf("guess after cooldown err = %v; want ErrWrongGuess", err)
	}
}

func TestGuessHintCap(t *testing.T) {
	env := newTestEnv()
	g := startedGuess(t, env, 1)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		if _, err := env.guess.Hint(ctx, testChat); err != nil {
			t.Fatalf("hint %d: %v", i+1, err)
		}
	}

	g.mu.Lock()
	hints := g.hintsUsed
	g.mu.Unlock()
	if hints != guessMaxHints {
		t.Errorf("hintsUsed = %d; want %d", hints, guessMaxHints)
	}

	text, err := env.guess.Hint(ctx, testChat)
	if err != nil || !strings.Contains(text, "No more hints") {
		t.Errorf("hint past cap = (%q, %v); want refusal", text, err)
	}
}

func TestGuessHintPenaltyAndSlowSolve(t *testing.T) {
	env := newTestEnv()
	g := startedGuess(t, env, 1)
	ctx := context.Background()

	env.guess.Hint(ctx, testChat)
	env.guess.Hint(ctx, testChat)
	env.clock.Advance(11 * time.Second) // past the speed bonus window

	if err := env.guess.Guess(ctx, testChat, alice, currentAnswer(g)); err != nil {
		t.Fatalf("Guess: %v", err)
	}
	// 2 base + 0 speed - 2 hint penalty, floored at 1.
	if got := env.store.points(testChat, alice.ID); got != 1 {
		t.Errorf("points = %d; want 1", got)
	}
}

func TestGuessTimeoutRevealsAndAdvances(t *testing.T) {
	env := newTestEnv()
	g := startedGuess(t, env, 2)

	ans := currentAnswer(g)
	env.clock.Advance(30 * time.Second)

	if !env.gw.channelContains(testChat, "The answer was "+ans) {
		t.Error("expected reveal on timeout")
	}

	env.clock.Advance(time.Second)
	g.mu.Lock()
	idx, accepting := g.roundIndex, g.accepting
	g.mu.Unlock()
	if idx != 2 || !accepting {
		t.Errorf("round after timeout = %d accepting=%v; want round 2 accepting", idx, accepting)
	}
}

func TestGuessResolvesExactlyOnce(t *testing.T) {
	env := newTestEnv()
	g := startedGuess(t, env, 1)
	ctx := context.Background()

	if err := env.guess.Guess(ctx, testChat, alice, currentAnswer(g)); err != nil {
		t.Fatalf("Guess: %v", err)
	}
	pts := env.store.points(testChat, alice.ID)

	// A second correct guess and the stale round timer must both be inert.
	if err := env.guess.Guess(ctx, testChat, bob, currentAnswer(g)); !errors.Is(err, ErrNoGuessGame) {
		t.Errorf("guess after resolve err = %v; want ErrNoGuessGame", err)
	}
	env.clock.Advance(30 * time.Second)

	if got := env.store.points(testChat, alice.ID); got != pts {
		t.Errorf("points changed after resolution: %d -> %d", pts, got)
	}
}

func TestGuessRoundsClamped(t *testing.T) {
	env := newTestEnv()
	g := startedGuess(t, env, 500)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.roundsTotal != guessMaxRounds {
		t.Errorf("roundsTotal = %d; want %d", g.roundsTotal, guessMaxRounds)
	}
}

func TestGuessStartRejectedWhileRunning(t *testing.T) {
	env := newTestEnv()
	startedGuess(t, env, 1)

	if err := env.guess.Start(context.Background(), testChat, 1); !errors.Is(err, ErrSessionExists) {
		t.Errorf("second start err = %v; want ErrSessionExists", err)
	}
}

func TestGuessStopCancelsTimer(t *testing.T) {
	env := newTestEnv()
	startedGuess(t, env, 1)
	ctx := context.Background()

	if err := env.guess.Stop(ctx, testChat); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := env.guess.Guess(ctx, testChat, alice, "anything"); !errors.Is(err, ErrNoGuessGame) {
		t.Errorf("guess after stop err = %v; want ErrNoGuessGame", err)
	}

	before := len(env.gw.channel[testChat])
	env.clock.Advance(time.Minute)
	env.gw.mu.Lock()
	after := len(env.gw.channel[testChat])
	env.gw.mu.Unlock()
	if after != before {
		t.Error("stopped game kept announcing after its timer should be dead")
	}
}

func TestGuessStoreFailureKeepsSessionMoving(t *testing.T) {
	env := newTestEnv()
	g := startedGuess(t, env, 2)
	env.store.fail = true

	if err := env.guess.Guess(context.Background(), testChat, alice, currentAnswer(g)); err != nil {
		t.Fatalf("Guess: %v", err)
	}
	if !env.gw.channelContains(testChat, "Score service hiccup") {
		t.Error("expected degraded-score announcement")
	}

	env.clock.Advance(time.Second)
	g.mu.Lock()
	idx := g.roundIndex
	g.mu.Unlock()
	if idx != 2 {
		t.Errorf("round = %d; want 2 (sequence continues past store failure)", idx)
	}
}
