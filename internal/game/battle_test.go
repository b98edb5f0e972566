package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"telegram_arcade/internal/content"
)

func startedBattle(t *testing.T, env *testEnv, qs []content.Question, seconds int) *BuzzerBattle {
	t.Helper()
	if err := env.battle.startWithQuestions(context.Background(), testChat, alice.ID, qs, seconds); err != nil {
		t.Fatalf("startWithQuestions: %v", err)
	}
	s := env.reg.Get(testChat, KindBattle)
	if s == nil {
		t.Fatal("no battle session registered")
	}
	return s.(*BuzzerBattle)
}

func twoQuestions() []content.Question {
	return []content.Question{
		{Prompt: "Capital of Japan?", Answer: "tokyo"},
		{Prompt: "Currency of Japan?", Answer: "yen"},
	}
}

func TestBuzzFirstClaimWinsUnderContention(t *testing.T) {
	env := newTestEnv()
	startedBattle(t, env, twoQuestions(), 20)
	ctx := context.Background()

	const claimants = 32
	var wg sync.WaitGroup
	accepted := make(chan int64, claimants)

	for i := 0; i < claimants; i++ {
		uid := int64(1000 + i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := env.battle.Buzz(ctx, testChat, Participant{ID: uid, Name: "racer"}, "tokyo")
			if err == nil {
				accepted <- uid
			} else if !errors.Is(err, ErrNotAccepting) {
				t.Errorf("unexpected buzz error: %v", err)
			}
		}()
	}
	wg.Wait()
	close(accepted)

	var winners []int64
	for uid := range accepted {
		winners = append(winners, uid)
	}
	if len(winners) != 1 {
		t.Fatalf("accepted claims = %d; want exactly 1", len(winners))
	}
	if got := env.store.points(testChat, winners[0]); got != 2 {
		t.Errorf("winner points = %d; want 2", got)
	}
}

func TestBuzzCorrectAwardsAndAdvances(t *testing.T) {
	env := newTestEnv()
	b := startedBattle(t, env, twoQuestions(), 20)
	ctx := context.Background()

	if err := env.battle.Buzz(ctx, testChat, alice, "Tokyo!"); err != nil {
		t.Fatalf("Buzz: %v", err)
	}
	if got := env.store.points(testChat, alice.ID); got != 2 {
		t.Errorf("points = %d; want 2", got)
	}

	env.clock.Advance(time.Second)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil || b.current.Prompt != "Currency of Japan?" {
		t.Fatalf("next question not dealt: %+v", b.current)
	}
	if !b.accepting {
		t.Error("next question should accept buzzes")
	}
}

func TestBuzzWrongDeductsFlooredAtZero(t *testing.T) {
	env := newTestEnv()
	startedBattle(t, env, twoQuestions(), 20)
	ctx := context.Background()

	if err := env.battle.Buzz(ctx, testChat, bob, "osaka"); err != nil {
		t.Fatalf("Buzz: %v", err)
	}
	if got := env.store.points(testChat, bob.ID); got != 0 {
		t.Errorf("points = %d; want 0 (floored)", got)
	}
	if !env.gw.channelContains(testChat, "Correct answer was tokyo") {
		t.Error("expected reveal after wrong buzz")
	}
}

func TestBuzzRejectedBetweenQuestions(t *testing.T) {
	env := newTestEnv()
	startedBattle(t, env, twoQuestions(), 20)
	ctx := context.Background()

	if err := env.battle.Buzz(ctx, testChat, alice, "tokyo"); err != nil {
		t.Fatalf("Buzz: %v", err)
	}
	// Claimed: the gap before the next question accepts nothing.
	if err := env.battle.Buzz(ctx, testChat, bob, "tokyo"); !errors.Is(err, ErrNotAccepting) {
		t.Errorf("gap buzz err = %v; want ErrNotAccepting", err)
	}
}

func TestBattleTimeoutRevealsAndAdvances(t *testing.T) {
	env := newTestEnv()
	b := startedBattle(t, env, twoQuestions(), 20)

	env.clock.Advance(20 * time.Second)

	if !env.gw.channelContains(testChat, "The answer was tokyo") {
		t.Error("expected timeout reveal")
	}

	env.clock.Advance(time.Second)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil || b.current.Answer != "yen" {
		t.Fatalf("next question not dealt after timeout: %+v", b.current)
	}
}

func TestBattleFinishesWhenQueueExhausted(t *testing.T) {
	env := newTestEnv()
	startedBattle(t, env, twoQuestions()[:1], 20)
	ctx := context.Background()

	if err := env.battle.Buzz(ctx, testChat, alice, "tokyo"); err != nil {
		t.Fatalf("Buzz: %v", err)
	}
	env.clock.Advance(time.Second)

	if !env.gw.channelContains(testChat, "Battle finished!") {
		t.Error("expected finish announcement")
	}
	if s := env.reg.Get(testChat, KindBattle); s != nil {
		t.Error("finished battle still registered")
	}
}

func TestBattleAnswerNormalization(t *testing.T) {
	env := newTestEnv()
	startedBattle(t, env, []content.Question{{Prompt: "Bullet train?", Answer: "shinkansen"}}, 20)

	if err := env.battle.Buzz(context.Background(), testChat, alice, " Shin-Kansen! "); err != nil {
		t.Fatalf("Buzz: %v", err)
	}
	if got := env.store.points(testChat, alice.ID); got != 2 {
		t.Errorf("points = %d; want 2 (normalized match)", got)
	}
}

func TestBattleStartClampsParameters(t *testing.T) {
	env := newTestEnv()
	if err := env.battle.Start(context.Background(), testChat, alice.ID, 500, 3); err != nil {
		t.Fatalf("Start: %v", err)
	}
	b := env.reg.Get(testChat, KindBattle).(*BuzzerBattle)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.perQuestion != battleMinSeconds*time.Second {
		t.Errorf("perQuestion = %v; want %v", b.perQuestion, battleMinSeconds*time.Second)
	}
	left := len(b.queue)
	if b.current != nil {
		left++
	}
	if left > battleMaxQuestions {
		t.Errorf("questions = %d; want <= %d", left, battleMaxQuestions)
	}
}

func TestBattleStopCancelsTimers(t *testing.T) {
	env := newTestEnv()
	startedBattle(t, env, twoQuestions(), 20)
	ctx := context.Background()

	if err := env.battle.Stop(ctx, testChat); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := env.battle.Buzz(ctx, testChat, alice, "tokyo"); !errors.Is(err, ErrNoBattle) {
		t.Errorf("buzz after stop err = %v; want ErrNoBattle", err)
	}

	env.gw.mu.Lock()
	before := len(env.gw.channel[testChat])
	env.gw.mu.Unlock()
	env.clock.Advance(2 * time.Minute)
	env.gw.mu.Lock()
	after := len(env.gw.channel[testChat])
	env.gw.mu.Unlock()
	if after != before {
		t.Error("stopped battle kept announcing")
	}
}

func TestBattleSecondStartRejected(t *testing.T) {
	env := newTestEnv()
	startedBattle(t, env, twoQuestions(), 20)

	err := env.battle.startWithQuestions(context.Background(), testChat, bob.ID, twoQuestions(), 20)
	if !errors.Is(err, ErrSessionExists) {
		t.Errorf("second start err = %v; want ErrSessionExists", err)
	}
}
