package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"telegram_arcade/internal/domain"
)

// fakeClock drives engine timers deterministically. Advance runs due
// callbacks in firing order, releasing the clock lock around each call so
// callbacks may schedule or stop timers.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	c       *fakeClock
	when    time.Time
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{c: c, when: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) {
				next = t
			}
		}
		if next == nil {
			break
		}
		next.stopped = true
		if next.when.After(c.now) {
			c.now = next.when
		}
		fn := next.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// fakeGateway records all outbound traffic.
type fakeGateway struct {
	mu       sync.Mutex
	msgSeq   int
	channel  map[int64][]string
	direct   map[int64][]string
	edits    map[int64][]string
	dmClosed map[int64]bool
	sendErr  bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		channel:  make(map[int64][]string),
		direct:   make(map[int64][]string),
		edits:    make(map[int64][]string),
		dmClosed: make(map[int64]bool),
	}
}

func (g *fakeGateway) SendToChannel(_ context.Context, chatID int64, text string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr {
		return 0, errors.New("send failed")
	}
	g.msgSeq++
	g.channel[chatID] = append(g.channel[chatID], text)
	return g.msgSeq, nil
}

func (g *fakeGateway) SendDirect(_ context.Context, userID int64, text string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dmClosed[userID] {
		return false
	}
	g.direct[userID] = append(g.direct[userID], text)
	return true
}

func (g *fakeGateway) EditMessage(_ context.Context, chatID int64, _ int, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edits[chatID] = append(g.edits[chatID], text)
	return nil
}

func (g *fakeGateway) channelContains(chatID int64, substr string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, m := range g.channel[chatID] {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// memStore is an in-memory ScoreStore with the ledger's floor-at-zero rule.
type memStore struct {
	mu   sync.Mutex
	m    map[int64]map[int64]int
	fail bool
}

func newMemStore() *memStore {
	return &memStore{m: make(map[int64]map[int64]int)}
}

func (s *memStore) AddPoints(_ context.Context, chatID, userID int64, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("store unavailable")
	}
	if s.m[chatID] == nil {
		s.m[chatID] = make(map[int64]int)
	}
	v := s.m[chatID][userID] + delta
	if v < 0 {
		v = 0
	}
	s.m[chatID][userID] = v
	return nil
}

func (s *memStore) GetPoints(_ context.Context, chatID, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[chatID][userID], nil
}

func (s *memStore) TopPoints(_ context.Context, chatID int64, limit int) ([]domain.ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ScoreEntry
	for uid, pts := range s.m[chatID] {
		out = append(out, domain.ScoreEntry{UserID: uid, Points: pts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) points(chatID, userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[chatID][userID]
}

type testEnv struct {
	clock  *fakeClock
	gw     *fakeGateway
	store  *memStore
	reg    *Registry
	duel   *DuelEngine
	guess  *GuessEngine
	battle *BattleEngine
}

func newTestEnv() *testEnv {
	clock := newFakeClock()
	gw := newFakeGateway()
	store := newMemStore()
	reg := NewRegistry(clock)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		clock:  clock,
		gw:     gw,
		store:  store,
		reg:    reg,
		duel:   NewDuelEngine(reg, gw, store, clock, log),
		guess:  NewGuessEngine(reg, gw, store, clock, log),
		battle: NewBattleEngine(reg, gw, store, clock, log),
	}
}
