package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Move is one of the three duel moves. The cycle is strike > feint > guard >
// strike; equal moves tie.
type Move string

const (
	MoveStrike Move = "strike"
	MoveGuard  Move = "guard"
	MoveFeint  Move = "feint"
)

var beats = map[Move]Move{
	MoveStrike: MoveFeint,
	MoveFeint:  MoveGuard,
	MoveGuard:  MoveStrike,
}

// ParseMove normalizes raw user input ("  Strike", "<guard>") into a Move.
func ParseMove(raw string) (Move, bool) {
	m := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(m, "<") && strings.HasSuffix(m, ">") && len(m) >= 3 {
		m = strings.TrimSpace(m[1 : len(m)-1])
	}
	switch Move(m) {
	case MoveStrike, MoveGuard, MoveFeint:
		return Move(m), true
	}
	return "", false
}

// ResolveMoves returns 0 on a tie, 1 if a beats b and 2 if b beats a.
func ResolveMoves(a, b Move) int {
	if a == b {
		return 0
	}
	if beats[a] == b {
		return 1
	}
	return 2
}

// DuelMode selects the win condition.
type DuelMode string

const (
	ModeHP  DuelMode = "hp"  // 3 health points each, lose a point per lost round
	ModeBO3 DuelMode = "bo3" // first to 2 round wins
)

// ParseDuelMode maps an optional mode argument to a DuelMode, defaulting to hp.
func ParseDuelMode(raw string) DuelMode {
	if strings.ToLower(strings.TrimSpace(raw)) == string(ModeBO3) {
		return ModeBO3
	}
	return ModeHP
}

const (
	duelPendingTTL = 2 * time.Minute
	duelRoundTotal = 30 * time.Second
	duelStartHP    = 3
	duelTargetWins = 2
)

type duelPhase int32

const (
	duelPending duelPhase = iota
	duelActive
	duelEnded
)

// Duel is the live state of one challenge. challenger, opponent, chatID,
// createdAt and mode are immutable after creation; everything else is guarded
// by mu. phase is additionally readable without mu (registry expiry checks
// and DM-move lookup run lock-free).
type Duel struct {
	chatID     int64
	challenger Participant
	opponent   Participant
	createdAt  time.Time
	mode       DuelMode

	phase atomic.Int32

	mu             sync.Mutex
	chHP, opHP     int
	chWins, opWins int
	chMove, opMove Move
	roundStartedAt time.Time
	gen            uint64
	timer          Timer
	timerMsgID     int
}

func (d *Duel) Kind() Kind { return KindDuel }

// Expired reports whether a pending challenge outlived its accept window.
// Lock-free: called under the registry lock.
func (d *Duel) Expired(now time.Time) bool {
	return duelPhase(d.phase.Load()) == duelPending && now.Sub(d.createdAt) > duelPendingTTL
}

func (d *Duel) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.phase.Store(int32(duelEnded))
	d.stopTimerLocked()
}

func (d *Duel) Summary() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch duelPhase(d.phase.Load()) {
	case duelPending:
		return fmt.Sprintf("duel pending: %s vs %s (%s)", d.challenger.Name, d.opponent.Name, d.mode)
	case duelActive:
		if d.mode == ModeBO3 {
			return fmt.Sprintf("duel active (bo3): %s %d - %d %s", d.challenger.Name, d.chWins, d.opWins, d.opponent.Name)
		}
		return fmt.Sprintf("duel active (hp): %s %d HP - %d HP %s", d.challenger.Name, d.chHP, d.opHP, d.opponent.Name)
	default:
		return "duel ended"
	}
}

func (d *Duel) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Duel) hasParticipant(userID int64) bool {
	return userID == d.challenger.ID || userID == d.opponent.ID
}

// DuelEngine runs 1v1 duels with DM-routed moves. All transitions for one
// duel are serialized through the duel's mutex; timer callbacks carry a
// generation number and no-op when the round they guarded is gone.
type DuelEngine struct {
	core
}

func NewDuelEngine(reg *Registry, gw Gateway, scores ScoreStore, clock Clock, log *slog.Logger) *DuelEngine {
	return &DuelEngine{core{reg: reg, gw: gw, scores: scores, clock: clock, log: log.With("engine", "duel")}}
}

// Challenge creates a pending duel and announces it. The opponent has two
// minutes to accept before the challenge evaporates.
func (e *DuelEngine) Challenge(ctx context.Context, chatID int64, challenger, opponent Participant, mode DuelMode) (*Duel, error) {
	if challenger.ID == opponent.ID {
		return nil, ErrSelfDuel
	}

	s, err := e.reg.Create(chatID, KindDuel, func() Session {
		d := &Duel{
			chatID:     chatID,
			challenger: challenger,
			opponent:   opponent,
			createdAt:  e.clock.Now(),
			mode:       mode,
			chHP:       duelStartHP,
			opHP:       duelStartHP,
		}
		d.phase.Store(int32(duelPending))
		return d
	})
	if err != nil {
		return nil, err
	}
	d := s.(*Duel)

	label := "HP Duel"
	if mode == ModeBO3 {
		label = "Best-of-3"
	}
	e.announce(chatID, fmt.Sprintf(
		"🗡️ Duel challenge (%s)! %s vs %s\n%s, respond with /duelaccept or /dueldecline (expires in 2 minutes).",
		label, challenger.Name, opponent.Name, opponent.Name,
	))

	e.log.Info("duel challenged", "chat_id", chatID, "challenger", challenger.ID, "opponent", opponent.ID, "mode", mode)
	return d, nil
}

// Accept flips a pending duel to active and starts the first round. Only the
// challenged opponent may accept; an expired challenge reads as missing.
func (e *DuelEngine) Accept(ctx context.Context, chatID, userID int64) error {
	s := e.reg.Get(chatID, KindDuel)
	if s == nil {
		return ErrNoDuel
	}
	d := s.(*Duel)

	d.mu.Lock()
	defer d.mu.Unlock()

	switch duelPhase(d.phase.Load()) {
	case duelActive:
		return ErrDuelActive
	case duelEnded:
		return ErrNoDuel
	}
	if userID != d.opponent.ID {
		return ErrNotChallenged
	}

	d.phase.Store(int32(duelActive))
	d.chHP, d.opHP = duelStartHP, duelStartHP
	d.chWins, d.opWins = 0, 0
	d.chMove, d.opMove = "", ""

	dmText := "🗡️ Duel started! DM me your move: move strike / move guard / move feint."
	chOK := e.gw.SendDirect(ctx, d.challenger.ID, dmText)
	opOK := e.gw.SendDirect(ctx, d.opponent.ID, dmText)

	warn := ""
	if !chOK || !opOK {
		// The duel still runs: the round timer forfeits silent players.
		warn = "\n⚠️ One or both players cannot receive DMs. Open a private chat with the bot to submit moves."
		deliveryFailures.Inc()
	}

	label := "HP Duel (3 HP each)"
	if d.mode == ModeBO3 {
		label = "Best-of-3 (first to 2 round wins)"
	}
	e.announce(chatID, fmt.Sprintf(
		"⚔️ Duel started! Mode: %s\nMoves are DM-only (no counter-picking).\nRound reveals when both submit or 30s pass.%s",
		label, warn,
	))

	e.startRoundLocked(d)
	return nil
}

// Decline discards the challenge. Opponent only.
func (e *DuelEngine) Decline(ctx context.Context, chatID, userID int64) error {
	s := e.reg.Get(chatID, KindDuel)
	if s == nil {
		return ErrNoDuel
	}
	d := s.(*Duel)

	d.mu.Lock()
	defer d.mu.Unlock()

	if duelPhase(d.phase.Load()) == duelEnded {
		return ErrNoDuel
	}
	if userID != d.opponent.ID {
		return ErrNotChallenged
	}

	e.teardownLocked(d)
	e.announce(chatID, "🗡️ Duel declined.")
	return nil
}

// Cancel aborts a pending or active duel. Participants only.
func (e *DuelEngine) Cancel(ctx context.Context, chatID, userID int64) error {
	s := e.reg.Get(chatID, KindDuel)
	if s == nil {
		return ErrNoDuel
	}
	d := s.(*Duel)

	d.mu.Lock()
	defer d.mu.Unlock()

	if duelPhase(d.phase.Load()) == duelEnded {
		return ErrNoDuel
	}
	if !d.hasParticipant(userID) {
		return ErrNotParticipant
	}

	e.teardownLocked(d)
	e.announce(chatID, "🗡️ Duel canceled.")
	return nil
}

// Halt force-stops the duel (admin path). No-op when none is live.
func (e *DuelEngine) Halt(ctx context.Context, chatID int64) bool {
	s := e.reg.Get(chatID, KindDuel)
	if s == nil {
		return false
	}
	d := s.(*Duel)

	d.mu.Lock()
	defer d.mu.Unlock()
	if duelPhase(d.phase.Load()) == duelEnded {
		return false
	}
	e.teardownLocked(d)
	e.announce(chatID, "🗡️ Duel stopped by an admin.")
	return true
}

// SubmitMove records a DM-submitted move for whichever active duel the user
// is fighting in. The second arriving move resolves the round immediately.
func (e *DuelEngine) SubmitMove(ctx context.Context, userID int64, mv Move) error {
	if _, ok := ParseMove(string(mv)); !ok {
		return ErrInvalidMove
	}

	_, s := e.reg.Find(KindDuel, func(_ int64, s Session) bool {
		d := s.(*Duel)
		return duelPhase(d.phase.Load()) == duelActive && d.hasParticipant(userID)
	})
	if s == nil {
		return ErrNoActiveDuel
	}
	d := s.(*Duel)

	d.mu.Lock()
	defer d.mu.Unlock()

	// Re-check under the transition lock: the duel may have ended between
	// lookup and lock acquisition.
	if duelPhase(d.phase.Load()) != duelActive {
		return ErrNoActiveDuel
	}

	if userID == d.challenger.ID {
		if d.chMove != "" {
			return ErrAlreadyMoved
		}
		d.chMove = mv
	} else {
		if d.opMove != "" {
			return ErrAlreadyMoved
		}
		d.opMove = mv
	}

	if d.chMove != "" && d.opMove != "" {
		e.resolveRoundLocked(d, false)
	}
	return nil
}

// Status returns a one-line description of the live duel, if any.
func (e *DuelEngine) Status(chatID int64) (string, bool) {
	s := e.reg.Get(chatID, KindDuel)
	if s == nil {
		return "", false
	}
	return s.Summary(), true
}

// startRoundLocked clears both move slots, stamps the round start and arms
// the progress ticker. Caller holds d.mu.
func (e *DuelEngine) startRoundLocked(d *Duel) {
	d.chMove, d.opMove = "", ""
	d.roundStartedAt = e.clock.Now()
	d.stopTimerLocked()
	d.gen++
	gen := d.gen

	e.announce(d.chatID, "🕵️ New round! DM me your move: move strike / move guard / move feint (30s)")

	d.timer = e.clock.AfterFunc(progressTick, func() { e.roundTick(d, gen) })
}

// roundTick re-renders the countdown and resolves the round when the budget
// is spent. A stale generation means the round already resolved elsewhere.
func (e *DuelEngine) roundTick(d *Duel, gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.gen || duelPhase(d.phase.Load()) != duelActive {
		return
	}

	elapsed := e.clock.Now().Sub(d.roundStartedAt)
	remaining := duelRoundTotal - elapsed
	if remaining < 0 {
		remaining = 0
	}

	var status string
	if d.mode == ModeBO3 {
		status = fmt.Sprintf("⚔️ BO3: %s %d - %d %s (first to %d)",
			d.challenger.Name, d.chWins, d.opWins, d.opponent.Name, duelTargetWins)
	} else {
		status = fmt.Sprintf("❤️ HP: %s %d | %s %d",
			d.challenger.Name, d.chHP, d.opponent.Name, d.opHP)
	}
	e.postOrEditTimer(d.chatID, &d.timerMsgID, fmt.Sprintf("%s %ds left\n%s",
		timerBar(elapsed, duelRoundTotal, 12), int(remaining.Seconds()), status))

	if d.chMove != "" && d.opMove != "" {
		e.resolveRoundLocked(d, false)
		return
	}
	if elapsed >= duelRoundTotal {
		e.resolveRoundLocked(d, true)
		return
	}

	d.timer = e.clock.AfterFunc(progressTick, func() { e.roundTick(d, gen) })
}

// resolveRoundLocked applies exactly one resolution for the current round.
// The timer is cancelled and the generation bumped first, so the competing
// path (submit vs timeout) can never resolve the same round again. Caller
// holds d.mu.
func (e *DuelEngine) resolveRoundLocked(d *Duel, forced bool) {
	d.stopTimerLocked()
	d.gen++

	a, b := d.chMove, d.opMove

	if forced && (a == "" || b == "") {
		if a == "" && b == "" {
			e.announce(d.chatID, "⏱️ Time expired — nobody submitted a move. No damage. Next round.")
			e.startRoundLocked(d)
			return
		}

		if a == "" {
			e.announce(d.chatID, fmt.Sprintf("⏱️ %s did not submit a move in time — round forfeited!", d.challenger.Name))
			if d.mode == ModeBO3 {
				d.opWins++
			} else {
				d.chHP--
			}
		} else {
			e.announce(d.chatID, fmt.Sprintf("⏱️ %s did not submit a move in time — round forfeited!", d.opponent.Name))
			if d.mode == ModeBO3 {
				d.chWins++
			} else {
				d.opHP--
			}
		}

		d.chMove, d.opMove = "", ""
		roundsResolved.WithLabelValues(string(KindDuel)).Inc()

		if e.checkDuelEndLocked(d) {
			return
		}
		e.startRoundLocked(d)
		return
	}

	if a == "" || b == "" {
		return
	}

	switch ResolveMoves(a, b) {
	case 0:
		e.announce(d.chatID, fmt.Sprintf("⚔️ Reveal: %s %s vs %s %s — 🤝 TIE!",
			d.challenger.Name, a, d.opponent.Name, b))
	case 1:
		e.announce(d.chatID, fmt.Sprintf("⚔️ Reveal: %s's %s beats %s's %s ✅",
			d.challenger.Name, a, d.opponent.Name, b))
		if d.mode == ModeBO3 {
			d.chWins++
		} else {
			d.opHP--
		}
	case 2:
		e.announce(d.chatID, fmt.Sprintf("⚔️ Reveal: %s's %s beats %s's %s ✅",
			d.opponent.Name, b, d.challenger.Name, a))
		if d.mode == ModeBO3 {
			d.opWins++
		} else {
			d.chHP--
		}
	}

	d.chMove, d.opMove = "", ""
	roundsResolved.WithLabelValues(string(KindDuel)).Inc()

	if e.checkDuelEndLocked(d) {
		return
	}
	e.startRoundLocked(d)
}

// checkDuelEndLocked ends the duel when a win condition holds: scores are
// awarded, the session leaves the registry and the outcome is announced.
// Caller holds d.mu.
func (e *DuelEngine) checkDuelEndLocked(d *Duel) bool {
	var winner, loser Participant

	switch {
	case d.mode == ModeBO3 && d.chWins >= duelTargetWins:
		winner, loser = d.challenger, d.opponent
	case d.mode == ModeBO3 && d.opWins >= duelTargetWins:
		winner, loser = d.opponent, d.challenger
	case d.mode == ModeHP && d.chHP <= 0:
		winner, loser = d.opponent, d.challenger
	case d.mode == ModeHP && d.opHP <= 0:
		winner, loser = d.challenger, d.opponent
	default:
		return false
	}

	e.teardownLocked(d)

	e.award(d.chatID, winner.ID, 3)
	e.award(d.chatID, loser.ID, 1)

	e.announce(d.chatID, fmt.Sprintf(
		"🏆 Duel over! Winner: %s (+3)\nConsolation: %s (+1)\nCheck scores with /myscore and /leaderboard.",
		winner.Name, loser.Name,
	))
	e.log.Info("duel finished", "chat_id", d.chatID, "winner", winner.ID, "loser", loser.ID)
	return true
}

// teardownLocked marks the duel ended, kills its timer and removes it from
// the registry. Caller holds d.mu; safe because the registry never takes a
// session lock while holding its own.
func (e *DuelEngine) teardownLocked(d *Duel) {
	d.phase.Store(int32(duelEnded))
	d.stopTimerLocked()
	d.gen++
	e.reg.drop(d.chatID, KindDuel, d)
}
