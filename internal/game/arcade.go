package game

import (
	"context"
	"log/slog"
)

// Arcade bundles the three engines sharing one registry, gateway and ledger.
type Arcade struct {
	Registry *Registry
	Duel     *DuelEngine
	Guess    *GuessEngine
	Battle   *BattleEngine
}

func NewArcade(gw Gateway, scores ScoreStore, clock Clock, log *slog.Logger) *Arcade {
	reg := NewRegistry(clock)
	return &Arcade{
		Registry: reg,
		Duel:     NewDuelEngine(reg, gw, scores, clock, log),
		Guess:    NewGuessEngine(reg, gw, scores, clock, log),
		Battle:   NewBattleEngine(reg, gw, scores, clock, log),
	}
}

// Halt force-stops the session of the given kind in a chat, or all of them
// when kind is empty. Returns how many sessions were stopped.
func (a *Arcade) Halt(ctx context.Context, chatID int64, kind Kind) int {
	stopped := 0
	if kind == KindDuel || kind == "" {
		if a.Duel.Halt(ctx, chatID) {
			stopped++
		}
	}
	if kind == KindGuess || kind == "" {
		if a.Guess.Halt(ctx, chatID) {
			stopped++
		}
	}
	if kind == KindBattle || kind == "" {
		if a.Battle.Halt(ctx, chatID) {
			stopped++
		}
	}
	return stopped
}
