package game

import "errors"

var (
	ErrSessionExists = errors.New("a game of this kind is already running here")

	ErrNoDuel        = errors.New("no duel is pending")
	ErrNoActiveDuel  = errors.New("no active duel")
	ErrDuelActive    = errors.New("duel already active")
	ErrSelfDuel      = errors.New("you cannot duel yourself")
	ErrNotChallenged = errors.New("only the challenged opponent can respond")
	ErrNotParticipant = errors.New("only duel participants can do that")
	ErrAlreadyMoved  = errors.New("move already submitted for this round")
	ErrInvalidMove   = errors.New("invalid move")

	ErrNoGuessGame   = errors.New("no guessing game is active")
	ErrWrongGuess    = errors.New("wrong guess")
	ErrGuessCooldown = errors.New("guessing too fast")

	ErrNoBattle     = errors.New("no battle is active")
	ErrNotAccepting = errors.New("not accepting buzzes right now")
)
