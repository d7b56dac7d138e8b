package session

import "errors"

// ErrInvalidMove is wrapped by every rejected move. Callers recover from it locally.
var ErrInvalidMove = errors.New("invalid move")

var (
	ErrGameOver     = errors.New("game is already over")
	ErrOutOfRange   = errors.New("cell index out of range")
	ErrNotYourTurn  = errors.New("not this mark's turn")
	ErrCellOccupied = errors.New("cell already occupied")
	ErrClosed       = errors.New("session closed")
)
