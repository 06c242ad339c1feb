package apperror

import "errors"

var (
	ErrRoomFull          = errors.New("room is full")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrInvalidMove       = errors.New("invalid move")
	ErrSessionTerminated = errors.New("game is already finished")
	ErrOutOfBounds       = errors.New("coordinate is out of bounds")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrGameNotStarted    = errors.New("game is not started")
	ErrSessionClosed     = errors.New("game session is closed")
	ErrGameNotFound      = errors.New("game not found")
	ErrNotInRoom         = errors.New("player is not in the room")
	ErrNotFound          = errors.New("not found")
)
